// Package task implements background job execution: the Task interface,
// a bounded worker-pool Runner with a FIFO admission queue, and the
// Executor that drives one job record through its lifecycle state
// machine. The Executor is the only writer of a job record after
// creation; every transition is persisted individually so pollers
// always observe monotonically fresher state.
package task
