// Package generation defines the boundary between the application core
// and external AI content-generation services. Job executors depend only
// on the Generator interface and the error taxonomy declared here; the
// concrete provider lives under internal/platform.
package generation
