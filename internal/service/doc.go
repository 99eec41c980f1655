// Package service implements the application's use cases on top of the
// domain and store layers: single-job submission and polling, the
// unified multi-phase orchestration, and the diary generation pipeline
// with its streaming and synchronous consumption models.
package service
