// Package api exposes the HTTP surface: job submission and polling,
// unified job orchestration, and the diary endpoints including the
// progress event stream. Handlers translate between HTTP and the
// service layer and never touch job records directly.
package api
