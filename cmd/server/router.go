package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sproutlab/sprout-api/internal/api"
	apiMiddleware "github.com/sproutlab/sprout-api/internal/api/middleware"
)

// routes builds the HTTP router with all middleware and endpoints.
func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	jobHandler := api.NewJobHandler(app.jobService, app.logger)
	unifiedHandler := api.NewUnifiedHandler(app.unifiedService, app.logger)
	diaryHandler := api.NewDiaryHandler(app.diaryService, app.config.Diary.TriggerKey, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Per-kind job submission and poll-based status.
		r.Post("/jobs/{kind}", jobHandler.SubmitJob)
		r.Get("/jobs/{id}", jobHandler.GetJob)

		// The unified fan-out job over one seed packet image.
		r.Post("/unified/start", unifiedHandler.Start)
		r.Get("/unified/jobs/{id}", unifiedHandler.GetStatus)

		// Diary generation: streaming, scheduled trigger, reads.
		r.Get("/diary/generate-manual", diaryHandler.GenerateManual)
		r.Post("/diary/auto-generate", diaryHandler.AutoGenerate)
		r.Get("/diary/{date}", diaryHandler.GetEntry)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
