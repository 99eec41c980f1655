package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutlab/sprout-api/internal/config"
	"github.com/sproutlab/sprout-api/internal/mocks"
	"github.com/sproutlab/sprout-api/internal/store/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		LLM: config.LLMConfig{
			ModelName:         "test-model",
			ImageModelName:    "test-image-model",
			MaxRetries:        1,
			RetryDelaySeconds: 0,
		},
		Jobs: config.JobsConfig{
			WorkerCount: 2,
			QueueSize:   8,
			Timeout:     time.Minute,
		},
		Diary: config.DiaryConfig{
			Timeout:        time.Minute,
			TriggerKey:     "app-test-trigger-key",
			DefaultSubject: "the garden",
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	mem := memory.New()
	stores := &dataStores{jobs: mem, unified: mem, diaries: mem}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := newTestApplicationWithStores(t, stores, logger)
	return app
}

func newTestApplicationWithStores(t *testing.T, stores *dataStores, logger *slog.Logger) *application {
	t.Helper()

	app := newApplicationWithDeps(testConfig(), logger, stores, mocks.NewMockGenerator())
	app.runner.Start()
	t.Cleanup(app.cleanup)
	return app
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestJobRoundTripThroughRouter(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.routes()

	image := base64.StdEncoding.EncodeToString([]byte("fake seed packet photo"))
	body, err := json.Marshal(map[string]string{"image": image})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/analysis", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.JobID)

	deadline := time.After(5 * time.Second)
	for {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/api/jobs/"+submitted.JobID, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var job struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		if job.Status == "completed" {
			return
		}
		require.NotEqual(t, "failed", job.Status)

		select {
		case <-deadline:
			t.Fatalf("job %s never completed", submitted.JobID)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestAutoGenerateRequiresTriggerKey(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/diary/auto-generate?key=nope", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	url := fmt.Sprintf("/api/diary/auto-generate?key=%s&date=2025-06-01", app.config.Diary.TriggerKey)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, url, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
