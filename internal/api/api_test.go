package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/events"
	"github.com/sproutlab/sprout-api/internal/mocks"
	"github.com/sproutlab/sprout-api/internal/retry"
	"github.com/sproutlab/sprout-api/internal/service"
	"github.com/sproutlab/sprout-api/internal/store/memory"
	"github.com/sproutlab/sprout-api/internal/task"
)

const testTriggerKey = "integration-test-trigger-key"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastRetryPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

// testServer wires the whole request path over in-memory storage.
type testServer struct {
	router    chi.Router
	store     *memory.Store
	generator *mocks.MockGenerator
	unified   *service.UnifiedService
	diary     *service.DiaryService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := testLogger()
	s := memory.New()
	generator := mocks.NewMockGenerator()
	policy := fastRetryPolicy()

	executor := task.NewExecutor(s, task.DefaultExecutorConfig(), log)
	runner := task.NewRunner(task.RunnerConfig{WorkerCount: 4, QueueSize: 16}, log)
	runner.Start()
	t.Cleanup(runner.Stop)

	diaryService := service.NewDiaryService(s, generator, policy, time.Minute, "the garden", log)
	handler := task.NewJobRequestEventHandler(s, executor, generator, policy, runner, diaryService.DiaryWork, log)
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(handler)

	jobService := service.NewJobService(s, emitter, log)
	unifiedService := service.NewUnifiedService(s, s, runner, executor, generator, policy, "the garden", log)

	jobHandler := NewJobHandler(jobService, log)
	unifiedHandler := NewUnifiedHandler(unifiedService, log)
	diaryHandler := NewDiaryHandler(diaryService, testTriggerKey, log)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Post("/jobs/{kind}", jobHandler.SubmitJob)
		r.Get("/jobs/{id}", jobHandler.GetJob)
		r.Post("/unified/start", unifiedHandler.Start)
		r.Get("/unified/jobs/{id}", unifiedHandler.GetStatus)
		r.Get("/diary/generate-manual", diaryHandler.GenerateManual)
		r.Post("/diary/auto-generate", diaryHandler.AutoGenerate)
		r.Get("/diary/{date}", diaryHandler.GetEntry)
	})

	return &testServer{
		router:    router,
		store:     s,
		generator: generator,
		unified:   unifiedService,
		diary:     diaryService,
	}
}

func (ts *testServer) waitForStatus(t *testing.T, id string, want domain.JobStatus) *domain.Job {
	t.Helper()

	jobID := parseUUID(t, id)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := ts.store.GetJob(context.Background(), jobID)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return nil
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func parseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
