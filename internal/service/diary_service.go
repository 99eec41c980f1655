package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/generation"
	"github.com/sproutlab/sprout-api/internal/redact"
	"github.com/sproutlab/sprout-api/internal/retry"
	"github.com/sproutlab/sprout-api/internal/store"
	"github.com/sproutlab/sprout-api/internal/task"
)

// Pipeline stages, in emission order. The persistence-complete event is
// always last and carries the finished diary payload.
const (
	StageDataCollection      = "data-collection"
	StageContentGeneration   = "content-generation"
	StageImageGeneration     = "image-generation"
	StagePersistenceComplete = "persistence-complete"
	StageError               = "error"
)

// ProgressEvent is one element of the ordered diary progress stream.
// Result is set only on the persistence-complete event, Error only on
// the error event.
type ProgressEvent struct {
	Stage   string              `json:"stage"`
	Message string              `json:"message"`
	Result  *domain.DiaryResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// DiaryService runs the diary generation pipeline: collect observations,
// write the entry, illustrate it, persist it. The same pipeline backs
// three consumption modes: the single-shot progress stream, the
// synchronous auto-generation trigger, and queued diary jobs.
type DiaryService struct {
	diaries        store.DiaryStore
	generator      generation.Generator
	policy         retry.Policy
	timeout        time.Duration
	defaultSubject string
	logger         *slog.Logger

	// wg tracks detached pipeline runs so shutdown can wait for
	// persistence to finish.
	wg sync.WaitGroup
}

// NewDiaryService creates a DiaryService.
func NewDiaryService(
	diaries store.DiaryStore,
	generator generation.Generator,
	policy retry.Policy,
	timeout time.Duration,
	defaultSubject string,
	logger *slog.Logger,
) *DiaryService {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if defaultSubject == "" {
		defaultSubject = "the garden"
	}
	return &DiaryService{
		diaries:        diaries,
		generator:      generator,
		policy:         policy,
		timeout:        timeout,
		defaultSubject: defaultSubject,
		logger:         logger.With("component", "diary_service"),
	}
}

// StreamGenerate starts a diary generation for the given date and
// returns an ordered event channel, closed after the final event. The
// pipeline runs detached from reqCtx: if the client disconnects only
// event delivery stops, the work still completes and persists. Total
// pipeline duration is capped by the configured diary timeout.
func (s *DiaryService) StreamGenerate(reqCtx context.Context, date, subject string) (<-chan ProgressEvent, error) {
	if _, err := parseDiaryDate(date); err != nil {
		return nil, err
	}
	subject = s.resolveSubject(subject)

	events := make(chan ProgressEvent)
	send := func(ev ProgressEvent) {
		select {
		case events <- ev:
		case <-reqCtx.Done():
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(events)

		workCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if _, err := s.generate(workCtx, date, subject, send); err != nil {
			s.logger.Error("diary stream failed", "date", date, "error", err)
			send(ProgressEvent{
				Stage:   StageError,
				Message: "diary generation failed",
				Error:   failureMessage(err),
			})
		}
	}()

	return events, nil
}

// AutoGenerate runs the pipeline synchronously for scheduled callers.
// It is bounded by both the caller's context and the diary timeout;
// exceeding the budget returns ErrDiaryTimeout.
func (s *DiaryService) AutoGenerate(ctx context.Context, date, subject string) (*domain.DiaryResult, error) {
	if _, err := parseDiaryDate(date); err != nil {
		return nil, err
	}

	workCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.generate(workCtx, date, s.resolveSubject(subject), func(ev ProgressEvent) {
		s.logger.Info("diary progress", "date", date, "stage", ev.Stage, "message", ev.Message)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrDiaryTimeout, s.timeout)
		}
		return nil, err
	}
	return result, nil
}

// DiaryWork adapts the pipeline into a job work function, so queued
// diary jobs run the exact same stages as the stream. Stage messages
// become persisted job progress messages.
func (s *DiaryService) DiaryWork(date, subject string) task.WorkFunc {
	subject = s.resolveSubject(subject)
	return func(ctx context.Context, progress task.ProgressFunc) (*domain.JobResult, error) {
		result, err := s.generate(ctx, date, subject, func(ev ProgressEvent) {
			if ev.Stage != StagePersistenceComplete {
				progress(ev.Message)
			}
		})
		if err != nil {
			return nil, err
		}
		return domain.NewDiaryJobResult(*result), nil
	}
}

// GetEntry reads a persisted diary entry by date. An unknown date
// returns store.ErrDiaryNotFound.
func (s *DiaryService) GetEntry(ctx context.Context, date string) (*domain.DiaryEntry, error) {
	if _, err := parseDiaryDate(date); err != nil {
		return nil, err
	}
	return s.diaries.GetEntryByDate(ctx, date)
}

// Wait blocks until all detached pipeline runs have finished.
func (s *DiaryService) Wait() {
	s.wg.Wait()
}

// generate runs the four pipeline stages in order and emits one event
// per stage through emit, which must not block indefinitely. The final
// persistence-complete event carries the result for the requested date.
func (s *DiaryService) generate(
	ctx context.Context,
	date, subject string,
	emit func(ProgressEvent),
) (*domain.DiaryResult, error) {
	emit(ProgressEvent{
		Stage:   StageDataCollection,
		Message: fmt.Sprintf("collecting observations about %s", subject),
	})
	observations := s.collectObservations(ctx, date)

	emit(ProgressEvent{
		Stage:   StageContentGeneration,
		Message: "writing the diary entry",
	})
	content, err := retry.Do(ctx, s.logger, s.policy, func(ctx context.Context) (string, error) {
		return s.generator.GenerateDiaryText(ctx, date, subject, observations)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write diary entry: %w", err)
	}

	emit(ProgressEvent{
		Stage:   StageImageGeneration,
		Message: "illustrating the diary entry",
	})
	imageRef, err := retry.Do(ctx, s.logger, s.policy, func(ctx context.Context) (string, error) {
		return s.generator.GenerateDiaryImage(ctx, date, content)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to illustrate diary entry: %w", err)
	}

	entry, err := domain.NewDiaryEntry(date, subject, content, imageRef)
	if err != nil {
		return nil, fmt.Errorf("failed to build diary entry: %w", err)
	}
	if err := s.diaries.SaveEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to persist diary entry: %w", err)
	}

	result := &domain.DiaryResult{
		Date:     date,
		Subject:  subject,
		Content:  content,
		ImageRef: imageRef,
	}
	emit(ProgressEvent{
		Stage:   StagePersistenceComplete,
		Message: fmt.Sprintf("diary entry for %s saved", date),
		Result:  result,
	})
	return result, nil
}

// collectObservations gathers grounding material for the entry. The
// previous day's entry is the only observation source for now; its
// absence is normal, not an error.
func (s *DiaryService) collectObservations(ctx context.Context, date string) []string {
	day, err := parseDiaryDate(date)
	if err != nil {
		return nil
	}
	previous := day.AddDate(0, 0, -1).Format(diaryDateLayout)

	entry, err := s.diaries.GetEntryByDate(ctx, previous)
	if err != nil {
		if !store.IsNotFoundError(err) {
			s.logger.Warn("failed to read previous diary entry", "date", previous, "error", err)
		}
		return nil
	}
	return []string{fmt.Sprintf("yesterday (%s): %s", entry.Date, entry.Content)}
}

func (s *DiaryService) resolveSubject(subject string) string {
	if subject == "" {
		return s.defaultSubject
	}
	return subject
}

const diaryDateLayout = "2006-01-02"

// parseDiaryDate validates a YYYY-MM-DD date string.
func parseDiaryDate(date string) (time.Time, error) {
	day, err := time.Parse(diaryDateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidRequest, date)
	}
	return day, nil
}

// failureMessage extracts a client-safe description from a pipeline
// error.
// failureMessage builds the error text delivered to stream clients.
// Provider errors can carry keys and connection strings, so the text is
// scrubbed the same way the executor scrubs job failure records.
func failureMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "diary generation timed out"
	}
	return redact.Error(err)
}
