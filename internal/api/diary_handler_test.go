package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/service"
)

func parseSSE(t *testing.T, body string) []service.ProgressEvent {
	t.Helper()

	var events []service.ProgressEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev service.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	return events
}

func TestGenerateManual_StreamsOrderedEvents(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/diary/generate-manual?date=2025-06-01", nil)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 4)
	assert.Equal(t, service.StageDataCollection, events[0].Stage)
	assert.Equal(t, service.StageContentGeneration, events[1].Stage)
	assert.Equal(t, service.StageImageGeneration, events[2].Stage)
	assert.Equal(t, service.StagePersistenceComplete, events[3].Stage)

	require.NotNil(t, events[3].Result)
	assert.Equal(t, "2025-06-01", events[3].Result.Date)
}

func TestGenerateManual_MissingDate(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/diary/generate-manual", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutoGenerate(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost,
		"/api/diary/auto-generate?key="+testTriggerKey+"&date=2025-06-02", nil)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeBody[domain.DiaryResult](t, rec)
	assert.Equal(t, "2025-06-02", result.Date)
	assert.NotEmpty(t, result.Content)
}

func TestAutoGenerate_BadKey(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/diary/auto-generate?key=wrong", nil)
	rec := ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetDiaryEntry(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost,
		"/api/diary/auto-generate?key="+testTriggerKey+"&date=2025-06-03", nil)
	require.Equal(t, http.StatusOK, ts.do(req).Code)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/diary/2025-06-03", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	entry := decodeBody[DiaryEntryResponse](t, rec)
	assert.Equal(t, "2025-06-03", entry.Date)
	assert.NotEmpty(t, entry.Content)
}

func TestGetDiaryEntry_NotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/diary/2030-01-01", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDiaryEntry_InvalidDate(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/diary/someday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
