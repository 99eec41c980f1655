package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutlab/sprout-api/internal/domain"
)

func TestUnifiedStart(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	image := base64.StdEncoding.EncodeToString([]byte("seed packet photo"))

	rec := ts.do(postJSON(t, "/api/unified/start", StartUnifiedRequest{Image: image}))
	require.Equal(t, http.StatusAccepted, rec.Code)

	resp := decodeBody[StartUnifiedResponse](t, rec)
	require.NotEqual(t, uuid.Nil, resp.JobID)
	assert.Len(t, resp.SubJobIDs, 3)
	for _, role := range []domain.SubJobRole{domain.SubJobRoleCharacter, domain.SubJobRoleResearch, domain.SubJobRoleGuide} {
		assert.NotEqual(t, uuid.Nil, resp.SubJobIDs[role], "missing sub-job for %s", role)
	}

	ts.unified.Wait()

	statusRec := ts.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/unified/jobs/%s", resp.JobID), nil))
	require.Equal(t, http.StatusOK, statusRec.Code)

	status := decodeBody[UnifiedStatusResponse](t, statusRec)
	assert.Equal(t, domain.JobStatusCompleted, status.Status)
	assert.Equal(t, domain.JobStatusCompleted, status.CharacterStatus)
	assert.Equal(t, domain.JobStatusCompleted, status.ResearchStatus)
	assert.Equal(t, domain.JobStatusCompleted, status.GuideStatus)
	assert.Equal(t, domain.UnifiedPhaseDone, status.Phase)
}

func TestUnifiedStart_MissingImage(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(postJSON(t, "/api/unified/start", map[string]string{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedStatus_NotFound(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/unified/jobs/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnifiedStatus_InvalidID(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/unified/jobs/garden", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
