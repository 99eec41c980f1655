package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUnifiedJob(t *testing.T) *UnifiedJob {
	t.Helper()
	u, err := NewUnifiedJob(uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return u
}

func TestNewUnifiedJob(t *testing.T) {
	t.Parallel()

	t.Run("starts in phase1 with all sub-job ids", func(t *testing.T) {
		t.Parallel()

		u := newTestUnifiedJob(t)
		assert.Equal(t, UnifiedPhase1, u.Phase)

		ids := u.SubJobIDs()
		assert.Len(t, ids, 3)
		assert.Equal(t, u.CharacterJobID, ids[SubJobRoleCharacter])
		assert.Equal(t, u.ResearchJobID, ids[SubJobRoleResearch])
		assert.Equal(t, u.GuideJobID, ids[SubJobRoleGuide])
	})

	t.Run("rejects missing sub-job id", func(t *testing.T) {
		t.Parallel()

		_, err := NewUnifiedJob(uuid.New(), uuid.Nil, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrMissingSubJob)
	})
}

func TestUnifiedJob_AdvancePhase(t *testing.T) {
	t.Parallel()

	u := newTestUnifiedJob(t)

	require.NoError(t, u.AdvancePhase(UnifiedPhase2_3))
	assert.Equal(t, UnifiedPhase2_3, u.Phase)

	// Re-asserting the current phase is a no-op, not an error.
	require.NoError(t, u.AdvancePhase(UnifiedPhase2_3))

	require.NoError(t, u.AdvancePhase(UnifiedPhaseDone))

	err := u.AdvancePhase(UnifiedPhase1)
	assert.ErrorIs(t, err, ErrPhaseMovedBackwards)
	assert.Equal(t, UnifiedPhaseDone, u.Phase)
}

func TestAggregateStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		character JobStatus
		research  JobStatus
		guide     JobStatus
		want      JobStatus
	}{
		{"all pending", JobStatusPending, JobStatusPending, JobStatusPending, JobStatusProcessing},
		{"mixed in-flight", JobStatusCompleted, JobStatusProcessing, JobStatusPending, JobStatusProcessing},
		{"all completed", JobStatusCompleted, JobStatusCompleted, JobStatusCompleted, JobStatusCompleted},
		{"one failed wins over completed", JobStatusCompleted, JobStatusFailed, JobStatusCompleted, JobStatusFailed},
		{"failure wins over in-flight", JobStatusProcessing, JobStatusPending, JobStatusFailed, JobStatusFailed},
		{"two completed one pending", JobStatusCompleted, JobStatusCompleted, JobStatusPending, JobStatusProcessing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := AggregateStatus(tc.character, tc.research, tc.guide)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewDiaryEntry(t *testing.T) {
	t.Parallel()

	t.Run("valid entry", func(t *testing.T) {
		t.Parallel()

		entry, err := NewDiaryEntry("2025-06-01", "sweet basil", "The basil unfurled a new leaf today.", "img/2025-06-01.png")
		require.NoError(t, err)
		assert.Equal(t, "2025-06-01", entry.Date)
		assert.NotEqual(t, uuid.Nil, entry.ID)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		t.Parallel()

		_, err := NewDiaryEntry("June 1st", "basil", "content", "")
		assert.ErrorIs(t, err, ErrInvalidDiaryDate)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		_, err := NewDiaryEntry("2025-06-01", "basil", "", "")
		assert.ErrorIs(t, err, ErrEmptyDiaryContent)
	})
}
