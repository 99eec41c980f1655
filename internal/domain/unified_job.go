package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SubJobRole names a client-visible sub-job of a unified job.
type SubJobRole string

// Required sub-job roles of a unified job. The basic-analysis job also
// runs under the unified umbrella but is an internal input to the later
// phases, not a client-visible role.
const (
	SubJobRoleCharacter SubJobRole = "character"
	SubJobRoleResearch  SubJobRole = "research"
	SubJobRoleGuide     SubJobRole = "guide"
)

// UnifiedPhase tracks which stage of sub-jobs has been launched.
// Phases advance strictly forward and are never rolled back.
type UnifiedPhase string

// Possible unified job phases
const (
	UnifiedPhase1    UnifiedPhase = "phase1"
	UnifiedPhase2_3  UnifiedPhase = "phase2_3"
	UnifiedPhaseDone UnifiedPhase = "done"
)

// Common validation errors for UnifiedJob
var (
	ErrEmptyUnifiedJobID   = errors.New("unified job ID cannot be empty")
	ErrMissingSubJob       = errors.New("unified job is missing a sub-job ID")
	ErrInvalidPhase        = errors.New("invalid unified job phase")
	ErrPhaseMovedBackwards = errors.New("unified job phase cannot move backwards")
)

// UnifiedJob is an aggregate over a fixed set of sub-jobs created
// atomically with it. Its status is never stored; it is derived from the
// required sub-jobs' statuses on every read (see AggregateStatus).
type UnifiedJob struct {
	ID             uuid.UUID    `json:"id"`
	CharacterJobID uuid.UUID    `json:"character_job_id"`
	ResearchJobID  uuid.UUID    `json:"research_job_id"`
	GuideJobID     uuid.UUID    `json:"guide_job_id"`
	AnalysisJobID  uuid.UUID    `json:"analysis_job_id"`
	Phase          UnifiedPhase `json:"phase"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewUnifiedJob creates a unified job referencing the given sub-job IDs.
// All four IDs must be present; the record starts in phase1.
func NewUnifiedJob(characterID, researchID, guideID, analysisID uuid.UUID) (*UnifiedJob, error) {
	u := &UnifiedJob{
		ID:             uuid.New(),
		CharacterJobID: characterID,
		ResearchJobID:  researchID,
		GuideJobID:     guideID,
		AnalysisJobID:  analysisID,
		Phase:          UnifiedPhase1,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// Validate checks if the UnifiedJob has valid data.
func (u *UnifiedJob) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUnifiedJobID
	}
	for role, id := range map[string]uuid.UUID{
		"character": u.CharacterJobID,
		"research":  u.ResearchJobID,
		"guide":     u.GuideJobID,
		"analysis":  u.AnalysisJobID,
	} {
		if id == uuid.Nil {
			return fmt.Errorf("%w: %s", ErrMissingSubJob, role)
		}
	}
	if !isValidUnifiedPhase(u.Phase) {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, u.Phase)
	}
	return nil
}

// SubJobIDs returns the client-visible role-to-ID mapping.
func (u *UnifiedJob) SubJobIDs() map[SubJobRole]uuid.UUID {
	return map[SubJobRole]uuid.UUID{
		SubJobRoleCharacter: u.CharacterJobID,
		SubJobRoleResearch:  u.ResearchJobID,
		SubJobRoleGuide:     u.GuideJobID,
	}
}

// AdvancePhase moves the unified job to the given phase. Backward moves
// are rejected.
func (u *UnifiedJob) AdvancePhase(phase UnifiedPhase) error {
	if !isValidUnifiedPhase(phase) {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, phase)
	}
	if phaseOrder(phase) < phaseOrder(u.Phase) {
		return fmt.Errorf("%w: %s -> %s", ErrPhaseMovedBackwards, u.Phase, phase)
	}
	u.Phase = phase
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a copy of the unified job for handing to readers.
func (u *UnifiedJob) Clone() *UnifiedJob {
	c := *u
	return &c
}

// AggregateStatus derives the unified status from the required sub-jobs'
// statuses: failed if any is failed, completed only when all are
// completed, otherwise processing. The basic-analysis job does not
// participate; a failed analysis degrades later phases' input but does
// not fail the unified request by itself.
func AggregateStatus(character, research, guide JobStatus) JobStatus {
	statuses := []JobStatus{character, research, guide}

	for _, s := range statuses {
		if s == JobStatusFailed {
			return JobStatusFailed
		}
	}
	for _, s := range statuses {
		if s != JobStatusCompleted {
			return JobStatusProcessing
		}
	}
	return JobStatusCompleted
}

func isValidUnifiedPhase(phase UnifiedPhase) bool {
	switch phase {
	case UnifiedPhase1, UnifiedPhase2_3, UnifiedPhaseDone:
		return true
	default:
		return false
	}
}

func phaseOrder(phase UnifiedPhase) int {
	switch phase {
	case UnifiedPhase1:
		return 1
	case UnifiedPhase2_3:
		return 2
	case UnifiedPhaseDone:
		return 3
	default:
		return 0
	}
}
