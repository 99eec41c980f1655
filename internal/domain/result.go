package domain

import (
	"errors"
	"fmt"
)

// Result validation errors
var (
	ErrEmptyResult     = errors.New("job result must carry exactly one payload")
	ErrResultKindMixed = errors.New("job result carries a payload for a different kind")
)

// AnalysisResult is the outcome of a seed-packet analysis job.
type AnalysisResult struct {
	PlantName      string   `json:"plant_name"`
	Species        string   `json:"species,omitempty"`
	SowingSeason   string   `json:"sowing_season,omitempty"`
	DaysToHarvest  int      `json:"days_to_harvest,omitempty"`
	CareHighlights []string `json:"care_highlights,omitempty"`
	RawSummary     string   `json:"raw_summary,omitempty"`
}

// GuideResult is the outcome of a growing-guide generation job.
type GuideResult struct {
	PlantName string      `json:"plant_name"`
	Steps     []GuideStep `json:"steps"`
}

// GuideStep is one step of a growing guide.
type GuideStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DayOffset   int    `json:"day_offset,omitempty"`
}

// CharacterResult is the outcome of a character-art generation job.
type CharacterResult struct {
	Name     string `json:"name"`
	ImageRef string `json:"image_ref"`
	Persona  string `json:"persona,omitempty"`
}

// ResearchResult is the outcome of a deep-research job.
type ResearchResult struct {
	PlantName string   `json:"plant_name"`
	Summary   string   `json:"summary"`
	Sources   []string `json:"sources,omitempty"`
}

// DiaryResult is the outcome of a diary generation job.
type DiaryResult struct {
	Date     string `json:"date"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	ImageRef string `json:"image_ref,omitempty"`
}

// JobResult is a tagged union over the per-kind result payloads. Exactly
// one payload field is set, and it must match the owning job's kind.
type JobResult struct {
	Analysis  *AnalysisResult  `json:"analysis,omitempty"`
	Guide     *GuideResult     `json:"guide,omitempty"`
	Character *CharacterResult `json:"character,omitempty"`
	Research  *ResearchResult  `json:"research,omitempty"`
	Diary     *DiaryResult     `json:"diary,omitempty"`
}

// NewAnalysisJobResult wraps an AnalysisResult in the tagged union.
func NewAnalysisJobResult(r AnalysisResult) *JobResult { return &JobResult{Analysis: &r} }

// NewGuideJobResult wraps a GuideResult in the tagged union.
func NewGuideJobResult(r GuideResult) *JobResult { return &JobResult{Guide: &r} }

// NewCharacterJobResult wraps a CharacterResult in the tagged union.
func NewCharacterJobResult(r CharacterResult) *JobResult { return &JobResult{Character: &r} }

// NewResearchJobResult wraps a ResearchResult in the tagged union.
func NewResearchJobResult(r ResearchResult) *JobResult { return &JobResult{Research: &r} }

// NewDiaryJobResult wraps a DiaryResult in the tagged union.
func NewDiaryJobResult(r DiaryResult) *JobResult { return &JobResult{Diary: &r} }

// Kind returns the job kind this result belongs to, or an error when the
// union is empty or carries more than one payload.
func (r *JobResult) Kind() (JobKind, error) {
	var (
		kind  JobKind
		count int
	)
	if r.Analysis != nil {
		kind, count = JobKindAnalysis, count+1
	}
	if r.Guide != nil {
		kind, count = JobKindGuide, count+1
	}
	if r.Character != nil {
		kind, count = JobKindCharacter, count+1
	}
	if r.Research != nil {
		kind, count = JobKindResearch, count+1
	}
	if r.Diary != nil {
		kind, count = JobKindDiary, count+1
	}

	if count != 1 {
		return "", fmt.Errorf("%w: %d payloads set", ErrEmptyResult, count)
	}
	return kind, nil
}

// ValidateFor checks that the result payload matches the given job kind.
func (r *JobResult) ValidateFor(kind JobKind) error {
	got, err := r.Kind()
	if err != nil {
		return err
	}
	if got != kind {
		return fmt.Errorf("%w: have %s, want %s", ErrResultKindMixed, got, kind)
	}
	return nil
}
