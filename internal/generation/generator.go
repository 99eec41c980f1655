package generation

import (
	"context"

	"github.com/sproutlab/sprout-api/internal/domain"
)

// Generator is the interface job executors use to produce content. Each
// method blocks until the provider answers and returns one typed result;
// implementations classify provider failures per errors.go so callers
// can decide whether to retry.
type Generator interface {
	// AnalyzeSeedPacket extracts structured plant facts from a seed
	// packet photo.
	AnalyzeSeedPacket(ctx context.Context, imageData []byte) (*domain.AnalysisResult, error)

	// GenerateGuide produces a step-by-step growing guide for a plant.
	GenerateGuide(ctx context.Context, plantName string) (*domain.GuideResult, error)

	// GenerateCharacter produces character art and a persona for a plant.
	GenerateCharacter(ctx context.Context, plantName string) (*domain.CharacterResult, error)

	// GenerateCharacterFromImage produces character art straight from a
	// seed packet photo, for flows that run before analysis has named
	// the plant.
	GenerateCharacterFromImage(ctx context.Context, imageData []byte) (*domain.CharacterResult, error)

	// ResearchPlant produces a deep-research summary for a plant.
	ResearchPlant(ctx context.Context, plantName string) (*domain.ResearchResult, error)

	// GenerateDiaryText writes a diary entry for the given date and
	// subject, grounded on the provided observations.
	GenerateDiaryText(ctx context.Context, date, subject string, observations []string) (string, error)

	// GenerateDiaryImage produces an illustration for a diary entry and
	// returns a reference to the stored image.
	GenerateDiaryImage(ctx context.Context, date, content string) (string, error)
}
