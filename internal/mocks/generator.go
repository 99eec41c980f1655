// Package mocks provides hand-written test doubles shared across
// package tests.
package mocks

import (
	"context"
	"sync"

	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/generation"
)

// Compile-time interface check.
var _ generation.Generator = (*MockGenerator)(nil)

// MockGenerator implements generation.Generator for testing. Each method
// delegates to the corresponding Fn field when set and otherwise returns
// a canned result. Call counts are tracked per method.
type MockGenerator struct {
	mu    sync.Mutex
	calls map[string]int

	AnalyzeSeedPacketFn          func(ctx context.Context, imageData []byte) (*domain.AnalysisResult, error)
	GenerateGuideFn              func(ctx context.Context, plantName string) (*domain.GuideResult, error)
	GenerateCharacterFn          func(ctx context.Context, plantName string) (*domain.CharacterResult, error)
	GenerateCharacterFromImageFn func(ctx context.Context, imageData []byte) (*domain.CharacterResult, error)
	ResearchPlantFn              func(ctx context.Context, plantName string) (*domain.ResearchResult, error)
	GenerateDiaryTextFn          func(ctx context.Context, date, subject string, observations []string) (string, error)
	GenerateDiaryImageFn         func(ctx context.Context, date, content string) (string, error)
}

// NewMockGenerator returns a MockGenerator with empty call tracking.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{calls: make(map[string]int)}
}

// Calls returns how many times the named method was invoked.
func (m *MockGenerator) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockGenerator) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// AnalyzeSeedPacket implements generation.Generator.
func (m *MockGenerator) AnalyzeSeedPacket(ctx context.Context, imageData []byte) (*domain.AnalysisResult, error) {
	m.record("AnalyzeSeedPacket")
	if m.AnalyzeSeedPacketFn != nil {
		return m.AnalyzeSeedPacketFn(ctx, imageData)
	}
	return &domain.AnalysisResult{PlantName: "sweet basil"}, nil
}

// GenerateGuide implements generation.Generator.
func (m *MockGenerator) GenerateGuide(ctx context.Context, plantName string) (*domain.GuideResult, error) {
	m.record("GenerateGuide")
	if m.GenerateGuideFn != nil {
		return m.GenerateGuideFn(ctx, plantName)
	}
	return &domain.GuideResult{
		PlantName: plantName,
		Steps:     []domain.GuideStep{{Title: "Sow", Description: "Sow seeds 5mm deep."}},
	}, nil
}

// GenerateCharacter implements generation.Generator.
func (m *MockGenerator) GenerateCharacter(ctx context.Context, plantName string) (*domain.CharacterResult, error) {
	m.record("GenerateCharacter")
	if m.GenerateCharacterFn != nil {
		return m.GenerateCharacterFn(ctx, plantName)
	}
	return &domain.CharacterResult{Name: "Sprouty", ImageRef: "img/sprouty.png"}, nil
}

// GenerateCharacterFromImage implements generation.Generator.
func (m *MockGenerator) GenerateCharacterFromImage(ctx context.Context, imageData []byte) (*domain.CharacterResult, error) {
	m.record("GenerateCharacterFromImage")
	if m.GenerateCharacterFromImageFn != nil {
		return m.GenerateCharacterFromImageFn(ctx, imageData)
	}
	return &domain.CharacterResult{Name: "Sprouty", ImageRef: "img/sprouty.png"}, nil
}

// ResearchPlant implements generation.Generator.
func (m *MockGenerator) ResearchPlant(ctx context.Context, plantName string) (*domain.ResearchResult, error) {
	m.record("ResearchPlant")
	if m.ResearchPlantFn != nil {
		return m.ResearchPlantFn(ctx, plantName)
	}
	return &domain.ResearchResult{PlantName: plantName, Summary: "A hardy annual."}, nil
}

// GenerateDiaryText implements generation.Generator.
func (m *MockGenerator) GenerateDiaryText(ctx context.Context, date, subject string, observations []string) (string, error) {
	m.record("GenerateDiaryText")
	if m.GenerateDiaryTextFn != nil {
		return m.GenerateDiaryTextFn(ctx, date, subject, observations)
	}
	return "Today the " + subject + " looked content.", nil
}

// GenerateDiaryImage implements generation.Generator.
func (m *MockGenerator) GenerateDiaryImage(ctx context.Context, date, content string) (string, error) {
	m.record("GenerateDiaryImage")
	if m.GenerateDiaryImageFn != nil {
		return m.GenerateDiaryImageFn(ctx, date, content)
	}
	return "img/diary-" + date + ".png", nil
}
