package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sproutlab/sprout-api/internal/config"
	"github.com/sproutlab/sprout-api/internal/domain"
	"github.com/sproutlab/sprout-api/internal/generation"
	"google.golang.org/genai"
)

// Generator implements generation.Generator against the Gemini API.
type Generator struct {
	client     *genai.Client
	model      string
	imageModel string
	images     generation.ImageStore
	logger     *slog.Logger
}

// NewGenerator creates a Generator from the LLM configuration. images
// receives every generated image; results reference what it returns.
func NewGenerator(
	ctx context.Context,
	cfg config.LLMConfig,
	images generation.ImageStore,
	log *slog.Logger,
) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ImageModelName == "" {
		return nil, fmt.Errorf("%w: image model name cannot be empty", generation.ErrInvalidConfig)
	}
	if images == nil {
		return nil, fmt.Errorf("%w: image store cannot be nil", generation.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		client:     client,
		model:      cfg.ModelName,
		imageModel: cfg.ImageModelName,
		images:     images,
		logger:     log.With("component", "gemini_generator"),
	}, nil
}

var _ generation.Generator = (*Generator)(nil)

// AnalyzeSeedPacket implements generation.Generator.
func (g *Generator) AnalyzeSeedPacket(ctx context.Context, imageData []byte) (*domain.AnalysisResult, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: seed packet image is empty", generation.ErrInvalidInput)
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, http.DetectContentType(imageData)),
		genai.NewPartFromText(analysisPrompt),
	}

	var result domain.AnalysisResult
	if err := g.generateJSON(ctx, parts, &result); err != nil {
		return nil, err
	}
	if result.PlantName == "" {
		return nil, fmt.Errorf("%w: analysis response missing plant name", generation.ErrInvalidResponse)
	}
	return &result, nil
}

// GenerateGuide implements generation.Generator.
func (g *Generator) GenerateGuide(ctx context.Context, plantName string) (*domain.GuideResult, error) {
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name is empty", generation.ErrInvalidInput)
	}

	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(guidePromptFmt, plantName))}

	var result domain.GuideResult
	if err := g.generateJSON(ctx, parts, &result); err != nil {
		return nil, err
	}
	if len(result.Steps) == 0 {
		return nil, fmt.Errorf("%w: guide response has no steps", generation.ErrInvalidResponse)
	}
	if result.PlantName == "" {
		result.PlantName = plantName
	}
	return &result, nil
}

// GenerateCharacter implements generation.Generator.
func (g *Generator) GenerateCharacter(ctx context.Context, plantName string) (*domain.CharacterResult, error) {
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name is empty", generation.ErrInvalidInput)
	}
	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(characterPromptFmt, plantName))}
	return g.generateCharacter(ctx, plantName, parts)
}

// GenerateCharacterFromImage implements generation.Generator.
func (g *Generator) GenerateCharacterFromImage(ctx context.Context, imageData []byte) (*domain.CharacterResult, error) {
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: seed packet image is empty", generation.ErrInvalidInput)
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(imageData, http.DetectContentType(imageData)),
		genai.NewPartFromText(characterFromImagePrompt),
	}
	return g.generateCharacter(ctx, "seed packet plant", parts)
}

// ResearchPlant implements generation.Generator.
func (g *Generator) ResearchPlant(ctx context.Context, plantName string) (*domain.ResearchResult, error) {
	if plantName == "" {
		return nil, fmt.Errorf("%w: plant name is empty", generation.ErrInvalidInput)
	}

	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(researchPromptFmt, plantName))}

	var result domain.ResearchResult
	if err := g.generateJSON(ctx, parts, &result); err != nil {
		return nil, err
	}
	if result.Summary == "" {
		return nil, fmt.Errorf("%w: research response has no summary", generation.ErrInvalidResponse)
	}
	if result.PlantName == "" {
		result.PlantName = plantName
	}
	return &result, nil
}

// GenerateDiaryText implements generation.Generator.
func (g *Generator) GenerateDiaryText(ctx context.Context, date, subject string, observations []string) (string, error) {
	prompt := fmt.Sprintf(diaryTextPromptFmt, date, subject)
	if len(observations) > 0 {
		prompt += "\n\nRecent observations:\n- " + strings.Join(observations, "\n- ")
	}

	resp, err := g.call(ctx, g.model, []*genai.Part{genai.NewPartFromText(prompt)}, nil)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty diary text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// GenerateDiaryImage implements generation.Generator.
func (g *Generator) GenerateDiaryImage(ctx context.Context, date, content string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(fmt.Sprintf(diaryImagePromptFmt, date, content))}

	resp, err := g.call(ctx, g.imageModel, parts, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return "", err
	}

	data, mimeType, err := extractImage(resp)
	if err != nil {
		return "", err
	}
	return g.images.SaveImage(ctx, "diary-"+date, mimeType, data)
}

func (g *Generator) generateCharacter(ctx context.Context, persona string, parts []*genai.Part) (*domain.CharacterResult, error) {
	resp, err := g.call(ctx, g.imageModel, parts, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, err
	}

	data, mimeType, err := extractImage(resp)
	if err != nil {
		return nil, err
	}
	ref, err := g.images.SaveImage(ctx, "character-"+uuid.New().String(), mimeType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store character image: %w", err)
	}

	return &domain.CharacterResult{
		Name:     persona,
		ImageRef: ref,
		Persona:  strings.TrimSpace(resp.Text()),
	}, nil
}

// generateJSON asks the text model for a JSON-only answer and decodes it
// into out.
func (g *Generator) generateJSON(ctx context.Context, parts []*genai.Part, out any) error {
	resp, err := g.call(ctx, g.model, parts, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return err
	}

	text := resp.Text()
	if text == "" {
		return fmt.Errorf("%w: empty response body", generation.ErrInvalidResponse)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: failed to decode JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return nil
}

func (g *Generator) call(
	ctx context.Context,
	model string,
	parts []*genai.Part,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		g.logger.Error("gemini call failed", "model", model, "error", err)
		return nil, classifyError(err)
	}
	return resp, checkResponse(resp)
}

// checkResponse rejects responses the caller cannot use: nothing
// generated, or generation stopped by safety filters.
func checkResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil || len(resp.Candidates) == 0 {
		return fmt.Errorf("%w: no candidates generated", generation.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return fmt.Errorf("%w: generation stopped by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return fmt.Errorf("%w: candidate has no content", generation.ErrInvalidResponse)
	}
	return nil
}

// extractImage returns the first inline image in the response.
func extractImage(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", fmt.Errorf("%w: response carries no image", generation.ErrInvalidResponse)
}

// classifyError maps transport errors onto the generation taxonomy.
// Rate limiting and server-side failures are transient; everything the
// caller sent wrong is permanent.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		case apiErr.Code == http.StatusBadRequest:
			return fmt.Errorf("%w: %v", generation.ErrInvalidInput, err)
		default:
			return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
		}
	}

	// Transport-level failures with no API status are assumed transient.
	return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
}
