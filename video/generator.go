package video

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stockpot"
	"stockpot/model"
)

// DefaultGenerationConfig favors faithful extraction over creativity.
var DefaultGenerationConfig = model.GenerationConfig{
	Temperature:     0.3,
	TopP:            0.9,
	TopK:            25,
	MaxOutputTokens: 2048,
	CandidateCount:  1,
}

const recipePrompt = `You are given the transcript of a cooking video. Reconstruct the recipe
being demonstrated.

Transcript:
%s

Return a single JSON object with exactly these fields:
{
  "title": "Recipe name",
  "cook_time": "30 minutes",
  "difficulty": "easy",
  "servings": 4,
  "ingredients": ["quantity unit ingredient", ...],
  "steps": ["1. First instruction", "2. Second instruction", ...]
}

Every ingredient line must include a quantity and unit. Number the steps
sequentially starting at 1. If a detail is not stated in the transcript,
make a reasonable estimate. Respond with JSON only.`

type transcriptFetcher interface {
	Fetch(ctx context.Context, videoID, platform string) (string, error)
}

type modelClient interface {
	Generate(ctx context.Context, req model.GenerateRequest) (string, error)
}

// Generator turns a video reference into a recipe by fetching its
// transcript and asking the model to reconstruct what was demonstrated.
type Generator struct {
	transcripts transcriptFetcher
	model       modelClient
	config      model.GenerationConfig
}

func NewGenerator(transcripts transcriptFetcher, mc modelClient) *Generator {
	return &Generator{
		transcripts: transcripts,
		model:       mc,
		config:      DefaultGenerationConfig,
	}
}

// FromVideo fetches the transcript for the given video and generates a
// recipe from it. The source URL is recorded on the returned recipe.
func (g *Generator) FromVideo(ctx context.Context, videoURL, platform string) (*stockpot.Recipe, error) {
	videoID, err := VideoID(videoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", stockpot.ErrValidation, err)
	}

	transcript, err := g.transcripts.Fetch(ctx, videoID, platform)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}

	return g.FromTranscript(ctx, transcript, videoURL)
}

// FromTranscript generates a recipe directly from transcript text.
func (g *Generator) FromTranscript(ctx context.Context, transcript, sourceURL string) (*stockpot.Recipe, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("%w: transcript is empty", stockpot.ErrValidation)
	}

	raw, err := g.model.Generate(ctx, model.GenerateRequest{
		Prompt: fmt.Sprintf(recipePrompt, transcript),
		Config: g.config,
	})
	if err != nil {
		return nil, fmt.Errorf("generate recipe: %w", err)
	}

	span, err := model.ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("model output contained no recipe: %w", err)
	}

	var recipe stockpot.Recipe
	if err := json.Unmarshal([]byte(span), &recipe); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	if err := checkShape(&recipe); err != nil {
		return nil, fmt.Errorf("%w: %s", stockpot.ErrValidation, err)
	}

	recipe.URL = sourceURL
	return &recipe, nil
}

func checkShape(r *stockpot.Recipe) error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("recipe missing title")
	case len(r.Ingredients) == 0:
		return fmt.Errorf("recipe missing ingredients")
	case len(r.Steps) == 0:
		return fmt.Errorf("recipe missing steps")
	}
	return nil
}
