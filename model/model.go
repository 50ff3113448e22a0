// Package model defines the boundary to hosted text-generation APIs.
// Provider implementations live in the gemini and bedrock subpackages.
package model

import "context"

// GenerationConfig carries the sampling parameters for a single call. It is
// passed by value into the provider boundary so callers can pin an immutable
// configuration per use case.
type GenerationConfig struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
	CandidateCount  int
}

// Image is an inline image part for vision-capable calls.
type Image struct {
	MIMEType string
	Data     []byte
}

// GenerateRequest is a single text-generation request. Images may be empty
// for text-only prompts.
type GenerateRequest struct {
	Prompt string
	Images []Image
	Config GenerationConfig
}

// Client is implemented by each provider. Generate returns the raw text of
// the model's reply; the caller decides how to parse it.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
