// Package receipt turns receipt and food photos into structured items via
// the model boundary.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"stockpot"
	"stockpot/model"
)

// DefaultGenerationConfig keeps extraction calls near-deterministic.
var DefaultGenerationConfig = model.GenerationConfig{
	Temperature:     0.2,
	MaxOutputTokens: 2048,
	CandidateCount:  1,
}

const receiptPrompt = `Extract the food items from this receipt.
1. Extract each food item and its estimated shelf life in days.
2. Extract the date the items were bought and use it to estimate the shelf life.
3. Extract the price of each item.
Return ONLY valid JSON in this format:
{"items": [{"name": "string", "shelf_life_days": 0, "date_bought": "YYYY-MM-DD", "price": 0.0}]}`

const analyzePrompt = `Extract the food items from this image and their estimated shelf life in days.
Return ONLY valid JSON in this format:
{"items": [{"name": "string", "shelf_life_days": 0}]}`

// Extraction is the parsed result of a receipt or image call.
type Extraction struct {
	Items []stockpot.Item `json:"items"`
}

type Parser struct {
	model  model.Client
	config model.GenerationConfig
}

func NewParser(m model.Client, cfg model.GenerationConfig) *Parser {
	return &Parser{model: m, config: cfg}
}

// ParseReceipt extracts purchased items, dates and prices from a receipt
// image.
func (p *Parser) ParseReceipt(ctx context.Context, image []byte, mimeType string) (Extraction, error) {
	return p.extract(ctx, receiptPrompt, image, mimeType)
}

// AnalyzeImage extracts item names and shelf lives from a food photo.
func (p *Parser) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (Extraction, error) {
	return p.extract(ctx, analyzePrompt, image, mimeType)
}

func (p *Parser) extract(ctx context.Context, prompt string, image []byte, mimeType string) (Extraction, error) {
	raw, err := p.model.Generate(ctx, model.GenerateRequest{
		Prompt: prompt,
		Images: []model.Image{{MIMEType: mimeType, Data: image}},
		Config: p.config,
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("extract items: %w", err)
	}

	span, err := model.ExtractJSON(raw)
	if err != nil {
		slog.Warn("RECEIPT: No JSON in model output", "output_len", len(raw))
		return Extraction{}, fmt.Errorf("extract items: %w", err)
	}

	var ex Extraction
	if err := json.Unmarshal([]byte(span), &ex); err != nil {
		return Extraction{}, fmt.Errorf("decode items: %w", err)
	}
	if ex.Items == nil {
		ex.Items = []stockpot.Item{}
	}
	return ex, nil
}
