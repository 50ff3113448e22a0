// Package gemini implements the model boundary on top of the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"stockpot"
	"stockpot/model"
)

const defaultBaseEndpoint = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	baseEndpoint string
	modelID      string
	apiKey       string
	httpClient   stockpot.HTTPClient
}

type ClientOpts struct {
	BaseEndpoint string // defaults to the public Gemini endpoint
	ModelID      string
	APIKey       string
	HTTPClient   stockpot.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ModelID == "" {
		return nil, fmt.Errorf("model ID is required")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseEndpoint == "" {
		opts.BaseEndpoint = defaultBaseEndpoint
	}
	return &Client{
		baseEndpoint: opts.BaseEndpoint,
		modelID:      opts.ModelID,
		apiKey:       opts.APIKey,
		httpClient:   opts.HTTPClient,
	}, nil
}

type wirePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *wireInlineData `json:"inline_data,omitempty"`
}

type wireInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type wireContent struct {
	Parts []wirePart `json:"parts"`
}

type wireGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	CandidateCount  int     `json:"candidateCount,omitempty"`
}

type wireRequest struct {
	Contents         []wireContent        `json:"contents"`
	GenerationConfig wireGenerationConfig `json:"generationConfig"`
}

type wireResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends one generateContent call and returns the first candidate's
// text. An empty candidate list is an error so the caller's retry loop can
// treat it like any other transport failure.
func (c *Client) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.modelID, "prompt_len", len(req.Prompt), "images", len(req.Images))

	parts := make([]wirePart, 0, 1+len(req.Images))
	for _, img := range req.Images {
		parts = append(parts, wirePart{
			InlineData: &wireInlineData{
				MIMEType: img.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	parts = append(parts, wirePart{Text: req.Prompt})

	body, err := json.Marshal(wireRequest{
		Contents: []wireContent{{Parts: parts}},
		GenerationConfig: wireGenerationConfig{
			Temperature:     req.Config.Temperature,
			TopP:            req.Config.TopP,
			TopK:            req.Config.TopK,
			MaxOutputTokens: req.Config.MaxOutputTokens,
			CandidateCount:  req.Config.CandidateCount,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseEndpoint, c.modelID, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(raw))
	}

	var wr wireResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(wr.Candidates) == 0 || len(wr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty gemini response")
	}

	text := wr.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", fmt.Errorf("empty gemini response")
	}
	return text, nil
}
