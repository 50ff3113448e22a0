// Package ollama implements the model client against a local Ollama
// server. Intended for development without cloud credentials.
package ollama

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

const defaultBaseEndpoint = "http://localhost:11434"

type Client struct {
	endpoint   string
	modelID    string
	httpClient stockpot.HTTPClient
}

type ClientOpts struct {
	BaseEndpoint string // defaults to the local Ollama endpoint
	ModelID      string
	HTTPClient   stockpot.HTTPClient
}

func NewClient(opts ClientOpts) (*Client, error) {
	if opts.ModelID == "" {
		return nil, fmt.Errorf("model ID is required")
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.BaseEndpoint == "" {
		opts.BaseEndpoint = defaultBaseEndpoint
	}
	return &Client{
		endpoint:   opts.BaseEndpoint + "/api/chat",
		modelID:    opts.ModelID,
		httpClient: opts.HTTPClient,
	}, nil
}

type wireOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`
	TopK        int32   `json:"top_k,omitempty"`
	NumPredict  int32   `json:"num_predict,omitempty"`
}

type wireMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64-encoded
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  wireOptions   `json:"options,omitempty"`
}

type wireResponse struct {
	Message wireMessage `json:"message"`
	// other metadata omitted but available
}

// Generate sends the prompt to the Ollama chat API and returns the
// model's text output.
func (c *Client) Generate(ctx context.Context, genReq model.GenerateRequest) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.modelID, "prompt_len", len(genReq.Prompt))

	msg := wireMessage{Role: "user", Content: genReq.Prompt}
	for _, img := range genReq.Images {
		msg.Images = append(msg.Images, base64.StdEncoding.EncodeToString(img.Data))
	}

	reqBody := wireRequest{
		Model:    c.modelID,
		Messages: []wireMessage{msg},
		Stream:   false,
		Options: wireOptions{
			Temperature: float32(genReq.Config.Temperature),
			TopP:        float32(genReq.Config.TopP),
			TopK:        int32(genReq.Config.TopK),
			NumPredict:  int32(genReq.Config.MaxOutputTokens),
		},
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM_CLIENT: %s: %s", resp.Status, string(body))
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return "", fmt.Errorf("LLM_CLIENT: failed to decode response: %w", err)
	}
	if wr.Message.Content == "" {
		return "", fmt.Errorf("LLM_CLIENT: empty response from model")
	}

	return wr.Message.Content, nil
}
