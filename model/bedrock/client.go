// Package bedrock implements the model boundary on top of the Bedrock
// Converse API.
package bedrock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"stockpot/model"
)

// defaultModelID is an inference profile ID, not the foundation model's ID.
// See https://docs.aws.amazon.com/bedrock/latest/userguide/inference-profiles.html.
const defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

type runtimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Client struct {
	brc     runtimeClient
	modelID string
}

func NewClient(brc runtimeClient, modelID string) *Client {
	if modelID == "" {
		modelID = defaultModelID
	}
	return &Client{brc: brc, modelID: modelID}
}

// Generate sends a single-turn Converse call and concatenates the text blocks
// of the reply.
func (c *Client) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "model", c.modelID, "prompt_len", len(req.Prompt), "images", len(req.Images))

	content := make([]types.ContentBlock, 0, 1+len(req.Images))
	for _, img := range req.Images {
		content = append(content, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: imageFormat(img.MIMEType),
				Source: &types.ImageSourceMemberBytes{Value: img.Data},
			},
		})
	}
	content = append(content, &types.ContentBlockMemberText{Value: req.Prompt})

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(c.modelID),
		Messages: []types.Message{{Role: types.ConversationRoleUser, Content: content}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(req.Config.MaxOutputTokens)),
			Temperature: aws.Float32(float32(req.Config.Temperature)),
			TopP:        aws.Float32(float32(req.Config.TopP)),
		},
	}
	if req.Config.TopK > 0 {
		// top_k is not part of the base inference configuration.
		input.AdditionalModelRequestFields = document.NewLazyDocument(map[string]any{
			"top_k": req.Config.TopK,
		})
	}

	out, err := c.brc.Converse(ctx, input)
	if err != nil {
		return "", fmt.Errorf("converse: %w", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", fmt.Errorf("unexpected converse output type %T", out.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty bedrock response")
	}
	return sb.String(), nil
}

func imageFormat(mimeType string) types.ImageFormat {
	switch mimeType {
	case "image/png":
		return types.ImageFormatPng
	case "image/gif":
		return types.ImageFormatGif
	case "image/webp":
		return types.ImageFormatWebp
	default:
		return types.ImageFormatJpeg
	}
}
