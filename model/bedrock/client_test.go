package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpot/model"
)

// mockBedrockClient implements runtimeClient for testing
type mockBedrockClient struct {
	lastInput *bedrockruntime.ConverseInput
	response  *bedrockruntime.ConverseOutput
	err       error
}

func (m *mockBedrockClient) Converse(ctx context.Context, input *bedrockruntime.ConverseInput, opts ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.lastInput = input
	return m.response, m.err
}

func textOutput(blocks ...types.ContentBlock) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		StopReason: "end_turn",
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Content: blocks},
		},
	}
}

func TestNewClient(t *testing.T) {
	mockClient := &mockBedrockClient{}

	c := NewClient(mockClient, "")
	assert.Equal(t, defaultModelID, c.modelID)

	c = NewClient(mockClient, "custom-model")
	assert.Equal(t, "custom-model", c.modelID)
	assert.Equal(t, mockClient, c.brc)
}

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name          string
		mockResponse  *bedrockruntime.ConverseOutput
		mockError     error
		expected      string
		expectedError string
	}{
		{
			name:         "successful text response",
			mockResponse: textOutput(&types.ContentBlockMemberText{Value: `{"recipes": []}`}),
			expected:     `{"recipes": []}`,
		},
		{
			name: "multiple text blocks concatenated",
			mockResponse: textOutput(
				&types.ContentBlockMemberText{Value: `{"recipes":`},
				&types.ContentBlockMemberText{Value: ` []}`},
			),
			expected: `{"recipes": []}`,
		},
		{
			name:          "converse error wrapped",
			mockError:     errors.New("throttled"),
			expectedError: "converse: throttled",
		},
		{
			name: "unexpected output type",
			mockResponse: &bedrockruntime.ConverseOutput{
				Output: nil,
			},
			expectedError: "unexpected converse output type",
		},
		{
			name:          "no text blocks in response",
			mockResponse:  textOutput(),
			expectedError: "empty bedrock response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := &mockBedrockClient{response: tt.mockResponse, err: tt.mockError}
			c := NewClient(mockClient, "custom-model")

			got, err := c.Generate(context.Background(), model.GenerateRequest{Prompt: "Hello"})
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClient_GenerateBuildsConverseInput(t *testing.T) {
	mockClient := &mockBedrockClient{response: textOutput(&types.ContentBlockMemberText{Value: "ok"})}
	c := NewClient(mockClient, "custom-model")

	_, err := c.Generate(context.Background(), model.GenerateRequest{
		Prompt: "what is in this image?",
		Images: []model.Image{{MIMEType: "image/png", Data: []byte("png bytes")}},
		Config: model.GenerationConfig{
			Temperature:     0.65,
			TopP:            0.9,
			TopK:            25,
			MaxOutputTokens: 2048,
		},
	})
	require.NoError(t, err)

	input := mockClient.lastInput
	require.NotNil(t, input)
	assert.Equal(t, "custom-model", *input.ModelId)

	require.NotNil(t, input.InferenceConfig)
	assert.Equal(t, int32(2048), *input.InferenceConfig.MaxTokens)
	assert.InDelta(t, 0.65, float64(*input.InferenceConfig.Temperature), 1e-6)
	assert.InDelta(t, 0.9, float64(*input.InferenceConfig.TopP), 1e-6)

	// top_k rides outside the base inference configuration
	require.NotNil(t, input.AdditionalModelRequestFields)
	raw, err := input.AdditionalModelRequestFields.MarshalSmithyDocument()
	require.NoError(t, err)
	assert.JSONEq(t, `{"top_k": 25}`, string(raw))

	// image block precedes the text block
	require.Len(t, input.Messages, 1)
	require.Len(t, input.Messages[0].Content, 2)
	img, ok := input.Messages[0].Content[0].(*types.ContentBlockMemberImage)
	require.True(t, ok)
	assert.Equal(t, types.ImageFormatPng, img.Value.Format)
	text, ok := input.Messages[0].Content[1].(*types.ContentBlockMemberText)
	require.True(t, ok)
	assert.Equal(t, "what is in this image?", text.Value)
}

func TestClient_GenerateOmitsTopKWhenUnset(t *testing.T) {
	mockClient := &mockBedrockClient{response: textOutput(&types.ContentBlockMemberText{Value: "ok"})}
	c := NewClient(mockClient, "custom-model")

	_, err := c.Generate(context.Background(), model.GenerateRequest{
		Prompt: "Hello",
		Config: model.GenerationConfig{Temperature: 0.2, MaxOutputTokens: 256},
	})
	require.NoError(t, err)
	require.NotNil(t, mockClient.lastInput)
	assert.Nil(t, mockClient.lastInput.AdditionalModelRequestFields)
}

func TestImageFormat(t *testing.T) {
	tests := []struct {
		mimeType string
		expected types.ImageFormat
	}{
		{mimeType: "image/png", expected: types.ImageFormatPng},
		{mimeType: "image/gif", expected: types.ImageFormatGif},
		{mimeType: "image/webp", expected: types.ImageFormatWebp},
		{mimeType: "image/jpeg", expected: types.ImageFormatJpeg},
		{mimeType: "application/octet-stream", expected: types.ImageFormatJpeg},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.expected, imageFormat(tt.mimeType))
		})
	}
}
