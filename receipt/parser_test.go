package receipt

import (
	"context"
	"errors"
	"testing"

	"stockpot/model"
)

type mockModelClient struct {
	response string
	err      error
	lastReq  model.GenerateRequest
}

func (m *mockModelClient) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	m.lastReq = req
	return m.response, m.err
}

func TestParseReceipt(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		err       error
		wantItems int
		wantErr   bool
	}{
		{
			name:      "items with prices",
			response:  `{"items":[{"name":"milk","shelf_life_days":7,"date_bought":"2026-08-01","price":3.49},{"name":"bread","shelf_life_days":5,"date_bought":"2026-08-01","price":2.99}]}`,
			wantItems: 2,
		},
		{
			name:      "commentary around the JSON",
			response:  "Here is what I found:\n{\"items\":[{\"name\":\"eggs\",\"shelf_life_days\":21}]}\nLet me know if you need more.",
			wantItems: 1,
		},
		{
			name:      "empty items list",
			response:  `{"items":[]}`,
			wantItems: 0,
		},
		{
			name:      "missing items key yields empty slice",
			response:  `{}`,
			wantItems: 0,
		},
		{
			name:     "no JSON in reply",
			response: "I cannot read this receipt.",
			wantErr:  true,
		},
		{
			name:    "model error",
			err:     errors.New("quota exceeded"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockModelClient{response: tt.response, err: tt.err}
			p := NewParser(llm, DefaultGenerationConfig)

			ex, err := p.ParseReceipt(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseReceipt() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(ex.Items) != tt.wantItems {
				t.Errorf("got %d items, want %d", len(ex.Items), tt.wantItems)
			}
			if len(llm.lastReq.Images) != 1 {
				t.Errorf("model received %d images, want 1", len(llm.lastReq.Images))
			}
		})
	}
}

func TestAnalyzeImageUsesItsOwnPrompt(t *testing.T) {
	llm := &mockModelClient{response: `{"items":[{"name":"bananas","shelf_life_days":4}]}`}
	p := NewParser(llm, DefaultGenerationConfig)

	ex, err := p.AnalyzeImage(context.Background(), []byte{0x89, 0x50}, "image/png")
	if err != nil {
		t.Fatal(err)
	}
	if len(ex.Items) != 1 || ex.Items[0].Name != "bananas" {
		t.Fatalf("items = %+v", ex.Items)
	}
	if llm.lastReq.Prompt == receiptPrompt {
		t.Error("AnalyzeImage should not reuse the receipt prompt")
	}
	if llm.lastReq.Images[0].MIMEType != "image/png" {
		t.Errorf("MIME type = %q, want image/png", llm.lastReq.Images[0].MIMEType)
	}
}
