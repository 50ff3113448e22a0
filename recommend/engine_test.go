package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stockpot"
	"stockpot/model"
)

// Mock model client
type mockModelClient struct {
	responses []string
	errs      []error
	callCount int
	lastReq   model.GenerateRequest
}

func (m *mockModelClient) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	i := m.callCount
	m.callCount++
	m.lastReq = req

	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("no more responses configured")
}

func validResponseJSON() string {
	return `{"recipes":[{"title":"Chicken and Broccoli Stir Fry","cook_time":"30 minutes","difficulty":"easy","servings":2,` +
		`"ingredients":["2 lbs fresh chicken breast, diced","1 head fresh broccoli, chopped","3 cloves garlic, diced"],` +
		`"steps":["1. Dice the chicken and chop the broccoli into florets.","2. Saute the garlic in hot oil until golden.","3. Stir-fry everything together until the chicken is done."]}]}`
}

func requestFixture() stockpot.RecommendationRequest {
	return stockpot.RecommendationRequest{
		Inventory:     inventoryFixture(),
		ExpiringItems: expiringFixture(),
		Count:         1,
	}
}

func newTestEngine(m model.Client) *Engine {
	return NewEngine(m, DefaultGenerationConfig, 3, 0, stockpot.NewNoOpAttemptLogger())
}

func TestRecommendRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*stockpot.RecommendationRequest)
	}{
		{name: "empty inventory", mutate: func(r *stockpot.RecommendationRequest) { r.Inventory = nil }},
		{name: "count zero", mutate: func(r *stockpot.RecommendationRequest) { r.Count = 0 }},
		{name: "count too high", mutate: func(r *stockpot.RecommendationRequest) { r.Count = 6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockModelClient{}
			req := requestFixture()
			tt.mutate(&req)

			_, err := newTestEngine(llm).Recommend(context.Background(), req)
			if !errors.Is(err, stockpot.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if llm.callCount != 0 {
				t.Errorf("model called %d times, want 0", llm.callCount)
			}
		})
	}
}

func TestRecommendFirstAttemptSuccess(t *testing.T) {
	llm := &mockModelClient{responses: []string{validResponseJSON()}}

	recipes, err := newTestEngine(llm).Recommend(context.Background(), requestFixture())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("got %d recipes, want 1", len(recipes))
	}
	if llm.callCount != 1 {
		t.Errorf("model called %d times, want 1", llm.callCount)
	}
	if recipes[0].Metadata == nil {
		t.Fatal("accepted recipe missing metadata")
	}
	if recipes[0].Metadata.Stats.EfficiencyScore < 0 || recipes[0].Metadata.Stats.EfficiencyScore > 100 {
		t.Errorf("efficiency score %d out of range", recipes[0].Metadata.Stats.EfficiencyScore)
	}

	// The fixed generation configuration reaches the model unchanged.
	if llm.lastReq.Config != DefaultGenerationConfig {
		t.Errorf("model saw config %+v, want %+v", llm.lastReq.Config, DefaultGenerationConfig)
	}
}

func TestRecommendToleratesCommentaryAroundJSON(t *testing.T) {
	llm := &mockModelClient{responses: []string{
		"Here are your recipes!\n```json\n" + validResponseJSON() + "\n```\nEnjoy!",
	}}

	recipes, err := newTestEngine(llm).Recommend(context.Background(), requestFixture())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("got %d recipes, want 1", len(recipes))
	}
}

func TestRecommendRetriesThenSucceeds(t *testing.T) {
	llm := &mockModelClient{
		errs:      []error{errors.New("connection refused"), nil},
		responses: []string{"", validResponseJSON()},
	}

	recipes, err := newTestEngine(llm).Recommend(context.Background(), requestFixture())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("got %d recipes, want 1", len(recipes))
	}
	if llm.callCount != 2 {
		t.Errorf("model called %d times, want 2", llm.callCount)
	}
}

func TestRecommendExhaustsAttempts(t *testing.T) {
	// Three validation failures in a row: the terminal error carries the
	// third failure's reason and no fourth call is issued.
	llm := &mockModelClient{responses: []string{
		`{"recipes":[]}`,
		`{"meals":[]}`,
		`{"recipes":[{"title":"","cook_time":"x","difficulty":"easy","servings":2,"ingredients":[],"steps":[]}]}`,
	}}

	_, err := newTestEngine(llm).Recommend(context.Background(), requestFixture())
	if !errors.Is(err, stockpot.ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if llm.callCount != 3 {
		t.Errorf("model called %d times, want exactly 3", llm.callCount)
	}
	if !strings.Contains(err.Error(), "title") {
		t.Errorf("terminal error %q should carry the last failure's reason", err.Error())
	}
}

func TestRecommendAttemptLogging(t *testing.T) {
	logged := &captureAttemptLogger{}
	llm := &mockModelClient{responses: []string{"not json at all", validResponseJSON()}}

	engine := NewEngine(llm, DefaultGenerationConfig, 3, 0, logged)
	if _, err := engine.Recommend(context.Background(), requestFixture()); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(logged.attempts) != 2 {
		t.Fatalf("logged %d attempts, want 2", len(logged.attempts))
	}
	if logged.attempts[0].Error == "" {
		t.Error("first attempt should record the extraction failure")
	}
	if logged.attempts[1].Error != "" || logged.attempts[1].Reason != "" {
		t.Error("accepted attempt should record neither error nor rejection reason")
	}
}

type captureAttemptLogger struct {
	attempts []stockpot.AttemptLog
}

func (c *captureAttemptLogger) LogAttempt(a stockpot.AttemptLog) error {
	c.attempts = append(c.attempts, a)
	return nil
}
