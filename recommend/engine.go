package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"stockpot"
	"stockpot/model"
)

// DefaultGenerationConfig is the fixed sampling configuration for
// recommendation calls. Passed by value into the model boundary so a fake
// model in tests sees exactly what production sends.
var DefaultGenerationConfig = model.GenerationConfig{
	Temperature:     0.65,
	TopP:            0.9,
	TopK:            25,
	MaxOutputTokens: 2048,
	CandidateCount:  1,
}

// Engine drives one recommendation request: build the prompt, call the
// model, validate, retry on any per-attempt failure, and annotate the
// accepted result. Attempts are fully sequential and reuse the identical
// prompt; only exhaustion surfaces to the caller.
type Engine struct {
	model       model.Client
	config      model.GenerationConfig
	maxAttempts int
	retryDelay  time.Duration
	logger      stockpot.AttemptLogger
}

// NewEngine initializes a new recommendation engine.
func NewEngine(m model.Client, cfg model.GenerationConfig, maxAttempts int, retryDelay time.Duration, logger stockpot.AttemptLogger) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Engine{
		model:       m,
		config:      cfg,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

// Recommend executes the recommendation pipeline for a given request.
func (e *Engine) Recommend(ctx context.Context, req stockpot.RecommendationRequest) ([]stockpot.Recipe, error) {
	if len(req.Inventory) == 0 {
		return nil, fmt.Errorf("%w: inventory is empty", stockpot.ErrValidation)
	}
	if req.Count < 1 || req.Count > 5 {
		return nil, fmt.Errorf("%w: count must be between 1 and 5", stockpot.ErrValidation)
	}

	skill := SkillForHistory(len(req.UserRecipes))
	prompt := BuildPrompt(req.Inventory, req.ExpiringItems, skill, req.Count)
	validator := NewValidator(req.Inventory, req.ExpiringItems)

	slog.Info("ENGINE: Starting run",
		"count", req.Count,
		"inventory_size", len(req.Inventory),
		"expiring_size", len(req.ExpiringItems),
		"skill", skill,
	)

	var lastFailure string

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if attempt > 1 && e.retryDelay > 0 {
			time.Sleep(e.retryDelay)
		}

		attemptLog := stockpot.AttemptLog{Attempt: attempt, Timestamp: time.Now(), Prompt: prompt}

		raw, err := e.model.Generate(ctx, model.GenerateRequest{Prompt: prompt, Config: e.config})
		if err != nil {
			lastFailure = err.Error()
			attemptLog.Error = lastFailure
			e.logAttempt(attemptLog)
			slog.Warn("ENGINE: Model call failed", "attempt", attempt, "error", err)
			continue
		}
		attemptLog.RawOutput = raw

		span, err := model.ExtractJSON(raw)
		if err != nil {
			lastFailure = err.Error()
			attemptLog.Error = lastFailure
			e.logAttempt(attemptLog)
			slog.Warn("ENGINE: No JSON in model output", "attempt", attempt, "output_len", len(raw))
			continue
		}

		if res := validator.ValidateResponse([]byte(span), req.Count); !res.OK {
			lastFailure = res.Reason
			attemptLog.Reason = res.Reason
			e.logAttempt(attemptLog)
			slog.Warn("ENGINE: Validation rejected response", "attempt", attempt, "reason", res.Reason)
			continue
		}

		e.logAttempt(attemptLog)

		var accepted struct {
			Recipes []stockpot.Recipe `json:"recipes"`
		}
		if err := json.Unmarshal([]byte(span), &accepted); err != nil {
			// Cannot happen after a passing validation, but stay on the retry path.
			lastFailure = err.Error()
			continue
		}

		for i := range accepted.Recipes {
			AnnotateRecipe(&accepted.Recipes[i], req.Inventory, req.ExpiringItems)
		}

		slog.Info("ENGINE: Run accepted", "attempt", attempt, "recipes", len(accepted.Recipes))
		return accepted.Recipes, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %s", stockpot.ErrExhausted, e.maxAttempts, lastFailure)
}

// logAttempt logs an attempt using the configured logger, handling errors gracefully
func (e *Engine) logAttempt(attempt stockpot.AttemptLog) {
	if e.logger != nil {
		if err := e.logger.LogAttempt(attempt); err != nil {
			slog.Error("Failed to log generation attempt", "error", err, "attempt", attempt.Attempt)
		}
	}
}
