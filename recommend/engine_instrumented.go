package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"stockpot"
	"stockpot/model"
)

// InstrumentedEngine is an instrumented version of the Engine with
// observability metrics around the attempt loop.
type InstrumentedEngine struct {
	model       model.Client
	config      model.GenerationConfig
	maxAttempts int
	retryDelay  time.Duration
	logger      stockpot.AttemptLogger
	tracer      trace.Tracer
	meter       metric.Meter
}

// NewInstrumentedEngine initializes a new instrumented recommendation engine.
func NewInstrumentedEngine(m model.Client, cfg model.GenerationConfig, maxAttempts int, retryDelay time.Duration, logger stockpot.AttemptLogger, tracer trace.Tracer, meter metric.Meter) *InstrumentedEngine {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &InstrumentedEngine{
		model:       m,
		config:      cfg,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
		tracer:      tracer,
		meter:       meter,
	}
}

// Recommend executes the recommendation pipeline with full instrumentation.
func (e *InstrumentedEngine) Recommend(ctx context.Context, req stockpot.RecommendationRequest) ([]stockpot.Recipe, error) {
	ctx, span := e.tracer.Start(ctx, "InstrumentedEngine.Recommend")
	defer span.End()

	runsCounter, _ := e.meter.Int64Counter("engine_runs_total",
		metric.WithDescription("Total number of recommendation runs started"))
	runsCompletedCounter, _ := e.meter.Int64Counter("engine_runs_completed_total",
		metric.WithDescription("Total number of recommendation runs that produced an accepted result"))
	runsRejectedCounter, _ := e.meter.Int64Counter("engine_runs_rejected_total",
		metric.WithDescription("Total number of runs rejected before any model call"))
	runsExhaustedCounter, _ := e.meter.Int64Counter("engine_runs_exhausted_total",
		metric.WithDescription("Total number of runs that consumed all attempts"))
	attemptsCounter, _ := e.meter.Int64Counter("engine_attempts_total",
		metric.WithDescription("Total number of model attempts issued"))
	modelErrorsCounter, _ := e.meter.Int64Counter("engine_model_errors_total",
		metric.WithDescription("Total number of attempts lost to transport or parse errors"))
	validationRejectionsCounter, _ := e.meter.Int64Counter("engine_validation_rejections_total",
		metric.WithDescription("Total number of attempts rejected by the validator"))

	runDurationHist, _ := e.meter.Float64Histogram("engine_run_duration_seconds",
		metric.WithDescription("Total duration of a recommendation run in seconds"))
	modelResponseTimeHist, _ := e.meter.Float64Histogram("engine_model_response_time_seconds",
		metric.WithDescription("Time taken to receive a response from the model in seconds"))

	promptSizeGauge, _ := e.meter.Int64Gauge("engine_prompt_size_bytes",
		metric.WithDescription("Size of the prompt sent to the model in bytes"))

	runsCounter.Add(ctx, 1)

	if len(req.Inventory) == 0 {
		runsRejectedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "empty inventory")
		return nil, fmt.Errorf("%w: inventory is empty", stockpot.ErrValidation)
	}
	if req.Count < 1 || req.Count > 5 {
		runsRejectedCounter.Add(ctx, 1)
		span.SetStatus(codes.Error, "count out of range")
		return nil, fmt.Errorf("%w: count must be between 1 and 5", stockpot.ErrValidation)
	}

	skill := SkillForHistory(len(req.UserRecipes))
	prompt := BuildPrompt(req.Inventory, req.ExpiringItems, skill, req.Count)
	validator := NewValidator(req.Inventory, req.ExpiringItems)

	span.SetAttributes(
		attribute.Int("request.count", req.Count),
		attribute.Int("request.inventory_size", len(req.Inventory)),
		attribute.Int("request.expiring_size", len(req.ExpiringItems)),
		attribute.String("request.skill", string(skill)),
	)
	promptSizeGauge.Record(ctx, int64(len(prompt)))

	slog.Info("ENGINE: Starting instrumented run",
		"count", req.Count,
		"inventory_size", len(req.Inventory),
		"expiring_size", len(req.ExpiringItems),
		"skill", skill,
	)

	runStart := time.Now()
	var lastFailure string

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if attempt > 1 && e.retryDelay > 0 {
			time.Sleep(e.retryDelay)
		}

		ctx, attemptSpan := e.tracer.Start(ctx, fmt.Sprintf("InstrumentedEngine.Attempt.%d", attempt))
		attemptsCounter.Add(ctx, 1)

		attemptLog := stockpot.AttemptLog{Attempt: attempt, Timestamp: time.Now(), Prompt: prompt}

		modelStart := time.Now()
		raw, err := e.model.Generate(ctx, model.GenerateRequest{Prompt: prompt, Config: e.config})
		modelResponseTimeHist.Record(ctx, time.Since(modelStart).Seconds())
		if err != nil {
			lastFailure = err.Error()
			attemptLog.Error = lastFailure
			e.logAttempt(attemptLog)
			modelErrorsCounter.Add(ctx, 1)
			attemptSpan.RecordError(err)
			attemptSpan.SetStatus(codes.Error, "model call failed")
			attemptSpan.End()
			slog.Warn("ENGINE: Model call failed", "attempt", attempt, "error", err)
			continue
		}
		attemptLog.RawOutput = raw

		jsonSpan, err := model.ExtractJSON(raw)
		if err != nil {
			lastFailure = err.Error()
			attemptLog.Error = lastFailure
			e.logAttempt(attemptLog)
			modelErrorsCounter.Add(ctx, 1)
			attemptSpan.SetStatus(codes.Error, "no JSON in model output")
			attemptSpan.End()
			slog.Warn("ENGINE: No JSON in model output", "attempt", attempt, "output_len", len(raw))
			continue
		}

		if res := validator.ValidateResponse([]byte(jsonSpan), req.Count); !res.OK {
			lastFailure = res.Reason
			attemptLog.Reason = res.Reason
			e.logAttempt(attemptLog)
			validationRejectionsCounter.Add(ctx, 1)
			attemptSpan.SetStatus(codes.Error, "validation rejected")
			attemptSpan.SetAttributes(attribute.String("validation.reason", res.Reason))
			attemptSpan.End()
			slog.Warn("ENGINE: Validation rejected response", "attempt", attempt, "reason", res.Reason)
			continue
		}

		e.logAttempt(attemptLog)
		attemptSpan.End()

		var accepted struct {
			Recipes []stockpot.Recipe `json:"recipes"`
		}
		if err := json.Unmarshal([]byte(jsonSpan), &accepted); err != nil {
			lastFailure = err.Error()
			continue
		}

		for i := range accepted.Recipes {
			AnnotateRecipe(&accepted.Recipes[i], req.Inventory, req.ExpiringItems)
		}

		runsCompletedCounter.Add(ctx, 1)
		runDurationHist.Record(ctx, time.Since(runStart).Seconds())
		span.SetAttributes(attribute.Int("run.attempts", attempt))
		slog.Info("ENGINE: Run accepted", "attempt", attempt, "recipes", len(accepted.Recipes))
		return accepted.Recipes, nil
	}

	runsExhaustedCounter.Add(ctx, 1)
	runDurationHist.Record(ctx, time.Since(runStart).Seconds())
	span.SetStatus(codes.Error, "attempts exhausted")
	return nil, fmt.Errorf("%w after %d attempts: %s", stockpot.ErrExhausted, e.maxAttempts, lastFailure)
}

func (e *InstrumentedEngine) logAttempt(attempt stockpot.AttemptLog) {
	if e.logger != nil {
		if err := e.logger.LogAttempt(attempt); err != nil {
			slog.Error("Failed to log generation attempt", "error", err, "attempt", attempt.Attempt)
		}
	}
}
