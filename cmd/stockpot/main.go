package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/joeshaw/envdecode"

	"stockpot"
	"stockpot/httpapi"
	"stockpot/model"
	"stockpot/model/bedrock"
	"stockpot/model/gemini"
	"stockpot/model/ollama"
	"stockpot/objstore"
	"stockpot/receipt"
	"stockpot/recommend"
	"stockpot/store"
	"stockpot/video"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var modelConfig stockpot.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var engineConfig stockpot.EngineConfig
	if err := envdecode.Decode(&engineConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var serverConfig stockpot.ServerConfig
	if err := envdecode.Decode(&serverConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var pgConfig stockpot.PostgresConfig
	if err := envdecode.Decode(&pgConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var receiptConfig stockpot.ReceiptStoreConfig
	if err := envdecode.Decode(&receiptConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	var transcriptConfig stockpot.TranscriptConfig
	if err := envdecode.Decode(&transcriptConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	if os.Getenv("DEBUG") != "" {
		stockpot.Dump(engineConfig, serverConfig, receiptConfig, transcriptConfig)
	}

	if err := store.RunMigrations(ctx, pgConfig.DSN); err != nil {
		slog.Error("SETUP: Failed to run migrations", "error", err)
		return
	}
	slog.Info("SETUP: Database migrations applied")

	pool, err := store.NewPool(ctx, pgConfig)
	if err != nil {
		slog.Error("SETUP: Failed to connect to Postgres", "error", err)
		return
	}
	defer pool.Close()
	db := store.NewStore(pool)
	slog.Info("SETUP: Postgres connection pool ready")

	mc, err := newModelClient(ctx, modelConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create model client", "error", err)
		return
	}
	slog.Info("SETUP: Model client ready", "provider", modelConfig.Provider, "model_id", modelConfig.ModelID)

	archive, err := newReceiptArchive(ctx, receiptConfig)
	if err != nil {
		slog.Error("SETUP: Failed to create receipt archive", "error", err)
		return
	}

	attemptLogger, cleanup, err := newAttemptLogger(modelConfig.ModelID)
	if err != nil {
		slog.Error("SETUP: Failed to create attempt logger", "error", err)
		return
	}
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("Failed to flush attempt log", "error", err)
		}
	}()

	tracerProvider, meterProvider, otelShutdown, err := stockpot.InitOtel(ctx)
	if err != nil {
		slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
		return
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	engine := recommend.NewInstrumentedEngine(
		mc,
		recommend.DefaultGenerationConfig,
		engineConfig.MaxAttempts,
		engineConfig.RetryDelay,
		attemptLogger,
		tracerProvider.Tracer(stockpot.TracerNameEngine),
		meterProvider.Meter(stockpot.TracerNameEngine),
	)

	parser := receipt.NewParser(mc, receipt.DefaultGenerationConfig)
	transcripts := video.NewTranscriptClient(transcriptConfig.BaseEndpoint, http.DefaultClient)
	generator := video.NewGenerator(transcripts, mc)

	handlers := httpapi.NewHandlers(engine, generator, parser, db, archive, serverConfig)
	router := chi.NewRouter()
	httpapi.MountRoutes(router, handlers)

	server := &http.Server{
		Addr:    serverConfig.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("SERVER: Listening", "addr", serverConfig.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("SERVER: Listen failed", "error", err)
		}
	case <-ctx.Done():
		slog.Info("SERVER: Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("SERVER: Shutdown failed", "error", err)
		}
	}
}

func newModelClient(ctx context.Context, cfg stockpot.ModelConfig) (model.Client, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(gemini.ClientOpts{
			ModelID: cfg.ModelID,
			APIKey:  cfg.APIKey,
		})
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), cfg.ModelID), nil
	case "ollama":
		return ollama.NewClient(ollama.ClientOpts{ModelID: cfg.ModelID})
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func newReceiptArchive(ctx context.Context, cfg stockpot.ReceiptStoreConfig) (objstore.Archive, error) {
	switch cfg.Backend {
	case "file":
		return objstore.NewFileArchive(cfg.Dir), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("RECEIPT_STORE_BUCKET must be set for the s3 backend")
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return objstore.NewS3Archive(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown receipt store backend %q", cfg.Backend)
	}
}

func newAttemptLogger(modelID string) (stockpot.AttemptLogger, func() error, error) {
	logFilePath := stockpot.NewAttemptLogFilePath(modelID)
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, func() error { return err }, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := stockpot.NewFileAttemptLogger(logFile)
	cleanup := func() error {
		return errors.Join(logger.Flush(), logFile.Close())
	}
	return logger, cleanup, nil
}
