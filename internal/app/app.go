// Package app builds the logger and service graph shared by the server and
// the command line client.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rahul4469/cro-analyzer/internal/config"
	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/services"
)

// NewLogger builds a development logger in development and a JSON
// production logger otherwise, both writing to stderr at cfg.Log.Level.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("env", cfg.Server.Environment)), nil
}

// NewServices wires the configured text generation backend, the page
// fetcher and every analyzer. Analysis calls are retried; chat is not.
func NewServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*services.Services, error) {
	gen, err := llm.New(ctx, cfg.LLM, logger.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("text generation client: %w", err)
	}
	analysisGen := llm.Wrap(gen, llm.Retry(cfg.LLM.MaxAttempts, cfg.LLM.RetryBaseDelay))

	fetcher := services.NewPageFetcher(services.FetcherOptions{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		MaxBytes:  cfg.Fetch.MaxBytes,
	}, logger.Named("fetch"))

	return services.New(analysisGen, gen, fetcher, services.Options{
		MaxPromptChars: cfg.Limits.MaxPromptChars,
		CacheSize:      cfg.Limits.CacheSize,
		CacheTTL:       cfg.Limits.CacheTTL,
	}, logger), nil
}
