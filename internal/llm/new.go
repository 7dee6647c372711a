package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/config"
)

// New builds the configured backend wrapped with logging and a per-call
// deadline. Retries are not added here: analysis paths add Retry on top,
// the chat path deliberately does not.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Generator, error) {
	var (
		base Generator
		err  error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base, err = NewOpenAIClient(OpenAIOptions{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			Temperature: cfg.Temperature,
		})
	case config.ProviderGemini:
		base, err = NewGeminiClient(ctx, GeminiOptions{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Wrap(base, Logging(logger), Timeout(cfg.CallTimeout)), nil
}
