package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/llm"
)

// Options tunes the analysis services.
type Options struct {
	MaxPromptChars int
	CacheSize      int
	CacheTTL       time.Duration
}

// Services bundles the entry points used by the HTTP layer and the CLI.
type Services struct {
	// Provider names the backend serving chat, e.g. "openai:gpt-4o-mini".
	Provider string
	Site     *SiteAnalyzer
	SEO      *Orchestrator
	Chat     *ChatRelay
}

// New wires every analyzer. analysisGen serves the JSON analyses and is
// expected to carry retry middleware; chatGen serves the chat stream.
func New(analysisGen, chatGen llm.Generator, fetcher SiteFetcher, opts Options, logger *zap.Logger) *Services {
	logger = nopIfNil(logger)
	prompts := Prompts{MaxChars: opts.MaxPromptChars}

	seo := NewOrchestrator(
		NewCategoryAnalyzer(analysisGen, prompts, logger.Named("category")),
		analysisGen, prompts, logger.Named("seo"),
	)
	site := NewSiteAnalyzer(
		fetcher,
		NewOverviewAnalyzer(analysisGen, prompts, logger.Named("overview")),
		NewTrustAnalyzer(analysisGen, prompts, logger.Named("trust")),
		NewCopyAnalyzer(analysisGen, prompts, logger.Named("copy")),
		seo,
		NewAnalysisCache(opts.CacheSize, opts.CacheTTL),
		logger.Named("site"),
	)

	return &Services{
		Provider: chatGen.Name(),
		Site:     site,
		SEO:      seo,
		Chat:     NewChatRelay(chatGen, prompts, logger.Named("chat")),
	}
}

func nopIfNil(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
