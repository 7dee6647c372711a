package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rahul4469/cro-analyzer/internal/jsonrepair"
	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
)

// OverallFailure is the error marker set when the narrative call fails.
const OverallFailure = "Failed to generate overall analysis"

// Orchestrator runs every category analysis concurrently and then asks for
// an overall narrative across the combined results.
type Orchestrator struct {
	categories []models.Category
	analyzer   *CategoryAnalyzer
	gen        llm.Generator
	prompts    Prompts
	logger     *zap.Logger
}

func NewOrchestrator(analyzer *CategoryAnalyzer, gen llm.Generator, prompts Prompts, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		categories: models.AllCategories(),
		analyzer:   analyzer,
		gen:        gen,
		prompts:    prompts,
		logger:     nopIfNil(logger),
	}
}

// WithCategories returns a copy that analyzes only cats.
func (o *Orchestrator) WithCategories(cats ...models.Category) *Orchestrator {
	cp := *o
	cp.categories = append([]models.Category(nil), cats...)
	return &cp
}

// Analyze returns an error only when there is nothing to analyze. Category
// and narrative failures are recorded inside the result.
func (o *Orchestrator) Analyze(ctx context.Context, page, sitemap string) (*models.SEOAnalysis, error) {
	if strings.TrimSpace(page) == "" {
		return nil, models.ErrEmptyContent
	}

	// one slot per category, written only by its own goroutine
	results := make([]models.CategoryResult, len(o.categories))
	var g errgroup.Group
	for i, c := range o.categories {
		g.Go(func() error {
			results[i] = o.analyzer.Analyze(ctx, c, page, sitemap)
			return nil
		})
	}
	_ = g.Wait()

	combined := make(map[models.Category]models.CategoryResult, len(o.categories))
	for i, c := range o.categories {
		r := results[i]
		if r.Category != c {
			r = models.CategoryPlaceholder(c)
		}
		combined[c] = r
	}

	out := &models.SEOAnalysis{Categories: combined}
	if err := o.overall(ctx, out); err != nil {
		reqctx.Logger(ctx, o.logger).Warn("overall analysis failed", zap.Error(err))
		out.Error = OverallFailure
	}
	return out, nil
}

func (o *Orchestrator) overall(ctx context.Context, a *models.SEOAnalysis) error {
	body, err := json.Marshal(a.Categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	raw, err := o.gen.Generate(ctx, o.prompts.Overall(body))
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return models.ErrNoResponse
	}

	var resp map[string]json.RawMessage
	if err := jsonrepair.Parse(raw, &resp); err != nil {
		return err
	}
	if v, ok := resp["overallAnalysis"]; ok {
		if err := json.Unmarshal(v, &a.OverallAnalysis); err != nil {
			return fmt.Errorf("decode overallAnalysis: %w", err)
		}
	}
	if v, ok := resp["overallRecommendations"]; ok {
		recs, err := decodeRecommendations(v)
		if err != nil {
			reqctx.Logger(ctx, o.logger).Warn("dropping unreadable overall recommendations", zap.Error(err))
		}
		a.OverallRecommendations = recs
	}
	return nil
}

// decodeRecommendations accepts a list of recommendation objects or, as older
// prompts asked for, a list of plain strings.
func decodeRecommendations(v json.RawMessage) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	err := json.Unmarshal(v, &recs)
	if err == nil {
		return recs, nil
	}
	var plain []string
	if json.Unmarshal(v, &plain) != nil {
		return nil, fmt.Errorf("decode overallRecommendations: %w", err)
	}
	recs = make([]models.Recommendation, 0, len(plain))
	for _, s := range plain {
		recs = append(recs, models.Recommendation{Recommendation: s})
	}
	return recs, nil
}
