package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/jsonrepair"
	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
)

// CategoryAnalyzer produces the factor mapping of a single SEO category.
type CategoryAnalyzer struct {
	gen     llm.Generator
	prompts Prompts
	logger  *zap.Logger
}

func NewCategoryAnalyzer(gen llm.Generator, prompts Prompts, logger *zap.Logger) *CategoryAnalyzer {
	return &CategoryAnalyzer{gen: gen, prompts: prompts, logger: nopIfNil(logger)}
}

// Analyze never fails: any transport, parse or shape problem yields the
// category placeholder and is logged.
func (ca *CategoryAnalyzer) Analyze(ctx context.Context, c models.Category, page, sitemap string) models.CategoryResult {
	payload, err := ca.analyze(ctx, c, page, sitemap)
	if err != nil {
		reqctx.Logger(ctx, ca.logger).Warn("category analysis failed",
			zap.String("category", c.String()), zap.Error(err))
		return models.CategoryPlaceholder(c)
	}
	return models.CategoryResult{Category: c, Payload: payload}
}

func (ca *CategoryAnalyzer) analyze(ctx context.Context, c models.Category, page, sitemap string) (json.RawMessage, error) {
	if _, ok := categorySpecs[c]; !ok {
		return nil, fmt.Errorf("unknown category %q", c)
	}

	raw, err := ca.gen.Generate(ctx, ca.prompts.Category(c, page, sitemap))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, models.ErrNoResponse
	}
	reqctx.Logger(ctx, ca.logger).Debug("raw category response",
		zap.String("category", c.String()), zap.String("raw", raw))

	var top map[string]json.RawMessage
	if err := jsonrepair.Parse(raw, &top); err != nil {
		return nil, err
	}
	payload, ok := top[string(c)]
	if !ok {
		return nil, models.ErrMissingCategoryKey
	}
	payload, err = compact(payload)
	if err != nil {
		return nil, err
	}
	if (models.CategoryResult{Category: c, Payload: payload}).Factors() == nil {
		return nil, models.ErrMalformedCategory
	}
	return payload, nil
}

// compact re-encodes a JSON value without insignificant whitespace so equal
// payloads are byte-identical however the model formatted them.
func compact(v json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, fmt.Errorf("compact payload: %w", err)
	}
	return buf.Bytes(), nil
}
