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

// Placeholder reasons for the section analyzers.
const (
	TrustFailure = "Failed to analyze trust and conversion"
	CopyFailure  = "Failed to analyze copy"
)

// placeholder renders the uniform {"error": reason} object.
func placeholder(reason string) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": reason})
	return b
}

// generateObject runs req and returns the recovered top-level JSON object.
func generateObject(ctx context.Context, gen llm.Generator, req llm.Request) (map[string]json.RawMessage, error) {
	raw, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, models.ErrNoResponse
	}
	var obj map[string]json.RawMessage
	if err := jsonrepair.Parse(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// objectSection is a single-call analyzer whose whole response is the result.
type objectSection struct {
	name    string
	failure string
	gen     llm.Generator
	logger  *zap.Logger
}

func (s objectSection) run(ctx context.Context, req llm.Request) json.RawMessage {
	obj, err := generateObject(ctx, s.gen, req)
	if err == nil {
		var b []byte
		if b, err = json.Marshal(obj); err == nil {
			return b
		}
	}
	reqctx.Logger(ctx, s.logger).Warn("section analysis failed",
		zap.String("section", s.name), zap.Error(err))
	return placeholder(s.failure)
}

// TrustAnalyzer reviews the raw HTML for trust and conversion signals.
type TrustAnalyzer struct {
	section objectSection
	prompts Prompts
}

func NewTrustAnalyzer(gen llm.Generator, prompts Prompts, logger *zap.Logger) *TrustAnalyzer {
	return &TrustAnalyzer{
		section: objectSection{name: "trust", failure: TrustFailure, gen: gen, logger: nopIfNil(logger)},
		prompts: prompts,
	}
}

// Analyze never fails; see TrustFailure.
func (ta *TrustAnalyzer) Analyze(ctx context.Context, html string) json.RawMessage {
	return ta.section.run(ctx, ta.prompts.Trust(html))
}

// CopyAnalyzer reviews the extracted page text as marketing copy.
type CopyAnalyzer struct {
	section objectSection
	prompts Prompts
}

func NewCopyAnalyzer(gen llm.Generator, prompts Prompts, logger *zap.Logger) *CopyAnalyzer {
	return &CopyAnalyzer{
		section: objectSection{name: "copy", failure: CopyFailure, gen: gen, logger: nopIfNil(logger)},
		prompts: prompts,
	}
}

// Analyze never fails; see CopyFailure.
func (ca *CopyAnalyzer) Analyze(ctx context.Context, text string) json.RawMessage {
	return ca.section.run(ctx, ca.prompts.Copy(text))
}

// OverviewAnalyzer rates the page on broad design and marketing aspects.
// Aspect groups are analyzed concurrently and merged into one object.
type OverviewAnalyzer struct {
	gen     llm.Generator
	prompts Prompts
	groups  []overviewGroup
	logger  *zap.Logger
}

func NewOverviewAnalyzer(gen llm.Generator, prompts Prompts, logger *zap.Logger) *OverviewAnalyzer {
	return &OverviewAnalyzer{gen: gen, prompts: prompts, groups: overviewGroups, logger: nopIfNil(logger)}
}

// Aspects lists every key the overview object always contains.
func (oa *OverviewAnalyzer) Aspects() []string {
	var out []string
	for _, g := range oa.groups {
		out = append(out, g.Aspects...)
	}
	return out
}

// Analyze never fails. Each aspect of a failed group, or one missing from
// its group's response, is reported as {"error": "Failed to analyze <group>"}.
func (oa *OverviewAnalyzer) Analyze(ctx context.Context, text string) json.RawMessage {
	parts := make([]map[string]json.RawMessage, len(oa.groups))

	var g errgroup.Group
	for i, grp := range oa.groups {
		g.Go(func() error {
			obj, err := generateObject(ctx, oa.gen, oa.prompts.Overview(grp.Aspects, text))
			if err != nil {
				reqctx.Logger(ctx, oa.logger).Warn("overview group failed",
					zap.String("group", grp.Name), zap.Error(err))
			}
			parts[i] = obj
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[string]json.RawMessage)
	for i, grp := range oa.groups {
		for _, aspect := range grp.Aspects {
			if v, ok := parts[i][aspect]; ok {
				merged[aspect] = v
				continue
			}
			merged[aspect] = placeholder("Failed to analyze " + grp.Name)
		}
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return placeholder("Failed to analyze overview")
	}
	return b
}
