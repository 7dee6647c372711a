package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
)

// SiteFetcher retrieves the landing page and sitemap of a domain.
type SiteFetcher interface {
	FetchSite(ctx context.Context, domain string) (*models.SiteContent, error)
}

// SiteAnalyzer runs the full analysis of a submitted domain.
type SiteAnalyzer struct {
	fetcher  SiteFetcher
	overview *OverviewAnalyzer
	trust    *TrustAnalyzer
	copywr   *CopyAnalyzer
	seo      *Orchestrator
	cache    *AnalysisCache
	logger   *zap.Logger
	now      func() time.Time
}

func NewSiteAnalyzer(
	fetcher SiteFetcher,
	overview *OverviewAnalyzer,
	trust *TrustAnalyzer,
	copywr *CopyAnalyzer,
	seo *Orchestrator,
	cache *AnalysisCache,
	logger *zap.Logger,
) *SiteAnalyzer {
	return &SiteAnalyzer{
		fetcher:  fetcher,
		overview: overview,
		trust:    trust,
		copywr:   copywr,
		seo:      seo,
		cache:    cache,
		logger:   nopIfNil(logger),
		now:      time.Now,
	}
}

// Fetch normalizes domain and returns its fetched content.
func (sa *SiteAnalyzer) Fetch(ctx context.Context, domain string) (*models.SiteContent, error) {
	d, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	return sa.fetcher.FetchSite(ctx, d)
}

// Analyze fetches domain and runs the overview, trust, copy and SEO
// analyses concurrently. It fails only when the page cannot be fetched or
// has no text; individual analyses degrade to placeholders.
func (sa *SiteAnalyzer) Analyze(ctx context.Context, domain string) (*models.SiteAnalysis, error) {
	d, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	log := reqctx.Logger(ctx, sa.logger).With(zap.String("domain", d))

	if cached, ok := sa.cache.Get(d); ok {
		log.Debug("analysis cache hit")
		return cached, nil
	}

	start := sa.now()
	site, err := sa.fetcher.FetchSite(ctx, d)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(site.Text) == "" {
		return nil, models.ErrEmptyContent
	}

	var (
		overview, trust, copyData json.RawMessage
		seo                       *models.SEOAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview = sa.overview.Analyze(gctx, site.Text)
		return nil
	})
	g.Go(func() error {
		trust = sa.trust.Analyze(gctx, site.HTML)
		return nil
	})
	g.Go(func() error {
		copyData = sa.copywr.Analyze(gctx, site.Text)
		return nil
	})
	g.Go(func() error {
		var err error
		seo, err = sa.seo.Analyze(gctx, site.HTML, site.Sitemap)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("seo analysis: %w", err)
	}

	result := &models.SiteAnalysis{
		ID:                  uuid.NewString(),
		Domain:              d,
		Analysis:            overview,
		TrustConversionData: trust,
		CopyAnalysisData:    copyData,
		SEOAnalysisData:     seo,
		WebsiteContent:      site.Text,
		CreatedAt:           sa.now().UTC(),
	}
	if sa.degraded(result) {
		log.Info("analysis degraded, not cached")
	} else {
		sa.cache.Add(d, result)
		log.Debug("analysis cached", zap.Int("entries", sa.cache.Len()))
	}

	log.Info("site analyzed", zap.Duration("duration", sa.now().Sub(start)))
	return result, nil
}

// degraded reports whether any section of a fell back to a placeholder.
func (sa *SiteAnalyzer) degraded(a *models.SiteAnalysis) bool {
	if isPlaceholder(a.TrustConversionData) || isPlaceholder(a.CopyAnalysisData) {
		return true
	}
	if a.SEOAnalysisData == nil || a.SEOAnalysisData.Error != "" {
		return true
	}
	for _, r := range a.SEOAnalysisData.Categories {
		if !r.OK() {
			return true
		}
	}
	var overview map[string]json.RawMessage
	if json.Unmarshal(a.Analysis, &overview) != nil {
		return true
	}
	for _, aspect := range sa.overview.Aspects() {
		if v, ok := overview[aspect]; !ok || isPlaceholder(v) {
			return true
		}
	}
	return false
}

// isPlaceholder reports whether v is an {"error": reason} object.
func isPlaceholder(v json.RawMessage) bool {
	var obj map[string]json.RawMessage
	if json.Unmarshal(v, &obj) != nil {
		return true
	}
	_, ok := obj["error"]
	return ok && len(obj) == 1
}

var hostLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// NormalizeDomain reduces user input such as " https://Example.com/pricing "
// to a bare host name, keeping an explicit port.
func NormalizeDomain(raw string) (string, error) {
	invalid := fmt.Errorf("%w: %q", models.ErrInvalidDomain, raw)

	d := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, "@"); i >= 0 {
		d = d[i+1:]
	}

	host, port := d, ""
	if strings.Contains(d, ":") {
		h, p, err := net.SplitHostPort(d)
		if err != nil {
			return "", invalid
		}
		if n, err := strconv.Atoi(p); err != nil || n < 1 || n > 65535 {
			return "", invalid
		}
		host, port = h, p
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return "", invalid
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 && host != "localhost" {
		return "", invalid
	}
	for _, l := range labels {
		if !hostLabel.MatchString(l) {
			return "", invalid
		}
	}

	if port != "" {
		return host + ":" + port, nil
	}
	return host, nil
}
