package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rahul4469/cro-analyzer/internal/models"
)

// FetcherOptions configures a PageFetcher.
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	// Scheme defaults to https.
	Scheme     string
	HTTPClient *http.Client
}

// PageFetcher downloads a site's landing page and sitemap.
type PageFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	scheme    string
	logger    *zap.Logger
}

func NewPageFetcher(opts FetcherOptions, logger *zap.Logger) *PageFetcher {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	if opts.Scheme == "" {
		opts.Scheme = "https"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (compatible; CROAnalyzer/1.0)"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		scheme:    opts.Scheme,
		logger:    logger,
	}
}

// Fetch GETs url and returns the body, capped at the configured size.
// Any non-2xx status is a models.FetchStatusError.
func (pf *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", pf.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := pf.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", models.FetchStatusError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, pf.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}

// FetchSite fetches the landing page and sitemap of domain concurrently.
// The page is required; a missing sitemap is replaced by models.SitemapNotFound.
func (pf *PageFetcher) FetchSite(ctx context.Context, domain string) (*models.SiteContent, error) {
	base := pf.scheme + "://" + domain
	site := &models.SiteContent{URL: base}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := pf.Fetch(gctx, base)
		if err != nil {
			return fmt.Errorf("%w: %w", models.ErrPageFetch, err)
		}
		site.HTML = page
		return nil
	})
	g.Go(func() error {
		sitemap, err := pf.Fetch(gctx, base+"/sitemap.xml")
		if err != nil || strings.TrimSpace(sitemap) == "" {
			pf.logger.Debug("sitemap unavailable", zap.String("domain", domain), zap.Error(err))
			sitemap = models.SitemapNotFound
		}
		site.Sitemap = sitemap
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	site.Text = ExtractText(site.HTML)
	return site, nil
}
