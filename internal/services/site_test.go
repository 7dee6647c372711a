package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/llm/llmtest"
	"github.com/rahul4469/cro-analyzer/internal/models"
)

const landingPage = `<html><head><title>Acme Widgets</title></head>
<body><h1>Better widgets, faster</h1><p>Free shipping on every order.</p>
<a href="/signup">Start free trial</a></body></html>`

// fullFake answers every call a site analysis makes. Rules in first are
// checked before the default answers.
func fullFake(first ...*llmtest.Rule) *llmtest.Fake {
	f := llmtest.New()
	for _, r := range first {
		f.Add(r)
	}
	for _, c := range models.AllCategories() {
		f.On(categoryMarker(c), categoryReply(c))
	}
	f.On(overallMarker, overallReply)
	f.On(trustMarker, `{"trustSignals": {"securityBadges": false}, "overallAnalysis": "needs badges"}`)
	f.On(copyMarker, `{"strongHeadline": {"attentionGrabbing": true}}`)
	for _, g := range overviewGroups {
		f.On(overviewMarker(g), overviewReply(g))
	}
	return f
}

type countingFetcher struct {
	SiteFetcher
	calls atomic.Int32
}

func (c *countingFetcher) FetchSite(ctx context.Context, domain string) (*models.SiteContent, error) {
	c.calls.Add(1)
	return c.SiteFetcher.FetchSite(ctx, domain)
}

func TestSiteAnalyzer_Analyze(t *testing.T) {
	srv := newSite(t, landingPage, "<urlset><url><loc>/pricing</loc></url></urlset>")
	fake := fullFake()
	svc := New(fake, fake, testFetcher(srv), Options{}, nil)

	out, err := svc.Site.Analyze(context.Background(), "http://"+hostOf(srv)+"/")

	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, hostOf(srv), out.Domain)
	assert.False(t, out.CreatedAt.IsZero())
	assert.Contains(t, out.WebsiteContent, "Better widgets, faster")

	require.NotNil(t, out.SEOAnalysisData)
	assert.Len(t, out.SEOAnalysisData.Categories, 7)
	assert.Equal(t, "Good foundation.", out.SEOAnalysisData.OverallAnalysis)
	assert.Contains(t, string(out.TrustConversionData), "needs badges")
	assert.JSONEq(t, `{"strongHeadline":{"attentionGrabbing":true}}`, string(out.CopyAnalysisData))

	var overview map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out.Analysis, &overview))
	assert.Len(t, overview, len(svc.Site.overview.Aspects()))

	b, err := json.Marshal(out)
	require.NoError(t, err)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &body))
	for _, k := range []string{"id", "domain", "analysis", "trustConversionData", "copyAnalysisData", "seoAnalysisData", "websiteContent", "createdAt"} {
		assert.Contains(t, body, k)
	}

	// 7 categories, overall, trust, copy and one call per overview group
	assert.Equal(t, 10+len(overviewGroups), fake.Calls())
}

func TestSiteAnalyzer_MissingSitemap(t *testing.T) {
	srv := newSite(t, landingPage, "")
	fake := fullFake()
	svc := New(fake, fake, testFetcher(srv), Options{}, nil)

	_, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)

	for _, c := range models.AllCategories() {
		n := 0
		for _, r := range fake.Requests() {
			p := r.Messages[len(r.Messages)-1].Content
			if strings.Contains(p, categoryMarker(c)) {
				assert.Contains(t, p, "Sitemap Content:\n"+models.SitemapNotFound)
				n++
			}
		}
		assert.Equal(t, 1, n, c)
	}
}

func TestSiteAnalyzer_SectionFailuresDegrade(t *testing.T) {
	srv := newSite(t, landingPage, "")
	fake := scriptedFake(errors.New("down"), models.CategoryOnPage)
	fake.OnError(trustMarker, errors.New("down"))
	// copy and overview fall through to the empty default reply
	svc := New(fake, fake, testFetcher(srv), Options{}, nil)

	out, err := svc.Site.Analyze(context.Background(), hostOf(srv))

	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"`+TrustFailure+`"}`, string(out.TrustConversionData))
	assert.JSONEq(t, `{"error":"`+CopyFailure+`"}`, string(out.CopyAnalysisData))
	assert.False(t, out.SEOAnalysisData.Categories[models.CategoryOnPage].OK())
	assert.True(t, out.SEOAnalysisData.Categories[models.CategoryLinks].OK())
}

func TestSiteAnalyzer_Errors(t *testing.T) {
	t.Run("invalid domain", func(t *testing.T) {
		fake := fullFake()
		svc := New(fake, fake, &countingFetcher{}, Options{}, nil)

		_, err := svc.Site.Analyze(context.Background(), "not a domain")

		assert.ErrorIs(t, err, models.ErrInvalidDomain)
		assert.Zero(t, fake.Calls())
	})

	t.Run("page without text", func(t *testing.T) {
		srv := newSite(t, "<html><script>var x = 1;</script></html>", "")
		fake := fullFake()
		svc := New(fake, fake, testFetcher(srv), Options{}, nil)

		_, err := svc.Site.Analyze(context.Background(), hostOf(srv))

		assert.ErrorIs(t, err, models.ErrEmptyContent)
		assert.Zero(t, fake.Calls())
	})

	t.Run("page down", func(t *testing.T) {
		fake := fullFake()
		svc := New(fake, fake, NewPageFetcher(FetcherOptions{Scheme: "http", Timeout: time.Second}, nil), Options{}, nil)

		_, err := svc.Site.Analyze(context.Background(), "127.0.0.1:1")

		assert.ErrorIs(t, err, models.ErrPageFetch)
	})
}

func TestSiteAnalyzer_Cache(t *testing.T) {
	srv := newSite(t, landingPage, "")
	fetcher := &countingFetcher{SiteFetcher: testFetcher(srv)}
	fake := fullFake()
	svc := New(fake, fake, fetcher, Options{CacheSize: 4, CacheTTL: time.Minute}, nil)

	first, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)
	second, err := svc.Site.Analyze(context.Background(), "HTTP://"+strings.ToUpper(hostOf(srv)))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

// switchable fails every call while down is set.
type switchable struct {
	llm.Generator
	down atomic.Bool
}

func (s *switchable) Generate(ctx context.Context, req llm.Request) (string, error) {
	if s.down.Load() {
		return "", errors.New("503 service unavailable")
	}
	return s.Generator.Generate(ctx, req)
}

func TestSiteAnalyzer_DoesNotCacheDegradedResults(t *testing.T) {
	srv := newSite(t, landingPage, "")
	fetcher := &countingFetcher{SiteFetcher: testFetcher(srv)}
	gen := &switchable{Generator: fullFake()}
	gen.down.Store(true)
	svc := New(gen, gen, fetcher, Options{CacheSize: 4, CacheTTL: 15 * time.Minute}, nil)

	outage, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)
	assert.Equal(t, OverallFailure, outage.SEOAnalysisData.Error)
	assert.JSONEq(t, `{"error":"`+TrustFailure+`"}`, string(outage.TrustConversionData))

	gen.down.Store(false)
	recovered, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)

	assert.NotSame(t, outage, recovered)
	assert.Empty(t, recovered.SEOAnalysisData.Error)
	assert.Equal(t, "Good foundation.", recovered.SEOAnalysisData.OverallAnalysis)
	assert.Contains(t, string(recovered.TrustConversionData), "needs badges")
	assert.EqualValues(t, 2, fetcher.calls.Load())

	// a complete result is cached
	again, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)
	assert.Same(t, recovered, again)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestSiteAnalyzer_PartialDegradationNotCached(t *testing.T) {
	srv := newSite(t, landingPage, "")
	fake := fullFake(&llmtest.Rule{
		Match:     copyMarker,
		Reply:     `{"strongHeadline": {"attentionGrabbing": true}}`,
		Err:       errors.New("timeout"),
		FailTimes: 1,
	})
	svc := New(fake, fake, testFetcher(srv), Options{CacheSize: 4, CacheTTL: time.Minute}, nil)

	first, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)
	require.True(t, isPlaceholder(first.CopyAnalysisData))

	second, err := svc.Site.Analyze(context.Background(), hostOf(srv))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.False(t, isPlaceholder(second.CopyAnalysisData))
}

func TestAnalysisCache_Disabled(t *testing.T) {
	var c *AnalysisCache
	c.Add("a.com", &models.SiteAnalysis{})
	_, ok := c.Get("a.com")
	assert.False(t, ok)
	assert.Zero(t, c.Len())

	assert.Nil(t, NewAnalysisCache(0, time.Minute))
	assert.Nil(t, NewAnalysisCache(10, 0))
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"  Example.COM  ", "example.com"},
		{"https://www.example.com/pricing?x=1#top", "www.example.com"},
		{"http://user:pw@shop.example.co.uk", "shop.example.co.uk"},
		{"example.com.", "example.com"},
		{"localhost:8080", "localhost:8080"},
		{"127.0.0.1:3000", "127.0.0.1:3000"},
		{"xn--bcher-kva.example", "xn--bcher-kva.example"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDomain(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "   ", "example", "exa mple.com", "-bad.com", "bad-.com", "a..com", "example.com:0", "example.com:99999", "example.com:abc", "https://", "under_score.com"} {
		t.Run("invalid/"+bad, func(t *testing.T) {
			_, err := NormalizeDomain(bad)
			assert.ErrorIs(t, err, models.ErrInvalidDomain)
		})
	}
}
