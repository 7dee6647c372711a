package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/rahul4469/cro-analyzer/internal/models"
)

// AnalysisCache keeps recent site analyses keyed by normalized domain.
// A nil *AnalysisCache is valid and caches nothing.
type AnalysisCache struct {
	lru *expirable.LRU[string, *models.SiteAnalysis]
}

// NewAnalysisCache returns nil when size or ttl is not positive, which
// disables caching.
func NewAnalysisCache(size int, ttl time.Duration) *AnalysisCache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &AnalysisCache{lru: expirable.NewLRU[string, *models.SiteAnalysis](size, nil, ttl)}
}

func (c *AnalysisCache) Get(domain string) (*models.SiteAnalysis, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(domain)
}

func (c *AnalysisCache) Add(domain string, a *models.SiteAnalysis) {
	if c == nil {
		return
	}
	c.lru.Add(domain, a)
}

func (c *AnalysisCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
