package models

import (
	"encoding/json"
	"time"
)

// SitemapNotFound stands in for the sitemap when it cannot be fetched.
const SitemapNotFound = "Sitemap not found or inaccessible"

// Recommendation is one prioritized item of the overall SEO narrative.
type Recommendation struct {
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
	Impact         string `json:"impact"`
	Effort         string `json:"effort"`
}

// SEOAnalysis is the combined record of every category plus the overall
// narrative. Categories holds exactly one entry per requested category.
type SEOAnalysis struct {
	Categories             map[Category]CategoryResult
	OverallAnalysis        string
	OverallRecommendations []Recommendation
	// Error is set when the overall narrative could not be produced.
	Error string
}

// MarshalJSON flattens the categories next to the overall fields, so the
// record reads {"onPageOptimization": {...}, ..., "overallAnalysis": "..."}.
func (a SEOAnalysis) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(a.Categories)+3)
	for c, r := range a.Categories {
		m[string(c)] = r
	}
	if a.Error == "" {
		m["overallAnalysis"] = a.OverallAnalysis
		recs := a.OverallRecommendations
		if recs == nil {
			recs = []Recommendation{}
		}
		m["overallRecommendations"] = recs
	} else {
		m["error"] = a.Error
	}
	return json.Marshal(m)
}

func (a *SEOAnalysis) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = SEOAnalysis{Categories: make(map[Category]CategoryResult)}
	for k, v := range raw {
		switch k {
		case "overallAnalysis":
			if err := json.Unmarshal(v, &a.OverallAnalysis); err != nil {
				return err
			}
		case "overallRecommendations":
			if err := json.Unmarshal(v, &a.OverallRecommendations); err != nil {
				return err
			}
		case "error":
			if err := json.Unmarshal(v, &a.Error); err != nil {
				return err
			}
		default:
			c, err := ParseCategory(k)
			if err != nil {
				continue
			}
			var r CategoryResult
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			r.Category = c
			a.Categories[c] = r
		}
	}
	return nil
}

// SiteContent is what was fetched for a domain.
type SiteContent struct {
	URL     string
	HTML    string
	Sitemap string
	Text    string
}

// SiteAnalysis is the full response for one analyzed domain.
type SiteAnalysis struct {
	ID                  string          `json:"id"`
	Domain              string          `json:"domain"`
	Analysis            json.RawMessage `json:"analysis"`
	TrustConversionData json.RawMessage `json:"trustConversionData"`
	CopyAnalysisData    json.RawMessage `json:"copyAnalysisData"`
	SEOAnalysisData     *SEOAnalysis    `json:"seoAnalysisData"`
	WebsiteContent      string          `json:"websiteContent"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// AnalyzeRequest is the body of an analysis submission.
type AnalyzeRequest struct {
	Domain string `json:"domain"`
}
