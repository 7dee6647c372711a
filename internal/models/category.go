package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Category is one of the fixed SEO buckets analyzed independently.
type Category string

const (
	CategoryOnPage           Category = "onPageOptimization"
	CategoryUserExperience   Category = "userExperienceAndEngagement"
	CategoryContentQuality   Category = "contentQuality"
	CategoryLinks            Category = "linkOptimization"
	CategoryTechnicalSEO     Category = "technicalSEO"
	CategoryAdvancedOnPage   Category = "advancedOnPageTechniques"
	CategoryPerformanceArchi Category = "technicalPerformanceAndArchitecture"
)

var allCategories = []Category{
	CategoryOnPage,
	CategoryUserExperience,
	CategoryContentQuality,
	CategoryLinks,
	CategoryTechnicalSEO,
	CategoryAdvancedOnPage,
	CategoryPerformanceArchi,
}

// AllCategories returns every category in presentation order.
func AllCategories() []Category {
	return slices.Clone(allCategories)
}

func (c Category) String() string { return string(c) }

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(allCategories, c)
}

// ParseCategory validates s as a category identifier.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// FactorRecord is the shape requested for every factor inside a category.
// Model output is only loosely held to it; see CategoryResult.Factors.
type FactorRecord struct {
	Score                  float64  `json:"score"`
	Analysis               string   `json:"analysis"`
	Recommendations        []string `json:"recommendations"`
	CurrentImplementation  string   `json:"currentImplementation"`
	SpecificExamples       []string `json:"specificExamples"`
	IndustryComparison     string   `json:"industryComparison"`
	ImpactAssessment       string   `json:"impactAssessment"`
	ImplementationPriority string   `json:"implementationPriority"`
	PotentialChallenges    string   `json:"potentialChallenges"`
}

// CategoryResult is either a success carrying the factor mapping for one
// category or a failure carrying a reason. It marshals as the payload object
// on success and as {"error": reason} on failure.
type CategoryResult struct {
	Category Category
	Payload  json.RawMessage
	Error    string
}

// CategoryPlaceholder is the failure result substituted for a category.
func CategoryPlaceholder(c Category) CategoryResult {
	return CategoryResult{Category: c, Error: "Failed to analyze " + string(c)}
}

// OK reports whether the result carries real data.
func (r CategoryResult) OK() bool { return r.Error == "" }

func (r CategoryResult) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(errorBody{Error: r.Error})
	}
	if len(r.Payload) == 0 {
		return []byte("{}"), nil
	}
	return r.Payload, nil
}

func (r *CategoryResult) UnmarshalJSON(data []byte) error {
	var head struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	if head.Error != nil {
		r.Payload, r.Error = nil, *head.Error
		return nil
	}
	r.Payload = slices.Clone(json.RawMessage(data))
	r.Error = ""
	return nil
}

// Factors decodes the payload into factor records. It returns nil when the
// payload is not a JSON object. Fields the model got wrong are left zero
// rather than failing the whole category.
func (r CategoryResult) Factors() map[string]FactorRecord {
	if !r.OK() || len(r.Payload) == 0 {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(r.Payload, &raw); err != nil || raw == nil {
		return nil
	}
	out := make(map[string]FactorRecord, len(raw))
	for name, v := range raw {
		var f FactorRecord
		// a type mismatch leaves that field zero; the rest still decode
		_ = json.Unmarshal(v, &f)
		out[name] = f
	}
	return out
}

type errorBody struct {
	Error string `json:"error"`
}
