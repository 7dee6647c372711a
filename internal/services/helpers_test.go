package services

import (
	"fmt"

	"github.com/rahul4469/cro-analyzer/internal/llm/llmtest"
	"github.com/rahul4469/cro-analyzer/internal/models"
)

const overallMarker = "overall analysis and a prioritized list"

// categoryMarker is a substring found only in the prompt for c.
func categoryMarker(c models.Category) string {
	return "for " + categorySpecs[c].Title + ":"
}

func categoryReply(c models.Category) string {
	return fmt.Sprintf("```json\n{\n  %q: {\n    \"titleTagOptimization\": {\"score\": 70, \"analysis\": \"%s looks fine\", \"recommendations\": [\"keep going\"]}\n  }\n}\n```", string(c), c)
}

const overallReply = `{"overallAnalysis": "Good foundation.", "overallRecommendations": [
	{"recommendation": "Compress hero images", "priority": "High", "impact": "High", "effort": "Low"}
]}`

// scriptedFake answers every category and the overall call successfully,
// except for the categories in failing, which get err.
func scriptedFake(err error, failing ...models.Category) *llmtest.Fake {
	f := llmtest.New()
	fail := map[models.Category]bool{}
	for _, c := range failing {
		fail[c] = true
		f.OnError(categoryMarker(c), err)
	}
	for _, c := range models.AllCategories() {
		if !fail[c] {
			f.On(categoryMarker(c), categoryReply(c))
		}
	}
	f.On(overallMarker, overallReply)
	return f
}
