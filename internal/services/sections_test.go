package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rahul4469/cro-analyzer/internal/llm/llmtest"
)

const (
	trustMarker = "for trust and conversion factors:"
	copyMarker  = "for copy and content factors:"
)

func overviewMarker(g overviewGroup) string {
	return "for the " + strings.Join(g.Aspects, ", ") + " aspects"
}

func overviewReply(g overviewGroup) string {
	obj := map[string]any{}
	for _, a := range g.Aspects {
		obj[a] = map[string][]string{
			"strengths":       {a + " strength"},
			"weaknesses":      {},
			"recommendations": {"improve " + a},
		}
	}
	b, _ := json.Marshal(obj)
	return "```json\n" + string(b) + "\n```"
}

func decodeObject(t *testing.T, raw json.RawMessage) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestTrustAnalyzer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := llmtest.New().On(trustMarker,
			`{"socialProof": {"testimonials": true, "analysis": "ok", "recommendations": ["more"]}, "overallAnalysis": "solid"`)
		out := NewTrustAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "<html>trust</html>")

		m := decodeObject(t, out)
		assert.JSONEq(t, `"solid"`, string(m["overallAnalysis"]))
		assert.Contains(t, m, "socialProof")

		reqs := fake.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, trustMaxTokens, reqs[0].MaxTokens)
		assert.Contains(t, reqs[0].Messages[1].Content, "<html>trust</html>")
		assert.Contains(t, reqs[0].Messages[1].Content, `"legalCompliance"`)
	})

	t.Run("failure", func(t *testing.T) {
		fake := llmtest.New().OnError(trustMarker, errors.New("quota"))
		out := NewTrustAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "<html/>")

		assert.JSONEq(t, `{"error":"`+TrustFailure+`"}`, string(out))
	})

	t.Run("not an object", func(t *testing.T) {
		fake := llmtest.New().On(trustMarker, `["a", "b"]`)
		out := NewTrustAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "<html/>")

		assert.JSONEq(t, `{"error":"`+TrustFailure+`"}`, string(out))
	})
}

func TestCopyAnalyzer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := llmtest.New().On(copyMarker, `{"toneAndVoice": {"consistentTone": true}}`)
		out := NewCopyAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "Buy now")

		assert.JSONEq(t, `{"toneAndVoice":{"consistentTone":true}}`, string(out))
		reqs := fake.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, copyMaxTokens, reqs[0].MaxTokens)
		assert.Contains(t, reqs[0].Messages[1].Content, "Buy now")
	})

	t.Run("empty response", func(t *testing.T) {
		fake := llmtest.New().On(copyMarker, "")
		out := NewCopyAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "Buy now")

		assert.JSONEq(t, `{"error":"`+CopyFailure+`"}`, string(out))
	})
}

func TestOverviewAnalyzer_MergesGroups(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := llmtest.New()
	for _, g := range overviewGroups {
		fake.On(overviewMarker(g), overviewReply(g))
	}
	oa := NewOverviewAnalyzer(fake, Prompts{}, nil)

	m := decodeObject(t, oa.Analyze(context.Background(), "page text"))

	assert.Len(t, m, len(oa.Aspects()))
	for _, a := range oa.Aspects() {
		require.Contains(t, m, a)
		assert.Contains(t, string(m[a]), a+" strength")
	}
	assert.Equal(t, len(overviewGroups), fake.Calls())
}

func TestOverviewAnalyzer_GroupFailure(t *testing.T) {
	failing := overviewGroups[2]
	fake := llmtest.New().OnError(overviewMarker(failing), errors.New("boom"))
	for _, g := range overviewGroups {
		if g.Name != failing.Name {
			fake.On(overviewMarker(g), overviewReply(g))
		}
	}

	m := decodeObject(t, NewOverviewAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "page text"))

	for _, g := range overviewGroups {
		for _, a := range g.Aspects {
			if g.Name == failing.Name {
				assert.JSONEq(t, `{"error":"Failed to analyze `+failing.Name+`"}`, string(m[a]))
			} else {
				assert.Contains(t, string(m[a]), "strength")
			}
		}
	}
}

func TestOverviewAnalyzer_MissingAspect(t *testing.T) {
	g := overviewGroups[0]
	fake := llmtest.New().On(overviewMarker(g), `{"`+g.Aspects[0]+`": {"strengths": ["x"]}}`)

	m := decodeObject(t, NewOverviewAnalyzer(fake, Prompts{}, nil).Analyze(context.Background(), "page text"))

	assert.JSONEq(t, `{"strengths":["x"]}`, string(m[g.Aspects[0]]))
	assert.JSONEq(t, `{"error":"Failed to analyze `+g.Name+`"}`, string(m[g.Aspects[1]]))
	// groups with no rule get the empty default reply
	last := overviewGroups[len(overviewGroups)-1]
	assert.JSONEq(t, `{"error":"Failed to analyze `+last.Name+`"}`, string(m[last.Aspects[0]]))
}
