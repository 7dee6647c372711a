package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewGeminiClient(context.Background(), GeminiOptions{
		APIKey:      "test-key",
		Model:       "gemini-test",
		BaseURL:     srv.URL,
		Temperature: 0.7,
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestGeminiClient_Generate(t *testing.T) {
	var body map[string]any
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]}}]}`)
	})

	out, err := c.Generate(context.Background(), Request{
		Messages:  []Message{System("be brief"), User("hello")},
		MaxTokens: 4000,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	assert.Contains(t, body, "systemInstruction")
	contents, ok := body["contents"].([]any)
	require.True(t, ok)
	assert.Len(t, contents, 1)
	gen, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 4000, gen["maxOutputTokens"])
}

func TestGeminiClient_PermanentError(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"API key invalid","status":"PERMISSION_DENIED"}}`)
	})

	_, err := c.Generate(context.Background(), Request{Messages: []Message{User("hi")}})
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}
