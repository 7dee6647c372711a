package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	doc := `<!doctype html>
<html>
<head>
  <title>Acme   Widgets</title>
  <style>body { color: red; }</style>
  <script>var secret = "do not show";</script>
</head>
<body>
  <h1>Better widgets,
      faster</h1>
  <noscript>Enable JavaScript</noscript>
  <p>Free shipping &amp; returns.</p>
  <template><p>hidden template</p></template>
  <a href="/signup">Start free trial</a>
</body>
</html>`

	got := ExtractText(doc)
	assert.Equal(t, "Acme Widgets Better widgets, faster Free shipping & returns. Start free trial", got)
	assert.NotContains(t, got, "secret")
	assert.NotContains(t, got, "color")
}

func TestExtractText_Empty(t *testing.T) {
	assert.Empty(t, ExtractText(""))
	assert.Empty(t, ExtractText("<html><script>x()</script></html>"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 0))
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel", truncate("hello", 3))
	// "é" is two bytes; never split it
	assert.Equal(t, "caf", truncate("café", 4))
	assert.Equal(t, "café", truncate("café", 5))
}
