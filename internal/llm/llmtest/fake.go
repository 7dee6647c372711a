// Package llmtest provides a scripted llm.Generator for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rahul4469/cro-analyzer/internal/llm"
)

// Rule answers any request whose concatenated message text contains Match.
// Rules are checked in the order they were added; the first match wins.
type Rule struct {
	Match  string
	Reply  string
	Chunks []string
	Err    error
	// FailTimes limits Err to the first n matching calls, after which Reply
	// is returned. Zero means Err is returned every time.
	FailTimes int
	// StreamErr is returned by Stream after Chunks were delivered.
	StreamErr error

	hits atomic.Int32
}

// Fake is a concurrency safe Generator driven by rules.
type Fake struct {
	// Default is returned when no rule matches.
	Default string

	mu       sync.Mutex
	rules    []*Rule
	requests []llm.Request
	calls    atomic.Int32
}

func New() *Fake { return &Fake{} }

// On adds a rule that replies with reply.
func (f *Fake) On(match, reply string) *Fake {
	return f.add(&Rule{Match: match, Reply: reply})
}

// OnError adds a rule that always fails with err.
func (f *Fake) OnError(match string, err error) *Fake {
	return f.add(&Rule{Match: match, Err: err})
}

// OnStream adds a rule that streams chunks.
func (f *Fake) OnStream(match string, chunks ...string) *Fake {
	return f.add(&Rule{Match: match, Chunks: chunks, Reply: strings.Join(chunks, "")})
}

// OnStreamError adds a rule that streams chunks and then fails with err.
func (f *Fake) OnStreamError(match string, err error, chunks ...string) *Fake {
	return f.add(&Rule{Match: match, Chunks: chunks, StreamErr: err})
}

// Add registers an arbitrary rule.
func (f *Fake) Add(r *Rule) *Fake { return f.add(r) }

func (f *Fake) add(r *Rule) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, r)
	return f
}

func (f *Fake) Name() string { return "fake" }

// Calls returns the number of Generate and Stream calls made so far.
func (f *Fake) Calls() int { return int(f.calls.Load()) }

// Requests returns a copy of every request received.
func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// CallsMatching counts recorded requests whose text contains s.
func (f *Fake) CallsMatching(s string) int {
	n := 0
	for _, r := range f.Requests() {
		if strings.Contains(text(r), s) {
			n++
		}
	}
	return n
}

func (f *Fake) Generate(ctx context.Context, req llm.Request) (string, error) {
	r, err := f.resolve(ctx, req)
	if err != nil {
		return "", err
	}
	if r == nil {
		return f.Default, nil
	}
	return r.Reply, nil
}

func (f *Fake) Stream(ctx context.Context, req llm.Request, onChunk func(string) error) error {
	r, err := f.resolve(ctx, req)
	if err != nil {
		return err
	}
	chunks := []string{f.Default}
	if r != nil {
		chunks = r.Chunks
		if len(chunks) == 0 {
			chunks = []string{r.Reply}
		}
	}
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c == "" {
			continue
		}
		if err := onChunk(c); err != nil {
			return err
		}
	}
	if r != nil && r.StreamErr != nil {
		return r.StreamErr
	}
	return nil
}

func (f *Fake) resolve(ctx context.Context, req llm.Request) (*Rule, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	rules := f.rules
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := text(req)
	for _, r := range rules {
		if !strings.Contains(t, r.Match) {
			continue
		}
		n := int(r.hits.Add(1))
		if r.Err != nil && (r.FailTimes <= 0 || n <= r.FailTimes) {
			return nil, r.Err
		}
		return r, nil
	}
	return nil, nil
}

func text(req llm.Request) string {
	var b strings.Builder
	for _, m := range req.Messages {
		b.WriteString(m.Content)
		b.WriteByte('\n')
	}
	return b.String()
}
