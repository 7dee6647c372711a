package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Middleware decorates a Generator with a cross-cutting concern.
type Middleware func(Generator) Generator

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Generator, mws ...Middleware) Generator {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Timeout --------

// Timeout bounds every call with its own deadline. Placed inside Retry,
// each attempt gets a fresh budget. d <= 0 disables it.
func Timeout(d time.Duration) Middleware {
	return func(next Generator) Generator {
		if d <= 0 {
			return next
		}
		return &timeoutGenerator{next: next, d: d}
	}
}

type timeoutGenerator struct {
	next Generator
	d    time.Duration
}

func (t *timeoutGenerator) Name() string { return t.next.Name() }

func (t *timeoutGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *timeoutGenerator) Stream(ctx context.Context, req Request, onChunk func(string) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Stream(ctx, req, onChunk)
}

// -------- Logging --------

// Logging records the duration and outcome of every call.
func Logging(logger *zap.Logger) Middleware {
	return func(next Generator) Generator {
		if logger == nil {
			return next
		}
		return &loggingGenerator{next: next, log: logger.With(zap.String("llm", next.Name()))}
	}
}

type loggingGenerator struct {
	next Generator
	log  *zap.Logger
}

func (l *loggingGenerator) Name() string { return l.next.Name() }

func (l *loggingGenerator) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, req)
	fields := []zap.Field{
		zap.Duration("duration", time.Since(start)),
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("response_chars", len(out)),
	}
	if err != nil {
		l.log.Warn("llm generate failed", append(fields, zap.Error(err))...)
		return out, err
	}
	l.log.Debug("llm generate", fields...)
	return out, nil
}

func (l *loggingGenerator) Stream(ctx context.Context, req Request, onChunk func(string) error) error {
	start := time.Now()
	chunks := 0
	err := l.next.Stream(ctx, req, func(s string) error {
		chunks++
		return onChunk(s)
	})
	fields := []zap.Field{
		zap.Duration("duration", time.Since(start)),
		zap.Int("chunks", chunks),
	}
	if err != nil {
		l.log.Warn("llm stream failed", append(fields, zap.Error(err))...)
		return err
	}
	l.log.Debug("llm stream", fields...)
	return nil
}
