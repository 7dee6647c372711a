package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// Retry retries failed calls up to maxAttempts in total with exponential
// backoff starting at baseDelay. PermanentErrors are returned at once, and
// cancellation of the caller's context stops the loop.
//
// A stream is only retried while it has not delivered any chunk; once text
// has reached the caller a replay would duplicate it.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Generator) Generator {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Generator
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) backoff() retry.Backoff {
	return retry.WithMaxRetries(uint64(r.max-1), retry.NewExponential(r.base))
}

func (r *retrying) Generate(ctx context.Context, req Request) (string, error) {
	return retry.DoValue(ctx, r.backoff(), func(ctx context.Context) (string, error) {
		out, err := r.next.Generate(ctx, req)
		if err != nil {
			return "", retryable(ctx, err)
		}
		return out, nil
	})
}

func (r *retrying) Stream(ctx context.Context, req Request, onChunk func(string) error) error {
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		delivered := false
		err := r.next.Stream(ctx, req, func(s string) error {
			delivered = true
			return onChunk(s)
		})
		if err != nil && !delivered {
			return retryable(ctx, err)
		}
		return err
	})
}

// retryable marks err for another attempt unless it is permanent or the
// caller has gone away.
func retryable(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
		return fmt.Errorf("%w: %w", cerr, err)
	}
	if IsPermanent(err) || ctx.Err() != nil {
		return err
	}
	return retry.RetryableError(err)
}
