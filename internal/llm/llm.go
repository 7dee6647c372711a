// Package llm is a small provider-neutral layer over the chat completion APIs
// the analyzer talks to. Backends implement Generator; cross-cutting concerns
// such as retries, deadlines and logging are added with Middleware.
package llm

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion request.
// A zero Temperature or MaxTokens leaves the backend default in place.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Generator produces text from a conversation.
//
// Stream calls onChunk for every non-empty fragment in arrival order. If
// onChunk returns an error the stream is abandoned and that error returned.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request, onChunk func(chunk string) error) error
}

// ErrEmptyResponse is returned when the provider answered without content.
var ErrEmptyResponse = errors.New("llm: empty response")

// PermanentError marks a failure that retrying cannot fix, such as a
// rejected API key or a malformed request.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err in a PermanentError. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is, or wraps, a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// permanentStatus reports whether an HTTP status from a provider means the
// request itself is wrong. 408 and 429 are worth another try.
func permanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != 408 && code != 429
}
