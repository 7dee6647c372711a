package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
)

// FallbackMessage is written to the client when the answer stream fails.
const FallbackMessage = "An error occurred while processing your request. Please try again later."

// Sink receives the chat answer as it is generated. Close is the only
// termination signal and is called exactly once.
type Sink interface {
	WriteChunk(chunk string) error
	Close() error
}

// ChatRelay streams answers about captured page content to a Sink.
type ChatRelay struct {
	gen     llm.Generator
	prompts Prompts
	logger  *zap.Logger
}

// NewChatRelay expects a generator without retry middleware: a failed
// stream is final and answered with FallbackMessage.
func NewChatRelay(gen llm.Generator, prompts Prompts, logger *zap.Logger) *ChatRelay {
	return &ChatRelay{gen: gen, prompts: prompts, logger: nopIfNil(logger)}
}

// Relay forwards each chunk to sink as soon as it arrives. On any failure it
// writes FallbackMessage; sink is closed before Relay returns on every path.
func (cr *ChatRelay) Relay(ctx context.Context, req models.ChatRequest, sink Sink) (err error) {
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close sink: %w", cerr)
		}
	}()

	if err := req.Validate(); err != nil {
		_ = sink.WriteChunk(FallbackMessage)
		return err
	}

	chunks := 0
	err = cr.gen.Stream(ctx, cr.prompts.Chat(req), func(chunk string) error {
		chunks++
		return sink.WriteChunk(chunk)
	})
	if err != nil {
		reqctx.Logger(ctx, cr.logger).Warn("chat stream failed",
			zap.Int("chunks", chunks), zap.Error(err))
		_ = sink.WriteChunk(FallbackMessage)
		return fmt.Errorf("chat stream: %w", err)
	}
	return nil
}
