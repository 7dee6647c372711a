package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rahul4469/cro-analyzer/internal/llm"
	"github.com/rahul4469/cro-analyzer/internal/llm/llmtest"
	"github.com/rahul4469/cro-analyzer/internal/models"
)

type recordingSink struct {
	chunks   []string
	closed   int
	writeErr error
	closeErr error
}

func (s *recordingSink) WriteChunk(c string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.chunks = append(s.chunks, c)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed++
	return s.closeErr
}

func (s *recordingSink) text() string { return strings.Join(s.chunks, "") }

const chatMarker = "User question:"

func TestChatRelay_Streams(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := llmtest.New().OnStream(chatMarker, "The page ", "offers ", "free shipping.")
	sink := &recordingSink{}

	err := NewChatRelay(fake, Prompts{}, nil).Relay(context.Background(), models.ChatRequest{
		Message:        "What does the page offer?",
		WebsiteContent: "Acme Widgets. Free shipping.",
	}, sink)

	require.NoError(t, err)
	assert.Equal(t, []string{"The page ", "offers ", "free shipping."}, sink.chunks)
	assert.Equal(t, 1, sink.closed)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, chatMaxTokens, reqs[0].MaxTokens)
	assert.Equal(t, llm.RoleSystem, reqs[0].Messages[0].Role)
	assert.Equal(t, chatSystemPrompt, reqs[0].Messages[0].Content)
	assert.Contains(t, reqs[0].Messages[1].Content, "Website content: Acme Widgets. Free shipping.")
	assert.Contains(t, reqs[0].Messages[1].Content, "User question: What does the page offer?")
}

func TestChatRelay_StreamFailsBeforeFirstChunk(t *testing.T) {
	fake := llmtest.New().OnError(chatMarker, errors.New("401 unauthorized"))
	sink := &recordingSink{}

	err := NewChatRelay(fake, Prompts{}, nil).Relay(context.Background(),
		models.ChatRequest{Message: "hi", WebsiteContent: "page"}, sink)

	require.Error(t, err)
	assert.Equal(t, FallbackMessage, sink.text())
	assert.Equal(t, 1, sink.closed)
}

func TestChatRelay_StreamFailsMidway(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	boom := errors.New("connection reset")
	fake := llmtest.New().OnStreamError(chatMarker, boom, "Partial ", "answer")
	sink := &recordingSink{}

	err := NewChatRelay(fake, Prompts{}, nil).Relay(context.Background(),
		models.ChatRequest{Message: "hi", WebsiteContent: "page"}, sink)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"Partial ", "answer", FallbackMessage}, sink.chunks)
	assert.Equal(t, 1, sink.closed)
}

func TestChatRelay_EmptyMessage(t *testing.T) {
	fake := llmtest.New()
	sink := &recordingSink{}

	err := NewChatRelay(fake, Prompts{}, nil).Relay(context.Background(),
		models.ChatRequest{Message: "   ", WebsiteContent: "page"}, sink)

	assert.ErrorIs(t, err, models.ErrEmptyMessage)
	assert.Equal(t, FallbackMessage, sink.text())
	assert.Equal(t, 1, sink.closed)
	assert.Zero(t, fake.Calls())
}

func TestChatRelay_SinkErrors(t *testing.T) {
	t.Run("write", func(t *testing.T) {
		gone := errors.New("client gone")
		fake := llmtest.New().OnStream(chatMarker, "a", "b")
		sink := &recordingSink{writeErr: gone}

		err := NewChatRelay(fake, Prompts{}, nil).Relay(context.Background(),
			models.ChatRequest{Message: "hi"}, sink)

		assert.ErrorIs(t, err, gone)
		assert.Equal(t, 1, sink.closed)
	})

	t.Run("close", func(t *testing.T) {
		closeErr := errors.New("flush failed")
		fake := llmtest.New().OnStream(chatMarker, "a")
		sink := &recordingSink{closeErr: closeErr}

		err := NewChatRelay(fake, Prompts{}, nil).Relay(context.Background(),
			models.ChatRequest{Message: "hi"}, sink)

		assert.ErrorIs(t, err, closeErr)
		assert.Equal(t, []string{"a"}, sink.chunks)
	})
}

func TestChatRelay_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := llmtest.New().OnStream(chatMarker, "never")
	sink := &recordingSink{}

	err := NewChatRelay(fake, Prompts{}, nil).Relay(ctx, models.ChatRequest{Message: "hi"}, sink)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, FallbackMessage, sink.text())
	assert.Equal(t, 1, sink.closed)
}
