package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
	"github.com/rahul4469/cro-analyzer/internal/services"
)

// Relayer streams a chat answer into a sink.
type Relayer interface {
	Relay(ctx context.Context, req models.ChatRequest, sink services.Sink) error
}

// ChatController serves the chat stream over plain HTTP and WebSocket.
type ChatController struct {
	relay    Relayer
	render   *JSONRenderer
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewChatController accepts WebSocket handshakes from allowedOrigins, or
// from any origin when the list is empty.
func NewChatController(relay Relayer, render *JSONRenderer, allowedOrigins []string, logger *zap.Logger) *ChatController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatController{
		relay:  relay,
		render: render,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: logger,
	}
}

// PostChat streams the answer as raw text chunks. The body is not framed as
// server-sent events even though the headers say text/event-stream.
func (c *ChatController) PostChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.render.RenderError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		c.render.RenderError(w, http.StatusBadRequest, "Message is required")
		return
	}

	rc := http.NewResponseController(w)
	// the stream may outlive the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sink := &httpSink{w: w, rc: rc}
	if err := c.relay.Relay(r.Context(), req, sink); err != nil {
		reqctx.Logger(r.Context(), c.logger).Debug("chat relay ended with error", zap.Error(err))
	}
}

type httpSink struct {
	w  io.Writer
	rc *http.ResponseController
}

func (s *httpSink) WriteChunk(chunk string) error {
	if _, err := io.WriteString(s.w, chunk); err != nil {
		return err
	}
	return s.flush()
}

func (s *httpSink) Close() error { return s.flush() }

func (s *httpSink) flush() error {
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}
