package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
)

const (
	wsWriteWait = 10 * time.Second
	wsReadWait  = 60 * time.Second
)

// ChatWS answers one question per connection. The client sends a
// models.ChatRequest as its first message; the answer arrives as one text
// frame per chunk followed by a normal close frame.
func (c *ChatController) ChatWS(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), c.logger)

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxBodyBytes)

	var req models.ChatRequest
	_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "invalid request"),
			time.Now().Add(wsWriteWait))
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// a client close or disconnect cancels generation
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	defer func() {
		_ = conn.Close()
		<-readerDone
	}()

	if err := c.relay.Relay(ctx, req, &wsSink{conn: conn}); err != nil {
		log.Debug("websocket chat ended with error", zap.Error(err))
	}
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) WriteChunk(chunk string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, []byte(chunk))
}

func (s *wsSink) Close() error {
	return s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}
