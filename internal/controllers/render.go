package controllers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// JSONRenderer writes JSON responses and logs failures to encode them.
type JSONRenderer struct {
	logger *zap.Logger
}

func NewJSONRenderer(logger *zap.Logger) *JSONRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONRenderer{logger: logger}
}

// Render encodes data with the given status code.
func (jr *JSONRenderer) Render(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		jr.logger.Error("encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RenderError writes {"error": msg}.
func (jr *JSONRenderer) RenderError(w http.ResponseWriter, status int, msg string) {
	jr.Render(w, status, errorResponse{Error: msg})
}

type errorResponse struct {
	Error string `json:"error"`
}
