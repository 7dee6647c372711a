package controllers

import "net/http"

type healthResponse struct {
	Status      string `json:"status"`
	LLMProvider string `json:"llmProvider"`
}

// HealthController reports liveness together with the configured
// text generation backend.
type HealthController struct {
	provider string
	render   *JSONRenderer
}

func NewHealthController(provider string, render *JSONRenderer) *HealthController {
	return &HealthController{provider: provider, render: render}
}

func (hc *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	hc.render.Render(w, http.StatusOK, healthResponse{Status: "ok", LLMProvider: hc.provider})
}
