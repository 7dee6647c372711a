package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/rahul4469/cro-analyzer/internal/models"
	"github.com/rahul4469/cro-analyzer/internal/reqctx"
)

// AnalysisFailed is the only failure detail exposed to clients.
const AnalysisFailed = "An error occurred during analysis"

// maxBodyBytes bounds decoded request bodies. Chat requests carry the whole
// page text, so this is generous.
const maxBodyBytes = 8 << 20

// SiteAnalyzer is the analysis entry point the controller depends on.
type SiteAnalyzer interface {
	Analyze(ctx context.Context, domain string) (*models.SiteAnalysis, error)
}

// AnalyzeController serves POST /api/analyze.
type AnalyzeController struct {
	analyzer SiteAnalyzer
	render   *JSONRenderer
	logger   *zap.Logger
}

func NewAnalyzeController(analyzer SiteAnalyzer, render *JSONRenderer, logger *zap.Logger) *AnalyzeController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyzeController{analyzer: analyzer, render: render, logger: logger}
}

// PostAnalyze runs the full analysis of the submitted domain.
func (c *AnalyzeController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	log := reqctx.Logger(r.Context(), c.logger)

	var req models.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.render.RenderError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := c.analyzer.Analyze(r.Context(), req.Domain)
	switch {
	case errors.Is(err, models.ErrInvalidDomain):
		c.render.RenderError(w, http.StatusBadRequest, "Invalid domain")
		return
	case err != nil:
		log.Error("analysis failed", zap.String("domain", req.Domain), zap.Error(err))
		c.render.RenderError(w, http.StatusInternalServerError, AnalysisFailed)
		return
	}

	c.render.Render(w, http.StatusOK, result)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
