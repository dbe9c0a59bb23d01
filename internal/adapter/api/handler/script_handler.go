package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iamakashcode/consent-sub001/internal/domain"
	"github.com/iamakashcode/consent-sub001/internal/usecase"
)

// ScriptDistributor is the slice of the distribution use case the handler
// needs.
type ScriptDistributor interface {
	GetScript(ctx context.Context, siteID string, variant domain.Variant) (string, usecase.Outcome)
}

// ScriptHandler serves the per-site consent script. The script is embedded
// cross-site, so responses carry permissive CORS headers; the production
// variant is immutable-cacheable, the preview variant never cached.
type ScriptHandler struct {
	distributor ScriptDistributor
	logger      *slog.Logger
	variant     domain.Variant
}

// NewScriptHandler creates a handler serving the given artifact variant.
func NewScriptHandler(distributor ScriptDistributor, logger *slog.Logger, variant domain.Variant) *ScriptHandler {
	return &ScriptHandler{
		distributor: distributor,
		logger:      logger,
		variant:     variant,
	}
}

// ServeHTTP answers GET /sites/{siteID}/script.js (or script.preview.js).
// Whatever happens server-side, the response is a 200 with an embeddable
// script body; a broken pipeline must never break the customer's page.
func (h *ScriptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	siteID := r.PathValue("siteID")

	body, outcome := h.distributor.GetScript(r.Context(), siteID, h.variant)

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	switch h.variant {
	case domain.VariantPreview:
		w.Header().Set("Cache-Control", "no-store")
	default:
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}

	if outcome == usecase.OutcomeNoop || outcome == usecase.OutcomeDiagnostic {
		// Cache stubs briefly so a misconfigured embed cannot hammer us,
		// but recover quickly once the site is fixed.
		w.Header().Set("Cache-Control", "public, max-age=300")
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Warn("failed to write script response", "error", err, "site_id", siteID)
	}
}
