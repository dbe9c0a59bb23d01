package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// BeaconHandler records page-view/verification beacons sent by the
// distributed script. The beacon is fire-and-forget from the browser's side;
// failures are logged and counted, never surfaced as errors that could show
// up in the embedding page's console as failed requests worth retrying.
type BeaconHandler struct {
	pageViews domain.PageViewRepository
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewBeaconHandler creates a new BeaconHandler.
func NewBeaconHandler(pageViews domain.PageViewRepository, logger *slog.Logger, m *metrics.Metrics) *BeaconHandler {
	return &BeaconHandler{
		pageViews: pageViews,
		logger:    logger,
		metrics:   m,
	}
}

// ServeHTTP answers GET or POST /beacon/{siteID}. The GET form exists
// because the artifact reports through an image pixel.
func (h *BeaconHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	siteID := r.PathValue("siteID")
	if siteID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.pageViews.RecordPageView(r.Context(), siteID, time.Now()); err != nil {
		h.logger.Warn("failed to record page view", "error", err, "site_id", siteID)
		if h.metrics != nil {
			h.metrics.BeaconsTotal.WithLabelValues("error").Inc()
		}
	} else if h.metrics != nil {
		h.metrics.BeaconsTotal.WithLabelValues("recorded").Inc()
	}

	// 1x1 transparent GIF keeps image-pixel reporting silent.
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusAccepted)
	w.Write(transparentGIF)
}

var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}
