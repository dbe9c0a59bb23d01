package api

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/iamakashcode/consent-sub001/internal/adapter/api/handler"
	"github.com/iamakashcode/consent-sub001/internal/adapter/api/middleware"
	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/domain"
	"github.com/iamakashcode/consent-sub001/internal/pkg/config"
	"github.com/iamakashcode/consent-sub001/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the
// distribution service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	distributor *usecase.DistributeScriptUseCase,
	generator *usecase.GenerateScriptUseCase,
	pageViews domain.PageViewRepository,
	m *metrics.Metrics,
) http.Handler {
	mux := http.NewServeMux()

	productionHandler := handler.NewScriptHandler(distributor, logger, domain.VariantProduction)
	previewHandler := handler.NewScriptHandler(distributor, logger, domain.VariantPreview)
	beaconHandler := handler.NewBeaconHandler(pageViews, logger, m)
	webhookHandler := handler.NewWebhookHandler(generator, cfg.WebhookSecret, logger, m)

	limit := middleware.RateLimit(rate.Limit(cfg.ScriptRateLimit), cfg.ScriptRateBurst, logger)

	mux.Handle("GET /sites/{siteID}/script.js", limit(productionHandler))
	mux.Handle("GET /sites/{siteID}/script.preview.js", limit(previewHandler))
	mux.Handle("GET /beacon/{siteID}", beaconHandler)
	mux.Handle("POST /beacon/{siteID}", beaconHandler)
	mux.Handle("POST /webhooks/billing", webhookHandler)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
