package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// NoopScript is served for unknown or disabled sites: a harmless artifact
// that must never break the embedding page.
const NoopScript = "/*! consentgate disabled */\n;\n"

// DiagnosticScript is the last-resort artifact when both the cache and
// on-demand generation fail. Its only effect is a console diagnostic.
const DiagnosticScript = "/*! consentgate unavailable */\n" +
	"(function(){try{console.warn(\"consentgate: script temporarily unavailable\")}catch(e){}})();\n"

// GenerateScriptUseCase resolves site configuration and emits the concrete
// per-site script artifact, and keeps the enabled gate in step with billing.
type GenerateScriptUseCase struct {
	sites         domain.SiteRepository
	subscriptions domain.SubscriptionRepository
	artifacts     domain.ArtifactRepository
	logger        *slog.Logger
	metrics       *metrics.Metrics
	beaconBaseURL string
	now           func() time.Time
}

// NewGenerateScriptUseCase creates the generator. beaconBaseURL is the
// public origin the artifact reports page views to.
func NewGenerateScriptUseCase(
	sites domain.SiteRepository,
	subscriptions domain.SubscriptionRepository,
	artifacts domain.ArtifactRepository,
	logger *slog.Logger,
	m *metrics.Metrics,
	beaconBaseURL string,
) *GenerateScriptUseCase {
	return &GenerateScriptUseCase{
		sites:         sites,
		subscriptions: subscriptions,
		artifacts:     artifacts,
		logger:        logger.With("component", "script_generator"),
		metrics:       m,
		beaconBaseURL: beaconBaseURL,
		now:           time.Now,
	}
}

// Generate resolves the site's current configuration and renders its
// artifact. Disabled sites get the no-op stub regardless of their signature
// list. Output is a pure function of configuration: two calls with unchanged
// configuration produce byte-identical bodies.
func (uc *GenerateScriptUseCase) Generate(ctx context.Context, siteID string, variant domain.Variant) (domain.Artifact, error) {
	if !variant.Valid() {
		return domain.Artifact{}, fmt.Errorf("unknown artifact variant %q", variant)
	}

	cfg, err := uc.sites.GetSite(ctx, siteID)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.GenerationsTotal.WithLabelValues("error_config").Inc()
		}
		return domain.Artifact{}, fmt.Errorf("failed to resolve site config: %w", err)
	}

	body, err := uc.render(cfg, variant)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.GenerationsTotal.WithLabelValues("error_render").Inc()
		}
		return domain.Artifact{}, err
	}

	if uc.metrics != nil {
		uc.metrics.GenerationsTotal.WithLabelValues("ok").Inc()
	}

	sum := sha256.Sum256([]byte(body))
	return domain.Artifact{
		SiteID:      cfg.SiteID,
		Variant:     variant,
		Body:        body,
		Checksum:    hex.EncodeToString(sum[:]),
		GeneratedAt: uc.now().UTC(),
	}, nil
}

func (uc *GenerateScriptUseCase) render(cfg domain.SiteConfig, variant domain.Variant) (string, error) {
	if !cfg.Enabled {
		return NoopScript, nil
	}

	signatures := append([]string(nil), cfg.TrackerSignatures...)
	categories := append([]string(nil), cfg.ConsentCategories...)
	if len(categories) == 0 {
		categories = []string{"analytics"}
	}
	// Category order must not depend on how the config row was assembled.
	sort.Strings(categories)

	data := templateData{
		SiteID:         cfg.SiteID,
		Variant:        string(variant),
		SiteIDJSON:     mustJSON(cfg.SiteID),
		DomainJSON:     mustJSON(cfg.Domain),
		SignaturesJSON: mustJSON(signatures),
		CategoriesJSON: mustJSON(categories),
		BeaconURLJSON:  mustJSON(uc.beaconBaseURL + "/beacon/" + cfg.SiteID),
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render script template: %w", err)
	}
	return buf.String(), nil
}

// SyncSubscription recomputes the enabled gate from current billing state,
// persists it, and regenerates and redistributes both artifact variants.
// Called on webhook delivery and by the periodic sweep; safe to run
// concurrently with itself, last writer wins.
func (uc *GenerateScriptUseCase) SyncSubscription(ctx context.Context, siteID string) error {
	sub, err := uc.subscriptions.GetSubscription(ctx, siteID)
	enabled := false
	switch {
	case err == nil:
		enabled = sub.ActiveAt(uc.now())
	case errors.Is(err, domain.ErrSiteNotFound):
		// No subscription row means the site never paid: gate stays off.
	default:
		return fmt.Errorf("failed to resolve subscription: %w", err)
	}

	if err := uc.sites.SetEnabled(ctx, siteID, enabled); err != nil {
		return fmt.Errorf("failed to persist enabled gate: %w", err)
	}

	for _, variant := range []domain.Variant{domain.VariantProduction, domain.VariantPreview} {
		artifact, err := uc.Generate(ctx, siteID, variant)
		if err != nil {
			return fmt.Errorf("failed to regenerate %s artifact: %w", variant, err)
		}
		if err := uc.artifacts.PutArtifact(ctx, artifact); err != nil {
			return fmt.Errorf("failed to distribute %s artifact: %w", variant, err)
		}
	}

	if uc.metrics != nil {
		uc.metrics.SyncsTotal.Inc()
	}
	uc.logger.Info("synced site with subscription state", "site_id", siteID, "enabled", enabled)
	return nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Only strings and string slices reach here; Marshal cannot fail.
		panic(err)
	}
	return string(b)
}
