package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// DistributeScriptUseCase serves per-site artifacts cache-first, falling
// back to on-demand generation. It never fails closed: whatever goes wrong,
// the caller gets a script body that is harmless to embed.
type DistributeScriptUseCase struct {
	artifacts domain.ArtifactRepository
	generator *GenerateScriptUseCase
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewDistributeScriptUseCase creates the distribution use case.
func NewDistributeScriptUseCase(
	artifacts domain.ArtifactRepository,
	generator *GenerateScriptUseCase,
	logger *slog.Logger,
	m *metrics.Metrics,
) *DistributeScriptUseCase {
	return &DistributeScriptUseCase{
		artifacts: artifacts,
		generator: generator,
		logger:    logger.With("component", "script_distribution"),
		metrics:   m,
	}
}

// Outcome classifies how a script body was obtained.
type Outcome string

const (
	OutcomeCached     Outcome = "cached"
	OutcomeGenerated  Outcome = "generated"
	OutcomeNoop       Outcome = "noop"
	OutcomeDiagnostic Outcome = "diagnostic"
)

// GetScript returns the script body for a site/variant. Cache hit wins; a
// miss triggers synchronous generation with a best-effort write-back; an
// unknown site yields the no-op stub; a generation failure yields the
// diagnostic stub. The returned outcome is for logging and metrics only.
func (uc *DistributeScriptUseCase) GetScript(ctx context.Context, siteID string, variant domain.Variant) (string, Outcome) {
	if siteID == "" || !variant.Valid() {
		uc.count(variant, OutcomeNoop)
		return NoopScript, OutcomeNoop
	}

	artifact, err := uc.artifacts.GetArtifact(ctx, siteID, variant)
	if err == nil {
		if uc.metrics != nil {
			uc.metrics.ArtifactCacheHits.Inc()
		}
		uc.count(variant, OutcomeCached)
		return artifact.Body, OutcomeCached
	}
	if !errors.Is(err, domain.ErrArtifactNotFound) {
		// Cache backend trouble is treated like a miss; generation still works.
		uc.logger.Warn("artifact cache lookup failed", "error", err, "site_id", siteID)
	}
	if uc.metrics != nil {
		uc.metrics.ArtifactCacheMisses.Inc()
	}

	artifact, err = uc.generator.Generate(ctx, siteID, variant)
	if err != nil {
		if errors.Is(err, domain.ErrSiteNotFound) {
			uc.count(variant, OutcomeNoop)
			return NoopScript, OutcomeNoop
		}
		uc.logger.Error("on-demand generation failed", "error", err, "site_id", siteID, "variant", string(variant))
		uc.count(variant, OutcomeDiagnostic)
		return DiagnosticScript, OutcomeDiagnostic
	}

	if putErr := uc.artifacts.PutArtifact(ctx, artifact); putErr != nil {
		uc.logger.Warn("artifact write-back failed", "error", putErr, "site_id", siteID)
	}

	uc.count(variant, OutcomeGenerated)
	return artifact.Body, OutcomeGenerated
}

func (uc *DistributeScriptUseCase) count(variant domain.Variant, outcome Outcome) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.ScriptRequests.WithLabelValues(string(variant), string(outcome)).Inc()
}
