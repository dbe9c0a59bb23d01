package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// SweepSubscriptionsUseCase periodically re-syncs every subscribed site so
// distributed artifacts converge with billing state even when a webhook was
// missed. The sweep interval bounds the acceptable staleness window.
type SweepSubscriptionsUseCase struct {
	sites       domain.SiteRepository
	generator   *GenerateScriptUseCase
	logger      *slog.Logger
	metrics     *metrics.Metrics
	limiter     *rate.Limiter
	concurrency int
}

// NewSweepSubscriptionsUseCase creates the sweep use case. The limiter paces
// sync calls so a large tenant list cannot saturate the config store.
func NewSweepSubscriptionsUseCase(
	sites domain.SiteRepository,
	generator *GenerateScriptUseCase,
	logger *slog.Logger,
	m *metrics.Metrics,
	limiter *rate.Limiter,
	concurrency int,
) *SweepSubscriptionsUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SweepSubscriptionsUseCase{
		sites:       sites,
		generator:   generator,
		logger:      logger.With("component", "subscription_sweep"),
		metrics:     m,
		limiter:     limiter,
		concurrency: concurrency,
	}
}

// Sweep syncs every subscribed site with bounded concurrency. Individual
// site failures are logged and counted but do not abort the sweep; the
// returned error reflects only listing failures or context cancellation.
func (uc *SweepSubscriptionsUseCase) Sweep(ctx context.Context) (synced int, failed int, err error) {
	start := time.Now()

	siteIDs, err := uc.sites.ListSubscribedSiteIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list subscribed sites: %w", err)
	}

	results := make(chan bool, len(siteIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for _, siteID := range siteIDs {
		g.Go(func() error {
			if uc.limiter != nil {
				if err := uc.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			if err := uc.generator.SyncSubscription(gctx, siteID); err != nil {
				uc.logger.Error("site sync failed", "error", err, "site_id", siteID)
				results <- false
				return nil
			}
			results <- true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return synced, failed, err
	}
	close(results)
	for ok := range results {
		if ok {
			synced++
		} else {
			failed++
		}
	}

	if uc.metrics != nil {
		uc.metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}
	uc.logger.Info("subscription sweep complete", "synced", synced, "failed", failed, "duration_ms", time.Since(start).Milliseconds())
	return synced, failed, nil
}
