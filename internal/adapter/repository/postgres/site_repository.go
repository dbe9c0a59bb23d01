package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/iamakashcode/consent-sub001/internal/domain"
)

type cacheEntry struct {
	cfg       domain.SiteConfig
	expiresAt time.Time
}

// SiteRepository implements domain.SiteRepository and
// domain.SubscriptionRepository using PostgreSQL as the source of truth,
// with an in-memory, time-based cache on site configuration. The script
// endpoint resolves config on every cache miss, so the cache keeps hot
// sites off the database.
type SiteRepository struct {
	db       *sql.DB
	logger   *slog.Logger
	cache    map[string]cacheEntry
	mu       sync.RWMutex
	cacheTTL time.Duration
}

// NewSiteRepository creates a new PostgreSQL site repository.
func NewSiteRepository(db *sql.DB, logger *slog.Logger, cacheTTL time.Duration) *SiteRepository {
	return &SiteRepository{
		db:       db,
		logger:   logger.With("component", "site_repository"),
		cache:    make(map[string]cacheEntry),
		cacheTTL: cacheTTL,
	}
}

// GetSite resolves the current configuration for a site. It first checks the
// local cache and falls back to the database if the entry is missing or
// expired.
func (r *SiteRepository) GetSite(ctx context.Context, siteID string) (domain.SiteConfig, error) {
	r.mu.RLock()
	entry, found := r.cache[siteID]
	r.mu.RUnlock()

	if found && time.Now().Before(entry.expiresAt) {
		return entry.cfg, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check in case another goroutine populated it while waiting.
	entry, found = r.cache[siteID]
	if found && time.Now().Before(entry.expiresAt) {
		return entry.cfg, nil
	}

	cfg, err := r.querySite(ctx, siteID)
	if err != nil {
		// Not-found is not cached; a site registered moments later should
		// resolve on the next request.
		return domain.SiteConfig{}, err
	}

	r.cache[siteID] = cacheEntry{cfg: cfg, expiresAt: time.Now().Add(r.cacheTTL)}
	return cfg, nil
}

func (r *SiteRepository) querySite(ctx context.Context, siteID string) (domain.SiteConfig, error) {
	query := `
		SELECT site_id, domain, tracker_signatures, consent_categories, enabled, updated_at
		FROM sites
		WHERE site_id = $1`

	var cfg domain.SiteConfig
	var signatures, categories pq.StringArray
	err := r.db.QueryRowContext(ctx, query, siteID).Scan(
		&cfg.SiteID, &cfg.Domain, &signatures, &categories, &cfg.Enabled, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SiteConfig{}, domain.ErrSiteNotFound
		}
		return domain.SiteConfig{}, fmt.Errorf("failed to query site: %w", err)
	}

	cfg.TrackerSignatures = []string(signatures)
	cfg.ConsentCategories = []string(categories)
	return cfg, nil
}

// ListSubscribedSiteIDs returns the IDs of every site with a subscription
// row, active or not. The sweep visits all of them so lapsed subscriptions
// get their stub redistributed.
func (r *SiteRepository) ListSubscribedSiteIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT s.site_id
		FROM sites s
		JOIN subscriptions sub ON sub.site_id = s.site_id
		ORDER BY s.site_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed sites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan site id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetEnabled persists the billing-derived gate and invalidates the cache
// entry so the next generation sees the new value immediately.
func (r *SiteRepository) SetEnabled(ctx context.Context, siteID string, enabled bool) error {
	query := `UPDATE sites SET enabled = $2, updated_at = NOW() WHERE site_id = $1`
	res, err := r.db.ExecContext(ctx, query, siteID, enabled)
	if err != nil {
		return fmt.Errorf("failed to update enabled gate: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSiteNotFound
	}

	r.mu.Lock()
	delete(r.cache, siteID)
	r.mu.Unlock()
	return nil
}

// GetSubscription returns the subscription record for a site. Subscription
// state is never cached: billing decisions must read current truth.
func (r *SiteRepository) GetSubscription(ctx context.Context, siteID string) (domain.Subscription, error) {
	query := `SELECT site_id, active, expires_at FROM subscriptions WHERE site_id = $1`

	var sub domain.Subscription
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, siteID).Scan(&sub.SiteID, &sub.Active, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Subscription{}, domain.ErrSiteNotFound
		}
		return domain.Subscription{}, fmt.Errorf("failed to query subscription: %w", err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		sub.ExpiresAt = &t
	}
	return sub, nil
}
