package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSiteNotFound is returned when no configuration exists for a site ID.
	ErrSiteNotFound = errors.New("site not found")

	// ErrArtifactNotFound is returned when no cached artifact exists for a
	// site/variant pair. Callers fall back to on-demand generation.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// SiteRepository provides read access to site configuration and registration.
type SiteRepository interface {
	// GetSite resolves the current configuration for a site.
	// Returns ErrSiteNotFound if the site is not registered.
	GetSite(ctx context.Context, siteID string) (SiteConfig, error)

	// ListSubscribedSiteIDs returns the IDs of every site that has a
	// subscription record, active or not. Used by the sync sweep.
	ListSubscribedSiteIDs(ctx context.Context) ([]string, error)

	// SetEnabled persists the billing-derived on/off gate for a site.
	SetEnabled(ctx context.Context, siteID string, enabled bool) error
}

// SubscriptionRepository resolves current billing state for a site.
type SubscriptionRepository interface {
	// GetSubscription returns the subscription record for a site.
	// Returns ErrSiteNotFound if the site has no subscription row.
	GetSubscription(ctx context.Context, siteID string) (Subscription, error)
}

// ArtifactRepository stores generated script artifacts, keyed by site ID and
// variant. Implementations stand in for the CDN object store.
type ArtifactRepository interface {
	// GetArtifact fetches the cached artifact for a site/variant.
	// Returns ErrArtifactNotFound on a cache miss.
	GetArtifact(ctx context.Context, siteID string, variant Variant) (Artifact, error)

	// PutArtifact stores an artifact, replacing any previous one for the
	// same site/variant. Last writer wins.
	PutArtifact(ctx context.Context, artifact Artifact) error
}

// PageViewRepository records page-view beacons per site.
type PageViewRepository interface {
	// RecordPageView increments the per-site counter for the day containing t.
	RecordPageView(ctx context.Context, siteID string, t time.Time) error
}
