package domain

import (
	"strings"
	"time"
)

// Variant identifies which form of a generated artifact is being addressed.
type Variant string

const (
	// VariantProduction is the long-lived, immutably cached artifact.
	VariantProduction Variant = "production"
	// VariantPreview is the no-cache artifact used while configuring a site.
	VariantPreview Variant = "preview"
)

// Valid reports whether v is a known artifact variant.
func (v Variant) Valid() bool {
	return v == VariantProduction || v == VariantPreview
}

// SiteConfig is the per-site configuration the generation pipeline consumes.
// It is owned by the server, immutable per fetch, and read-only from the
// browser's perspective.
type SiteConfig struct {
	SiteID            string    `json:"site_id"`
	Domain            string    `json:"domain"`
	TrackerSignatures []string  `json:"tracker_signatures"`
	ConsentCategories []string  `json:"consent_categories"`
	Enabled           bool      `json:"enabled"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AllowsHost reports whether a page running on the given hostname may
// activate interception for this site. The configured domain matches itself
// and any of its subdomains. This is the sole tenant-isolation boundary.
func (c SiteConfig) AllowsHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	domain := strings.ToLower(strings.TrimSuffix(c.Domain, "."))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Artifact is a generated, self-contained script body for one site/variant.
type Artifact struct {
	SiteID      string    `json:"site_id"`
	Variant     Variant   `json:"variant"`
	Body        string    `json:"body"`
	Checksum    string    `json:"checksum"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Subscription is the minimal billing view the sync pipeline needs.
type Subscription struct {
	SiteID    string     `json:"site_id"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ActiveAt reports whether the subscription entitles the site to a live
// script at the given instant.
func (s Subscription) ActiveAt(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.ExpiresAt != nil && !s.ExpiresAt.After(now) {
		return false
	}
	return true
}
