package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iamakashcode/consent-sub001/internal/domain"
)

const (
	artifactKeyPrefix = "cg:artifact:"
	pageViewKeyPrefix = "cg:pageviews:"

	// Page-view counters are kept long enough for monthly reporting, then
	// expire on their own.
	pageViewTTL = 90 * 24 * time.Hour
)

// ArtifactRepository implements domain.ArtifactRepository and
// domain.PageViewRepository on Redis. It stands in for the CDN object store:
// artifacts are stored whole, keyed by site and variant, last writer wins.
type ArtifactRepository struct {
	client *redis.Client
	logger *slog.Logger
}

// NewArtifactRepository creates a Redis-backed artifact store.
func NewArtifactRepository(client *redis.Client, logger *slog.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		client: client,
		logger: logger.With("component", "artifact_repository"),
	}
}

func artifactKey(siteID string, variant domain.Variant) string {
	return artifactKeyPrefix + siteID + ":" + string(variant)
}

// GetArtifact fetches the cached artifact for a site/variant. A missing key
// maps to domain.ErrArtifactNotFound so callers fall back to generation.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, siteID string, variant domain.Variant) (domain.Artifact, error) {
	payload, err := r.client.Get(ctx, artifactKey(siteID, variant)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Artifact{}, domain.ErrArtifactNotFound
		}
		return domain.Artifact{}, fmt.Errorf("failed to GET artifact: %w", err)
	}

	var artifact domain.Artifact
	if err := json.Unmarshal([]byte(payload), &artifact); err != nil {
		// A corrupt entry is as good as a miss; regeneration overwrites it.
		r.logger.Warn("corrupt artifact entry, treating as miss", "site_id", siteID, "variant", string(variant), "error", err)
		return domain.Artifact{}, domain.ErrArtifactNotFound
	}
	return artifact, nil
}

// PutArtifact stores an artifact, replacing any previous one for the same
// site/variant. Artifacts have no TTL; they are overwritten by the next
// sync or write-back.
func (r *ArtifactRepository) PutArtifact(ctx context.Context, artifact domain.Artifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if err := r.client.Set(ctx, artifactKey(artifact.SiteID, artifact.Variant), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to SET artifact: %w", err)
	}
	return nil
}

// RecordPageView increments the site's counter for the UTC day containing t.
func (r *ArtifactRepository) RecordPageView(ctx context.Context, siteID string, t time.Time) error {
	key := pageViewKeyPrefix + siteID + ":" + t.UTC().Format("2006-01-02")

	pipe := r.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, pageViewTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record page view: %w", err)
	}
	return nil
}
