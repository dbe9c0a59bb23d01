package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/iamakashcode/consent-sub001/internal/domain"
)

// MockSiteRepository is a mock implementation of domain.SiteRepository for testing.
type MockSiteRepository struct {
	mu             sync.Mutex
	Sites          map[string]domain.SiteConfig
	SubscribedIDs  []string
	EnabledWrites  map[string]bool
	GetErr         error
	ListErr        error
	SetEnabledErr  error
}

func (m *MockSiteRepository) GetSite(ctx context.Context, siteID string) (domain.SiteConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.SiteConfig{}, m.GetErr
	}
	cfg, ok := m.Sites[siteID]
	if !ok {
		return domain.SiteConfig{}, domain.ErrSiteNotFound
	}
	return cfg, nil
}

func (m *MockSiteRepository) ListSubscribedSiteIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.SubscribedIDs, nil
}

func (m *MockSiteRepository) SetEnabled(ctx context.Context, siteID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetEnabledErr != nil {
		return m.SetEnabledErr
	}
	if m.EnabledWrites == nil {
		m.EnabledWrites = make(map[string]bool)
	}
	m.EnabledWrites[siteID] = enabled
	if cfg, ok := m.Sites[siteID]; ok {
		cfg.Enabled = enabled
		m.Sites[siteID] = cfg
	}
	return nil
}

// MockSubscriptionRepository is a mock implementation of domain.SubscriptionRepository.
type MockSubscriptionRepository struct {
	mu            sync.Mutex
	Subscriptions map[string]domain.Subscription
	GetErr        error
}

func (m *MockSubscriptionRepository) GetSubscription(ctx context.Context, siteID string) (domain.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.Subscription{}, m.GetErr
	}
	sub, ok := m.Subscriptions[siteID]
	if !ok {
		return domain.Subscription{}, domain.ErrSiteNotFound
	}
	return sub, nil
}

// MockArtifactRepository is a mock implementation of domain.ArtifactRepository.
type MockArtifactRepository struct {
	mu        sync.Mutex
	Artifacts map[string]domain.Artifact
	GetErr    error
	PutErr    error
	PutCalls  int
}

func artifactKey(siteID string, variant domain.Variant) string {
	return siteID + "/" + string(variant)
}

func (m *MockArtifactRepository) GetArtifact(ctx context.Context, siteID string, variant domain.Variant) (domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.Artifact{}, m.GetErr
	}
	a, ok := m.Artifacts[artifactKey(siteID, variant)]
	if !ok {
		return domain.Artifact{}, domain.ErrArtifactNotFound
	}
	return a, nil
}

func (m *MockArtifactRepository) PutArtifact(ctx context.Context, artifact domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutErr != nil {
		return m.PutErr
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]domain.Artifact)
	}
	m.Artifacts[artifactKey(artifact.SiteID, artifact.Variant)] = artifact
	return nil
}

// MockPageViewRepository is a mock implementation of domain.PageViewRepository.
type MockPageViewRepository struct {
	mu       sync.Mutex
	Recorded []string
	Err      error
}

func (m *MockPageViewRepository) RecordPageView(ctx context.Context, siteID string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Recorded = append(m.Recorded, siteID)
	return nil
}
