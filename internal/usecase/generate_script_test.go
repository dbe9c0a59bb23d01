package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/iamakashcode/consent-sub001/internal/domain"
	"github.com/iamakashcode/consent-sub001/internal/domain/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSite(enabled bool) domain.SiteConfig {
	return domain.SiteConfig{
		SiteID:            "site_123",
		Domain:            "example.com",
		TrackerSignatures: []string{"googletagmanager.com", "google-analytics.com"},
		ConsentCategories: []string{"analytics"},
		Enabled:           enabled,
	}
}

func newGenerator(sites *mocks.MockSiteRepository, subs *mocks.MockSubscriptionRepository, artifacts *mocks.MockArtifactRepository) *GenerateScriptUseCase {
	return NewGenerateScriptUseCase(sites, subs, artifacts, testLogger(), nil, "https://cdn.consentgate.io")
}

func TestGenerateDeterminism(t *testing.T) {
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(true)}}
	uc := newGenerator(sites, &mocks.MockSubscriptionRepository{}, &mocks.MockArtifactRepository{})

	first, err := uc.Generate(context.Background(), "site_123", domain.VariantProduction)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := uc.Generate(context.Background(), "site_123", domain.VariantProduction)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if first.Body != second.Body {
		t.Error("identical configuration must produce byte-identical bodies")
	}
	if first.Checksum != second.Checksum || first.Checksum == "" {
		t.Errorf("checksums differ or empty: %q vs %q", first.Checksum, second.Checksum)
	}
}

func TestGenerateEmbedsConfiguration(t *testing.T) {
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(true)}}
	uc := newGenerator(sites, &mocks.MockSubscriptionRepository{}, &mocks.MockArtifactRepository{})

	artifact, err := uc.Generate(context.Background(), "site_123", domain.VariantProduction)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, want := range []string{
		`"site_123"`,
		`"example.com"`,
		`"googletagmanager.com"`,
		`"cg_consent"`,
		`"text/cg-blocked"`,
		`"data-cg-src"`,
		`https://cdn.consentgate.io/beacon/site_123`,
	} {
		if !strings.Contains(artifact.Body, want) {
			t.Errorf("artifact missing %s", want)
		}
	}
	if strings.Contains(artifact.Body, "{{") {
		t.Error("artifact contains unexpanded template actions")
	}
}

func TestGenerateDisabledSiteGetsStub(t *testing.T) {
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(false)}}
	uc := newGenerator(sites, &mocks.MockSubscriptionRepository{}, &mocks.MockArtifactRepository{})

	artifact, err := uc.Generate(context.Background(), "site_123", domain.VariantProduction)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if artifact.Body != NoopScript {
		t.Errorf("disabled site must get the no-op stub, got %q", artifact.Body)
	}
	if strings.Contains(artifact.Body, "googletagmanager") {
		t.Error("stub must not leak tracker signatures")
	}
}

func TestGenerateUnknownSite(t *testing.T) {
	uc := newGenerator(&mocks.MockSiteRepository{}, &mocks.MockSubscriptionRepository{}, &mocks.MockArtifactRepository{})

	_, err := uc.Generate(context.Background(), "nope", domain.VariantProduction)
	if !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestGenerateRejectsUnknownVariant(t *testing.T) {
	uc := newGenerator(&mocks.MockSiteRepository{}, &mocks.MockSubscriptionRepository{}, &mocks.MockArtifactRepository{})
	if _, err := uc.Generate(context.Background(), "site_123", domain.Variant("staging")); err == nil {
		t.Error("expected an error for an unknown variant")
	}
}

func TestSyncSubscription(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name        string
		sub         *domain.Subscription
		wantEnabled bool
	}{
		{
			name:        "Active Subscription Enables",
			sub:         &domain.Subscription{SiteID: "site_123", Active: true},
			wantEnabled: true,
		},
		{
			name:        "Cancelled Subscription Disables",
			sub:         &domain.Subscription{SiteID: "site_123", Active: false},
			wantEnabled: false,
		},
		{
			name:        "Expired Subscription Disables",
			sub:         &domain.Subscription{SiteID: "site_123", Active: true, ExpiresAt: &past},
			wantEnabled: false,
		},
		{
			name:        "No Subscription Row Disables",
			sub:         nil,
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(!tt.wantEnabled)}}
			subs := &mocks.MockSubscriptionRepository{Subscriptions: map[string]domain.Subscription{}}
			if tt.sub != nil {
				subs.Subscriptions["site_123"] = *tt.sub
			}
			artifacts := &mocks.MockArtifactRepository{}
			uc := newGenerator(sites, subs, artifacts)

			if err := uc.SyncSubscription(context.Background(), "site_123"); err != nil {
				t.Fatalf("SyncSubscription failed: %v", err)
			}

			if got := sites.EnabledWrites["site_123"]; got != tt.wantEnabled {
				t.Errorf("enabled gate = %v, want %v", got, tt.wantEnabled)
			}

			// Both variants are regenerated and distributed.
			for _, variant := range []domain.Variant{domain.VariantProduction, domain.VariantPreview} {
				artifact, err := artifacts.GetArtifact(context.Background(), "site_123", variant)
				if err != nil {
					t.Fatalf("missing %s artifact after sync: %v", variant, err)
				}
				isStub := artifact.Body == NoopScript
				if tt.wantEnabled && isStub {
					t.Errorf("%s artifact is a stub for an enabled site", variant)
				}
				if !tt.wantEnabled && !isStub {
					t.Errorf("%s artifact is live for a disabled site", variant)
				}
			}
		})
	}
}

func TestSyncSubscriptionEnabledFlipProducesStub(t *testing.T) {
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(true)}}
	subs := &mocks.MockSubscriptionRepository{Subscriptions: map[string]domain.Subscription{
		"site_123": {SiteID: "site_123", Active: true},
	}}
	artifacts := &mocks.MockArtifactRepository{}
	uc := newGenerator(sites, subs, artifacts)

	if err := uc.SyncSubscription(context.Background(), "site_123"); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	live, _ := artifacts.GetArtifact(context.Background(), "site_123", domain.VariantProduction)
	if live.Body == NoopScript {
		t.Fatal("expected a live artifact while subscribed")
	}

	subs.Subscriptions["site_123"] = domain.Subscription{SiteID: "site_123", Active: false}
	if err := uc.SyncSubscription(context.Background(), "site_123"); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	stub, _ := artifacts.GetArtifact(context.Background(), "site_123", domain.VariantProduction)
	if stub.Body != NoopScript {
		t.Error("expected the stub after the subscription lapsed, regardless of prior signatures")
	}
}
