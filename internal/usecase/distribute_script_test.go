package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/iamakashcode/consent-sub001/internal/domain"
	"github.com/iamakashcode/consent-sub001/internal/domain/mocks"
)

func TestGetScriptCacheHit(t *testing.T) {
	artifacts := &mocks.MockArtifactRepository{}
	artifacts.PutArtifact(context.Background(), domain.Artifact{
		SiteID:  "site_123",
		Variant: domain.VariantProduction,
		Body:    "/* cached */",
	})
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(true)}}
	uc := NewDistributeScriptUseCase(artifacts, newGenerator(sites, &mocks.MockSubscriptionRepository{}, artifacts), testLogger(), nil)

	body, outcome := uc.GetScript(context.Background(), "site_123", domain.VariantProduction)
	if outcome != OutcomeCached {
		t.Errorf("outcome = %v, want cached", outcome)
	}
	if body != "/* cached */" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestGetScriptCacheMissGeneratesAndWritesBack(t *testing.T) {
	artifacts := &mocks.MockArtifactRepository{}
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(true)}}
	uc := NewDistributeScriptUseCase(artifacts, newGenerator(sites, &mocks.MockSubscriptionRepository{}, artifacts), testLogger(), nil)

	body, outcome := uc.GetScript(context.Background(), "site_123", domain.VariantProduction)
	if outcome != OutcomeGenerated {
		t.Fatalf("outcome = %v, want generated", outcome)
	}
	if body == "" || body == NoopScript {
		t.Errorf("expected a live body, got %q", body)
	}

	cached, err := artifacts.GetArtifact(context.Background(), "site_123", domain.VariantProduction)
	if err != nil {
		t.Fatalf("expected write-back into the cache: %v", err)
	}
	if cached.Body != body {
		t.Error("cached body differs from served body")
	}

	// The next request is served from the cache.
	_, outcome = uc.GetScript(context.Background(), "site_123", domain.VariantProduction)
	if outcome != OutcomeCached {
		t.Errorf("second request outcome = %v, want cached", outcome)
	}
}

func TestGetScriptUnknownSiteServesNoop(t *testing.T) {
	artifacts := &mocks.MockArtifactRepository{}
	uc := NewDistributeScriptUseCase(artifacts, newGenerator(&mocks.MockSiteRepository{}, &mocks.MockSubscriptionRepository{}, artifacts), testLogger(), nil)

	body, outcome := uc.GetScript(context.Background(), "ghost", domain.VariantProduction)
	if outcome != OutcomeNoop || body != NoopScript {
		t.Errorf("unknown site must get the no-op stub, got outcome=%v body=%q", outcome, body)
	}
}

func TestGetScriptEmptySiteIDServesNoop(t *testing.T) {
	artifacts := &mocks.MockArtifactRepository{}
	uc := NewDistributeScriptUseCase(artifacts, newGenerator(&mocks.MockSiteRepository{}, &mocks.MockSubscriptionRepository{}, artifacts), testLogger(), nil)

	if body, outcome := uc.GetScript(context.Background(), "", domain.VariantProduction); outcome != OutcomeNoop || body != NoopScript {
		t.Error("empty site ID must get the no-op stub")
	}
	if body, outcome := uc.GetScript(context.Background(), "site_123", domain.Variant("weird")); outcome != OutcomeNoop || body != NoopScript {
		t.Error("unknown variant must get the no-op stub")
	}
}

func TestGetScriptGenerationFailureServesDiagnostic(t *testing.T) {
	artifacts := &mocks.MockArtifactRepository{}
	sites := &mocks.MockSiteRepository{GetErr: errors.New("config store down")}
	uc := NewDistributeScriptUseCase(artifacts, newGenerator(sites, &mocks.MockSubscriptionRepository{}, artifacts), testLogger(), nil)

	body, outcome := uc.GetScript(context.Background(), "site_123", domain.VariantProduction)
	if outcome != OutcomeDiagnostic {
		t.Fatalf("outcome = %v, want diagnostic", outcome)
	}
	if body != DiagnosticScript {
		t.Errorf("unexpected body %q", body)
	}
}

func TestGetScriptCacheBackendFailureFallsThrough(t *testing.T) {
	artifacts := &mocks.MockArtifactRepository{GetErr: errors.New("redis timeout")}
	sites := &mocks.MockSiteRepository{Sites: map[string]domain.SiteConfig{"site_123": testSite(true)}}
	uc := NewDistributeScriptUseCase(artifacts, newGenerator(sites, &mocks.MockSubscriptionRepository{}, artifacts), testLogger(), nil)

	body, outcome := uc.GetScript(context.Background(), "site_123", domain.VariantProduction)
	if outcome != OutcomeGenerated {
		t.Errorf("outcome = %v, want generated despite cache failure", outcome)
	}
	if body == NoopScript || body == DiagnosticScript {
		t.Error("expected a live body despite cache failure")
	}
}
