package banner

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/iamakashcode/consent-sub001/internal/consent/dom"
	"github.com/iamakashcode/consent-sub001/internal/consent/engine"
	"github.com/iamakashcode/consent-sub001/internal/consent/state"
	"github.com/iamakashcode/consent-sub001/internal/domain"
)

const testPage = `<html><head>
<script src="https://googletagmanager.com/gtm.js"></script>
</head><body></body></html>`

func newFixture(t *testing.T, hostname string) (*Controller, *dom.Document, *state.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc, err := dom.ParseDocument(hostname, strings.NewReader(testPage))
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	store := state.NewStore(&state.MemoryStorage{}, logger)
	cfg := domain.SiteConfig{
		SiteID:            "site_123",
		Domain:            "example.com",
		TrackerSignatures: []string{"googletagmanager.com"},
	}
	eng := engine.New(cfg, doc, store, logger)
	if hostname == cfg.Domain {
		if err := eng.Activate(); err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
	} else {
		_ = eng.Activate() // expected to fail closed
	}
	return NewController(doc, store, eng, logger), doc, store
}

func bannerInDocument(doc *dom.Document) bool {
	for _, el := range doc.Elements() {
		if id, _ := el.Attribute("id"); id == ElementID {
			return true
		}
	}
	return false
}

func TestShowMountsOnce(t *testing.T) {
	ctrl, doc, _ := newFixture(t, "example.com")

	if !ctrl.Show() {
		t.Fatal("expected banner to render with unset consent")
	}
	if !ctrl.Show() {
		t.Fatal("second Show must report the mounted banner")
	}

	count := 0
	for _, el := range doc.Elements() {
		if id, _ := el.Attribute("id"); id == ElementID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one banner element, got %d", count)
	}
}

func TestShowSkippedWhenDecided(t *testing.T) {
	ctrl, doc, store := newFixture(t, "example.com")
	if err := store.SetState(domain.ConsentDenied); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if ctrl.Show() {
		t.Error("banner must not render once a decision exists")
	}
	if bannerInDocument(doc) {
		t.Error("no banner element expected in document")
	}
}

func TestShowSkippedOnForeignHost(t *testing.T) {
	ctrl, doc, _ := newFixture(t, "evil.example")
	if ctrl.Show() {
		t.Error("banner must not render when the engine failed to activate")
	}
	if bannerInDocument(doc) {
		t.Error("no banner element expected on foreign host")
	}
}

func TestAcceptRestoresAndDismisses(t *testing.T) {
	ctrl, doc, store := newFixture(t, "example.com")
	ctrl.Show()

	if err := ctrl.Accept(); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if store.State() != domain.ConsentGranted {
		t.Errorf("expected granted, got %v", store.State())
	}
	if ctrl.Mounted() || bannerInDocument(doc) {
		t.Error("banner must be removed after accept")
	}

	restored := false
	for _, el := range doc.Scripts() {
		if el.Src() == "https://googletagmanager.com/gtm.js" {
			restored = true
			if !el.Async {
				t.Error("restored script must be async")
			}
		}
		if el.Type() == engine.BlockedType {
			t.Error("no blocked placeholders may remain after accept")
		}
	}
	if !restored {
		t.Error("expected tracking script to be restored after accept")
	}
}

func TestRejectKeepsScriptsBlocked(t *testing.T) {
	ctrl, doc, store := newFixture(t, "example.com")
	ctrl.Show()

	if err := ctrl.Reject(); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if store.State() != domain.ConsentDenied {
		t.Errorf("expected denied, got %v", store.State())
	}
	if ctrl.Mounted() || bannerInDocument(doc) {
		t.Error("banner must be removed after reject")
	}

	blocked := 0
	for _, el := range doc.Scripts() {
		if el.Type() == engine.BlockedType {
			blocked++
		}
	}
	if blocked != 1 {
		t.Errorf("expected the tracking script to stay blocked, got %d blocked", blocked)
	}
}
