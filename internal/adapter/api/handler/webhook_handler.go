package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iamakashcode/consent-sub001/internal/adapter/metrics"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
	SignatureHeader = "X-Signature"
	// EventIDHeader carries the billing provider's delivery ID, used for
	// idempotent redelivery handling.
	EventIDHeader = "X-Event-Id"

	maxWebhookBody = 64 * 1024
)

// SubscriptionSyncer triggers a regenerate-and-redistribute for one site.
type SubscriptionSyncer interface {
	SyncSubscription(ctx context.Context, siteID string) error
}

// billingEvent is the payload shape shared by the billing provider's
// subscription lifecycle events.
type billingEvent struct {
	EventType string `json:"event_type"`
	SiteID    string `json:"site_id"`
}

// WebhookHandler accepts billing webhook deliveries, verifies their HMAC
// signature over the raw body, and triggers a subscription sync for the
// referenced site. Redeliveries of the same event ID are acknowledged
// without re-syncing.
type WebhookHandler struct {
	syncer  SubscriptionSyncer
	secret  string
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewWebhookHandler creates a new WebhookHandler with the shared signing
// secret.
func NewWebhookHandler(syncer SubscriptionSyncer, secret string, logger *slog.Logger, m *metrics.Metrics) *WebhookHandler {
	return &WebhookHandler{
		syncer:  syncer,
		secret:  secret,
		logger:  logger,
		metrics: m,
		seen:    make(map[string]struct{}),
	}
}

func (h *WebhookHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.WebhooksTotal.WithLabelValues(status).Inc()
	}
}

// ServeHTTP processes POST /webhooks/billing.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.count("bad_payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !h.verify(r.Header.Get(SignatureHeader), rawBody) {
		h.count("invalid_signature")
		h.logger.Warn("rejected webhook with invalid signature", "remote_addr", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID := strings.TrimSpace(r.Header.Get(EventIDHeader))
	if eventID == "" {
		// Providers that omit the header still get processed, just without
		// redelivery dedup.
		eventID = "local-" + uuid.NewString()
	}

	var event billingEvent
	if err := json.Unmarshal(rawBody, &event); err != nil || event.SiteID == "" {
		h.count("bad_payload")
		http.Error(w, "Bad Request: malformed event", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	_, duplicate := h.seen[eventID]
	if !duplicate {
		h.seen[eventID] = struct{}{}
	}
	h.mu.Unlock()

	if duplicate {
		h.logger.Info("acknowledging duplicate webhook delivery", "event_id", eventID)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.syncer.SyncSubscription(r.Context(), event.SiteID); err != nil {
		// Drop the dedup mark so the provider's retry can succeed.
		h.mu.Lock()
		delete(h.seen, eventID)
		h.mu.Unlock()

		h.count("error")
		h.logger.Error("webhook-triggered sync failed", "error", err, "event_id", eventID, "site_id", event.SiteID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.count("accepted")
	h.logger.Info("processed billing webhook", "event_id", eventID, "event_type", event.EventType, "site_id", event.SiteID)
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) verify(sigHex string, rawBody []byte) bool {
	sigHex = strings.TrimSpace(sigHex)
	if sigHex == "" || h.secret == "" {
		return false
	}
	provided, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), provided)
}
