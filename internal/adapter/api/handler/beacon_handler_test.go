package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iamakashcode/consent-sub001/internal/domain/mocks"
)

func TestBeaconHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Records Page View", func(t *testing.T) {
		repo := &mocks.MockPageViewRepository{}
		h := NewBeaconHandler(repo, logger, nil)

		mux := http.NewServeMux()
		mux.Handle("GET /beacon/{siteID}", h)

		req := httptest.NewRequest(http.MethodGet, "/beacon/site_123?t=1700000000", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202", rr.Code)
		}
		if got := rr.Header().Get("Content-Type"); got != "image/gif" {
			t.Errorf("Content-Type = %q, want image/gif", got)
		}
		if len(repo.Recorded) != 1 || repo.Recorded[0] != "site_123" {
			t.Errorf("recorded = %v, want [site_123]", repo.Recorded)
		}
	})

	t.Run("Storage Failure Still Accepts", func(t *testing.T) {
		repo := &mocks.MockPageViewRepository{Err: errors.New("redis down")}
		h := NewBeaconHandler(repo, logger, nil)

		mux := http.NewServeMux()
		mux.Handle("GET /beacon/{siteID}", h)

		req := httptest.NewRequest(http.MethodGet, "/beacon/site_123", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)

		if rr.Code != http.StatusAccepted {
			t.Errorf("status = %d, want 202 even when recording fails", rr.Code)
		}
	})
}
