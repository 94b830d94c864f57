package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nortavo/dispatch/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GoogleClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGoogleClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
}

func TestEstimateConvertsUnits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q, want test-key", got)
		}
		if r.URL.Query().Get("origins") == "" || r.URL.Query().Get("destinations") == "" {
			t.Error("origins/destinations missing from query")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"rows": [{"elements": [{"status": "OK", "distance": {"value": 12500}, "duration": {"value": 1800}}]}]
		}`))
	})

	estimate, err := client.Estimate(context.Background(),
		domain.GeoPoint{Lat: 40.7128, Lng: -74.0060},
		domain.GeoPoint{Lat: 40.7580, Lng: -73.9855},
	)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	if estimate.DistanceKm != 12.5 {
		t.Errorf("distance = %v km, want 12.5", estimate.DistanceKm)
	}
	if estimate.DurationMinutes != 30 {
		t.Errorf("duration = %v min, want 30", estimate.DurationMinutes)
	}
}

func TestEstimateNoRoute(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]}`))
	})

	if _, err := client.Estimate(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}); err == nil {
		t.Fatal("expected an error for ZERO_RESULTS")
	}
}

func TestEstimateServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.Estimate(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}); err == nil {
		t.Fatal("expected an error for HTTP 500")
	}
}

func TestEstimateEmptyRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "INVALID_REQUEST", "rows": []}`))
	})

	if _, err := client.Estimate(context.Background(), domain.GeoPoint{}, domain.GeoPoint{}); err == nil {
		t.Fatal("expected an error for an empty matrix")
	}
}
