package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("client-a") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}

	if rl.Allow("client-a") {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestAllowIsPerSource(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	if !rl.Allow("client-a") {
		t.Fatal("first request for client-a denied")
	}
	if !rl.Allow("client-b") {
		t.Fatal("client-b should have its own bucket")
	}
}

func TestRefillRestoresTokens(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1000, MaxBurst: 1})

	if !rl.Allow("client-a") {
		t.Fatal("first request denied")
	}
	if rl.Allow("client-a") {
		t.Fatal("bucket should be empty")
	}

	// At 1000 tokens/s one token returns within a few milliseconds.
	time.Sleep(10 * time.Millisecond)

	if !rl.Allow("client-a") {
		t.Fatal("bucket did not refill")
	}
}

func TestRemaining(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	if got := rl.Remaining("client-a"); got != 5 {
		t.Fatalf("fresh bucket remaining = %d, want 5", got)
	}

	rl.Allow("client-a")
	rl.Allow("client-a")

	if got := rl.Remaining("client-a"); got != 3 {
		t.Fatalf("remaining after two requests = %d, want 3", got)
	}
}

func TestGetSourceKey(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := rl.GetSourceKey(r); got != "10.0.0.1:1234" {
		t.Errorf("source without header = %q, want remote addr", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := rl.GetSourceKey(r); got != "203.0.113.9" {
		t.Errorf("source with header = %q, want header value", got)
	}
}
