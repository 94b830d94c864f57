package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("http port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.HTTP.Host != "0.0.0.0" {
		t.Errorf("http host = %q", cfg.HTTP.Host)
	}
	if cfg.Realtime.SendBuffer != 64 {
		t.Errorf("realtime send buffer = %d, want 64", cfg.Realtime.SendBuffer)
	}
	if cfg.Realtime.WriteTimeout != 10*time.Second {
		t.Errorf("realtime write timeout = %v, want 10s", cfg.Realtime.WriteTimeout)
	}
	if cfg.RateLimiter.MaxBurst != 20 {
		t.Errorf("rate limiter burst = %d, want 20", cfg.RateLimiter.MaxBurst)
	}
	if cfg.Maps.BaseURL == "" {
		t.Error("maps base url should default to the public endpoint")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("REALTIME_SEND_BUFFER", "128")
	t.Setenv("MAPS_BASE_URL", "http://maps.internal")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 9000 {
		t.Errorf("http port = %d, want 9000", cfg.HTTP.Port)
	}
	if cfg.Realtime.SendBuffer != 128 {
		t.Errorf("realtime send buffer = %d, want 128", cfg.Realtime.SendBuffer)
	}
	if cfg.Maps.BaseURL != "http://maps.internal" {
		t.Errorf("maps base url = %q", cfg.Maps.BaseURL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "http:\n  port: 8443\nrealtime:\n  send_buffer: 32\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != 8443 {
		t.Errorf("http port = %d, want 8443", cfg.HTTP.Port)
	}
	if cfg.Realtime.SendBuffer != 32 {
		t.Errorf("realtime send buffer = %d, want 32", cfg.Realtime.SendBuffer)
	}
	// Untouched keys still fall back to defaults.
	if cfg.RateLimiter.MaxRatePerSecond != 10 {
		t.Errorf("rate limiter rate = %d, want default 10", cfg.RateLimiter.MaxRatePerSecond)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}
