package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.AppPort)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("expected default token ttl 24h, got %v", cfg.JWTTTL)
	}
	if cfg.EnrichWorkers != 2 || cfg.EnrichQueueSize != 64 {
		t.Fatalf("unexpected enrichment defaults: workers=%d queue=%d", cfg.EnrichWorkers, cfg.EnrichQueueSize)
	}
	if cfg.ObjectStore.Bucket != "" {
		t.Fatalf("object store must default to disabled, got %q", cfg.ObjectStore.Bucket)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REELPOINT_PORT", "9999")
	t.Setenv("REELPOINT_LOG_LEVEL", "debug")
	t.Setenv("REELPOINT_JWT_TTL", "30m")
	t.Setenv("REELPOINT_ENRICH_WORKERS", "8")
	t.Setenv("REELPOINT_S3_BUCKET", "thumbs")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9999 || cfg.LogLevel != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.JWTTTL != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %v", cfg.JWTTTL)
	}
	if cfg.EnrichWorkers != 8 || cfg.ObjectStore.Bucket != "thumbs" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("REELPOINT_PORT", "not-a-number")
	t.Setenv("REELPOINT_JWT_TTL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 || cfg.JWTTTL != 24*time.Hour {
		t.Fatalf("malformed values must fall back to defaults, got %+v", cfg)
	}
}
