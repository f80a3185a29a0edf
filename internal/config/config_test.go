package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxEntriesPerFeed != 20 {
		t.Errorf("MaxEntriesPerFeed = %d, want 20", cfg.MaxEntriesPerFeed)
	}
	if cfg.MinContentLength != 200 {
		t.Errorf("MinContentLength = %d, want 200", cfg.MinContentLength)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", cfg.CacheTTL)
	}
	if cfg.SentimentDelay != 1500*time.Millisecond {
		t.Errorf("SentimentDelay = %v, want 1.5s", cfg.SentimentDelay)
	}
	if cfg.FeedsConfigPath == "" || cfg.CacheDir == "" || cfg.StorePath == "" {
		t.Errorf("path defaults missing: %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MAX_ARTICLES", "7")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("CHECK_IMAGE_ACCESS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxArticles != 7 {
		t.Errorf("MaxArticles = %d, want 7", cfg.MaxArticles)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if !cfg.CheckImageAccess {
		t.Error("CheckImageAccess should be true")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.MaxArticles = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero MaxArticles")
	}
}

func TestRequireGemini(t *testing.T) {
	cfg := &Config{}
	if err := cfg.RequireGemini(); err == nil {
		t.Error("expected error without an API key")
	}
	cfg.GeminiAPIKey = "key"
	if err := cfg.RequireGemini(); err != nil {
		t.Errorf("RequireGemini failed with key set: %v", err)
	}
}
