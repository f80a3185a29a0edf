package feeds

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - url: https://example.com/rss
  - url: https://other.example.com/feed.xml
    active: false
`)

	sources, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].URL != "https://example.com/rss" {
		t.Errorf("sources[0].URL = %q", sources[0].URL)
	}
	if !sources[0].IsActive() {
		t.Error("feed without active flag should default to active")
	}
	if sources[1].IsActive() {
		t.Error("feed with active: false must be inactive")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "feeds: [url: {")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
