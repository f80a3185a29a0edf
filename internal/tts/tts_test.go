package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ziadbensaada/PersonaTracker/internal/retry"
)

func TestSplitChunksShortText(t *testing.T) {
	chunks := SplitChunks("hello world", 200)
	if len(chunks) != 1 || chunks[0] != "hello world" {
		t.Errorf("SplitChunks = %v", chunks)
	}
}

func TestSplitChunksRespectsLimit(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks := SplitChunks(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 50 {
			t.Errorf("chunk %d has %d runes, want <= 50", i, n)
		}
		if strings.HasPrefix(c, " ") || strings.HasSuffix(c, " ") {
			t.Errorf("chunk %d has surrounding whitespace: %q", i, c)
		}
	}
	if joined := strings.Join(chunks, " "); joined != strings.TrimSpace(text) {
		t.Error("chunks do not reassemble into the original text")
	}
}

func TestSplitChunksLongWord(t *testing.T) {
	long := strings.Repeat("x", 80)
	chunks := SplitChunks("start "+long+" end", 50)
	found := false
	for _, c := range chunks {
		if c == long {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized word should become its own chunk: %v", chunks)
	}
}

func TestSplitChunksEmpty(t *testing.T) {
	if chunks := SplitChunks("   ", 50); len(chunks) != 0 {
		t.Errorf("SplitChunks = %v, want none", chunks)
	}
}

func TestSynthesize(t *testing.T) {
	var requests int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("q") == "" {
			t.Error("missing q parameter")
		}
		if r.URL.Query().Get("tl") != "en" {
			t.Errorf("tl = %q", r.URL.Query().Get("tl"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("MP3DATA"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	c, err := New(resty.New().SetTimeout(5*time.Second), dir, retry.Config{MaxAttempts: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	c.endpoint = ts.URL

	path, err := c.Synthesize(context.Background(), strings.Repeat("some words to speak ", 30), "en")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if requests < 2 {
		t.Errorf("got %d requests, want one per chunk (>= 2)", requests)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audio file: %v", err)
	}
	if len(data) != requests*len("MP3DATA") {
		t.Errorf("audio file has %d bytes, want %d", len(data), requests*len("MP3DATA"))
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	c, err := New(resty.New(), t.TempDir(), retry.Config{MaxAttempts: 1})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := c.Synthesize(context.Background(), "  ", "en"); err == nil {
		t.Error("expected error for empty text")
	}
}
