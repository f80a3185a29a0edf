package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestKeyStability(t *testing.T) {
	a := Key("Elon Musk", "scope")
	b := Key("  elon   MUSK ", "scope")
	if a != b {
		t.Errorf("normalized queries should share a key: %q vs %q", a, b)
	}
	if Key("Elon Musk", "other") == a {
		t.Error("different scopes must produce different keys")
	}
	if len(a) != 16 {
		t.Errorf("key length = %d, want 16", len(a))
	}
}

func TestDiskRoundTrip(t *testing.T) {
	d, err := NewDisk(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	in := payload{Name: "test", Count: 3}
	if err := d.Save("k1", in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var out payload
	if !d.Load("k1", &out) {
		t.Fatal("Load reported a miss for a saved key")
	}
	if out != in {
		t.Errorf("Load = %+v, want %+v", out, in)
	}
}

func TestDiskMiss(t *testing.T) {
	d, err := NewDisk(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	var out payload
	if d.Load("missing", &out) {
		t.Error("Load reported a hit for a key never saved")
	}
}

func TestDiskExpiry(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	if err := d.Save("k1", payload{Name: "old"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// age the file past the TTL
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "k1.json"), old, old); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	var out payload
	if d.Load("k1", &out) {
		t.Error("Load reported a hit for an expired entry")
	}
}

func TestDiskCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	var out payload
	if d.Load("bad", &out) {
		t.Error("corrupt entry must read as a miss")
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory(time.Hour)
	if err := m.Save("k", payload{Name: "mem", Count: 1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	var out payload
	if !m.Load("k", &out) {
		t.Fatal("Load reported a miss for a saved key")
	}
	if out.Name != "mem" {
		t.Errorf("Load = %+v", out)
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(time.Millisecond)
	if err := m.Save("k", payload{Name: "gone"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	var out payload
	if m.Load("k", &out) {
		t.Error("Load reported a hit for an expired entry")
	}
}
