package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/logger"
)

// Disk is a content-addressed JSON file cache with lazy TTL invalidation.
// One file per key; an entry older than the TTL is treated as absent but
// never eagerly deleted. No negative caching: callers only save successful
// aggregations.
type Disk struct {
	dir string
	ttl time.Duration
}

// NewDisk creates the cache directory if needed. A directory that cannot be
// created is the one unrecoverable environment problem this package reports.
func NewDisk(dir string, ttl time.Duration) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &Disk{dir: dir, ttl: ttl}, nil
}

// Load reads a cached value into out. Missing files, stale files and
// unreadable JSON are all reported as a miss.
func (d *Disk) Load(key string, out any) bool {
	path := d.path(key)

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > d.ttl {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("cache read failed", "path", path, "error", err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("cache entry corrupt", "path", path, "error", err)
		return false
	}
	return true
}

// Save writes the value as indented JSON. Write errors are returned so the
// caller can log them, but aggregation results are never lost over them.
func (d *Disk) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(d.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (d *Disk) path(key string) string {
	return filepath.Join(d.dir, key+".json")
}
