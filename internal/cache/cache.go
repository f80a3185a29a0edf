package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Store is the cache surface the aggregator depends on. Load reports a hit;
// misses, corrupt entries and expired entries all look the same to callers.
type Store interface {
	Load(key string, out any) bool
	Save(key string, v any) error
}

// Key derives a stable cache key from a normalized query and a scope
// discriminator (feed-set identifier or date-range string).
func Key(query, scope string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")
	h := sha256.New()
	h.Write([]byte(normalized + "|" + scope))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
