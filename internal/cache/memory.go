package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process Store with the same lazy-expiry semantics as Disk.
// The server uses it as a hot layer; tests use it to avoid the filesystem.
type Memory struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memoryItem
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:   ttl,
		items: make(map[string]memoryItem),
	}
}

func (m *Memory) Load(key string, out any) bool {
	m.mu.RLock()
	item, exists := m.items[key]
	m.mu.RUnlock()

	if !exists {
		return false
	}
	if time.Now().After(item.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return false
	}
	return json.Unmarshal(item.data, out) == nil
}

func (m *Memory) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{
		data:      data,
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}
