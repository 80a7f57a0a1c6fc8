package storage

import (
	"context"
	"sync"
)

// Object is a stored blob held by MemoryStore.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps objects in memory. It backs dry runs and tests.
type MemoryStore struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]Object
	puts    int
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://harvest"
	}
	return &MemoryStore{BaseURL: baseURL, objects: make(map[string]Object)}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	m.puts++
	return m.BaseURL + "/" + escapeKey(key), nil
}

// Get returns the object stored under key.
func (m *MemoryStore) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}

// Keys returns the number of distinct keys stored.
func (m *MemoryStore) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Puts returns how many Put calls succeeded, overwrites included.
func (m *MemoryStore) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
