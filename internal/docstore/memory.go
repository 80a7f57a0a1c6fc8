package docstore

import (
	"context"
	"sync"

	"seoul-news-harvester/internal/models"
)

// MemoryStore keeps articles in a map. It backs dry runs and tests.
type MemoryStore struct {
	mu       sync.Mutex
	articles map[string]models.Article
	writes   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[string]models.Article)}
}

func (m *MemoryStore) PutArticle(_ context.Context, a models.Article) error {
	if a.ID == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[a.ID] = a
	m.writes++
	return nil
}

// Get returns the record stored for id.
func (m *MemoryStore) Get(id string) (models.Article, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	return a, ok
}

// Writes counts PutArticle calls, overwrites included.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
