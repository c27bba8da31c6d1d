package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps articles in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[int]Article
	nextID   int
}

// NewMemory returns a store holding seed.
func NewMemory(seed ...Article) *MemoryStore {
	s := &MemoryStore{articles: make(map[int]Article), nextID: 1}
	for _, a := range seed {
		s.articles[a.ID] = a
		if a.ID >= s.nextID {
			s.nextID = a.ID + 1
		}
	}
	return s
}

func (s *MemoryStore) ListArticles(_ context.Context) ([]Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetArticle(_ context.Context, id int) (Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return Article{}, ErrArticleNotFound
	}
	return a, nil
}

func (s *MemoryStore) SaveArticle(_ context.Context, a Article) (Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID
	}
	if a.ID >= s.nextID {
		s.nextID = a.ID + 1
	}
	s.articles[a.ID] = a
	return a, nil
}
