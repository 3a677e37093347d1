package session

import (
	"sync"
	"time"
)

// Store is a thread-safe in-memory page registry with TTL eviction.
type Store struct {
	mu    sync.Mutex
	pages map[string]*Page
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		pages: make(map[string]*Page),
		ttl:   ttl,
	}
}

func (s *Store) Put(p *Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[p.ID] = p
}

func (s *Store) Get(id string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[id]
}

// Delete removes a page and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pages[id]
	delete(s.pages, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Cleanup removes expired pages and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for id, p := range s.pages {
		if now.Sub(p.UpdatedAt()) > s.ttl {
			delete(s.pages, id)
			n++
		}
	}
	return n
}
