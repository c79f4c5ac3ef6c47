package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type MemoryConfig struct {
	TTL     time.Duration
	MaxSize int
}

// Stats are simple counters for diagnostics.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Saves     int64 `json:"saves"`
	Clears    int64 `json:"clears"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// MemoryStore keeps tokens in process memory. Entries expire after TTL
// measured from the last Save.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits      int64
	misses    int64
	saves     int64
	clears    int64
	evictions int64
}

type entry struct {
	token   string
	savedAt time.Time
}

func NewMemoryStore(c MemoryConfig) *MemoryStore {
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
	if c.MaxSize == 0 {
		c.MaxSize = 10000
	}
	return &MemoryStore{
		entries: make(map[string]*entry),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sid string) (string, error) {
	s.mu.RLock()
	e, ok := s.entries[sid]
	s.mu.RUnlock()
	if !ok {
		atomic.AddInt64(&s.misses, 1)
		return "", ErrNotFound
	}
	if s.now().Sub(e.savedAt) > s.ttl {
		atomic.AddInt64(&s.misses, 1)
		s.mu.Lock()
		if cur, ok := s.entries[sid]; ok && cur == e {
			delete(s.entries, sid)
		}
		s.mu.Unlock()
		return "", ErrNotFound
	}
	atomic.AddInt64(&s.hits, 1)
	return e.token, nil
}

func (s *MemoryStore) Save(_ context.Context, sid, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[sid]; !exists && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}
	s.entries[sid] = &entry{token: token, savedAt: s.now()}
	atomic.AddInt64(&s.saves, 1)
	return nil
}

// evictOldest must be called with mu held.
func (s *MemoryStore) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for k, e := range s.entries {
		if oldestKey == "" || e.savedAt.Before(oldest) {
			oldestKey, oldest = k, e.savedAt
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
		atomic.AddInt64(&s.evictions, 1)
	}
}

func (s *MemoryStore) Clear(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[sid]; ok {
		delete(s.entries, sid)
		atomic.AddInt64(&s.clears, 1)
	}
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		Saves:     atomic.LoadInt64(&s.saves),
		Clears:    atomic.LoadInt64(&s.clears),
		Evictions: atomic.LoadInt64(&s.evictions),
		Size:      s.Len(),
	}
}
