package campaign

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store used by tests and local runs.
// Counter updates lock per campaign entry, never the whole store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry

	clock func() time.Time
}

type memoryEntry struct {
	mu sync.Mutex
	c  Campaign
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), clock: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Campaign, error) {
	e, err := s.entry(id)
	if err != nil {
		return Campaign{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c, nil
}

func (s *MemoryStore) Put(ctx context.Context, c Campaign) error {
	if c.ID == "" {
		return ErrNotFound
	}
	now := s.clock().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[c.ID]; ok {
		e.mu.Lock()
		e.c = c
		e.mu.Unlock()
		return nil
	}
	s.entries[c.ID] = &memoryEntry{c: c}
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, id string, d Delta) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	a := &e.c.Analytics
	a.TotalCalls += d.TotalCalls
	a.AMDDetections += d.AMDDetections
	a.HumanConnections += d.HumanConnections
	a.MessagesLeft += d.MessagesLeft
	a.CallbackSuccess += d.CallbackSuccess
	a.CulturalEngagement += d.CulturalEngagement
	e.c.UpdatedAt = s.clock().UTC()
	return nil
}

func (s *MemoryStore) GetAnalytics(ctx context.Context, id string) (Analytics, error) {
	e, err := s.entry(id)
	if err != nil {
		return Analytics{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.c.Analytics, nil
}

func (s *MemoryStore) entry(id string) (*memoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}
