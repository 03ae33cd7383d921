package drafts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ambi360/ambi360-backend/internal/tours/domain"
)

type memoryEntry struct {
	draft   Draft
	expires time.Time
}

// MemoryStore keeps drafts in process memory. Drafts are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]memoryEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{drafts: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) live(id string) (memoryEntry, bool) {
	e, ok := s.drafts[id]
	if !ok {
		return memoryEntry{}, false
	}
	if s.ttl > 0 && !s.now().Before(e.expires) {
		delete(s.drafts, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return nil, fmt.Errorf("draft %q: %w", id, domain.ErrNotFound)
	}
	d := e.draft
	d.Session.Points = append(d.Session.Points[:0:0], d.Session.Points...)
	return &d, nil
}

func (s *MemoryStore) Save(_ context.Context, d *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	cp.Session.Points = append(d.Session.Points[:0:0], d.Session.Points...)
	s.drafts[d.ID] = memoryEntry{draft: cp, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(id); !ok {
		return fmt.Errorf("draft %q: %w", id, domain.ErrNotFound)
	}
	delete(s.drafts, id)
	return nil
}

func (s *MemoryStore) List(context.Context) ([]Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Draft, 0, len(s.drafts))
	for id := range s.drafts {
		if e, ok := s.live(id); ok {
			out = append(out, e.draft)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
