package facts

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemStore is an in-process Store used by tests and by deployments that
// do not persist knowledge across restarts.
type MemStore struct {
	mu    sync.Mutex
	byKey map[string][]Fact
	seq   int
}

func NewMemStore() *MemStore {
	return &MemStore{byKey: make(map[string][]Fact)}
}

func (s *MemStore) Append(ctx context.Context, fact Fact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if fact.ID == "" {
		fact.ID = fmt.Sprintf("fact-%d", s.seq)
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now()
	}
	s.byKey[fact.Interlocutor] = append(s.byKey[fact.Interlocutor], fact)
	return nil
}

func (s *MemStore) Enumerate(ctx context.Context, interlocutor string) ([]Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byKey[interlocutor]
	out := make([]Fact, len(list))
	copy(out, list)
	return out, nil
}
