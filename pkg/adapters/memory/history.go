package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/architect/pkg/domain"
)

// HistoryStore implements ports.HistoryStore in memory.
// It is meant for tests and throwaway demos: nothing survives a restart.
type HistoryStore struct {
	mu     sync.RWMutex
	nextID uint64
	byUser map[string][]domain.HistoryRecord // Oldest first
	now    func() time.Time
}

// HistoryOption configures the HistoryStore.
type HistoryOption func(*HistoryStore)

// WithClock overrides the time source for CreatedAt.
func WithClock(now func() time.Time) HistoryOption {
	return func(s *HistoryStore) {
		s.now = now
	}
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore(opts ...HistoryOption) *HistoryStore {
	s := &HistoryStore{
		byUser: make(map[string][]domain.HistoryRecord),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores a new record with the next global ID.
func (s *HistoryStore) Append(ctx context.Context, userID, displayName, prompt string) (domain.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec := domain.HistoryRecord{
		ID:          s.nextID,
		UserID:      userID,
		DisplayName: displayName,
		Prompt:      prompt,
		CreatedAt:   s.now().UTC(),
	}
	s.byUser[userID] = append(s.byUser[userID], rec)
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (s *HistoryStore) Recent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		return []domain.HistoryRecord{}, nil
	}
	return s.newestFirst(userID, limit), nil
}

// All returns every record, newest first.
func (s *HistoryStore) All(ctx context.Context, userID string) ([]domain.HistoryRecord, error) {
	return s.newestFirst(userID, -1), nil
}

func (s *HistoryStore) newestFirst(userID string, limit int) []domain.HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byUser[userID]
	n := len(records)
	if limit >= 0 && limit < n {
		n = limit
	}
	out := make([]domain.HistoryRecord, 0, n)
	for i := len(records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, records[i])
	}
	return out
}
