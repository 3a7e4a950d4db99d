package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/architect/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(ctx context.Context, userID string, s *domain.Session) error { return nil }
func (nopStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopStore) Delete(ctx context.Context, userID string) error { return nil }
func (nopStore) List(ctx context.Context) ([]string, error)      { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		uid := fmt.Sprintf("user-%d", i)
		_, _ = mgr.Start(ctx, uid)
		_ = mgr.Clear(ctx, uid)
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Clear", lockCount)
	}
}
