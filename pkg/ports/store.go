package ports

import (
	"context"

	"github.com/aretw0/architect/pkg/domain"
)

// SessionStore defines the interface for persisting in-progress wizard sessions.
// Sessions are scratch data: a backend is not required to survive a restart.
type SessionStore interface {
	// Save persists the session for a given user ID, replacing any previous one.
	Save(ctx context.Context, userID string, session *domain.Session) error

	// Load retrieves the session for a given user ID.
	// Returns domain.ErrSessionNotFound if the user has no session.
	Load(ctx context.Context, userID string) (*domain.Session, error)

	// Delete removes the session for a given user ID. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID string) error

	// List returns the IDs of users with a live session.
	List(ctx context.Context) ([]string, error)
}

// HistoryStore defines the append-only store of composed prompts.
type HistoryStore interface {
	// Append assigns a fresh ID and creation time and persists the record durably
	// before returning. The record is visible to reads issued after Append returns.
	Append(ctx context.Context, userID, displayName, prompt string) (domain.HistoryRecord, error)

	// Recent returns up to limit records of userID, newest first.
	// A user without records yields an empty slice, not an error.
	Recent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error)

	// All returns every record of userID, newest first.
	All(ctx context.Context, userID string) ([]domain.HistoryRecord, error)
}
