package ports

import (
	"context"

	"github.com/aretw0/architect/pkg/domain"
)

// Wizard is the surface the core exposes to transport adapters (HTTP, MCP, terminal).
type Wizard interface {
	// BeginSession starts (or restarts) the wizard for an authorized user.
	BeginSession(ctx context.Context, userID string) (domain.Outcome, error)

	// SubmitChoice records value for step. When it completes the wizard the outcome
	// carries the composed prompt.
	SubmitChoice(ctx context.Context, userID, displayName, step, value string) (domain.Outcome, error)

	// Cancel abandons the wizard of the user.
	Cancel(ctx context.Context, userID string) error

	// Options lists the menu of a step.
	Options(step string) ([]domain.Option, error)

	// ListRecent returns up to limit records of the user, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error)

	// ExportAll renders the whole history of the user. Fails with domain.ErrNoHistory when empty.
	ExportAll(ctx context.Context, userID string) ([]byte, error)
}
