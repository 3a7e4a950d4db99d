package architect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/internal/runtime"
	"github.com/aretw0/architect/pkg/access"
	"github.com/aretw0/architect/pkg/adapters/memory"
	"github.com/aretw0/architect/pkg/broadcast"
	"github.com/aretw0/architect/pkg/catalog"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/history"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/aretw0/architect/pkg/session"
)

// Engine is the entry point used by every transport. It wraps the wizard
// and the collaborators around it behind plain function calls.
type Engine struct {
	wizard   *runtime.Wizard
	sessions *session.Manager
	catalog  *catalog.Catalog

	sessionStore ports.SessionStore
	locker       ports.DistributedLocker
	lockTTL      time.Duration
	history      ports.HistoryStore
	gate         ports.AccessGate
	notifier     ports.Notifier
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	concurrency  int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger for the engine and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCatalog injects an already loaded catalog, bypassing the directory loader.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(e *Engine) {
		e.catalog = cat
	}
}

// WithSessionStore sets where in-progress sessions live (default: process memory).
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.sessionStore = store
	}
}

// WithLocker enables cross-process locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL bounds how long a crashed holder keeps the distributed lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithHistoryStore sets the durable prompt history (default: process memory).
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(e *Engine) {
		e.history = store
	}
}

// WithAccessGate sets the gate consulted by BeginSession (default: access.AllowAll).
func WithAccessGate(gate ports.AccessGate) Option {
	return func(e *Engine) {
		e.gate = gate
	}
}

// WithNotifier sets how broadcasts reach users (default: a broadcast.LogNotifier).
func WithNotifier(n ports.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithBroadcastConcurrency bounds parallel broadcast deliveries.
func WithBroadcastConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// New initializes an Engine reading the catalog from catalogDir.
// If WithCatalog is provided, catalogDir may be empty.
func New(catalogDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.catalog == nil {
		if catalogDir == "" {
			return nil, fmt.Errorf("catalogDir is required when no catalog is provided")
		}
		cat, err := catalog.Load(catalogDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		eng.catalog = cat
	} else if err := eng.catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	if eng.sessionStore == nil {
		eng.sessionStore = memory.NewSessionStore()
	}
	if eng.history == nil {
		eng.history = memory.NewHistoryStore()
	}
	if eng.gate == nil {
		eng.gate = access.AllowAll{}
	}
	if eng.notifier == nil {
		eng.notifier = broadcast.LogNotifier{Logger: eng.logger}
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker), session.WithLockTTL(eng.lockTTL))
	}
	eng.sessions = session.NewManager(eng.sessionStore, sessionOpts...)

	eng.wizard = runtime.NewWizard(eng.sessions, eng.catalog, eng.history,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Catalog returns the loaded catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// BeginSession starts (or restarts) the wizard for userID.
// Unauthorized users get domain.ErrAccessDenied and nothing is stored.
func (e *Engine) BeginSession(ctx context.Context, userID string) (domain.Outcome, error) {
	if !e.gate.IsAuthorized(ctx, userID) {
		e.logger.Info("access denied", "user_id", userID)
		return domain.Outcome{}, domain.ErrAccessDenied
	}
	return e.wizard.Begin(ctx, userID)
}

// SubmitChoice records value for the named step. displayName is stored
// verbatim on the history record when this choice completes the wizard.
func (e *Engine) SubmitChoice(ctx context.Context, userID, displayName, step, value string) (domain.Outcome, error) {
	return e.wizard.Submit(ctx, userID, displayName, domain.Step(step), value)
}

// Cancel abandons the wizard for userID.
func (e *Engine) Cancel(ctx context.Context, userID string) error {
	return e.wizard.Cancel(ctx, userID)
}

// Current reports where userID stands in the wizard.
func (e *Engine) Current(ctx context.Context, userID string) (domain.State, error) {
	return e.wizard.Current(ctx, userID)
}

// ActiveSessions lists the users with a wizard in progress.
func (e *Engine) ActiveSessions(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Options lists the menu of the named step.
func (e *Engine) Options(step string) ([]domain.Option, error) {
	return e.wizard.Options(domain.Step(step))
}

// ListRecent returns up to limit prompts of userID, newest first.
func (e *Engine) ListRecent(ctx context.Context, userID string, limit int) ([]domain.HistoryRecord, error) {
	return e.history.Recent(ctx, userID, limit)
}

// ExportAll renders the whole history of userID as a text document.
// It fails with domain.ErrNoHistory when there is nothing to export.
func (e *Engine) ExportAll(ctx context.Context, userID string) ([]byte, error) {
	return history.Export(ctx, e.history, userID)
}

// WriteExport writes the export of userID into dir and returns the file path.
func (e *Engine) WriteExport(ctx context.Context, userID, dir string) (string, error) {
	return history.WriteExport(ctx, e.history, userID, dir)
}

// Broadcast sends text to every allowed user. Only admins may broadcast.
func (e *Engine) Broadcast(ctx context.Context, adminID, text string) (broadcast.Report, error) {
	admin, err := e.admin(ctx, adminID)
	if err != nil {
		return broadcast.Report{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return broadcast.Report{}, broadcast.ErrEmptyMessage
	}

	recipients, _ := admin.Members(ctx)
	report := broadcast.Send(ctx, e.notifier, recipients, text,
		broadcast.WithConcurrency(e.concurrency),
		broadcast.WithLifecycleHooks(e.hooks),
		broadcast.WithLogger(e.logger),
	)
	e.logger.Info("broadcast finished", "user_id", adminID, "sent", len(report.Sent), "failed", len(report.Failed))
	return report, nil
}

// Grant authorizes userID. Only admins may grant.
func (e *Engine) Grant(ctx context.Context, adminID, userID string) error {
	admin, err := e.admin(ctx, adminID)
	if err != nil {
		return err
	}
	return admin.Grant(ctx, userID)
}

// Revoke removes the authorization of userID. Only admins may revoke.
func (e *Engine) Revoke(ctx context.Context, adminID, userID string) error {
	admin, err := e.admin(ctx, adminID)
	if err != nil {
		return err
	}
	return admin.Revoke(ctx, userID)
}

// Members lists allowed users and admins. Only admins may list.
func (e *Engine) Members(ctx context.Context, adminID string) (allowed, admins []string, err error) {
	admin, err := e.admin(ctx, adminID)
	if err != nil {
		return nil, nil, err
	}
	allowed, admins = admin.Members(ctx)
	return allowed, admins, nil
}

// admin returns the administrable gate when adminID is one of its admins.
func (e *Engine) admin(ctx context.Context, adminID string) (ports.AccessAdmin, error) {
	admin, ok := e.gate.(ports.AccessAdmin)
	if !ok || !admin.IsAdmin(ctx, adminID) {
		return nil, domain.ErrAccessDenied
	}
	return admin, nil
}
