package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/catalog"
	"github.com/aretw0/architect/pkg/compose"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/aretw0/architect/pkg/session"
)

// Wizard runs the platform → clutter sequence for each user.
type Wizard struct {
	sessions *session.Manager
	catalog  *catalog.Catalog
	history  ports.HistoryStore
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps and session updates.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		w.now = now
	}
}

// NewWizard creates a wizard. The catalog must already be validated.
func NewWizard(sessions *session.Manager, cat *catalog.Catalog, history ports.HistoryStore, opts ...Option) *Wizard {
	w := &Wizard{
		sessions: sessions,
		catalog:  cat,
		history:  history,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Begin discards any session of userID and starts a fresh one.
func (w *Wizard) Begin(ctx context.Context, userID string) (domain.Outcome, error) {
	err := w.sessions.WithLock(ctx, userID, func(ctx context.Context) error {
		_, err := w.sessions.StartLocked(ctx, userID)
		return err
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	w.logger.Debug("session started", "user_id", userID)
	if w.hooks.OnSessionBegin != nil {
		w.hooks.OnSessionBegin(ctx, &domain.EventBase{
			Timestamp: w.now(),
			Type:      domain.EventSessionBegin,
			UserID:    userID,
		})
	}
	return w.outcomeFor(domain.StateAwaitingPlatform), nil
}

// Restart is Begin under the name the chat transports expose.
func (w *Wizard) Restart(ctx context.Context, userID string) (domain.Outcome, error) {
	return w.Begin(ctx, userID)
}

// Submit records value for step. A rejected submission leaves the session untouched.
// The final step composes the prompt, appends it to history and clears the session.
func (w *Wizard) Submit(ctx context.Context, userID, displayName string, step domain.Step, value string) (domain.Outcome, error) {
	var out domain.Outcome
	err := w.sessions.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		out, err = w.submitLocked(ctx, userID, displayName, step, value)
		return err
	})

	if w.hooks.OnStep != nil {
		w.hooks.OnStep(ctx, &domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: w.now(), Type: domain.EventStep, UserID: userID},
			Step:      step,
			Value:     value,
			Next:      out.State,
			Err:       err,
		})
	}
	if err != nil {
		return domain.Outcome{}, err
	}
	return out, nil
}

func (w *Wizard) submitLocked(ctx context.Context, userID, displayName string, step domain.Step, value string) (domain.Outcome, error) {
	s, err := w.sessions.LoadLocked(ctx, userID)
	if err != nil {
		return domain.Outcome{}, err
	}

	pending := s.Pending()
	if step.State() != pending {
		return domain.Outcome{}, fmt.Errorf("%w: expected %s, got %q", domain.ErrStepMismatch, pending, step)
	}
	if !w.accepts(step, value) {
		return domain.Outcome{}, fmt.Errorf("%w: %q is not a valid %s", domain.ErrUnknownOption, value, step)
	}
	if err := s.Set(step, value, w.now()); err != nil {
		return domain.Outcome{}, err
	}

	if !s.Complete() {
		if err := w.sessions.SaveLocked(ctx, s); err != nil {
			return domain.Outcome{}, err
		}
		return w.outcomeFor(s.Pending()), nil
	}

	return w.finishLocked(ctx, s, displayName)
}

// finishLocked composes the prompt of a complete session and ends it.
func (w *Wizard) finishLocked(ctx context.Context, s *domain.Session, displayName string) (domain.Outcome, error) {
	userID := s.UserID
	prompt, err := compose.Compose(w.catalog, s)
	if err != nil {
		w.logger.Error("failed to compose prompt", "user_id", userID, "err", err)
		if clearErr := w.sessions.ClearLocked(ctx, userID); clearErr != nil {
			w.logger.Warn("failed to clear session", "user_id", userID, "err", clearErr)
		}
		w.emitCompose(ctx, s, 0, err)
		if !errors.Is(err, domain.ErrInvariantViolation) {
			err = fmt.Errorf("%w: %v", domain.ErrInvariantViolation, err)
		}
		return domain.Outcome{}, err
	}

	rec, appendErr := w.history.Append(ctx, userID, displayName, prompt)
	if clearErr := w.sessions.ClearLocked(ctx, userID); clearErr != nil {
		w.logger.Warn("failed to clear session", "user_id", userID, "err", clearErr)
	}
	if appendErr != nil {
		w.emitCompose(ctx, s, 0, appendErr)
		return domain.Outcome{}, fmt.Errorf("failed to record prompt: %w", appendErr)
	}

	w.logger.Info("prompt composed", "user_id", userID, "record_id", rec.ID)
	w.emitCompose(ctx, s, rec.ID, nil)
	return domain.Outcome{State: domain.StateIdle, Prompt: prompt, Record: &rec}, nil
}

// Cancel drops the session of userID. Cancelling without a session is not an error.
func (w *Wizard) Cancel(ctx context.Context, userID string) error {
	return w.sessions.Clear(ctx, userID)
}

// Current returns the state of userID, StateIdle when no session exists.
func (w *Wizard) Current(ctx context.Context, userID string) (domain.State, error) {
	s, err := w.sessions.Load(ctx, userID)
	if errors.Is(err, domain.ErrNoActiveSession) {
		return domain.StateIdle, nil
	}
	if err != nil {
		return domain.StateIdle, err
	}
	return s.Pending(), nil
}

// Options returns the menu for step in display order.
func (w *Wizard) Options(step domain.Step) ([]domain.Option, error) {
	switch step {
	case domain.StepPlatform:
		opts := make([]domain.Option, len(domain.Platforms))
		for i, p := range domain.Platforms {
			opts[i] = domain.Option{Key: string(p)}
		}
		return opts, nil
	case domain.StepInterior, domain.StepPhotographer, domain.StepLighting:
		entries := w.catalog.SetFor(step).Entries()
		opts := make([]domain.Option, len(entries))
		for i, e := range entries {
			opts[i] = domain.Option{Key: e.Key, Description: e.Text}
		}
		return opts, nil
	case domain.StepAngle:
		opts := make([]domain.Option, len(domain.Angles))
		for i, a := range domain.Angles {
			opts[i] = domain.Option{Key: a}
		}
		return opts, nil
	case domain.StepClutter:
		opts := make([]domain.Option, len(domain.ClutterLevels))
		for i, c := range domain.ClutterLevels {
			text, _ := w.catalog.Clutter.Lookup(c)
			opts[i] = domain.Option{Key: c, Description: text}
		}
		return opts, nil
	}
	return nil, fmt.Errorf("%w: unknown step %q", domain.ErrStepMismatch, step)
}

// accepts reports whether value belongs to the vocabulary of step.
func (w *Wizard) accepts(step domain.Step, value string) bool {
	switch step {
	case domain.StepPlatform:
		return domain.IsPlatform(value)
	case domain.StepInterior, domain.StepPhotographer, domain.StepLighting:
		return w.catalog.SetFor(step).Has(value)
	case domain.StepAngle:
		return domain.IsAngle(value)
	case domain.StepClutter:
		return domain.IsClutter(value)
	}
	return false
}

func (w *Wizard) outcomeFor(state domain.State) domain.Outcome {
	out := domain.Outcome{State: state}
	if step, ok := state.Step(); ok {
		out.Options, _ = w.Options(step)
	}
	return out
}

func (w *Wizard) emitCompose(ctx context.Context, s *domain.Session, recordID uint64, err error) {
	if w.hooks.OnCompose == nil {
		return
	}
	w.hooks.OnCompose(ctx, &domain.ComposeEvent{
		EventBase: domain.EventBase{Timestamp: w.now(), Type: domain.EventCompose, UserID: s.UserID},
		Platform:  s.Platform,
		RecordID:  recordID,
		Err:       err,
	})
}
