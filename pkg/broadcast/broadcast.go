// Package broadcast delivers an admin announcement to every authorized user.
package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/architect/internal/logging"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Prefix marks announcements in the recipient's chat.
const Prefix = "📢 "

// ErrEmptyMessage rejects announcements without text.
var ErrEmptyMessage = errors.New("broadcast message is empty")

// DefaultConcurrency bounds parallel deliveries.
const DefaultConcurrency = 8

// Report summarizes a broadcast. Failed maps recipients to their delivery error.
type Report struct {
	Sent   []string         `json:"sent"`
	Failed map[string]error `json:"-"`
}

// Total is the number of recipients attempted.
func (r Report) Total() int {
	return len(r.Sent) + len(r.Failed)
}

type config struct {
	limit  int
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures Send.
type Option func(*config)

// WithConcurrency sets how many deliveries run at once.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithLifecycleHooks reports every delivery through OnDelivery.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLogger sets the logger used for failed deliveries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Send delivers Prefix+text to each recipient. A failed delivery is recorded
// in the report and never stops the others. Duplicate recipients get one message.
func Send(ctx context.Context, notifier ports.Notifier, recipients []string, text string, opts ...Option) Report {
	cfg := config{limit: DefaultConcurrency, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	message := Prefix + text
	report := Report{Failed: make(map[string]error)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(cfg.limit)

	seen := make(map[string]struct{}, len(recipients))
	for _, userID := range recipients {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}

		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = notifier.Notify(ctx, userID, message)
			}

			mu.Lock()
			if err != nil {
				report.Failed[userID] = err
			} else {
				report.Sent = append(report.Sent, userID)
			}
			mu.Unlock()

			if err != nil {
				cfg.logger.Warn("broadcast delivery failed", "user_id", userID, "err", err)
			}
			if cfg.hooks.OnDelivery != nil {
				cfg.hooks.OnDelivery(ctx, &domain.DeliveryEvent{
					EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDelivery, UserID: userID},
					Err:       err,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	return report
}

// LogNotifier writes notifications to a logger. It stands in for a chat
// transport in development and in the CLI.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs text at info level.
func (n LogNotifier) Notify(ctx context.Context, userID, text string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification", "user_id", userID, "text", text)
	return nil
}
