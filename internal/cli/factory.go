package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/config"
	"github.com/aretw0/architect/pkg/access"
	"github.com/aretw0/architect/pkg/adapters/file"
	"github.com/aretw0/architect/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/architect/pkg/adapters/redis"
	"github.com/aretw0/architect/pkg/adapters/sqlite"
	"github.com/aretw0/architect/pkg/broadcast"
	"github.com/aretw0/architect/pkg/observability"
	"github.com/aretw0/architect/pkg/persistence/middleware"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// App is a fully wired engine plus the resources that must be released with it.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Engine   *architect.Engine
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	closers []func() error
}

// Close releases databases and connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Build wires the engine described by cfg. Startup failures (missing catalog,
// missing whitelist, unreachable redis) are returned as errors.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = observability.NewMetrics(app.Registry)

	opts := []architect.Option{
		architect.WithLogger(logger),
		architect.WithLifecycleHooks(observability.Chain(app.Metrics.Hooks(), DebugHooks(logger))),
		architect.WithBroadcastConcurrency(cfg.Broadcast.Concurrency),
	}

	var client *redis.Client
	if cfg.UsesRedis() {
		client = redisAdapter.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		app.closers = append(app.closers, client.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Redis.Addr, err)
		}
	}
	prefix := cfg.Redis.Prefix

	var sessions ports.SessionStore
	switch cfg.Session.Backend {
	case config.BackendFile:
		sessions = file.NewSessionStore(cfg.Session.Dir)
	case config.BackendRedis:
		sessions = redisAdapter.NewSessionStore(client,
			redisAdapter.WithPrefix(prefix+"session:"),
			redisAdapter.WithTTL(cfg.Session.TTL),
		)
		if cfg.Session.Lock {
			opts = append(opts,
				architect.WithLocker(redisAdapter.NewLocker(client, prefix)),
				architect.WithLockTTL(cfg.Session.LockTTL),
			)
		}
	default:
		sessions = memory.NewSessionStore()
	}
	if cfg.Session.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.Session.EncryptionKey, cfg.Session.FallbackKeys)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("session encryption: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		sessions = middleware.Chain(sessions, mw)
		logger.Debug("Session selections are encrypted at rest", "fallback_keys", len(keys.FallbackKeys))
	}
	opts = append(opts, architect.WithSessionStore(sessions))

	switch cfg.History.Backend {
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.History.Path)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		app.closers = append(app.closers, store.Close)
		opts = append(opts, architect.WithHistoryStore(store))
	case config.BackendRedis:
		opts = append(opts, architect.WithHistoryStore(redisAdapter.NewHistoryStore(client,
			redisAdapter.WithHistoryPrefix(prefix+"history:"),
		)))
	default:
		logger.Warn("History is kept in memory and will be lost on exit")
		opts = append(opts, architect.WithHistoryStore(memory.NewHistoryStore()))
	}

	var gate ports.AccessGate = access.AllowAll{}
	if cfg.Access.Backend == config.BackendFile {
		g, err := access.Load(cfg.Access.Whitelist)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		gate = g
	} else {
		logger.Warn("Access gate disabled: every user is authorized")
	}
	opts = append(opts, architect.WithAccessGate(gate))

	if cfg.Broadcast.Notifier == config.BackendRedis {
		opts = append(opts, architect.WithNotifier(redisAdapter.NewNotifier(client, prefix)))
	} else {
		opts = append(opts, architect.WithNotifier(broadcast.LogNotifier{Logger: logger}))
	}

	eng, err := architect.New(cfg.CatalogDir, opts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Engine = eng
	return app, nil
}
