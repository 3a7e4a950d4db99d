package observability

import (
	"context"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the counters of one process.
type Metrics struct {
	SessionsStarted *prometheus.CounterVec
	Steps           *prometheus.CounterVec
	Prompts         *prometheus.CounterVec
	Deliveries      *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_sessions_started_total",
				Help: "Total number of wizard sessions started",
			},
			nil,
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_wizard_steps_total",
				Help: "Total number of submitted choices by step and result",
			},
			[]string{"step", "result"},
		),
		Prompts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_prompts_total",
				Help: "Total number of composition attempts by platform and result",
			},
			[]string{"platform", "result"},
		),
		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "architect_broadcast_deliveries_total",
				Help: "Total number of broadcast deliveries by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.SessionsStarted, m.Steps, m.Prompts, m.Deliveries)
	return m
}

// Hooks returns lifecycle hooks that update the counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionBegin: func(ctx context.Context, e *domain.EventBase) {
			m.SessionsStarted.WithLabelValues().Inc()
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			// Unknown step names would explode label cardinality.
			step := string(e.Step)
			if _, ok := domain.ParseStep(step); !ok {
				step = "unknown"
			}
			m.Steps.WithLabelValues(step, result(e.Err)).Inc()
		},
		OnCompose: func(ctx context.Context, e *domain.ComposeEvent) {
			m.Prompts.WithLabelValues(e.Platform, result(e.Err)).Inc()
		},
		OnDelivery: func(ctx context.Context, e *domain.DeliveryEvent) {
			m.Deliveries.WithLabelValues(result(e.Err)).Inc()
		},
	}
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Chain merges several hook sets; every non-nil callback runs, in argument order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		if h.OnSessionBegin != nil {
			prev, next := out.OnSessionBegin, h.OnSessionBegin
			out.OnSessionBegin = func(ctx context.Context, e *domain.EventBase) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnStep != nil {
			prev, next := out.OnStep, h.OnStep
			out.OnStep = func(ctx context.Context, e *domain.StepEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnCompose != nil {
			prev, next := out.OnCompose, h.OnCompose
			out.OnCompose = func(ctx context.Context, e *domain.ComposeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
		if h.OnDelivery != nil {
			prev, next := out.OnDelivery, h.OnDelivery
			out.OnDelivery = func(ctx context.Context, e *domain.DeliveryEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				next(ctx, e)
			}
		}
	}
	return out
}
