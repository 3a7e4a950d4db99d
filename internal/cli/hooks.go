package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/architect/pkg/domain"
)

// DebugHooks log every wizard event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionBegin: func(ctx context.Context, e *domain.EventBase) {
			logger.Debug("Session Begin", "user_id", e.UserID)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			if e.Err != nil {
				logger.Debug("Step Rejected", "user_id", e.UserID, "step", e.Step, "err", e.Err)
				return
			}
			logger.Debug("Step", "user_id", e.UserID, "step", e.Step, "state", e.Next)
		},
		OnCompose: func(ctx context.Context, e *domain.ComposeEvent) {
			logger.Debug("Compose", "user_id", e.UserID, "platform", e.Platform, "record_id", e.RecordID, "err", e.Err)
		},
		OnDelivery: func(ctx context.Context, e *domain.DeliveryEvent) {
			logger.Debug("Delivery", "user_id", e.UserID, "err", e.Err)
		},
	}
}
