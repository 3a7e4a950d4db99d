package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionBegin EventType = "session_begin"
	EventStep         EventType = "step"
	EventCompose      EventType = "compose"
	EventDelivery     EventType = "delivery"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
}

// StepEvent reports a submitted choice. Err is nil when the choice was accepted.
type StepEvent struct {
	EventBase
	Step  Step   `json:"step"`
	Value string `json:"value"`
	Next  State  `json:"next"`
	Err   error  `json:"-"`
}

// ComposeEvent reports a composition attempt.
type ComposeEvent struct {
	EventBase
	Platform string `json:"platform"`
	RecordID uint64 `json:"record_id,omitempty"`
	Err      error  `json:"-"`
}

// DeliveryEvent reports a single broadcast delivery.
type DeliveryEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for wizard observability.
type LifecycleHooks struct {
	OnSessionBegin func(context.Context, *EventBase)
	OnStep         func(context.Context, *StepEvent)
	OnCompose      func(context.Context, *ComposeEvent)
	OnDelivery     func(context.Context, *DeliveryEvent)
}
