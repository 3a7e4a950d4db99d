package domain

import "time"

// HistoryRecord is a composed prompt persisted for a user. Immutable once written.
type HistoryRecord struct {
	ID          uint64    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"` // Best-effort label, never validated
	Prompt      string    `json:"prompt"`
	CreatedAt   time.Time `json:"created_at"`
}

// Option is a menu entry a transport can present for a step.
type Option struct {
	Key         string `json:"key"`
	Description string `json:"description,omitempty"`
}

// Outcome is the result of a wizard operation.
type Outcome struct {
	// State is the state after the operation. It is StateIdle once a prompt was composed.
	State State `json:"state"`

	// Options is the menu for the pending step (empty when idle).
	Options []Option `json:"options,omitempty"`

	// Prompt and Record are set only when the operation completed the wizard.
	Prompt string         `json:"prompt,omitempty"`
	Record *HistoryRecord `json:"record,omitempty"`
}

// Composed reports whether the operation produced a prompt.
func (o Outcome) Composed() bool {
	return o.Record != nil
}
