package domain

import (
	"fmt"
	"time"
)

// Session holds the in-progress selections of a single user.
// Fields are filled strictly in the order of Steps.
type Session struct {
	UserID string `json:"user_id"`

	Platform     string `json:"platform,omitempty"`
	Interior     string `json:"interior,omitempty"`
	Photographer string `json:"photographer,omitempty"`
	Lighting     string `json:"lighting,omitempty"`
	Angle        string `json:"angle,omitempty"`
	Clutter      string `json:"clutter,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session awaiting the platform.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// field returns a pointer to the storage of step.
func (s *Session) field(step Step) *string {
	switch step {
	case StepPlatform:
		return &s.Platform
	case StepInterior:
		return &s.Interior
	case StepPhotographer:
		return &s.Photographer
	case StepLighting:
		return &s.Lighting
	case StepAngle:
		return &s.Angle
	case StepClutter:
		return &s.Clutter
	}
	return nil
}

// Value returns the selection stored for step.
func (s *Session) Value(step Step) string {
	if f := s.field(step); f != nil {
		return *f
	}
	return ""
}

// Pending returns the state of the first unset step, or StateComplete.
func (s *Session) Pending() State {
	for _, step := range Steps {
		if s.Value(step) == "" {
			return step.State()
		}
	}
	return StateComplete
}

// Complete reports whether all six selections are set.
func (s *Session) Complete() bool {
	return s.Pending() == StateComplete
}

// Set stores value for step. It refuses to fill any step other than the pending one,
// so a later field is never set while an earlier one is unset.
func (s *Session) Set(step Step, value string, now time.Time) error {
	pending := s.Pending()
	if step.State() != pending {
		return fmt.Errorf("%w: expected %s, got %q", ErrStepMismatch, pending, step)
	}
	*s.field(step) = value
	s.UpdatedAt = now
	return nil
}

// Replace overwrites the stored value of step without the ordering check.
// It exists for storage layers that transform selections at rest.
func (s *Session) Replace(step Step, value string) {
	if f := s.field(step); f != nil {
		*f = value
	}
}

// Clone returns an independent copy.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
