package domain

// Step identifies one selection of the wizard.
type Step string

const (
	StepPlatform     Step = "platform"
	StepInterior     Step = "interior"
	StepPhotographer Step = "photographer"
	StepLighting     Step = "lighting"
	StepAngle        Step = "angle"
	StepClutter      Step = "clutter"
)

// Steps is the fixed order in which selections are collected.
var Steps = []Step{
	StepPlatform,
	StepInterior,
	StepPhotographer,
	StepLighting,
	StepAngle,
	StepClutter,
}

// State tags where a user is in the wizard.
type State string

const (
	StateIdle                 State = "idle" // No session
	StateAwaitingPlatform     State = "awaiting_platform"
	StateAwaitingInterior     State = "awaiting_interior"
	StateAwaitingPhotographer State = "awaiting_photographer"
	StateAwaitingLighting     State = "awaiting_lighting"
	StateAwaitingAngle        State = "awaiting_angle"
	StateAwaitingClutter      State = "awaiting_clutter"
	StateComplete             State = "complete" // All fields set, consumed immediately
)

// ParseStep matches s exactly against the known steps.
func ParseStep(s string) (Step, bool) {
	for _, step := range Steps {
		if string(step) == s {
			return step, true
		}
	}
	return "", false
}

// State returns the state in which this step is pending.
func (s Step) State() State {
	switch s {
	case StepPlatform:
		return StateAwaitingPlatform
	case StepInterior:
		return StateAwaitingInterior
	case StepPhotographer:
		return StateAwaitingPhotographer
	case StepLighting:
		return StateAwaitingLighting
	case StepAngle:
		return StateAwaitingAngle
	case StepClutter:
		return StateAwaitingClutter
	}
	return StateIdle
}

// Step returns the step awaited in this state. ok is false for idle and complete.
func (s State) Step() (step Step, ok bool) {
	for _, candidate := range Steps {
		if candidate.State() == s {
			return candidate, true
		}
	}
	return "", false
}
