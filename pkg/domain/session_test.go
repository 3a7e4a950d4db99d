package domain_test

import (
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_FillsInOrder(t *testing.T) {
	now := time.Now()
	s := domain.NewSession("u1", now)
	values := []string{"Midjourney", "ModernLoft", "Urban", "Golden", "Centered cinematic", "none"}

	for i, step := range domain.Steps {
		assert.Equal(t, step.State(), s.Pending())
		require.NoError(t, s.Set(step, values[i], now))
		assert.Equal(t, values[i], s.Value(step))
	}
	assert.True(t, s.Complete())
	assert.Equal(t, domain.StateComplete, s.Pending())
}

func TestSession_RejectsOutOfOrder(t *testing.T) {
	now := time.Now()
	s := domain.NewSession("u1", now)
	require.NoError(t, s.Set(domain.StepPlatform, "Seedream", now))

	before := *s
	err := s.Set(domain.StepLighting, "Golden", now.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrStepMismatch)
	assert.Equal(t, before, *s, "rejected set must not touch the session")

	err = s.Set(domain.StepPlatform, "Midjourney", now)
	assert.ErrorIs(t, err, domain.ErrStepMismatch, "filled steps cannot be overwritten")

	err = s.Set(domain.Step("unknown"), "x", now)
	assert.ErrorIs(t, err, domain.ErrStepMismatch)
}

func TestStep_StateRoundTrip(t *testing.T) {
	for _, step := range domain.Steps {
		got, ok := step.State().Step()
		assert.True(t, ok)
		assert.Equal(t, step, got)
	}

	_, ok := domain.StateIdle.Step()
	assert.False(t, ok)
	_, ok = domain.StateComplete.Step()
	assert.False(t, ok)
}

func TestParseStep_Exact(t *testing.T) {
	step, ok := domain.ParseStep("lighting")
	assert.True(t, ok)
	assert.Equal(t, domain.StepLighting, step)

	_, ok = domain.ParseStep("Lighting")
	assert.False(t, ok)
}

func TestVocabulary(t *testing.T) {
	assert.True(t, domain.IsPlatform("Nanobanana"))
	assert.False(t, domain.IsPlatform("nanobanana"))
	assert.True(t, domain.IsAngle("Close magazine frame"))
	assert.False(t, domain.IsAngle("Close"))
	assert.True(t, domain.IsClutter("light"))
	assert.False(t, domain.IsClutter("heavy"))
	assert.False(t, domain.PlatformNanobanana.KeepsGeometry())
	assert.True(t, domain.PlatformRealRender.KeepsGeometry())
}

func TestIsValidation(t *testing.T) {
	assert.True(t, domain.IsValidation(domain.ErrUnknownOption))
	assert.True(t, domain.IsValidation(domain.ErrStepMismatch))
	assert.True(t, domain.IsValidation(domain.ErrNoActiveSession))
	assert.False(t, domain.IsValidation(domain.ErrInvariantViolation))
	assert.False(t, domain.IsValidation(domain.ErrNoHistory))
}
