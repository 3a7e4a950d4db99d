package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/catalog"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
	"github.com/stretchr/testify/require"
)

// LightClutter is the clutter text of the Catalog fixture.
const LightClutter = "A few lived-in details: an open book, a folded throw, a cup on the table."

// Catalog returns a small, valid catalog shared by tests.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()

	cat := &catalog.Catalog{
		Interiors: catalog.MustSet(
			catalog.Entry{Key: "ModernLoft", Text: "Open-plan modern loft with exposed concrete"},
			catalog.Entry{Key: "Scandinavian", Text: "Bright Scandinavian living room with light oak floors"},
		),
		Photographers: catalog.MustSet(
			catalog.Entry{Key: "Urban", Text: "Urban documentary style"},
			catalog.Entry{Key: "Minimalist", Text: "Quiet minimalist compositions with negative space"},
		),
		Lighting: catalog.MustSet(
			catalog.Entry{Key: "Golden", Text: "Warm golden-hour light through large windows"},
			catalog.Entry{Key: "Overcast", Text: "Soft diffused overcast daylight"},
		),
		Clutter: catalog.MustSet(
			catalog.Entry{Key: domain.ClutterLight, Text: LightClutter},
		),
	}
	require.NoError(t, cat.Validate(), "Fixture catalog must be valid")
	return cat
}

// Choices returns a valid selection for every step, in order.
func Choices(platform domain.Platform, clutter string) []string {
	return []string{string(platform), "ModernLoft", "Urban", "Golden", "Wide architectural", clutter}
}

// CompleteSession builds a complete session from Choices.
func CompleteSession(t testing.TB, userID string, platform domain.Platform, clutter string) *domain.Session {
	t.Helper()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	s := domain.NewSession(userID, now)
	for i, v := range Choices(platform, clutter) {
		require.NoError(t, s.Set(domain.Steps[i], v, now))
	}
	return s
}

// Drive runs a whole wizard for userID through w and returns the final outcome.
func Drive(t testing.TB, w ports.Wizard, userID string, choices []string) domain.Outcome {
	t.Helper()

	ctx := context.Background()
	out, err := w.BeginSession(ctx, userID)
	require.NoError(t, err)
	for i, v := range choices {
		out, err = w.SubmitChoice(ctx, userID, "", string(domain.Steps[i]), v)
		require.NoError(t, err)
	}
	return out
}
