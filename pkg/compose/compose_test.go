package compose_test

import (
	"strings"
	"testing"

	"github.com/aretw0/architect/internal/testutils"
	"github.com/aretw0/architect/pkg/compose"
	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_RealRenderWithoutClutter(t *testing.T) {
	cat := testutils.Catalog(t)
	session := testutils.CompleteSession(t, "u1", domain.PlatformRealRender, domain.ClutterNone)

	text, err := compose.Compose(cat, session)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"Photo of Open-plan modern loft with exposed concrete.",
		"In the style of Urban — Urban documentary style.",
		"Warm golden-hour light through large windows.",
		"Camera angle Wide architectural.",
		compose.GeometryClause,
		compose.Trailer,
	}, "\n")
	assert.Equal(t, expected, text)
	assert.NotContains(t, text, testutils.LightClutter)
	assert.NotContains(t, text, "\n\n", "empty clauses must be dropped")
}

func TestCompose_GeometryClauseByPlatform(t *testing.T) {
	cat := testutils.Catalog(t)
	for _, platform := range domain.Platforms {
		t.Run(string(platform), func(t *testing.T) {
			text, err := compose.Compose(cat, testutils.CompleteSession(t, "u1", platform, domain.ClutterNone))
			require.NoError(t, err)

			if platform == domain.PlatformNanobanana {
				assert.NotContains(t, text, compose.GeometryClause)
			} else {
				assert.Contains(t, text, compose.GeometryClause)
			}
		})
	}
}

func TestCompose_LightClutterIsOwnLine(t *testing.T) {
	cat := testutils.Catalog(t)
	text, err := compose.Compose(cat, testutils.CompleteSession(t, "u1", domain.PlatformNanobanana, domain.ClutterLight))
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Contains(t, lines, testutils.LightClutter)
	assert.Equal(t, compose.Trailer, lines[len(lines)-1])
	assert.Len(t, lines, 6)
}

func TestCompose_Deterministic(t *testing.T) {
	cat := testutils.Catalog(t)
	session := testutils.CompleteSession(t, "u1", domain.PlatformSeedream, domain.ClutterLight)

	first, err := compose.Compose(cat, session)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := compose.Compose(cat, session.Clone())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompose_InvariantViolations(t *testing.T) {
	cat := testutils.Catalog(t)

	t.Run("incomplete session", func(t *testing.T) {
		session := domain.NewSession("u1", testutils.CompleteSession(t, "u1", domain.PlatformMidjourney, "none").StartedAt)
		_, err := compose.Compose(cat, session)
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	})

	t.Run("unknown catalog key", func(t *testing.T) {
		session := testutils.CompleteSession(t, "u1", domain.PlatformMidjourney, domain.ClutterNone)
		session.Lighting = "Neon"
		_, err := compose.Compose(cat, session)
		assert.ErrorIs(t, err, domain.ErrInvariantViolation)
		assert.Contains(t, err.Error(), "Neon")
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a\nb", compose.Normalize("  a  \n\n   \n\tb\n"))
	assert.Equal(t, "", compose.Normalize("\n \n"))
}
