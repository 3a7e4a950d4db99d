package architect_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_NumberedAnswers(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)))
	require.NoError(t, err)

	// Nanobanana, ModernLoft, Minimalist, Overcast, Centered cinematic, light
	input := strings.NewReader("4\n1\n2\n2\n2\n2\n")
	var output bytes.Buffer
	r := &architect.Runner{Input: input, Output: &output, DisplayName: "cli"}

	rec, err := r.Run(context.Background(), eng, "local")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "cli", rec.DisplayName)
	assert.Contains(t, rec.Prompt, "In the style of Minimalist")
	assert.Contains(t, rec.Prompt, testutils.LightClutter)
	assert.NotContains(t, rec.Prompt, "Geometry")
	assert.Contains(t, output.String(), "Choose the platform")
	assert.Contains(t, output.String(), rec.Prompt)
}

func TestRunner_RepromptsOnInvalidAnswer(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)))
	require.NoError(t, err)

	input := strings.NewReader("9\nDALL-E\nSeedream\nModernLoft\nUrban\nGolden\nWide architectural\nnone\n")
	var output bytes.Buffer
	r := &architect.Runner{Input: input, Output: &output, Headless: true}

	rec, err := r.Run(context.Background(), eng, "local")
	require.NoError(t, err)
	assert.Contains(t, rec.Prompt, "Geometry of the room")
	assert.Equal(t, 2, strings.Count(output.String(), "⚠️"))
}

func TestRunner_QuitCancelsSession(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)))
	require.NoError(t, err)

	r := &architect.Runner{Input: strings.NewReader("1\nquit\n"), Output: &bytes.Buffer{}}
	_, err = r.Run(context.Background(), eng, "local")
	assert.ErrorIs(t, err, architect.ErrQuit)

	state, err := eng.Current(context.Background(), "local")
	require.NoError(t, err)
	assert.Equal(t, "idle", string(state))
}

func TestRunner_RendererIsApplied(t *testing.T) {
	eng, err := architect.New("", architect.WithCatalog(testutils.Catalog(t)))
	require.NoError(t, err)

	var output bytes.Buffer
	r := &architect.Runner{
		Input:    strings.NewReader("1\n1\n1\n1\n1\n1\n"),
		Output:   &output,
		Headless: true,
		Renderer: func(s string) (string, error) { return "RENDERED", nil },
	}
	_, err = r.Run(context.Background(), eng, "local")
	require.NoError(t, err)
	assert.Equal(t, "RENDERED\n", output.String())
}
