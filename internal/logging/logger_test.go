package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelInfo, "text").Info("boom", "error", errors.New("bad"))
	assert.Contains(t, buf.String(), "err=bad")
	assert.NotContains(t, buf.String(), "error=")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelDebug, "JSON").Debug("hello", "user", "42")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"user":"42"`)
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, slog.LevelWarn, "text").Info("quiet")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
