package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the application banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Warm gradient, sand to terracotta.
	lines := []struct {
		text, color string
	}{
		{"     _             _     _ _            _   ", "#fde68a"},
		{"    / \\   _ __ ___| |__ (_) |_ ___  ___| |_ ", "#fcd34d"},
		{"   / _ \\ | '__/ __| '_ \\| | __/ _ \\/ __| __|", "#fbbf24"},
		{"  / ___ \\| | | (__| | | | | ||  __/ (__| |_ ", "#f59e0b"},
		{" /_/   \\_\\_|  \\___|_| |_|_|\\__\\___|\\___|\\__|", "#d97706"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  Prompt Architect "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
