// Package input cleans free text received from transports before it reaches the core.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSize bounds a single field. Menu keys and display names are far shorter;
// broadcast texts are the longest legitimate input.
const MaxSize = 4096

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize rejects oversized or invalid UTF-8 text and strips control
// characters other than newline, tab and carriage return. ANSI escapes and
// NUL bytes never reach logs or the terminal.
func Sanitize(text string) (string, error) {
	if len(text) > MaxSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(text), MaxSize)
	}
	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(text, unsafeControl) < 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Field sanitizes a single-line value: like Sanitize, then trimmed.
func Field(text string) (string, error) {
	clean, err := Sanitize(text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(clean), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
