// Package compose turns a completed wizard session into the final prompt text.
package compose

import (
	"fmt"
	"strings"

	"github.com/aretw0/architect/pkg/catalog"
	"github.com/aretw0/architect/pkg/domain"
)

const (
	// GeometryClause keeps image editors from redesigning the room.
	GeometryClause = "Geometry of the room, furniture and lighting fixtures remain unchanged."

	// Trailer closes every prompt.
	Trailer = "Photorealistic, ultra detailed, architectural magazine style."
)

// Compose renders session using the descriptions of cat. It is deterministic:
// the same session and catalog always produce byte-identical text.
//
// The session must be complete and every key must exist in the catalog.
// Anything else is reported as domain.ErrInvariantViolation.
func Compose(cat *catalog.Catalog, session *domain.Session) (string, error) {
	if session == nil || !session.Complete() {
		return "", fmt.Errorf("%w: session is not complete", domain.ErrInvariantViolation)
	}

	interior, err := lookup(cat.Interiors, "interior", session.Interior)
	if err != nil {
		return "", err
	}
	photographer, err := lookup(cat.Photographers, "photographer", session.Photographer)
	if err != nil {
		return "", err
	}
	lighting, err := lookup(cat.Lighting, "lighting", session.Lighting)
	if err != nil {
		return "", err
	}

	clutter := ""
	if session.Clutter == domain.ClutterLight {
		clutter, err = lookup(cat.Clutter, "clutter", domain.ClutterLight)
		if err != nil {
			return "", err
		}
	}

	geometry := ""
	if domain.Platform(session.Platform).KeepsGeometry() {
		geometry = GeometryClause
	}

	clauses := []string{
		"Photo of " + interior + ".",
		"In the style of " + session.Photographer + " — " + photographer + ".",
		lighting + ".",
		"Camera angle " + session.Angle + ".",
		clutter,
		geometry,
		Trailer,
	}
	return Normalize(strings.Join(clauses, "\n")), nil
}

// Normalize trims every line and drops the ones left empty.
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func lookup(set *catalog.Set, name, key string) (string, error) {
	text, ok := set.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s %q is not in the catalog", domain.ErrInvariantViolation, name, key)
	}
	return text, nil
}
