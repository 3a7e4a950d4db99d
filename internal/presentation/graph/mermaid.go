package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/architect/pkg/domain"
)

// Overlay highlights where a user currently stands.
type Overlay struct {
	Current domain.State
}

// GenerateMermaid renders the wizard as a Mermaid flowchart.
// Idle is drawn as a circle, the awaiting states as inputs and composition
// as a subroutine. Rejected answers loop back to the same state.
func GenerateMermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", domain.StateIdle, domain.StateIdle)
	for _, step := range domain.Steps {
		state := step.State()
		fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", state, state)
	}
	fmt.Fprintf(&sb, "    %s[[\"compose\"]]\n", domain.StateComplete)

	fmt.Fprintf(&sb, "    %s -- \"begin\" --> %s\n", domain.StateIdle, domain.StateAwaitingPlatform)
	for i, step := range domain.Steps {
		from := step.State()
		to := domain.StateComplete
		if i+1 < len(domain.Steps) {
			to = domain.Steps[i+1].State()
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, step, to)
		fmt.Fprintf(&sb, "    %s -. \"rejected\" .-> %s\n", from, from)
	}
	fmt.Fprintf(&sb, "    %s --> %s\n", domain.StateComplete, domain.StateIdle)

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
	}

	return sb.String()
}
