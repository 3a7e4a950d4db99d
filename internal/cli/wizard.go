package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/architect"
	"github.com/aretw0/architect/internal/presentation/tui"
	"golang.org/x/term"
)

// WizardOptions configures an interactive terminal session.
type WizardOptions struct {
	UserID      string
	DisplayName string
	Headless    bool
}

// RunWizard runs one wizard on the process terminal and prints the prompt.
// Prompts are rendered with glamour only when stdout is a terminal.
func RunWizard(ctx *SignalContext, app *App, opts WizardOptions) error {
	interactive := !opts.Headless && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive {
		tui.PrintBanner(os.Stdout, architect.Version)
	}

	r := &architect.Runner{
		Input:       NewInterruptibleReader(os.Stdin, ctx.Done()),
		Output:      os.Stdout,
		Headless:    opts.Headless,
		DisplayName: opts.DisplayName,
	}
	if interactive {
		r.Renderer = tui.NewRenderer()
	}

	rec, err := r.Run(ctx, app.Engine, opts.UserID)
	return finish(os.Stdout, rec != nil, err, ctx.Signal() != nil, opts.Headless)
}

func finish(w io.Writer, composed bool, err error, signalled, quiet bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, architect.ErrQuit) || isInterrupted(err) {
		if !quiet && !composed {
			if signalled {
				fmt.Fprint(w, "[CTRL+C]\n")
			}
			printSystemMessage(w, "Wizard cancelled.")
		}
		return nil
	}
	return err
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
