package architect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/aretw0/architect/pkg/ports"
)

// Runner drives the wizard over a line-oriented reader and writer.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// DisplayName is stored with the composed prompt.
	DisplayName string
}

// ContentRenderer transforms the composed prompt before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// ErrQuit is returned by Run when the user leaves before the prompt is composed.
var ErrQuit = errors.New("wizard abandoned")

// stepTitles are the questions asked for each step.
var stepTitles = map[domain.Step]string{
	domain.StepPlatform:     "Choose the platform",
	domain.StepInterior:     "Choose the interior style",
	domain.StepPhotographer: "Choose the photographer",
	domain.StepLighting:     "Choose the lighting",
	domain.StepAngle:        "Choose the camera angle",
	domain.StepClutter:      "Add lived-in clutter?",
}

// Run executes one wizard for userID and returns the composed record.
// Answers may be given by menu number or by exact key. "exit" or "quit" abandons the session.
func (r *Runner) Run(ctx context.Context, wizard ports.Wizard, userID string) (*domain.HistoryRecord, error) {
	if r.Input == nil {
		return nil, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)
	writer := r.Output

	out, err := wizard.BeginSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	for {
		step, ok := out.State.Step()
		if !ok {
			return nil, fmt.Errorf("%w: wizard is %s without a prompt", domain.ErrInvariantViolation, out.State)
		}
		r.printMenu(step, out.Options)

		if !r.Headless {
			fmt.Fprint(writer, "> ")
		}
		text, err := lineReader.ReadString('\n')
		input := strings.TrimSpace(text)
		if err != nil && (!errors.Is(err, io.EOF) || input == "") {
			_ = wizard.Cancel(ctx, userID)
			if errors.Is(err, io.EOF) {
				return nil, ErrQuit
			}
			return nil, fmt.Errorf("input error: %w", err)
		}

		if input == "exit" || input == "quit" {
			_ = wizard.Cancel(ctx, userID)
			fmt.Fprintln(writer, "Bye!")
			return nil, ErrQuit
		}

		next, err := wizard.SubmitChoice(ctx, userID, r.DisplayName, string(step), resolve(input, out.Options))
		if domain.IsValidation(err) && !errors.Is(err, domain.ErrNoActiveSession) {
			fmt.Fprintf(writer, "⚠️  %v\n", err)
			continue
		}
		if err != nil {
			return nil, err
		}

		if next.Composed() {
			r.printPrompt(next.Prompt)
			return next.Record, nil
		}
		out = next
	}
}

func (r *Runner) printMenu(step domain.Step, options []domain.Option) {
	if r.Headless {
		return
	}
	fmt.Fprintf(r.Output, "\n%s:\n", stepTitles[step])
	for i, opt := range options {
		if opt.Description != "" {
			fmt.Fprintf(r.Output, "  %d) %s: %s\n", i+1, opt.Key, opt.Description)
		} else {
			fmt.Fprintf(r.Output, "  %d) %s\n", i+1, opt.Key)
		}
	}
}

func (r *Runner) printPrompt(prompt string) {
	output := prompt
	if r.Renderer != nil {
		if rendered, err := r.Renderer("```text\n" + prompt + "\n```"); err == nil {
			output = rendered
		}
	}
	if !r.Headless {
		fmt.Fprintln(r.Output, "\n✅ Your prompt:")
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

// resolve maps a menu number to its key. Anything else is submitted verbatim.
func resolve(input string, options []domain.Option) string {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1].Key
	}
	return input
}
