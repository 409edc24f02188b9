// Package prompt provides implementations of the ports.Prompter interface:
// an interactive terminal prompt and a policy-driven prompter for
// non-interactive runs.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// TerminalPrompter asks the operator how to proceed after a blocking step
// failure. The read blocks on operator input but honors context
// cancellation, so an interrupted run does not hang on the prompt.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter creates a prompter reading os.Stdin and writing
// os.Stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return NewTerminalPrompterIO(os.Stdin, os.Stdout)
}

// NewTerminalPrompterIO creates a prompter with explicit input and output.
func NewTerminalPrompterIO(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ack presents the failure and waits for a decision.
func (p *TerminalPrompter) Ack(ctx context.Context, failure ports.StepFailure) (ports.Decision, error) {
	_, _ = fmt.Fprintf(p.out, "\nStep failed: %s (%s)\n", failure.Label, failure.StepID)
	if failure.Err != nil {
		_, _ = fmt.Fprintf(p.out, "  %v\n", failure.Err)
	}
	if failure.Attempt > 1 {
		_, _ = fmt.Fprintf(p.out, "  (attempt %d)\n", failure.Attempt)
	}

	for {
		_, _ = fmt.Fprint(p.out, "[r]etry, [c]ontinue, [a]bort? ")

		line, err := p.readLine(ctx)
		if err != nil {
			return ports.DecisionAbort, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "r", "retry":
			return ports.DecisionRetry, nil
		case "c", "continue":
			return ports.DecisionContinue, nil
		case "a", "abort", "q", "quit":
			return ports.DecisionAbort, nil
		}
		_, _ = fmt.Fprintln(p.out, "Please answer r, c, or a.")
	}
}

// readLine reads one line of input, giving up when the context is cancelled.
func (p *TerminalPrompter) readLine(ctx context.Context) (string, error) {
	type readResult struct {
		line string
		err  error
	}

	ch := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && res.line == "" {
			return "", res.err
		}
		return res.line, nil
	}
}

// Ensure TerminalPrompter implements ports.Prompter.
var _ ports.Prompter = (*TerminalPrompter)(nil)
