package runner

import (
	"context"
	"time"

	"github.com/felixgeelhaar/groundcrew/internal/domain/probe"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// Gate reports private-network reachability for network-gated steps.
type Gate interface {
	Probe(ctx context.Context) probe.Result
}

// Runner executes a Sequence strictly in order, single-threaded.
// Failure recovery is operator-driven through the injected Prompter;
// the runner itself never retries automatically.
type Runner struct {
	logger   ports.Logger
	prompter ports.Prompter
	gate     Gate
}

// New creates a new Runner.
func New(logger ports.Logger, prompter ports.Prompter) *Runner {
	return &Runner{
		logger:   logger,
		prompter: prompter,
	}
}

// WithGate returns a Runner that probes the gate before applying
// network-gated steps.
func (r *Runner) WithGate(gate Gate) *Runner {
	return &Runner{
		logger:   r.logger,
		prompter: r.prompter,
		gate:     gate,
	}
}

// Run executes every step of the sequence in order and returns the report.
// The report is always returned, even after an abort; the error is non-nil
// only when the run ended early (operator abort or context cancellation).
func (r *Runner) Run(ctx context.Context, seq *Sequence) (*Report, error) {
	report := NewReport()
	runCtx := step.NewRunContext(ctx)

	for _, s := range seq.Steps() {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		rec := r.runStep(runCtx, s)
		report.Add(rec)

		if rec.Outcome() == OutcomeAborted {
			return report, step.NewAbortedError(s.ID().String())
		}
	}

	return report, nil
}

// runStep drives one step through check, action, and verification.
func (r *Runner) runStep(runCtx step.RunContext, s step.Step) Record {
	ctx := runCtx.Context()
	id := s.ID()
	log := r.logger.With(ports.F("step", id.String()))

	status, err := s.Check(runCtx)
	if err != nil {
		log.Error(ctx, "precondition check failed to run", ports.F("error", err))
		return r.handleFailure(runCtx, s, step.NewCheckFailedError(id.String(), err), 0)
	}

	if status.Satisfied() {
		log.Info(ctx, "already satisfied, skipping", ports.F("label", s.Label()))
		return NewRecord(id, s.Label(), OutcomeSkipped, nil)
	}

	log.Info(ctx, "installing", ports.F("label", s.Label()))
	return r.attempt(runCtx, s, 1)
}

// attempt runs the gate probe, action, and verification once, deferring to
// handleFailure on any failure. Retries re-enter here with a bumped attempt
// counter.
func (r *Runner) attempt(runCtx step.RunContext, s step.Step, attemptNo int) Record {
	ctx := runCtx.Context()
	id := s.ID()
	start := time.Now()

	if g := step.AsNetworkGated(s); g != nil && r.gate != nil {
		result := r.gate.Probe(ctx)
		if !result.Reachable {
			r.logger.Warn(ctx, "network gate unreachable",
				ports.F("step", id.String()),
				ports.F("reason", result.ReasonTag()))
			ferr := step.NewGateUnreachableError(id.String(), result.ReasonTag())
			return r.handleFailure(runCtx, s, ferr, attemptNo).
				WithDuration(time.Since(start))
		}
	}

	if err := s.Apply(runCtx); err != nil {
		// Installer one-liners can exit non-zero after converging, so the
		// verification decides the outcome, not the action's exit status.
		status, verr := s.Verify(runCtx)
		if verr == nil && status.Satisfied() {
			r.logger.Warn(ctx, "action reported an error but verification holds",
				ports.F("step", id.String()),
				ports.F("error", err))
			return NewRecord(id, s.Label(), OutcomeSucceeded, nil).
				WithDuration(time.Since(start)).
				WithAttempts(attemptNo)
		}
		ferr := step.NewActionFailedError(id.String(), err)
		return r.handleFailure(runCtx, s, ferr, attemptNo).
			WithDuration(time.Since(start))
	}

	status, err := s.Verify(runCtx)
	switch {
	case err != nil:
		ferr := step.NewVerifyFailedError(id.String(), err)
		return r.handleFailure(runCtx, s, ferr, attemptNo).
			WithDuration(time.Since(start))
	case !status.Satisfied():
		ferr := step.NewVerifyFailedError(id.String(), nil)
		return r.handleFailure(runCtx, s, ferr, attemptNo).
			WithDuration(time.Since(start))
	}

	r.logger.Info(ctx, "verified", ports.F("step", id.String()))
	return NewRecord(id, s.Label(), OutcomeSucceeded, nil).
		WithDuration(time.Since(start)).
		WithAttempts(attemptNo)
}

// handleFailure applies the step's criticality policy to a failure.
// Advisory steps log and continue; blocking steps suspend on the prompter
// until the operator (or the configured policy) decides.
func (r *Runner) handleFailure(runCtx step.RunContext, s step.Step, ferr *step.StepError, attemptNo int) Record {
	ctx := runCtx.Context()
	id := s.ID()

	if s.Criticality() == step.Advisory {
		r.logger.Warn(ctx, "advisory step failed, continuing",
			ports.F("step", id.String()),
			ports.F("error", ferr.Error()))
		return NewRecord(id, s.Label(), OutcomeFailedAdvisory, ferr).
			WithAttempts(attemptNo)
	}

	r.logger.Error(ctx, "blocking step failed",
		ports.F("step", id.String()),
		ports.F("error", ferr.Error()))

	decision, err := r.prompter.Ack(ctx, ports.StepFailure{
		StepID:  id.String(),
		Label:   s.Label(),
		Attempt: attemptNo,
		Err:     ferr,
	})
	if err != nil {
		// Prompt interrupted (context cancelled or input closed): abort.
		return NewRecord(id, s.Label(), OutcomeAborted, ferr).
			WithAttempts(attemptNo)
	}

	switch decision {
	case ports.DecisionRetry:
		r.logger.Info(ctx, "retrying step", ports.F("step", id.String()))
		return r.attempt(runCtx, s, attemptNo+1)
	case ports.DecisionContinue:
		return NewRecord(id, s.Label(), OutcomeFailedAcknowledged, ferr).
			WithAttempts(attemptNo)
	case ports.DecisionAbort:
		return NewRecord(id, s.Label(), OutcomeAborted, ferr).
			WithAttempts(attemptNo)
	}

	return NewRecord(id, s.Label(), OutcomeAborted, ferr).
		WithAttempts(attemptNo)
}
