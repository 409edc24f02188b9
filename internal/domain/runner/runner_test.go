package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/groundcrew/internal/domain/probe"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// nopLogger discards everything. Keeps runner tests free of output noise.
type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...ports.Field) {}
func (nopLogger) Info(context.Context, string, ...ports.Field)  {}
func (nopLogger) Warn(context.Context, string, ...ports.Field)  {}
func (nopLogger) Error(context.Context, string, ...ports.Field) {}
func (n nopLogger) With(...ports.Field) ports.Logger            { return n }
func (nopLogger) Level() ports.Level                            { return ports.LevelInfo }
func (nopLogger) SetLevel(ports.Level)                          {}

// scriptPrompter replays a fixed list of decisions and records every failure
// it was asked about.
type scriptPrompter struct {
	decisions []ports.Decision
	failures  []ports.StepFailure
	err       error
}

func (p *scriptPrompter) Ack(_ context.Context, failure ports.StepFailure) (ports.Decision, error) {
	p.failures = append(p.failures, failure)
	if p.err != nil {
		return ports.DecisionAbort, p.err
	}
	if len(p.decisions) == 0 {
		return ports.DecisionContinue, nil
	}
	d := p.decisions[0]
	p.decisions = p.decisions[1:]
	return d, nil
}

// fakeStep is a configurable step for runner tests.
type fakeStep struct {
	id          string
	criticality step.Criticality
	gated       bool

	checkStatus  step.Status
	checkErr     error
	applyErr     error
	verifyStatus step.Status
	verifyErr    error

	// applySucceedsAfter makes Apply fail until it has been called that
	// many times, to exercise retries.
	applySucceedsAfter int

	checkCalls  int
	applyCalls  int
	verifyCalls int
}

func (s *fakeStep) ID() step.StepID               { return step.MustNewStepID(s.id) }
func (s *fakeStep) Label() string                 { return s.id }
func (s *fakeStep) Criticality() step.Criticality { return s.criticality }
func (s *fakeStep) NetworkGated() bool            { return s.gated }

func (s *fakeStep) Check(step.RunContext) (step.Status, error) {
	s.checkCalls++
	return s.checkStatus, s.checkErr
}

func (s *fakeStep) Apply(step.RunContext) error {
	s.applyCalls++
	if s.applySucceedsAfter > 0 && s.applyCalls >= s.applySucceedsAfter {
		return nil
	}
	return s.applyErr
}

func (s *fakeStep) Verify(step.RunContext) (step.Status, error) {
	s.verifyCalls++
	// A step that has not converged yet cannot verify as satisfied.
	if s.applySucceedsAfter > 0 && s.applyCalls < s.applySucceedsAfter {
		return step.StatusNeedsApply, s.verifyErr
	}
	return s.verifyStatus, s.verifyErr
}

func satisfiedStep(id string) *fakeStep {
	return &fakeStep{
		id:           id,
		criticality:  step.Blocking,
		checkStatus:  step.StatusSatisfied,
		verifyStatus: step.StatusSatisfied,
	}
}

func needsApplyStep(id string) *fakeStep {
	return &fakeStep{
		id:           id,
		criticality:  step.Blocking,
		checkStatus:  step.StatusNeedsApply,
		verifyStatus: step.StatusSatisfied,
	}
}

// staticGate always answers with the same probe result.
type staticGate struct {
	result probe.Result
	calls  int
}

func (g *staticGate) Probe(context.Context) probe.Result {
	g.calls++
	return g.result
}

func newTestRunner(p ports.Prompter) *Runner {
	if p == nil {
		p = &scriptPrompter{}
	}
	return New(nopLogger{}, p)
}

func TestRun_SatisfiedStepIsSkippedWithoutApply(t *testing.T) {
	s := satisfiedStep("tool:a")
	r := newTestRunner(nil)

	report, err := r.Run(context.Background(), MustNewSequence(s))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if s.applyCalls != 0 {
		t.Errorf("Apply called %d times for a satisfied step, want 0", s.applyCalls)
	}
	if got := report.Records()[0].Outcome(); got != OutcomeSkipped {
		t.Errorf("outcome = %q, want %q", got, OutcomeSkipped)
	}
	if !report.AllSatisfied() {
		t.Error("AllSatisfied() = false for an all-skipped run")
	}
}

func TestRun_NeedsApplyStepSucceeds(t *testing.T) {
	s := needsApplyStep("tool:a")
	r := newTestRunner(nil)

	report, err := r.Run(context.Background(), MustNewSequence(s))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if s.applyCalls != 1 {
		t.Errorf("Apply called %d times, want 1", s.applyCalls)
	}
	if s.verifyCalls != 1 {
		t.Errorf("Verify called %d times, want 1", s.verifyCalls)
	}
	rec := report.Records()[0]
	if rec.Outcome() != OutcomeSucceeded {
		t.Errorf("outcome = %q, want %q", rec.Outcome(), OutcomeSucceeded)
	}
	if rec.Attempts() != 1 {
		t.Errorf("attempts = %d, want 1", rec.Attempts())
	}
}

func TestRun_SecondRunSkipsEverything(t *testing.T) {
	// After a successful run all preconditions hold, so a re-run applies
	// nothing.
	first := needsApplyStep("tool:a")
	r := newTestRunner(nil)
	if _, err := r.Run(context.Background(), MustNewSequence(first)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second := satisfiedStep("tool:a")
	report, err := r.Run(context.Background(), MustNewSequence(second))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if second.applyCalls != 0 {
		t.Errorf("Apply called %d times on re-run, want 0", second.applyCalls)
	}
	if !report.AllSatisfied() {
		t.Error("re-run with no state change should report all satisfied")
	}
}

func TestRun_AdvisoryFailureContinuesWithoutPrompt(t *testing.T) {
	failing := &fakeStep{
		id:          "tool:a",
		criticality: step.Advisory,
		checkStatus: step.StatusNeedsApply,
		applyErr:    fmt.Errorf("exit status 1"),
	}
	after := needsApplyStep("tool:b")
	prompter := &scriptPrompter{}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(failing, after))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(prompter.failures) != 0 {
		t.Errorf("prompter consulted %d times for an advisory failure, want 0", len(prompter.failures))
	}
	if got := report.Records()[0].Outcome(); got != OutcomeFailedAdvisory {
		t.Errorf("outcome = %q, want %q", got, OutcomeFailedAdvisory)
	}
	if after.applyCalls != 1 {
		t.Error("run did not continue past the advisory failure")
	}
}

func TestRun_BlockingFailureContinueDecision(t *testing.T) {
	failing := &fakeStep{
		id:          "tool:a",
		criticality: step.Blocking,
		checkStatus: step.StatusNeedsApply,
		applyErr:    fmt.Errorf("exit status 1"),
	}
	after := needsApplyStep("tool:b")
	prompter := &scriptPrompter{decisions: []ports.Decision{ports.DecisionContinue}}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(failing, after))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(prompter.failures) != 1 {
		t.Fatalf("prompter consulted %d times, want 1", len(prompter.failures))
	}
	if prompter.failures[0].StepID != "tool:a" {
		t.Errorf("prompted for %q, want tool:a", prompter.failures[0].StepID)
	}
	if got := report.Records()[0].Outcome(); got != OutcomeFailedAcknowledged {
		t.Errorf("outcome = %q, want %q", got, OutcomeFailedAcknowledged)
	}
	if after.applyCalls != 1 {
		t.Error("run did not continue after acknowledgement")
	}
}

func TestRun_BlockingFailureAbortDecision(t *testing.T) {
	failing := &fakeStep{
		id:          "tool:a",
		criticality: step.Blocking,
		checkStatus: step.StatusNeedsApply,
		applyErr:    fmt.Errorf("exit status 1"),
	}
	after := needsApplyStep("tool:b")
	prompter := &scriptPrompter{decisions: []ports.Decision{ports.DecisionAbort}}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(failing, after))
	if err == nil {
		t.Fatal("Run returned nil error after abort")
	}

	var stepErr *step.StepError
	if !errors.As(err, &stepErr) || stepErr.Code != step.ErrCodeAborted {
		t.Errorf("error = %v, want aborted StepError", err)
	}
	if after.applyCalls != 0 || after.checkCalls != 0 {
		t.Error("steps after the aborted one still ran")
	}
	if report.Len() != 1 {
		t.Errorf("report has %d records, want 1", report.Len())
	}
	if got := report.Records()[0].Outcome(); got != OutcomeAborted {
		t.Errorf("outcome = %q, want %q", got, OutcomeAborted)
	}
}

func TestRun_BlockingFailureRetryDecision(t *testing.T) {
	// Fails once, succeeds on the retry.
	flaky := &fakeStep{
		id:                 "tool:a",
		criticality:        step.Blocking,
		checkStatus:        step.StatusNeedsApply,
		applyErr:           fmt.Errorf("exit status 1"),
		applySucceedsAfter: 2,
		verifyStatus:       step.StatusSatisfied,
	}
	prompter := &scriptPrompter{decisions: []ports.Decision{ports.DecisionRetry}}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(flaky))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if flaky.applyCalls != 2 {
		t.Errorf("Apply called %d times, want 2", flaky.applyCalls)
	}
	rec := report.Records()[0]
	if rec.Outcome() != OutcomeSucceeded {
		t.Errorf("outcome = %q, want %q", rec.Outcome(), OutcomeSucceeded)
	}
	if rec.Attempts() != 2 {
		t.Errorf("attempts = %d, want 2", rec.Attempts())
	}
}

func TestRun_ApplyErrorButVerificationHolds(t *testing.T) {
	// The installer exits non-zero but the tool ends up installed anyway.
	converged := &fakeStep{
		id:           "tool:a",
		criticality:  step.Blocking,
		checkStatus:  step.StatusNeedsApply,
		applyErr:     fmt.Errorf("exit status 1"),
		verifyStatus: step.StatusSatisfied,
	}
	prompter := &scriptPrompter{}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(converged))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if converged.verifyCalls != 1 {
		t.Errorf("Verify called %d times, want 1", converged.verifyCalls)
	}
	if len(prompter.failures) != 0 {
		t.Errorf("prompter consulted %d times, want 0", len(prompter.failures))
	}
	rec := report.Records()[0]
	if rec.Outcome() != OutcomeSucceeded {
		t.Errorf("outcome = %q, want %q", rec.Outcome(), OutcomeSucceeded)
	}
	if rec.Error() != nil {
		t.Errorf("record error = %v, want nil", rec.Error())
	}
}

func TestRun_PrompterErrorAborts(t *testing.T) {
	failing := &fakeStep{
		id:          "tool:a",
		criticality: step.Blocking,
		checkStatus: step.StatusNeedsApply,
		applyErr:    fmt.Errorf("exit status 1"),
	}
	prompter := &scriptPrompter{err: context.Canceled}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(failing))
	if err == nil {
		t.Fatal("Run returned nil error when the prompt was interrupted")
	}
	if got := report.Records()[0].Outcome(); got != OutcomeAborted {
		t.Errorf("outcome = %q, want %q", got, OutcomeAborted)
	}
}

func TestRun_CheckErrorIsHandledAsFailure(t *testing.T) {
	broken := &fakeStep{
		id:          "tool:a",
		criticality: step.Advisory,
		checkErr:    fmt.Errorf("dpkg not available"),
	}
	r := newTestRunner(nil)

	report, err := r.Run(context.Background(), MustNewSequence(broken))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	rec := report.Records()[0]
	if rec.Outcome() != OutcomeFailedAdvisory {
		t.Errorf("outcome = %q, want %q", rec.Outcome(), OutcomeFailedAdvisory)
	}
	var stepErr *step.StepError
	if !errors.As(rec.Error(), &stepErr) || stepErr.Code != step.ErrCodeCheckFailed {
		t.Errorf("record error = %v, want check-failed StepError", rec.Error())
	}
	if broken.applyCalls != 0 {
		t.Error("Apply ran despite a failed precondition check")
	}
}

func TestRun_VerifyFailureIsReported(t *testing.T) {
	unverified := &fakeStep{
		id:           "tool:a",
		criticality:  step.Blocking,
		checkStatus:  step.StatusNeedsApply,
		verifyStatus: step.StatusNeedsApply,
	}
	prompter := &scriptPrompter{decisions: []ports.Decision{ports.DecisionContinue}}
	r := newTestRunner(prompter)

	report, err := r.Run(context.Background(), MustNewSequence(unverified))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	rec := report.Records()[0]
	var stepErr *step.StepError
	if !errors.As(rec.Error(), &stepErr) || stepErr.Code != step.ErrCodeVerifyFailed {
		t.Errorf("record error = %v, want verify-failed StepError", rec.Error())
	}
}

func TestRun_GateBlocksGatedStepOnly(t *testing.T) {
	gated := &fakeStep{
		id:          "tool:gated",
		criticality: step.Advisory,
		gated:       true,
		checkStatus: step.StatusNeedsApply,
	}
	ungated := needsApplyStep("tool:plain")
	gate := &staticGate{result: probe.Result{Reachable: false, Reason: probe.ReasonTimeout}}
	r := newTestRunner(nil).WithGate(gate)

	report, err := r.Run(context.Background(), MustNewSequence(gated, ungated))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if gated.applyCalls != 0 {
		t.Error("gated step applied despite unreachable gate")
	}
	if ungated.applyCalls != 1 {
		t.Error("ungated step did not apply")
	}
	if gate.calls != 1 {
		t.Errorf("gate probed %d times, want 1 (gated step only)", gate.calls)
	}

	rec := report.Records()[0]
	var stepErr *step.StepError
	if !errors.As(rec.Error(), &stepErr) || stepErr.Code != step.ErrCodeGateUnreachable {
		t.Errorf("record error = %v, want gate-unreachable StepError", rec.Error())
	}
}

func TestRun_GateReachableAllowsApply(t *testing.T) {
	gated := &fakeStep{
		id:           "tool:gated",
		criticality:  step.Blocking,
		gated:        true,
		checkStatus:  step.StatusNeedsApply,
		verifyStatus: step.StatusSatisfied,
	}
	gate := &staticGate{result: probe.Result{Reachable: true, StatusCode: 200}}
	r := newTestRunner(nil).WithGate(gate)

	report, err := r.Run(context.Background(), MustNewSequence(gated))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := report.Records()[0].Outcome(); got != OutcomeSucceeded {
		t.Errorf("outcome = %q, want %q", got, OutcomeSucceeded)
	}
}

func TestRun_ContextCancellationStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := needsApplyStep("tool:a")
	r := newTestRunner(nil)

	report, err := r.Run(ctx, MustNewSequence(s))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if report.Len() != 0 {
		t.Errorf("report has %d records after pre-run cancellation, want 0", report.Len())
	}
}

func TestRun_OrderIsPreserved(t *testing.T) {
	a := needsApplyStep("tool:a")
	b := satisfiedStep("tool:b")
	c := needsApplyStep("tool:c")
	r := newTestRunner(nil)

	report, err := r.Run(context.Background(), MustNewSequence(a, b, c))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := []string{"tool:a", "tool:b", "tool:c"}
	for i, rec := range report.Records() {
		if rec.StepID().String() != want[i] {
			t.Errorf("record %d = %q, want %q", i, rec.StepID(), want[i])
		}
	}
}

func TestPlan_ChecksWithoutApplying(t *testing.T) {
	needs := needsApplyStep("tool:a")
	done := satisfiedStep("tool:b")
	broken := &fakeStep{
		id:          "tool:c",
		criticality: step.Blocking,
		checkErr:    fmt.Errorf("cannot determine state"),
	}
	r := newTestRunner(nil)

	entries, err := r.Plan(context.Background(), MustNewSequence(needs, done, broken))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	if needs.applyCalls+done.applyCalls+broken.applyCalls != 0 {
		t.Error("Plan applied a step")
	}

	if entries[0].Status() != step.StatusNeedsApply {
		t.Errorf("entry 0 status = %q", entries[0].Status())
	}
	if entries[1].Status() != step.StatusSatisfied {
		t.Errorf("entry 1 status = %q", entries[1].Status())
	}
	if entries[2].Status() != step.StatusUnknown || entries[2].CheckError() == nil {
		t.Errorf("entry 2 = %q/%v, want unknown with check error", entries[2].Status(), entries[2].CheckError())
	}
}

func TestNewSequence_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewSequence(needsApplyStep("tool:a"), satisfiedStep("tool:a"))
	if err == nil {
		t.Error("NewSequence accepted duplicate step IDs")
	}
}

func TestReport_Summary(t *testing.T) {
	report := NewReport()
	id := step.MustNewStepID("tool:a")
	report.Add(NewRecord(id, "a", OutcomeSkipped, nil))
	report.Add(NewRecord(step.MustNewStepID("tool:b"), "b", OutcomeSucceeded, nil))
	report.Add(NewRecord(step.MustNewStepID("tool:c"), "c", OutcomeFailedAdvisory, fmt.Errorf("x")))

	s := report.Summary()
	if s.Total != 3 || s.Skipped != 1 || s.Succeeded != 1 || s.Advisory != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if !report.HasFailures() {
		t.Error("HasFailures() = false with an advisory failure recorded")
	}
	if report.AllSatisfied() {
		t.Error("AllSatisfied() = true with non-skipped outcomes")
	}
}
