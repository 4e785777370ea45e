package domain

import (
	"testing"
	"time"
)

func TestRun_Lifecycle(t *testing.T) {
	run := &Run{Status: RunStatusPending}

	if run.IsFinished() {
		t.Error("pending run must not be finished")
	}

	run.MarkRunning()
	if run.Status != RunStatusRunning {
		t.Errorf("expected RUNNING, got %s", run.Status)
	}
	if run.StartedAt == nil {
		t.Fatal("expected started_at set")
	}
	if run.IsFinished() {
		t.Error("running run must not be finished")
	}

	run.MarkFinished(&RunSummary{Verdict: true, Passed: 3})
	if run.Status != RunStatusPassed {
		t.Errorf("expected PASSED, got %s", run.Status)
	}
	if run.FinishedAt == nil {
		t.Fatal("expected finished_at set")
	}
	if !run.IsFinished() {
		t.Error("passed run must be finished")
	}
	if run.Summary == nil || run.Summary.Passed != 3 {
		t.Errorf("summary not recorded: %+v", run.Summary)
	}
}

func TestRun_MarkFinished_FailedVerdict(t *testing.T) {
	run := &Run{Status: RunStatusRunning}
	run.MarkFinished(&RunSummary{Verdict: false, Failed: 1})

	if run.Status != RunStatusFailed {
		t.Errorf("expected FAILED, got %s", run.Status)
	}
}

func TestRun_MarkError(t *testing.T) {
	run := &Run{Status: RunStatusPending}
	run.MarkError("registry failed validation")

	if run.Status != RunStatusError {
		t.Errorf("expected ERROR, got %s", run.Status)
	}
	if run.Error == "" {
		t.Error("expected error message recorded")
	}
	if !run.IsFinished() {
		t.Error("error run must be terminal")
	}
}

func TestRun_Duration(t *testing.T) {
	run := &Run{}
	if run.Duration() != 0 {
		t.Errorf("expected 0 for unstarted run, got %v", run.Duration())
	}

	started := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	finished := started.Add(42 * time.Second)
	run.StartedAt = &started
	run.FinishedAt = &finished

	if run.Duration() != 42*time.Second {
		t.Errorf("expected 42s, got %v", run.Duration())
	}
}

func TestReasonTag(t *testing.T) {
	res := &StepResult{Reason: ReasonDependencyFailed, Detail: "build"}
	if got := res.ReasonTag(); got != "dependency_failed:build" {
		t.Errorf("expected dependency_failed:build, got %s", got)
	}

	// Без detail тег — голый код причины.
	res = &StepResult{Reason: ReasonDependencyFailed}
	if got := res.ReasonTag(); got != "dependency_failed" {
		t.Errorf("expected dependency_failed, got %s", got)
	}

	res = &StepResult{Reason: ReasonNonzeroExit, Detail: "ignored"}
	if got := res.ReasonTag(); got != "nonzero_exit" {
		t.Errorf("expected nonzero_exit, got %s", got)
	}
}

func TestStepStatus_IsFailure(t *testing.T) {
	if !StepStatusFail.IsFailure() || !StepStatusTimeout.IsFailure() {
		t.Error("FAIL and TIMEOUT must be failures")
	}
	if StepStatusPass.IsFailure() || StepStatusSkip.IsFailure() {
		t.Error("PASS and SKIP must not be failures")
	}
}

func TestMode_IsValid(t *testing.T) {
	for _, m := range []Mode{ModeStrict, ModeDegraded, ModeKernelOnly} {
		if !m.IsValid() {
			t.Errorf("expected %s to be valid", m)
		}
	}
	if Mode("turbo").IsValid() {
		t.Error("unknown mode must be invalid")
	}
}

func TestJoinCommands(t *testing.T) {
	got := JoinCommands("go build ./...", "go vet ./...")
	want := "go build ./... && go vet ./..."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
