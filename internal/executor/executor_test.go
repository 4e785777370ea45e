package executor

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
)

func cmdStep(id, command string, timeoutSec int) *domain.Step {
	return &domain.Step{
		ID:         id,
		Name:       id,
		Tier:       domain.TierGovernance,
		Severity:   domain.SeverityWarning,
		Category:   domain.CategoryCorrectness,
		Command:    command,
		TimeoutSec: timeoutSec,
	}
}

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
}

func TestExecute_ZeroExitIsPass(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	res := e.Execute(context.Background(), cmdStep("ok", "true", 10))

	if res.Status != domain.StepStatusPass {
		t.Errorf("expected PASS, got %s", res.Status)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
	if res.Reason != "" {
		t.Errorf("expected empty reason for PASS, got %s", res.Reason)
	}
}

func TestExecute_NonzeroExitIsFail(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	res := e.Execute(context.Background(), cmdStep("bad", "exit 3", 10))

	if res.Status != domain.StepStatusFail {
		t.Errorf("expected FAIL, got %s", res.Status)
	}
	if res.Reason != domain.ReasonNonzeroExit {
		t.Errorf("expected nonzero_exit, got %s", res.Reason)
	}
	// Код выхода сохраняется как есть.
	if res.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", res.ExitCode)
	}
}

func TestExecute_CapturesOutput(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	res := e.Execute(context.Background(),
		cmdStep("echo", "echo out-line; echo err-line >&2", 10))

	if res.Status != domain.StepStatusPass {
		t.Fatalf("expected PASS, got %s", res.Status)
	}
	if !strings.Contains(res.Stdout, "out-line") {
		t.Errorf("stdout not captured: %q", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "err-line") {
		t.Errorf("stderr not captured: %q", res.Stderr)
	}
}

func TestExecute_Timeout(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	started := time.Now()
	res := e.Execute(context.Background(), cmdStep("slow", "sleep 30", 1))
	elapsed := time.Since(started)

	if res.Status != domain.StepStatusTimeout {
		t.Fatalf("expected TIMEOUT, got %s", res.Status)
	}
	if res.Reason != domain.ReasonTimeout {
		t.Errorf("expected reason timeout, got %s", res.Reason)
	}
	if res.ExitCode != -1 {
		t.Errorf("expected exit code -1, got %d", res.ExitCode)
	}
	// Процесс убит по таймауту, а не дожил до конца sleep.
	if elapsed > 5*time.Second {
		t.Errorf("timeout did not kill the process: elapsed %v", elapsed)
	}
}

func TestExecute_KillsProcessGroup(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	// Дочерний sleep в фоне: убийство только shell оставило бы его жить
	// и Wait ждал бы закрытия pipe до конца sleep.
	started := time.Now()
	res := e.Execute(context.Background(),
		cmdStep("tree", "sleep 30 & sleep 30", 1))
	elapsed := time.Since(started)

	if res.Status != domain.StepStatusTimeout {
		t.Fatalf("expected TIMEOUT, got %s", res.Status)
	}
	if elapsed > 5*time.Second {
		t.Errorf("process subtree survived the kill: elapsed %v", elapsed)
	}
}

func TestExecute_StartFailureIsException(t *testing.T) {
	e := New(Config{Shell: "/nonexistent/shell-binary"})

	res := e.Execute(context.Background(), cmdStep("broken", "true", 10))

	if res.Status != domain.StepStatusFail {
		t.Errorf("expected FAIL, got %s", res.Status)
	}
	if res.Reason != domain.ReasonException {
		t.Errorf("expected exception, got %s", res.Reason)
	}
	if res.ExitCode != -1 {
		t.Errorf("expected exit code -1, got %d", res.ExitCode)
	}
	if res.Detail == "" {
		t.Error("expected start error text in detail")
	}
}

func TestExecute_ContextCancellation(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	res := e.Execute(ctx, cmdStep("cancelled", "sleep 30", 60))
	elapsed := time.Since(started)

	if res.Status != domain.StepStatusFail {
		t.Errorf("expected FAIL on cancellation, got %s", res.Status)
	}
	if res.Reason != domain.ReasonException {
		t.Errorf("expected exception, got %s", res.Reason)
	}
	if elapsed > 5*time.Second {
		t.Errorf("cancellation did not kill the process: elapsed %v", elapsed)
	}
}

func TestExecute_WorkDir(t *testing.T) {
	requireUnix(t)
	dir := t.TempDir()
	e := New(Config{WorkDir: dir})

	res := e.Execute(context.Background(), cmdStep("pwd", "pwd", 10))

	if res.Status != domain.StepStatusPass {
		t.Fatalf("expected PASS, got %s", res.Status)
	}
	if !strings.Contains(res.Stdout, dir) {
		t.Errorf("expected workdir %q in output, got %q", dir, res.Stdout)
	}
}

func TestExecute_CommandChain(t *testing.T) {
	requireUnix(t)
	e := New(Config{})

	// Вторая под-команда не выполняется при падении первой.
	cmd := domain.JoinCommands("false", "echo should-not-run")
	res := e.Execute(context.Background(), cmdStep("chain", cmd, 10))

	if res.Status != domain.StepStatusFail {
		t.Errorf("expected FAIL, got %s", res.Status)
	}
	if strings.Contains(res.Stdout, "should-not-run") {
		t.Errorf("second command ran after first failed: %q", res.Stdout)
	}
}
