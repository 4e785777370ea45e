package executor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
)

// Executor — интерфейс выполнения одного шага.
//
// Движки зависят от интерфейса, а не от реализации: в тестах
// подставляется фейк, в продакшене — ProcessExecutor.
type Executor interface {
	Execute(ctx context.Context, step *domain.Step) *domain.StepResult
}

// ProcessExecutor выполняет команду шага через shell в отдельном процессе.
type ProcessExecutor struct {
	// WorkDir — рабочая директория команд. Пустая — текущая.
	WorkDir string

	// Env — окружение дочернего процесса. nil — наследуется родительское.
	Env []string

	// Shell — интерпретатор команды. По умолчанию "sh".
	Shell string

	logger *slog.Logger
}

// Config — конфигурация ProcessExecutor.
type Config struct {
	WorkDir string
	Env     []string
	Shell   string
	Logger  *slog.Logger
}

// New создаёт новый ProcessExecutor.
func New(cfg Config) *ProcessExecutor {
	shell := cfg.Shell
	if shell == "" {
		shell = "sh"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ProcessExecutor{
		WorkDir: cfg.WorkDir,
		Env:     cfg.Env,
		Shell:   shell,
		logger:  logger,
	}
}

// Execute выполняет команду шага и возвращает типизированный результат.
//
// Исходы:
//   - код выхода 0 → PASS
//   - ненулевой код → FAIL / nonzero_exit
//   - превышение step.TimeoutSec → убийство всей process group,
//     TIMEOUT / timeout, exit_code -1
//   - ошибка запуска процесса → FAIL / exception с текстом ошибки
//
// Единственный внешний эффект — то, что делает сама команда;
// повторных попыток executor не делает.
func (e *ProcessExecutor) Execute(ctx context.Context, step *domain.Step) *domain.StepResult {
	cmd := exec.Command(e.Shell, "-c", step.Command)
	cmd.Dir = e.WorkDir
	cmd.Env = e.Env

	// Собственная process group: сигнал по таймауту должен накрыть
	// всё поддерево, а не только верхний shell.
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startedAt := time.Now()

	if err := cmd.Start(); err != nil {
		finishedAt := time.Now()
		e.logger.Error("failed to start step command",
			"step_id", step.ID,
			"error", err,
		)
		return &domain.StepResult{
			StepID:     step.ID,
			Status:     domain.StepStatusFail,
			Reason:     domain.ReasonException,
			Detail:     err.Error(),
			ExitCode:   -1,
			Duration:   finishedAt.Sub(startedAt),
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		}
	}

	pid := cmd.Process.Pid
	timeout := time.Duration(step.TimeoutSec) * time.Second

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false

	select {
	case <-ctx.Done():
		// Запуск отменён целиком: убиваем группу и репортим exception.
		killProcessGroup(pid)
		<-done // reap, чтобы не оставить зомби
		finishedAt := time.Now()
		return &domain.StepResult{
			StepID:     step.ID,
			Status:     domain.StepStatusFail,
			Reason:     domain.ReasonException,
			Detail:     ctx.Err().Error(),
			ExitCode:   -1,
			Duration:   finishedAt.Sub(startedAt),
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		}

	case <-timer.C:
		killProcessGroup(pid)
		<-done // reap
		timedOut = true

	case waitErr = <-done:
	}

	finishedAt := time.Now()
	duration := finishedAt.Sub(startedAt)

	if timedOut {
		e.logger.Warn("step timed out",
			"step_id", step.ID,
			"timeout_sec", step.TimeoutSec,
		)
		return &domain.StepResult{
			StepID:     step.ID,
			Status:     domain.StepStatusTimeout,
			Reason:     domain.ReasonTimeout,
			ExitCode:   -1,
			Duration:   duration,
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		}
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// Wait упал не из-за кода выхода — считаем exception.
			return &domain.StepResult{
				StepID:     step.ID,
				Status:     domain.StepStatusFail,
				Reason:     domain.ReasonException,
				Detail:     waitErr.Error(),
				ExitCode:   -1,
				Duration:   duration,
				Stdout:     stdout.String(),
				Stderr:     stderr.String(),
				StartedAt:  startedAt,
				FinishedAt: finishedAt,
			}
		}
	}

	result := &domain.StepResult{
		StepID:     step.ID,
		ExitCode:   exitCode,
		Duration:   duration,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	if exitCode == 0 {
		result.Status = domain.StepStatusPass
	} else {
		result.Status = domain.StepStatusFail
		result.Reason = domain.ReasonNonzeroExit
	}

	return result
}
