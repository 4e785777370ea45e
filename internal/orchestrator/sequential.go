package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/engine"
	"github.com/shaiso/Gatekeeper/internal/executor"
	"github.com/shaiso/Gatekeeper/internal/ledger"
	"github.com/shaiso/Gatekeeper/internal/override"
	"github.com/shaiso/Gatekeeper/internal/registry"
	"github.com/shaiso/Gatekeeper/internal/telemetry"
)

// SequentialEngine — однопоточный движок выполнения реестра.
//
// Шаги выполняются строго по одному в порядке объявления реестра;
// порядок объявления считается валидным топологическим порядком,
// пересортировка не выполняется. Раннего прерывания по tier нет:
// даже KERNEL-падение не останавливает цикл — отсекаются только
// шаги, структурно зависящие от упавших (dependency-skip).
type SequentialEngine struct {
	registry *registry.Registry
	executor executor.Executor
	override override.Checker
	ledger   ledger.Recorder
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// SequentialConfig — конфигурация SequentialEngine.
//
// Override и Ledger — внешние коллабораторы; nil заменяется
// на no-op реализацию.
type SequentialConfig struct {
	Registry *registry.Registry
	Executor executor.Executor
	Override override.Checker
	Ledger   ledger.Recorder
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics // опционально
}

// NewSequential создаёт новый SequentialEngine.
func NewSequential(cfg SequentialConfig) *SequentialEngine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ov := cfg.Override
	if ov == nil {
		ov = override.Nop{}
	}

	led := cfg.Ledger
	if led == nil {
		led = ledger.Nop{}
	}

	return &SequentialEngine{
		registry: cfg.Registry,
		executor: cfg.Executor,
		override: ov,
		ledger:   led,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

// RunOptions — параметры одного запуска.
type RunOptions struct {
	// Mode — режим выполнения. Пустой — strict.
	Mode domain.Mode

	// Skip — skip-set вызывающей стороны: шаги, которые не выполняются
	// и не проверяют зависимости.
	Skip map[string]struct{}
}

// Run выполняет один запуск gate.
//
// Возвращает ошибку только для структурных проблем (реестр не прошёл
// валидацию, неизвестный режим) — падения шагов представлены
// в Report и ошибкой не являются.
func (e *SequentialEngine) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeStrict
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMode, opts.Mode)
	}

	// Структурные ошибки фатальны для старта запуска.
	if diags := engine.ValidateRegistry(e.registry); len(diags) > 0 {
		return nil, fmt.Errorf("%w: %d issue(s), first: %v",
			ErrInvalidRegistry, len(diags), diags[0])
	}

	// kernel-only — это префильтр: реестр сужается до KERNEL-шагов,
	// дальше работает тот же цикл без изменений.
	reg := e.registry
	if mode == domain.ModeKernelOnly {
		reg = reg.KernelOnly()
	}

	startedAt := time.Now()

	// Состояние одного запуска; не разделяется между запусками.
	results := make(map[string]*domain.StepResult, reg.Len())
	ordered := make([]*domain.StepResult, 0, reg.Len())
	failing := make(map[string]struct{})
	var degradations []*domain.DegradationRecord

	e.logger.Info("sequential run started",
		"mode", mode,
		"steps", reg.Len(),
		"skipped_by_user", len(opts.Skip),
	)

	for i := range reg.Steps() {
		step := &reg.Steps()[i]

		res := e.evalStep(ctx, step, opts.Skip, results)
		results[step.ID] = res
		ordered = append(ordered, res)

		e.logger.Info("step finished",
			"step_id", step.ID,
			"status", res.Status,
			"reason", res.ReasonTag(),
			"duration", res.Duration,
		)
		if e.metrics != nil {
			e.metrics.ObserveStep(string(res.Status), res.Duration)
		}

		if !res.Status.IsFailure() {
			continue
		}

		shouldBlock := step.Tier == domain.TierKernel

		if mode == domain.ModeDegraded && !shouldBlock {
			// Не-KERNEL падение в degraded режиме: фиксируем деградацию
			// и продолжаем, не трогая failing-set.
			rec := degradationRecord(step, res)
			degradations = append(degradations, rec)

			if err := e.ledger.Record(ctx, rec); err != nil {
				e.logger.Warn("failed to record degradation",
					"step_id", step.ID,
					"error", err,
				)
			}
			continue
		}

		failing[step.ID] = struct{}{}
	}

	duration := time.Since(startedAt)
	summary := summarize(reg, ordered, duration)

	// degraded: вердикт определяют только KERNEL-падения.
	// strict/kernel-only: любой элемент failing-set валит вердикт —
	// в strict туда попадает падение любого tier, включая OPTIONAL.
	if mode == domain.ModeDegraded {
		summary.Verdict = len(summary.KernelFailures) == 0
	} else {
		summary.Verdict = len(failing) == 0
	}

	e.logger.Info("sequential run finished",
		"mode", mode,
		"verdict", summary.Verdict,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", duration,
	)
	if e.metrics != nil {
		e.metrics.ObserveRun(string(domain.EngineSequential), summary.Verdict, duration)
	}

	return &Report{
		Results:      ordered,
		Summary:      summary,
		Degradations: degradations,
	}, nil
}

// evalStep решает судьбу одного шага: SKIP по одной из трёх причин
// или выполнение через executor.
func (e *SequentialEngine) evalStep(
	ctx context.Context,
	step *domain.Step,
	skip map[string]struct{},
	results map[string]*domain.StepResult,
) *domain.StepResult {
	// 1. Skip-set вызывающей стороны: без проверки зависимостей,
	// без выполнения.
	if _, skipped := skip[step.ID]; skipped {
		return domain.SkipResult(step.ID, domain.ReasonSkippedByUser, "")
	}

	// 2. Dependency-skip: зависимость без результата или не-PASS.
	// Распространяется транзитивно — SKIP зависимости тоже не PASS.
	for _, dep := range step.DependsOn {
		depRes, ok := results[dep]
		if !ok || depRes.Status != domain.StepStatusPass {
			return domain.SkipResult(step.ID, domain.ReasonDependencyFailed, dep)
		}
	}

	// 3. Внешний override. Ошибка коллаборатора = "не overridden".
	active, err := e.override.IsOverrideActive(ctx, step.ID)
	if err != nil {
		e.logger.Warn("override checker failed, treating as inactive",
			"step_id", step.ID,
			"error", err,
		)
		active = false
	}
	if active {
		return domain.SkipResult(step.ID, domain.ReasonOverrideActive, "")
	}

	// 4. Выполнение.
	return e.executor.Execute(ctx, step)
}

// degradationRecord формирует запись деградации для падения шага.
func degradationRecord(step *domain.Step, res *domain.StepResult) *domain.DegradationRecord {
	msg := fmt.Sprintf("step %s failed (exit %d)", step.ID, res.ExitCode)
	if res.Status == domain.StepStatusTimeout {
		msg = fmt.Sprintf("step %s timed out after %ds", step.ID, step.TimeoutSec)
	}

	return &domain.DegradationRecord{
		Timestamp: res.FinishedAt,
		StepID:    step.ID,
		StepName:  step.Name,
		Tier:      step.Tier,
		Status:    res.Status,
		Reason:    res.ReasonTag(),
		Message:   msg,
		Severity:  step.Severity,
	}
}
