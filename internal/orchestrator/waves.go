package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/engine"
	"github.com/shaiso/Gatekeeper/internal/executor"
	"github.com/shaiso/Gatekeeper/internal/registry"
	"github.com/shaiso/Gatekeeper/internal/telemetry"
)

// defaultPoolSize — размер пула воркеров внутри волны по умолчанию.
const defaultPoolSize = 4

// WaveEngine — движок пошагового выполнения волн.
//
// Волны выполняются строго по порядку; волна k+1 не стартует, пока
// волна k не осушена полностью. Волна 0 — kernel-волна: падение
// любого её шага прекращает запуск целиком, для шагов волн 1..N
// результаты не создаются. Внутри поздней волны шаги выполняются
// параллельно в ограниченном пуле; у шагов нет разделяемой памяти —
// каждый живёт в собственном дочернем процессе, единственная точка
// координации — сбор результатов.
type WaveEngine struct {
	registry *registry.Registry
	waves    registry.Waves
	executor executor.Executor
	poolSize int
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// WaveConfig — конфигурация WaveEngine.
type WaveConfig struct {
	Registry *registry.Registry
	Waves    registry.Waves
	Executor executor.Executor

	// PoolSize — максимум одновременных шагов внутри волны (default: 4).
	PoolSize int

	Logger  *slog.Logger
	Metrics *telemetry.Metrics // опционально
}

// NewWave создаёт новый WaveEngine.
func NewWave(cfg WaveConfig) *WaveEngine {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WaveEngine{
		registry: cfg.Registry,
		waves:    cfg.Waves,
		executor: cfg.Executor,
		poolSize: poolSize,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

// Run выполняет запуск по волнам.
//
// Ошибка возвращается только для структурных проблем; вердикт FAIL —
// это валидный Report. У волнового движка нет degraded режима:
// любой не-PASS результат любого tier валит вердикт.
func (e *WaveEngine) Run(ctx context.Context) (*Report, error) {
	if diags := engine.ValidateRegistry(e.registry); len(diags) > 0 {
		return nil, fmt.Errorf("%w: %d issue(s), first: %v",
			ErrInvalidRegistry, len(diags), diags[0])
	}
	if diags := engine.ValidateWaves(e.registry, e.waves); len(diags) > 0 {
		return nil, fmt.Errorf("%w: %d issue(s), first: %v",
			ErrInvalidWaves, len(diags), diags[0])
	}

	startedAt := time.Now()
	ordered := make([]*domain.StepResult, 0, e.registry.Len())

	e.logger.Info("wave run started",
		"waves", len(e.waves),
		"steps", e.registry.Len(),
		"pool_size", e.poolSize,
	)

	aborted := false

	for waveIdx, wave := range e.waves {
		if len(wave) == 0 {
			continue
		}

		waveResults := e.runWave(ctx, waveIdx, wave)
		ordered = append(ordered, waveResults...)

		// Специальный случай только у волны 0: падение kernel-шага
		// прекращает запуск, поздние волны не выполняются.
		if waveIdx == 0 && anyFailure(waveResults) {
			e.logger.Error("kernel wave failed, aborting run",
				"wave", waveIdx,
			)
			aborted = true
			break
		}
	}

	duration := time.Since(startedAt)
	summary := summarize(e.registry, ordered, duration)
	summary.Verdict = !aborted && allPassed(ordered)

	e.logger.Info("wave run finished",
		"verdict", summary.Verdict,
		"executed", len(ordered),
		"failed", summary.Failed,
		"duration", duration,
	)
	if e.metrics != nil {
		e.metrics.ObserveRun(string(domain.EngineWaves), summary.Verdict, duration)
	}

	return &Report{
		Results: ordered,
		Summary: summary,
	}, nil
}

// runWave выполняет одну волну до полного завершения.
//
// Результаты собираются в произвольном порядке завершения, но ключуются
// по ID шага, поэтому итоговый порядок волны детерминирован — это
// порядок объявления ID внутри волны. Прерывания середины волны нет.
func (e *WaveEngine) runWave(ctx context.Context, waveIdx int, wave []string) []*domain.StepResult {
	// Одиночный шаг выполняется напрямую, без накладных расходов пула.
	if len(wave) == 1 {
		return []*domain.StepResult{e.execStep(ctx, waveIdx, wave[0])}
	}

	workers := e.poolSize
	if workers > len(wave) {
		workers = len(wave)
	}

	jobs := make(chan string)
	collected := make(chan *domain.StepResult, len(wave))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stepID := range jobs {
				collected <- e.execStepSafe(ctx, waveIdx, stepID)
			}
		}()
	}

	for _, stepID := range wave {
		jobs <- stepID
	}
	close(jobs)

	wg.Wait()
	close(collected)

	byID := make(map[string]*domain.StepResult, len(wave))
	for res := range collected {
		byID[res.StepID] = res
	}

	results := make([]*domain.StepResult, 0, len(wave))
	for _, stepID := range wave {
		res, ok := byID[stepID]
		if !ok {
			// Пул не вернул результат шага — синтетический FAIL
			// вместо потери шага или паники.
			res = syntheticFailure(stepID, "worker pool returned no result")
		}
		results = append(results, res)
	}

	return results
}

// execStepSafe выполняет шаг, конвертируя панику воркера
// в синтетический FAIL-результат.
func (e *WaveEngine) execStepSafe(ctx context.Context, waveIdx int, stepID string) (res *domain.StepResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("step execution panicked",
				"step_id", stepID,
				"wave", waveIdx,
				"panic", r,
			)
			res = syntheticFailure(stepID, fmt.Sprintf("panic: %v", r))
		}
	}()

	return e.execStep(ctx, waveIdx, stepID)
}

// execStep выполняет один шаг волны.
func (e *WaveEngine) execStep(ctx context.Context, waveIdx int, stepID string) *domain.StepResult {
	step, ok := e.registry.Get(stepID)
	if !ok {
		// Недостижимо после ValidateWaves; страховка от инвалидного пула.
		return syntheticFailure(stepID, "step not found in registry")
	}

	res := e.executor.Execute(ctx, step)
	if res == nil {
		res = syntheticFailure(stepID, "executor returned no result")
	}

	e.logger.Info("step finished",
		"step_id", stepID,
		"wave", waveIdx,
		"status", res.Status,
		"reason", res.ReasonTag(),
		"duration", res.Duration,
	)
	if e.metrics != nil {
		e.metrics.ObserveStep(string(res.Status), res.Duration)
	}

	return res
}

// syntheticFailure — FAIL-результат для шага, чей результат
// не удалось получить штатно.
func syntheticFailure(stepID, detail string) *domain.StepResult {
	now := time.Now()
	return &domain.StepResult{
		StepID:     stepID,
		Status:     domain.StepStatusFail,
		Reason:     domain.ReasonException,
		Detail:     detail,
		ExitCode:   -1,
		StartedAt:  now,
		FinishedAt: now,
	}
}

// anyFailure возвращает true, если среди результатов есть падение.
func anyFailure(results []*domain.StepResult) bool {
	for _, res := range results {
		if res.Status.IsFailure() {
			return true
		}
	}
	return false
}

// allPassed возвращает true, если каждый собранный результат — PASS.
func allPassed(results []*domain.StepResult) bool {
	for _, res := range results {
		if res.Status != domain.StepStatusPass {
			return false
		}
	}
	return true
}
