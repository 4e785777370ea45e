package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/mq"
	"github.com/shaiso/Gatekeeper/internal/orchestrator"
	"github.com/shaiso/Gatekeeper/internal/repo"
)

// handleRunRequested обрабатывает запрос из очереди runs.requested.
func (r *Runner) handleRunRequested(ctx context.Context, delivery *mq.Delivery) error {
	// Парсим payload
	payload, err := mq.ParsePayload[mq.RunRequestedPayload](&delivery.Message)
	if err != nil {
		r.logger.Error("failed to parse run.requested payload", "error", err)
		return err
	}

	r.logger.Debug("received run.requested event", "run_id", payload.RunID)

	// Обрабатываем запуск
	if err := r.processRun(ctx, payload.RunID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrRunNotPending) {
			r.logger.Debug("run not processed", "run_id", payload.RunID, "reason", err)
			return nil
		}
		r.logger.Error("failed to process run", "run_id", payload.RunID, "error", err)
		return err
	}

	return nil
}

// processRun загружает запуск из БД, выполняет gate и фиксирует результат.
func (r *Runner) processRun(ctx context.Context, runID uuid.UUID) error {
	// 1. Загружаем запуск из БД
	run, err := r.runRepo.GetByID(ctx, runID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return fmt.Errorf("get run: %w", err)
	}

	// 2. Проверяем статус
	if run.Status != domain.RunStatusPending {
		return ErrRunNotPending
	}

	// 3. Помечаем как running
	run.MarkRunning()
	if err := r.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to running: %w", err)
	}

	r.logger.Info("run started",
		"run_id", run.ID,
		"mode", run.Mode,
		"engine", run.Engine,
	)

	// 4. Выполняем gate выбранным движком
	rep, execErr := r.execute(ctx, run)

	// 5. Структурная ошибка — gate не стартовал
	if execErr != nil {
		run.MarkError(execErr.Error())
		if err := r.runRepo.Update(ctx, run); err != nil {
			return fmt.Errorf("update run to error: %w", err)
		}

		r.logger.Error("run failed to start",
			"run_id", run.ID,
			"error", execErr,
		)

		return r.publishCompletion(ctx, run)
	}

	// 6. Персистим результаты шагов
	if err := r.resultRepo.CreateBatch(ctx, run.ID, rep.Results); err != nil {
		return fmt.Errorf("persist step results: %w", err)
	}

	// 7. Публикуем событие по каждому шагу
	r.publishStepEvents(ctx, run.ID, rep)

	// 8. Фиксируем сводку и вердикт
	run.MarkFinished(rep.Summary)
	if err := r.runRepo.Update(ctx, run); err != nil {
		return fmt.Errorf("update run to finished: %w", err)
	}

	if r.metrics != nil {
		r.metrics.ObserveRun(string(run.Engine), rep.Verdict(), run.Duration())
	}

	r.logger.Info("run finished",
		"run_id", run.ID,
		"status", run.Status,
		"verdict", rep.Verdict(),
		"passed", rep.Summary.Passed,
		"failed", rep.Summary.Failed,
		"skipped", rep.Summary.Skipped,
	)

	return r.publishCompletion(ctx, run)
}

// execute выполняет запуск движком, выбранным в run.Engine.
func (r *Runner) execute(ctx context.Context, run *domain.Run) (*orchestrator.Report, error) {
	switch run.Engine {
	case domain.EngineWaves:
		eng := orchestrator.NewWave(orchestrator.WaveConfig{
			Registry: r.registry,
			Waves:    r.waves,
			Executor: r.executor,
			PoolSize: r.poolSize,
			Logger:   r.logger,
			Metrics:  r.metrics,
		})
		return eng.Run(ctx)

	case domain.EngineSequential, "":
		skipSet := make(map[string]struct{}, len(run.Skip))
		for _, id := range run.Skip {
			skipSet[id] = struct{}{}
		}

		eng := orchestrator.NewSequential(orchestrator.SequentialConfig{
			Registry: r.registry,
			Executor: r.executor,
			Override: r.override,
			Ledger:   r.ledger,
			Logger:   r.logger,
			Metrics:  r.metrics,
		})
		return eng.Run(ctx, orchestrator.RunOptions{
			Mode: run.Mode,
			Skip: skipSet,
		})

	default:
		return nil, fmt.Errorf("unknown engine: %s", run.Engine)
	}
}

// publishStepEvents публикует step.completed для каждого результата.
func (r *Runner) publishStepEvents(ctx context.Context, runID uuid.UUID, rep *orchestrator.Report) {
	if r.publisher == nil {
		return
	}

	for _, res := range rep.Results {
		payload := mq.StepCompletedPayload{
			RunID:  runID,
			StepID: res.StepID,
			Status: string(res.Status),
			Reason: res.ReasonTag(),
			Detail: res.Detail,
		}

		if err := r.publisher.PublishStepCompleted(ctx, payload); err != nil {
			r.logger.Warn("failed to publish step.completed",
				"run_id", runID,
				"step_id", res.StepID,
				"error", err,
			)
		}
	}
}

// publishCompletion публикует событие run.completed.
func (r *Runner) publishCompletion(ctx context.Context, run *domain.Run) error {
	if r.publisher == nil {
		r.logger.Warn("publisher not available, skipping run.completed publish",
			"run_id", run.ID,
		)
		return nil
	}

	payload := mq.RunCompletedPayload{
		RunID:  run.ID,
		Status: string(run.Status),
	}
	if run.Summary != nil {
		payload.Verdict = run.Summary.Verdict
		payload.Passed = run.Summary.Passed
		payload.Failed = run.Summary.Failed
		payload.Skipped = run.Summary.Skipped
	}

	if err := r.publisher.PublishRunCompleted(ctx, payload); err != nil {
		r.logger.Warn("failed to publish run.completed",
			"run_id", run.ID,
			"error", err,
		)
		// Не возвращаем ошибку — запуск уже обновлён в БД
	}

	return nil
}
