package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Gatekeeper/internal/executor"
	"github.com/shaiso/Gatekeeper/internal/ledger"
	"github.com/shaiso/Gatekeeper/internal/mq"
	"github.com/shaiso/Gatekeeper/internal/override"
	"github.com/shaiso/Gatekeeper/internal/registry"
	"github.com/shaiso/Gatekeeper/internal/repo"
	"github.com/shaiso/Gatekeeper/internal/telemetry"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 10
	defaultPrefetch     = 1
)

// Runner выполняет запуски gate.
//
// Runner — stateless компонент системы, который:
//   - Получает запросы на выполнение из очереди RabbitMQ (event-driven)
//   - Периодически проверяет pending запуски в БД (polling fallback)
//   - Выполняет gate выбранным движком (sequential/waves)
//   - Персистит результаты шагов и сводку
//   - Публикует run.completed с итоговым вердиктом
//
// Runners масштабируются горизонтально — несколько экземпляров
// могут потреблять из одной очереди.
type Runner struct {
	// Repositories
	runRepo    *repo.RunRepo
	resultRepo *repo.ResultRepo

	// MQ
	publisher *mq.Publisher
	conn      *mq.Connection

	// Execution
	registry *registry.Registry
	waves    registry.Waves
	executor executor.Executor
	override override.Checker
	ledger   ledger.Recorder
	poolSize int
	metrics  *telemetry.Metrics

	// Consumer
	consumer *mq.Consumer

	// Configuration
	pollInterval time.Duration
	batchSize    int

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Runner.
type Config struct {
	// Repositories
	RunRepo    *repo.RunRepo
	ResultRepo *repo.ResultRepo

	// MQ
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Execution
	Registry *registry.Registry
	Waves    registry.Waves
	Executor executor.Executor
	Override override.Checker // опционально
	Ledger   ledger.Recorder  // опционально
	PoolSize int              // размер пула волнового движка
	Metrics  *telemetry.Metrics

	// Polling configuration
	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // количество запусков за один poll (default: 10)

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Runner.
func New(cfg Config) *Runner {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := cfg.Registry
	if reg == nil {
		reg = registry.New(registry.DefaultSteps())
	}

	waves := cfg.Waves
	if waves == nil {
		waves = registry.DefaultWaves()
	}

	exec := cfg.Executor
	if exec == nil {
		exec = executor.New(executor.Config{Logger: logger})
	}

	ov := cfg.Override
	if ov == nil {
		ov = override.Nop{}
	}

	led := cfg.Ledger
	if led == nil {
		led = ledger.Nop{}
	}

	return &Runner{
		runRepo:      cfg.RunRepo,
		resultRepo:   cfg.ResultRepo,
		publisher:    cfg.Publisher,
		conn:         cfg.Conn,
		registry:     reg,
		waves:        waves,
		executor:     exec,
		override:     ov,
		ledger:       led,
		poolSize:     cfg.PoolSize,
		metrics:      cfg.Metrics,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Start запускает Runner.
//
// Запускает:
//   - Consumer для runs.requested
//   - Polling горутину для fallback
func (r *Runner) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.logger.Info("starting runner",
		"poll_interval", r.pollInterval,
		"batch_size", r.batchSize,
		"steps", r.registry.Len(),
	)

	// Создаём consumer
	r.consumer = mq.NewConsumer(r.conn, r.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueRunsRequested),
		Handler:  r.handleRunRequested,
		Prefetch: defaultPrefetch,
	})

	// Запускаем consumer
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("run consumer error", "error", err)
		}
	}()

	// Запускаем polling
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.pollLoop(ctx)
	}()

	r.logger.Info("runner started")
	return nil
}

// Stop останавливает Runner.
func (r *Runner) Stop() {
	r.stoppedMu.Lock()
	r.stopped = true
	r.stoppedMu.Unlock()

	r.logger.Info("stopping runner...")

	if r.cancelFunc != nil {
		r.cancelFunc()
	}

	if r.consumer != nil {
		r.consumer.Stop()
	}

	// Ждём завершения горутин
	r.wg.Wait()

	r.logger.Info("runner stopped")
}

// IsStopped проверяет, остановлен ли Runner.
func (r *Runner) IsStopped() bool {
	r.stoppedMu.RLock()
	defer r.stoppedMu.RUnlock()
	return r.stopped
}

// pollLoop — цикл polling для fallback.
func (r *Runner) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу при старте (подхватываем запуски, созданные пока были выключены)
	r.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (r *Runner) poll(ctx context.Context) {
	runs, err := r.runRepo.ListPending(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("failed to list pending runs", "error", err)
		return
	}

	if len(runs) == 0 {
		return
	}

	r.logger.Debug("poll found pending runs", "count", len(runs))

	for i := range runs {
		run := &runs[i]

		if err := r.processRun(ctx, run.ID); err != nil {
			r.logger.Error("failed to process run from poll",
				"run_id", run.ID,
				"error", err,
			)
		}
	}
}
