// Gatekeeper Runner — выполняет запуски gate.
//
// Runner:
//   - Получает запросы run.requested из RabbitMQ
//   - Выполняет gate выбранным движком (sequential/waves)
//   - Персистит результаты шагов и сводку
//   - Публикует run.completed с вердиктом
//
// Runners масштабируются горизонтально.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Gatekeeper/internal/executor"
	"github.com/shaiso/Gatekeeper/internal/ledger"
	"github.com/shaiso/Gatekeeper/internal/mq"
	"github.com/shaiso/Gatekeeper/internal/override"
	"github.com/shaiso/Gatekeeper/internal/repo"
	"github.com/shaiso/Gatekeeper/internal/runner"
	"github.com/shaiso/Gatekeeper/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger("gatekeeper-runner")
	logger.Info("starting gatekeeper-runner")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Создаём репозитории
	runRepo := repo.NewRunRepo(pool)
	resultRepo := repo.NewResultRepo(pool)

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err = mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		// Создаём топологию
		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Override-файл и ledger задаются окружением
	var ov override.Checker = override.Nop{}
	if path := os.Getenv("OVERRIDE_FILE"); path != "" {
		fc, err := override.LoadFile(path)
		if err != nil {
			logger.Error("failed to load override file", "path", path, "error", err)
			os.Exit(1)
		}
		ov = fc
	}

	var led ledger.Recorder = ledger.Nop{}
	if path := os.Getenv("LEDGER_FILE"); path != "" {
		fr, err := ledger.OpenFile(path)
		if err != nil {
			logger.Error("failed to open ledger file", "path", path, "error", err)
			os.Exit(1)
		}
		defer fr.Close()
		led = fr
	}

	poolSize := 0
	if v := os.Getenv("WAVE_POOL_SIZE"); v != "" {
		poolSize, _ = strconv.Atoi(v)
	}

	// Создаём runner
	r := runner.New(runner.Config{
		RunRepo:    runRepo,
		ResultRepo: resultRepo,
		Publisher:  publisher,
		Conn:       mqConn,
		Executor: executor.New(executor.Config{
			WorkDir: os.Getenv("GATE_WORKDIR"),
			Logger:  logger,
		}),
		Override: ov,
		Ledger:   led,
		PoolSize: poolSize,
		Metrics:  telemetry.NewMetrics(),
		Logger:   logger,
	})

	// Запускаем runner
	if err := r.Start(ctx); err != nil {
		logger.Error("failed to start runner", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("RUNNER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем runner
	r.Stop()
	logger.Info("gatekeeper-runner stopped")
}
