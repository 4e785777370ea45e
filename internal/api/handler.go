package api

import (
	"log/slog"

	"github.com/shaiso/Gatekeeper/internal/mq"
	"github.com/shaiso/Gatekeeper/internal/registry"
	"github.com/shaiso/Gatekeeper/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	registry     *registry.Registry
	runRepo      *repo.RunRepo
	resultRepo   *repo.ResultRepo
	scheduleRepo *repo.ScheduleRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Registry     *registry.Registry
	RunRepo      *repo.RunRepo
	ResultRepo   *repo.ResultRepo
	ScheduleRepo *repo.ScheduleRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		registry:     cfg.Registry,
		runRepo:      cfg.RunRepo,
		resultRepo:   cfg.ResultRepo,
		scheduleRepo: cfg.ScheduleRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
	}
}
