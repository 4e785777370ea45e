package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/repo"
)

// ListRuns возвращает список запусков с фильтрацией.
// GET /api/v1/runs?status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	filter := repo.RunFilter{}

	// Парсим query параметры
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = domain.RunStatus(status)
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		filter.Limit = int(mustParseInt(limitStr, 50))
	} else {
		filter.Limit = 50
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		filter.Offset = int(mustParseInt(offsetStr, 0))
	}

	runs, err := h.runRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RunResponse, len(runs))
	for i, run := range runs {
		result[i] = RunFromDomain(run)
	}

	List(w, result, len(result))
}

// CreateRun создаёт новый запуск gate и публикует его в очередь.
// POST /api/v1/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	mode := domain.Mode(req.Mode)
	if mode == "" {
		mode = domain.ModeStrict
	}
	if !mode.IsValid() {
		BadRequest(w, "invalid mode: "+req.Mode)
		return
	}

	engine := domain.EngineKind(req.Engine)
	if engine == "" {
		engine = domain.EngineSequential
	}
	if engine != domain.EngineSequential && engine != domain.EngineWaves {
		BadRequest(w, "invalid engine: "+req.Engine)
		return
	}

	// Проверяем idempotency key
	if req.IdempotencyKey != "" {
		existingRun, err := h.runRepo.GetByIdempotencyKey(r.Context(), req.IdempotencyKey)
		if err == nil && existingRun != nil {
			// Возвращаем существующий запуск
			Success(w, RunFromDomain(*existingRun))
			return
		}
	}

	run := &domain.Run{
		ID:             uuid.New(),
		Mode:           mode,
		Engine:         engine,
		Status:         domain.RunStatusPending,
		Skip:           req.Skip,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      time.Now(),
	}

	if err := h.runRepo.Create(r.Context(), run); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикуем запрос в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishRunRequested(r.Context(), run.ID); err != nil {
			h.logger.Warn("failed to publish run.requested", "run_id", run.ID, "error", err)
		}
	}

	Created(w, RunFromDomain(*run))
}

// GetRun возвращает запуск по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	run, err := h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	Success(w, RunFromDomain(*run))
}

// ListRunResults возвращает результаты шагов запуска.
// GET /api/v1/runs/{id}/results
func (h *Handler) ListRunResults(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid run id")
		return
	}

	// Проверяем, что запуск существует
	_, err = h.runRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "run not found") {
		return
	}

	results, err := h.resultRepo.ListByRunID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]StepResultResponse, len(results))
	for i, res := range results {
		result[i] = StepResultFromDomain(res)
	}

	List(w, result, len(result))
}

// mustParseInt парсит строку в int с дефолтным значением.
func mustParseInt(s string, defaultVal int64) int64 {
	if n, err := json.Number(s).Int64(); err == nil {
		return n
	}
	return defaultVal
}
