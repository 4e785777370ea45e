package domain

import (
	"time"

	"github.com/google/uuid"
)

// EngineKind — какой движок выполняет запуск.
type EngineKind string

const (
	// EngineSequential — последовательный движок (шаги в порядке реестра).
	EngineSequential EngineKind = "sequential"

	// EngineWaves — волновой движок с параллелизмом внутри волны.
	EngineWaves EngineKind = "waves"
)

// Run — один запуск gate.
//
// Run создаётся когда:
// - Пользователь запускает gate вручную (через API/CLI)
// - Scheduler создаёт запуск по расписанию
// - CI-система дергает API на merge gate
type Run struct {
	// ID — уникальный идентификатор запуска.
	ID uuid.UUID `json:"id"`

	// Mode — режим выполнения (strict/degraded/kernel-only).
	// Для волнового движка режим не применяется и хранится как strict.
	Mode Mode `json:"mode"`

	// Engine — движок выполнения (sequential/waves).
	Engine EngineKind `json:"engine"`

	// Status — текущий статус запуска.
	Status RunStatus `json:"status"`

	// Skip — skip-set, переданный вызывающей стороной.
	Skip []string `json:"skip,omitempty"`

	// Summary — сводка; заполняется после завершения.
	Summary *RunSummary `json:"summary,omitempty"`

	// Error — текст ошибки для RunStatusError (структурные ошибки реестра).
	Error string `json:"error,omitempty"`

	// IdempotencyKey — ключ идемпотентности для scheduled запусков:
	// "{schedule_id}_{next_due_at_unix}".
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания запуска.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если запуск ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если запуск завершён.
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит запуск в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkFinished фиксирует сводку и выставляет статус по вердикту.
func (r *Run) MarkFinished(summary *RunSummary) {
	now := time.Now()
	r.FinishedAt = &now
	r.Summary = summary
	if summary.Verdict {
		r.Status = RunStatusPassed
	} else {
		r.Status = RunStatusFailed
	}
}

// MarkError переводит запуск в статус ERROR (не стартовал).
func (r *Run) MarkError(msg string) {
	now := time.Now()
	r.Status = RunStatusError
	r.FinishedAt = &now
	r.Error = msg
}
