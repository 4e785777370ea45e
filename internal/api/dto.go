package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Gatekeeper/internal/domain"
)

// Step DTOs

// StepResponse — ответ с описанием шага реестра.
type StepResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tier        string   `json:"tier"`
	Severity    string   `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	TimeoutSec  int      `json:"timeout_sec"`
	DependsOn   []string `json:"depends_on,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// StepFromDomain конвертирует domain.Step в StepResponse.
func StepFromDomain(s domain.Step) StepResponse {
	return StepResponse{
		ID:          s.ID,
		Name:        s.Name,
		Tier:        string(s.Tier),
		Severity:    string(s.Severity),
		Category:    string(s.Category),
		Description: s.Description,
		TimeoutSec:  s.TimeoutSec,
		DependsOn:   s.DependsOn,
		Tags:        s.Tags,
	}
}

// Run DTOs

// CreateRunRequest — запрос на создание запуска.
type CreateRunRequest struct {
	Mode           string   `json:"mode,omitempty"`
	Engine         string   `json:"engine,omitempty"`
	Skip           []string `json:"skip,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// RunResponse — ответ с запуском.
type RunResponse struct {
	ID             uuid.UUID          `json:"id"`
	Mode           string             `json:"mode"`
	Engine         string             `json:"engine"`
	Status         string             `json:"status"`
	Skip           []string           `json:"skip,omitempty"`
	Summary        *domain.RunSummary `json:"summary,omitempty"`
	Error          string             `json:"error,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
	FinishedAt     *time.Time         `json:"finished_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:             r.ID,
		Mode:           string(r.Mode),
		Engine:         string(r.Engine),
		Status:         string(r.Status),
		Skip:           r.Skip,
		Summary:        r.Summary,
		Error:          r.Error,
		IdempotencyKey: r.IdempotencyKey,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		CreatedAt:      r.CreatedAt,
	}
}

// StepResult DTOs

// StepResultResponse — ответ с результатом шага.
type StepResultResponse struct {
	StepID     string    `json:"step_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
	Stdout     string    `json:"stdout,omitempty"`
	Stderr     string    `json:"stderr,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// StepResultFromDomain конвертирует domain.StepResult в StepResultResponse.
func StepResultFromDomain(r domain.StepResult) StepResultResponse {
	return StepResultResponse{
		StepID:     r.StepID,
		Status:     string(r.Status),
		Reason:     r.ReasonTag(),
		Detail:     r.Detail,
		ExitCode:   r.ExitCode,
		DurationMS: r.Duration.Milliseconds(),
		Stdout:     r.Stdout,
		Stderr:     r.Stderr,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание schedule.
type CreateScheduleRequest struct {
	Name        string `json:"name"`
	Mode        string `json:"mode,omitempty"`
	Engine      string `json:"engine,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// UpdateScheduleRequest — запрос на обновление schedule.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	Mode        *string `json:"mode,omitempty"`
	Engine      *string `json:"engine,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с schedule.
type ScheduleResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Mode        string     `json:"mode"`
	Engine      string     `json:"engine"`
	CronExpr    string     `json:"cron_expr,omitempty"`
	IntervalSec int        `json:"interval_sec,omitempty"`
	Timezone    string     `json:"timezone"`
	Enabled     bool       `json:"enabled"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastRunID   *uuid.UUID `json:"last_run_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s *domain.Schedule) ScheduleResponse {
	if s == nil {
		return ScheduleResponse{}
	}
	return ScheduleResponse{
		ID:          s.ID,
		Name:        s.Name,
		Mode:        string(s.Mode),
		Engine:      string(s.Engine),
		CronExpr:    s.CronExpr,
		IntervalSec: s.IntervalSec,
		Timezone:    s.Timezone,
		Enabled:     s.Enabled,
		NextDueAt:   s.NextDueAt,
		LastRunAt:   s.LastRunAt,
		LastRunID:   s.LastRunID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
