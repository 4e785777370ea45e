package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Gatekeeper/internal/domain"
)

// ResultRepo — репозиторий для результатов шагов.
//
// Результаты записываются одним батчем после завершения запуска
// и дальше только читаются — в БД они так же неизменяемы, как
// и в памяти движка.
type ResultRepo struct {
	pool *pgxpool.Pool
}

// NewResultRepo создаёт новый ResultRepo.
func NewResultRepo(pool *pgxpool.Pool) *ResultRepo {
	return &ResultRepo{pool: pool}
}

// CreateBatch сохраняет результаты шагов одного запуска.
// Позиция в срезе фиксируется в колонке seq — это порядок выполнения.
func (r *ResultRepo) CreateBatch(ctx context.Context, runID uuid.UUID, results []*domain.StepResult) error {
	batch := &pgx.Batch{}

	query := `
		INSERT INTO step_results (run_id, seq, step_id, status, reason, detail,
		                          exit_code, duration_ms, stdout, stderr,
		                          started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for seq, res := range results {
		batch.Queue(query,
			runID,
			seq,
			res.StepID,
			res.Status,
			nullString(string(res.Reason)),
			nullString(res.Detail),
			res.ExitCode,
			res.Duration.Milliseconds(),
			nullString(res.Stdout),
			nullString(res.Stderr),
			res.StartedAt,
			res.FinishedAt,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert step result: %w", err)
		}
	}
	return nil
}

// ListByRunID возвращает результаты запуска в порядке выполнения.
func (r *ResultRepo) ListByRunID(ctx context.Context, runID uuid.UUID) ([]domain.StepResult, error) {
	query := `
		SELECT step_id, status, reason, detail, exit_code, duration_ms,
		       stdout, stderr, started_at, finished_at
		FROM step_results
		WHERE run_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list step results: %w", err)
	}
	defer rows.Close()

	var results []domain.StepResult
	for rows.Next() {
		var res domain.StepResult
		var reason, detail, stdout, stderr *string
		var durationMs int64

		err := rows.Scan(
			&res.StepID,
			&res.Status,
			&reason,
			&detail,
			&res.ExitCode,
			&durationMs,
			&stdout,
			&stderr,
			&res.StartedAt,
			&res.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan step result: %w", err)
		}

		res.Duration = time.Duration(durationMs) * time.Millisecond
		if reason != nil {
			res.Reason = domain.ReasonCode(*reason)
		}
		if detail != nil {
			res.Detail = *detail
		}
		if stdout != nil {
			res.Stdout = *stdout
		}
		if stderr != nil {
			res.Stderr = *stderr
		}

		results = append(results, res)
	}
	return results, rows.Err()
}
