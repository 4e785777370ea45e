package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Gatekeeper/internal/domain"
)

// RunRepo — репозиторий для работы с запусками gate.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create создаёт новый запуск.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	skipJSON, err := json.Marshal(run.Skip)
	if err != nil {
		return fmt.Errorf("marshal skip: %w", err)
	}

	query := `
		INSERT INTO runs (id, mode, engine, status, skip, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID,
		run.Mode,
		run.Engine,
		run.Status,
		skipJSON,
		nullString(run.IdempotencyKey),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID возвращает запуск по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, mode, engine, status, skip, summary, error,
		       idempotency_key, started_at, finished_at, created_at
		FROM runs
		WHERE id = $1
	`
	return r.scanRun(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey возвращает запуск по ключу идемпотентности.
func (r *RunRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Run, error) {
	query := `
		SELECT id, mode, engine, status, skip, summary, error,
		       idempotency_key, started_at, finished_at, created_at
		FROM runs
		WHERE idempotency_key = $1
	`
	return r.scanRun(r.pool.QueryRow(ctx, query, key))
}

// RunFilter — фильтр для списка запусков.
type RunFilter struct {
	Status domain.RunStatus
	Limit  int
	Offset int
}

// List возвращает список запусков с фильтрацией.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, mode, engine, status, skip, summary, error,
		       idempotency_key, started_at, finished_at, created_at
		FROM runs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := r.scanRunFromRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Update обновляет изменяемые поля запуска.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	var summaryJSON []byte
	if run.Summary != nil {
		var err error
		summaryJSON, err = json.Marshal(run.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary: %w", err)
		}
	}

	query := `
		UPDATE runs
		SET status = $2, summary = $3, error = $4, started_at = $5, finished_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		summaryJSON,
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending возвращает запуски в статусе PENDING (старые первыми).
// Используется runner'ом как polling fallback.
func (r *RunRepo) ListPending(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `
		SELECT id, mode, engine, status, skip, summary, error,
		       idempotency_key, started_at, finished_at, created_at
		FROM runs
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, domain.RunStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := r.scanRunFromRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanRun сканирует один запуск из pgx.Row.
func (r *RunRepo) scanRun(row pgx.Row) (*domain.Run, error) {
	run, err := scanRunFields(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// scanRunFromRows сканирует запуск из pgx.Rows.
func (r *RunRepo) scanRunFromRows(rows pgx.Rows) (*domain.Run, error) {
	run, err := scanRunFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}

// scanRunFields — общий код сканирования полей запуска.
func scanRunFields(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var skipJSON, summaryJSON []byte
	var errText, idempKey *string

	err := row.Scan(
		&run.ID,
		&run.Mode,
		&run.Engine,
		&run.Status,
		&skipJSON,
		&summaryJSON,
		&errText,
		&idempKey,
		&run.StartedAt,
		&run.FinishedAt,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(skipJSON) > 0 {
		if err := json.Unmarshal(skipJSON, &run.Skip); err != nil {
			return nil, fmt.Errorf("unmarshal skip: %w", err)
		}
	}
	if len(summaryJSON) > 0 {
		run.Summary = &domain.RunSummary{}
		if err := json.Unmarshal(summaryJSON, run.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}
	if errText != nil {
		run.Error = *errText
	}
	if idempKey != nil {
		run.IdempotencyKey = *idempKey
	}

	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullInt возвращает nil для нулевого значения.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
