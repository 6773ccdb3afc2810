package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Conveyor/internal/domain"
)

// PipelineRepo — репозиторий для работы с pipelines.
type PipelineRepo struct {
	pool *pgxpool.Pool
}

// NewPipelineRepo создаёт новый PipelineRepo.
func NewPipelineRepo(pool *pgxpool.Pool) *PipelineRepo {
	return &PipelineRepo{pool: pool}
}

// Create создаёт новый pipeline.
func (r *PipelineRepo) Create(ctx context.Context, p *domain.Pipeline) error {
	eventJSON, err := json.Marshal(p.Event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	descriptorJSON, err := json.Marshal(p.Descriptor)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}

	query := `
		INSERT INTO pipelines (id, event, descriptor, status, error, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		p.ID,
		eventJSON,
		descriptorJSON,
		p.Status,
		nullString(p.Error),
		nullString(p.IdempotencyKey),
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pipeline: %w", err)
	}
	return nil
}

// GetByID возвращает pipeline по ID.
func (r *PipelineRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pipeline, error) {
	query := `
		SELECT id, event, descriptor, status, error, idempotency_key,
		       started_at, finished_at, reported_at, created_at
		FROM pipelines
		WHERE id = $1
	`
	return r.scanPipeline(r.pool.QueryRow(ctx, query, id))
}

// GetByIdempotencyKey возвращает pipeline по ключу идемпотентности.
func (r *PipelineRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Pipeline, error) {
	query := `
		SELECT id, event, descriptor, status, error, idempotency_key,
		       started_at, finished_at, reported_at, created_at
		FROM pipelines
		WHERE idempotency_key = $1
	`
	return r.scanPipeline(r.pool.QueryRow(ctx, query, key))
}

// List возвращает список pipelines с фильтрацией.
func (r *PipelineRepo) List(ctx context.Context, filter PipelineFilter) ([]domain.Pipeline, error) {
	query := `
		SELECT id, event, descriptor, status, error, idempotency_key,
		       started_at, finished_at, reported_at, created_at
		FROM pipelines
		WHERE ($1::text IS NULL OR status = $1::pipeline_status)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []domain.Pipeline
	for rows.Next() {
		p, err := r.scanPipelineFromRows(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *p)
	}
	return pipelines, rows.Err()
}

// Update обновляет pipeline.
func (r *PipelineRepo) Update(ctx context.Context, p *domain.Pipeline) error {
	query := `
		UPDATE pipelines
		SET status = $2, error = $3, started_at = $4, finished_at = $5, reported_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Status,
		nullString(p.Error),
		p.StartedAt,
		p.FinishedAt,
		p.ReportedAt,
	)
	if err != nil {
		return fmt.Errorf("update pipeline: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPending возвращает pipelines в статусе PENDING.
func (r *PipelineRepo) ListPending(ctx context.Context, limit int) ([]domain.Pipeline, error) {
	query := `
		SELECT id, event, descriptor, status, error, idempotency_key,
		       started_at, finished_at, reported_at, created_at
		FROM pipelines
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []domain.Pipeline
	for rows.Next() {
		p, err := r.scanPipelineFromRows(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *p)
	}
	return pipelines, rows.Err()
}

// ListRunning возвращает pipelines в статусе RUNNING.
// Используется оркестратором при рестарте для восстановления состояния.
func (r *PipelineRepo) ListRunning(ctx context.Context, limit int) ([]domain.Pipeline, error) {
	query := `
		SELECT id, event, descriptor, status, error, idempotency_key,
		       started_at, finished_at, reported_at, created_at
		FROM pipelines
		WHERE status = 'RUNNING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list running pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []domain.Pipeline
	for rows.Next() {
		p, err := r.scanPipelineFromRows(rows)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, *p)
	}
	return pipelines, rows.Err()
}

// --- Helpers ---

// PipelineFilter — параметры фильтрации pipelines.
type PipelineFilter struct {
	Status domain.PipelineStatus
	Limit  int
	Offset int
}

// scanPipeline сканирует одну строку в Pipeline.
func (r *PipelineRepo) scanPipeline(row pgx.Row) (*domain.Pipeline, error) {
	var p domain.Pipeline
	var eventJSON, descriptorJSON []byte
	var pipelineError, idempotencyKey *string

	err := row.Scan(
		&p.ID,
		&eventJSON,
		&descriptorJSON,
		&p.Status,
		&pipelineError,
		&idempotencyKey,
		&p.StartedAt,
		&p.FinishedAt,
		&p.ReportedAt,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan pipeline: %w", err)
	}

	if err := json.Unmarshal(eventJSON, &p.Event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := json.Unmarshal(descriptorJSON, &p.Descriptor); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}

	if pipelineError != nil {
		p.Error = *pipelineError
	}
	if idempotencyKey != nil {
		p.IdempotencyKey = *idempotencyKey
	}

	return &p, nil
}

// scanPipelineFromRows сканирует строку из rows в Pipeline.
func (r *PipelineRepo) scanPipelineFromRows(rows pgx.Rows) (*domain.Pipeline, error) {
	var p domain.Pipeline
	var eventJSON, descriptorJSON []byte
	var pipelineError, idempotencyKey *string

	err := rows.Scan(
		&p.ID,
		&eventJSON,
		&descriptorJSON,
		&p.Status,
		&pipelineError,
		&idempotencyKey,
		&p.StartedAt,
		&p.FinishedAt,
		&p.ReportedAt,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan pipeline: %w", err)
	}

	if err := json.Unmarshal(eventJSON, &p.Event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := json.Unmarshal(descriptorJSON, &p.Descriptor); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}

	if pipelineError != nil {
		p.Error = *pipelineError
	}
	if idempotencyKey != nil {
		p.IdempotencyKey = *idempotencyKey
	}

	return &p, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
