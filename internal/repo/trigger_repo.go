package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Conveyor/internal/domain"
)

// TriggerRepo — репозиторий для работы с cron-триггерами.
type TriggerRepo struct {
	pool *pgxpool.Pool
}

// NewTriggerRepo создаёт новый TriggerRepo.
func NewTriggerRepo(pool *pgxpool.Pool) *TriggerRepo {
	return &TriggerRepo{pool: pool}
}

// Create создаёт новый trigger.
func (r *TriggerRepo) Create(ctx context.Context, t *domain.Trigger) error {
	descriptorJSON, err := json.Marshal(t.Descriptor)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}

	query := `
		INSERT INTO triggers (id, name, cron_expr, interval_sec, timezone, branch,
		                      descriptor, enabled, next_due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		t.ID,
		nullString(t.Name),
		nullString(t.CronExpr),
		nullInt(t.IntervalSec),
		t.Timezone,
		t.Branch,
		descriptorJSON,
		t.Enabled,
		t.NextDueAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert trigger: %w", err)
	}
	return nil
}

// GetByID возвращает trigger по ID.
func (r *TriggerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Trigger, error) {
	query := `
		SELECT id, name, cron_expr, interval_sec, timezone, branch, descriptor,
		       enabled, next_due_at, last_fired_at, last_pipeline_id, created_at, updated_at
		FROM triggers
		WHERE id = $1
	`
	return r.scanTrigger(r.pool.QueryRow(ctx, query, id))
}

// List возвращает список triggers с фильтрацией.
func (r *TriggerRepo) List(ctx context.Context, filter TriggerFilter) ([]domain.Trigger, error) {
	query := `
		SELECT id, name, cron_expr, interval_sec, timezone, branch, descriptor,
		       enabled, next_due_at, last_fired_at, last_pipeline_id, created_at, updated_at
		FROM triggers
		WHERE ($1::boolean IS NULL OR enabled = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		filter.Enabled,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}
	defer rows.Close()

	var triggers []domain.Trigger
	for rows.Next() {
		t, err := r.scanTriggerFromRows(rows)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, *t)
	}
	return triggers, rows.Err()
}

// ListDue возвращает triggers, готовые к срабатыванию.
func (r *TriggerRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Trigger, error) {
	query := `
		SELECT id, name, cron_expr, interval_sec, timezone, branch, descriptor,
		       enabled, next_due_at, last_fired_at, last_pipeline_id, created_at, updated_at
		FROM triggers
		WHERE enabled = true
		  AND next_due_at IS NOT NULL
		  AND next_due_at <= $1
		ORDER BY next_due_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due triggers: %w", err)
	}
	defer rows.Close()

	var triggers []domain.Trigger
	for rows.Next() {
		t, err := r.scanTriggerFromRows(rows)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, *t)
	}
	return triggers, rows.Err()
}

// Update обновляет trigger.
func (r *TriggerRepo) Update(ctx context.Context, t *domain.Trigger) error {
	descriptorJSON, err := json.Marshal(t.Descriptor)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}

	query := `
		UPDATE triggers
		SET name = $2, cron_expr = $3, interval_sec = $4, timezone = $5, branch = $6,
		    descriptor = $7, enabled = $8, next_due_at = $9, last_fired_at = $10,
		    last_pipeline_id = $11, updated_at = $12
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		t.ID,
		nullString(t.Name),
		nullString(t.CronExpr),
		nullInt(t.IntervalSec),
		t.Timezone,
		t.Branch,
		descriptorJSON,
		t.Enabled,
		t.NextDueAt,
		t.LastFiredAt,
		t.LastPipelineID,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update trigger: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет trigger.
func (r *TriggerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM triggers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled включает/выключает trigger.
func (r *TriggerRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE triggers SET enabled = $2, updated_at = NOW() WHERE id = $1
	`, id, enabled)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// TriggerFilter — параметры фильтрации triggers.
type TriggerFilter struct {
	Enabled *bool
	Limit   int
	Offset  int
}

func (r *TriggerRepo) scanTrigger(row pgx.Row) (*domain.Trigger, error) {
	var t domain.Trigger
	var name, cronExpr *string
	var intervalSec *int
	var descriptorJSON []byte

	err := row.Scan(
		&t.ID,
		&name,
		&cronExpr,
		&intervalSec,
		&t.Timezone,
		&t.Branch,
		&descriptorJSON,
		&t.Enabled,
		&t.NextDueAt,
		&t.LastFiredAt,
		&t.LastPipelineID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan trigger: %w", err)
	}

	if name != nil {
		t.Name = *name
	}
	if cronExpr != nil {
		t.CronExpr = *cronExpr
	}
	if intervalSec != nil {
		t.IntervalSec = *intervalSec
	}
	if err := json.Unmarshal(descriptorJSON, &t.Descriptor); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}

	return &t, nil
}

func (r *TriggerRepo) scanTriggerFromRows(rows pgx.Rows) (*domain.Trigger, error) {
	var t domain.Trigger
	var name, cronExpr *string
	var intervalSec *int
	var descriptorJSON []byte

	err := rows.Scan(
		&t.ID,
		&name,
		&cronExpr,
		&intervalSec,
		&t.Timezone,
		&t.Branch,
		&descriptorJSON,
		&t.Enabled,
		&t.NextDueAt,
		&t.LastFiredAt,
		&t.LastPipelineID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan trigger: %w", err)
	}

	if name != nil {
		t.Name = *name
	}
	if cronExpr != nil {
		t.CronExpr = *cronExpr
	}
	if intervalSec != nil {
		t.IntervalSec = *intervalSec
	}
	if err := json.Unmarshal(descriptorJSON, &t.Descriptor); err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}

	return &t, nil
}

// nullInt возвращает nil для нулевого int.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
