package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Conveyor/internal/domain"
)

// StepRepo — репозиторий для работы с шагами jobs.
type StepRepo struct {
	pool *pgxpool.Pool
}

// NewStepRepo создаёт новый StepRepo.
func NewStepRepo(pool *pgxpool.Pool) *StepRepo {
	return &StepRepo{pool: pool}
}

// CreateBatch создаёт строки шагов для job одной транзакцией.
func (r *StepRepo) CreateBatch(ctx context.Context, steps []domain.Step) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO steps (id, job_id, position, step_id, name, class, command, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range steps {
		s := &steps[i]
		_, err := tx.Exec(ctx, query,
			s.ID,
			s.JobID,
			s.Position,
			s.StepID,
			nullString(s.Name),
			s.Class,
			s.Command,
			s.Status,
			s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert step %s: %w", s.StepID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID возвращает шаг по ID.
func (r *StepRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Step, error) {
	query := `
		SELECT id, job_id, position, step_id, name, class, command, status,
		       exit_code, output, started_at, finished_at, created_at
		FROM steps
		WHERE id = $1
	`
	return r.scanStep(r.pool.QueryRow(ctx, query, id))
}

// ListByJob возвращает все шаги job в порядке позиций.
func (r *StepRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Step, error) {
	query := `
		SELECT id, job_id, position, step_id, name, class, command, status,
		       exit_code, output, started_at, finished_at, created_at
		FROM steps
		WHERE job_id = $1
		ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list steps by job: %w", err)
	}
	defer rows.Close()

	var steps []domain.Step
	for rows.Next() {
		s, err := r.scanStepFromRows(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, *s)
	}
	return steps, rows.Err()
}

// Update обновляет шаг.
func (r *StepRepo) Update(ctx context.Context, s *domain.Step) error {
	query := `
		UPDATE steps
		SET status = $2, exit_code = $3, output = $4, started_at = $5, finished_at = $6
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Status,
		s.ExitCode,
		nullString(s.Output),
		s.StartedAt,
		s.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update step: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

func (r *StepRepo) scanStep(row pgx.Row) (*domain.Step, error) {
	var s domain.Step
	var name, output *string

	err := row.Scan(
		&s.ID,
		&s.JobID,
		&s.Position,
		&s.StepID,
		&name,
		&s.Class,
		&s.Command,
		&s.Status,
		&s.ExitCode,
		&output,
		&s.StartedAt,
		&s.FinishedAt,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan step: %w", err)
	}

	if name != nil {
		s.Name = *name
	}
	if output != nil {
		s.Output = *output
	}

	return &s, nil
}

func (r *StepRepo) scanStepFromRows(rows pgx.Rows) (*domain.Step, error) {
	var s domain.Step
	var name, output *string

	err := rows.Scan(
		&s.ID,
		&s.JobID,
		&s.Position,
		&s.StepID,
		&name,
		&s.Class,
		&s.Command,
		&s.Status,
		&s.ExitCode,
		&output,
		&s.StartedAt,
		&s.FinishedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan step: %w", err)
	}

	if name != nil {
		s.Name = *name
	}
	if output != nil {
		s.Output = *output
	}

	return &s, nil
}
