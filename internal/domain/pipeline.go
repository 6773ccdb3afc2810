package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline — одна инстанциация матрицы для одного триггерного события.
//
// Pipeline создаётся когда:
// - Внешнее событие (push, pull request, manual) приходит через API
// - Scheduler срабатывает по cron-триггеру
//
// Каждый pipeline несёт снимок дескриптора на момент создания
// и порождает по одному job на канал матрицы.
type Pipeline struct {
	// ID — уникальный идентификатор pipeline.
	ID uuid.UUID `json:"id"`

	// Event — триггерное событие.
	Event Event `json:"event"`

	// Descriptor — снимок дескриптора на момент создания.
	Descriptor Descriptor `json:"descriptor"`

	// Status — текущий статус pipeline.
	Status PipelineStatus `json:"status"`

	// Error — описание ошибки для FAILED и CONFIG_ERROR.
	Error string `json:"error,omitempty"`

	// IdempotencyKey — ключ идемпотентности для предотвращения дубликатов.
	// Для cron-событий: "{trigger_id}_{due_at_unix}".
	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время достижения финального статуса.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// ReportedAt — время публикации вердикта. При fast-finish может
	// наступить раньше завершения allow-failure jobs; сам вердикт
	// после публикации не меняется.
	ReportedAt *time.Time `json:"reported_at,omitempty"`

	// CreatedAt — время создания pipeline.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если pipeline ещё не завершён.
func (p *Pipeline) Duration() time.Duration {
	if p.StartedAt == nil || p.FinishedAt == nil {
		return 0
	}
	return p.FinishedAt.Sub(*p.StartedAt)
}

// IsFinished возвращает true, если pipeline в финальном статусе.
func (p *Pipeline) IsFinished() bool {
	return p.Status.IsTerminal()
}

// MarkRunning переводит pipeline в статус RUNNING.
func (p *Pipeline) MarkRunning() {
	now := time.Now()
	p.Status = PipelineStatusRunning
	p.StartedAt = &now
}

// MarkPassed переводит pipeline в статус PASSED.
func (p *Pipeline) MarkPassed() {
	now := time.Now()
	p.Status = PipelineStatusPassed
	p.FinishedAt = &now
}

// MarkFailed переводит pipeline в статус FAILED с ошибкой.
func (p *Pipeline) MarkFailed(err string) {
	now := time.Now()
	p.Status = PipelineStatusFailed
	p.FinishedAt = &now
	p.Error = err
}

// MarkNotRun переводит pipeline в статус NOT_RUN (run gate отклонил событие).
// Jobs не создавались, процессы не запускались.
func (p *Pipeline) MarkNotRun() {
	now := time.Now()
	p.Status = PipelineStatusNotRun
	p.FinishedAt = &now
}

// MarkConfigError переводит pipeline в статус CONFIG_ERROR.
// Фиксируется до любых побочных эффектов.
func (p *Pipeline) MarkConfigError(err string) {
	now := time.Now()
	p.Status = PipelineStatusConfigError
	p.FinishedAt = &now
	p.Error = err
}

// MarkReported фиксирует время публикации вердикта.
func (p *Pipeline) MarkReported() {
	now := time.Now()
	p.ReportedAt = &now
}
