package domain

import (
	"time"

	"github.com/google/uuid"
)

// Job — выполнение последовательности шагов для одного канала.
//
// Job создаётся оркестратором при раскрытии матрицы: по одному на
// каждый канал дескриптора, в порядке объявления. Дубликаты каналов
// дают независимые jobs с разными позициями.
//
// Job выполняется агентом. Jobs одного pipeline независимы и могут
// выполняться параллельно разными агентами; шаги внутри одного job —
// строго последовательно.
type Job struct {
	// ID — уникальный идентификатор job.
	ID uuid.UUID `json:"id"`

	// PipelineID — ссылка на родительский pipeline.
	PipelineID uuid.UUID `json:"pipeline_id"`

	// Position — позиция канала в матрице (начиная с 0).
	// Различает jobs с одинаковым каналом.
	Position int `json:"position"`

	// Channel — канал тулчейна для этого job.
	Channel Channel `json:"channel"`

	// AllowFailure — падение этого job не влияет на вердикт pipeline.
	// Флаг фиксируется при раскрытии матрицы и не меняется.
	AllowFailure bool `json:"allow_failure"`

	// Status — текущий статус job.
	Status JobStatus `json:"status"`

	// Error — описание ошибки при FAILED (какой шаг упал и с каким кодом).
	Error string `json:"error,omitempty"`

	// StartedAt — время начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания job.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения.
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil || j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(*j.StartedAt)
}

// IsFinished возвращает true, если job завершён.
func (j *Job) IsFinished() bool {
	return j.Status.IsTerminal()
}

// MarkRunning переводит job в статус RUNNING.
func (j *Job) MarkRunning() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// MarkPassed переводит job в статус PASSED.
func (j *Job) MarkPassed() {
	now := time.Now()
	j.Status = JobStatusPassed
	j.FinishedAt = &now
}

// MarkFailed переводит job в статус FAILED с ошибкой.
func (j *Job) MarkFailed(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.FinishedAt = &now
	j.Error = err
}
