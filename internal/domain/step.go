package domain

import (
	"time"

	"github.com/google/uuid"
)

// Step — один шаг внутри job.
//
// Строки шагов создаются оркестратором при раскрытии матрицы:
// для каждого job — полный список шагов дескриптора в порядке
// объявления, где не прошедшие предикат сразу получают SKIPPED.
// Агент выполняет только шаги в статусе PENDING, строго по Position.
type Step struct {
	// ID — уникальный идентификатор шага.
	ID uuid.UUID `json:"id"`

	// JobID — ссылка на родительский job.
	JobID uuid.UUID `json:"job_id"`

	// Position — позиция в списке шагов дескриптора (начиная с 0).
	Position int `json:"position"`

	// StepID — идентификатор шага из дескриптора (StepDef.ID).
	StepID string `json:"step_id"`

	// Name — имя шага (копия StepDef.Name для удобства).
	Name string `json:"name,omitempty"`

	// Class — классификация шага.
	Class StepClass `json:"class"`

	// Command — shell-команда.
	Command string `json:"command"`

	// Status — текущий статус шага.
	Status StepStatus `json:"status"`

	// ExitCode — exit code команды. Nil, пока команда не завершилась.
	ExitCode *int `json:"exit_code,omitempty"`

	// Output — хвост combined output команды (ограничен по размеру,
	// для post-mortem; система вывод не интерпретирует).
	Output string `json:"output,omitempty"`

	// StartedAt — время запуска команды.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения команды.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// CreatedAt — время создания строки шага.
	CreatedAt time.Time `json:"created_at"`
}

// Duration возвращает продолжительность выполнения команды.
func (s *Step) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// MarkRunning переводит шаг в статус RUNNING.
func (s *Step) MarkRunning() {
	now := time.Now()
	s.Status = StepStatusRunning
	s.StartedAt = &now
}

// MarkPassed переводит шаг в статус PASSED с exit code и выводом.
func (s *Step) MarkPassed(exitCode int, output string) {
	now := time.Now()
	s.Status = StepStatusPassed
	s.FinishedAt = &now
	s.ExitCode = &exitCode
	s.Output = output
}

// MarkFailed переводит шаг в статус FAILED с exit code и выводом.
func (s *Step) MarkFailed(exitCode int, output string) {
	now := time.Now()
	s.Status = StepStatusFailed
	s.FinishedAt = &now
	s.ExitCode = &exitCode
	s.Output = output
}
