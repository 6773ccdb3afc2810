package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// Event DTOs

// SubmitEventRequest — запрос на приём триггерного события.
// Descriptor опционален: без него используется серверный дескриптор.
type SubmitEventRequest struct {
	Type           string             `json:"type"`
	Branch         string             `json:"branch,omitempty"`
	Tag            string             `json:"tag,omitempty"`
	Commit         string             `json:"commit,omitempty"`
	Descriptor     *domain.Descriptor `json:"descriptor,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// Pipeline DTOs

// PipelineResponse — ответ с pipeline.
type PipelineResponse struct {
	ID             uuid.UUID         `json:"id"`
	Event          domain.Event      `json:"event"`
	Descriptor     domain.Descriptor `json:"descriptor"`
	Status         string            `json:"status"`
	Error          string            `json:"error,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	StartedAt      *time.Time        `json:"started_at,omitempty"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
	ReportedAt     *time.Time        `json:"reported_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// PipelineFromDomain конвертирует domain.Pipeline в PipelineResponse.
func PipelineFromDomain(p domain.Pipeline) PipelineResponse {
	return PipelineResponse{
		ID:             p.ID,
		Event:          p.Event,
		Descriptor:     p.Descriptor,
		Status:         string(p.Status),
		Error:          p.Error,
		IdempotencyKey: p.IdempotencyKey,
		StartedAt:      p.StartedAt,
		FinishedAt:     p.FinishedAt,
		ReportedAt:     p.ReportedAt,
		CreatedAt:      p.CreatedAt,
	}
}

// Job DTOs

// JobResponse — ответ с job.
type JobResponse struct {
	ID           uuid.UUID  `json:"id"`
	PipelineID   uuid.UUID  `json:"pipeline_id"`
	Position     int        `json:"position"`
	Channel      string     `json:"channel"`
	AllowFailure bool       `json:"allow_failure"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// JobFromDomain конвертирует domain.Job в JobResponse.
func JobFromDomain(j domain.Job) JobResponse {
	return JobResponse{
		ID:           j.ID,
		PipelineID:   j.PipelineID,
		Position:     j.Position,
		Channel:      string(j.Channel),
		AllowFailure: j.AllowFailure,
		Status:       string(j.Status),
		Error:        j.Error,
		StartedAt:    j.StartedAt,
		FinishedAt:   j.FinishedAt,
		CreatedAt:    j.CreatedAt,
	}
}

// Step DTOs

// StepResponse — ответ с шагом.
type StepResponse struct {
	ID         uuid.UUID  `json:"id"`
	JobID      uuid.UUID  `json:"job_id"`
	Position   int        `json:"position"`
	StepID     string     `json:"step_id"`
	Name       string     `json:"name,omitempty"`
	Class      string     `json:"class"`
	Command    string     `json:"command"`
	Status     string     `json:"status"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	Output     string     `json:"output,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StepFromDomain конвертирует domain.Step в StepResponse.
func StepFromDomain(s domain.Step) StepResponse {
	return StepResponse{
		ID:         s.ID,
		JobID:      s.JobID,
		Position:   s.Position,
		StepID:     s.StepID,
		Name:       s.Name,
		Class:      string(s.Class),
		Command:    s.Command,
		Status:     string(s.Status),
		ExitCode:   s.ExitCode,
		Output:     s.Output,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		CreatedAt:  s.CreatedAt,
	}
}

// Trigger DTOs

// CreateTriggerRequest — запрос на создание trigger.
type CreateTriggerRequest struct {
	Name        string             `json:"name"`
	CronExpr    string             `json:"cron_expr,omitempty"`
	IntervalSec int                `json:"interval_sec,omitempty"`
	Timezone    string             `json:"timezone,omitempty"`
	Branch      string             `json:"branch,omitempty"`
	Descriptor  *domain.Descriptor `json:"descriptor,omitempty"`
	Enabled     bool               `json:"enabled"`
}

// UpdateTriggerRequest — запрос на обновление trigger.
type UpdateTriggerRequest struct {
	Name        *string            `json:"name,omitempty"`
	CronExpr    *string            `json:"cron_expr,omitempty"`
	IntervalSec *int               `json:"interval_sec,omitempty"`
	Timezone    *string            `json:"timezone,omitempty"`
	Branch      *string            `json:"branch,omitempty"`
	Descriptor  *domain.Descriptor `json:"descriptor,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// TriggerResponse — ответ с trigger.
type TriggerResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	CronExpr       string            `json:"cron_expr,omitempty"`
	IntervalSec    int               `json:"interval_sec,omitempty"`
	Timezone       string            `json:"timezone"`
	Branch         string            `json:"branch"`
	Descriptor     domain.Descriptor `json:"descriptor"`
	Enabled        bool              `json:"enabled"`
	NextDueAt      *time.Time        `json:"next_due_at,omitempty"`
	LastFiredAt    *time.Time        `json:"last_fired_at,omitempty"`
	LastPipelineID *uuid.UUID        `json:"last_pipeline_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// TriggerFromDomain конвертирует domain.Trigger в TriggerResponse.
func TriggerFromDomain(t *domain.Trigger) TriggerResponse {
	if t == nil {
		return TriggerResponse{}
	}
	return TriggerResponse{
		ID:             t.ID,
		Name:           t.Name,
		CronExpr:       t.CronExpr,
		IntervalSec:    t.IntervalSec,
		Timezone:       t.Timezone,
		Branch:         t.Branch,
		Descriptor:     t.Descriptor,
		Enabled:        t.Enabled,
		NextDueAt:      t.NextDueAt,
		LastFiredAt:    t.LastFiredAt,
		LastPipelineID: t.LastPipelineID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
