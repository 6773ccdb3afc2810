package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobVerdict — классификация job в итоговом отчёте.
type JobVerdict string

const (
	// VerdictPassed — job прошёл.
	VerdictPassed JobVerdict = "PASSED"

	// VerdictFailedCounted — job упал и засчитан в вердикт pipeline.
	VerdictFailedCounted JobVerdict = "FAILED"

	// VerdictFailedAllowed — job упал, но его канал в allow-failure
	// множестве: падение показано в отчёте, вердикт не затронут.
	VerdictFailedAllowed JobVerdict = "FAILED_ALLOWED"

	// VerdictPending — job ещё не завершён на момент формирования отчёта
	// (allow-failure job при fast-finish).
	VerdictPending JobVerdict = "PENDING"
)

// ClassifyJob возвращает вердикт для одного job.
func ClassifyJob(j *Job) JobVerdict {
	switch j.Status {
	case JobStatusPassed:
		return VerdictPassed
	case JobStatusFailed:
		if j.AllowFailure {
			return VerdictFailedAllowed
		}
		return VerdictFailedCounted
	default:
		return VerdictPending
	}
}

// AggregateStatus вычисляет вердикт pipeline по завершённым jobs.
//
// FAILED тогда и только тогда, когда упал хотя бы один job вне
// allow-failure множества. Пустой список jobs даёт PASSED
// (вакуумный успех пустой матрицы). Allow-failure jobs на вердикт
// не влияют в любом состоянии.
func AggregateStatus(jobs []Job) PipelineStatus {
	for i := range jobs {
		if jobs[i].Status == JobStatusFailed && !jobs[i].AllowFailure {
			return PipelineStatusFailed
		}
	}
	return PipelineStatusPassed
}

// JobReport — строка отчёта по одному job.
type JobReport struct {
	JobID        uuid.UUID  `json:"job_id"`
	Position     int        `json:"position"`
	Channel      Channel    `json:"channel"`
	AllowFailure bool       `json:"allow_failure"`
	Status       JobStatus  `json:"status"`
	Verdict      JobVerdict `json:"verdict"`
	Error        string     `json:"error,omitempty"`
	DurationMs   int64      `json:"duration_ms,omitempty"`
}

// Report — итоговый отчёт pipeline.
//
// Отчёт различает: jobs прошедшие, упавшие-и-засчитанные,
// упавшие-но-разрешённые, а на уровне pipeline — NOT_RUN (gate)
// и CONFIG_ERROR (валидация) отдельно от FAILED.
type Report struct {
	PipelineID uuid.UUID      `json:"pipeline_id"`
	Event      Event          `json:"event"`
	Status     PipelineStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	Jobs       []JobReport    `json:"jobs"`
	ReportedAt time.Time      `json:"reported_at"`
}

// BuildReport формирует отчёт по pipeline и его jobs.
// Jobs включаются в порядке позиций матрицы (порядок среза вызывающего).
func BuildReport(p *Pipeline, jobs []Job) *Report {
	r := &Report{
		PipelineID: p.ID,
		Event:      p.Event,
		Status:     p.Status,
		Error:      p.Error,
		Jobs:       make([]JobReport, 0, len(jobs)),
		ReportedAt: time.Now(),
	}
	if p.ReportedAt != nil {
		r.ReportedAt = *p.ReportedAt
	}

	for i := range jobs {
		j := &jobs[i]
		r.Jobs = append(r.Jobs, JobReport{
			JobID:        j.ID,
			Position:     j.Position,
			Channel:      j.Channel,
			AllowFailure: j.AllowFailure,
			Status:       j.Status,
			Verdict:      ClassifyJob(j),
			Error:        j.Error,
			DurationMs:   j.Duration().Milliseconds(),
		})
	}

	return r
}
