package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Expand раскрывает матрицу каналов в список jobs.
//
// По одному job на канал, в порядке объявления. Дубликаты каналов
// дают независимые jobs с разными позициями — дедупликации нет.
// Функция никогда не завершается ошибкой: пустой список каналов
// даёт пустой список jobs (и вакуумно успешный pipeline).
func Expand(d *domain.Descriptor, pipelineID uuid.UUID) []domain.Job {
	jobs := make([]domain.Job, 0, len(d.Channels))

	now := time.Now()
	for i, ch := range d.Channels {
		jobs = append(jobs, domain.Job{
			ID:           uuid.New(),
			PipelineID:   pipelineID,
			Position:     i,
			Channel:      ch,
			AllowFailure: d.AllowsFailure(ch),
			Status:       domain.JobStatusPending,
			CreatedAt:    now,
		})
	}

	return jobs
}
