package orchestrator

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// PipelineState — состояние выполнения одного pipeline в памяти.
//
// PipelineState создаётся когда Orchestrator раскрывает матрицу
// и удаляется когда все jobs достигли финального статуса.
//
// Вердикт pipeline может быть вынесен раньше удаления state:
// при fast-finish итог публикуется как только решены все jobs
// без allow-failure, а allow-failure jobs дорабатывают в фоне.
type PipelineState struct {
	// Pipeline — данные pipeline из БД.
	Pipeline *domain.Pipeline

	// jobs — отслеживаемые jobs (jobID → Job).
	jobs map[uuid.UUID]*domain.Job

	// reported — вердикт уже опубликован.
	reported bool

	// mu — мьютекс для потокобезопасного доступа.
	mu sync.RWMutex
}

// NewPipelineState создаёт новый PipelineState.
func NewPipelineState(p *domain.Pipeline, jobs []domain.Job) *PipelineState {
	state := &PipelineState{
		Pipeline: p,
		jobs:     make(map[uuid.UUID]*domain.Job, len(jobs)),
	}
	for i := range jobs {
		job := jobs[i]
		state.jobs[job.ID] = &job
	}
	if p.ReportedAt != nil {
		state.reported = true
	}
	return state
}

// SetJob обновляет отслеживаемый job свежими данными из БД.
func (s *PipelineState) SetJob(job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return ErrJobNotTracked
	}
	s.jobs[job.ID] = job
	return nil
}

// Jobs возвращает снимок всех jobs в порядке позиций матрицы.
func (s *PipelineState) Jobs() []domain.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	// Порядок в map случайный, сортируем по позиции
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].Position < jobs[j-1].Position; j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
	return jobs
}

// RequiredResolved проверяет, что все jobs без allow-failure
// достигли финального статуса.
func (s *PipelineState) RequiredResolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.jobs {
		if job.AllowFailure {
			continue
		}
		if !job.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// RequiredFailed проверяет, упал ли хотя бы один job без allow-failure.
func (s *PipelineState) RequiredFailed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.jobs {
		if !job.AllowFailure && job.Status == domain.JobStatusFailed {
			return true
		}
	}
	return false
}

// AllTerminal проверяет, что все jobs достигли финального статуса.
func (s *PipelineState) AllTerminal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, job := range s.jobs {
		if !job.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// ShouldReport решает, пора ли выносить вердикт pipeline.
//
// Без fast-finish вердикт выносится когда завершены все jobs.
// С fast-finish — как только упал job без allow-failure, либо
// все jobs без allow-failure решены (allow-failure хвост итог
// уже не изменит).
func (s *PipelineState) ShouldReport() bool {
	if s.Pipeline.Descriptor.FastFinish {
		return s.RequiredFailed() || s.RequiredResolved()
	}
	return s.AllTerminal()
}

// Verdict возвращает итоговый статус pipeline по текущим jobs.
func (s *PipelineState) Verdict() domain.PipelineStatus {
	return domain.AggregateStatus(s.Jobs())
}

// IsReported проверяет, опубликован ли уже вердикт.
func (s *PipelineState) IsReported() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reported
}

// MarkReported фиксирует публикацию вердикта.
func (s *PipelineState) MarkReported() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reported = true
}

// FailedChannels возвращает каналы упавших jobs без allow-failure.
func (s *PipelineState) FailedChannels() []domain.Channel {
	var channels []domain.Channel
	for _, job := range s.Jobs() {
		if !job.AllowFailure && job.Status == domain.JobStatusFailed {
			channels = append(channels, job.Channel)
		}
	}
	return channels
}

// PipelineID возвращает ID pipeline.
func (s *PipelineState) PipelineID() uuid.UUID {
	return s.Pipeline.ID
}

// Stats возвращает статистику выполнения.
func (s *PipelineState) Stats() PipelineStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := PipelineStats{TotalJobs: len(s.jobs)}
	for _, job := range s.jobs {
		switch job.Status {
		case domain.JobStatusPassed:
			stats.PassedJobs++
		case domain.JobStatusFailed:
			stats.FailedJobs++
		case domain.JobStatusRunning:
			stats.RunningJobs++
		case domain.JobStatusPending:
			stats.PendingJobs++
		}
	}
	return stats
}

// PipelineStats — статистика выполнения pipeline.
type PipelineStats struct {
	TotalJobs   int
	PassedJobs  int
	FailedJobs  int
	RunningJobs int
	PendingJobs int
}
