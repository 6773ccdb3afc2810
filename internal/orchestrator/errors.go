package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrPipelineNotFound — pipeline не найден в БД.
	ErrPipelineNotFound = errors.New("pipeline not found")

	// ErrPipelineNotPending — pipeline не в статусе PENDING.
	ErrPipelineNotPending = errors.New("pipeline is not in PENDING status")

	// ErrPipelineAlreadyActive — pipeline уже обрабатывается.
	ErrPipelineAlreadyActive = errors.New("pipeline already being processed")

	// ErrPipelineNotActive — pipeline не найден в активных (для обработки job.completed).
	ErrPipelineNotActive = errors.New("pipeline not in active pipelines")

	// ErrJobNotFound — job не найден.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobNotTracked — job не принадлежит активному pipeline.
	ErrJobNotTracked = errors.New("job not tracked by pipeline state")

	// ErrOrchestratorStopped — оркестратор остановлен.
	ErrOrchestratorStopped = errors.New("orchestrator stopped")
)
