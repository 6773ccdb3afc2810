package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/engine"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/repo"
)

// handlePipelineTriggered обрабатывает событие о новом pipeline.
func (o *Orchestrator) handlePipelineTriggered(ctx context.Context, delivery *mq.Delivery) error {
	// Парсим payload
	payload, err := mq.ParsePayload[mq.PipelineTriggeredPayload](&delivery.Message)
	if err != nil {
		o.logger.Error("failed to parse pipeline.triggered payload", "error", err)
		return err
	}

	o.logger.Debug("received pipeline.triggered event", "pipeline_id", payload.PipelineID)

	// Проверяем, не обрабатывается ли уже
	if o.isPipelineActive(payload.PipelineID) {
		o.logger.Debug("pipeline already active, skipping", "pipeline_id", payload.PipelineID)
		return nil
	}

	// Обрабатываем pipeline
	if err := o.processPipeline(ctx, payload.PipelineID); err != nil {
		if errors.Is(err, ErrPipelineNotPending) || errors.Is(err, ErrPipelineAlreadyActive) {
			o.logger.Debug("pipeline not processed", "pipeline_id", payload.PipelineID, "reason", err)
			return nil
		}
		o.logger.Error("failed to process pipeline", "pipeline_id", payload.PipelineID, "error", err)
		return err
	}

	return nil
}

// handleJobCompleted обрабатывает событие о завершённом job.
func (o *Orchestrator) handleJobCompleted(ctx context.Context, delivery *mq.Delivery) error {
	// Парсим payload
	payload, err := mq.ParsePayload[mq.JobCompletedPayload](&delivery.Message)
	if err != nil {
		o.logger.Error("failed to parse job.completed payload", "error", err)
		return err
	}

	o.logger.Debug("received job.completed event",
		"job_id", payload.JobID,
		"pipeline_id", payload.PipelineID,
		"channel", payload.Channel,
		"status", payload.Status,
	)

	// Обрабатываем завершение job
	if err := o.processJobCompleted(ctx, payload); err != nil {
		o.logger.Error("failed to process job completion",
			"job_id", payload.JobID,
			"pipeline_id", payload.PipelineID,
			"error", err,
		)
		return err
	}

	return nil
}

// processPipeline обрабатывает новый pipeline: валидация, run gate,
// раскрытие матрицы, постановка jobs в очередь.
func (o *Orchestrator) processPipeline(ctx context.Context, pipelineID uuid.UUID) error {
	// 1. Загружаем pipeline из БД
	p, err := o.pipelineRepo.GetByID(ctx, pipelineID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPipelineNotFound, pipelineID)
		}
		return fmt.Errorf("get pipeline: %w", err)
	}

	// 2. Проверяем статус
	if p.Status != domain.PipelineStatusPending {
		return ErrPipelineNotPending
	}

	// 3. Валидируем дескриптор.
	// Ошибка конфигурации фиксируется до любых побочных эффектов:
	// jobs не создаются, команды не запускаются.
	if err := engine.Validate(&p.Descriptor); err != nil {
		p.MarkConfigError(err.Error())
		if uerr := o.pipelineRepo.Update(ctx, p); uerr != nil {
			return fmt.Errorf("update pipeline to config_error: %w", uerr)
		}
		o.publishFinished(ctx, p)
		o.logger.Warn("pipeline rejected by validation",
			"pipeline_id", pipelineID,
			"error", err,
		)
		return nil
	}

	// 4. Run gate: push с тегом вне mainline не выполняется.
	gate := engine.Gate{Mainline: p.Descriptor.Mainline}
	if !gate.Allows(&p.Event) {
		p.MarkNotRun()
		if err := o.pipelineRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("update pipeline to not_run: %w", err)
		}
		o.publishFinished(ctx, p)
		o.logger.Info("pipeline gated",
			"pipeline_id", pipelineID,
			"branch", p.Event.Branch,
			"tag", p.Event.Tag,
			"mainline", p.Descriptor.Mainline,
		)
		return nil
	}

	// 5. Раскрываем матрицу
	jobs := engine.Expand(&p.Descriptor, p.ID)

	// Пустая матрица — выполнять нечего, pipeline сразу PASSED
	if len(jobs) == 0 {
		p.MarkRunning()
		p.MarkPassed()
		p.MarkReported()
		if err := o.pipelineRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("update empty pipeline: %w", err)
		}
		o.publishFinished(ctx, p)
		o.logger.Info("pipeline passed with empty matrix", "pipeline_id", pipelineID)
		return nil
	}

	// 6. Захватываем pipeline: добавляем PipelineState в активные
	// ДО записи jobs в БД. Consumer и polling могут увидеть один и
	// тот же PENDING pipeline одновременно — второй получит
	// ErrPipelineAlreadyActive и не создаст дублирующих jobs.
	state := NewPipelineState(p, jobs)
	if err := o.addActivePipeline(state); err != nil {
		return err
	}

	// 7. Создаём jobs и строки шагов в БД
	for i := range jobs {
		job := &jobs[i]
		if err := o.jobRepo.Create(ctx, job); err != nil {
			o.removeActivePipeline(pipelineID)
			return fmt.Errorf("create job for channel %s: %w", job.Channel, err)
		}
		steps := engine.BuildSteps(job, p.Descriptor.Steps)
		if err := o.stepRepo.CreateBatch(ctx, steps); err != nil {
			o.removeActivePipeline(pipelineID)
			return fmt.Errorf("create steps for job %s: %w", job.ID, err)
		}
	}

	// 8. Переводим pipeline в RUNNING
	p.MarkRunning()
	if err := o.pipelineRepo.Update(ctx, p); err != nil {
		o.removeActivePipeline(pipelineID)
		return fmt.Errorf("update pipeline to running: %w", err)
	}

	o.logger.Info("pipeline started",
		"pipeline_id", pipelineID,
		"event", p.Event.Type,
		"branch", p.Event.Branch,
		"jobs", len(jobs),
		"fast_finish", p.Descriptor.FastFinish,
	)

	// 9. Публикуем jobs для агентов
	for i := range jobs {
		job := &jobs[i]
		if err := o.publisher.PublishJobReady(ctx, job.ID, p.ID); err != nil {
			o.logger.Warn("failed to publish job.ready",
				"job_id", job.ID,
				"pipeline_id", pipelineID,
				"error", err,
			)
			// Job создан в БД — агент может забрать через polling
		}
	}

	return nil
}

// processJobCompleted обрабатывает завершение job.
func (o *Orchestrator) processJobCompleted(ctx context.Context, payload mq.JobCompletedPayload) error {
	// 1. Получаем активный PipelineState
	state := o.getActivePipeline(payload.PipelineID)

	// Если pipeline не в памяти, пытаемся восстановить
	if state == nil {
		var err error
		state, err = o.restorePipelineState(ctx, payload.PipelineID)
		if err != nil {
			return fmt.Errorf("restore pipeline state: %w", err)
		}
		if state == nil {
			// Pipeline уже завершён или не существует
			o.logger.Debug("pipeline not active and cannot restore", "pipeline_id", payload.PipelineID)
			return nil
		}
	}

	// 2. Загружаем job из БД (агент уже записал финальный статус)
	job, err := o.jobRepo.GetByID(ctx, payload.JobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, payload.JobID)
		}
		return fmt.Errorf("get job: %w", err)
	}

	// 3. Обновляем состояние
	if err := state.SetJob(job); err != nil {
		return fmt.Errorf("track job %s: %w", job.ID, err)
	}

	if job.Status == domain.JobStatusFailed {
		o.logger.Warn("job failed",
			"pipeline_id", payload.PipelineID,
			"job_id", job.ID,
			"channel", job.Channel,
			"allow_failure", job.AllowFailure,
			"error", job.Error,
		)
	} else {
		o.logger.Debug("job passed",
			"pipeline_id", payload.PipelineID,
			"job_id", job.ID,
			"channel", job.Channel,
		)
	}

	// 4. Выносим вердикт, если пора. При fast-finish это может
	// случиться пока allow-failure jobs ещё работают.
	if !state.IsReported() && state.ShouldReport() {
		if err := o.reportPipeline(ctx, state); err != nil {
			return err
		}
	}

	// 5. Снимаем pipeline с учёта только когда решены все jobs,
	// включая allow-failure хвост.
	if state.AllTerminal() {
		o.removeActivePipeline(payload.PipelineID)
		o.logger.Info("pipeline drained",
			"pipeline_id", payload.PipelineID,
			"stats", state.Stats(),
		)
	}

	return nil
}

// reportPipeline выносит вердикт pipeline и публикует отчёт.
// Вердикт окончателен: поздние allow-failure jobs записываются
// только в БД и итог не меняют.
func (o *Orchestrator) reportPipeline(ctx context.Context, state *PipelineState) error {
	p := state.Pipeline

	verdict := state.Verdict()
	if verdict == domain.PipelineStatusFailed {
		failed := state.FailedChannels()
		p.MarkFailed(fmt.Sprintf("jobs failed on channels: %v", failed))
		o.logger.Warn("pipeline failed",
			"pipeline_id", p.ID,
			"failed_channels", failed,
			"duration", p.Duration(),
		)
	} else {
		p.MarkPassed()
		o.logger.Info("pipeline passed",
			"pipeline_id", p.ID,
			"duration", p.Duration(),
		)
	}
	p.MarkReported()
	state.MarkReported()

	if err := o.pipelineRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("update pipeline verdict: %w", err)
	}

	o.publishFinished(ctx, p)
	return nil
}

// publishFinished публикует итог pipeline для внешних потребителей.
// Ошибка публикации не фатальна: статус уже записан в БД.
func (o *Orchestrator) publishFinished(ctx context.Context, p *domain.Pipeline) {
	payload := mq.PipelineFinishedPayload{
		PipelineID: p.ID,
		Status:     string(p.Status),
		Error:      p.Error,
	}
	if err := o.publisher.PublishPipelineFinished(ctx, payload); err != nil {
		o.logger.Warn("failed to publish pipeline.finished",
			"pipeline_id", p.ID,
			"status", p.Status,
			"error", err,
		)
	}
}

// restorePipelineState восстанавливает PipelineState из БД.
// Используется когда job.completed приходит для pipeline, которого
// нет в памяти (после рестарта Orchestrator).
func (o *Orchestrator) restorePipelineState(ctx context.Context, pipelineID uuid.UUID) (*PipelineState, error) {
	// Загружаем pipeline
	p, err := o.pipelineRepo.GetByID(ctx, pipelineID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil // Pipeline не существует
		}
		return nil, fmt.Errorf("get pipeline: %w", err)
	}

	// Вердикт уже вынесен — агент сам записал финальный статус job,
	// оркестратору делать нечего
	if p.IsFinished() {
		return nil, nil
	}

	// Загружаем jobs и восстанавливаем состояние
	jobs, err := o.jobRepo.ListByPipeline(ctx, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		// RUNNING pipeline без jobs — повреждённое состояние
		return nil, fmt.Errorf("pipeline %s is running but has no jobs", pipelineID)
	}

	state := NewPipelineState(p, jobs)

	// Добавляем в активные
	if err := o.addActivePipeline(state); err != nil {
		if errors.Is(err, ErrPipelineAlreadyActive) {
			// Кто-то уже восстановил — возвращаем его
			return o.getActivePipeline(pipelineID), nil
		}
		return nil, err
	}

	o.logger.Info("pipeline state restored",
		"pipeline_id", pipelineID,
		"stats", state.Stats(),
	)

	return state, nil
}
