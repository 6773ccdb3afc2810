package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/repo"
)

// handleJobReady обрабатывает событие о новом job из очереди jobs.ready.
func (a *Agent) handleJobReady(ctx context.Context, delivery *mq.Delivery) error {
	// Парсим payload
	payload, err := mq.ParsePayload[mq.JobReadyPayload](&delivery.Message)
	if err != nil {
		a.logger.Error("failed to parse job.ready payload", "error", err)
		return err
	}

	a.logger.Debug("received job.ready event",
		"job_id", payload.JobID,
		"pipeline_id", payload.PipelineID,
	)

	// Обрабатываем job
	if err := a.processJob(ctx, payload.JobID); err != nil {
		// Ожидаемые ситуации — не возвращаем ошибку (ack)
		if errors.Is(err, ErrJobNotFound) || errors.Is(err, ErrJobNotPending) {
			a.logger.Debug("job not processed", "job_id", payload.JobID, "reason", err)
			return nil
		}
		a.logger.Error("failed to process job", "job_id", payload.JobID, "error", err)
		return err
	}

	return nil
}

// processJob загружает job из БД, выполняет его шаги и публикует результат.
func (a *Agent) processJob(ctx context.Context, jobID uuid.UUID) error {
	// 1. Загружаем job из БД
	job, err := a.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return fmt.Errorf("get job: %w", err)
	}

	// 2. Проверяем статус
	if job.Status != domain.JobStatusPending {
		return ErrJobNotPending
	}

	// 3. Помечаем как running
	job.MarkRunning()
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to running: %w", err)
	}

	a.logger.Info("job started",
		"job_id", job.ID,
		"pipeline_id", job.PipelineID,
		"channel", job.Channel,
		"allow_failure", job.AllowFailure,
	)

	// 4. Загружаем шаги, отсортированные по позиции
	steps, err := a.stepRepo.ListByJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("list steps: %w", err)
	}

	// 5. Выполняем шаги последовательно.
	// Job без единого исполняемого шага проходит без запуска команд.
	errMsg := a.runSteps(ctx, job, steps)

	// 6. Финализируем job
	if errMsg == "" {
		job.MarkPassed()
	} else {
		job.MarkFailed(errMsg)
	}
	if err := a.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("update job to %s: %w", job.Status, err)
	}

	if errMsg == "" {
		a.logger.Info("job passed",
			"job_id", job.ID,
			"channel", job.Channel,
			"duration", job.Duration(),
		)
	} else {
		a.logger.Warn("job failed",
			"job_id", job.ID,
			"channel", job.Channel,
			"duration", job.Duration(),
			"error", errMsg,
		)
	}

	return a.publishCompletion(ctx, job)
}

// runSteps выполняет PENDING шаги job по порядку позиций.
//
// Возвращает пустую строку при успехе или сообщение об ошибке
// первого упавшего шага. После падения остальные шаги не
// запускаются и остаются в PENDING.
func (a *Agent) runSteps(ctx context.Context, job *domain.Job, steps []domain.Step) string {
	for i := range steps {
		step := &steps[i]

		// SKIPPED шаги (предикат не прошёл) агент не трогает
		if step.Status != domain.StepStatusPending {
			continue
		}

		// Запущенную команду не прерываем, но между шагами
		// остановка агента учитывается
		if ctx.Err() != nil {
			return fmt.Sprintf("agent stopped before step %s", step.StepID)
		}

		if errMsg := a.runStep(ctx, job, step); errMsg != "" {
			return errMsg
		}
	}
	return ""
}

// runStep выполняет один шаг и записывает результат в БД.
func (a *Agent) runStep(ctx context.Context, job *domain.Job, step *domain.Step) string {
	step.MarkRunning()
	a.updateStep(ctx, step)

	a.logger.Debug("step started",
		"job_id", job.ID,
		"step_id", step.StepID,
		"class", step.Class,
		"command", step.Command,
	)

	executor := a.registry.Get(step.Class)
	result, execErr := executor.Execute(ctx, step)

	// Инфраструктурная ошибка: команда не запустилась
	if execErr != nil {
		step.MarkFailed(-1, execErr.Error())
		a.updateStep(ctx, step)
		return fmt.Sprintf("step %s: %v", step.StepID, execErr)
	}

	// Логическая ошибка: ненулевой exit code
	if result.ExitCode != 0 {
		step.MarkFailed(result.ExitCode, result.Output)
		a.updateStep(ctx, step)
		a.logger.Warn("step failed",
			"job_id", job.ID,
			"step_id", step.StepID,
			"exit_code", result.ExitCode,
		)
		return fmt.Sprintf("step %s exited with code %d", step.StepID, result.ExitCode)
	}

	step.MarkPassed(0, result.Output)
	a.updateStep(ctx, step)

	a.logger.Debug("step passed",
		"job_id", job.ID,
		"step_id", step.StepID,
		"duration", step.Duration(),
	)

	return ""
}

// updateStep записывает состояние шага в БД.
// Ошибка записи не прерывает выполнение job.
func (a *Agent) updateStep(ctx context.Context, step *domain.Step) {
	if a.stepRepo == nil {
		return
	}
	if err := a.stepRepo.Update(ctx, step); err != nil {
		a.logger.Error("failed to update step",
			"step_id", step.StepID,
			"status", step.Status,
			"error", err,
		)
	}
}

// publishCompletion публикует событие job.completed.
func (a *Agent) publishCompletion(ctx context.Context, job *domain.Job) error {
	if a.publisher == nil {
		a.logger.Warn("publisher not available, skipping job.completed publish",
			"job_id", job.ID,
		)
		return nil
	}

	payload := mq.JobCompletedPayload{
		JobID:        job.ID,
		PipelineID:   job.PipelineID,
		Channel:      string(job.Channel),
		Status:       string(job.Status),
		AllowFailure: job.AllowFailure,
		Error:        job.Error,
	}

	if err := a.publisher.PublishJobCompleted(ctx, payload); err != nil {
		a.logger.Warn("failed to publish job.completed",
			"job_id", job.ID,
			"error", err,
		)
		// Не возвращаем ошибку — job обновлён в БД
	}

	return nil
}
