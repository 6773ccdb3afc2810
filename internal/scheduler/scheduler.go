package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/repo"
)

// Scheduler — планировщик, обрабатывающий due triggers.
type Scheduler struct {
	triggerRepo  *repo.TriggerRepo
	pipelineRepo *repo.PipelineRepo
	publisher    *mq.Publisher
	logger       *slog.Logger
	batchSize    int
}

// Config — конфигурация Scheduler.
type Config struct {
	TriggerRepo  *repo.TriggerRepo
	PipelineRepo *repo.PipelineRepo
	Publisher    *mq.Publisher
	Logger       *slog.Logger
	BatchSize    int // количество triggers за один тик (default: 100)
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	return &Scheduler{
		triggerRepo:  cfg.TriggerRepo,
		pipelineRepo: cfg.PipelineRepo,
		publisher:    cfg.Publisher,
		logger:       cfg.Logger,
		batchSize:    batchSize,
	}
}

// Tick выполняет один тик планировщика.
//
// 1. Находит due triggers (enabled=true, next_due_at <= now)
// 2. Для каждого trigger создаёт pipeline с событием типа cron
// 3. Обновляет next_due_at
// 4. Публикует pipeline.triggered в RabbitMQ
//
// Ошибки одного trigger не блокируют обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	// 1. Находим due triggers
	triggers, err := s.triggerRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due triggers: %w", err)
	}

	if len(triggers) == 0 {
		return nil
	}

	s.logger.Debug("found due triggers", "count", len(triggers))

	// 2. Обрабатываем каждый trigger
	var processed, created int
	for i := range triggers {
		trigger := &triggers[i]

		pipelineCreated, err := s.processTrigger(ctx, trigger, now)
		if err != nil {
			s.logger.Error("failed to process trigger",
				"trigger_id", trigger.ID,
				"trigger_name", trigger.Name,
				"error", err,
			)
			// Продолжаем обработку остальных
			continue
		}

		processed++
		if pipelineCreated {
			created++
		}
	}

	s.logger.Info("scheduler tick completed",
		"due", len(triggers),
		"processed", processed,
		"pipelines_created", created,
	)

	return nil
}

// processTrigger обрабатывает один trigger.
// Возвращает true, если pipeline был создан (не был дубликатом).
func (s *Scheduler) processTrigger(ctx context.Context, trigger *domain.Trigger, now time.Time) (bool, error) {
	// 1. Формируем idempotency key: "{trigger_id}_{next_due_at_unix}"
	// Это гарантирует, что для одного trigger и конкретного времени
	// будет создан только один pipeline
	idempKey := fmt.Sprintf("%s_%d", trigger.ID, trigger.NextDueAt.Unix())

	// 2. Проверяем, не создан ли уже pipeline (idempotency)
	existing, err := s.pipelineRepo.GetByIdempotencyKey(ctx, idempKey)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("check idempotency: %w", err)
	}

	var pipelineCreated bool
	var pipelineID uuid.UUID

	if existing != nil {
		// Pipeline уже существует — просто обновляем next_due_at
		s.logger.Debug("pipeline already exists (idempotency)",
			"trigger_id", trigger.ID,
			"pipeline_id", existing.ID,
			"idempotency_key", idempKey,
		)
		pipelineID = existing.ID
		pipelineCreated = false
	} else {
		// 3. Создаём новый pipeline со снимком дескриптора триггера
		p := &domain.Pipeline{
			ID: uuid.New(),
			Event: domain.Event{
				Type:       domain.EventTypeCron,
				Branch:     trigger.Branch,
				ReceivedAt: now,
			},
			Descriptor:     trigger.Descriptor,
			Status:         domain.PipelineStatusPending,
			IdempotencyKey: idempKey,
			CreatedAt:      now,
		}

		if err := s.pipelineRepo.Create(ctx, p); err != nil {
			return false, fmt.Errorf("create pipeline: %w", err)
		}

		s.logger.Info("created pipeline from trigger",
			"pipeline_id", p.ID,
			"trigger_id", trigger.ID,
			"trigger_name", trigger.Name,
			"branch", trigger.Branch,
		)

		pipelineID = p.ID
		pipelineCreated = true
	}

	// 4. Вычисляем следующее время срабатывания
	nextDue, err := CalculateNextDue(trigger, now)
	if err != nil {
		s.logger.Error("failed to calculate next due",
			"trigger_id", trigger.ID,
			"error", err,
		)
		// Trigger некорректный — лучше не трогать next_due_at
		return pipelineCreated, nil
	}

	// 5. Обновляем trigger
	trigger.RecordFire(pipelineID, nextDue)
	if err := s.triggerRepo.Update(ctx, trigger); err != nil {
		return pipelineCreated, fmt.Errorf("update trigger: %w", err)
	}

	// 6. Публикуем событие в RabbitMQ (если publisher настроен и pipeline создан)
	if s.publisher != nil && pipelineCreated {
		if err := s.publisher.PublishPipelineTriggered(ctx, pipelineID); err != nil {
			// Не фатальная ошибка — pipeline уже создан в БД
			// Orchestrator может забрать его через polling
			s.logger.Warn("failed to publish pipeline.triggered",
				"pipeline_id", pipelineID,
				"error", err,
			)
		}
	}

	return pipelineCreated, nil
}
