package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/repo"
)

// Default configuration values.
const (
	defaultPollInterval = 10 * time.Second
	defaultBatchSize    = 100
)

// Orchestrator управляет выполнением pipelines.
//
// Orchestrator — центральный компонент системы, который:
//   - Получает новые pipelines из очереди RabbitMQ (event-driven)
//   - Периодически проверяет pending pipelines в БД (polling fallback)
//   - Применяет run gate и раскрывает матрицу в jobs
//   - Отслеживает завершение jobs
//   - Выносит вердикт pipeline (PASSED/FAILED) и публикует отчёт
type Orchestrator struct {
	// Repositories
	pipelineRepo *repo.PipelineRepo
	jobRepo      *repo.JobRepo
	stepRepo     *repo.StepRepo

	// MQ
	publisher *mq.Publisher
	conn      *mq.Connection

	// Active pipelines — pipelines в процессе выполнения (pipelineID → state)
	activePipelines map[uuid.UUID]*PipelineState
	mu              sync.RWMutex

	// Consumers
	pipelineConsumer *mq.Consumer
	jobConsumer      *mq.Consumer

	// Configuration
	pollInterval time.Duration
	batchSize    int

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Repositories
	PipelineRepo *repo.PipelineRepo
	JobRepo      *repo.JobRepo
	StepRepo     *repo.StepRepo

	// MQ
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Polling configuration
	PollInterval time.Duration // интервал polling (default: 10s)
	BatchSize    int           // количество pipelines за один poll (default: 100)

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		pipelineRepo:    cfg.PipelineRepo,
		jobRepo:         cfg.JobRepo,
		stepRepo:        cfg.StepRepo,
		publisher:       cfg.Publisher,
		conn:            cfg.Conn,
		activePipelines: make(map[uuid.UUID]*PipelineState),
		pollInterval:    pollInterval,
		batchSize:       batchSize,
		logger:          logger,
	}
}

// Start запускает Orchestrator.
//
// Запускает:
//   - Consumer для pipelines.triggered
//   - Consumer для jobs.completed
//   - Polling горутину для fallback
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	o.cancelFunc = cancel

	o.logger.Info("starting orchestrator",
		"poll_interval", o.pollInterval,
		"batch_size", o.batchSize,
	)

	// Создаём consumers
	o.pipelineConsumer = mq.NewConsumer(o.conn, o.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueuePipelinesTriggered),
		Handler:  o.handlePipelineTriggered,
		Prefetch: 10,
	})

	o.jobConsumer = mq.NewConsumer(o.conn, o.logger, mq.ConsumerConfig{
		Queue:    string(mq.QueueJobsCompleted),
		Handler:  o.handleJobCompleted,
		Prefetch: 10,
	})

	// Запускаем pipeline consumer
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.pipelineConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("pipeline consumer error", "error", err)
		}
	}()

	// Запускаем job consumer
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.jobConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Error("job consumer error", "error", err)
		}
	}()

	// Запускаем polling
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.pollLoop(ctx)
	}()

	o.logger.Info("orchestrator started")
	return nil
}

// Stop останавливает Orchestrator.
func (o *Orchestrator) Stop() {
	o.stoppedMu.Lock()
	o.stopped = true
	o.stoppedMu.Unlock()

	o.logger.Info("stopping orchestrator...")

	if o.cancelFunc != nil {
		o.cancelFunc()
	}

	// Останавливаем consumers
	if o.pipelineConsumer != nil {
		o.pipelineConsumer.Stop()
	}
	if o.jobConsumer != nil {
		o.jobConsumer.Stop()
	}

	// Ждём завершения горутин
	o.wg.Wait()

	o.logger.Info("orchestrator stopped",
		"active_pipelines", len(o.activePipelines),
	)
}

// IsStopped проверяет, остановлен ли Orchestrator.
func (o *Orchestrator) IsStopped() bool {
	o.stoppedMu.RLock()
	defer o.stoppedMu.RUnlock()
	return o.stopped
}

// pollLoop — цикл polling для fallback.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	// Первый poll сразу при старте (подхватываем pipelines созданные пока были выключены)
	o.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.poll(ctx)
		}
	}
}

// poll выполняет один цикл polling.
func (o *Orchestrator) poll(ctx context.Context) {
	pipelines, err := o.pipelineRepo.ListPending(ctx, o.batchSize)
	if err != nil {
		o.logger.Error("failed to list pending pipelines", "error", err)
		return
	}

	if len(pipelines) == 0 {
		return
	}

	o.logger.Debug("poll found pending pipelines", "count", len(pipelines))

	for i := range pipelines {
		p := &pipelines[i]

		// Проверяем, не обрабатывается ли уже
		if o.isPipelineActive(p.ID) {
			continue
		}

		// Обрабатываем pipeline
		if err := o.processPipeline(ctx, p.ID); err != nil {
			o.logger.Error("failed to process pipeline from poll",
				"pipeline_id", p.ID,
				"error", err,
			)
		}
	}
}

// isPipelineActive проверяет, находится ли pipeline в обработке.
func (o *Orchestrator) isPipelineActive(pipelineID uuid.UUID) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, exists := o.activePipelines[pipelineID]
	return exists
}

// getActivePipeline возвращает активный PipelineState.
func (o *Orchestrator) getActivePipeline(pipelineID uuid.UUID) *PipelineState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.activePipelines[pipelineID]
}

// addActivePipeline добавляет pipeline в активные.
func (o *Orchestrator) addActivePipeline(state *PipelineState) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.activePipelines[state.PipelineID()]; exists {
		return ErrPipelineAlreadyActive
	}

	o.activePipelines[state.PipelineID()] = state
	return nil
}

// removeActivePipeline удаляет pipeline из активных.
func (o *Orchestrator) removeActivePipeline(pipelineID uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activePipelines, pipelineID)
}

// ActivePipelinesCount возвращает количество активных pipelines.
func (o *Orchestrator) ActivePipelinesCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.activePipelines)
}

// GetActivePipelineStats возвращает статистику по активному pipeline.
func (o *Orchestrator) GetActivePipelineStats(pipelineID uuid.UUID) (PipelineStats, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	state, exists := o.activePipelines[pipelineID]
	if !exists {
		return PipelineStats{}, false
	}

	return state.Stats(), true
}
