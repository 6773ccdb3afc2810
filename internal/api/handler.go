package api

import (
	"log/slog"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/mq"
	"github.com/shaiso/Conveyor/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	pipelineRepo *repo.PipelineRepo
	jobRepo      *repo.JobRepo
	stepRepo     *repo.StepRepo
	triggerRepo  *repo.TriggerRepo
	publisher    *mq.Publisher

	// defaultDescriptor — дескриптор, используемый для событий без
	// inline-дескриптора (загружается из файла при старте сервера).
	defaultDescriptor *domain.Descriptor

	logger *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	PipelineRepo      *repo.PipelineRepo
	JobRepo           *repo.JobRepo
	StepRepo          *repo.StepRepo
	TriggerRepo       *repo.TriggerRepo
	Publisher         *mq.Publisher
	DefaultDescriptor *domain.Descriptor
	Logger            *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		pipelineRepo:      cfg.PipelineRepo,
		jobRepo:           cfg.JobRepo,
		stepRepo:          cfg.StepRepo,
		triggerRepo:       cfg.TriggerRepo,
		publisher:         cfg.Publisher,
		defaultDescriptor: cfg.DefaultDescriptor,
		logger:            cfg.Logger,
	}
}
