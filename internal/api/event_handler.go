package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/engine"
)

// SubmitEvent принимает триггерное событие и создаёт pipeline.
// POST /api/v1/events
//
// Дескриптор берётся из запроса (inline) или из серверного
// дескриптора по умолчанию. Невалидный дескриптор отклоняется
// сразу (422), до создания pipeline.
func (h *Handler) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	now := time.Now()

	event := domain.Event{
		Type:       domain.EventType(req.Type),
		Branch:     req.Branch,
		Tag:        req.Tag,
		Commit:     req.Commit,
		ReceivedAt: now,
	}

	if err := engine.ValidateEvent(&event); err != nil {
		BadRequest(w, err.Error())
		return
	}

	// Определяем дескриптор
	descriptor := req.Descriptor
	if descriptor == nil {
		descriptor = h.defaultDescriptor
	}
	if descriptor == nil {
		BadRequest(w, "descriptor is required (no server default configured)")
		return
	}

	// Eager-валидация: невалидная конфигурация не порождает pipeline
	if err := engine.Validate(descriptor); err != nil {
		InvalidState(w, err.Error())
		return
	}

	// Manual-события без ветки выполняются на mainline
	if event.Type == domain.EventTypeManual && event.Branch == "" {
		event.Branch = descriptor.Mainline
	}

	// Проверяем idempotency key
	if req.IdempotencyKey != "" {
		existing, err := h.pipelineRepo.GetByIdempotencyKey(r.Context(), req.IdempotencyKey)
		if err == nil && existing != nil {
			// Возвращаем существующий pipeline
			Success(w, PipelineFromDomain(*existing))
			return
		}
	}

	pipeline := &domain.Pipeline{
		ID:             uuid.New(),
		Event:          event,
		Descriptor:     *descriptor,
		Status:         domain.PipelineStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
	}

	if err := h.pipelineRepo.Create(r.Context(), pipeline); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	// Публикуем событие в очередь
	if h.publisher != nil {
		if err := h.publisher.PublishPipelineTriggered(r.Context(), pipeline.ID); err != nil {
			h.logger.Warn("failed to publish pipeline.triggered", "pipeline_id", pipeline.ID, "error", err)
		}
	}

	Created(w, PipelineFromDomain(*pipeline))
}
