package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/engine"
	"github.com/shaiso/Conveyor/internal/repo"
	"github.com/shaiso/Conveyor/internal/scheduler"
)

// ListTriggers возвращает список triggers с фильтрацией.
// GET /api/v1/triggers?enabled=...&limit=...&offset=...
func (h *Handler) ListTriggers(w http.ResponseWriter, r *http.Request) {
	filter := repo.TriggerFilter{}

	// Парсим query параметры
	if enabledStr := r.URL.Query().Get("enabled"); enabledStr != "" {
		enabled := enabledStr == "true"
		filter.Enabled = &enabled
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		filter.Limit = int(mustParseInt(limitStr, 50))
	} else {
		filter.Limit = 50
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		filter.Offset = int(mustParseInt(offsetStr, 0))
	}

	triggers, err := h.triggerRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TriggerResponse, len(triggers))
	for i := range triggers {
		result[i] = TriggerFromDomain(&triggers[i])
	}

	List(w, result, len(result))
}

// CreateTrigger создаёт новый trigger.
// POST /api/v1/triggers
func (h *Handler) CreateTrigger(w http.ResponseWriter, r *http.Request) {
	var req CreateTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Валидация
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	if req.CronExpr == "" && req.IntervalSec <= 0 {
		BadRequest(w, "either cron_expr or interval_sec is required")
		return
	}

	if req.CronExpr != "" {
		if err := scheduler.ValidateCronExpr(req.CronExpr); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	// Дескриптор фиксируется в триггере: невалидный отклоняем сразу
	descriptor := req.Descriptor
	if descriptor == nil {
		descriptor = h.defaultDescriptor
	}
	if descriptor == nil {
		BadRequest(w, "descriptor is required (no server default configured)")
		return
	}
	if err := engine.Validate(descriptor); err != nil {
		InvalidState(w, err.Error())
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	// Cron-события без ветки выполняются на mainline
	branch := req.Branch
	if branch == "" {
		branch = descriptor.Mainline
	}

	now := time.Now()

	trigger := &domain.Trigger{
		ID:          uuid.New(),
		Name:        req.Name,
		CronExpr:    req.CronExpr,
		IntervalSec: req.IntervalSec,
		Timezone:    timezone,
		Branch:      branch,
		Descriptor:  *descriptor,
		Enabled:     req.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	nextDue, err := scheduler.CalculateInitialNextDue(trigger)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}
	trigger.NextDueAt = &nextDue

	if err := h.triggerRepo.Create(r.Context(), trigger); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, TriggerFromDomain(trigger))
}

// GetTrigger возвращает trigger по ID.
// GET /api/v1/triggers/{id}
func (h *Handler) GetTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	trigger, err := h.triggerRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "trigger not found") {
		return
	}

	Success(w, TriggerFromDomain(trigger))
}

// UpdateTrigger обновляет trigger.
// PUT /api/v1/triggers/{id}
func (h *Handler) UpdateTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	var req UpdateTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	trigger, err := h.triggerRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "trigger not found") {
		return
	}

	scheduleChanged := false

	if req.Name != nil {
		trigger.Name = *req.Name
	}
	if req.CronExpr != nil {
		if *req.CronExpr != "" {
			if err := scheduler.ValidateCronExpr(*req.CronExpr); err != nil {
				BadRequest(w, err.Error())
				return
			}
		}
		trigger.CronExpr = *req.CronExpr
		scheduleChanged = true
	}
	if req.IntervalSec != nil {
		trigger.IntervalSec = *req.IntervalSec
		scheduleChanged = true
	}
	if req.Timezone != nil {
		trigger.Timezone = *req.Timezone
		scheduleChanged = true
	}
	if req.Branch != nil {
		trigger.Branch = *req.Branch
	}
	if req.Descriptor != nil {
		if err := engine.Validate(req.Descriptor); err != nil {
			InvalidState(w, err.Error())
			return
		}
		trigger.Descriptor = *req.Descriptor
	}

	if trigger.CronExpr == "" && trigger.IntervalSec <= 0 {
		BadRequest(w, "either cron_expr or interval_sec is required")
		return
	}

	// Пересчитываем расписание после изменения cron/interval/timezone
	if scheduleChanged {
		nextDue, err := scheduler.CalculateInitialNextDue(trigger)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		trigger.NextDueAt = &nextDue
	}

	trigger.UpdatedAt = time.Now()

	if err := h.triggerRepo.Update(r.Context(), trigger); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, TriggerFromDomain(trigger))
}

// DeleteTrigger удаляет trigger.
// DELETE /api/v1/triggers/{id}
func (h *Handler) DeleteTrigger(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	if err := h.triggerRepo.Delete(r.Context(), id); err != nil {
		if HandleRepoError(w, h.logger, err, "trigger not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// SetTriggerEnabled включает или выключает trigger.
// PUT /api/v1/triggers/{id}/enabled
func (h *Handler) SetTriggerEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid trigger id")
		return
	}

	var req SetEnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if err := h.triggerRepo.SetEnabled(r.Context(), id, req.Enabled); err != nil {
		if HandleRepoError(w, h.logger, err, "trigger not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	// Возвращаем обновлённый trigger
	trigger, err := h.triggerRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "trigger not found") {
		return
	}

	Success(w, TriggerFromDomain(trigger))
}
