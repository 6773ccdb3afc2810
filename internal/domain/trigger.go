package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trigger — cron-триггер, автоматически создающий pipelines.
//
// Trigger позволяет запускать матрицу:
// - По cron-выражению: "0 4 * * *" (каждый день в 4:00)
// - По интервалу: каждые N секунд
//
// Scheduler проверяет next_due_at и создаёт pipeline с событием
// типа cron, когда время подошло.
type Trigger struct {
	// ID — уникальный идентификатор триггера.
	ID uuid.UUID `json:"id"`

	// Name — имя триггера для удобства.
	Name string `json:"name"`

	// CronExpr — cron-выражение.
	// Формат: "минуты часы дни месяцы дни_недели"
	// Если задан CronExpr, IntervalSec игнорируется.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — интервал в секундах между запусками.
	// Используется если CronExpr не задан.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — часовой пояс для вычисления времени.
	// По умолчанию: "UTC".
	Timezone string `json:"timezone"`

	// Branch — ветка, которую несёт создаваемое cron-событие.
	Branch string `json:"branch"`

	// Descriptor — дескриптор матрицы для создаваемых pipelines.
	Descriptor Descriptor `json:"descriptor"`

	// Enabled — флаг активности. Выключенные триггеры scheduler игнорирует.
	Enabled bool `json:"enabled"`

	// NextDueAt — время следующего срабатывания.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastFiredAt — время последнего срабатывания.
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`

	// LastPipelineID — ID последнего созданного pipeline.
	LastPipelineID *uuid.UUID `json:"last_pipeline_id,omitempty"`

	// CreatedAt — время создания триггера.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron возвращает true, если триггер использует cron-выражение.
func (t *Trigger) IsCron() bool {
	return t.CronExpr != ""
}

// IsInterval возвращает true, если триггер использует интервал.
func (t *Trigger) IsInterval() bool {
	return t.CronExpr == "" && t.IntervalSec > 0
}

// IsDue проверяет, пора ли срабатывать.
func (t *Trigger) IsDue(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	if t.NextDueAt == nil {
		return false
	}
	return now.After(*t.NextDueAt) || now.Equal(*t.NextDueAt)
}

// RecordFire записывает информацию о срабатывании.
func (t *Trigger) RecordFire(pipelineID uuid.UUID, nextDue time.Time) {
	now := time.Now()
	t.LastFiredAt = &now
	t.LastPipelineID = &pipelineID
	t.NextDueAt = &nextDue
	t.UpdatedAt = now
}
