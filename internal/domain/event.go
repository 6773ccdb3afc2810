package domain

import "time"

// EventType — тип триггерного события.
type EventType string

const (
	// EventTypePush — push в репозиторий.
	EventTypePush EventType = "push"

	// EventTypePullRequest — открытие или обновление pull request.
	EventTypePullRequest EventType = "pull_request"

	// EventTypeCron — срабатывание cron-триггера (создаётся scheduler'ом).
	EventTypeCron EventType = "cron"

	// EventTypeManual — ручной запуск через API или CLI.
	EventTypeManual EventType = "manual"
)

// KnownEventType возвращает true для объявленных типов событий.
func KnownEventType(t EventType) bool {
	switch t {
	case EventTypePush, EventTypePullRequest, EventTypeCron, EventTypeManual:
		return true
	default:
		return false
	}
}

// Event — контекст триггерного события.
//
// Event вместе с дескриптором полностью определяет поведение pipeline:
// run gate смотрит на тип события, ветку и тег; предикаты шагов — на канал.
// Событие иммутабельно после создания pipeline.
type Event struct {
	// Type — тип события.
	Type EventType `json:"type"`

	// Branch — имя ветки, к которой относится событие.
	Branch string `json:"branch,omitempty"`

	// Tag — имя тега, если событие несёт тег. Пустая строка = тега нет.
	Tag string `json:"tag,omitempty"`

	// Commit — хеш коммита (для отчётов; оркестратор его не интерпретирует).
	Commit string `json:"commit,omitempty"`

	// ReceivedAt — время получения события.
	ReceivedAt time.Time `json:"received_at"`
}

// HasTag возвращает true, если событие несёт тег.
func (e *Event) HasTag() bool {
	return e.Tag != ""
}

// IsPush возвращает true для push-событий.
func (e *Event) IsPush() bool {
	return e.Type == EventTypePush
}
