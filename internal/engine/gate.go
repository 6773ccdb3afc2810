package engine

import "github.com/shaiso/Conveyor/internal/domain"

// Gate — run gate: решает, инстанцировать ли pipeline для события.
//
// Политика: запускать всегда, кроме случая когда событие — push,
// несущий тег, в ветку отличную от mainline. Эквивалентно:
// не-push события проходят всегда; push проходит, если тега нет
// или ветка — mainline.
//
// Gate вычисляется ровно один раз, до создания каких-либо jobs.
// Отклонение — не ошибка: pipeline получает статус NOT_RUN.
type Gate struct {
	// Mainline — имя основной ветки из дескриптора.
	Mainline string
}

// Allows возвращает true, если событие должно инстанцировать pipeline.
// Чистая функция: никаких побочных эффектов.
func (g Gate) Allows(ev *domain.Event) bool {
	if !ev.IsPush() {
		return true
	}
	if !ev.HasTag() {
		return true
	}
	return ev.Branch == g.Mainline
}
