package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
)

// SelectSteps возвращает шаги, применимые к каналу.
//
// Порядок объявления сохраняется всегда: отбор только прореживает
// список, никогда не переставляет. Предикаты чистые — результат
// зависит только от канала, не от исходов предыдущих шагов.
func SelectSteps(ch domain.Channel, steps []domain.StepDef) []domain.StepDef {
	selected := make([]domain.StepDef, 0, len(steps))
	for i := range steps {
		if steps[i].When.Eval(ch) {
			selected = append(selected, steps[i])
		}
	}
	return selected
}

// PartitionSteps разделяет шаги на применимые и пропущенные для канала.
// Оба среза сохраняют порядок объявления. Пропуск — не ошибка:
// шаг просто не входит в выполняемую последовательность job.
func PartitionSteps(ch domain.Channel, steps []domain.StepDef) (selected, skipped []domain.StepDef) {
	for i := range steps {
		if steps[i].When.Eval(ch) {
			selected = append(selected, steps[i])
		} else {
			skipped = append(skipped, steps[i])
		}
	}
	return selected, skipped
}

// BuildSteps материализует строки шагов для одного job.
//
// Для каждого шага дескриптора создаётся строка с его позицией;
// не прошедшие предикат сразу получают SKIPPED, остальные — PENDING.
// Агент выполняет только PENDING строки, строго по позициям.
func BuildSteps(job *domain.Job, steps []domain.StepDef) []domain.Step {
	rows := make([]domain.Step, 0, len(steps))

	now := time.Now()
	for i := range steps {
		def := &steps[i]

		status := domain.StepStatusPending
		if !def.When.Eval(job.Channel) {
			status = domain.StepStatusSkipped
		}

		rows = append(rows, domain.Step{
			ID:        uuid.New(),
			JobID:     job.ID,
			Position:  i,
			StepID:    def.ID,
			Name:      def.Name,
			Class:     def.Class,
			Command:   def.Command,
			Status:    status,
			CreatedAt: now,
		})
	}

	return rows
}
