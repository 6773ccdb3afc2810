package domain

// PipelineStatus — статус pipeline.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → PASSED
//	                  ↘ FAILED
//	PENDING → NOT_RUN      (run gate отклонил событие)
//	PENDING → CONFIG_ERROR (дескриптор не прошёл валидацию)
type PipelineStatus string

const (
	// PipelineStatusPending — pipeline создан, но ещё не обработан оркестратором.
	PipelineStatusPending PipelineStatus = "PENDING"

	// PipelineStatusRunning — jobs созданы и выполняются агентами.
	PipelineStatusRunning PipelineStatus = "RUNNING"

	// PipelineStatusPassed — все обязательные jobs прошли успешно.
	// Пустая матрица каналов тоже даёт PASSED (вакуумный успех).
	PipelineStatusPassed PipelineStatus = "PASSED"

	// PipelineStatusFailed — хотя бы один обязательный (не allow-failure) job упал.
	PipelineStatusFailed PipelineStatus = "FAILED"

	// PipelineStatusNotRun — run gate отклонил событие, jobs не создавались.
	// Отличается от FAILED: это осознанный no-op, а не ошибка.
	PipelineStatusNotRun PipelineStatus = "NOT_RUN"

	// PipelineStatusConfigError — дескриптор не прошёл валидацию.
	// Фиксируется до создания jobs и до запуска каких-либо процессов.
	PipelineStatusConfigError PipelineStatus = "CONFIG_ERROR"
)

// IsTerminal возвращает true, если статус финальный (pipeline завершён).
// Финальные статусы поглощающие: переходов из них нет.
func (s PipelineStatus) IsTerminal() bool {
	switch s {
	case PipelineStatusPassed, PipelineStatusFailed, PipelineStatusNotRun, PipelineStatusConfigError:
		return true
	default:
		return false
	}
}

// JobStatus — статус выполнения job.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → PASSED
//	                  ↘ FAILED
type JobStatus string

const (
	// JobStatusPending — job создан, ожидает агента.
	JobStatusPending JobStatus = "PENDING"

	// JobStatusRunning — агент выполняет шаги job.
	JobStatusRunning JobStatus = "RUNNING"

	// JobStatusPassed — все выбранные шаги прошли успешно
	// (включая случай пустого списка шагов).
	JobStatusPassed JobStatus = "PASSED"

	// JobStatusFailed — один из шагов вернул ненулевой exit code.
	JobStatusFailed JobStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusPassed, JobStatusFailed:
		return true
	default:
		return false
	}
}

// StepStatus — статус шага внутри job.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → PASSED
//	                  ↘ FAILED
//	SKIPPED — предикат исключил шаг для канала job (ставится при создании).
//
// Шаги после упавшего остаются в PENDING: агент прекращает
// выполнение job после первой ошибки и не трогает оставшиеся шаги.
type StepStatus string

const (
	// StepStatusPending — шаг выбран для выполнения, ожидает очереди внутри job.
	StepStatusPending StepStatus = "PENDING"

	// StepStatusRunning — команда шага запущена.
	StepStatusRunning StepStatus = "RUNNING"

	// StepStatusPassed — команда завершилась с exit code 0.
	StepStatusPassed StepStatus = "PASSED"

	// StepStatusFailed — команда завершилась с ненулевым exit code.
	StepStatusFailed StepStatus = "FAILED"

	// StepStatusSkipped — предикат шага вернул false для канала job.
	// Это не ошибка: шаг просто не входит в выполняемую последовательность.
	StepStatusSkipped StepStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус финальный.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StepStatusPassed, StepStatusFailed, StepStatusSkipped:
		return true
	default:
		return false
	}
}
