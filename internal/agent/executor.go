package agent

import (
	"context"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Executor — интерфейс для выполнения одного шага.
//
// step.Command содержит shell-команду из дескриптора.
// Выполнение ждёт естественного завершения команды: таймаут
// и отмена запущенного процесса не применяются.
type Executor interface {
	Execute(ctx context.Context, step *domain.Step) (*ExecutionResult, error)
}

// ExecutionResult — результат выполнения шага.
type ExecutionResult struct {
	// ExitCode — exit code команды. 0 — шаг прошёл.
	ExitCode int

	// Output — хвост combined output команды, ограничен по размеру.
	// Система вывод не интерпретирует, он хранится для post-mortem.
	Output string
}

// Registry — реестр executor'ов по классу шага.
//
// Классы без собственного executor'а получают fallback.
type Registry struct {
	executors map[domain.StepClass]Executor
	fallback  Executor
}

// NewRegistry создаёт реестр с ShellExecutor в качестве fallback.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[domain.StepClass]Executor),
		fallback:  &ShellExecutor{},
	}
}

// Register добавляет executor для класса шага.
func (r *Registry) Register(class domain.StepClass, executor Executor) {
	r.executors[class] = executor
}

// Get возвращает executor для класса шага.
func (r *Registry) Get(class domain.StepClass) Executor {
	if executor, ok := r.executors[class]; ok {
		return executor
	}
	return r.fallback
}
