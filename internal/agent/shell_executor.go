package agent

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/shaiso/Conveyor/internal/domain"
)

// maxOutputBytes — предел сохраняемого вывода одного шага.
const maxOutputBytes = 4096

// ShellExecutor — executor по умолчанию.
//
// Запускает команду шага через `sh -c` и ждёт естественного
// завершения. Команда намеренно не получает таймаут: прерывание
// сборки на полпути хуже, чем долгий шаг.
type ShellExecutor struct {
	// Shell — интерпретатор команды (default: "sh").
	Shell string
}

// Execute выполняет команду шага и возвращает exit code с хвостом вывода.
//
// Ненулевой exit code — логическая ошибка (шаг упал), возвращается
// в ExecutionResult. Ошибка запуска процесса — инфраструктурная,
// возвращается через error.
func (e *ShellExecutor) Execute(ctx context.Context, step *domain.Step) (*ExecutionResult, error) {
	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.Command(shell, "-c", step.Command)
	out, err := cmd.CombinedOutput()
	output := tailOutput(out)

	if err == nil {
		return &ExecutionResult{ExitCode: 0, Output: output}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExecutionResult{ExitCode: exitErr.ExitCode(), Output: output}, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrCommandStart, err)
}

// tailOutput возвращает последние maxOutputBytes вывода.
func tailOutput(out []byte) string {
	if len(out) <= maxOutputBytes {
		return string(out)
	}
	return string(out[len(out)-maxOutputBytes:])
}
