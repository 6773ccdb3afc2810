package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

func shellStep(command string) *domain.Step {
	return &domain.Step{
		ID:      uuid.New(),
		StepID:  "cmd",
		Class:   domain.StepClassTest,
		Command: command,
		Status:  domain.StepStatusPending,
	}
}

func TestShellExecutor_Success(t *testing.T) {
	executor := &ShellExecutor{}

	result, err := executor.Execute(context.Background(), shellStep("echo hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Output, "hello") {
		t.Errorf("output should contain command output, got %q", result.Output)
	}
}

func TestShellExecutor_NonZeroExit(t *testing.T) {
	executor := &ShellExecutor{}

	result, err := executor.Execute(context.Background(), shellStep("echo broken; exit 3"))
	if err != nil {
		t.Fatalf("non-zero exit is not an infrastructure error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", result.ExitCode)
	}
	if !strings.Contains(result.Output, "broken") {
		t.Errorf("output of failed command should be kept, got %q", result.Output)
	}
}

func TestShellExecutor_CombinedOutput(t *testing.T) {
	executor := &ShellExecutor{}

	result, err := executor.Execute(context.Background(), shellStep("echo out; echo err 1>&2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Output, "out") || !strings.Contains(result.Output, "err") {
		t.Errorf("stdout and stderr should be combined, got %q", result.Output)
	}
}

func TestShellExecutor_OutputTail(t *testing.T) {
	executor := &ShellExecutor{}

	// Генерируем заведомо больше maxOutputBytes
	result, err := executor.Execute(context.Background(), shellStep("i=0; while [ $i -lt 1000 ]; do echo line-$i; i=$((i+1)); done"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Output) > maxOutputBytes {
		t.Errorf("output must be capped at %d bytes, got %d", maxOutputBytes, len(result.Output))
	}
	// Сохраняется именно хвост
	if !strings.Contains(result.Output, "line-999") {
		t.Error("tail of output should be kept")
	}
	if strings.Contains(result.Output, "line-0\n") {
		t.Error("head of output should be dropped")
	}
}

func TestShellExecutor_StartFailure(t *testing.T) {
	executor := &ShellExecutor{Shell: "/nonexistent/shell"}

	_, err := executor.Execute(context.Background(), shellStep("echo hi"))
	if err == nil {
		t.Fatal("expected infrastructure error")
	}
	if !errors.Is(err, ErrCommandStart) {
		t.Errorf("expected ErrCommandStart, got %v", err)
	}
}

func TestTailOutput(t *testing.T) {
	short := []byte("short")
	if got := tailOutput(short); got != "short" {
		t.Errorf("short output should be returned as is, got %q", got)
	}

	long := make([]byte, maxOutputBytes+10)
	for i := range long {
		long[i] = 'a'
	}
	long[len(long)-1] = 'z'

	got := tailOutput(long)
	if len(got) != maxOutputBytes {
		t.Errorf("expected %d bytes, got %d", maxOutputBytes, len(got))
	}
	if got[len(got)-1] != 'z' {
		t.Error("tail should keep the end of the output")
	}
}
