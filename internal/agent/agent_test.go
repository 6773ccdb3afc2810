package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// stubExecutor записывает порядок вызовов и падает на заданном шаге.
type stubExecutor struct {
	executed []string
	failOn   string
	exitCode int
	startErr error
}

func (e *stubExecutor) Execute(_ context.Context, step *domain.Step) (*ExecutionResult, error) {
	e.executed = append(e.executed, step.StepID)
	if e.startErr != nil && step.StepID == e.failOn {
		return nil, e.startErr
	}
	if step.StepID == e.failOn {
		return &ExecutionResult{ExitCode: e.exitCode, Output: "boom"}, nil
	}
	return &ExecutionResult{ExitCode: 0, Output: "ok"}, nil
}

func newTestAgent(exec Executor) *Agent {
	registry := NewRegistry()
	registry.fallback = exec
	return New(Config{Registry: registry})
}

func makeSteps(jobID uuid.UUID, ids ...string) []domain.Step {
	steps := make([]domain.Step, 0, len(ids))
	for i, id := range ids {
		steps = append(steps, domain.Step{
			ID:        uuid.New(),
			JobID:     jobID,
			Position:  i,
			StepID:    id,
			Class:     domain.StepClassTest,
			Command:   "true",
			Status:    domain.StepStatusPending,
			CreatedAt: time.Now(),
		})
	}
	return steps
}

func TestRunSteps_AllPass(t *testing.T) {
	exec := &stubExecutor{}
	a := newTestAgent(exec)

	job := &domain.Job{ID: uuid.New(), Channel: "stable"}
	steps := makeSteps(job.ID, "install", "build", "test")

	errMsg := a.runSteps(context.Background(), job, steps)
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}

	if len(exec.executed) != 3 {
		t.Errorf("expected 3 invocations, got %d: %v", len(exec.executed), exec.executed)
	}
	for i := range steps {
		if steps[i].Status != domain.StepStatusPassed {
			t.Errorf("step %s: expected PASSED, got %s", steps[i].StepID, steps[i].Status)
		}
		if steps[i].ExitCode == nil || *steps[i].ExitCode != 0 {
			t.Errorf("step %s: expected exit code 0", steps[i].StepID)
		}
	}
}

func TestRunSteps_FailFast(t *testing.T) {
	exec := &stubExecutor{failOn: "build", exitCode: 101}
	a := newTestAgent(exec)

	job := &domain.Job{ID: uuid.New(), Channel: "nightly"}
	steps := makeSteps(job.ID, "install", "build", "test", "doc")

	errMsg := a.runSteps(context.Background(), job, steps)
	if errMsg == "" {
		t.Fatal("expected failure")
	}
	if !strings.Contains(errMsg, "build") || !strings.Contains(errMsg, "101") {
		t.Errorf("error should name failed step and exit code: %s", errMsg)
	}

	// Шаги после упавшего не запускались
	want := []string{"install", "build"}
	if len(exec.executed) != len(want) {
		t.Fatalf("expected invocations %v, got %v", want, exec.executed)
	}
	for i := range want {
		if exec.executed[i] != want[i] {
			t.Errorf("invocation %d: expected %s, got %s", i, want[i], exec.executed[i])
		}
	}

	// Статусы: прошёл, упал, остальные остались PENDING
	if steps[0].Status != domain.StepStatusPassed {
		t.Errorf("install: expected PASSED, got %s", steps[0].Status)
	}
	if steps[1].Status != domain.StepStatusFailed {
		t.Errorf("build: expected FAILED, got %s", steps[1].Status)
	}
	if steps[1].ExitCode == nil || *steps[1].ExitCode != 101 {
		t.Error("build: exit code should be recorded")
	}
	for _, s := range steps[2:] {
		if s.Status != domain.StepStatusPending {
			t.Errorf("%s: expected PENDING after fail-fast, got %s", s.StepID, s.Status)
		}
	}
}

func TestRunSteps_SkippedNotExecuted(t *testing.T) {
	exec := &stubExecutor{}
	a := newTestAgent(exec)

	job := &domain.Job{ID: uuid.New(), Channel: "beta"}
	steps := makeSteps(job.ID, "install", "lint", "test")
	steps[1].Status = domain.StepStatusSkipped

	errMsg := a.runSteps(context.Background(), job, steps)
	if errMsg != "" {
		t.Fatalf("unexpected error: %s", errMsg)
	}

	want := []string{"install", "test"}
	if len(exec.executed) != len(want) {
		t.Fatalf("expected invocations %v, got %v", want, exec.executed)
	}
	if steps[1].Status != domain.StepStatusSkipped {
		t.Errorf("skipped step must stay SKIPPED, got %s", steps[1].Status)
	}
}

func TestRunSteps_ZeroSteps(t *testing.T) {
	exec := &stubExecutor{}
	a := newTestAgent(exec)

	job := &domain.Job{ID: uuid.New(), Channel: "stable"}

	errMsg := a.runSteps(context.Background(), job, nil)
	if errMsg != "" {
		t.Fatalf("job without steps must pass, got: %s", errMsg)
	}
	if len(exec.executed) != 0 {
		t.Errorf("no executor invocations expected, got %v", exec.executed)
	}
}

func TestRunSteps_AllSkipped(t *testing.T) {
	exec := &stubExecutor{}
	a := newTestAgent(exec)

	job := &domain.Job{ID: uuid.New(), Channel: "1.13.0"}
	steps := makeSteps(job.ID, "lint", "audit")
	steps[0].Status = domain.StepStatusSkipped
	steps[1].Status = domain.StepStatusSkipped

	errMsg := a.runSteps(context.Background(), job, steps)
	if errMsg != "" {
		t.Fatalf("job with only skipped steps must pass, got: %s", errMsg)
	}
	if len(exec.executed) != 0 {
		t.Errorf("no executor invocations expected, got %v", exec.executed)
	}
}

func TestRunSteps_StartError(t *testing.T) {
	exec := &stubExecutor{failOn: "install", startErr: errors.New("sh: not found")}
	a := newTestAgent(exec)

	job := &domain.Job{ID: uuid.New(), Channel: "stable"}
	steps := makeSteps(job.ID, "install", "test")

	errMsg := a.runSteps(context.Background(), job, steps)
	if errMsg == "" {
		t.Fatal("expected failure")
	}
	if steps[0].Status != domain.StepStatusFailed {
		t.Errorf("install: expected FAILED, got %s", steps[0].Status)
	}
	if steps[0].ExitCode == nil || *steps[0].ExitCode != -1 {
		t.Error("infrastructure failure should record exit code -1")
	}
	if steps[1].Status != domain.StepStatusPending {
		t.Errorf("test: expected PENDING, got %s", steps[1].Status)
	}
}

func TestRunSteps_ContextCancelled(t *testing.T) {
	exec := &stubExecutor{}
	a := newTestAgent(exec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := &domain.Job{ID: uuid.New(), Channel: "stable"}
	steps := makeSteps(job.ID, "install")

	errMsg := a.runSteps(ctx, job, steps)
	if errMsg == "" {
		t.Fatal("expected stop message")
	}
	if len(exec.executed) != 0 {
		t.Errorf("cancelled context must prevent new steps, got %v", exec.executed)
	}
}

// --- Registry Tests ---

func TestRegistry_Fallback(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get(domain.StepClassBuild).(*ShellExecutor); !ok {
		t.Error("unregistered class should fall back to ShellExecutor")
	}

	custom := &stubExecutor{}
	r.Register(domain.StepClassLint, custom)

	if r.Get(domain.StepClassLint) != Executor(custom) {
		t.Error("registered executor should be returned for its class")
	}
	if _, ok := r.Get(domain.StepClassTest).(*ShellExecutor); !ok {
		t.Error("other classes should still fall back")
	}
}
