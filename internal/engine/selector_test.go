package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

func testSteps() []domain.StepDef {
	return []domain.StepDef{
		{ID: "install", Class: domain.StepClassSetup, Command: "make deps"},
		{ID: "lint", Class: domain.StepClassLint, Command: "make lint",
			When: domain.ChannelEquals("stable")},
		{ID: "audit", Class: domain.StepClassSecurityAudit, Command: "make audit",
			When: domain.ChannelNotEquals("1.13.0")},
		{ID: "build", Class: domain.StepClassBuild, Command: "make build"},
		{ID: "test", Class: domain.StepClassTest, Command: "make test"},
	}
}

func TestSelectSteps_Stable(t *testing.T) {
	selected := SelectSteps("stable", testSteps())

	// Все пять шагов применимы к stable
	if len(selected) != 5 {
		t.Fatalf("selected %d steps, expected 5", len(selected))
	}

	// Порядок объявления сохранён
	expected := []string{"install", "lint", "audit", "build", "test"}
	for i, id := range expected {
		if selected[i].ID != id {
			t.Errorf("step %d = %s, expected %s", i, selected[i].ID, id)
		}
	}
}

func TestSelectSteps_OldVersion(t *testing.T) {
	selected := SelectSteps("1.13.0", testSteps())

	// lint только на stable, audit не на 1.13.0
	expected := []string{"install", "build", "test"}
	if len(selected) != len(expected) {
		t.Fatalf("selected %d steps, expected %d", len(selected), len(expected))
	}
	for i, id := range expected {
		if selected[i].ID != id {
			t.Errorf("step %d = %s, expected %s", i, selected[i].ID, id)
		}
	}
}

func TestPartitionSteps(t *testing.T) {
	selected, skipped := PartitionSteps("beta", testSteps())

	if len(selected) != 4 {
		t.Errorf("selected %d steps, expected 4", len(selected))
	}
	if len(skipped) != 1 || skipped[0].ID != "lint" {
		t.Errorf("skipped = %v, expected [lint]", skipped)
	}
}

func TestBuildSteps_SkippedMarked(t *testing.T) {
	job := &domain.Job{ID: uuid.New(), Channel: "beta"}

	rows := BuildSteps(job, testSteps())

	// Каждый шаг дескриптора получает строку
	if len(rows) != 5 {
		t.Fatalf("built %d rows, expected 5", len(rows))
	}

	for i, row := range rows {
		if row.Position != i {
			t.Errorf("row %d position = %d", i, row.Position)
		}
		if row.JobID != job.ID {
			t.Errorf("row %d job_id mismatch", i)
		}
	}

	// lint не проходит предикат на beta — сразу SKIPPED
	if rows[1].StepID != "lint" || rows[1].Status != domain.StepStatusSkipped {
		t.Errorf("lint row = %s/%s, expected lint/SKIPPED", rows[1].StepID, rows[1].Status)
	}

	// Остальные PENDING
	for _, i := range []int{0, 2, 3, 4} {
		if rows[i].Status != domain.StepStatusPending {
			t.Errorf("row %d status = %s, expected PENDING", i, rows[i].Status)
		}
	}
}

func TestBuildSteps_CopiesDefinition(t *testing.T) {
	job := &domain.Job{ID: uuid.New(), Channel: "stable"}

	rows := BuildSteps(job, testSteps())

	if rows[0].Command != "make deps" {
		t.Errorf("row command = %q", rows[0].Command)
	}
	if rows[0].Class != domain.StepClassSetup {
		t.Errorf("row class = %s", rows[0].Class)
	}
}
