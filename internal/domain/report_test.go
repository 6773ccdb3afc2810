package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestClassifyJob(t *testing.T) {
	passed := &Job{Status: JobStatusPassed}
	if v := ClassifyJob(passed); v != VerdictPassed {
		t.Errorf("passed job verdict = %s, expected PASSED", v)
	}

	failed := &Job{Status: JobStatusFailed}
	if v := ClassifyJob(failed); v != VerdictFailedCounted {
		t.Errorf("failed job verdict = %s, expected FAILED", v)
	}

	failedAllowed := &Job{Status: JobStatusFailed, AllowFailure: true}
	if v := ClassifyJob(failedAllowed); v != VerdictFailedAllowed {
		t.Errorf("allow-failure failed job verdict = %s, expected FAILED_ALLOWED", v)
	}

	running := &Job{Status: JobStatusRunning}
	if v := ClassifyJob(running); v != VerdictPending {
		t.Errorf("running job verdict = %s, expected PENDING", v)
	}
}

func TestAggregateStatus_AllPassed(t *testing.T) {
	jobs := []Job{
		{Status: JobStatusPassed},
		{Status: JobStatusPassed},
	}

	if s := AggregateStatus(jobs); s != PipelineStatusPassed {
		t.Errorf("status = %s, expected PASSED", s)
	}
}

func TestAggregateStatus_RequiredFailed(t *testing.T) {
	jobs := []Job{
		{Status: JobStatusPassed},
		{Status: JobStatusFailed},
	}

	if s := AggregateStatus(jobs); s != PipelineStatusFailed {
		t.Errorf("status = %s, expected FAILED", s)
	}
}

func TestAggregateStatus_AllowFailureIgnored(t *testing.T) {
	// Падение allow-failure job не влияет на вердикт
	jobs := []Job{
		{Status: JobStatusPassed},
		{Status: JobStatusFailed, AllowFailure: true},
	}

	if s := AggregateStatus(jobs); s != PipelineStatusPassed {
		t.Errorf("status = %s, expected PASSED", s)
	}
}

func TestAggregateStatus_EmptyMatrix(t *testing.T) {
	// Пустая матрица — вакуумный успех
	if s := AggregateStatus(nil); s != PipelineStatusPassed {
		t.Errorf("status = %s, expected PASSED", s)
	}
}

func TestBuildReport(t *testing.T) {
	p := &Pipeline{
		ID:     uuid.New(),
		Status: PipelineStatusFailed,
		Error:  "jobs failed on channels: [1.13.0]",
	}

	jobs := []Job{
		{ID: uuid.New(), Position: 0, Channel: "1.13.0", Status: JobStatusFailed, Error: "step build exited with code 2"},
		{ID: uuid.New(), Position: 1, Channel: "stable", Status: JobStatusPassed},
		{ID: uuid.New(), Position: 2, Channel: "nightly", AllowFailure: true, Status: JobStatusFailed},
	}

	r := BuildReport(p, jobs)

	if r.PipelineID != p.ID {
		t.Errorf("report pipeline_id = %s, expected %s", r.PipelineID, p.ID)
	}
	if r.Status != PipelineStatusFailed {
		t.Errorf("report status = %s, expected FAILED", r.Status)
	}
	if len(r.Jobs) != 3 {
		t.Fatalf("report has %d jobs, expected 3", len(r.Jobs))
	}

	// Порядок позиций матрицы сохранён
	if r.Jobs[0].Channel != "1.13.0" || r.Jobs[1].Channel != "stable" || r.Jobs[2].Channel != "nightly" {
		t.Errorf("report job order broken: %v", r.Jobs)
	}

	// Вердикты различают counted и allowed падения
	if r.Jobs[0].Verdict != VerdictFailedCounted {
		t.Errorf("job 0 verdict = %s, expected FAILED", r.Jobs[0].Verdict)
	}
	if r.Jobs[1].Verdict != VerdictPassed {
		t.Errorf("job 1 verdict = %s, expected PASSED", r.Jobs[1].Verdict)
	}
	if r.Jobs[2].Verdict != VerdictFailedAllowed {
		t.Errorf("job 2 verdict = %s, expected FAILED_ALLOWED", r.Jobs[2].Verdict)
	}

	if r.Jobs[0].Error != "step build exited with code 2" {
		t.Errorf("job 0 error not carried into report: %q", r.Jobs[0].Error)
	}
}

func TestBuildReport_PendingAllowFailure(t *testing.T) {
	// Fast-finish: allow-failure job ещё выполняется на момент отчёта
	p := &Pipeline{ID: uuid.New(), Status: PipelineStatusPassed}

	jobs := []Job{
		{ID: uuid.New(), Position: 0, Channel: "stable", Status: JobStatusPassed},
		{ID: uuid.New(), Position: 1, Channel: "nightly", AllowFailure: true, Status: JobStatusRunning},
	}

	r := BuildReport(p, jobs)

	if r.Jobs[1].Verdict != VerdictPending {
		t.Errorf("running allow-failure job verdict = %s, expected PENDING", r.Jobs[1].Verdict)
	}
}
