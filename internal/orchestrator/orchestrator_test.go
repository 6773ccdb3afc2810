package orchestrator

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

// --- PipelineState Tests ---

func makeJob(pipelineID uuid.UUID, position int, channel string, allowFailure bool, status domain.JobStatus) domain.Job {
	return domain.Job{
		ID:           uuid.New(),
		PipelineID:   pipelineID,
		Position:     position,
		Channel:      domain.Channel(channel),
		AllowFailure: allowFailure,
		Status:       status,
		CreatedAt:    time.Now(),
	}
}

func makePipeline(fastFinish bool) *domain.Pipeline {
	return &domain.Pipeline{
		ID:     uuid.New(),
		Status: domain.PipelineStatusRunning,
		Descriptor: domain.Descriptor{
			Mainline:   "master",
			Channels:   []domain.Channel{"stable", "beta", "nightly"},
			FastFinish: fastFinish,
		},
		CreatedAt: time.Now(),
	}
}

func TestNewPipelineState(t *testing.T) {
	p := makePipeline(false)
	jobs := []domain.Job{
		makeJob(p.ID, 0, "stable", false, domain.JobStatusPending),
		makeJob(p.ID, 1, "beta", false, domain.JobStatusPending),
	}

	state := NewPipelineState(p, jobs)

	if state.Pipeline != p {
		t.Error("Pipeline should be set")
	}
	if len(state.jobs) != 2 {
		t.Errorf("expected 2 tracked jobs, got %d", len(state.jobs))
	}
	if state.IsReported() {
		t.Error("fresh state should not be reported")
	}
}

func TestNewPipelineState_AlreadyReported(t *testing.T) {
	p := makePipeline(true)
	now := time.Now()
	p.ReportedAt = &now

	state := NewPipelineState(p, []domain.Job{makeJob(p.ID, 0, "stable", false, domain.JobStatusPassed)})

	if !state.IsReported() {
		t.Error("state restored from reported pipeline should be reported")
	}
}

func TestPipelineState_SetJob_Untracked(t *testing.T) {
	p := makePipeline(false)
	state := NewPipelineState(p, []domain.Job{makeJob(p.ID, 0, "stable", false, domain.JobStatusPending)})

	stray := makeJob(p.ID, 1, "beta", false, domain.JobStatusPassed)
	if err := state.SetJob(&stray); err != ErrJobNotTracked {
		t.Errorf("expected ErrJobNotTracked, got %v", err)
	}
}

func TestPipelineState_Jobs_OrderedByPosition(t *testing.T) {
	p := makePipeline(false)
	jobs := []domain.Job{
		makeJob(p.ID, 2, "nightly", true, domain.JobStatusPending),
		makeJob(p.ID, 0, "stable", false, domain.JobStatusPending),
		makeJob(p.ID, 1, "beta", false, domain.JobStatusPending),
	}

	state := NewPipelineState(p, jobs)

	got := state.Jobs()
	for i, job := range got {
		if job.Position != i {
			t.Errorf("job at index %d has position %d", i, job.Position)
		}
	}
}

func TestPipelineState_ShouldReport_NoFastFinish(t *testing.T) {
	p := makePipeline(false)
	stable := makeJob(p.ID, 0, "stable", false, domain.JobStatusFailed)
	nightly := makeJob(p.ID, 1, "nightly", true, domain.JobStatusRunning)

	state := NewPipelineState(p, []domain.Job{stable, nightly})

	// Без fast-finish ждём все jobs, включая allow-failure
	if state.ShouldReport() {
		t.Error("should not report while allow-failure job is running")
	}

	nightly.Status = domain.JobStatusFailed
	if err := state.SetJob(&nightly); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !state.ShouldReport() {
		t.Error("should report when all jobs are terminal")
	}
}

func TestPipelineState_ShouldReport_FastFinish_RequiredFailed(t *testing.T) {
	p := makePipeline(true)
	stable := makeJob(p.ID, 0, "stable", false, domain.JobStatusFailed)
	beta := makeJob(p.ID, 1, "beta", false, domain.JobStatusRunning)
	nightly := makeJob(p.ID, 2, "nightly", true, domain.JobStatusRunning)

	state := NewPipelineState(p, []domain.Job{stable, beta, nightly})

	// Обязательный job упал — вердикт известен, не ждём остальных
	if !state.ShouldReport() {
		t.Error("fast-finish should report as soon as a required job fails")
	}
	if got := state.Verdict(); got != domain.PipelineStatusFailed {
		t.Errorf("expected FAILED verdict, got %s", got)
	}
}

func TestPipelineState_ShouldReport_FastFinish_RequiredResolved(t *testing.T) {
	p := makePipeline(true)
	stable := makeJob(p.ID, 0, "stable", false, domain.JobStatusPassed)
	beta := makeJob(p.ID, 1, "beta", false, domain.JobStatusPassed)
	nightly := makeJob(p.ID, 2, "nightly", true, domain.JobStatusRunning)

	state := NewPipelineState(p, []domain.Job{stable, beta, nightly})

	// Все обязательные прошли — allow-failure хвост итог не изменит
	if !state.ShouldReport() {
		t.Error("fast-finish should report once required jobs are resolved")
	}
	if got := state.Verdict(); got != domain.PipelineStatusPassed {
		t.Errorf("expected PASSED verdict, got %s", got)
	}
	if state.AllTerminal() {
		t.Error("nightly is still running, state must stay active")
	}
}

func TestPipelineState_Verdict_AllowFailureIgnored(t *testing.T) {
	p := makePipeline(false)
	jobs := []domain.Job{
		makeJob(p.ID, 0, "stable", false, domain.JobStatusPassed),
		makeJob(p.ID, 1, "nightly", true, domain.JobStatusFailed),
	}

	state := NewPipelineState(p, jobs)

	if got := state.Verdict(); got != domain.PipelineStatusPassed {
		t.Errorf("allow-failure failure must not fail pipeline, got %s", got)
	}
}

func TestPipelineState_FailedChannels(t *testing.T) {
	p := makePipeline(false)
	jobs := []domain.Job{
		makeJob(p.ID, 0, "1.13.0", false, domain.JobStatusFailed),
		makeJob(p.ID, 1, "stable", false, domain.JobStatusPassed),
		makeJob(p.ID, 2, "beta", false, domain.JobStatusFailed),
		makeJob(p.ID, 3, "nightly", true, domain.JobStatusFailed),
	}

	state := NewPipelineState(p, jobs)

	got := state.FailedChannels()
	want := []domain.Channel{"1.13.0", "beta"}
	if len(got) != len(want) {
		t.Fatalf("expected %d failed channels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("failed channel %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestPipelineState_Stats(t *testing.T) {
	p := makePipeline(false)
	jobs := []domain.Job{
		makeJob(p.ID, 0, "stable", false, domain.JobStatusPassed),
		makeJob(p.ID, 1, "beta", false, domain.JobStatusRunning),
		makeJob(p.ID, 2, "nightly", true, domain.JobStatusPending),
		makeJob(p.ID, 3, "nightly", true, domain.JobStatusFailed),
	}

	state := NewPipelineState(p, jobs)

	stats := state.Stats()
	if stats.TotalJobs != 4 {
		t.Errorf("TotalJobs: expected 4, got %d", stats.TotalJobs)
	}
	if stats.PassedJobs != 1 || stats.RunningJobs != 1 || stats.PendingJobs != 1 || stats.FailedJobs != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

// --- Orchestrator registry tests ---

func TestOrchestrator_ActivePipelines(t *testing.T) {
	o := New(Config{})

	p := makePipeline(false)
	state := NewPipelineState(p, []domain.Job{makeJob(p.ID, 0, "stable", false, domain.JobStatusPending)})

	if err := o.addActivePipeline(state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.isPipelineActive(p.ID) {
		t.Error("pipeline should be active")
	}
	if o.ActivePipelinesCount() != 1 {
		t.Errorf("expected 1 active pipeline, got %d", o.ActivePipelinesCount())
	}

	// Повторное добавление — ошибка
	if err := o.addActivePipeline(state); err != ErrPipelineAlreadyActive {
		t.Errorf("expected ErrPipelineAlreadyActive, got %v", err)
	}

	if _, ok := o.GetActivePipelineStats(p.ID); !ok {
		t.Error("stats should be available for active pipeline")
	}

	o.removeActivePipeline(p.ID)
	if o.isPipelineActive(p.ID) {
		t.Error("pipeline should be removed")
	}
	if o.getActivePipeline(p.ID) != nil {
		t.Error("getActivePipeline should return nil after removal")
	}
}

// Consumer и polling могут увидеть один и тот же PENDING pipeline
// одновременно. processPipeline захватывает pipeline через
// addActivePipeline ДО записи jobs в БД, поэтому от захвата требуется
// строгая эксклюзивность: ровно один победитель, остальные выходят
// до создания каких-либо строк.
func TestOrchestrator_ConcurrentClaim_SingleWinner(t *testing.T) {
	o := New(Config{})

	p := makePipeline(false)
	jobs := []domain.Job{
		makeJob(p.ID, 0, "stable", false, domain.JobStatusPending),
		makeJob(p.ID, 1, "beta", false, domain.JobStatusPending),
	}

	const claimants = 8
	var wg sync.WaitGroup
	var winners atomic.Int32

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Каждый обработчик строит собственный state
			state := NewPipelineState(p, jobs)
			if err := o.addActivePipeline(state); err == nil {
				winners.Add(1)
			} else if err != ErrPipelineAlreadyActive {
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Errorf("expected exactly 1 successful claim, got %d", got)
	}
	if o.ActivePipelinesCount() != 1 {
		t.Errorf("expected 1 active pipeline, got %d", o.ActivePipelinesCount())
	}
}
