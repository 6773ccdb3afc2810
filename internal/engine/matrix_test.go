package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/Conveyor/internal/domain"
)

func TestExpand_OrderPreserved(t *testing.T) {
	d := &domain.Descriptor{
		Mainline: "master",
		Channels: []domain.Channel{"1.13.0", "stable", "beta", "nightly"},
	}

	pipelineID := uuid.New()
	jobs := Expand(d, pipelineID)

	if len(jobs) != 4 {
		t.Fatalf("expanded %d jobs, expected 4", len(jobs))
	}

	for i, ch := range d.Channels {
		if jobs[i].Channel != ch {
			t.Errorf("job %d channel = %s, expected %s", i, jobs[i].Channel, ch)
		}
		if jobs[i].Position != i {
			t.Errorf("job %d position = %d", i, jobs[i].Position)
		}
		if jobs[i].PipelineID != pipelineID {
			t.Errorf("job %d pipeline_id mismatch", i)
		}
		if jobs[i].Status != domain.JobStatusPending {
			t.Errorf("job %d status = %s, expected PENDING", i, jobs[i].Status)
		}
	}
}

func TestExpand_DuplicateChannels(t *testing.T) {
	// Дубликаты не схлопываются: каждый даёт независимый job
	d := &domain.Descriptor{
		Mainline: "master",
		Channels: []domain.Channel{"stable", "stable"},
	}

	jobs := Expand(d, uuid.New())

	if len(jobs) != 2 {
		t.Fatalf("expanded %d jobs, expected 2", len(jobs))
	}
	if jobs[0].ID == jobs[1].ID {
		t.Error("duplicate channel jobs must have distinct IDs")
	}
	if jobs[0].Position == jobs[1].Position {
		t.Error("duplicate channel jobs must have distinct positions")
	}
}

func TestExpand_AllowFailureFlag(t *testing.T) {
	d := &domain.Descriptor{
		Mainline:     "master",
		Channels:     []domain.Channel{"stable", "nightly"},
		AllowFailure: []domain.Channel{"nightly"},
	}

	jobs := Expand(d, uuid.New())

	if jobs[0].AllowFailure {
		t.Error("stable job should not be allow-failure")
	}
	if !jobs[1].AllowFailure {
		t.Error("nightly job should be allow-failure")
	}
}

func TestExpand_EmptyMatrix(t *testing.T) {
	d := &domain.Descriptor{Mainline: "master"}

	jobs := Expand(d, uuid.New())

	if len(jobs) != 0 {
		t.Errorf("empty matrix expanded to %d jobs", len(jobs))
	}
}
