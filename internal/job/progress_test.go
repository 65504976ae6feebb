package job

import (
	"errors"
	"testing"
	"time"

	"fileflow/internal/domain"

	"github.com/google/uuid"
)

func frozenClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSnapshotRunning(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewProgressStore()
	s.now = frozenClock(start)

	jobID := uuid.New()
	s.Create(jobID, 200)
	for i := 0; i < 50; i++ {
		s.Increment(jobID)
	}
	s.now = frozenClock(start.Add(10 * time.Second))

	p, err := s.Snapshot(jobID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if p.Status != domain.JobStatusRunning {
		t.Fatalf("expected RUNNING, got %s", p.Status)
	}
	if p.Percent != 25 {
		t.Fatalf("expected 25%%, got %d", p.Percent)
	}
	if p.TimeLeftSeconds == nil || *p.TimeLeftSeconds != 30 {
		t.Fatalf("expected 30s left, got %v", p.TimeLeftSeconds)
	}
	if p.ElapsedSeconds != 10 {
		t.Fatalf("expected 10s elapsed, got %d", p.ElapsedSeconds)
	}
}

func TestSnapshotAfterFinishIsFrozen(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewProgressStore()
	s.now = frozenClock(start)

	jobID := uuid.New()
	s.Create(jobID, 10)
	for i := 0; i < 10; i++ {
		s.Increment(jobID)
	}
	s.now = frozenClock(start.Add(5 * time.Second))
	s.Finish(jobID, domain.JobStatusFinished)

	// the clock keeps moving, the snapshot must not
	s.now = frozenClock(start.Add(time.Hour))

	first, err := s.Snapshot(jobID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	second, _ := s.Snapshot(jobID)
	if first != second {
		t.Fatalf("snapshots of a finished job must be identical: %+v vs %+v", first, second)
	}
	if first.Status != domain.JobStatusFinished || first.Percent != 100 {
		t.Fatalf("unexpected terminal snapshot: %+v", first)
	}
	if first.TimeLeftSeconds != nil {
		t.Fatalf("finished job has no time-left estimate")
	}
	if first.ElapsedSeconds != 5 {
		t.Fatalf("elapsed must freeze at finish time, got %d", first.ElapsedSeconds)
	}
}

func TestFinishKeepsFirstTerminalState(t *testing.T) {
	s := NewProgressStore()
	jobID := uuid.New()
	s.Create(jobID, 1)

	s.Finish(jobID, domain.JobStatusFailed)
	s.Finish(jobID, domain.JobStatusFinished)

	p, err := s.Snapshot(jobID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if p.Status != domain.JobStatusFailed {
		t.Fatalf("expected first terminal state to win, got %s", p.Status)
	}
}

func TestSnapshotUnknownJob(t *testing.T) {
	s := NewProgressStore()
	if _, err := s.Snapshot(uuid.New()); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
}

func TestResultStoreCopiesOnRead(t *testing.T) {
	s := NewResultStore()
	jobID := uuid.New()
	s.Create(jobID)
	s.AddTreated(jobID, "a.csv")
	s.AddFailed(jobID, "b.csv", "broken")

	result, err := s.Get(jobID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	result.FilesTreated[0] = "mutated"

	again, _ := s.Get(jobID)
	if again.FilesTreated[0] != "a.csv" {
		t.Fatalf("stored result must not be affected by caller mutation")
	}
	if len(again.FilesFailed) != 1 || again.FilesFailed[0].Detail != "broken" {
		t.Fatalf("unexpected failures: %+v", again.FilesFailed)
	}
}

func TestResultStoreUnknownJob(t *testing.T) {
	s := NewResultStore()
	if _, err := s.Get(uuid.New()); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
}
