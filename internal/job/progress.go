package job

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"fileflow/internal/domain"

	"github.com/google/uuid"
)

// ErrUnknownJob is returned when a job id has never been started.
var ErrUnknownJob = errors.New("unknown job")

// ErrUnknownConfig is returned when a job is started for a missing config.
var ErrUnknownConfig = errors.New("unknown config")

// ProgressStore tracks live counters for running jobs in memory. Entries
// are kept after the job finishes so clients can poll the terminal state;
// the store grows with the number of jobs started since boot.
type ProgressStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*progressEntry
	now     func() time.Time
}

type progressEntry struct {
	status     domain.JobStatus
	total      int
	processed  int
	startedAt  time.Time
	finishedAt time.Time
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		entries: make(map[uuid.UUID]*progressEntry),
		now:     time.Now,
	}
}

func (s *ProgressStore) Create(jobID uuid.UUID, totalRecords int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jobID] = &progressEntry{
		status:    domain.JobStatusRunning,
		total:     totalRecords,
		startedAt: s.now(),
	}
}

// Increment bumps the processed counter by one. Unknown jobs are ignored.
func (s *ProgressStore) Increment(jobID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[jobID]; ok {
		e.processed++
	}
}

// Finish freezes the entry in a terminal status. Finishing twice keeps the
// first terminal state.
func (s *ProgressStore) Finish(jobID uuid.UUID, status domain.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jobID]
	if !ok || e.status != domain.JobStatusRunning {
		return
	}
	e.status = status
	e.finishedAt = s.now()
}

// Snapshot returns a consistent view of the job's progress. Percent and
// time-left are derived from the counters at call time, so repeated calls
// on a finished job return identical values.
func (s *ProgressStore) Snapshot(jobID uuid.UUID) (domain.JobProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[jobID]
	if !ok {
		return domain.JobProgress{}, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	end := s.now()
	if e.status != domain.JobStatusRunning {
		end = e.finishedAt
	}
	elapsed := end.Sub(e.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return domain.JobProgress{
		JobID:            jobID.String(),
		Status:           e.status,
		TotalRecords:     e.total,
		ProcessedRecords: e.processed,
		Percent:          domain.Percent(e.status, e.total, e.processed),
		TimeLeftSeconds:  domain.TimeLeft(e.status, e.total, e.processed, elapsed),
		ElapsedSeconds:   int64(elapsed.Seconds()),
	}, nil
}
