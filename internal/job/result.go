package job

import (
	"fmt"
	"sync"

	"fileflow/internal/domain"

	"github.com/google/uuid"
)

// ResultStore accumulates per-file outcomes for each job in memory. Like
// the progress store it retains finished jobs so results stay pollable.
type ResultStore struct {
	mu      sync.RWMutex
	results map[uuid.UUID]*domain.JobResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[uuid.UUID]*domain.JobResult)}
}

func (s *ResultStore) Create(jobID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[jobID] = &domain.JobResult{}
}

func (s *ResultStore) AddTreated(jobID uuid.UUID, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.results[jobID]; ok {
		r.FilesTreated = append(r.FilesTreated, fileName)
	}
}

func (s *ResultStore) AddFailed(jobID uuid.UUID, fileName, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.results[jobID]; ok {
		r.FilesFailed = append(r.FilesFailed, domain.FileFailure{FileName: fileName, Detail: detail})
	}
}

// Get returns a copy of the job's result so callers never observe a slice
// mutated by a still-running job.
func (s *ResultStore) Get(jobID uuid.UUID) (domain.JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[jobID]
	if !ok {
		return domain.JobResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
	}
	out := domain.JobResult{
		FilesTreated: make([]string, len(r.FilesTreated)),
		FilesFailed:  make([]domain.FileFailure, len(r.FilesFailed)),
	}
	copy(out.FilesTreated, r.FilesTreated)
	copy(out.FilesFailed, r.FilesFailed)
	return out, nil
}
