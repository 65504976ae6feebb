package job

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"fileflow/internal/domain"
	"fileflow/internal/folder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ConfigSource answers whether a reader configuration exists and where its
// lifecycle folders live.
type ConfigSource interface {
	Exists(ctx context.Context, configID string) (bool, error)
	FolderPaths(ctx context.Context, configID string) (folder.Paths, error)
}

// Folders is the slice of the folder manager the orchestrator drives.
type Folders interface {
	EnsureFolders(ctx context.Context, configID string) error
	List(ctx context.Context, configID string, kind folder.Kind) ([]string, error)
	DequeueOneToTreatment(ctx context.Context, configID string) (string, error)
	Relocate(ctx context.Context, configID, treatmentFile string, outcome folder.Outcome) error
}

// RecordCounter pre-counts the records of an inbound file.
type RecordCounter interface {
	CountRecords(ctx context.Context, path, configID string) (int, error)
}

// Ingestor processes one treatment file and reports per-record progress.
type Ingestor interface {
	IngestFile(ctx context.Context, configID, path string, onRecord func()) (int, error)
}

// Service starts and runs ingestion jobs. One job drains the inbound folder
// of a configuration file by file; jobs for the same configuration are
// serialized so two jobs never race over the same folders, while jobs for
// different configurations run concurrently.
type Service struct {
	configs  ConfigSource
	folders  Folders
	counter  RecordCounter
	ingest   Ingestor
	progress *ProgressStore
	results  *ResultStore
	log      *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(
	configs ConfigSource,
	folders Folders,
	counter RecordCounter,
	ingest Ingestor,
	progress *ProgressStore,
	results *ResultStore,
	log *logrus.Logger,
) *Service {
	return &Service{
		configs:  configs,
		folders:  folders,
		counter:  counter,
		ingest:   ingest,
		progress: progress,
		results:  results,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// StartJob snapshots the inbound folder, registers progress and result
// entries and launches the job in the background. The returned id is valid
// for polling immediately, before the first record is processed.
func (s *Service) StartJob(ctx context.Context, configID string) (uuid.UUID, error) {
	ok, err := s.configs.Exists(ctx, configID)
	if err != nil {
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownConfig, configID)
	}
	if err := s.folders.EnsureFolders(ctx, configID); err != nil {
		return uuid.Nil, err
	}

	total, err := s.countInbound(ctx, configID)
	if err != nil {
		return uuid.Nil, err
	}

	jobID := uuid.New()
	s.progress.Create(jobID, total)
	s.results.Create(jobID)
	s.log.WithFields(logrus.Fields{
		"jobId":        jobID,
		"configId":     configID,
		"totalRecords": total,
	}).Info("job started")

	go s.run(context.Background(), jobID, configID)
	return jobID, nil
}

func (s *Service) countInbound(ctx context.Context, configID string) (int, error) {
	names, err := s.folders.List(ctx, configID, folder.Inbound)
	if err != nil {
		return 0, err
	}
	paths, err := s.configs.FolderPaths(ctx, configID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, name := range names {
		n, err := s.counter.CountRecords(ctx, filepath.Join(paths.In, name), configID)
		if err != nil {
			// unreadable now, will surface as a file failure during the run
			s.log.WithError(err).WithField("file", name).Warn("record count failed")
			continue
		}
		total += n
	}
	return total, nil
}

func (s *Service) run(ctx context.Context, jobID uuid.UUID, configID string) {
	lock := s.configLock(configID)
	lock.Lock()
	defer lock.Unlock()

	for {
		path, err := s.folders.DequeueOneToTreatment(ctx, configID)
		if err != nil {
			s.log.WithError(err).WithField("jobId", jobID).Error("job aborted")
			s.progress.Finish(jobID, domain.JobStatusFailed)
			return
		}
		if path == "" {
			break
		}
		s.processFile(ctx, jobID, configID, path)
	}
	s.progress.Finish(jobID, domain.JobStatusFinished)
	s.log.WithField("jobId", jobID).Info("job finished")
}

func (s *Service) processFile(ctx context.Context, jobID uuid.UUID, configID, path string) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xml" {
		s.fail(ctx, jobID, configID, path, fmt.Sprintf("unsupported file extension: %s", filepath.Ext(path)))
		return
	}

	success, err := s.ingest.IngestFile(ctx, configID, path, func() {
		s.progress.Increment(jobID)
	})
	if err != nil {
		s.fail(ctx, jobID, configID, path, err.Error())
		return
	}

	if err := s.folders.Relocate(ctx, configID, path, folder.OutcomeSuccess); err != nil {
		s.fail(ctx, jobID, configID, path, fmt.Sprintf("backup relocation failed: %v", err))
		return
	}
	s.results.AddTreated(jobID, name)
	s.log.WithFields(logrus.Fields{
		"jobId":   jobID,
		"file":    name,
		"records": success,
	}).Info("file treated")
}

func (s *Service) fail(ctx context.Context, jobID uuid.UUID, configID, path, detail string) {
	name := filepath.Base(path)
	if err := s.folders.Relocate(ctx, configID, path, folder.OutcomeFailure); err != nil {
		s.log.WithError(err).WithField("file", name).Error("failed relocation failed")
	}
	s.results.AddFailed(jobID, name, detail)
	s.log.WithFields(logrus.Fields{
		"jobId":  jobID,
		"file":   name,
		"detail": detail,
	}).Warn("file failed")
}

func (s *Service) configLock(configID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[configID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[configID] = lock
	}
	return lock
}

// Progress exposes the progress snapshot for polling handlers.
func (s *Service) Progress(jobID uuid.UUID) (domain.JobProgress, error) {
	return s.progress.Snapshot(jobID)
}

// Result exposes the per-file outcomes for polling handlers.
func (s *Service) Result(jobID uuid.UUID) (domain.JobResult, error) {
	return s.results.Get(jobID)
}
