package repository

import (
	"context"

	"fileflow/internal/domain"

	"github.com/google/uuid"
)

// ConfigRepository defines access to persisted reader configurations.
type ConfigRepository interface {
	Get(ctx context.Context, id string) (domain.ReaderConfig, error)
	Exists(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, cfg domain.ReaderConfig) (domain.ReaderConfig, error)
	List(ctx context.Context) ([]domain.ReaderConfig, error)
}

// ImportLogRepository is the durable per-file import log store. A log is
// opened at file start, grows one detail per processed record, and is
// finalized exactly once from its accumulated counters.
type ImportLogRepository interface {
	Start(ctx context.Context, fileName string) (domain.ImportLog, error)
	AddLine(ctx context.Context, logID uuid.UUID, lineNumber int, status domain.LineStatus, detailProblem string) error
	Finalize(ctx context.Context, logID uuid.UUID) (domain.ImportLog, error)
	GetByID(ctx context.Context, logID uuid.UUID) (domain.ImportLog, error)
	List(ctx context.Context) ([]domain.ImportLog, error)
	Search(ctx context.Context, fileName string, status *domain.LogStatus) ([]domain.ImportLog, error)
}

// EmployeeRepository is the example persisted target record store.
type EmployeeRepository interface {
	Upsert(ctx context.Context, employee domain.Employee) error
	ExistsByFields(ctx context.Context, fields map[string]any) (bool, error)
	GetByID(ctx context.Context, id int64) (domain.Employee, error)
	List(ctx context.Context, limit, offset int) ([]domain.Employee, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
