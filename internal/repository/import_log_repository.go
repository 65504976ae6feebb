package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fileflow/internal/domain"
)

// ErrImportLogNotFound is returned when no import log matches an id.
var ErrImportLogNotFound = errors.New("import log not found")

// importLogRepository implements ImportLogRepository on Postgres. The
// header row carries running counters that AddLine bumps in the same
// statement batch as the detail insert, so a log read mid-import is
// always consistent with its details.
type importLogRepository struct {
	pool *pgxpool.Pool
}

func NewImportLogRepository(pool *pgxpool.Pool) ImportLogRepository {
	return &importLogRepository{pool: pool}
}

func (r *importLogRepository) Start(ctx context.Context, fileName string) (domain.ImportLog, error) {
	log := domain.ImportLog{
		ID:       uuid.New(),
		FileName: fileName,
		Status:   domain.LogStatusInProgress,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO import_logs (id, file_name, status)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		log.ID, log.FileName, log.Status).Scan(&log.CreatedAt)
	if err != nil {
		return domain.ImportLog{}, fmt.Errorf("failed to start import log: %w", err)
	}
	return log, nil
}

func (r *importLogRepository) AddLine(ctx context.Context, logID uuid.UUID, lineNumber int, status domain.LineStatus, detailProblem string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin add line: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO import_log_details (id, import_log_id, line_number, status, detail_problem)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), logID, lineNumber, status, detailProblem)
	if err != nil {
		return fmt.Errorf("failed to add log detail: %w", err)
	}

	column := "success_lines"
	if status == domain.LineStatusFailed {
		column = "failed_lines"
	}
	tag, err := tx.Exec(ctx, `
		UPDATE import_logs
		SET total_lines = total_lines + 1, `+column+` = `+column+` + 1
		WHERE id = $1`, logID)
	if err != nil {
		return fmt.Errorf("failed to bump log counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrImportLogNotFound, logID)
	}
	return tx.Commit(ctx)
}

func (r *importLogRepository) Finalize(ctx context.Context, logID uuid.UUID) (domain.ImportLog, error) {
	var success, failed int
	err := r.pool.QueryRow(ctx,
		`SELECT success_lines, failed_lines FROM import_logs WHERE id = $1`, logID).
		Scan(&success, &failed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ImportLog{}, fmt.Errorf("%w: %s", ErrImportLogNotFound, logID)
	}
	if err != nil {
		return domain.ImportLog{}, fmt.Errorf("failed to read log counters: %w", err)
	}

	status := domain.FinalStatus(success, failed)
	_, err = r.pool.Exec(ctx,
		`UPDATE import_logs SET status = $1 WHERE id = $2`, status, logID)
	if err != nil {
		return domain.ImportLog{}, fmt.Errorf("failed to finalize import log: %w", err)
	}
	return r.GetByID(ctx, logID)
}

func (r *importLogRepository) GetByID(ctx context.Context, logID uuid.UUID) (domain.ImportLog, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, file_name, status, created_at, total_lines, success_lines, failed_lines
		FROM import_logs WHERE id = $1`, logID)
	log, err := scanImportLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ImportLog{}, fmt.Errorf("%w: %s", ErrImportLogNotFound, logID)
	}
	if err != nil {
		return domain.ImportLog{}, fmt.Errorf("failed to get import log: %w", err)
	}

	details, err := r.pool.Query(ctx, `
		SELECT id, line_number, status, detail_problem
		FROM import_log_details
		WHERE import_log_id = $1
		ORDER BY line_number`, logID)
	if err != nil {
		return domain.ImportLog{}, fmt.Errorf("failed to get log details: %w", err)
	}
	defer details.Close()

	for details.Next() {
		var d domain.LogDetail
		if err := details.Scan(&d.ID, &d.LineNumber, &d.Status, &d.DetailProblem); err != nil {
			return domain.ImportLog{}, fmt.Errorf("failed to scan log detail: %w", err)
		}
		log.Details = append(log.Details, d)
	}
	return log, details.Err()
}

func (r *importLogRepository) List(ctx context.Context) ([]domain.ImportLog, error) {
	return r.query(ctx, `
		SELECT id, file_name, status, created_at, total_lines, success_lines, failed_lines
		FROM import_logs ORDER BY created_at DESC`)
}

func (r *importLogRepository) Search(ctx context.Context, fileName string, status *domain.LogStatus) ([]domain.ImportLog, error) {
	query := `
		SELECT id, file_name, status, created_at, total_lines, success_lines, failed_lines
		FROM import_logs WHERE 1=1`
	var args []any
	if fileName != "" {
		args = append(args, "%"+fileName+"%")
		query += fmt.Sprintf(" AND file_name ILIKE $%d", len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	return r.query(ctx, query, args...)
}

func (r *importLogRepository) query(ctx context.Context, sql string, args ...any) ([]domain.ImportLog, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.ImportLog
	for rows.Next() {
		log, err := scanImportLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanImportLog(row pgx.Row) (domain.ImportLog, error) {
	var log domain.ImportLog
	var status string
	err := row.Scan(&log.ID, &log.FileName, &status, &log.CreatedAt,
		&log.TotalLines, &log.SuccessLines, &log.FailedLines)
	if err != nil {
		return domain.ImportLog{}, err
	}
	log.Status = domain.LogStatus(strings.ToUpper(status))
	return log, nil
}
