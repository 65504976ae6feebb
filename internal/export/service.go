package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"fileflow/internal/repository"
)

const sheetName = "Import Log"

// Service renders import logs as xlsx workbooks for download.
type Service struct {
	logs repository.ImportLogRepository
}

func NewService(logs repository.ImportLogRepository) *Service {
	return &Service{logs: logs}
}

// WriteImportLog writes the workbook for one import log to w and returns a
// filename suitable for a content-disposition header.
func (s *Service) WriteImportLog(ctx context.Context, logID uuid.UUID, w io.Writer) (string, error) {
	log, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	summary := [][]any{
		{"File", log.FileName},
		{"Status", string(log.Status)},
		{"Created", log.CreatedAt.Format(time.RFC3339)},
		{"Total lines", log.TotalLines},
		{"Success lines", log.SuccessLines},
		{"Failed lines", log.FailedLines},
	}
	row := 1
	for _, values := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return "", fmt.Errorf("failed to write summary row: %w", err)
		}
		row++
	}

	row++ // blank separator
	header := []any{"Line", "Status", "Detail"}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheetName, cell, &header); err != nil {
		return "", fmt.Errorf("failed to write header row: %w", err)
	}
	row++

	for _, d := range log.Details {
		values := []any{d.LineNumber, string(d.Status), d.DetailProblem}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return "", fmt.Errorf("failed to write detail row: %w", err)
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return fmt.Sprintf("import_log_%s.xlsx", log.ID), nil
}
