package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogStatus is the aggregate outcome of one file's import.
type LogStatus string

const (
	LogStatusInProgress LogStatus = "IN_PROGRESS"
	LogStatusSuccess    LogStatus = "SUCCESS"
	LogStatusFailed     LogStatus = "FAILED"
	LogStatusPartial    LogStatus = "PARTIALLY_TRAITED"
)

// LineStatus is the outcome of one processed record.
type LineStatus string

const (
	LineStatusSuccess LineStatus = "SUCCESS"
	LineStatusFailed  LineStatus = "FAILED"
)

// ImportLog is the durable per-file processing record. Counters are bumped as
// lines are appended; the final status is derived from them alone.
type ImportLog struct {
	ID           uuid.UUID   `json:"id"`
	FileName     string      `json:"file_name"`
	Status       LogStatus   `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	TotalLines   int         `json:"total_lines"`
	SuccessLines int         `json:"success_lines"`
	FailedLines  int         `json:"failed_lines"`
	Details      []LogDetail `json:"details,omitempty"`
}

// LogDetail is one per-line entry of an import log.
type LogDetail struct {
	ID            uuid.UUID  `json:"id"`
	LineNumber    int        `json:"line_number"`
	Status        LineStatus `json:"status"`
	DetailProblem string     `json:"detail_problem,omitempty"`
}

// FinalStatus derives the aggregate status from the success/failure counters:
// all-success -> SUCCESS, all-failure -> FAILED, mixed -> PARTIALLY_TRAITED,
// nothing processed -> FAILED.
func FinalStatus(successLines, failedLines int) LogStatus {
	switch {
	case successLines > 0 && failedLines == 0:
		return LogStatusSuccess
	case successLines == 0 && failedLines > 0:
		return LogStatusFailed
	case successLines > 0:
		return LogStatusPartial
	default:
		return LogStatusFailed
	}
}
