package domain

import (
	"math"
	"time"
)

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusFinished JobStatus = "FINISHED"
	JobStatusFailed   JobStatus = "FAILED"
)

// JobProgress is a point-in-time snapshot of a running or finished job.
// TimeLeft is nil while the ETA cannot be estimated.
type JobProgress struct {
	JobID            string    `json:"jobId"`
	Status           JobStatus `json:"status"`
	TotalRecords     int       `json:"totalRecords"`
	ProcessedRecords int       `json:"processedRecords"`
	Percent          int       `json:"percent"`
	TimeLeftSeconds  *int64    `json:"timeLeftSeconds,omitempty"`
	ElapsedSeconds   int64     `json:"elapsedSeconds"`
}

// FileFailure pairs a failed file with its failure detail.
type FileFailure struct {
	FileName string `json:"fileName"`
	Detail   string `json:"detail"`
}

// JobResult lists the per-file outcomes of one job, in processing order.
type JobResult struct {
	FilesTreated []string      `json:"filesTreated"`
	FilesFailed  []FileFailure `json:"filesFailed"`
}

// Percent computes the progress percentage per the tracker rules: 0 while an
// empty job is still running, 100 once an empty job finished, otherwise
// processed*100/total clamped to [0,100].
func Percent(status JobStatus, totalRecords, processedRecords int) int {
	if totalRecords <= 0 {
		if status == JobStatusFinished {
			return 100
		}
		return 0
	}
	p := int(int64(processedRecords) * 100 / int64(totalRecords))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// TimeLeft estimates the remaining seconds from the observed processing rate.
// It returns nil while the job is not RUNNING, nothing has been processed, or
// no time has elapsed yet.
func TimeLeft(status JobStatus, totalRecords, processedRecords int, elapsed time.Duration) *int64 {
	elapsedSec := int64(elapsed.Seconds())
	if status != JobStatusRunning || totalRecords <= 0 || processedRecords <= 0 || elapsedSec <= 0 {
		return nil
	}
	rate := float64(processedRecords) / float64(elapsedSec)
	remaining := totalRecords - processedRecords
	if remaining <= 0 {
		zero := int64(0)
		return &zero
	}
	left := int64(math.Ceil(float64(remaining) / rate))
	if left < 0 {
		left = 0
	}
	return &left
}
