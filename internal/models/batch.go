package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type BatchScope string

const (
	ScopeSingle  BatchScope = "single"
	ScopeDay     BatchScope = "day"
	ScopeColumn  BatchScope = "column"
	ScopeProject BatchScope = "project"
)

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// CanTransitionTo enforces forward-only movement through the batch lifecycle.
func (s BatchStatus) CanTransitionTo(next BatchStatus) bool {
	switch s {
	case BatchPending:
		return next == BatchProcessing || next == BatchCompleted || next == BatchFailed
	case BatchProcessing:
		return next == BatchCompleted || next == BatchFailed
	}
	return false
}

func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// RegenerationBatch tracks one fan-out regeneration request. Counters are
// incremented atomically at the storage layer; the aggregate status is flipped
// exactly once by whichever job settles last.
type RegenerationBatch struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	ProjectID     uuid.UUID   `json:"project_id" db:"project_id"`
	Scope         BatchScope  `json:"scope" db:"scope"`
	GeneratorType string      `json:"generator_type,omitempty" db:"generator_type"`
	TotalJobs     int         `json:"total_jobs" db:"total_jobs"`
	CompletedJobs int         `json:"completed_jobs" db:"completed_jobs"`
	FailedJobs    int         `json:"failed_jobs" db:"failed_jobs"`
	Status        BatchStatus `json:"status" db:"status"`
	StartedAt     *time.Time  `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
}

func (b *RegenerationBatch) IsActive() bool {
	return b.Status == BatchPending || b.Status == BatchProcessing
}

// ProgressPercentage is completed/total rounded to the nearest integer,
// defined as 0 for an empty batch.
func (b *RegenerationBatch) ProgressPercentage() int {
	if b.TotalJobs == 0 {
		return 0
	}
	return int(math.Round(100 * float64(b.CompletedJobs) / float64(b.TotalJobs)))
}
