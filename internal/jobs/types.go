package jobs

import (
	"context"
	"time"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// JobStatus represents the current status of a scan job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// ScanJob represents one requested scan run. The UI enqueues a job, polls it,
// and reads the ScanResult off the completed job.
type ScanJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// UserID scopes the scan to one user's transactions and scan state.
	UserID string `json:"user_id"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// Result holds the scan counts once the job completed.
	Result *domain.ScanResult `json:"result,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Publisher defines the interface for publishing scan jobs to a queue.
type Publisher interface {
	// PublishScan enqueues a scan job.
	PublishScan(ctx context.Context, job *ScanJob) error
}

// JobStore defines the interface for persisting job status.
type JobStore interface {
	// SaveJob saves or updates a job.
	SaveJob(ctx context.Context, job *ScanJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ScanJob, error)
}

// JobHandler executes one scan job and returns its result.
type JobHandler func(ctx context.Context, job *ScanJob) (domain.ScanResult, error)
