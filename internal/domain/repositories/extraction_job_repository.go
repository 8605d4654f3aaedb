package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

// ExtractionJobRepository defines persistence operations for async
// extraction jobs
type ExtractionJobRepository interface {
	// CreateJob stores a new pending job
	CreateJob(ctx context.Context, job *entities.ExtractionJob) error

	// GetJobByID retrieves a job by ID, or (nil, nil) when it does not exist
	GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.ExtractionJob, error)

	// GetJobsByStatus retrieves jobs in a given status, oldest first
	GetJobsByStatus(ctx context.Context, status entities.ExtractionJobStatus) ([]entities.ExtractionJob, error)

	// ClaimJob atomically flips a pending job to running. Returns false when
	// the job was already claimed by another worker.
	ClaimJob(ctx context.Context, jobID uuid.UUID) (bool, error)

	// UpdateJobStatus updates the status of a job
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status entities.ExtractionJobStatus) error

	// MarkJobAsCompleted marks a job completed with the extraction it produced
	MarkJobAsCompleted(ctx context.Context, jobID, extractionID uuid.UUID) error

	// MarkJobAsFailed marks a job permanently failed with an error message
	MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error

	// ScheduleRetry moves a job to retrying status and increments its retry
	// counter
	ScheduleRetry(ctx context.Context, jobID uuid.UUID, errMsg string) error
}
