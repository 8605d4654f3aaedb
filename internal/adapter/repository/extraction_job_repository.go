package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	domainrepo "github.com/umang-projects/action-item-extractor/internal/domain/repositories"
)

// ExtractionJobRepository handles extraction job data operations
type ExtractionJobRepository struct {
	db *gorm.DB
}

// NewExtractionJobRepository creates a new extraction job repository
func NewExtractionJobRepository(db *gorm.DB) domainrepo.ExtractionJobRepository {
	return &ExtractionJobRepository{db: db}
}

// CreateJob creates a new extraction job
func (r *ExtractionJobRepository) CreateJob(ctx context.Context, job *entities.ExtractionJob) error {
	if job == nil {
		return errors.New("job cannot be nil")
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJobByID retrieves an extraction job by ID
func (r *ExtractionJobRepository) GetJobByID(ctx context.Context, jobID uuid.UUID) (*entities.ExtractionJob, error) {
	var job entities.ExtractionJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// GetJobsByStatus retrieves jobs in a given status, oldest first
func (r *ExtractionJobRepository) GetJobsByStatus(ctx context.Context, status entities.ExtractionJobStatus) ([]entities.ExtractionJob, error) {
	var jobs []entities.ExtractionJob
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ClaimJob atomically flips a pending job to running by conditioning the
// update on the current status. Only one of several competing workers gets
// a nonzero row count.
func (r *ExtractionJobRepository) ClaimJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entities.ExtractionJob{}).
		Where("id = ? AND status = ?", jobID, entities.ExtractionJobStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.ExtractionJobStatusRunning,
			"started_at": now,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateJobStatus updates the status of a job
func (r *ExtractionJobRepository) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status entities.ExtractionJobStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.ExtractionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// MarkJobAsCompleted marks a job completed with the extraction it produced
func (r *ExtractionJobRepository) MarkJobAsCompleted(ctx context.Context, jobID, extractionID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entities.ExtractionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":        entities.ExtractionJobStatusCompleted,
			"extraction_id": extractionID,
			"completed_at":  now,
			"updated_at":    now,
		}).Error
}

// MarkJobAsFailed marks a job failed with an error message
func (r *ExtractionJobRepository) MarkJobAsFailed(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.ExtractionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     entities.ExtractionJobStatusFailed,
			"last_error": errMsg,
			"updated_at": time.Now(),
		}).Error
}

// ScheduleRetry moves a job to retrying status, incrementing the counter in
// the database so concurrent failure handlers cannot lose an increment
func (r *ExtractionJobRepository) ScheduleRetry(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&entities.ExtractionJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      entities.ExtractionJobStatusRetrying,
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  errMsg,
			"updated_at":  time.Now(),
		}).Error
}
