package entities

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionJobStatus represents the status of an asynchronous extraction job
type ExtractionJobStatus string

const (
	ExtractionJobStatusPending   ExtractionJobStatus = "pending"   // Waiting to be claimed by a worker
	ExtractionJobStatusRunning   ExtractionJobStatus = "running"   // Inference in progress
	ExtractionJobStatusCompleted ExtractionJobStatus = "completed" // Extraction stored
	ExtractionJobStatusFailed    ExtractionJobStatus = "failed"    // Gave up after retries
	ExtractionJobStatusRetrying  ExtractionJobStatus = "retrying"  // Retrying after failure
	ExtractionJobStatusCancelled ExtractionJobStatus = "cancelled" // Job was cancelled
)

// ExtractionJob represents a queued extraction over a stored dialogue
type ExtractionJob struct {
	ID           uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DialogueID   uuid.UUID           `json:"dialogue_id" gorm:"type:uuid;not null;index"`
	Status       ExtractionJobStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'pending'"`
	ModelVariant string              `json:"model_variant" gorm:"type:varchar(100)"`
	ExtractionID *uuid.UUID          `json:"extraction_id,omitempty" gorm:"type:uuid;index"`

	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (ExtractionJob) TableName() string {
	return "extraction_jobs"
}

// NewExtractionJob creates a new pending extraction job
func NewExtractionJob(dialogueID uuid.UUID, modelVariant string) *ExtractionJob {
	return &ExtractionJob{
		ID:           uuid.New(),
		DialogueID:   dialogueID,
		Status:       ExtractionJobStatusPending,
		ModelVariant: modelVariant,
		RetryCount:   0,
		MaxRetries:   3,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// IsRetryable checks if job has retry budget left
func (j *ExtractionJob) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// MarkAsRunning marks job as claimed by a worker
func (j *ExtractionJob) MarkAsRunning() {
	j.Status = ExtractionJobStatusRunning
	now := time.Now()
	j.StartedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted marks job as completed with the extraction it produced
func (j *ExtractionJob) MarkAsCompleted(extractionID uuid.UUID) {
	j.Status = ExtractionJobStatusCompleted
	j.ExtractionID = &extractionID
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed marks job as failed with error message
func (j *ExtractionJob) MarkAsFailed(errMsg string) {
	j.Status = ExtractionJobStatusFailed
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}

// IncrementRetry increments retry count and marks for retry
func (j *ExtractionJob) IncrementRetry(errMsg string) {
	j.RetryCount++
	j.Status = ExtractionJobStatusRetrying
	j.LastError = &errMsg
	j.UpdatedAt = time.Now()
}
