package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

// ExtractionRepository defines persistence operations for extractions and
// their action items
type ExtractionRepository interface {
	// SaveExtraction stores an extraction together with its action items
	SaveExtraction(ctx context.Context, extraction *entities.Extraction) error

	// FindByID retrieves an extraction with its items
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Extraction, error)

	// ListByDialogue retrieves extractions for a dialogue, newest first
	ListByDialogue(ctx context.Context, dialogueID uuid.UUID) ([]*entities.Extraction, error)

	// ListActionItems retrieves the action items of an extraction in order
	ListActionItems(ctx context.Context, extractionID uuid.UUID) ([]*entities.ActionItem, error)
}
