package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
)

// DialogueRepository defines the interface for dialogue data access
type DialogueRepository interface {
	// Create stores a new dialogue
	Create(ctx context.Context, dialogue *entities.Dialogue) error

	// FindByID retrieves a dialogue by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Dialogue, error)

	// List retrieves dialogues ordered by creation time
	List(ctx context.Context, limit, offset int) ([]*entities.Dialogue, int64, error)

	// Delete removes a dialogue
	Delete(ctx context.Context, id uuid.UUID) error
}
