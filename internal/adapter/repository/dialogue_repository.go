package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	domainrepo "github.com/umang-projects/action-item-extractor/internal/domain/repositories"
)

type dialogueRepository struct {
	db *gorm.DB
}

// NewDialogueRepository creates a new dialogue repository backed by GORM
func NewDialogueRepository(db *gorm.DB) domainrepo.DialogueRepository {
	return &dialogueRepository{db: db}
}

// Create stores a new dialogue
func (r *dialogueRepository) Create(ctx context.Context, dialogue *entities.Dialogue) error {
	if dialogue == nil {
		return errors.New("dialogue cannot be nil")
	}
	return r.db.WithContext(ctx).Create(dialogue).Error
}

// FindByID retrieves a dialogue by its ID
func (r *dialogueRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Dialogue, error) {
	var dialogue entities.Dialogue
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dialogue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrDialogueNotFound
		}
		return nil, err
	}
	return &dialogue, nil
}

// List retrieves dialogues ordered by creation time
func (r *dialogueRepository) List(ctx context.Context, limit, offset int) ([]*entities.Dialogue, int64, error) {
	var dialogues []*entities.Dialogue
	var total int64

	if err := r.db.WithContext(ctx).Model(&entities.Dialogue{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&dialogues).Error; err != nil {
		return nil, 0, err
	}
	return dialogues, total, nil
}

// Delete removes a dialogue
func (r *dialogueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Dialogue{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrDialogueNotFound
	}
	return nil
}
