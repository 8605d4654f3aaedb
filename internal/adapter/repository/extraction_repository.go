package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/umang-projects/action-item-extractor/internal/domain/entities"
	domainrepo "github.com/umang-projects/action-item-extractor/internal/domain/repositories"
)

type extractionRepository struct {
	db *gorm.DB
}

// NewExtractionRepository creates a new extraction repository backed by GORM
func NewExtractionRepository(db *gorm.DB) domainrepo.ExtractionRepository {
	return &extractionRepository{db: db}
}

// SaveExtraction stores an extraction together with its action items in one
// transaction
func (r *extractionRepository) SaveExtraction(ctx context.Context, extraction *entities.Extraction) error {
	if extraction == nil {
		return errors.New("extraction cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := extraction.Items
		extraction.Items = nil
		if err := tx.Create(extraction).Error; err != nil {
			extraction.Items = items
			return err
		}
		extraction.Items = items
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// FindByID retrieves an extraction with its items
func (r *extractionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Extraction, error) {
	var extraction entities.Extraction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&extraction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrExtractionNotFound
		}
		return nil, err
	}

	items, err := r.ListActionItems(ctx, extraction.ID)
	if err != nil {
		return nil, err
	}
	extraction.Items = make([]entities.ActionItem, 0, len(items))
	for _, item := range items {
		extraction.Items = append(extraction.Items, *item)
	}
	return &extraction, nil
}

// ListByDialogue retrieves extractions for a dialogue, newest first
func (r *extractionRepository) ListByDialogue(ctx context.Context, dialogueID uuid.UUID) ([]*entities.Extraction, error) {
	var extractions []*entities.Extraction
	if err := r.db.WithContext(ctx).
		Where("dialogue_id = ?", dialogueID).
		Order("created_at DESC").
		Find(&extractions).Error; err != nil {
		return nil, err
	}
	return extractions, nil
}

// ListActionItems retrieves the action items of an extraction in order
func (r *extractionRepository) ListActionItems(ctx context.Context, extractionID uuid.UUID) ([]*entities.ActionItem, error) {
	var items []*entities.ActionItem
	if err := r.db.WithContext(ctx).
		Where("extraction_id = ?", extractionID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
