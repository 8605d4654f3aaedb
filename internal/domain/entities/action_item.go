package entities

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedActionItem is one record of the JSON document the model emits.
// All three fields are open-ended natural-language strings; deadline is a
// phrase like "by Friday", not a normalized date.
type ExtractedActionItem struct {
	Owner    string `json:"owner"`
	Task     string `json:"task"`
	Deadline string `json:"deadline"`
}

// ActionItemDocument is the expected top-level shape of a model completion
type ActionItemDocument struct {
	ActionItems []ExtractedActionItem `json:"action_items"`
}

// ActionItem is the persisted form of an extracted action item
type ActionItem struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ExtractionID uuid.UUID `json:"extraction_id" gorm:"type:uuid;not null;index"`
	Position     int       `json:"position" gorm:"type:integer;not null"`
	Owner        string    `json:"owner" gorm:"type:varchar(255)"`
	Task         string    `json:"task" gorm:"type:text"`
	Deadline     string    `json:"deadline" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ActionItem) TableName() string {
	return "action_items"
}

// NewActionItem creates a persisted action item from an extracted record
func NewActionItem(extractionID uuid.UUID, position int, item ExtractedActionItem) *ActionItem {
	return &ActionItem{
		ID:           uuid.New(),
		ExtractionID: extractionID,
		Position:     position,
		Owner:        item.Owner,
		Task:         item.Task,
		Deadline:     item.Deadline,
	}
}
