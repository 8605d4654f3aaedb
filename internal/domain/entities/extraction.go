package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractionMetadata stores per-run details of an inference call
type ExtractionMetadata struct {
	PromptChars      int    `json:"prompt_chars,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	Attempts         int    `json:"attempts,omitempty"`
	StopReason       string `json:"stop_reason,omitempty"`
	ArchiveObject    string `json:"archive_object,omitempty"`
}

// Extraction is one inference run over a dialogue
type Extraction struct {
	ID            uuid.UUID                                  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DialogueID    uuid.UUID                                  `json:"dialogue_id" gorm:"type:uuid;not null;index"`
	ModelVariant  string                                     `json:"model_variant" gorm:"type:varchar(100);not null"`
	RawCompletion string                                     `json:"raw_completion,omitempty" gorm:"type:text"`
	Valid         bool                                       `json:"valid" gorm:"default:false"`
	ParseError    *string                                    `json:"parse_error,omitempty" gorm:"type:text"`
	LatencyMs     int64                                      `json:"latency_ms,omitempty"`
	Metadata      datatypes.JSONType[ExtractionMetadata]     `json:"metadata,omitempty" gorm:"type:jsonb"`
	RawData       datatypes.JSONType[map[string]interface{}] `json:"raw_data,omitempty" gorm:"type:jsonb"`
	Items         []ActionItem                               `json:"items,omitempty" gorm:"foreignKey:ExtractionID"`
	CreatedAt     time.Time                                  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time                                  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Extraction) TableName() string {
	return "extractions"
}

// NewExtraction creates a new extraction record for a dialogue
func NewExtraction(dialogueID uuid.UUID, modelVariant string) *Extraction {
	return &Extraction{
		ID:           uuid.New(),
		DialogueID:   dialogueID,
		ModelVariant: modelVariant,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// Document rebuilds the wire document from persisted items
func (e *Extraction) Document() ActionItemDocument {
	doc := ActionItemDocument{ActionItems: make([]ExtractedActionItem, 0, len(e.Items))}
	for _, item := range e.Items {
		doc.ActionItems = append(doc.ActionItems, ExtractedActionItem{
			Owner:    item.Owner,
			Task:     item.Task,
			Deadline: item.Deadline,
		})
	}
	return doc
}
