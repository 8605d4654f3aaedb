package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DialogueTurn represents a single speaker's utterance within a dialogue
type DialogueTurn struct {
	Speaker string `json:"speaker" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

// Dialogue is a stored meeting dialogue: an ordered sequence of speaker turns
type Dialogue struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title     string         `json:"title,omitempty" gorm:"type:varchar(255)"`
	Turns     []DialogueTurn `json:"turns" gorm:"type:jsonb;serializer:json"`
	TurnCount int            `json:"turn_count" gorm:"type:integer;default:0"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Dialogue) TableName() string {
	return "dialogues"
}

// NewDialogue creates a new dialogue
func NewDialogue(title string, turns []DialogueTurn) *Dialogue {
	return &Dialogue{
		ID:        uuid.New(),
		Title:     title,
		Turns:     turns,
		TurnCount: len(turns),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Transcript renders the dialogue as "Speaker: text" lines
func (d *Dialogue) Transcript() string {
	var sb strings.Builder
	for _, turn := range d.Turns {
		sb.WriteString(turn.Speaker)
		sb.WriteString(": ")
		sb.WriteString(turn.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
