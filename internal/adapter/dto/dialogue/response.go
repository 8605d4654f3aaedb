package dialogue

import "time"

// TurnResponse is a single speaker turn in a dialogue response
type TurnResponse struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// DialogueResponse represents a stored dialogue
type DialogueResponse struct {
	ID        string         `json:"id"`
	Title     string         `json:"title,omitempty"`
	Turns     []TurnResponse `json:"turns"`
	TurnCount int            `json:"turn_count"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListDialoguesResponse represents a page of dialogues
type ListDialoguesResponse struct {
	Dialogues []*DialogueResponse `json:"dialogues"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PageSize  int                 `json:"page_size"`
}
