package dialogue

// TurnRequest is a single speaker turn in a dialogue payload
type TurnRequest struct {
	Speaker string `json:"speaker" validate:"required,min=1,max=100"`
	Text    string `json:"text" validate:"required,min=1"`
}

// CreateDialogueRequest represents the request to store a dialogue
type CreateDialogueRequest struct {
	Title string        `json:"title" validate:"omitempty,max=255"`
	Turns []TurnRequest `json:"turns" validate:"required,min=1,dive"`
}

// ListDialoguesRequest represents query parameters for listing dialogues
type ListDialoguesRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}
