package extraction

// CreateExtractionRequest represents the request to run a synchronous
// extraction over a stored dialogue
type CreateExtractionRequest struct {
	DialogueID string `json:"dialogue_id" validate:"required,uuid"`
}
