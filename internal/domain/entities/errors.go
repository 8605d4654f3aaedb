package entities

import "errors"

// Domain errors
var (
	// Dialogue errors
	ErrDialogueNotFound = errors.New("dialogue not found")
	ErrDialogueEmpty    = errors.New("dialogue has no turns")
	ErrPromptTooLong    = errors.New("dialogue exceeds prompt length limit")

	// Extraction errors
	ErrExtractionNotFound  = errors.New("extraction not found")
	ErrInvalidModelOutput  = errors.New("model output is not a valid action item document")
	ErrEmptyCompletion     = errors.New("model returned an empty completion")
	ErrUnknownModelVariant = errors.New("unknown model variant")

	// Job errors
	ErrJobNotFound = errors.New("extraction job not found")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
)
