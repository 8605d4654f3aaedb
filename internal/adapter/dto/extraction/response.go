package extraction

import "time"

// ActionItemResponse is a single extracted commitment
type ActionItemResponse struct {
	Owner    string `json:"owner"`
	Task     string `json:"task"`
	Deadline string `json:"deadline"`
}

// ExtractionResponse represents one extraction run
type ExtractionResponse struct {
	ID           string               `json:"id"`
	DialogueID   string               `json:"dialogue_id"`
	ModelVariant string               `json:"model_variant"`
	Valid        bool                 `json:"valid"`
	ParseError   string               `json:"parse_error,omitempty"`
	ActionItems  []ActionItemResponse `json:"action_items"`
	LatencyMs    int64                `json:"latency_ms"`
	Attempts     int                  `json:"attempts,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// JobResponse represents an asynchronous extraction job
type JobResponse struct {
	ID           string     `json:"id"`
	DialogueID   string     `json:"dialogue_id"`
	Status       string     `json:"status"`
	ModelVariant string     `json:"model_variant,omitempty"`
	ExtractionID string     `json:"extraction_id,omitempty"`
	RetryCount   int        `json:"retry_count"`
	LastError    string     `json:"last_error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
