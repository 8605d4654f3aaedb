// Package llm provides clients for the model serving backends that host the
// fine-tuned action item adapters.
package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/umang-projects/action-item-extractor/pkg/config"
)

// ChatMessage is a single role-tagged message sent to a backend
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest represents one completion request
type CompletionRequest struct {
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a backend completion
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface both serving backends implement
type Client interface {
	// Complete sends a completion request and returns the response
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the backend name ("vllm" or "tgi")
	Name() string

	// Model returns the served model/adapter identifier
	Model() string
}

// resolveTemperature picks the per-request override over the configured
// default; a zero request value means "not set". An explicit zero in config
// (greedy decoding for deterministic JSON) is sent as the smallest positive
// float32 instead, because both wire formats omit a zero temperature and the
// server would substitute its own default.
func resolveTemperature(reqTemp, defaultTemp float64) float64 {
	t := reqTemp
	if t == 0 {
		t = defaultTemp
	}
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// NewClient creates a backend client from config. Backend selection is a
// static deployment choice, not a runtime decision.
func NewClient(cfg *config.LLMConfig, timeout time.Duration) (Client, error) {
	switch cfg.Backend {
	case "vllm":
		return NewVLLMClient(cfg, timeout)
	case "tgi":
		return NewTGIClient(cfg, timeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q", cfg.Backend)
	}
}
