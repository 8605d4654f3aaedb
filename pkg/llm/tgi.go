package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/umang-projects/action-item-extractor/pkg/config"
)

// TGIClient is a minimal client for the text-generation-inference /generate
// endpoint. This backend serves the Llama-2 base with its adapter and takes a
// raw prompt, so the instruction template is rendered client-side.
type TGIClient struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// NewTGIClient creates a TGI backend client
func NewTGIClient(cfg *config.LLMConfig, timeout time.Duration) *TGIClient {
	return &TGIClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}
}

// generateRequest is the shape for /generate requests
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
	Details        bool    `json:"details"`
}

// generateResponse is a minimal response shape
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
	Details       struct {
		FinishReason    string `json:"finish_reason"`
		GeneratedTokens int    `json:"generated_tokens"`
	} `json:"details"`
}

// Name returns the backend name
func (c *TGIClient) Name() string {
	return "tgi"
}

// Model returns the served adapter name
func (c *TGIClient) Model() string {
	return c.model
}

// Complete renders the messages into an instruction prompt and sends it to
// the TGI server
func (c *TGIClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	temperature := resolveTemperature(req.Temperature, c.temperature)

	reqBody := generateRequest{
		Inputs: RenderInstructPrompt(req.Messages),
		Parameters: generateParameters{
			MaxNewTokens: maxTokens,
			Temperature:  temperature,
			Details:      true,
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/generate"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("tgi returned status %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, err
	}

	return &CompletionResponse{
		Content:    gr.GeneratedText,
		Model:      c.model,
		TokensOut:  gr.Details.GeneratedTokens,
		StopReason: gr.Details.FinishReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
