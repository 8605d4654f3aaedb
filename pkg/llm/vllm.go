package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/umang-projects/action-item-extractor/pkg/config"
)

// VLLMClient talks to a vLLM server through its OpenAI-compatible
// chat-completions endpoint. The fine-tuned LoRA adapter is served as a named
// model (vllm serve ... --lora-modules mistral-7b-action-items=<adapter path>),
// so selecting the adapter is just the model field of the request.
type VLLMClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewVLLMClient creates a vLLM backend client
func NewVLLMClient(cfg *config.LLMConfig, timeout time.Duration) (*VLLMClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("vllm base URL is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{Timeout: timeout}

	return &VLLMClient{
		client:      openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the backend name
func (c *VLLMClient) Name() string {
	return "vllm"
}

// Model returns the served adapter name
func (c *VLLMClient) Model() string {
	return c.model
}

// Complete sends a chat completion request to the vLLM server
func (c *VLLMClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	temperature := resolveTemperature(req.Temperature, c.temperature)

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from vllm")
	}

	return &CompletionResponse{
		Content:    resp.Choices[0].Message.Content,
		Model:      resp.Model,
		TokensIn:   resp.Usage.PromptTokens,
		TokensOut:  resp.Usage.CompletionTokens,
		StopReason: string(resp.Choices[0].FinishReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
