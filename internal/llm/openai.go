package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Default endpoints for the OpenAI-compatible providers.
const (
	OllamaBaseURL     = "http://localhost:11434/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAISummarizer calls any OpenAI-compatible chat completion endpoint.
type OpenAISummarizer struct {
	provider string
	client   *openai.Client
	model    string
	limiter  *rate.Limiter
	stats    *LLMStats
}

// NewOpenAISummarizer builds a client for provider (openai, ollama or
// openrouter). An empty baseURL selects the provider's default.
func NewOpenAISummarizer(provider, apiKey, model, baseURL string, limiter *rate.Limiter, stats *LLMStats) *OpenAISummarizer {
	clientConfig := openai.DefaultConfig(apiKey)
	switch {
	case baseURL != "":
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	case provider == "ollama":
		clientConfig.BaseURL = OllamaBaseURL
	case provider == "openrouter":
		clientConfig.BaseURL = OpenRouterBaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: 120 * time.Second}

	return &OpenAISummarizer{
		provider: provider,
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		limiter:  limiter,
		stats:    stats,
	}
}

// Summarize requests a completion capped at maxLength tokens.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxLength,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(text, maxLength, minLength)},
		},
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	summary, err := s.firstChoice(resp, err)
	s.stats.Observe(start, len(text), summary, err)
	return summary, err
}

func (s *OpenAISummarizer) firstChoice(resp openai.ChatCompletionResponse, err error) (string, error) {
	if err != nil {
		return "", s.convertError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}

func (s *OpenAISummarizer) convertError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{Provider: s.provider, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{Provider: s.provider, StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return fmt.Errorf("%s chat completion: %w", s.provider, err)
}
