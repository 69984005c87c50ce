package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultAnthropicURL = "https://api.anthropic.com"

// ClaudeSummarizer calls the Anthropic Messages API.
type ClaudeSummarizer struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	stats      *LLMStats
}

func NewClaudeSummarizer(apiKey, model, baseURL string, limiter *rate.Limiter, stats *LLMStats) *ClaudeSummarizer {
	if baseURL == "" {
		baseURL = defaultAnthropicURL
	}
	return &ClaudeSummarizer{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: limiter,
		stats:   stats,
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize asks Claude for a summary of at most maxLength tokens.
func (c *ClaudeSummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if err := wait(ctx, c.limiter); err != nil {
		return "", err
	}
	start := time.Now()
	summary, err := c.summarize(ctx, text, maxLength, minLength)
	c.stats.Observe(start, len(text), summary, err)
	return summary, err
}

func (c *ClaudeSummarizer) summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: maxLength,
		System:    SystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: BuildPrompt(text, maxLength, minLength)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "anthropic", StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	var sb strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}

// Close releases idle connections.
func (c *ClaudeSummarizer) Close() {
	c.httpClient.CloseIdleConnections()
}
