package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{"openai", Config{Provider: "openai", Model: "gpt-4o-mini", APIKey: "k"}, &OpenAISummarizer{}, false},
		{"ollama without key", Config{Provider: "ollama", Model: "llama3"}, &OpenAISummarizer{}, false},
		{"openrouter", Config{Provider: "openrouter", Model: "m", APIKey: "k"}, &OpenAISummarizer{}, false},
		{"anthropic", Config{Provider: "anthropic", Model: "claude-3-5-haiku-latest", APIKey: "k"}, &ClaudeSummarizer{}, false},
		{"lead", Config{Provider: "lead"}, LeadSummarizer{}, false},
		{"missing model", Config{Provider: "openai"}, nil, true},
		{"unknown", Config{Provider: "bard"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("body text", 300, 100)
	assert.Contains(t, p, "100 to 300 tokens")
	assert.Contains(t, p, "body text")

	p = BuildPrompt("body", 50, 0)
	assert.Contains(t, p, "at most 50 tokens")
}

func TestLeadSummarizer(t *testing.T) {
	l := LeadSummarizer{}
	ctx := context.Background()

	got, err := l.Summarize(ctx, "Alpha beta. Gamma delta. Epsilon zeta.", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha beta. Gamma delta.", got)

	got, err = l.Summarize(ctx, "Alpha beta gamma delta.", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got)

	_, err = l.Summarize(ctx, "   ", 10, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestLeadSummarizer_RecordsStatsAndHonorsContext(t *testing.T) {
	stats := NewLLMStats("test", time.Hour)
	l := LeadSummarizer{Stats: stats}

	_, err := l.Summarize(context.Background(), "One sentence.", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Snapshot().Calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Summarize(ctx, "One sentence.", 10, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClaudeSummarizer(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"  A short summary. "}]}`))
	}))
	defer srv.Close()

	stats := NewLLMStats("test", time.Hour)
	c := NewClaudeSummarizer("secret", "claude-test", srv.URL, nil, stats)
	defer c.Close()

	summary, err := c.Summarize(context.Background(), "long text", 300, 100)
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", summary)
	assert.Equal(t, 300, got.MaxTokens)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, SystemPrompt, got.System)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "long text")
	assert.Equal(t, 1, stats.Snapshot().Calls)
}

func TestClaudeSummarizer_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	stats := NewLLMStats("anthropic", time.Hour)
	c := NewClaudeSummarizer("k", "m", srv.URL, nil, stats)
	_, err := c.Summarize(context.Background(), "text", 100, 0)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, apiErr.Temporary())

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Calls)
	assert.Equal(t, 1, snap.Errors)
	assert.Zero(t, snap.OK)
}

func TestClaudeSummarizer_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewClaudeSummarizer("k", "m", srv.URL, nil, nil)
	_, err := c.Summarize(context.Background(), "text", 100, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func chatServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestOpenAISummarizer(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, `{
		"id": "cmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "gpt-test",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": " Summary here. "}, "finish_reason": "stop"}]
	}`, &seen)
	defer srv.Close()

	stats := NewLLMStats("test", time.Hour)
	s := NewOpenAISummarizer("openai", "k", "gpt-test", srv.URL, NewLimiter(100), stats)

	got, err := s.Summarize(context.Background(), "chunk text", 250, 50)
	require.NoError(t, err)
	assert.Equal(t, "Summary here.", got)
	assert.Equal(t, "gpt-test", seen["model"])
	assert.EqualValues(t, 250, seen["max_tokens"])
	assert.Equal(t, 1, stats.Snapshot().Calls)
}

func TestOpenAISummarizer_APIError(t *testing.T) {
	srv := chatServer(t, http.StatusServiceUnavailable, `{"error": {"message": "overloaded", "type": "server_error"}}`, nil)
	defer srv.Close()

	s := NewOpenAISummarizer("ollama", "", "llama3", srv.URL, nil, nil)
	_, err := s.Summarize(context.Background(), "chunk", 100, 0)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "ollama", apiErr.Provider)
	assert.True(t, apiErr.Temporary())
}

func TestOpenAISummarizer_NoChoices(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"id": "x", "choices": []}`, nil)
	defer srv.Close()

	stats := NewLLMStats("openai", time.Hour)
	s := NewOpenAISummarizer("openai", "k", "m", srv.URL, nil, stats)
	_, err := s.Summarize(context.Background(), "chunk", 100, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 1, stats.Snapshot().Empty)
}

func TestLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0))
	assert.NoError(t, wait(context.Background(), nil))

	l := NewLimiter(0.001)
	require.NotNil(t, l)
	require.NoError(t, wait(context.Background(), l)) // burst token

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, wait(ctx, l))
}
