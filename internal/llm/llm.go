// Package llm provides the summarization backends: OpenAI-compatible chat
// APIs, the Anthropic Messages API and an offline extractive fallback.
package llm

import (
	"fmt"

	"github.com/dgallion1/binkread/internal/summarize"
	"github.com/dgallion1/binkread/internal/tokenizer"
)

// Config selects and configures a backend.
type Config struct {
	Provider string // openai, ollama, openrouter, anthropic or lead
	Model    string
	APIKey   string
	BaseURL  string
	RPS      float64 // 0 means unlimited

	// Counter is used by the lead backend. Nil means the estimator.
	Counter tokenizer.Counter
}

// New builds the configured backend. Every call it serves is recorded in stats.
func New(cfg Config, stats *LLMStats) (summarize.Summarizer, error) {
	limiter := NewLimiter(cfg.RPS)
	switch cfg.Provider {
	case "openai", "ollama", "openrouter":
		if cfg.Model == "" {
			return nil, fmt.Errorf("%s: model is required", cfg.Provider)
		}
		return NewOpenAISummarizer(cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL, limiter, stats), nil
	case "anthropic":
		if cfg.Model == "" {
			return nil, fmt.Errorf("anthropic: model is required")
		}
		return NewClaudeSummarizer(cfg.APIKey, cfg.Model, cfg.BaseURL, limiter, stats), nil
	case "lead":
		return LeadSummarizer{Counter: cfg.Counter, Stats: stats}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}
