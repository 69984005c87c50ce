// Package tokenizer provides token-counting oracles for the summarization
// pipeline.
package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

// Counter reports how many model tokens text occupies.
type Counter interface {
	CountTokens(text string) (int, error)
}

// New returns the counter named by kind: "estimate" or "tiktoken".
func New(kind, encoding string) (Counter, error) {
	switch kind {
	case "", "estimate":
		return Estimator{}, nil
	case "tiktoken":
		return NewTiktoken(encoding)
	default:
		return nil, fmt.Errorf("unknown tokenizer: %s", kind)
	}
}

// Estimator approximates token counts from word counts. Exact tokenization
// is not needed for a size gate with a safety margin.
type Estimator struct{}

func (Estimator) CountTokens(text string) (int, error) {
	return EstimateTokens(text), nil
}

// EstimateTokens gives a rough token count at ~1.33 tokens per word.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

var loaderOnce sync.Once

// Tiktoken counts BPE tokens with an OpenAI encoding. The BPE ranks are
// embedded, so no network access is needed.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) CountTokens(text string) (int, error) {
	return len(t.enc.Encode(text, nil, nil)), nil
}
