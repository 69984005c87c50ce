// Package summarize turns cleaned document text into a joined abstractive
// summary, one bounded chunk at a time.
package summarize

import (
	"context"

	"github.com/dgallion1/binkread/internal/tokenizer"
)

// TokenCounter is the model-specific token-counting oracle.
type TokenCounter = tokenizer.Counter

// Summarizer is the summarization oracle. Implementations fail rather than
// silently truncate when the input exceeds their limits.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string, maxLength, minLength int) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	return f(ctx, text, maxLength, minLength)
}

// TextCleaner normalizes raw extracted text.
type TextCleaner interface {
	Clean(raw string) string
}
