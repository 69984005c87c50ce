package summarize

import "fmt"

// DefaultMaxTokens is the largest chunk the summarization model accepts.
const DefaultMaxTokens = 1024

// TokenGate decides whether a chunk is small enough to summarize. Oversized
// chunks are skipped, never truncated.
type TokenGate struct {
	MaxTokens int
}

// Accepts reports whether chunk counts at most MaxTokens tokens, along with
// the count itself. Counting errors are returned unchanged in meaning.
func (g TokenGate) Accepts(chunk string, counter TokenCounter) (bool, int, error) {
	limit := g.MaxTokens
	if limit <= 0 {
		limit = DefaultMaxTokens
	}
	n, err := counter.CountTokens(chunk)
	if err != nil {
		return false, 0, fmt.Errorf("count tokens: %w", err)
	}
	return n <= limit, n, nil
}
