package llm

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/dgallion1/binkread/internal/tokenizer"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

// LeadSummarizer is an offline extractive summarizer: it keeps the leading
// sentences of a chunk up to maxLength tokens. It needs no network and
// serves as the default for tests and air-gapped deployments.
type LeadSummarizer struct {
	Counter tokenizer.Counter
	Stats   *LLMStats
}

// Summarize never exceeds maxLength. minLength is met whenever the chunk
// holds that many tokens in sentences that fit.
func (l LeadSummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (summary string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	defer func() { l.Stats.Observe(start, len(text), summary, err) }()

	counter := l.Counter
	if counter == nil {
		counter = tokenizer.Estimator{}
	}

	var kept []string
	total := 0
	for _, m := range sentenceRe.FindAllString(text, -1) {
		sentence := strings.TrimSpace(m)
		if sentence == "" {
			continue
		}
		n, err := counter.CountTokens(sentence)
		if err != nil {
			return "", err
		}
		if total+n > maxLength {
			if len(kept) == 0 {
				kept = append(kept, leadingWords(sentence, maxLength))
			}
			break
		}
		kept = append(kept, sentence)
		total += n
	}

	summary = strings.Join(kept, " ")
	if strings.TrimSpace(summary) == "" {
		return "", ErrEmptyResponse
	}
	return summary, nil
}

// leadingWords keeps as many words as the estimator allows for maxTokens.
func leadingWords(sentence string, maxTokens int) string {
	words := strings.Fields(sentence)
	n := int(float64(maxTokens) / 1.33)
	if n < 1 {
		n = 1
	}
	if n < len(words) {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
