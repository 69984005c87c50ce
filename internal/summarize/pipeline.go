package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/dgallion1/binkread/internal/chunker"
)

// Options controls one pipeline run.
type Options struct {
	ChunkSize        int           // Characters per chunk.
	MaxTokens        int           // Token gate limit.
	SummaryMaxLength int           // Passed to the oracle.
	SummaryMinLength int           // Passed to the oracle.
	ChunkTimeout     time.Duration // Per oracle call; 0 means no limit.

	// Progress, when set, is called after every chunk with the chunk count.
	Progress func(ev ChunkEvent, total int)
}

// DefaultOptions returns the model defaults.
func DefaultOptions() Options {
	return Options{
		ChunkSize:        chunker.DefaultChunkSize,
		MaxTokens:        DefaultMaxTokens,
		SummaryMaxLength: 300,
		SummaryMinLength: 100,
		ChunkTimeout:     2 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = d.MaxTokens
	}
	if o.SummaryMaxLength <= 0 {
		o.SummaryMaxLength = d.SummaryMaxLength
	}
	if o.SummaryMinLength < 0 {
		o.SummaryMinLength = 0
	}
	return o
}

// Key identifies the options that change the summary text.
func (o Options) Key() string {
	o = o.withDefaults()
	return fmt.Sprintf("chunk=%d;tokens=%d;max=%d;min=%d", o.ChunkSize, o.MaxTokens, o.SummaryMaxLength, o.SummaryMinLength)
}

// Outcome is what happened to one chunk.
type Outcome string

const (
	OutcomeSummarized Outcome = "summarized"
	OutcomeSkipped    Outcome = "skipped" // Over the token limit.
	OutcomeFailed     Outcome = "failed"  // Counting or oracle error.
)

// ChunkEvent describes the handling of one chunk.
type ChunkEvent struct {
	Index    int
	Start    int // Rune offset in the cleaned text.
	End      int
	Tokens   int
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Observer receives every chunk event, e.g. for metrics.
type Observer interface {
	ObserveChunk(ev ChunkEvent)
}

// Result is the detailed outcome of a run.
type Result struct {
	Summary    string
	Partials   []string
	Events     []ChunkEvent
	Total      int
	Summarized int
	Skipped    int
	Failed     int
}

// Pipeline runs cleaner, chunker, token gate and summarization oracle in
// that order. Oracle access is serialized across concurrent runs: a run
// holds the pipeline for its whole chunk loop.
type Pipeline struct {
	cleaner  TextCleaner
	counter  TokenCounter
	oracle   Summarizer
	log      *slog.Logger
	observer Observer
	lock     *semaphore.Weighted
}

func New(cleaner TextCleaner, counter TokenCounter, oracle Summarizer, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cleaner: cleaner,
		counter: counter,
		oracle:  oracle,
		log:     log,
		lock:    semaphore.NewWeighted(1),
	}
}

// SetObserver installs o. Call before the first run.
func (p *Pipeline) SetObserver(o Observer) {
	p.observer = o
}

// Process returns the joined summary of raw.
func (p *Pipeline) Process(ctx context.Context, raw string, opts Options) (string, error) {
	res, err := p.Run(ctx, raw, opts)
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

// Run is Process with per-chunk detail.
func (p *Pipeline) Run(ctx context.Context, raw string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	text := p.cleaner.Clean(raw)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	var spans []chunker.Span
	for s := range chunker.Spans(text, opts.ChunkSize) {
		spans = append(spans, s)
	}

	if err := p.lock.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for summarizer: %w", err)
	}
	defer p.lock.Release(1)

	res := &Result{Total: len(spans)}
	gate := TokenGate{MaxTokens: opts.MaxTokens}
	var sb strings.Builder

	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev := p.processChunk(ctx, gate, i, span, opts)
		switch ev.Outcome {
		case OutcomeSummarized:
			res.Summarized++
		case OutcomeSkipped:
			res.Skipped++
			p.log.Warn("skipping chunk, exceeds token limit", "chunk", i+1, "tokens", ev.Tokens, "max_tokens", opts.MaxTokens)
		case OutcomeFailed:
			res.Failed++
			p.log.Error("error processing chunk", "chunk", i+1, "error", ev.Err)
		}
		if ev.Outcome == OutcomeSummarized {
			partial := ev.partial
			res.Partials = append(res.Partials, partial)
			sb.WriteString(partial)
			sb.WriteString("\n\n")
			p.log.Info("processed chunk", "chunk", fmt.Sprintf("%d/%d", i+1, len(spans)), "duration_ms", ev.Duration.Milliseconds())
		}

		res.Events = append(res.Events, ev.ChunkEvent)
		if p.observer != nil {
			p.observer.ObserveChunk(ev.ChunkEvent)
		}
		if opts.Progress != nil {
			opts.Progress(ev.ChunkEvent, len(spans))
		}
	}

	res.Summary = strings.TrimSpace(sb.String())
	if res.Summary == "" {
		return res, ErrEmptySummary
	}
	return res, nil
}

type chunkOutcome struct {
	ChunkEvent
	partial string
}

func (p *Pipeline) processChunk(ctx context.Context, gate TokenGate, i int, span chunker.Span, opts Options) chunkOutcome {
	out := chunkOutcome{ChunkEvent: ChunkEvent{Index: i, Start: span.Start, End: span.End}}

	ok, tokens, err := gate.Accepts(span.Text, p.counter)
	out.Tokens = tokens
	if err != nil {
		out.Outcome = OutcomeFailed
		out.Err = &ChunkError{Index: i, Err: err}
		return out
	}
	if !ok {
		out.Outcome = OutcomeSkipped
		return out
	}

	callCtx := ctx
	if opts.ChunkTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.ChunkTimeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := p.oracle.Summarize(callCtx, span.Text, opts.SummaryMaxLength, opts.SummaryMinLength)
	out.Duration = time.Since(start)
	if err != nil {
		out.Outcome = OutcomeFailed
		out.Err = &ChunkError{Index: i, Err: err}
		return out
	}

	out.Outcome = OutcomeSummarized
	out.partial = summary
	return out
}
