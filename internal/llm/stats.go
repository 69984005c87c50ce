package llm

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// CallOutcome classifies one summarizer call.
type CallOutcome string

const (
	CallOK    CallOutcome = "ok"
	CallEmpty CallOutcome = "empty" // The backend answered with no text.
	CallError CallOutcome = "error"
)

type call struct {
	at           time.Time
	latency      time.Duration
	outcome      CallOutcome
	inputChars   int
	summaryChars int
}

// StatsSnapshot aggregates the calls still inside the window.
type StatsSnapshot struct {
	Provider string `json:"provider,omitempty"`
	Calls    int    `json:"calls"`
	OK       int    `json:"ok"`
	Empty    int    `json:"empty"`
	Errors   int    `json:"errors"`

	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`

	// Compression is summary characters over input characters across
	// successful calls.
	Compression float64 `json:"compression"`
}

// LLMStats keeps a rolling window of summarizer calls for one provider.
// Every backend records into it and /api/stats/llm serves its Snapshot.
// A nil *LLMStats discards everything.
type LLMStats struct {
	provider string
	window   time.Duration

	mu    sync.Mutex
	calls []call
}

func NewLLMStats(provider string, window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{provider: provider, window: window}
}

// Observe records a call that started at start, summarized inputChars
// characters and returned summary or err.
func (s *LLMStats) Observe(start time.Time, inputChars int, summary string, err error) {
	if s == nil {
		return
	}
	c := call{
		at:         time.Now(),
		latency:    max(time.Since(start), 0),
		inputChars: inputChars,
	}
	switch {
	case errors.Is(err, ErrEmptyResponse):
		c.outcome = CallEmpty
	case err != nil:
		c.outcome = CallError
	default:
		c.outcome = CallOK
		c.summaryChars = len(summary)
	}
	s.add(c)
}

func (s *LLMStats) add(c call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(c.at)
	s.calls = append(s.calls, c)
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}

	s.mu.Lock()
	s.expireLocked(time.Now())
	calls := slices.Clone(s.calls)
	s.mu.Unlock()

	snap := StatsSnapshot{Provider: s.provider, Calls: len(calls)}
	if len(calls) == 0 {
		return snap
	}

	ms := make([]int64, len(calls))
	var total int64
	var in, out int
	for i, c := range calls {
		ms[i] = c.latency.Milliseconds()
		total += ms[i]
		switch c.outcome {
		case CallOK:
			snap.OK++
			in += c.inputChars
			out += c.summaryChars
		case CallEmpty:
			snap.Empty++
		case CallError:
			snap.Errors++
		}
	}
	slices.Sort(ms)

	snap.MinMs = ms[0]
	snap.MaxMs = ms[len(ms)-1]
	snap.AvgMs = float64(total) / float64(len(ms))
	snap.P50Ms = quantile(ms, 0.50)
	snap.P95Ms = quantile(ms, 0.95)
	snap.P99Ms = quantile(ms, 0.99)
	if in > 0 {
		snap.Compression = float64(out) / float64(in)
	}
	return snap
}

// expireLocked drops calls older than the window. Calls are appended in
// time order, so the expired ones form a prefix.
func (s *LLMStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.calls) && s.calls[i].at.Before(cutoff) {
		i++
	}
	s.calls = s.calls[i:]
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []int64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
