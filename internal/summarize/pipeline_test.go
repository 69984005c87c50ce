package summarize

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/binkread/internal/textclean"
)

// fixedCounter returns counts[text] or def.
type fixedCounter struct {
	counts map[string]int
	def    int
	err    error
}

func (f fixedCounter) CountTokens(text string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if n, ok := f.counts[text]; ok {
		return n, nil
	}
	return f.def, nil
}

type recordingSummarizer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (r *recordingSummarizer) Summarize(_ context.Context, text string, maxLength, minLength int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, text)
	if err := r.fail[text]; err != nil {
		return "", err
	}
	return "S(" + text + ")", nil
}

type eventLog struct {
	events []ChunkEvent
}

func (e *eventLog) ObserveChunk(ev ChunkEvent) { e.events = append(e.events, ev) }

func smallOpts() Options {
	o := DefaultOptions()
	o.ChunkSize = 10
	return o
}

func TestProcess_EmptyInput(t *testing.T) {
	p := New(textclean.New(nil), fixedCounter{def: 1}, &recordingSummarizer{}, nil)

	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := p.Process(context.Background(), in, DefaultOptions())
		assert.ErrorIs(t, err, ErrEmptyInput, "input %q", in)
	}

	// Markup only: non-empty raw, empty after cleaning.
	_, err := p.Process(context.Background(), "<br><p></p>", DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestProcess_AllChunksRejected(t *testing.T) {
	oracle := &recordingSummarizer{}
	p := New(textclean.New(nil), fixedCounter{def: 5000}, oracle, nil)

	_, err := p.Process(context.Background(), "alpha beta gamma delta", smallOpts())
	assert.ErrorIs(t, err, ErrEmptySummary)
	assert.Empty(t, oracle.calls, "rejected chunks must never reach the oracle")
}

func TestProcess_GateBoundary(t *testing.T) {
	oracle := &recordingSummarizer{}
	counter := fixedCounter{counts: map[string]int{"first": 1024, "second": 1025}}
	p := New(textclean.New(nil), counter, oracle, nil)

	opts := DefaultOptions()
	opts.ChunkSize = 6
	res, err := p.Run(context.Background(), "first second", opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"first"}, oracle.calls)
	assert.Equal(t, "S(first)", res.Summary)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Summarized)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, OutcomeSkipped, res.Events[1].Outcome)
	assert.Equal(t, 1025, res.Events[1].Tokens)
}

func TestProcess_FailureIsolation(t *testing.T) {
	oracle := &recordingSummarizer{fail: map[string]error{"bbb": errors.New("boom")}}
	p := New(textclean.New(nil), fixedCounter{def: 1}, oracle, nil)

	opts := DefaultOptions()
	opts.ChunkSize = 4
	res, err := p.Run(context.Background(), "aaa bbb ccc", opts)
	require.NoError(t, err)

	assert.Equal(t, "S(aaa)\n\nS(ccc)", res.Summary)
	assert.Equal(t, 1, res.Failed)

	var ce *ChunkError
	require.ErrorAs(t, res.Events[1].Err, &ce)
	assert.Equal(t, 1, ce.Index)
	assert.Equal(t, "chunk 2: boom", ce.Error())
}

func TestProcess_AllFail(t *testing.T) {
	p := New(textclean.New(nil), fixedCounter{def: 1}, SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		return "", errors.New("down")
	}), nil)

	_, err := p.Process(context.Background(), "one two", smallOpts())
	assert.ErrorIs(t, err, ErrEmptySummary)
}

func TestProcess_CounterErrorIsChunkFailure(t *testing.T) {
	oracle := &recordingSummarizer{}
	p := New(textclean.New(nil), fixedCounter{err: errors.New("no encoding")}, oracle, nil)

	res, err := p.Run(context.Background(), "hello", DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptySummary)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Failed)
	assert.Empty(t, oracle.calls)
}

func TestProcess_PreservesOrder(t *testing.T) {
	oracle := &recordingSummarizer{}
	p := New(textclean.New(nil), fixedCounter{def: 1}, oracle, nil)

	opts := DefaultOptions()
	opts.ChunkSize = 3
	got, err := p.Process(context.Background(), "one two six ten", opts)
	require.NoError(t, err)
	assert.Equal(t, "S(one)\n\nS(two)\n\nS(six)\n\nS(ten)", got)
}

func TestProcess_PassesLengths(t *testing.T) {
	var gotMax, gotMin int
	p := New(textclean.New(nil), fixedCounter{def: 1}, SummarizerFunc(func(_ context.Context, _ string, maxLength, minLength int) (string, error) {
		gotMax, gotMin = maxLength, minLength
		return "ok", nil
	}), nil)

	opts := DefaultOptions()
	opts.SummaryMaxLength = 42
	opts.SummaryMinLength = 7
	_, err := p.Process(context.Background(), "text", opts)
	require.NoError(t, err)
	assert.Equal(t, 42, gotMax)
	assert.Equal(t, 7, gotMin)
}

func TestProcess_TrimsJoinedSummary(t *testing.T) {
	p := New(textclean.New(nil), fixedCounter{def: 1}, SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		return "  padded  ", nil
	}), nil)

	got, err := p.Process(context.Background(), "text", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "padded", got)
}

func TestProcess_UsesCleaner(t *testing.T) {
	oracle := &recordingSummarizer{}
	p := New(textclean.New(nil), fixedCounter{def: 1}, oracle, nil)

	_, err := p.Process(context.Background(), "<b>helloWorld</b>", DefaultOptions())
	require.NoError(t, err)
	// Whole cleaned text fits in one window but is still cut at its last space.
	assert.Equal(t, []string{"hello", "World"}, oracle.calls)
}

func TestProcess_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := New(textclean.New(nil), fixedCounter{def: 1}, SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		calls++
		cancel()
		return "x", nil
	}), nil)

	opts := DefaultOptions()
	opts.ChunkSize = 3
	_, err := p.Process(ctx, "aaa bbb ccc", opts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestProcess_ChunkTimeout(t *testing.T) {
	p := New(textclean.New(nil), fixedCounter{def: 1}, SummarizerFunc(func(ctx context.Context, text string, _, _ int) (string, error) {
		if text == "slow" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return text, nil
	}), nil)

	opts := DefaultOptions()
	opts.ChunkSize = 4
	opts.ChunkTimeout = 20 * time.Millisecond
	res, err := p.Run(context.Background(), "slow fast", opts)
	require.NoError(t, err)
	assert.Equal(t, "fast", res.Summary)
	assert.ErrorIs(t, res.Events[0].Err, context.DeadlineExceeded)
}

func TestProcess_ObserverAndProgress(t *testing.T) {
	obs := &eventLog{}
	p := New(textclean.New(nil), fixedCounter{def: 1}, &recordingSummarizer{}, nil)
	p.SetObserver(obs)

	var totals []int
	opts := DefaultOptions()
	opts.ChunkSize = 3
	opts.Progress = func(_ ChunkEvent, total int) { totals = append(totals, total) }

	_, err := p.Process(context.Background(), "aaa bbb", opts)
	require.NoError(t, err)
	require.Len(t, obs.events, 2)
	assert.Equal(t, 0, obs.events[0].Index)
	assert.Equal(t, 4, obs.events[1].Start)
	assert.Equal(t, []int{2, 2}, totals)
}

func TestProcess_SerializesDocuments(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0
	var order []string // document of each oracle call, in call order
	oracle := SummarizerFunc(func(_ context.Context, text string, _, _ int) (string, error) {
		mu.Lock()
		active++
		peak = max(peak, active)
		order = append(order, text[len(text)-1:])
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return "ok", nil
	})
	p := New(textclean.New(nil), fixedCounter{def: 1}, oracle, nil)

	docs := []string{"a", "b", "c", "d"}
	var wg sync.WaitGroup
	for _, doc := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every word ends in the document letter, so every chunk does too.
			text := strings.Repeat("w"+doc+" ", 12)
			_, err := p.Process(context.Background(), text, smallOpts())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
	require.Len(t, order, 4*4, "12 words of 3 runes per doc at chunk size 10 make 4 chunks")

	// Each document's calls form one contiguous run.
	seen := map[string]bool{}
	for i, doc := range order {
		if i > 0 && order[i-1] == doc {
			continue
		}
		assert.False(t, seen[doc], "document %s interleaved: %v", doc, order)
		seen[doc] = true
	}
	assert.Len(t, seen, len(docs))
}

func TestOptions_Key(t *testing.T) {
	a := DefaultOptions()
	b := DefaultOptions()
	b.ChunkTimeout = time.Second
	assert.Equal(t, a.Key(), b.Key(), "timeout does not change output")

	b.SummaryMaxLength = 50
	assert.NotEqual(t, a.Key(), b.Key())

	assert.Equal(t, DefaultOptions().Key(), Options{SummaryMinLength: 100}.Key())
}
