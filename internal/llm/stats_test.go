package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCall(ms int64) call {
	return call{at: time.Now(), latency: time.Duration(ms) * time.Millisecond, outcome: CallOK}
}

func TestLLMStats_SnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats("openai", time.Hour)
	for _, ms := range []int64{500, 100, 400, 200, 300} {
		stats.add(okCall(ms))
	}

	snap := stats.Snapshot()
	require.Equal(t, 5, snap.Calls)
	assert.Equal(t, "openai", snap.Provider)
	assert.Equal(t, int64(100), snap.MinMs)
	assert.Equal(t, int64(500), snap.MaxMs)
	assert.Equal(t, 300.0, snap.AvgMs)
	assert.Equal(t, 300.0, snap.P50Ms)
	assert.InDelta(t, 480.0, snap.P95Ms, 1e-9)
	assert.InDelta(t, 496.0, snap.P99Ms, 1e-9)
}

func TestLLMStats_OutcomesAndCompression(t *testing.T) {
	stats := NewLLMStats("anthropic", time.Hour)
	start := time.Now()
	stats.Observe(start, 1000, string(make([]byte, 250)), nil)
	stats.Observe(start, 1000, string(make([]byte, 150)), nil)
	stats.Observe(start, 800, "", ErrEmptyResponse)
	stats.Observe(start, 800, "", &APIError{Provider: "anthropic", StatusCode: 529})
	stats.Observe(start, 800, "", errors.New("dial tcp: refused"))

	snap := stats.Snapshot()
	assert.Equal(t, 5, snap.Calls)
	assert.Equal(t, 2, snap.OK)
	assert.Equal(t, 1, snap.Empty)
	assert.Equal(t, 2, snap.Errors)
	assert.InDelta(t, 0.2, snap.Compression, 1e-9, "failed calls do not count toward compression")
}

func TestLLMStats_ExpiresOldCalls(t *testing.T) {
	stats := NewLLMStats("ollama", time.Minute)
	old := okCall(100)
	old.at = time.Now().Add(-2 * time.Minute)
	stats.add(old)

	snap := stats.Snapshot()
	assert.Zero(t, snap.Calls)
	assert.Equal(t, "ollama", snap.Provider)

	stats.add(okCall(200))
	snap = stats.Snapshot()
	require.Equal(t, 1, snap.Calls)
	assert.Equal(t, int64(200), snap.MinMs)
	assert.Equal(t, int64(200), snap.MaxMs)
	assert.Equal(t, 200.0, snap.P99Ms)
}

func TestLLMStats_DefaultWindow(t *testing.T) {
	assert.Equal(t, time.Hour, NewLLMStats("lead", 0).window)
}

func TestLLMStats_NilIsNoop(t *testing.T) {
	var stats *LLMStats
	stats.Observe(time.Now(), 10, "x", nil)
	assert.Equal(t, StatsSnapshot{}, stats.Snapshot())
}
