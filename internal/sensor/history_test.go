package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestHistoryAppendAndOrder(t *testing.T) {
	h := NewHistory(time.Hour, 100)

	require.True(t, h.Append(t0, 5))
	require.True(t, h.Append(t0.Add(2*time.Second), 3))
	require.True(t, h.Append(t0.Add(4*time.Second), 8))

	entries := h.Entries()
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].When.Before(entries[i-1].When))
	}
}

func TestHistoryRejectsOutOfOrder(t *testing.T) {
	h := NewHistory(time.Hour, 100)
	require.True(t, h.Append(t0.Add(10*time.Second), 1))
	assert.False(t, h.Append(t0, 2))
	assert.Equal(t, 1, h.Len())
}

func TestHistoryDedupIdenticalValueWithinASecond(t *testing.T) {
	h := NewHistory(time.Hour, 100)
	require.True(t, h.Append(t0, 7.5))
	assert.False(t, h.Append(t0.Add(300*time.Millisecond), 7.5))
	assert.True(t, h.Append(t0.Add(400*time.Millisecond), 7.6), "changed value always lands")
	assert.True(t, h.Append(t0.Add(2*time.Second), 7.6), "same value after the window lands")
	assert.Equal(t, 3, h.Len())
}

func TestHistoryCapacityBound(t *testing.T) {
	h := NewHistory(time.Hour, 5)
	for i := 0; i < 20; i++ {
		h.Append(t0.Add(time.Duration(i)*2*time.Second), float64(i))
	}
	entries := h.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, 15.0, entries[0].Value, "oldest evicted first")
	assert.Equal(t, 19.0, entries[4].Value)
}

func TestHistoryRetentionBound(t *testing.T) {
	h := NewHistory(time.Minute, 1000)
	h.Append(t0, 1)
	h.Append(t0.Add(30*time.Second), 2)
	h.Append(t0.Add(90*time.Second), 3)

	entries := h.Entries()
	require.Len(t, entries, 2, "first sample aged out of the window")
	assert.Equal(t, 2.0, entries[0].Value)
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory(time.Hour, 100)
	h.Append(t0, 1)
	h.Append(t0.Add(2*time.Second), 2)
	h.Reset()
	assert.Zero(t, h.Len())
	assert.Nil(t, h.Entries())
}

func TestStats(t *testing.T) {
	h := NewHistory(time.Hour, 100)
	h.Append(t0, 5)
	h.Append(t0.Add(2*time.Second), 3)
	h.Append(t0.Add(4*time.Second), 8)

	st := h.Stats()
	require.True(t, st.Ok)
	assert.Equal(t, 3.0, st.Min)
	assert.Equal(t, 8.0, st.Max)
	assert.InDelta(t, 5.333333, st.Avg, 1e-5)
	assert.Equal(t, 3, st.Count)
}

func TestStatsEmpty(t *testing.T) {
	var h *History
	st := h.Stats()
	assert.False(t, st.Ok)
	for _, name := range []string{"min", "max", "avg"} {
		_, ok := st.Stat(name)
		assert.False(t, ok)
	}
}
