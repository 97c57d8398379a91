package sensor

import "time"

// dedupWindow suppresses history entries that repeat the previous value
// within this interval. The latest-value slot still updates.
const dedupWindow = time.Second

// HistoryEntry is one retained sample.
type HistoryEntry struct {
	Value float64
	When  time.Time
}

// History is a time- and count-bounded sample buffer for one metric.
// Entries are kept in non-decreasing timestamp order; whichever bound is
// tighter (retention window or capacity) wins.
type History struct {
	retention time.Duration
	capacity  int
	entries   []HistoryEntry
}

func NewHistory(retention time.Duration, capacity int) *History {
	if retention <= 0 {
		retention = time.Hour
	}
	if capacity <= 0 {
		capacity = 1000
	}
	return &History{retention: retention, capacity: capacity}
}

// Append records a sample. Out-of-order timestamps and identical values
// repeated within dedupWindow are dropped. Reports whether the sample was
// retained.
func (h *History) Append(now time.Time, value float64) bool {
	if h == nil {
		return false
	}
	if n := len(h.entries); n > 0 {
		last := h.entries[n-1]
		if now.Before(last.When) {
			return false
		}
		if value == last.Value && now.Sub(last.When) < dedupWindow {
			return false
		}
	}
	h.entries = append(h.entries, HistoryEntry{Value: value, When: now})
	h.prune(now)
	return true
}

func (h *History) prune(now time.Time) {
	cutoff := now.Add(-h.retention)
	drop := 0
	for drop < len(h.entries) && h.entries[drop].When.Before(cutoff) {
		drop++
	}
	if over := len(h.entries) - drop - h.capacity; over > 0 {
		drop += over
	}
	if drop > 0 {
		h.entries = append(h.entries[:0], h.entries[drop:]...)
	}
}

// Reset discards all retained samples. Used when the arbitrator switches
// sources: readings with different physical reference points must not mix
// in one trend.
func (h *History) Reset() {
	if h == nil {
		return
	}
	h.entries = h.entries[:0]
}

// Entries returns a copy of the retained samples, oldest first.
func (h *History) Entries() []HistoryEntry {
	if h == nil || len(h.entries) == 0 {
		return nil
	}
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}
