// Package arbiter chooses, per logical metric, which physical source is
// authoritative.
//
// Each logical metric runs a small state machine: Unlocked, or Locked to
// one candidate. Selection is sticky: a locked source keeps the lock for
// as long as it stays valid, so two sources reporting at different rates
// never cause the display to flicker between them. Transitions are driven
// only by validity checks, never by external signals.
package arbiter

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"pelorus/internal/sensor"
)

// DefaultStaleAfter is the age past which a source stops being valid.
const DefaultStaleAfter = 10 * time.Second

// Candidate is one entry in a logical metric's priority list.
type Candidate struct {
	ID  sensor.ID
	Key string
}

func (c Candidate) Path() sensor.Path {
	return sensor.Path{Type: c.ID.Type, Instance: c.ID.Instance, Key: c.Key}
}

// Reader is the arbiter's view of the store: latest value plus timestamp
// for the freshness check.
type Reader interface {
	Latest(id sensor.ID, key string) (float64, time.Time, bool)
}

// Selection is the arbitrated output for one logical metric.
type Selection struct {
	Metric string
	Source Candidate
	Value  float64
	At     time.Time
}

// Switch reports a lock change on a logical metric. From or To is nil at
// the unlocked end of a transition.
type Switch struct {
	Metric string
	From   *Candidate
	To     *Candidate
}

// Config configures the arbiter.
type Config struct {
	// StaleAfter is the validity age threshold. Zero means
	// DefaultStaleAfter.
	StaleAfter time.Duration
	// Priorities maps each logical metric to its ordered candidate list,
	// most preferred first.
	Priorities map[string][]Candidate
}

type metricState struct {
	candidates []Candidate
	locked     int // index into candidates, -1 when unlocked
}

// Arbiter holds the per-metric lock state.
type Arbiter struct {
	mu sync.Mutex

	staleAfter time.Duration
	reader     Reader
	log        *zap.Logger
	metrics    map[string]*metricState
}

func New(cfg Config, reader Reader, log *zap.Logger) *Arbiter {
	if log == nil {
		log = zap.NewNop()
	}
	staleAfter := cfg.StaleAfter
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	metrics := make(map[string]*metricState, len(cfg.Priorities))
	for name, candidates := range cfg.Priorities {
		metrics[name] = &metricState{
			candidates: append([]Candidate(nil), candidates...),
			locked:     -1,
		}
	}

	return &Arbiter{
		staleAfter: staleAfter,
		reader:     reader,
		log:        log,
		metrics:    metrics,
	}
}

// Metrics lists the configured logical metric names in stable order.
func (a *Arbiter) Metrics() []string {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	out := make([]string, 0, len(a.metrics))
	for name := range a.metrics {
		out = append(out, name)
	}
	a.mu.Unlock()
	sort.Strings(out)
	return out
}

func (a *Arbiter) valid(c Candidate, now time.Time) (float64, time.Time, bool) {
	v, at, ok := a.reader.Latest(c.ID, c.Key)
	if !ok {
		return 0, time.Time{}, false
	}
	if now.Sub(at) >= a.staleAfter {
		return 0, time.Time{}, false
	}
	return v, at, true
}

// pickLocked runs the arbitration algorithm without changing state:
// keep a valid locked source (sticky), otherwise the first valid
// candidate in priority order. Caller holds mu.
func (a *Arbiter) pickLocked(metric string, st *metricState, now time.Time) (Selection, int, bool) {
	// Sticky: a valid locked source always wins, regardless of priority.
	if st.locked >= 0 {
		c := st.candidates[st.locked]
		if v, at, ok := a.valid(c, now); ok {
			return Selection{Metric: metric, Source: c, Value: v, At: at}, st.locked, true
		}
	}

	for i, c := range st.candidates {
		if v, at, ok := a.valid(c, now); ok {
			return Selection{Metric: metric, Source: c, Value: v, At: at}, i, true
		}
	}
	return Selection{}, -1, false
}

// Select arbitrates one logical metric and commits the resulting lock
// state. The returned Switch is non-nil when the lock changed.
func (a *Arbiter) Select(metric string, now time.Time) (Selection, *Switch, bool) {
	if a == nil {
		return Selection{}, nil, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.metrics[metric]
	if !ok {
		return Selection{}, nil, false
	}

	sel, idx, ok := a.pickLocked(metric, st, now)
	sw := a.lockLocked(metric, st, idx)
	return sel, sw, ok
}

// Peek arbitrates without committing: the lock does not move and no
// Switch is produced. Read paths use it so transitions happen only on
// updates and ticks, where the switch side effects run.
func (a *Arbiter) Peek(metric string, now time.Time) (Selection, bool) {
	if a == nil {
		return Selection{}, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.metrics[metric]
	if !ok {
		return Selection{}, false
	}
	sel, _, ok := a.pickLocked(metric, st, now)
	return sel, ok
}

// lockLocked moves the lock and builds the Switch event. Caller holds mu.
func (a *Arbiter) lockLocked(metric string, st *metricState, to int) *Switch {
	if st.locked == to {
		return nil
	}
	sw := &Switch{Metric: metric}
	if st.locked >= 0 {
		c := st.candidates[st.locked]
		sw.From = &c
	}
	if to >= 0 {
		c := st.candidates[to]
		sw.To = &c
	}
	st.locked = to

	from, toStr := "none", "none"
	if sw.From != nil {
		from = sw.From.Path().String()
	}
	if sw.To != nil {
		toStr = sw.To.Path().String()
	}
	a.log.Info("source switch", zap.String("metric", metric), zap.String("from", from), zap.String("to", toStr))
	return sw
}

// Tick re-runs selection for every logical metric and collects the lock
// changes. Driven by the pipeline's staleness timer.
func (a *Arbiter) Tick(now time.Time) []Switch {
	if a == nil {
		return nil
	}
	var switches []Switch
	for _, name := range a.Metrics() {
		if _, sw, _ := a.Select(name, now); sw != nil {
			switches = append(switches, *sw)
		}
	}
	return switches
}
