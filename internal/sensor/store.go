package sensor

import (
	"math"
	"sort"
	"sync"
	"time"

	"pelorus/internal/alarm"
)

// StoreConfig bounds the per-metric history.
type StoreConfig struct {
	// Retention controls how long history samples are kept.
	Retention time.Duration
	// MaxEntries caps samples per metric. When exceeded, oldest go first.
	MaxEntries int
}

// Store is the single mutable resource of the pipeline: latest values and
// bounded history per (sensorType, instance). All mutation goes through
// UpdateMetrics; reads hand out copies, never references into the store.
type Store struct {
	mu sync.RWMutex

	cfg       StoreConfig
	instances map[ID]*instance
}

type instance struct {
	latest     map[string]Sample
	history    map[string]*History
	thresholds map[string]alarm.Threshold
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	return &Store{
		cfg:       cfg,
		instances: make(map[ID]*instance),
	}
}

func (s *Store) instanceLocked(id ID) *instance {
	inst, ok := s.instances[id]
	if !ok {
		inst = &instance{
			latest:     make(map[string]Sample),
			history:    make(map[string]*History),
			thresholds: make(map[string]alarm.Threshold),
		}
		s.instances[id] = inst
	}
	return inst
}

// UpdateMetrics applies decoded fields: overwrite latest, append to the
// bounded history. NaN and Inf values are dropped. Returns the fields
// actually applied, in input order.
func (s *Store) UpdateMetrics(now time.Time, fields []Field) []Field {
	if s == nil || len(fields) == 0 {
		return nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied := make([]Field, 0, len(fields))
	for _, f := range fields {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			continue
		}
		if f.When.IsZero() {
			f.When = now
		}
		inst := s.instanceLocked(f.ID())
		// A late-arriving older sample must not move the latest
		// timestamp backwards and flip a fresh metric stale.
		if cur, ok := inst.latest[f.Key]; ok && f.When.Before(cur.When) {
			continue
		}
		inst.latest[f.Key] = Sample{Value: f.Value, When: f.When}

		h, ok := inst.history[f.Key]
		if !ok {
			h = NewHistory(s.cfg.Retention, s.cfg.MaxEntries)
			inst.history[f.Key] = h
		}
		h.Append(f.When, f.Value)
		applied = append(applied, f)
	}
	return applied
}

// GetMetric returns the latest sample for a key, resolving virtual
// statistic keys (depth.max) from history. Unknown ids and keys are not
// errors; ok is false.
func (s *Store) GetMetric(id ID, key string) (Sample, bool) {
	if s == nil {
		return Sample{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, found := s.instances[id]
	if !found {
		return Sample{}, false
	}

	if base, stat, isStat := SplitStatKey(key); isStat {
		st := inst.history[base].Stats()
		v, ok := st.Stat(stat)
		if !ok {
			return Sample{}, false
		}
		when := time.Time{}
		if latest, ok := inst.latest[base]; ok {
			when = latest.When
		}
		return Sample{Value: v, When: when}, true
	}

	sample, ok := inst.latest[key]
	return sample, ok
}

// Latest is the arbiter's read path: value plus timestamp for freshness
// checks.
func (s *Store) Latest(id ID, key string) (float64, time.Time, bool) {
	sample, ok := s.GetMetric(id, key)
	if !ok {
		return 0, time.Time{}, false
	}
	return sample.Value, sample.When, true
}

// HistoryEntries returns a copy of one metric's retained history.
func (s *Store) HistoryEntries(id ID, key string) []HistoryEntry {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil
	}
	return inst.history[key].Entries()
}

// HistoryStats exposes the session statistics for one metric.
func (s *Store) HistoryStats(id ID, key string) Stats {
	if s == nil {
		return Stats{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return Stats{}
	}
	return inst.history[key].Stats()
}

// ResetHistory clears all retained history for one source. The latest
// values stay; only trend data resets.
func (s *Store) ResetHistory(id ID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return
	}
	for _, h := range inst.history {
		h.Reset()
	}
}

// SetThreshold installs a per-instance alarm threshold override.
func (s *Store) SetThreshold(id ID, key string, t alarm.Threshold) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instanceLocked(id).thresholds[key] = t
}

// ThresholdFor resolves the threshold for a metric: per-instance override
// first, then the reference defaults.
func (s *Store) ThresholdFor(id ID, key string) alarm.Threshold {
	if s == nil {
		return alarm.Threshold{}
	}
	s.mu.RLock()
	if inst, ok := s.instances[id]; ok {
		if t, ok := inst.thresholds[key]; ok {
			s.mu.RUnlock()
			return t
		}
	}
	s.mu.RUnlock()

	if t, ok := alarm.DefaultFor(string(id.Type), key); ok {
		return t
	}
	return alarm.Threshold{}
}

// AlarmState evaluates the current alarm severity for a metric. Missing
// metrics are Normal; absence is a freshness concern, not an alarm.
func (s *Store) AlarmState(id ID, key string) alarm.Severity {
	sample, ok := s.GetMetric(id, key)
	if !ok {
		return alarm.Normal
	}
	return alarm.Evaluate(sample.Value, s.ThresholdFor(id, key))
}

// Instances lists all known sources in stable order.
func (s *Store) Instances() []ID {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	out := make([]ID, 0, len(s.instances))
	for id := range s.instances {
		out = append(out, id)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Instance < out[j].Instance
	})
	return out
}

// Keys lists the metric keys known for one source, sorted.
func (s *Store) Keys(id ID) []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	inst, ok := s.instances[id]
	if !ok {
		s.mu.RUnlock()
		return nil
	}
	out := make([]string, 0, len(inst.latest))
	for k := range inst.latest {
		out = append(out, k)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}
