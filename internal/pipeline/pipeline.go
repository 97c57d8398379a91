package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pelorus/internal/arbiter"
	"pelorus/internal/feed"
	"pelorus/internal/nmea"
	"pelorus/internal/sensor"
)

// Config tunes the pipeline.
type Config struct {
	// StaleAfter is the shared freshness threshold for arbitration and
	// display. Zero means the 10 s default.
	StaleAfter time.Duration
	// TickInterval drives the periodic staleness re-check. Zero means
	// 1 s.
	TickInterval time.Duration
	// ClearHistoryOnSwitch resets trend history when the arbiter moves a
	// lock. Sources sharing a mnemonic can have incompatible reference
	// points, so their samples must not mix in one trend.
	ClearHistoryOnSwitch bool
	// Priorities maps logical metrics to ordered source candidates.
	Priorities map[string][]arbiter.Candidate
}

// Pipeline is the synchronous ingest path: validate, decode, store,
// arbitrate, assemble, notify. One sentence is processed to completion
// before the next; Run owns the only goroutine that mutates the store.
type Pipeline struct {
	cfg   Config
	store *sensor.Store
	arb   *arbiter.Arbiter
	asm   *Assembler
	bus   *Bus
	met   *Metrics
	log   *zap.Logger

	// affects maps a sensor path to the logical metrics it feeds, so an
	// update re-arbitrates only what it can change.
	affects map[sensor.Path][]string
}

func New(cfg Config, store *sensor.Store, asm *Assembler, met *Metrics, log *zap.Logger) *Pipeline {
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = arbiter.DefaultStaleAfter
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	affects := make(map[sensor.Path][]string)
	for name, candidates := range cfg.Priorities {
		for _, c := range candidates {
			affects[c.Path()] = append(affects[c.Path()], name)
		}
	}

	bus := NewBus()
	bus.OnChange(func(n int) { met.Subscribers.Set(float64(n)) })

	return &Pipeline{
		cfg:   cfg,
		store: store,
		arb: arbiter.New(arbiter.Config{
			StaleAfter: cfg.StaleAfter,
			Priorities: cfg.Priorities,
		}, store, log),
		asm:     asm,
		bus:     bus,
		met:     met,
		log:     log,
		affects: affects,
	}
}

// Subscribe registers a handler for one exact metric path (sensor path
// like battery.0.voltage, or a logical metric name like depth).
func (p *Pipeline) Subscribe(path string, h Handler) *Subscription {
	return p.bus.Subscribe(path, h)
}

// Tap registers a firehose handler for every published MetricValue.
func (p *Pipeline) Tap(h Handler) *Subscription {
	return p.bus.Tap(h)
}

// ProcessLine runs one raw sentence through the whole pipeline. It never
// returns an error: failures are counted and the sentence is dropped.
func (p *Pipeline) ProcessLine(now time.Time, line string) {
	p.met.SentencesTotal.Inc()

	sent, res := nmea.Parse(line, now)
	if !res.OK {
		for _, kind := range res.Errors {
			p.met.SentencesRejected.WithLabelValues(string(kind)).Inc()
		}
		p.log.Debug("sentence rejected", zap.String("line", line), zap.Any("errors", res.Errors))
		return
	}

	fields := nmea.Decode(sent)
	if len(fields) == 0 {
		p.met.SentencesRejected.WithLabelValues("decode-failure").Inc()
		return
	}

	applied := p.store.UpdateMetrics(now, fields)
	p.met.FieldsAccepted.Add(float64(len(applied)))

	// Exactly one recompute per accepted field update.
	seen := make(map[string]bool, 2)
	for _, f := range applied {
		mv := p.asm.MetricValue(f.Path(), now)
		p.met.Notifications.Add(float64(p.bus.Publish(mv)))

		for _, name := range p.affects[f.Path()] {
			if !seen[name] {
				seen[name] = true
				p.republishLogical(name, now)
			}
		}
	}
}

// republishLogical re-arbitrates one logical metric and publishes its
// current value (or "no data").
func (p *Pipeline) republishLogical(name string, now time.Time) {
	sel, sw, ok := p.arb.Select(name, now)
	if sw != nil {
		p.handleSwitch(*sw)
	}

	var mv MetricValue
	if ok {
		src := sel.Source.Path()
		mv = p.asm.LogicalMetricValue(name, src, sensor.Sample{Value: sel.Value, When: sel.At})
	} else {
		mv = UnavailableMetricValue(name)
	}
	p.met.Notifications.Add(float64(p.bus.Publish(mv)))
}

func (p *Pipeline) handleSwitch(sw arbiter.Switch) {
	p.met.SourceSwitches.Inc()
	if !p.cfg.ClearHistoryOnSwitch {
		return
	}
	// Clearing applies to transitions between sources, not the first lock:
	// both ends carry trend data tied to the old reference point.
	if sw.From == nil {
		return
	}
	p.store.ResetHistory(sw.From.ID)
	if sw.To != nil {
		p.store.ResetHistory(sw.To.ID)
	}
}

// Tick re-checks staleness across all logical metrics. Driven by Run's
// ticker; exposed for tests.
func (p *Pipeline) Tick(now time.Time) {
	for _, sw := range p.arb.Tick(now) {
		p.handleSwitch(sw)
		p.republishLogical(sw.Metric, now)
	}
}

// GetMetric is the total read path: any path string yields a MetricValue,
// with "---" semantics for unknown, missing or stale data. Reads peek at
// arbitration and never move a lock; only updates and ticks commit
// transitions, so the switch side effects (history reset, counters,
// republish) cannot be skipped by a well-timed read.
func (p *Pipeline) GetMetric(now time.Time, path string) MetricValue {
	if _, ok := p.cfg.Priorities[path]; ok {
		sel, ok := p.arb.Peek(path, now)
		if !ok {
			return UnavailableMetricValue(path)
		}
		return p.asm.LogicalMetricValue(path, sel.Source.Path(), sensor.Sample{Value: sel.Value, When: sel.At})
	}

	sp, err := sensor.ParsePath(path)
	if err != nil {
		return MetricValue{Path: path, Formatted: Unavailable, AlarmName: "normal"}
	}
	return p.asm.MetricValue(sp, now)
}

// Snapshot lists the current MetricValue of every known sensor metric
// plus all logical metrics. Read-only; used by the web API.
func (p *Pipeline) Snapshot(now time.Time) []MetricValue {
	var out []MetricValue
	for _, name := range p.arb.Metrics() {
		out = append(out, p.GetMetric(now, name))
	}
	for _, id := range p.store.Instances() {
		for _, key := range p.store.Keys(id) {
			sp := sensor.Path{Type: id.Type, Instance: id.Instance, Key: key}
			out = append(out, p.asm.MetricValue(sp, now))
		}
	}
	return out
}

// Run consumes lines until ctx is done, interleaving the staleness
// ticker. All store mutation happens on this goroutine.
func (p *Pipeline) Run(ctx context.Context, lines <-chan feed.Line) error {
	ticker := time.NewTicker(p.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l := <-lines:
			when := l.When
			if when.IsZero() {
				when = time.Now().UTC()
			}
			p.ProcessLine(when, l.Text)
		case now := <-ticker.C:
			p.Tick(now.UTC())
		}
	}
}
