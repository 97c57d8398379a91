package pipeline

import (
	"strings"
	"time"

	"pelorus/internal/alarm"
	"pelorus/internal/presentation"
	"pelorus/internal/sensor"
)

// Assembler combines the store, the presentation registry and the alarm
// evaluator into display-ready MetricValues. It holds no mutable state of
// its own: the formatted value is always derived from the SI value and
// the currently selected presentation, never cached.
type Assembler struct {
	store      *sensor.Store
	reg        *presentation.Registry
	staleAfter time.Duration
}

func NewAssembler(store *sensor.Store, reg *presentation.Registry, staleAfter time.Duration) *Assembler {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Second
	}
	return &Assembler{store: store, reg: reg, staleAfter: staleAfter}
}

// MetricValue builds the snapshot for one sensor metric path. Missing and
// stale metrics yield an unavailable value, never an error.
func (a *Assembler) MetricValue(p sensor.Path, now time.Time) MetricValue {
	mv := MetricValue{
		Path:      p.String(),
		Mnemonic:  sensor.Mnemonic(p.Type, p.Key),
		Formatted: Unavailable,
		AlarmName: alarm.Normal.String(),
	}

	sample, ok := a.store.GetMetric(p.ID(), p.Key)
	if !ok {
		return mv
	}
	mv.Timestamp = sample.When

	// Session statistics never go stale; they summarize the session.
	_, _, isStat := sensor.SplitStatKey(p.Key)
	if !isStat && !sample.When.IsZero() && now.Sub(sample.When) >= a.staleAfter {
		return mv
	}

	return a.fill(mv, p, sample)
}

func (a *Assembler) fill(mv MetricValue, p sensor.Path, sample sensor.Sample) MetricValue {
	mv.Available = true
	mv.SIValue = sample.Value
	mv.Timestamp = sample.When

	pres := a.presentationFor(p)
	mv.Formatted = pres.Format(sample.Value)
	mv.Unit = pres.Symbol

	// Statistics are judged against the base key's threshold: a minimum
	// depth below the alarm bound is worth flagging.
	base, _, _ := sensor.SplitStatKey(p.Key)
	sev := alarm.Evaluate(sample.Value, a.store.ThresholdFor(p.ID(), base))
	mv.Alarm = sev
	mv.AlarmName = sev.String()
	return mv
}

func (a *Assembler) presentationFor(p sensor.Path) presentation.Presentation {
	if fs, ok := sensor.SchemaFor(p.Type, p.Key); ok {
		return a.reg.Selected(fs.Category)
	}
	return presentation.Presentation{}
}

// LogicalMetricValue builds the snapshot for an arbitrated logical
// metric from its selected source. name is the logical metric ("depth");
// the source path supplies mnemonic, category and thresholds.
func (a *Assembler) LogicalMetricValue(name string, source sensor.Path, sample sensor.Sample) MetricValue {
	mv := MetricValue{
		Path:      name,
		Mnemonic:  sensor.Mnemonic(source.Type, source.Key),
		Source:    source.String(),
		AlarmName: alarm.Normal.String(),
		Formatted: Unavailable,
	}
	return a.fill(mv, source, sample)
}

// UnavailableMetricValue is the "no data" snapshot for a logical metric.
func UnavailableMetricValue(name string) MetricValue {
	return MetricValue{
		Path:      name,
		Mnemonic:  strings.ToUpper(name),
		Formatted: Unavailable,
		AlarmName: alarm.Normal.String(),
	}
}
