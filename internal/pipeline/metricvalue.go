// Package pipeline ties the validator, decoder, store, arbiter and
// presentation registry into the synchronous ingest path, and publishes
// immutable MetricValue snapshots to subscribers.
package pipeline

import (
	"time"

	"pelorus/internal/alarm"
)

// Unavailable is the display rendering for missing or stale data. The
// read contract is total: a metric read always yields a MetricValue,
// never an error.
const Unavailable = "---"

// MetricValue is the published, display-ready snapshot of one metric.
// Immutable once published.
type MetricValue struct {
	Path      string         `json:"path"`
	Mnemonic  string         `json:"mnemonic"`
	SIValue   float64        `json:"si_value"`
	Formatted string         `json:"formatted"`
	Unit      string         `json:"unit,omitempty"`
	Alarm     alarm.Severity `json:"-"`
	AlarmName string         `json:"alarm"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
	// Source names the backing sensor path for arbitrated logical
	// metrics.
	Source    string `json:"source,omitempty"`
	Available bool   `json:"available"`
}
