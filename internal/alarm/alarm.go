// Package alarm maps metric values to discrete alarm severities.
//
// Evaluation is a pure function of the value and the configured threshold;
// there is no hysteresis and no hidden state. The same input always yields
// the same severity.
package alarm

// Severity is the evaluated alarm state, ordered from least to most
// severe.
type Severity int

const (
	Normal Severity = iota
	Warning
	Alarm
	Critical
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Alarm:
		return "alarm"
	case Critical:
		return "critical"
	default:
		return "normal"
	}
}

// Threshold holds the configured limits for one metric. All bounds are
// optional; a nil bound never triggers. Low bounds trigger when the value
// drops below them, high bounds when it rises above. Metrics where both
// directions are bad (battery voltage) set bounds on both sides.
type Threshold struct {
	LowWarning  *float64 `yaml:"low_warning"`
	LowAlarm    *float64 `yaml:"low_alarm"`
	LowCritical *float64 `yaml:"low_critical"`

	HighWarning  *float64 `yaml:"high_warning"`
	HighAlarm    *float64 `yaml:"high_alarm"`
	HighCritical *float64 `yaml:"high_critical"`
}

// IsZero reports whether no bound is configured.
func (t Threshold) IsZero() bool {
	return t.LowWarning == nil && t.LowAlarm == nil && t.LowCritical == nil &&
		t.HighWarning == nil && t.HighAlarm == nil && t.HighCritical == nil
}

// Evaluate returns the severity for an SI value against a threshold.
// The most severe matching bound wins.
func Evaluate(value float64, t Threshold) Severity {
	worst := Normal

	check := func(sev Severity, hit bool) {
		if hit && sev > worst {
			worst = sev
		}
	}

	check(Warning, t.LowWarning != nil && value < *t.LowWarning)
	check(Alarm, t.LowAlarm != nil && value < *t.LowAlarm)
	check(Critical, t.LowCritical != nil && value < *t.LowCritical)

	check(Warning, t.HighWarning != nil && value > *t.HighWarning)
	check(Alarm, t.HighAlarm != nil && value > *t.HighAlarm)
	check(Critical, t.HighCritical != nil && value > *t.HighCritical)

	return worst
}

func ptr(v float64) *float64 { return &v }

// Reference thresholds for the common marine metrics. Tank levels are in
// percent, depth in metres, voltage in volts.
var (
	// FuelLevel: below 25% warn, below 10% critical.
	FuelLevel = Threshold{LowWarning: ptr(25), LowCritical: ptr(10)}

	// FreshWaterLevel: below 15% warn.
	FreshWaterLevel = Threshold{LowWarning: ptr(15)}

	// WasteWaterLevel: above 75% warn, above 90% critical.
	WasteWaterLevel = Threshold{HighWarning: ptr(75), HighCritical: ptr(90)}

	// ShallowDepth: below 3 m warn, below 1.5 m alarm.
	ShallowDepth = Threshold{LowWarning: ptr(3.0), LowAlarm: ptr(1.5)}

	// BatteryVoltage: both directions are bad for a 12 V bank.
	BatteryVoltage = Threshold{LowWarning: ptr(12.0), LowAlarm: ptr(11.5), HighWarning: ptr(14.8), HighAlarm: ptr(15.5)}
)

// DefaultFor returns the reference threshold for a (sensorType, metricKey)
// pair, when one exists. Tank defaults are keyed by the tank kind carried
// in the metric key prefix ("fuel.level").
func DefaultFor(sensorType, key string) (Threshold, bool) {
	switch sensorType + "." + key {
	case "depth.depth":
		return ShallowDepth, true
	case "battery.voltage":
		return BatteryVoltage, true
	case "tank.fuel.level":
		return FuelLevel, true
	case "tank.freshWater.level":
		return FreshWaterLevel, true
	case "tank.wasteWater.level":
		return WasteWaterLevel, true
	}
	return Threshold{}, false
}
