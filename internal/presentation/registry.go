package presentation

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the static presentation table plus the per-category
// selection. The table itself is immutable; only the selection changes.
type Registry struct {
	mu       sync.RWMutex
	entries  map[Category][]Presentation
	selected map[Category]string
	region   Region
}

// NewRegistry builds the built-in presentation table with every category's
// default selected.
func NewRegistry() *Registry {
	r := &Registry{
		entries:  builtins(),
		selected: make(map[Category]string),
	}
	for cat, list := range r.entries {
		for _, p := range list {
			if p.Default {
				r.selected[cat] = p.ID
				break
			}
		}
	}
	return r
}

// SetRegion narrows the selectable sets. It does not touch current
// selections; a selection outside the region stays valid.
func (r *Registry) SetRegion(region Region) {
	r.mu.Lock()
	r.region = region
	r.mu.Unlock()
}

// Region returns the active region filter.
func (r *Registry) Region() Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.region
}

// Categories lists the table's categories in stable order.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	out := make([]Category, 0, len(r.entries))
	for cat := range r.entries {
		out = append(out, cat)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Presentations lists the entries selectable for a category in the
// registry's region.
func (r *Registry) Presentations(cat Category) []Presentation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Presentation
	for _, p := range r.entries[cat] {
		if p.InRegion(r.region) {
			out = append(out, p)
		}
	}
	return out
}

// Lookup finds an entry by category and id, ignoring the region filter.
func (r *Registry) Lookup(cat Category, id string) (Presentation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.entries[cat] {
		if p.ID == id {
			return p, true
		}
	}
	return Presentation{}, false
}

// Select switches the active presentation for a category.
func (r *Registry) Select(cat Category, id string) error {
	if _, ok := r.Lookup(cat, id); !ok {
		return fmt.Errorf("presentation: unknown id %q for category %q", id, cat)
	}
	r.mu.Lock()
	r.selected[cat] = id
	r.mu.Unlock()
	return nil
}

// Selected returns the active presentation for a category, falling back to
// an identity presentation for an unknown category so callers stay total.
func (r *Registry) Selected(cat Category) Presentation {
	r.mu.RLock()
	id := r.selected[cat]
	r.mu.RUnlock()
	if p, ok := r.Lookup(cat, id); ok {
		return p
	}
	return Presentation{ID: "identity"}
}

// builtins is the full presentation table. SI base units: metres, m/s,
// °C, pascals, volts, amperes, litres, seconds, decimal degrees, Ah, L/h,
// Hz, watts, rev/min, percent.
func builtins() map[Category][]Presentation {
	withDefault := func(p Presentation) Presentation {
		p.Default = true
		return p
	}

	return map[Category][]Presentation{
		Depth: {
			withDefault(linear("meters", "m", 1, "xxx.x")),
			linear("feet", "ft", 3.280839895013123, "xxx.x", RegionUS),
			linear("fathoms", "fm", 0.5468066491688539, "xxx.x", RegionUK),
		},
		Speed: {
			withDefault(linear("knots", "kn", msToKnots, "xxx.x")),
			linear("meters-per-second", "m/s", 1, "xxx.x"),
			linear("kilometers-per-hour", "km/h", 3.6, "xxx.x", RegionEU),
			linear("miles-per-hour", "mph", 2.2369362920544025, "xxx.x", RegionUS),
		},
		Wind: {
			withDefault(linear("knots", "kn", msToKnots, "xxx.x")),
			linear("meters-per-second", "m/s", 1, "xxx.x", RegionEU, RegionInternational),
			beaufort(),
		},
		Temperature: {
			withDefault(linear("celsius", "°C", 1, "xxx.x")),
			fahrenheit(),
		},
		Pressure: {
			withDefault(linear("hectopascal", "hPa", 0.01, "xxx")),
			linear("millibar", "mbar", 0.01, "xxx", RegionEU, RegionUK),
			linear("inches-of-mercury", "inHg", 0.0002952998597817832, "xx.xx", RegionUS),
			linear("kilopascal", "kPa", 0.001, "xxx.x"),
		},
		Angle: {
			withDefault(linear("degrees", "°", 1, "xxx")),
		},
		Coordinates: {
			coordinate(StyleDegreesDecimalMinute, true),
			coordinate(StyleDecimalDegrees, false),
			coordinate(StyleDegreesMinuteSecond, false),
		},
		Voltage: {
			withDefault(linear("volts", "V", 1, "xx.xx")),
		},
		Current: {
			withDefault(linear("amperes", "A", 1, "xxx.x")),
		},
		Volume: {
			withDefault(linear("liters", "L", 1, "xxx")),
			linear("us-gallons", "gal", 0.2641720523581484, "xxx.x", RegionUS),
			linear("uk-gallons", "gal", 0.21996924829908776, "xxx.x", RegionUK),
		},
		Time: {
			withDefault(linear("seconds", "s", 1, "xxx")),
			linear("minutes", "min", 1.0/60.0, "xxx.x"),
			linear("hours", "h", 1.0/3600.0, "xxx.x"),
		},
		Distance: {
			withDefault(linear("nautical-miles", "NM", 0.0005399568034557235, "xxx.x")),
			linear("kilometers", "km", 0.001, "xxx.x", RegionEU),
			linear("miles", "mi", 0.000621371192237334, "xxx.x", RegionUS),
		},
		Capacity: {
			withDefault(linear("amp-hours", "Ah", 1, "xxx")),
		},
		FlowRate: {
			withDefault(linear("liters-per-hour", "L/h", 1, "xx.x")),
			linear("us-gallons-per-hour", "gph", 0.2641720523581484, "xx.x", RegionUS),
		},
		Frequency: {
			withDefault(linear("hertz", "Hz", 1, "xxx")),
		},
		Power: {
			withDefault(linear("watts", "W", 1, "xxx")),
			linear("kilowatts", "kW", 0.001, "xx.xx"),
		},
		RPM: {
			withDefault(linear("rpm", "rpm", 1, "xxx")),
		},
		Percentage: {
			withDefault(linear("percent", "%", 1, "xxx%")),
		},
	}
}
