// Package presentation maps SI-based metric values to display units.
//
// Every category carries a closed set of Presentation entries. Linear
// entries are built from a factor and a digit pattern; non-linear entries
// (Fahrenheit, Beaufort, coordinate styles) supply their own transforms.
// Conversion and formatting are pure; nothing here caches across a
// presentation change.
package presentation

import (
	"fmt"
	"math"
	"strings"
)

// Category is the closed set of display data categories.
type Category string

const (
	Depth       Category = "depth"
	Speed       Category = "speed"
	Wind        Category = "wind"
	Temperature Category = "temperature"
	Pressure    Category = "pressure"
	Angle       Category = "angle"
	Coordinates Category = "coordinates"
	Voltage     Category = "voltage"
	Current     Category = "current"
	Volume      Category = "volume"
	Time        Category = "time"
	Distance    Category = "distance"
	Capacity    Category = "capacity"
	FlowRate    Category = "flowRate"
	Frequency   Category = "frequency"
	Power       Category = "power"
	RPM         Category = "rpm"
	Percentage  Category = "percentage"
)

// Region narrows the selectable presentation set. It never changes what a
// presentation computes.
type Region string

const (
	RegionEU            Region = "eu"
	RegionUS            Region = "us"
	RegionUK            Region = "uk"
	RegionInternational Region = "international"
)

// Presentation is one display-unit option for a category. Immutable.
type Presentation struct {
	ID      string
	Symbol  string
	Default bool

	// Regions is the set of regions the entry is offered in.
	// Empty means all regions.
	Regions []Region

	convert     func(si float64) float64
	convertBack func(display float64) float64
	format      func(si float64) string
}

// Convert maps an SI value to this presentation's display unit.
func (p Presentation) Convert(si float64) float64 {
	if p.convert == nil {
		return si
	}
	return p.convert(si)
}

// ConvertBack maps a display-unit value to SI. For every linear
// presentation ConvertBack(Convert(x)) == x within floating-point
// tolerance.
func (p Presentation) ConvertBack(display float64) float64 {
	if p.convertBack == nil {
		return display
	}
	return p.convertBack(display)
}

// Format renders an SI value as the display string for this presentation,
// without the unit symbol unless the pattern embeds one (percentage).
func (p Presentation) Format(si float64) string {
	if p.format == nil {
		return fmt.Sprintf("%g", si)
	}
	return p.format(si)
}

// InRegion reports whether the entry is offered in the given region.
func (p Presentation) InRegion(region Region) bool {
	if len(p.Regions) == 0 || region == "" {
		return true
	}
	for _, r := range p.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// linear builds a presentation whose display value is si*factor, formatted
// per the pattern.
func linear(id, symbol string, factor float64, pattern string, regions ...Region) Presentation {
	return Presentation{
		ID:          id,
		Symbol:      symbol,
		Regions:     regions,
		convert:     func(si float64) float64 { return si * factor },
		convertBack: func(d float64) float64 { return d / factor },
		format: func(si float64) string {
			return formatPattern(si*factor, pattern)
		},
	}
}

// formatPattern renders a display value per a digit pattern:
//
//	"xxx"    integer
//	"xxx.x"  one decimal
//	"xxx.xx" two decimals
//	"xxx%"   integer with a percent suffix
func formatPattern(display float64, pattern string) string {
	percent := strings.HasSuffix(pattern, "%")
	pattern = strings.TrimSuffix(pattern, "%")

	decimals := 0
	if dot := strings.IndexByte(pattern, '.'); dot != -1 {
		decimals = len(pattern) - dot - 1
	}

	// Avoid "-0" for tiny negatives.
	if display == 0 || math.Signbit(display) && math.Abs(display) < 0.5*math.Pow(10, -float64(decimals)) {
		display = 0
	}

	s := fmt.Sprintf("%.*f", decimals, display)
	if percent {
		s += "%"
	}
	return s
}
