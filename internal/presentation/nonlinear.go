package presentation

import (
	"fmt"
	"math"
)

// metres/second to knots. Wind and speed SI values are carried in m/s.
const msToKnots = 1.9438444924406046

// fahrenheit converts the Celsius SI value to °F.
func fahrenheit() Presentation {
	return Presentation{
		ID:          "fahrenheit",
		Symbol:      "°F",
		Regions:     []Region{RegionUS},
		convert:     func(c float64) float64 { return c*9/5 + 32 },
		convertBack: func(f float64) float64 { return (f - 32) * 5 / 9 },
		format: func(c float64) string {
			return formatPattern(c*9/5+32, "xxx.x")
		},
	}
}

// beaufortScale maps the low knot bound of each force. Force N applies
// from knots >= beaufortScale[N] up to the next bound.
var beaufortScale = []struct {
	knots float64
	force int
	desc  string
}{
	{0, 0, "calm"},
	{1, 1, "light air"},
	{4, 2, "light breeze"},
	{7, 3, "gentle breeze"},
	{11, 4, "moderate breeze"},
	{17, 5, "fresh breeze"},
	{22, 6, "strong breeze"},
	{28, 7, "near gale"},
	{34, 8, "gale"},
	{41, 9, "strong gale"},
	{48, 10, "storm"},
	{56, 11, "violent storm"},
	{64, 12, "hurricane"},
}

// BeaufortForce maps a wind speed in m/s to the 0-12 Beaufort scale.
func BeaufortForce(ms float64) int {
	kt := ms * msToKnots
	force := 0
	for _, b := range beaufortScale {
		if kt >= b.knots {
			force = b.force
		}
	}
	return force
}

// BeaufortDescription is the textual description for a force, "" when out
// of range.
func BeaufortDescription(force int) string {
	for _, b := range beaufortScale {
		if b.force == force {
			return b.desc
		}
	}
	return ""
}

// beaufort renders wind speed on the discrete Beaufort scale. ConvertBack
// returns the low bound of the force's knot range in m/s; the mapping is
// lossy by construction.
func beaufort() Presentation {
	return Presentation{
		ID:      "beaufort",
		Symbol:  "Bft",
		convert: func(ms float64) float64 { return float64(BeaufortForce(ms)) },
		convertBack: func(force float64) float64 {
			f := int(force)
			for _, b := range beaufortScale {
				if b.force == f {
					return b.knots / msToKnots
				}
			}
			return 0
		},
		format: func(ms float64) string {
			f := BeaufortForce(ms)
			return fmt.Sprintf("%d (%s)", f, BeaufortDescription(f))
		},
	}
}

// CoordinateAxis selects the hemisphere suffix pair for coordinate
// formatting.
type CoordinateAxis int

const (
	AxisLatitude  CoordinateAxis = iota // N/S
	AxisLongitude                       // E/W
)

// CoordinateStyle selects among the supported coordinate renderings.
type CoordinateStyle string

const (
	StyleDecimalDegrees       CoordinateStyle = "dd"
	StyleDegreesDecimalMinute CoordinateStyle = "ddm"
	StyleDegreesMinuteSecond  CoordinateStyle = "dms"
)

// FormatCoordinate renders a signed decimal-degree value in the given
// style with the hemisphere suffix for the axis.
func FormatCoordinate(deg float64, axis CoordinateAxis, style CoordinateStyle) string {
	hemi := "N"
	if axis == AxisLongitude {
		hemi = "E"
	}
	if deg < 0 {
		if axis == AxisLongitude {
			hemi = "W"
		} else {
			hemi = "S"
		}
		deg = -deg
	}

	switch style {
	case StyleDegreesDecimalMinute:
		d := math.Floor(deg)
		m := (deg - d) * 60
		return fmt.Sprintf("%d°%06.3f'%s", int(d), m, hemi)
	case StyleDegreesMinuteSecond:
		d := math.Floor(deg)
		rem := (deg - d) * 60
		m := math.Floor(rem)
		s := (rem - m) * 60
		return fmt.Sprintf("%d°%02d'%04.1f\"%s", int(d), int(m), s, hemi)
	default:
		return fmt.Sprintf("%.5f°%s", deg, hemi)
	}
}

// coordinate builds a Presentation for one coordinate style. Convert and
// ConvertBack are identity (the SI value is already decimal degrees);
// Format renders with a latitude hemisphere. Display layers rendering
// longitude should call FormatCoordinate directly.
func coordinate(style CoordinateStyle, def bool) Presentation {
	return Presentation{
		ID:      string(style),
		Symbol:  "°",
		Default: def,
		format: func(deg float64) string {
			return FormatCoordinate(deg, AxisLatitude, style)
		},
	}
}
