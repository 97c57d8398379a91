package nmea

import (
	"time"

	"pelorus/internal/sensor"
)

// Unit conversions to the pipeline's SI base units (m, m/s, °C, Pa, V, A,
// decimal degrees).
const (
	knotsToMS = 0.5144444444444445
	kmhToMS   = 1.0 / 3.6
	feetToM   = 0.3048
	barsToPa  = 100000.0
)

// Depth sources keep fixed instances so the arbitration priority list
// (DPT over DBT over DBK) stays stable across sessions.
const (
	depthInstanceDPT = 0
	depthInstanceDBT = 1
	depthInstanceDBK = 2
)

// Decode turns a validated sentence into SI field tuples for the store.
// Unknown sentence types and unparsable fields decode to an empty set,
// never an error; the pipeline counts, the display never sees it.
func Decode(s Sentence) []sensor.Field {
	switch s.Type {
	case "DPT":
		return decodeDPT(s)
	case "DBT":
		return decodeDepthBelow(s, depthInstanceDBT)
	case "DBK":
		return decodeDepthBelow(s, depthInstanceDBK)
	case "MTW":
		return decodeMTW(s)
	case "VHW":
		return decodeVHW(s)
	case "MWV":
		return decodeMWV(s)
	case "VTG":
		return decodeVTG(s)
	case "RMC":
		return decodeRMC(s)
	case "XDR":
		return decodeXDR(s)
	default:
		return nil
	}
}

func field(t sensor.Type, instance int, key string, value float64, when time.Time) sensor.Field {
	return sensor.Field{Type: t, Instance: instance, Key: key, Value: value, When: when}
}

// DPT: depth below transducer (m), transducer offset (m, positive = to
// waterline).
func decodeDPT(s Sentence) []sensor.Field {
	var out []sensor.Field
	if depth, ok := s.FloatField(1); ok {
		out = append(out, field(sensor.Depth, depthInstanceDPT, "depth", depth, s.ReceivedAt))
	}
	if offset, ok := s.FloatField(2); ok {
		out = append(out, field(sensor.Depth, depthInstanceDPT, "offset", offset, s.ReceivedAt))
	}
	return out
}

// DBT/DBK: depth in feet, metres, fathoms. The metres field is
// authoritative; feet is the fallback.
func decodeDepthBelow(s Sentence, instance int) []sensor.Field {
	if m, ok := s.FloatField(3); ok && s.Field(4) == "M" {
		return []sensor.Field{field(sensor.Depth, instance, "depth", m, s.ReceivedAt)}
	}
	if ft, ok := s.FloatField(1); ok {
		return []sensor.Field{field(sensor.Depth, instance, "depth", ft*feetToM, s.ReceivedAt)}
	}
	return nil
}

// MTW: water temperature, °C.
func decodeMTW(s Sentence) []sensor.Field {
	if c, ok := s.FloatField(1); ok {
		return []sensor.Field{field(sensor.Temperature, 0, "water", c, s.ReceivedAt)}
	}
	return nil
}

// VHW: heading (true then magnetic) and speed through water (knots then
// km/h).
func decodeVHW(s Sentence) []sensor.Field {
	var out []sensor.Field
	if hdg, ok := s.FloatField(1); ok && s.Field(2) == "T" {
		out = append(out, field(sensor.Compass, 0, "heading", hdg, s.ReceivedAt))
	}
	if kn, ok := s.FloatField(5); ok && s.Field(6) == "N" {
		out = append(out, field(sensor.Speed, 0, "throughWater", kn*knotsToMS, s.ReceivedAt))
	} else if kmh, ok := s.FloatField(7); ok && s.Field(8) == "K" {
		out = append(out, field(sensor.Speed, 0, "throughWater", kmh*kmhToMS, s.ReceivedAt))
	}
	return out
}

// MWV: wind angle and speed; reference R = apparent (relative to bow),
// T = true. Status field must be A.
func decodeMWV(s Sentence) []sensor.Field {
	if s.Field(5) != "A" {
		return nil
	}
	angle, angleOK := s.FloatField(1)
	speed, speedOK := s.FloatField(3)
	if !angleOK && !speedOK {
		return nil
	}

	switch s.Field(4) {
	case "N":
		speed *= knotsToMS
	case "K":
		speed *= kmhToMS
	case "M":
		// already m/s
	default:
		speedOK = false
	}

	angleKey, speedKey := "apparentAngle", "apparentSpeed"
	if s.Field(2) == "T" {
		angleKey, speedKey = "trueDirection", "trueSpeed"
	}

	var out []sensor.Field
	if angleOK {
		out = append(out, field(sensor.Wind, 0, angleKey, angle, s.ReceivedAt))
	}
	if speedOK {
		out = append(out, field(sensor.Wind, 0, speedKey, speed, s.ReceivedAt))
	}
	return out
}

// VTG: course over ground (°T) and speed over ground (knots).
func decodeVTG(s Sentence) []sensor.Field {
	var out []sensor.Field
	if cog, ok := s.FloatField(1); ok && s.Field(2) == "T" {
		out = append(out, field(sensor.GPS, 0, "courseOverGround", cog, s.ReceivedAt))
	}
	if kn, ok := s.FloatField(5); ok && s.Field(6) == "N" {
		out = append(out, field(sensor.GPS, 0, "speedOverGround", kn*knotsToMS, s.ReceivedAt))
	}
	return out
}

// RMC: recommended minimum. Void fixes (status V) are dropped whole.
func decodeRMC(s Sentence) []sensor.Field {
	if s.Field(2) != "A" {
		return nil
	}
	var out []sensor.Field
	if lat, ok := s.latLonField(3, 4); ok {
		out = append(out, field(sensor.GPS, 0, "latitude", lat, s.ReceivedAt))
	}
	if lon, ok := s.latLonField(5, 6); ok {
		out = append(out, field(sensor.GPS, 0, "longitude", lon, s.ReceivedAt))
	}
	if sog, ok := s.FloatField(7); ok {
		out = append(out, field(sensor.GPS, 0, "speedOverGround", sog*knotsToMS, s.ReceivedAt))
	}
	if cog, ok := s.FloatField(8); ok {
		out = append(out, field(sensor.GPS, 0, "courseOverGround", cog, s.ReceivedAt))
	}
	return out
}

// XDR: generic transducers in (type, value, unit, name) quadruples.
// Only the combinations marine instruments actually emit are mapped.
func decodeXDR(s Sentence) []sensor.Field {
	var out []sensor.Field
	for i := 1; i+2 < len(s.Fields); i += 4 {
		value, ok := s.FloatField(i + 1)
		if !ok {
			continue
		}
		unit := s.Field(i + 2)

		switch s.Field(i) {
		case "P": // pressure
			if unit == "B" {
				out = append(out, field(sensor.Weather, 0, "pressure", value*barsToPa, s.ReceivedAt))
			} else if unit == "P" {
				out = append(out, field(sensor.Weather, 0, "pressure", value, s.ReceivedAt))
			}
		case "C": // temperature, °C
			if unit == "C" {
				out = append(out, field(sensor.Weather, 0, "airTemperature", value, s.ReceivedAt))
			}
		case "U": // voltage
			if unit == "V" {
				out = append(out, field(sensor.Battery, 0, "voltage", value, s.ReceivedAt))
			}
		case "I": // current
			if unit == "A" {
				out = append(out, field(sensor.Battery, 0, "current", value, s.ReceivedAt))
			}
		case "A": // angular displacement (rudder)
			if unit == "D" {
				out = append(out, field(sensor.Rudder, 0, "angle", value, s.ReceivedAt))
			}
		case "H": // humidity
			if unit == "P" {
				out = append(out, field(sensor.Weather, 0, "humidity", value, s.ReceivedAt))
			}
		}
	}
	return out
}
