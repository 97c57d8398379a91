// Package sensor holds the typed sensor model: the closed set of sensor
// types, metric paths, the per-instance store with bounded history, and
// the session statistics derived from that history.
package sensor

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type is the closed set of sensor types fed by the decoder.
type Type string

const (
	Depth       Type = "depth"
	Speed       Type = "speed"
	Wind        Type = "wind"
	Temperature Type = "temperature"
	Compass     Type = "compass"
	GPS         Type = "gps"
	Battery     Type = "battery"
	Tank        Type = "tank"
	Engine      Type = "engine"
	Rudder      Type = "rudder"
	Weather     Type = "weather"
)

var allTypes = []Type{
	Depth, Speed, Wind, Temperature, Compass, GPS,
	Battery, Tank, Engine, Rudder, Weather,
}

// ParseType maps a string to a known sensor type.
func ParseType(s string) (Type, bool) {
	for _, t := range allTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ID identifies one physical or logical source: a sensor type plus an
// instance number (depth.0, battery.1).
type ID struct {
	Type     Type
	Instance int
}

func (id ID) String() string {
	return fmt.Sprintf("%s.%d", id.Type, id.Instance)
}

// Path identifies one metric of one source (battery.0.voltage). Virtual
// statistic keys use a suffix: battery.0.voltage.max.
type Path struct {
	Type     Type
	Instance int
	Key      string
}

func (p Path) String() string {
	return fmt.Sprintf("%s.%d.%s", p.Type, p.Instance, p.Key)
}

func (p Path) ID() ID { return ID{Type: p.Type, Instance: p.Instance} }

// ParsePath parses "type.instance.key". The key part may itself contain
// dots (tank.0.fuel.level).
func ParsePath(s string) (Path, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Path{}, fmt.Errorf("sensor: malformed path %q", s)
	}
	t, ok := ParseType(parts[0])
	if !ok {
		return Path{}, fmt.Errorf("sensor: unknown type in path %q", s)
	}
	inst, err := strconv.Atoi(parts[1])
	if err != nil || inst < 0 {
		return Path{}, fmt.Errorf("sensor: bad instance in path %q", s)
	}
	if parts[2] == "" {
		return Path{}, fmt.Errorf("sensor: empty key in path %q", s)
	}
	return Path{Type: t, Instance: inst, Key: parts[2]}, nil
}

// Field is one decoded metric update handed to the store: an SI value for
// one key of one source at one instant.
type Field struct {
	Type     Type
	Instance int
	Key      string
	Value    float64
	When     time.Time
}

func (f Field) ID() ID     { return ID{Type: f.Type, Instance: f.Instance} }
func (f Field) Path() Path { return Path{Type: f.Type, Instance: f.Instance, Key: f.Key} }

// Sample is a stored value with its receipt timestamp.
type Sample struct {
	Value float64
	When  time.Time
}
