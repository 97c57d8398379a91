package sensor

import (
	"strings"

	"pelorus/internal/presentation"
)

// FieldSchema describes one metric key of a sensor type: the short display
// mnemonic and the presentation category its values belong to.
type FieldSchema struct {
	Key      string
	Mnemonic string
	Category presentation.Category
}

// schemas is the typed field registry, replacing string-keyed dynamic
// lookup with an exhaustive table per sensor type.
var schemas = map[Type][]FieldSchema{
	Depth: {
		{Key: "depth", Mnemonic: "DPT", Category: presentation.Depth},
		{Key: "offset", Mnemonic: "OFS", Category: presentation.Depth},
	},
	Speed: {
		// Speed over ground comes from the GPS sensor; the decoder
		// emits VTG/RMC speed as gps.speedOverGround.
		{Key: "throughWater", Mnemonic: "STW", Category: presentation.Speed},
	},
	Wind: {
		{Key: "apparentSpeed", Mnemonic: "AWS", Category: presentation.Wind},
		{Key: "apparentAngle", Mnemonic: "AWA", Category: presentation.Angle},
		{Key: "trueSpeed", Mnemonic: "TWS", Category: presentation.Wind},
		{Key: "trueDirection", Mnemonic: "TWD", Category: presentation.Angle},
	},
	Temperature: {
		{Key: "water", Mnemonic: "WTMP", Category: presentation.Temperature},
		{Key: "air", Mnemonic: "ATMP", Category: presentation.Temperature},
	},
	Compass: {
		{Key: "heading", Mnemonic: "HDG", Category: presentation.Angle},
		{Key: "variation", Mnemonic: "VAR", Category: presentation.Angle},
	},
	GPS: {
		{Key: "latitude", Mnemonic: "LAT", Category: presentation.Coordinates},
		{Key: "longitude", Mnemonic: "LON", Category: presentation.Coordinates},
		{Key: "speedOverGround", Mnemonic: "SOG", Category: presentation.Speed},
		{Key: "courseOverGround", Mnemonic: "COG", Category: presentation.Angle},
	},
	Battery: {
		{Key: "voltage", Mnemonic: "VLT", Category: presentation.Voltage},
		{Key: "current", Mnemonic: "AMP", Category: presentation.Current},
		{Key: "stateOfCharge", Mnemonic: "SOC", Category: presentation.Percentage},
		{Key: "temperature", Mnemonic: "TMP", Category: presentation.Temperature},
	},
	Tank: {
		{Key: "fuel.level", Mnemonic: "LVL", Category: presentation.Percentage},
		{Key: "freshWater.level", Mnemonic: "LVL", Category: presentation.Percentage},
		{Key: "wasteWater.level", Mnemonic: "LVL", Category: presentation.Percentage},
	},
	Engine: {
		{Key: "rpm", Mnemonic: "RPM", Category: presentation.RPM},
		{Key: "coolantTemp", Mnemonic: "ECT", Category: presentation.Temperature},
		{Key: "oilPressure", Mnemonic: "EOP", Category: presentation.Pressure},
		{Key: "alternatorVoltage", Mnemonic: "ALT", Category: presentation.Voltage},
		{Key: "fuelRate", Mnemonic: "FLOW", Category: presentation.FlowRate},
		{Key: "hours", Mnemonic: "EHR", Category: presentation.Time},
	},
	Rudder: {
		{Key: "angle", Mnemonic: "RUD", Category: presentation.Angle},
	},
	Weather: {
		{Key: "pressure", Mnemonic: "BARO", Category: presentation.Pressure},
		{Key: "airTemperature", Mnemonic: "ATMP", Category: presentation.Temperature},
		{Key: "humidity", Mnemonic: "HUM", Category: presentation.Percentage},
	},
}

// statSuffixes are the virtual session-statistic keys derived per field.
var statSuffixes = []string{"min", "max", "avg"}

// SplitStatKey splits a virtual key ("depth.max") into its base key and
// statistic name. ok is false for plain keys.
func SplitStatKey(key string) (base, stat string, ok bool) {
	dot := strings.LastIndexByte(key, '.')
	if dot == -1 {
		return key, "", false
	}
	tail := key[dot+1:]
	for _, s := range statSuffixes {
		if tail == s {
			return key[:dot], tail, true
		}
	}
	return key, "", false
}

// SchemaFor looks up the schema of a metric key, resolving virtual
// statistic keys to their base field.
func SchemaFor(t Type, key string) (FieldSchema, bool) {
	if base, _, ok := SplitStatKey(key); ok {
		key = base
	}
	for _, fs := range schemas[t] {
		if fs.Key == key {
			return fs, true
		}
	}
	return FieldSchema{}, false
}

// Mnemonic returns the display mnemonic for a metric key, falling back to
// an uppercased key fragment for keys outside the schema.
func Mnemonic(t Type, key string) string {
	if fs, ok := SchemaFor(t, key); ok {
		return fs.Mnemonic
	}
	base, _, _ := SplitStatKey(key)
	if dot := strings.LastIndexByte(base, '.'); dot != -1 {
		base = base[dot+1:]
	}
	up := strings.ToUpper(base)
	if len(up) > 5 {
		up = up[:5]
	}
	return up
}
