package nmea

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pelorus/internal/sensor"
)

var rx = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func decodeLine(t *testing.T, payload string) []sensor.Field {
	t.Helper()
	s, res := Parse(Line(payload), rx)
	require.True(t, res.OK, "parse %q: %+v", payload, res)
	return Decode(s)
}

func findField(fields []sensor.Field, typ sensor.Type, instance int, key string) (sensor.Field, bool) {
	for _, f := range fields {
		if f.Type == typ && f.Instance == instance && f.Key == key {
			return f, true
		}
	}
	return sensor.Field{}, false
}

func TestDecodeDPT(t *testing.T) {
	fields := decodeLine(t, "SDDPT,12.4,0.5")

	depth, ok := findField(fields, sensor.Depth, 0, "depth")
	require.True(t, ok)
	assert.Equal(t, 12.4, depth.Value)
	assert.Equal(t, rx, depth.When)

	offset, ok := findField(fields, sensor.Depth, 0, "offset")
	require.True(t, ok)
	assert.Equal(t, 0.5, offset.Value)
}

func TestDecodeDBTPrefersMetres(t *testing.T) {
	fields := decodeLine(t, "SDDBT,40.7,f,12.4,M,6.7,F")
	depth, ok := findField(fields, sensor.Depth, 1, "depth")
	require.True(t, ok)
	assert.Equal(t, 12.4, depth.Value)
}

func TestDecodeDBTFeetFallback(t *testing.T) {
	fields := decodeLine(t, "SDDBT,40.7,f,,,,")
	depth, ok := findField(fields, sensor.Depth, 1, "depth")
	require.True(t, ok)
	assert.InDelta(t, 12.405, depth.Value, 1e-3)
}

func TestDecodeDBKInstance(t *testing.T) {
	fields := decodeLine(t, "SDDBK,40.7,f,12.4,M,6.7,F")
	_, ok := findField(fields, sensor.Depth, 2, "depth")
	assert.True(t, ok, "DBK lands on depth instance 2")
}

func TestDecodeMTW(t *testing.T) {
	fields := decodeLine(t, "YXMTW,18.5,C")
	temp, ok := findField(fields, sensor.Temperature, 0, "water")
	require.True(t, ok)
	assert.Equal(t, 18.5, temp.Value)
}

func TestDecodeVHW(t *testing.T) {
	fields := decodeLine(t, "VWVHW,245.1,T,251.2,M,5.5,N,10.2,K")

	hdg, ok := findField(fields, sensor.Compass, 0, "heading")
	require.True(t, ok)
	assert.Equal(t, 245.1, hdg.Value)

	stw, ok := findField(fields, sensor.Speed, 0, "throughWater")
	require.True(t, ok)
	assert.InDelta(t, 2.829, stw.Value, 1e-3) // 5.5 kn
}

func TestDecodeMWVApparent(t *testing.T) {
	fields := decodeLine(t, "WIMWV,045.0,R,12.0,N,A")

	angle, ok := findField(fields, sensor.Wind, 0, "apparentAngle")
	require.True(t, ok)
	assert.Equal(t, 45.0, angle.Value)

	speed, ok := findField(fields, sensor.Wind, 0, "apparentSpeed")
	require.True(t, ok)
	assert.InDelta(t, 6.173, speed.Value, 1e-3)
}

func TestDecodeMWVTrue(t *testing.T) {
	fields := decodeLine(t, "WIMWV,120.0,T,8.0,M,A")

	_, apparent := findField(fields, sensor.Wind, 0, "apparentSpeed")
	assert.False(t, apparent)

	speed, ok := findField(fields, sensor.Wind, 0, "trueSpeed")
	require.True(t, ok)
	assert.Equal(t, 8.0, speed.Value)
}

func TestDecodeMWVVoidStatus(t *testing.T) {
	assert.Empty(t, decodeLine(t, "WIMWV,045.0,R,12.0,N,V"))
}

func TestDecodeVTG(t *testing.T) {
	fields := decodeLine(t, "GPVTG,054.7,T,034.4,M,005.5,N,010.2,K")

	cog, ok := findField(fields, sensor.GPS, 0, "courseOverGround")
	require.True(t, ok)
	assert.Equal(t, 54.7, cog.Value)

	sog, ok := findField(fields, sensor.GPS, 0, "speedOverGround")
	require.True(t, ok)
	assert.InDelta(t, 2.829, sog.Value, 1e-3)
}

func TestDecodeRMC(t *testing.T) {
	fields := decodeLine(t, "GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")

	lat, ok := findField(fields, sensor.GPS, 0, "latitude")
	require.True(t, ok)
	assert.InDelta(t, 48.1173, lat.Value, 1e-4)

	lon, ok := findField(fields, sensor.GPS, 0, "longitude")
	require.True(t, ok)
	assert.InDelta(t, 11.5166, lon.Value, 1e-4)

	sog, ok := findField(fields, sensor.GPS, 0, "speedOverGround")
	require.True(t, ok)
	assert.InDelta(t, 11.523, sog.Value, 1e-3)
}

func TestDecodeRMCVoid(t *testing.T) {
	assert.Empty(t, decodeLine(t, "GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
}

func TestDecodeRMCSouthWestNegative(t *testing.T) {
	fields := decodeLine(t, "GPRMC,123519,A,3351.000,S,15112.000,W,0.0,0.0,230394,,")

	lat, _ := findField(fields, sensor.GPS, 0, "latitude")
	assert.Less(t, lat.Value, 0.0)
	lon, _ := findField(fields, sensor.GPS, 0, "longitude")
	assert.Less(t, lon.Value, 0.0)
}

func TestDecodeXDR(t *testing.T) {
	fields := decodeLine(t, "IIXDR,P,1.0132,B,BARO,C,21.5,C,AIR,U,12.65,V,HOUSE")

	p, ok := findField(fields, sensor.Weather, 0, "pressure")
	require.True(t, ok)
	assert.InDelta(t, 101320, p.Value, 1)

	air, ok := findField(fields, sensor.Weather, 0, "airTemperature")
	require.True(t, ok)
	assert.Equal(t, 21.5, air.Value)

	v, ok := findField(fields, sensor.Battery, 0, "voltage")
	require.True(t, ok)
	assert.Equal(t, 12.65, v.Value)
}

func TestDecodeUnknownTypeIsEmpty(t *testing.T) {
	assert.Empty(t, decodeLine(t, "GPZDA,160012.71,11,03,2004,-1,00"))
}
