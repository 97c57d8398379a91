package alarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateFuelTank(t *testing.T) {
	assert.Equal(t, Critical, Evaluate(5, FuelLevel))
	assert.Equal(t, Warning, Evaluate(15, FuelLevel))
	assert.Equal(t, Normal, Evaluate(30, FuelLevel))
}

func TestEvaluateWasteTank(t *testing.T) {
	assert.Equal(t, Critical, Evaluate(95, WasteWaterLevel))
	assert.Equal(t, Warning, Evaluate(80, WasteWaterLevel))
	assert.Equal(t, Normal, Evaluate(50, WasteWaterLevel))
}

func TestEvaluateFreshWater(t *testing.T) {
	assert.Equal(t, Warning, Evaluate(10, FreshWaterLevel))
	assert.Equal(t, Normal, Evaluate(15, FreshWaterLevel))
}

func TestEvaluateDepth(t *testing.T) {
	assert.Equal(t, Alarm, Evaluate(1.2, ShallowDepth))
	assert.Equal(t, Warning, Evaluate(2.5, ShallowDepth))
	assert.Equal(t, Normal, Evaluate(3.0, ShallowDepth))
	assert.Equal(t, Normal, Evaluate(12.0, ShallowDepth))
}

func TestEvaluateBothDirections(t *testing.T) {
	assert.Equal(t, Alarm, Evaluate(11.2, BatteryVoltage))
	assert.Equal(t, Warning, Evaluate(11.8, BatteryVoltage))
	assert.Equal(t, Normal, Evaluate(12.6, BatteryVoltage))
	assert.Equal(t, Warning, Evaluate(15.0, BatteryVoltage))
	assert.Equal(t, Alarm, Evaluate(15.8, BatteryVoltage))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Equal(t, Warning, Evaluate(2.0, ShallowDepth))
	}
}

func TestEvaluateEmptyThreshold(t *testing.T) {
	assert.True(t, Threshold{}.IsZero())
	assert.Equal(t, Normal, Evaluate(-1e9, Threshold{}))
	assert.Equal(t, Normal, Evaluate(1e9, Threshold{}))
}

func TestDefaultFor(t *testing.T) {
	th, ok := DefaultFor("depth", "depth")
	assert.True(t, ok)
	assert.Equal(t, Alarm, Evaluate(1.0, th))

	_, ok = DefaultFor("compass", "heading")
	assert.False(t, ok)
}
