package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pelorus/internal/sensor"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeReader struct {
	samples map[sensor.Path]sensor.Sample
}

func newFakeReader() *fakeReader {
	return &fakeReader{samples: make(map[sensor.Path]sensor.Sample)}
}

func (r *fakeReader) set(t sensor.Type, inst int, key string, v float64, at time.Time) {
	r.samples[sensor.Path{Type: t, Instance: inst, Key: key}] = sensor.Sample{Value: v, When: at}
}

func (r *fakeReader) Latest(id sensor.ID, key string) (float64, time.Time, bool) {
	s, ok := r.samples[sensor.Path{Type: id.Type, Instance: id.Instance, Key: key}]
	if !ok {
		return 0, time.Time{}, false
	}
	return s.Value, s.When, true
}

func depthArbiter(r Reader) *Arbiter {
	return New(Config{
		Priorities: map[string][]Candidate{
			"depth": {
				{ID: sensor.ID{Type: sensor.Depth, Instance: 0}, Key: "depth"}, // DPT
				{ID: sensor.ID{Type: sensor.Depth, Instance: 1}, Key: "depth"}, // DBT
				{ID: sensor.ID{Type: sensor.Depth, Instance: 2}, Key: "depth"}, // DBK
			},
		},
	}, r, zap.NewNop())
}

func TestSelectLocksFirstValidCandidate(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	r.set(sensor.Depth, 1, "depth", 9.9, t0)

	sel, sw, ok := a.Select("depth", t0)
	require.True(t, ok)
	assert.Equal(t, 1, sel.Source.ID.Instance)
	assert.Equal(t, 9.9, sel.Value)
	require.NotNil(t, sw)
	assert.Nil(t, sw.From)
	assert.Equal(t, 1, sw.To.ID.Instance)
}

func TestSelectPrefersPriorityWhenUnlocked(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	r.set(sensor.Depth, 1, "depth", 5.2, t0)

	sel, _, ok := a.Select("depth", t0)
	require.True(t, ok)
	assert.Equal(t, 0, sel.Source.ID.Instance, "DPT outranks DBT")
}

func TestStickySelection(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	// DPT valid at t=0, locked.
	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	_, _, ok := a.Select("depth", t0)
	require.True(t, ok)

	// DBT becomes valid at t=1 while DPT stays valid: lock must hold.
	r.set(sensor.Depth, 1, "depth", 5.2, t0.Add(time.Second))
	sel, sw, ok := a.Select("depth", t0.Add(time.Second))
	require.True(t, ok)
	assert.Nil(t, sw)
	assert.Equal(t, 0, sel.Source.ID.Instance)
}

func TestSwitchesWhenLockedGoesStale(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	_, _, ok := a.Select("depth", t0)
	require.True(t, ok)

	// DBT keeps reporting; DPT stops. Past the 10 s threshold the next
	// tick must move the lock.
	now := t0.Add(11 * time.Second)
	r.set(sensor.Depth, 1, "depth", 5.2, now)

	sel, sw, ok := a.Select("depth", now)
	require.True(t, ok)
	require.NotNil(t, sw)
	assert.Equal(t, 0, sw.From.ID.Instance)
	assert.Equal(t, 1, sw.To.ID.Instance)
	assert.Equal(t, 1, sel.Source.ID.Instance)
}

func TestLowerPriorityDoesNotStealBack(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	// Lock on DBT while DPT is silent.
	r.set(sensor.Depth, 1, "depth", 5.2, t0)
	_, _, ok := a.Select("depth", t0)
	require.True(t, ok)

	// DPT reappears: sticky selection keeps DBT while it stays valid.
	r.set(sensor.Depth, 0, "depth", 5.0, t0.Add(time.Second))
	r.set(sensor.Depth, 1, "depth", 5.3, t0.Add(time.Second))
	sel, sw, _ := a.Select("depth", t0.Add(time.Second))
	assert.Nil(t, sw)
	assert.Equal(t, 1, sel.Source.ID.Instance)
}

func TestUnlocksWhenNothingValid(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	_, _, ok := a.Select("depth", t0)
	require.True(t, ok)

	_, sw, ok := a.Select("depth", t0.Add(time.Minute))
	assert.False(t, ok, "no data published when every source is stale")
	require.NotNil(t, sw)
	assert.Equal(t, 0, sw.From.ID.Instance)
	assert.Nil(t, sw.To)

	// Staying unlocked is not another switch.
	_, sw, ok = a.Select("depth", t0.Add(2*time.Minute))
	assert.False(t, ok)
	assert.Nil(t, sw)
}

func TestExactThresholdIsStale(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	_, _, ok := a.Select("depth", t0.Add(DefaultStaleAfter))
	assert.False(t, ok, "age == threshold is stale")
}

func TestTickCollectsSwitches(t *testing.T) {
	r := newFakeReader()
	a := New(Config{
		StaleAfter: 5 * time.Second,
		Priorities: map[string][]Candidate{
			"depth": {{ID: sensor.ID{Type: sensor.Depth, Instance: 0}, Key: "depth"}},
			"speed": {{ID: sensor.ID{Type: sensor.Speed, Instance: 0}, Key: "throughWater"}},
		},
	}, r, zap.NewNop())

	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	r.set(sensor.Speed, 0, "throughWater", 3.0, t0)

	switches := a.Tick(t0)
	assert.Len(t, switches, 2)

	switches = a.Tick(t0.Add(time.Second))
	assert.Empty(t, switches)

	switches = a.Tick(t0.Add(10 * time.Second))
	assert.Len(t, switches, 2, "both unlock once stale")
}

func TestPeekDoesNotMoveLock(t *testing.T) {
	r := newFakeReader()
	a := depthArbiter(r)

	r.set(sensor.Depth, 0, "depth", 5.0, t0)
	_, _, ok := a.Select("depth", t0)
	require.True(t, ok)

	// DPT goes stale, DBT stays fresh. Peek previews the failover but
	// must leave the lock on DPT.
	now := t0.Add(11 * time.Second)
	r.set(sensor.Depth, 1, "depth", 5.2, now)

	sel, ok := a.Peek("depth", now)
	require.True(t, ok)
	assert.Equal(t, 1, sel.Source.ID.Instance)

	// The commit path still sees the same transition afterwards.
	_, sw, ok := a.Select("depth", now)
	require.True(t, ok)
	require.NotNil(t, sw, "peeking must not consume the switch")
	assert.Equal(t, 0, sw.From.ID.Instance)
	assert.Equal(t, 1, sw.To.ID.Instance)
}

func TestPeekUnknownMetric(t *testing.T) {
	a := depthArbiter(newFakeReader())
	_, ok := a.Peek("tide", t0)
	assert.False(t, ok)
}

func TestUnknownMetric(t *testing.T) {
	a := depthArbiter(newFakeReader())
	_, sw, ok := a.Select("tide", t0)
	assert.False(t, ok)
	assert.Nil(t, sw)
}
