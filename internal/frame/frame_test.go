package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	deltas []float64
	err    error
}

func (r *recorder) OnFrame(dt float64) error {
	r.deltas = append(r.deltas, dt)
	return r.err
}

func TestTickDeltaTime(t *testing.T) {
	d := NewDispatcher(0.06)
	r := &recorder{}
	d.Subscribe(r)

	start := time.Unix(100, 0)
	require.NoError(t, d.Tick(start))
	require.NoError(t, d.Tick(start.Add(16*time.Millisecond)))
	require.NoError(t, d.Tick(start.Add(2*time.Second)))
	require.NoError(t, d.Tick(start.Add(time.Second)))

	require.Len(t, r.deltas, 4)
	assert.Equal(t, 0.0, r.deltas[0])
	assert.InDelta(t, 0.016, r.deltas[1], 1e-9)
	assert.Equal(t, 0.06, r.deltas[2])
	assert.Equal(t, 0.0, r.deltas[3])
}

func TestDispatchStopsOnError(t *testing.T) {
	d := NewDispatcher(0)
	boom := errors.New("boom")
	first := &recorder{err: boom}
	second := &recorder{}
	d.Subscribe(first)
	d.Subscribe(second)

	assert.ErrorIs(t, d.Dispatch(0.5), boom)
	assert.Equal(t, []float64{0.5}, first.deltas)
	assert.Empty(t, second.deltas)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher(0)
	a, b := &recorder{}, &recorder{}
	d.Subscribe(a)
	d.Subscribe(b)
	d.Unsubscribe(a)
	assert.Equal(t, 1, d.Len())

	require.NoError(t, d.Dispatch(1))
	assert.Empty(t, a.deltas)
	assert.Equal(t, []float64{1}, b.deltas)
}

func TestFunc(t *testing.T) {
	var got float64
	d := NewDispatcher(0)
	d.Subscribe(Func(func(dt float64) error {
		got = dt
		return nil
	}))
	require.NoError(t, d.Dispatch(0.25))
	assert.Equal(t, 0.25, got)
}

func TestZeroMaxDeltaDisablesClamp(t *testing.T) {
	d := NewDispatcher(0)
	r := &recorder{}
	d.Subscribe(r)

	start := time.Unix(100, 0)
	require.NoError(t, d.Tick(start))
	require.NoError(t, d.Tick(start.Add(2*time.Second)))
	assert.Equal(t, []float64{0, 2}, r.deltas)
}

func TestUnsubscribeRequiresComparable(t *testing.T) {
	d := NewDispatcher(0)
	f := Func(func(float64) error { return nil })
	d.Subscribe(f)
	assert.Panics(t, func() { d.Unsubscribe(f) })
	assert.Equal(t, 1, d.Len())
}
