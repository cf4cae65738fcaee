// Package frame dispatches per-frame ticks to registered callbacks.
package frame

import (
	"time"
)

// Callback is invoked once per frame with the seconds elapsed since the
// previous frame.
type Callback interface {
	OnFrame(deltaTime float64) error
}

// Func adapts a function to Callback.
type Func func(deltaTime float64) error

func (f Func) OnFrame(deltaTime float64) error { return f(deltaTime) }

// Dispatcher: список подписчиков на кадр
type Dispatcher struct {
	callbacks []Callback
	maxDelta  float64
	last      time.Time
}

// NewDispatcher создаёт диспетчер. Время кадра ограничивается maxDelta
// секундами, 0 отключает ограничение.
func NewDispatcher(maxDelta float64) *Dispatcher {
	return &Dispatcher{maxDelta: maxDelta}
}

// Subscribe: подписка на кадры
func (d *Dispatcher) Subscribe(cb Callback) {
	d.callbacks = append(d.callbacks, cb)
}

// Unsubscribe: отписка. Callback должен быть сравнимым типом.
func (d *Dispatcher) Unsubscribe(cb Callback) {
	for i, c := range d.callbacks {
		if c == cb {
			d.callbacks = append(d.callbacks[:i], d.callbacks[i+1:]...)
			break
		}
	}
}

// Len returns the number of subscribed callbacks.
func (d *Dispatcher) Len() int { return len(d.callbacks) }

// Tick computes the delta time since the previous tick (0 on the first one)
// and calls every callback in subscription order. The first error stops the
// dispatch and is returned.
func (d *Dispatcher) Tick(now time.Time) error {
	var dt float64
	if !d.last.IsZero() {
		dt = now.Sub(d.last).Seconds()
	}
	d.last = now
	if dt < 0 {
		dt = 0
	}
	if d.maxDelta > 0 && dt > d.maxDelta {
		dt = d.maxDelta
	}
	return d.Dispatch(dt)
}

// Dispatch calls every callback with an explicit delta time.
func (d *Dispatcher) Dispatch(deltaTime float64) error {
	for _, cb := range d.callbacks {
		if err := cb.OnFrame(deltaTime); err != nil {
			return err
		}
	}
	return nil
}
