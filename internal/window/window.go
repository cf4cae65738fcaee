// Package window provides the window collaborators that own the event loop
// and tick frame callbacks: an ebiten window and a raylib window.
package window

import (
	"time"

	"go-quad/internal/frame"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screen receives the screen image ebiten hands out for each frame.
type Screen interface {
	SetTarget(img *ebiten.Image)
}

// Window is an ebiten window. It implements ebiten.Game.
type Window struct {
	width, height int
	title         string
	screen        Screen
	frames        *frame.Dispatcher
	err           error
}

// New creates a window of the given size. screen is rebound to the screen
// image before callbacks run.
func New(width, height int, title string, screen Screen, maxDelta float64) *Window {
	return &Window{
		width:  width,
		height: height,
		title:  title,
		screen: screen,
		frames: frame.NewDispatcher(maxDelta),
	}
}

// Register adds a per-frame callback.
func (w *Window) Register(cb frame.Callback) {
	w.frames.Subscribe(cb)
}

// Unregister removes a callback added with Register.
func (w *Window) Unregister(cb frame.Callback) {
	w.frames.Unsubscribe(cb)
}

// Update returns the first callback error, which stops ebiten's loop.
func (w *Window) Update() error {
	return w.err
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.err != nil {
		return
	}
	w.screen.SetTarget(screen)
	w.err = w.frames.Tick(time.Now())
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.width, w.height
}

// Run opens the window and blocks until it is closed or a callback fails.
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle(w.title)
	return ebiten.RunGame(w)
}
