package window

import (
	"log"

	"go-quad/internal/frame"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibWindow is a raylib window. Open must be called before any GPU
// resource is created, since it creates the GL context.
type RaylibWindow struct {
	width, height int32
	title         string
	fps           int32
	frames        *frame.Dispatcher
	open          bool
}

func NewRaylib(width, height int32, title string, fps int32) *RaylibWindow {
	return &RaylibWindow{
		width:  width,
		height: height,
		title:  title,
		fps:    fps,
		frames: frame.NewDispatcher(0),
	}
}

// Open creates the window and its GL context.
func (w *RaylibWindow) Open() {
	if w.open {
		return
	}
	rl.InitWindow(w.width, w.height, w.title)
	rl.SetTargetFPS(w.fps)
	w.open = true
}

func (w *RaylibWindow) Register(cb frame.Callback) {
	w.frames.Subscribe(cb)
}

func (w *RaylibWindow) Unregister(cb frame.Callback) {
	w.frames.Unsubscribe(cb)
}

// Run drives the event loop until the window is closed or a callback
// fails. The window stays open so GPU resources can be released before
// Close.
func (w *RaylibWindow) Run() error {
	w.Open()

	for !rl.WindowShouldClose() {
		rl.BeginDrawing()
		err := w.frames.Dispatch(float64(rl.GetFrameTime()))
		rl.EndDrawing()
		if err != nil {
			return err
		}
	}
	log.Println("window: closed")
	return nil
}

// Close destroys the window.
func (w *RaylibWindow) Close() {
	if !w.open {
		return
	}
	rl.CloseWindow()
	w.open = false
}
