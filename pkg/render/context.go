// Package render holds the explicit render context passed to renderers and
// color helpers shared by the backends.
package render

import (
	"image/color"

	"go-quad/pkg/gpu"
)

// Context is the render state of one window: the graphics backend and the
// color the framebuffer is cleared to before each frame. It is created at
// program start and closed at exit.
type Context struct {
	Backend    gpu.Backend
	ClearColor color.RGBA
}

// NewContext returns a context drawing through b.
func NewContext(b gpu.Backend, clearColor color.RGBA) *Context {
	return &Context{
		Backend:    b,
		ClearColor: clearColor,
	}
}

// Clear fills the current framebuffer with the clear color.
func (c *Context) Clear() error {
	return c.Backend.Clear(c.ClearColor)
}

// Close releases the backend.
func (c *Context) Close() {
	if c.Backend != nil {
		c.Backend.Close()
	}
}
