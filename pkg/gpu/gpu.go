// Package gpu defines the graphics backend contract used by the renderers
// and the CPU-side bookkeeping shared by all backends.
package gpu

import (
	"errors"
	"fmt"
	"image/color"

	"go-quad/pkg/shader"
)

// Common backend errors.
var (
	ErrUnknownShader    = errors.New("gpu: unknown shader")
	ErrUnknownProgram   = errors.New("gpu: unknown program")
	ErrUnknownBuffer    = errors.New("gpu: unknown buffer")
	ErrUnknownAttribute = errors.New("gpu: unknown attribute")
	ErrAttributeSize    = errors.New("gpu: attribute data size mismatch")
	ErrNoTarget         = errors.New("gpu: no render target bound")
	ErrTopology         = errors.New("gpu: invalid topology")
)

// ShaderCompilationError is returned when a shader source does not compile.
type ShaderCompilationError struct {
	Stage shader.Stage
	Err   error
}

func (e *ShaderCompilationError) Error() string {
	return fmt.Sprintf("gpu: compile %s shader: %v", e.Stage, e.Err)
}

func (e *ShaderCompilationError) Unwrap() error { return e.Err }

// LinkError is returned when two shaders cannot be linked into a program.
type LinkError struct {
	Err error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("gpu: link program: %v", e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// Handles. Zero is never a valid handle.
type (
	ShaderID  uint32
	ProgramID uint32
	BufferID  uint32
)

// Attribute describes one per-vertex field of a buffer.
type Attribute struct {
	Name       string
	Components int
}

// Layout is the ordered attribute list of a vertex buffer.
type Layout []Attribute

// Find returns the attribute called name.
func (l Layout) Find(name string) (Attribute, bool) {
	for _, a := range l {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Backend is a graphics backend. All calls must come from the rendering
// thread.
type Backend interface {
	// Name returns the backend identifier (e.g. "soft", "ebiten").
	Name() string

	CompileShader(stage shader.Stage, src string) (ShaderID, error)
	// DeleteShader releases a shader. Programs already linked from it stay
	// valid.
	DeleteShader(s ShaderID) error
	LinkProgram(vs, fs ShaderID) (ProgramID, error)
	// ProgramAttributes returns the vertex inputs of a linked program.
	ProgramAttributes(p ProgramID) (Layout, error)
	DeleteProgram(p ProgramID) error

	CreateBuffer(count int, layout Layout) (BufferID, error)
	// UploadAttribute replaces the data of one attribute. len(data) must be
	// count*components.
	UploadAttribute(buf BufferID, name string, data []float32) error
	DeleteBuffer(buf BufferID) error

	// Clear fills the current framebuffer with c.
	Clear(c color.Color) error
	// DrawPrimitives rasterizes every vertex of buf with program p.
	DrawPrimitives(p ProgramID, buf BufferID, topology Topology) error

	Stats() Stats

	// Close releases all backend resources.
	Close()
}

// DrawCall records the parameters of one DrawPrimitives call.
type DrawCall struct {
	Topology    Topology
	VertexCount int
}

// Stats counts backend operations.
type Stats struct {
	Shaders  int // live shaders
	Programs int // live programs
	Buffers  int // live buffers
	Uploads  int
	Clears   int
	Draws    []DrawCall
}
