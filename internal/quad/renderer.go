// Package quad draws a vertex-colored quadrilateral as a triangle strip.
package quad

import (
	"fmt"
	"log"

	"go-quad/pkg/gpu"
	"go-quad/pkg/render"
	"go-quad/pkg/shader"

	"golang.org/x/image/math/f32"
)

// Layout is the vertex layout of the quad buffer.
var Layout = gpu.Layout{
	{Name: "position", Components: 2},
	{Name: "color", Components: 4},
}

// Renderer owns the quad program and its vertex buffer.
type Renderer struct {
	backend     gpu.Backend
	program     gpu.ProgramID
	buffer      gpu.BufferID
	vertexCount int
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Initialize compiles and links the shader pair and allocates a buffer of
// vertexCount vertices. The shader objects are deleted once the program is
// linked. Nothing stays allocated when compilation or linking fails.
func (r *Renderer) Initialize(ctx *render.Context, vertexSrc, fragmentSrc string, vertexCount int) error {
	if r.backend != nil {
		return setupError(fmt.Errorf("renderer already initialized"))
	}
	if vertexCount < 3 {
		return setupError(fmt.Errorf("vertex count %d: a triangle strip needs at least 3", vertexCount))
	}
	b := ctx.Backend

	vs, err := b.CompileShader(shader.Vertex, vertexSrc)
	if err != nil {
		return setupError(err)
	}
	fs, err := b.CompileShader(shader.Fragment, fragmentSrc)
	if err != nil {
		deleteShaders(b, vs)
		return setupError(err)
	}
	program, err := b.LinkProgram(vs, fs)
	deleteShaders(b, vs, fs)
	if err != nil {
		return setupError(err)
	}
	if err := checkInputs(b, program); err != nil {
		_ = b.DeleteProgram(program)
		return setupError(err)
	}

	buffer, err := b.CreateBuffer(vertexCount, Layout)
	if err != nil {
		_ = b.DeleteProgram(program)
		return setupError(err)
	}

	r.backend = b
	r.program = program
	r.buffer = buffer
	r.vertexCount = vertexCount
	log.Printf("quad: initialized on %s backend (%d vertices)", b.Name(), vertexCount)
	return nil
}

func deleteShaders(b gpu.Backend, ids ...gpu.ShaderID) {
	for _, id := range ids {
		if err := b.DeleteShader(id); err != nil {
			log.Printf("quad: delete shader %d: %v", id, err)
		}
	}
}

// checkInputs verifies that every vertex shader input exists in Layout with
// the same width.
func checkInputs(b gpu.Backend, p gpu.ProgramID) error {
	inputs, err := b.ProgramAttributes(p)
	if err != nil {
		return err
	}
	for _, in := range inputs {
		a, ok := Layout.Find(in.Name)
		if !ok {
			return &gpu.LinkError{Err: fmt.Errorf("%w: vertex input %s", gpu.ErrUnknownAttribute, in.Name)}
		}
		if a.Components != in.Components {
			return &gpu.LinkError{Err: fmt.Errorf("%w: vertex input %s has %d components, buffer has %d",
				gpu.ErrAttributeSize, in.Name, in.Components, a.Components)}
		}
	}
	return nil
}

// VertexCount returns the count given to Initialize.
func (r *Renderer) VertexCount() int { return r.vertexCount }

// SetVertexData uploads positions and colors. Both must hold exactly
// VertexCount elements; otherwise nothing is uploaded.
func (r *Renderer) SetVertexData(positions []f32.Vec2, colors []f32.Vec4) error {
	if r.backend == nil {
		return ErrNotInitialized
	}
	if len(positions) != r.vertexCount {
		return setupError(&SizeMismatchError{Attribute: "position", Want: r.vertexCount, Got: len(positions)})
	}
	if len(colors) != r.vertexCount {
		return setupError(&SizeMismatchError{Attribute: "color", Want: r.vertexCount, Got: len(colors)})
	}

	pos := make([]float32, 0, 2*len(positions))
	for _, p := range positions {
		pos = append(pos, p[:]...)
	}
	col := make([]float32, 0, 4*len(colors))
	for _, c := range colors {
		col = append(col, c[:]...)
	}
	if err := r.backend.UploadAttribute(r.buffer, "position", pos); err != nil {
		return setupError(err)
	}
	if err := r.backend.UploadAttribute(r.buffer, "color", col); err != nil {
		return setupError(err)
	}
	return nil
}

// Draw clears the framebuffer and draws the quad as one triangle strip.
func (r *Renderer) Draw(ctx *render.Context) error {
	if r.backend == nil {
		return ErrNotInitialized
	}
	if err := ctx.Clear(); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrDraw, err)
	}
	if err := ctx.Backend.DrawPrimitives(r.program, r.buffer, gpu.TriangleStrip); err != nil {
		return fmt.Errorf("%w: %w", ErrDraw, err)
	}
	return nil
}

// Release frees the program and the buffer. The renderer may be
// initialized again afterwards.
func (r *Renderer) Release() {
	if r.backend == nil {
		return
	}
	if err := r.backend.DeleteBuffer(r.buffer); err != nil {
		log.Printf("quad: release buffer: %v", err)
	}
	if err := r.backend.DeleteProgram(r.program); err != nil {
		log.Printf("quad: release program: %v", err)
	}
	*r = Renderer{}
}

// Hook is the per-frame callback drawing the quad into a context.
type Hook struct {
	r   *Renderer
	ctx *render.Context
}

// Hook returns a frame callback that draws r into ctx on every frame.
func (r *Renderer) Hook(ctx *render.Context) *Hook {
	return &Hook{r: r, ctx: ctx}
}

func (h *Hook) OnFrame(deltaTime float64) error {
	return h.r.Draw(h.ctx)
}
