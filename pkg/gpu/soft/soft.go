// Package soft is a deterministic software rasterizer implementing
// gpu.Backend. It needs no window or GPU and is used for headless rendering
// and tests.
package soft

import (
	"fmt"
	"image"
	"image/color"

	"go-quad/pkg/gpu"
	"go-quad/pkg/render"
	"go-quad/pkg/shader"

	"golang.org/x/image/math/f32"
)

// Backend renders into a float RGBA framebuffer.
type Backend struct {
	*gpu.Resources
	width, height int
	pix           []f32.Vec4
}

// New returns a backend with a width x height framebuffer cleared to
// transparent black.
func New(width, height int) *Backend {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("soft: invalid framebuffer size %dx%d", width, height))
	}
	return &Backend{
		Resources: gpu.NewResources(),
		width:     width,
		height:    height,
		pix:       make([]f32.Vec4, width*height),
	}
}

func (b *Backend) Name() string { return "soft" }

// Size returns the framebuffer dimensions.
func (b *Backend) Size() (width, height int) { return b.width, b.height }

// At returns the pixel at (x, y), origin top-left.
func (b *Backend) At(x, y int) f32.Vec4 {
	return b.pix[y*b.width+x]
}

// Image returns an 8-bit copy of the framebuffer.
func (b *Backend) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetRGBA(x, y, premultiply(render.ToRGBA(b.At(x, y))))
		}
	}
	return img
}

func premultiply(c color.RGBA) color.RGBA {
	a := uint16(c.A)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: c.A,
	}
}

func (b *Backend) Clear(c color.Color) error {
	v := render.FromColor(c)
	for i := range b.pix {
		b.pix[i] = v
	}
	b.CountClear()
	return nil
}

func (b *Backend) DrawPrimitives(p gpu.ProgramID, buf gpu.BufferID, topology gpu.Topology) error {
	prog, vertices, indices, err := b.Prepare(p, buf, topology)
	if err != nil {
		return fmt.Errorf("soft: draw: %w", err)
	}
	screen := make([]point, len(vertices))
	for i, v := range vertices {
		x, y := v.NDC()
		screen[i] = point{
			x: (x + 1) / 2 * float32(b.width),
			y: (1 - y) / 2 * float32(b.height),
		}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		err := b.triangle(prog,
			[3]point{screen[i0], screen[i1], screen[i2]},
			[3]shader.Value{vertices[i0].Color, vertices[i1].Color, vertices[i2].Color})
		if err != nil {
			return fmt.Errorf("soft: draw: %w", err)
		}
	}
	b.CountDraw(topology, len(vertices))
	return nil
}

func (b *Backend) Close() {
	b.Reset()
}

type point struct{ x, y float32 }

// edge returns twice the signed area of (a, b, p).
func edge(a, b, p point) float32 {
	return (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
}

// triangle rasterizes one triangle, sampling at pixel centers. Pixels on a
// shared edge are written by every triangle that touches them.
func (b *Backend) triangle(prog *shader.Program, v [3]point, c [3]shader.Value) error {
	area := edge(v[0], v[1], v[2])
	if area == 0 {
		return nil
	}
	minX, maxX := bounds(v[0].x, v[1].x, v[2].x, b.width)
	minY, maxY := bounds(v[0].y, v[1].y, v[2].y, b.height)

	srcPos := shader.V2(0, 0)
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			p := point{float32(px) + 0.5, float32(py) + 0.5}
			w0 := edge(v[1], v[2], p) / area
			w1 := edge(v[2], v[0], p) / area
			w2 := edge(v[0], v[1], p) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			col := shader.Value{T: shader.Vec4}
			for k := 0; k < 4; k++ {
				col.V[k] = w0*c[0].V[k] + w1*c[1].V[k] + w2*c[2].V[k]
			}
			out, err := prog.Shade(shader.V4(p.x, p.y, 0, 1), srcPos, col)
			if err != nil {
				return err
			}
			b.pix[py*b.width+px] = render.Clamp(f32.Vec4(out.V))
		}
	}
	return nil
}

// bounds returns the inclusive pixel range covered by three coordinates,
// clipped to [0, size).
func bounds(a, b, c float32, size int) (lo, hi int) {
	mn := min(a, b, c)
	mx := max(a, b, c)
	lo = max(int(mn), 0)
	hi = min(int(mx), size-1)
	return lo, hi
}
