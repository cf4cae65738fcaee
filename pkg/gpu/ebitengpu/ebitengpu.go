// Package ebitengpu implements gpu.Backend on top of ebiten. Fragment
// programs are Kage sources compiled by ebiten; the vertex stage runs on the
// CPU and feeds ebiten vertices in pixel coordinates.
package ebitengpu

import (
	"fmt"
	"image/color"

	"go-quad/pkg/gpu"
	"go-quad/pkg/shader"

	"github.com/hajimehoshi/ebiten/v2"
)

// newShader compiles Kage sources. Tests replace it.
var newShader = ebiten.NewShader

// Backend draws into the ebiten image bound with SetTarget.
type Backend struct {
	*gpu.Resources
	target   *ebiten.Image
	kage     map[gpu.ShaderID]*ebiten.Shader
	programs map[gpu.ProgramID]*ebiten.Shader
	vs       []ebiten.Vertex
}

func New() *Backend {
	return &Backend{
		Resources: gpu.NewResources(),
		kage:      make(map[gpu.ShaderID]*ebiten.Shader),
		programs:  make(map[gpu.ProgramID]*ebiten.Shader),
		vs:        make([]ebiten.Vertex, 0, 4),
	}
}

func (b *Backend) Name() string { return "ebiten" }

// SetTarget binds the image the next Clear and DrawPrimitives calls render
// into. ebiten hands out the screen image per frame, so the window rebinds
// it on every Draw.
func (b *Backend) SetTarget(img *ebiten.Image) {
	b.target = img
}

func (b *Backend) CompileShader(stage shader.Stage, src string) (gpu.ShaderID, error) {
	id, err := b.Resources.CompileShader(stage, src)
	if err != nil {
		return 0, err
	}
	if stage != shader.Fragment {
		return id, nil
	}
	s, err := newShader([]byte(src))
	if err != nil {
		_ = b.Resources.DeleteShader(id)
		return 0, &gpu.ShaderCompilationError{Stage: stage, Err: err}
	}
	b.kage[id] = s
	return id, nil
}

func (b *Backend) DeleteShader(id gpu.ShaderID) error {
	if err := b.Resources.DeleteShader(id); err != nil {
		return err
	}
	s, ok := b.kage[id]
	delete(b.kage, id)
	if ok && !b.inUse(s) {
		s.Deallocate()
	}
	return nil
}

// inUse reports whether s is still referenced by a shader or a program.
func (b *Backend) inUse(s *ebiten.Shader) bool {
	for _, k := range b.kage {
		if k == s {
			return true
		}
	}
	for _, k := range b.programs {
		if k == s {
			return true
		}
	}
	return false
}

func (b *Backend) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	id, err := b.Resources.LinkProgram(vs, fs)
	if err != nil {
		return 0, err
	}
	b.programs[id] = b.kage[fs]
	return id, nil
}

func (b *Backend) DeleteProgram(p gpu.ProgramID) error {
	if err := b.Resources.DeleteProgram(p); err != nil {
		return err
	}
	s, ok := b.programs[p]
	delete(b.programs, p)
	if ok && !b.inUse(s) {
		s.Deallocate()
	}
	return nil
}

func (b *Backend) Clear(c color.Color) error {
	if b.target == nil {
		return gpu.ErrNoTarget
	}
	b.target.Fill(c)
	b.CountClear()
	return nil
}

func (b *Backend) DrawPrimitives(p gpu.ProgramID, buf gpu.BufferID, topology gpu.Topology) error {
	if b.target == nil {
		return gpu.ErrNoTarget
	}
	_, vertices, indices, err := b.Prepare(p, buf, topology)
	if err != nil {
		return fmt.Errorf("ebiten: draw: %w", err)
	}
	kage := b.programs[p]

	bounds := b.target.Bounds()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())
	b.vs = b.vs[:0]
	for _, v := range vertices {
		x, y := v.NDC()
		b.vs = append(b.vs, ebiten.Vertex{
			DstX:   float32(bounds.Min.X) + (x+1)/2*w,
			DstY:   float32(bounds.Min.Y) + (1-y)/2*h,
			ColorR: v.Color.V[0],
			ColorG: v.Color.V[1],
			ColorB: v.Color.V[2],
			ColorA: v.Color.V[3],
		})
	}
	b.target.DrawTrianglesShader(b.vs, indices, kage, &ebiten.DrawTrianglesShaderOptions{})
	b.CountDraw(topology, len(vertices))
	return nil
}

func (b *Backend) Close() {
	live := make(map[*ebiten.Shader]struct{}, len(b.kage)+len(b.programs))
	for _, s := range b.kage {
		live[s] = struct{}{}
	}
	for _, s := range b.programs {
		live[s] = struct{}{}
	}
	for s := range live {
		s.Deallocate()
	}
	clear(b.kage)
	clear(b.programs)
	b.target = nil
	b.Reset()
}
