// Package raylibgpu implements gpu.Backend with raylib. Fragment programs are
// translated to GLSL and loaded with LoadShaderFromMemory; geometry goes
// through rlgl immediate mode after the vertex stage has run on the CPU.
//
// A window must be open (rl.InitWindow) before any call, and Clear and
// DrawPrimitives must run between rl.BeginDrawing and rl.EndDrawing.
package raylibgpu

import (
	"errors"
	"fmt"
	"image/color"

	"go-quad/pkg/gpu"
	"go-quad/pkg/render"
	"go-quad/pkg/shader"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// passThroughVertex forwards rlgl's immediate-mode vertices. The program's
// own vertex stage has already run on the CPU.
const passThroughVertex = `#version 330

in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec4 vertexColor;

uniform mat4 mvp;

out vec2 fragTexCoord;
out vec4 fragColor;

void main() {
	fragTexCoord = vertexTexCoord;
	fragColor = vertexColor;
	gl_Position = mvp*vec4(vertexPosition, 1.0);
}
`

var errInvalidShader = errors.New("raylib rejected the shader")

// Shader loading entry points. Tests replace them.
var (
	loadShader   = rl.LoadShaderFromMemory
	shaderValid  = rl.IsShaderValid
	unloadShader = rl.UnloadShader
)

type Backend struct {
	*gpu.Resources
	width, height int32
	loaded        map[gpu.ShaderID]rl.Shader
	programs      map[gpu.ProgramID]rl.Shader
}

// New returns a backend drawing into a width x height screen.
func New(width, height int32) *Backend {
	return &Backend{
		Resources: gpu.NewResources(),
		width:     width,
		height:    height,
		loaded:    make(map[gpu.ShaderID]rl.Shader),
		programs:  make(map[gpu.ProgramID]rl.Shader),
	}
}

func (b *Backend) Name() string { return "raylib" }

// CompileShader loads fragment shaders into raylib right away, paired with
// the pass-through vertex stage, so a source the driver rejects fails here
// and not at link time.
func (b *Backend) CompileShader(stage shader.Stage, src string) (gpu.ShaderID, error) {
	id, err := b.Resources.CompileShader(stage, src)
	if err != nil {
		return 0, err
	}
	if stage != shader.Fragment {
		return id, nil
	}
	m, err := b.Shader(id)
	if err != nil {
		return 0, err
	}
	code, err := m.GLSL()
	if err != nil {
		_ = b.Resources.DeleteShader(id)
		return 0, &gpu.ShaderCompilationError{Stage: stage, Err: err}
	}
	s := loadShader(passThroughVertex, code)
	if !shaderValid(s) {
		unloadShader(s)
		_ = b.Resources.DeleteShader(id)
		return 0, &gpu.ShaderCompilationError{Stage: stage, Err: errInvalidShader}
	}
	b.loaded[id] = s
	return id, nil
}

func (b *Backend) DeleteShader(id gpu.ShaderID) error {
	if err := b.Resources.DeleteShader(id); err != nil {
		return err
	}
	s, ok := b.loaded[id]
	delete(b.loaded, id)
	if ok && !b.inUse(s) {
		unloadShader(s)
	}
	return nil
}

func (b *Backend) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	id, err := b.Resources.LinkProgram(vs, fs)
	if err != nil {
		return 0, err
	}
	b.programs[id] = b.loaded[fs]
	return id, nil
}

func (b *Backend) DeleteProgram(p gpu.ProgramID) error {
	if err := b.Resources.DeleteProgram(p); err != nil {
		return err
	}
	s, ok := b.programs[p]
	delete(b.programs, p)
	if ok && !b.inUse(s) {
		unloadShader(s)
	}
	return nil
}

// inUse reports whether a shader or a program still holds the raylib
// shader s.
func (b *Backend) inUse(s rl.Shader) bool {
	for _, l := range b.loaded {
		if l.ID == s.ID {
			return true
		}
	}
	for _, l := range b.programs {
		if l.ID == s.ID {
			return true
		}
	}
	return false
}

func (b *Backend) Clear(c color.Color) error {
	rl.ClearBackground(render.ToRGBA(render.FromColor(c)))
	b.CountClear()
	return nil
}

func (b *Backend) DrawPrimitives(p gpu.ProgramID, buf gpu.BufferID, topology gpu.Topology) error {
	_, vertices, indices, err := b.Prepare(p, buf, topology)
	if err != nil {
		return fmt.Errorf("raylib: draw: %w", err)
	}
	w, h := float32(b.width), float32(b.height)

	rl.BeginShaderMode(b.programs[p])
	rl.DisableBackfaceCulling()
	rl.Begin(rl.Triangles)
	for _, i := range indices {
		v := vertices[i]
		c := render.ToRGBA(v.Color.V)
		x, y := v.NDC()
		rl.Color4ub(c.R, c.G, c.B, c.A)
		rl.Vertex2f((x+1)/2*w, (1-y)/2*h)
	}
	rl.End()
	rl.EnableBackfaceCulling()
	rl.EndShaderMode()

	b.CountDraw(topology, len(vertices))
	return nil
}

func (b *Backend) Close() {
	live := make(map[uint32]rl.Shader, len(b.loaded)+len(b.programs))
	for _, s := range b.loaded {
		live[s.ID] = s
	}
	for _, s := range b.programs {
		live[s.ID] = s
	}
	for _, s := range live {
		unloadShader(s)
	}
	clear(b.loaded)
	clear(b.programs)
	b.Reset()
}
