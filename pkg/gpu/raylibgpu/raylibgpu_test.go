package raylibgpu

import (
	"errors"
	"strings"
	"testing"

	"go-quad/pkg/gpu"
	"go-quad/pkg/shader"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vertexSrc   = "package main\nfunc Vertex(position vec2, color vec4) (vec4, vec4) { return vec4(position, 0, 1), color }"
	fragmentSrc = "package main\nfunc Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 { return color }"
)

// fakeDriver stands in for raylib's shader loader. Sources containing
// reject are treated as driver compile failures.
type fakeDriver struct {
	reject   string
	next     uint32
	live     map[uint32]bool
	unloaded []uint32
}

func installFakeDriver(t *testing.T, reject string) *fakeDriver {
	t.Helper()
	d := &fakeDriver{reject: reject, live: make(map[uint32]bool)}
	load, valid, unload := loadShader, shaderValid, unloadShader
	loadShader = func(vs, fs string) rl.Shader {
		if d.reject != "" && strings.Contains(fs, d.reject) {
			return rl.Shader{}
		}
		d.next++
		d.live[d.next] = true
		return rl.Shader{ID: d.next}
	}
	shaderValid = func(s rl.Shader) bool { return s.ID != 0 }
	unloadShader = func(s rl.Shader) {
		delete(d.live, s.ID)
		d.unloaded = append(d.unloaded, s.ID)
	}
	t.Cleanup(func() { loadShader, shaderValid, unloadShader = load, valid, unload })
	return d
}

func TestDriverRejectionIsCompileError(t *testing.T) {
	d := installFakeDriver(t, "finalColor = vec4(")
	b := New(64, 64)

	vs, err := b.CompileShader(shader.Vertex, vertexSrc)
	require.NoError(t, err)
	_, err = b.CompileShader(shader.Fragment, "package main\nfunc Fragment(dstPos vec4) vec4 { return vec4(1, 0, 0, 1) }")
	require.Error(t, err)
	var cerr *gpu.ShaderCompilationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, shader.Fragment, cerr.Stage)
	assert.ErrorIs(t, err, errInvalidShader)
	var lerr *gpu.LinkError
	assert.False(t, errors.As(err, &lerr))

	assert.Equal(t, 1, b.Stats().Shaders)
	assert.Empty(t, b.loaded)
	assert.Empty(t, d.live)

	require.NoError(t, b.DeleteShader(vs))
	assert.Equal(t, 0, b.Stats().Shaders)
}

func TestProgramOutlivesShaders(t *testing.T) {
	d := installFakeDriver(t, "")
	b := New(64, 64)

	vs, err := b.CompileShader(shader.Vertex, vertexSrc)
	require.NoError(t, err)
	fs, err := b.CompileShader(shader.Fragment, fragmentSrc)
	require.NoError(t, err)
	p, err := b.LinkProgram(vs, fs)
	require.NoError(t, err)

	require.NoError(t, b.DeleteShader(vs))
	require.NoError(t, b.DeleteShader(fs))
	assert.Empty(t, d.unloaded)
	assert.Len(t, d.live, 1)

	require.NoError(t, b.DeleteProgram(p))
	assert.Equal(t, []uint32{1}, d.unloaded)
	assert.Empty(t, d.live)
	assert.Equal(t, gpu.Stats{}, b.Stats())
}

func TestCloseUnloadsSharedShaderOnce(t *testing.T) {
	d := installFakeDriver(t, "")
	b := New(64, 64)

	vs, err := b.CompileShader(shader.Vertex, vertexSrc)
	require.NoError(t, err)
	fs, err := b.CompileShader(shader.Fragment, fragmentSrc)
	require.NoError(t, err)
	_, err = b.LinkProgram(vs, fs)
	require.NoError(t, err)

	b.Close()
	assert.Equal(t, []uint32{1}, d.unloaded)
	assert.Equal(t, 0, b.Stats().Shaders)
	assert.Equal(t, 0, b.Stats().Programs)
}
