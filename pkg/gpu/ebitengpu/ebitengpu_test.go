package ebitengpu

import (
	"errors"
	"testing"

	"go-quad/pkg/gpu"
	"go-quad/pkg/shader"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	vertexSrc   = "package main\nfunc Vertex(position vec2, color vec4) (vec4, vec4) { return vec4(position, 0, 1), color }"
	fragmentSrc = "package main\nfunc Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 { return color }"
)

func TestCompileShaderRejectedByEbiten(t *testing.T) {
	errKage := errors.New("kage: unsupported builtin")
	orig := newShader
	newShader = func([]byte) (*ebiten.Shader, error) { return nil, errKage }
	t.Cleanup(func() { newShader = orig })

	b := New()
	_, err := b.CompileShader(shader.Fragment, fragmentSrc)
	var cerr *gpu.ShaderCompilationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, shader.Fragment, cerr.Stage)
	assert.ErrorIs(t, err, errKage)

	assert.Equal(t, 0, b.Stats().Shaders)
	assert.Empty(t, b.kage)
}

func TestDeleteVertexShader(t *testing.T) {
	b := New()
	vs, err := b.CompileShader(shader.Vertex, vertexSrc)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Stats().Shaders)

	require.NoError(t, b.DeleteShader(vs))
	assert.ErrorIs(t, b.DeleteShader(vs), gpu.ErrUnknownShader)
	assert.Equal(t, 0, b.Stats().Shaders)
}
