package assets

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"go-quad/internal/config"
	"go-quad/pkg/shader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedShadersCompile(t *testing.T) {
	lib := NewShaderLibrary()
	assert.Equal(t, []string{config.FragmentShader, config.VertexShader}, lib.Names())

	vsrc, err := lib.Source(config.VertexShader)
	require.NoError(t, err)
	vs, err := shader.Compile(shader.Vertex, vsrc)
	require.NoError(t, err)

	fsrc, err := lib.Source(config.FragmentShader)
	require.NoError(t, err)
	fm, err := shader.Compile(shader.Fragment, fsrc)
	require.NoError(t, err)

	_, err = shader.Link(vs, fm)
	require.NoError(t, err)
}

func TestSourceIsCached(t *testing.T) {
	mem := fstest.MapFS{"a.kage": {Data: []byte("package main\n")}}
	lib := NewShaderLibraryFS(mem)
	src, err := lib.Source("a")
	require.NoError(t, err)
	delete(mem, "a.kage")
	cached, err := lib.Source("a")
	require.NoError(t, err)
	assert.Equal(t, src, cached)

	_, err = lib.Source("missing")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
