package quad

import (
	"errors"
	"image/color"
	"testing"

	"go-quad/internal/assets"
	"go-quad/internal/config"
	"go-quad/internal/frame"
	"go-quad/pkg/gpu"
	"go-quad/pkg/gpu/soft"
	"go-quad/pkg/render"
	"go-quad/pkg/shader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f32"
)

const size = 65

func sources(t *testing.T) (string, string) {
	t.Helper()
	lib := assets.NewShaderLibrary()
	vs, err := lib.Source(config.VertexShader)
	require.NoError(t, err)
	fs, err := lib.Source(config.FragmentShader)
	require.NoError(t, err)
	return vs, fs
}

func newQuad(t *testing.T) (*Renderer, *render.Context, *soft.Backend) {
	t.Helper()
	b := soft.New(size, size)
	ctx := render.NewContext(b, config.ClearColor)
	vs, fs := sources(t)
	r := NewRenderer()
	require.NoError(t, r.Initialize(ctx, vs, fs, config.QuadVertexCount))
	return r, ctx, b
}

func TestDrawIssuesOneStripCall(t *testing.T) {
	r, ctx, b := newQuad(t)
	require.NoError(t, r.SetVertexData(config.QuadPositions, config.QuadColors))
	require.NoError(t, r.Draw(ctx))

	stats := b.Stats()
	assert.Equal(t, []gpu.DrawCall{{Topology: gpu.TriangleStrip, VertexCount: 4}}, stats.Draws)
	assert.Equal(t, 1, stats.Clears)
	assert.Equal(t, 1, stats.Buffers)
	assert.Equal(t, 1, stats.Programs)
	assert.Equal(t, 0, stats.Shaders)
}

func TestSetVertexDataSizeMismatch(t *testing.T) {
	r, _, b := newQuad(t)

	for _, n := range []int{3, 5} {
		positions := make([]f32.Vec2, n)
		err := r.SetVertexData(positions, config.QuadColors)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSetup)
		var mismatch *SizeMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, SizeMismatchError{Attribute: "position", Want: 4, Got: n}, *mismatch)
	}

	err := r.SetVertexData(config.QuadPositions, config.QuadColors[:2])
	var mismatch *SizeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "color", mismatch.Attribute)

	assert.Equal(t, 0, b.Stats().Uploads)
}

func TestInitializeInvalidShader(t *testing.T) {
	b := soft.New(size, size)
	ctx := render.NewContext(b, config.ClearColor)
	vs, _ := sources(t)

	r := NewRenderer()
	err := r.Initialize(ctx, vs, "package main\n\nfunc Fragment(dstPos vec4 vec4 {", 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSetup)
	var cerr *gpu.ShaderCompilationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 0, b.Stats().Buffers)
	assert.Equal(t, 0, b.Stats().Shaders)

	assert.ErrorIs(t, r.Draw(ctx), ErrNotInitialized)
	assert.ErrorIs(t, r.SetVertexData(config.QuadPositions, config.QuadColors), ErrNotInitialized)
}

func TestInitializeLinkErrors(t *testing.T) {
	_, fs := sources(t)
	tests := []struct {
		name string
		vs   string
	}{
		{"wrong stage", fs},
		{"unknown input", "package main\nfunc Vertex(uv vec2, color vec4) (vec4, vec4) { return vec4(uv, 0, 1), color }"},
		{"input width", "package main\nfunc Vertex(position vec3, color vec4) (vec4, vec4) { return vec4(position, 1), color }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := soft.New(size, size)
			ctx := render.NewContext(b, config.ClearColor)
			err := NewRenderer().Initialize(ctx, tt.vs, fs, 4)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSetup)
			assert.Equal(t, 0, b.Stats().Buffers)
			assert.Equal(t, 0, b.Stats().Programs)
		})
	}
}

func TestInitializeVertexCount(t *testing.T) {
	b := soft.New(size, size)
	ctx := render.NewContext(b, config.ClearColor)
	vs, fs := sources(t)
	assert.ErrorIs(t, NewRenderer().Initialize(ctx, vs, fs, 2), ErrSetup)

	r := NewRenderer()
	require.NoError(t, r.Initialize(ctx, vs, fs, 4))
	assert.ErrorIs(t, r.Initialize(ctx, vs, fs, 4), ErrSetup)
}

func TestDrawTwiceIsPixelIdentical(t *testing.T) {
	r, ctx, b := newQuad(t)
	require.NoError(t, r.SetVertexData(config.QuadPositions, config.QuadColors))
	require.NoError(t, r.Draw(ctx))
	first := b.Image()
	require.NoError(t, r.Draw(ctx))
	assert.Equal(t, first.Pix, b.Image().Pix)
}

func TestEndToEndColors(t *testing.T) {
	r, ctx, b := newQuad(t)
	require.NoError(t, r.SetVertexData(config.QuadPositions, config.QuadColors))
	require.NoError(t, r.Draw(ctx))

	corners := []struct {
		x, y int
		want f32.Vec4
	}{
		{0, 0, f32.Vec4{1, 1, 0, 1}},
		{size - 1, 0, f32.Vec4{1, 0, 0, 1}},
		{0, size - 1, f32.Vec4{0, 0, 1, 1}},
		{size - 1, size - 1, f32.Vec4{0, 1, 0, 1}},
	}
	for _, c := range corners {
		got := b.At(c.x, c.y)
		assert.InDeltaSlice(t, c.want[:], got[:], 0.02, "pixel %d,%d", c.x, c.y)
	}

	// With the strip order TL, TR, BL, BR the center lies on the shared TR-BL
	// edge, so it interpolates red and blue only and not the four-color
	// average. See "Center pixel" in DESIGN.md.
	center := b.At(size/2, size/2)
	assert.InDeltaSlice(t, []float32{0.5, 0, 0.5, 1}, center[:], 1e-4)
}

func TestClearBeforeDraw(t *testing.T) {
	b := soft.New(size, size)
	ctx := render.NewContext(b, color.RGBA{255, 0, 255, 255})
	vs, fs := sources(t)
	r := NewRenderer()
	require.NoError(t, r.Initialize(ctx, vs, fs, 3))
	require.NoError(t, r.SetVertexData(
		[]f32.Vec2{{-1, 1}, {1, 1}, {-1, -1}},
		[]f32.Vec4{{0, 0, 0, 1}, {0, 0, 0, 1}, {0, 0, 0, 1}},
	))
	require.NoError(t, r.Draw(ctx))

	uncovered := b.At(size-1, size-1)
	assert.Equal(t, f32.Vec4{1, 0, 1, 1}, uncovered)
	covered := b.At(0, 0)
	assert.InDeltaSlice(t, []float32{0, 0, 0, 1}, covered[:], 1e-5)
}

// rejectingDevice accepts every source in the shared compiler but fails the
// device-side fragment compile, the way ebiten's NewShader can.
type rejectingDevice struct {
	*soft.Backend
}

var errDeviceRejected = errors.New("device rejected shader")

func (d rejectingDevice) CompileShader(stage shader.Stage, src string) (gpu.ShaderID, error) {
	id, err := d.Backend.CompileShader(stage, src)
	if err != nil || stage != shader.Fragment {
		return id, err
	}
	_ = d.Backend.DeleteShader(id)
	return 0, &gpu.ShaderCompilationError{Stage: stage, Err: errDeviceRejected}
}

func TestInitializeDeviceRejectionLeaksNothing(t *testing.T) {
	b := rejectingDevice{soft.New(size, size)}
	ctx := render.NewContext(b, config.ClearColor)
	vs, fs := sources(t)

	r := NewRenderer()
	err := r.Initialize(ctx, vs, fs, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSetup)
	assert.ErrorIs(t, err, errDeviceRejected)

	stats := b.Stats()
	assert.Equal(t, 0, stats.Shaders)
	assert.Equal(t, 0, stats.Programs)
	assert.Equal(t, 0, stats.Buffers)
}

type lostContext struct {
	*soft.Backend
}

var errContextLost = errors.New("context lost")

func (lostContext) DrawPrimitives(gpu.ProgramID, gpu.BufferID, gpu.Topology) error {
	return errContextLost
}

func TestDrawErrorPropagates(t *testing.T) {
	b := lostContext{soft.New(size, size)}
	ctx := render.NewContext(b, config.ClearColor)
	vs, fs := sources(t)
	r := NewRenderer()
	require.NoError(t, r.Initialize(ctx, vs, fs, 4))
	require.NoError(t, r.SetVertexData(config.QuadPositions, config.QuadColors))

	d := frame.NewDispatcher(config.MaxDeltaTime)
	d.Subscribe(r.Hook(ctx))
	err := d.Dispatch(0.016)
	assert.ErrorIs(t, err, ErrDraw)
	assert.ErrorIs(t, err, errContextLost)
}

func TestHookDrawsEveryFrame(t *testing.T) {
	r, ctx, b := newQuad(t)
	require.NoError(t, r.SetVertexData(config.QuadPositions, config.QuadColors))

	d := frame.NewDispatcher(config.MaxDeltaTime)
	d.Subscribe(r.Hook(ctx))
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(0.016))
	}
	assert.Len(t, b.Stats().Draws, 3)
	assert.Equal(t, 3, b.Stats().Clears)
}

func TestRelease(t *testing.T) {
	r, ctx, b := newQuad(t)
	r.Release()
	assert.Equal(t, 0, b.Stats().Buffers)
	assert.Equal(t, 0, b.Stats().Programs)
	assert.Equal(t, 0, b.Stats().Shaders)
	assert.ErrorIs(t, r.Draw(ctx), ErrNotInitialized)

	vs, fs := sources(t)
	require.NoError(t, r.Initialize(ctx, vs, fs, 4))
}
