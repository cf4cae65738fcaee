// internal/config/config.go
package config

import (
	"image/color"

	"golang.org/x/image/math/f32"
)

const (
	ScreenWidth  = 512
	ScreenHeight = 512
	WindowTitle  = "Varying colour quad"
	TargetFPS    = 60
	MaxDeltaTime = 0.06 // секунды, защита от скачков после паузы

	QuadVertexCount = 4

	VertexShader   = "quad_vertex"
	FragmentShader = "quad_fragment"

	EnableProfiler = false
	ProfilerAddr   = "localhost:6060"
)

var (
	ClearColor = color.RGBA{0, 0, 0, 255}

	// Порядок вершин для triangle strip: TL, TR, BL, BR.
	QuadPositions = []f32.Vec2{
		{-1, +1},
		{+1, +1},
		{-1, -1},
		{+1, -1},
	}
	QuadColors = []f32.Vec4{
		{1, 1, 0, 1}, // yellow
		{1, 0, 0, 1}, // red
		{0, 0, 1, 1}, // blue
		{0, 1, 0, 1}, // green
	}
)
