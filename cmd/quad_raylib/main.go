package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"go-quad/internal/assets"
	"go-quad/internal/config"
	"go-quad/internal/quad"
	"go-quad/internal/window"
	"go-quad/pkg/gpu/raylibgpu"
	"go-quad/pkg/render"
)

func main() {
	if config.EnableProfiler {
		go func() {
			log.Println(http.ListenAndServe(config.ProfilerAddr, nil))
		}()
	}

	// --- Окно и GL-контекст ---
	win := window.NewRaylib(config.ScreenWidth, config.ScreenHeight, config.WindowTitle+" | raylib", config.TargetFPS)
	win.Open()

	backend := raylibgpu.New(config.ScreenWidth, config.ScreenHeight)
	ctx := render.NewContext(backend, config.ClearColor)

	shaders := assets.NewShaderLibrary()
	vs, err := shaders.Source(config.VertexShader)
	if err != nil {
		log.Fatal(err)
	}
	fs, err := shaders.Source(config.FragmentShader)
	if err != nil {
		log.Fatal(err)
	}

	// --- Программа и буфер на 4 вершины ---
	renderer := quad.NewRenderer()
	if err := renderer.Initialize(ctx, vs, fs, config.QuadVertexCount); err != nil {
		log.Fatal(err)
	}
	if err := renderer.SetVertexData(config.QuadPositions, config.QuadColors); err != nil {
		log.Fatal(err)
	}

	// --- Главный цикл ---
	win.Register(renderer.Hook(ctx))
	err = win.Run()
	renderer.Release()
	ctx.Close()
	win.Close()
	if err != nil {
		log.Fatal(err)
	}
}
