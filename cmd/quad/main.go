// cmd/quad/main.go
package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"go-quad/internal/assets"
	"go-quad/internal/config"
	"go-quad/internal/quad"
	"go-quad/internal/window"
	"go-quad/pkg/gpu/ebitengpu"
	"go-quad/pkg/render"
)

func main() {
	if config.EnableProfiler {
		go func() {
			log.Println(http.ListenAndServe(config.ProfilerAddr, nil))
		}()
	}

	backend := ebitengpu.New()
	ctx := render.NewContext(backend, config.ClearColor)
	defer ctx.Close()

	shaders := assets.NewShaderLibrary()
	vs, err := shaders.Source(config.VertexShader)
	if err != nil {
		log.Fatal(err)
	}
	fs, err := shaders.Source(config.FragmentShader)
	if err != nil {
		log.Fatal(err)
	}

	renderer := quad.NewRenderer()
	if err := renderer.Initialize(ctx, vs, fs, config.QuadVertexCount); err != nil {
		log.Fatal(err)
	}
	defer renderer.Release()
	if err := renderer.SetVertexData(config.QuadPositions, config.QuadColors); err != nil {
		log.Fatal(err)
	}

	win := window.New(config.ScreenWidth, config.ScreenHeight, config.WindowTitle, backend, config.MaxDeltaTime)
	win.Register(renderer.Hook(ctx))
	if err := win.Run(); err != nil {
		log.Fatal(err)
	}
}
