package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strings"
)

//go:embed shaders/*.kage
var shaderFS embed.FS

// ShaderLibrary загружает и кэширует исходники шейдеров по имени.
type ShaderLibrary struct {
	fsys    fs.FS
	sources map[string]string
}

// NewShaderLibrary создает библиотеку поверх встроенных шейдеров.
func NewShaderLibrary() *ShaderLibrary {
	sub, err := fs.Sub(shaderFS, "shaders")
	if err != nil {
		panic(err)
	}
	return NewShaderLibraryFS(sub)
}

// NewShaderLibraryFS создает библиотеку поверх произвольной файловой системы
// с файлами <name>.kage в корне.
func NewShaderLibraryFS(fsys fs.FS) *ShaderLibrary {
	return &ShaderLibrary{
		fsys:    fsys,
		sources: make(map[string]string),
	}
}

// Source возвращает исходник шейдера name.
func (l *ShaderLibrary) Source(name string) (string, error) {
	if src, ok := l.sources[name]; ok {
		return src, nil
	}
	data, err := fs.ReadFile(l.fsys, name+".kage")
	if err != nil {
		return "", fmt.Errorf("assets: shader %q: %w", name, err)
	}
	src := string(data)
	if strings.TrimSpace(src) == "" {
		log.Printf("WARNING: shader %s is empty", name)
	}
	l.sources[name] = src
	return src, nil
}

// Names возвращает имена всех доступных шейдеров.
func (l *ShaderLibrary) Names() []string {
	matches, err := fs.Glob(l.fsys, "*.kage")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".kage"))
	}
	sort.Strings(names)
	return names
}
