package gpu

import (
	"fmt"

	"go-quad/pkg/shader"
)

// Buffer is the CPU copy of a vertex buffer.
type Buffer struct {
	Count  int
	Layout Layout
	data   map[string][]float32
}

// Attribute returns the data of one attribute.
func (b *Buffer) Attribute(name string) []float32 {
	return b.data[name]
}

// Vertex is the output of the vertex stage for one vertex.
type Vertex struct {
	Position shader.Value // clip space
	Color    shader.Value
}

// NDC returns the position after the perspective divide.
func (v Vertex) NDC() (x, y float32) {
	w := v.Position.V[3]
	if w == 0 {
		w = 1
	}
	return v.Position.V[0] / w, v.Position.V[1] / w
}

// Resources keeps compiled shaders, linked programs and vertex buffers on the
// CPU side. Concrete backends embed it and add the device-specific calls.
type Resources struct {
	shaders  map[ShaderID]*shader.Module
	programs map[ProgramID]*shader.Program
	buffers  map[BufferID]*Buffer
	next     uint32
	stats    Stats
}

// NewResources returns an empty resource table.
func NewResources() *Resources {
	return &Resources{
		shaders:  make(map[ShaderID]*shader.Module),
		programs: make(map[ProgramID]*shader.Program),
		buffers:  make(map[BufferID]*Buffer),
	}
}

func (r *Resources) id() uint32 {
	r.next++
	return r.next
}

// CompileShader compiles src and returns its handle.
func (r *Resources) CompileShader(stage shader.Stage, src string) (ShaderID, error) {
	m, err := shader.Compile(stage, src)
	if err != nil {
		return 0, &ShaderCompilationError{Stage: stage, Err: err}
	}
	id := ShaderID(r.id())
	r.shaders[id] = m
	r.stats.Shaders++
	return id, nil
}

// Shader returns the compiled module behind id.
func (r *Resources) Shader(id ShaderID) (*shader.Module, error) {
	m, ok := r.shaders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShader, id)
	}
	return m, nil
}

// DeleteShader forgets a shader. Programs linked from it keep their own
// reference to the module.
func (r *Resources) DeleteShader(id ShaderID) error {
	if _, err := r.Shader(id); err != nil {
		return err
	}
	delete(r.shaders, id)
	r.stats.Shaders--
	return nil
}

// LinkProgram links two compiled shaders.
func (r *Resources) LinkProgram(vs, fs ShaderID) (ProgramID, error) {
	vm, err := r.Shader(vs)
	if err != nil {
		return 0, &LinkError{Err: err}
	}
	fm, err := r.Shader(fs)
	if err != nil {
		return 0, &LinkError{Err: err}
	}
	p, err := shader.Link(vm, fm)
	if err != nil {
		return 0, &LinkError{Err: err}
	}
	id := ProgramID(r.id())
	r.programs[id] = p
	r.stats.Programs++
	return id, nil
}

// Program returns the linked program behind id.
func (r *Resources) Program(id ProgramID) (*shader.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProgram, id)
	}
	return p, nil
}

// ProgramAttributes returns the vertex inputs of a program as a layout.
func (r *Resources) ProgramAttributes(id ProgramID) (Layout, error) {
	p, err := r.Program(id)
	if err != nil {
		return nil, err
	}
	var l Layout
	for _, a := range p.Attributes() {
		l = append(l, Attribute{Name: a.Name, Components: a.Type.Components()})
	}
	return l, nil
}

// DeleteProgram forgets a program.
func (r *Resources) DeleteProgram(id ProgramID) error {
	if _, err := r.Program(id); err != nil {
		return err
	}
	delete(r.programs, id)
	r.stats.Programs--
	return nil
}

// CreateBuffer allocates a zeroed buffer of count vertices.
func (r *Resources) CreateBuffer(count int, layout Layout) (BufferID, error) {
	if count <= 0 {
		return 0, fmt.Errorf("gpu: invalid vertex count %d", count)
	}
	b := &Buffer{Count: count, Layout: layout, data: make(map[string][]float32, len(layout))}
	for _, a := range layout {
		if a.Components < 1 || a.Components > 4 {
			return 0, fmt.Errorf("gpu: attribute %s: invalid component count %d", a.Name, a.Components)
		}
		if _, dup := b.data[a.Name]; dup {
			return 0, fmt.Errorf("gpu: duplicate attribute %s", a.Name)
		}
		b.data[a.Name] = make([]float32, count*a.Components)
	}
	id := BufferID(r.id())
	r.buffers[id] = b
	r.stats.Buffers++
	return id, nil
}

// Buffer returns the buffer behind id.
func (r *Resources) Buffer(id BufferID) (*Buffer, error) {
	b, ok := r.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	return b, nil
}

// UploadAttribute copies data into one attribute of buf.
func (r *Resources) UploadAttribute(buf BufferID, name string, data []float32) error {
	b, err := r.Buffer(buf)
	if err != nil {
		return err
	}
	a, ok := b.Layout.Find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAttribute, name)
	}
	if want := b.Count * a.Components; len(data) != want {
		return fmt.Errorf("%w: %s: want %d floats, got %d", ErrAttributeSize, name, want, len(data))
	}
	copy(b.data[name], data)
	r.stats.Uploads++
	return nil
}

// DeleteBuffer frees a buffer.
func (r *Resources) DeleteBuffer(id BufferID) error {
	if _, err := r.Buffer(id); err != nil {
		return err
	}
	delete(r.buffers, id)
	r.stats.Buffers--
	return nil
}

// CountClear and CountDraw are called by backends after a successful
// device call.
func (r *Resources) CountClear() { r.stats.Clears++ }

func (r *Resources) CountDraw(t Topology, n int) {
	r.stats.Draws = append(r.stats.Draws, DrawCall{Topology: t, VertexCount: n})
}

// Stats returns a copy of the operation counters.
func (r *Resources) Stats() Stats {
	s := r.stats
	s.Draws = append([]DrawCall(nil), r.stats.Draws...)
	return s
}

// Reset drops every resource.
func (r *Resources) Reset() {
	clear(r.shaders)
	clear(r.programs)
	clear(r.buffers)
	r.stats.Shaders = 0
	r.stats.Programs = 0
	r.stats.Buffers = 0
}

// Prepare resolves a draw call: it runs the vertex stage over every vertex of
// buf and expands the topology into a triangle index list.
func (r *Resources) Prepare(p ProgramID, buf BufferID, t Topology) (*shader.Program, []Vertex, []uint16, error) {
	prog, err := r.Program(p)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := r.Buffer(buf)
	if err != nil {
		return nil, nil, nil, err
	}
	indices, err := TriangleIndices(t, b.Count)
	if err != nil {
		return nil, nil, nil, err
	}
	vertices, err := RunVertexStage(prog, b)
	if err != nil {
		return nil, nil, nil, err
	}
	return prog, vertices, indices, nil
}

// RunVertexStage evaluates the vertex program of p for every vertex of b.
// Program inputs are matched to buffer attributes by name.
func RunVertexStage(p *shader.Program, b *Buffer) ([]Vertex, error) {
	params := p.Attributes()
	sources := make([][]float32, len(params))
	for i, param := range params {
		a, ok := b.Layout.Find(param.Name)
		if !ok {
			return nil, fmt.Errorf("%w: program input %s", ErrUnknownAttribute, param.Name)
		}
		if a.Components != param.Type.Components() {
			return nil, fmt.Errorf("%w: %s has %d components, program expects %s", ErrAttributeSize, a.Name, a.Components, param.Type)
		}
		sources[i] = b.data[a.Name]
	}
	out := make([]Vertex, b.Count)
	args := make([]shader.Value, len(params))
	for v := 0; v < b.Count; v++ {
		for i, param := range params {
			n := param.Type.Components()
			args[i] = shader.FromSlice(param.Type, sources[i][v*n:(v+1)*n])
		}
		pos, col, err := p.Transform(args)
		if err != nil {
			return nil, err
		}
		out[v] = Vertex{Position: pos, Color: col}
	}
	return out, nil
}
