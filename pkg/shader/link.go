package shader

import "fmt"

// Program is a linked vertex/fragment pair.
type Program struct {
	Vertex   *Module
	Fragment *Module
}

// Link checks that vs and fs form a program: vs must be a vertex module, fs
// a fragment module, and the vertex color varying must match the fragment's
// color input.
func Link(vs, fs *Module) (*Program, error) {
	if vs == nil || fs == nil {
		return nil, &Error{Msg: "link: missing shader module"}
	}
	if vs.Stage != Vertex {
		return nil, &Error{Msg: fmt.Sprintf("link: %s module attached as vertex shader", vs.Stage)}
	}
	if fs.Stage != Fragment {
		return nil, &Error{Msg: fmt.Sprintf("link: %s module attached as fragment shader", fs.Stage)}
	}
	varyings := vs.Results[1:]
	if len(fs.Params) == len(fragmentParams) {
		if len(varyings) != 1 || varyings[0] != fs.Params[2].Type {
			return nil, &Error{Msg: fmt.Sprintf("link: vertex varyings %v do not match fragment input %s", varyings, fs.Params[2].Type)}
		}
	}
	return &Program{Vertex: vs, Fragment: fs}, nil
}

// Attributes returns the vertex inputs of the program.
func (p *Program) Attributes() []Param {
	return p.Vertex.Params
}

// Transform runs the vertex stage for one vertex and returns its clip-space
// position and color varying.
func (p *Program) Transform(attrs []Value) (position, color Value, err error) {
	out, err := p.Vertex.Eval(attrs)
	if err != nil {
		return Value{}, Value{}, err
	}
	return out[0], out[1], nil
}

// Shade runs the fragment stage for one fragment. Inputs the Fragment
// function does not declare are dropped.
func (p *Program) Shade(dstPos, srcPos, color Value) (Value, error) {
	args := []Value{dstPos, srcPos, color}
	out, err := p.Fragment.Eval(args[:len(p.Fragment.Params)])
	if err != nil {
		return Value{}, err
	}
	return out[0], nil
}
