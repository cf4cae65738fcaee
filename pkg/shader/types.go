// Package shader compiles the small Kage subset used by the quad programs.
//
// Sources are ordinary Go files (package main) with one entry point:
// Vertex for the vertex stage, Fragment for the fragment stage. The compiler
// type-checks the entry point and keeps a typed tree that can be evaluated on
// the CPU or emitted as GLSL.
package shader

import (
	"fmt"
	"go/token"
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	Vertex Stage = iota
	Fragment
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// EntryPoint returns the function name a source must define for the stage.
func (s Stage) EntryPoint() string {
	if s == Vertex {
		return "Vertex"
	}
	return "Fragment"
}

// Type is a value type of the shader language.
type Type int

const (
	Invalid Type = iota
	Float
	Vec2
	Vec3
	Vec4
)

var typeNames = map[string]Type{
	"float": Float,
	"vec2":  Vec2,
	"vec3":  Vec3,
	"vec4":  Vec4,
}

func (t Type) String() string {
	switch t {
	case Float:
		return "float"
	case Vec2:
		return "vec2"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	}
	return "invalid"
}

// Components returns the number of float components of t.
func (t Type) Components() int {
	if t == Invalid {
		return 0
	}
	return int(t)
}

// VecOf returns the type with n components.
func VecOf(n int) Type {
	if n < 1 || n > 4 {
		return Invalid
	}
	return Type(n)
}

// Value is a typed shader value. Unused components are zero.
type Value struct {
	T Type
	V [4]float32
}

// F returns a float value.
func F(x float32) Value { return Value{T: Float, V: [4]float32{x}} }

// V2 returns a vec2 value.
func V2(x, y float32) Value { return Value{T: Vec2, V: [4]float32{x, y}} }

// V3 returns a vec3 value.
func V3(x, y, z float32) Value { return Value{T: Vec3, V: [4]float32{x, y, z}} }

// V4 returns a vec4 value.
func V4(x, y, z, w float32) Value { return Value{T: Vec4, V: [4]float32{x, y, z, w}} }

// FromSlice builds a value of type t from the first t.Components() floats.
func FromSlice(t Type, data []float32) Value {
	v := Value{T: t}
	copy(v.V[:t.Components()], data)
	return v
}

// Param is a named, typed entry point parameter.
type Param struct {
	Name string
	Type Type
}

// Error is a compile or link error with an optional source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("shader: %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return "shader: " + e.Msg
}
