package shader

import (
	"go/token"
	"math"
)

// expr is a type-checked expression node.
type expr interface {
	typ() Type
	eval(env []Value) Value
}

type constExpr struct {
	v Value
}

func (e *constExpr) typ() Type            { return e.v.T }
func (e *constExpr) eval(_ []Value) Value { return e.v }

// localExpr reads a parameter or a local variable slot.
type localExpr struct {
	slot int
	name string
	t    Type
}

func (e *localExpr) typ() Type              { return e.t }
func (e *localExpr) eval(env []Value) Value { return env[e.slot] }

type negExpr struct {
	x expr
}

func (e *negExpr) typ() Type { return e.x.typ() }

func (e *negExpr) eval(env []Value) Value {
	v := e.x.eval(env)
	for i := 0; i < v.T.Components(); i++ {
		v.V[i] = -v.V[i]
	}
	return v
}

// binaryExpr is component-wise arithmetic. A float operand is splatted
// across the other operand's components.
type binaryExpr struct {
	op   token.Token
	x, y expr
	t    Type
}

func (e *binaryExpr) typ() Type { return e.t }

func (e *binaryExpr) eval(env []Value) Value {
	a, b := e.x.eval(env), e.y.eval(env)
	out := Value{T: e.t}
	for i := 0; i < e.t.Components(); i++ {
		x, y := component(a, i), component(b, i)
		switch e.op {
		case token.ADD:
			out.V[i] = x + y
		case token.SUB:
			out.V[i] = x - y
		case token.MUL:
			out.V[i] = x * y
		case token.QUO:
			out.V[i] = x / y
		}
	}
	return out
}

func component(v Value, i int) float32 {
	if v.T == Float {
		return v.V[0]
	}
	return v.V[i]
}

type swizzleExpr struct {
	x   expr
	sel string
	idx []int
}

func (e *swizzleExpr) typ() Type { return VecOf(len(e.idx)) }

func (e *swizzleExpr) eval(env []Value) Value {
	v := e.x.eval(env)
	out := Value{T: e.typ()}
	for i, j := range e.idx {
		out.V[i] = v.V[j]
	}
	return out
}

// ctorExpr is float(...), vec2(...), vec3(...) or vec4(...).
type ctorExpr struct {
	t    Type
	args []expr
}

func (e *ctorExpr) typ() Type { return e.t }

func (e *ctorExpr) eval(env []Value) Value {
	out := Value{T: e.t}
	n := e.t.Components()
	if len(e.args) == 1 && e.args[0].typ() == Float {
		x := e.args[0].eval(env).V[0]
		for i := 0; i < n; i++ {
			out.V[i] = x
		}
		return out
	}
	k := 0
	for _, a := range e.args {
		v := a.eval(env)
		for i := 0; i < v.T.Components() && k < n; i++ {
			out.V[k] = v.V[i]
			k++
		}
	}
	return out
}

type builtin struct {
	arity int
	fn    func(args []float32) float32
}

var builtins = map[string]builtin{
	"abs": {1, func(a []float32) float32 { return float32(math.Abs(float64(a[0]))) }},
	"min": {2, func(a []float32) float32 { return min(a[0], a[1]) }},
	"max": {2, func(a []float32) float32 { return max(a[0], a[1]) }},
	"clamp": {3, func(a []float32) float32 {
		return min(max(a[0], a[1]), a[2])
	}},
	"mix": {3, func(a []float32) float32 { return a[0]*(1-a[2]) + a[1]*a[2] }},
}

// callExpr is a component-wise builtin call.
type callExpr struct {
	name string
	fn   builtin
	args []expr
	t    Type
}

func (e *callExpr) typ() Type { return e.t }

func (e *callExpr) eval(env []Value) Value {
	vals := make([]Value, len(e.args))
	for i, a := range e.args {
		vals[i] = a.eval(env)
	}
	out := Value{T: e.t}
	var in [3]float32
	for i := 0; i < e.t.Components(); i++ {
		for j, v := range vals {
			in[j] = component(v, i)
		}
		out.V[i] = e.fn.fn(in[:len(vals)])
	}
	return out
}

// stmt is a type-checked statement. Only assignments are kept; the return
// statement is stored on the module.
type stmt struct {
	slot    int
	name    string
	declare bool
	x       expr
}
