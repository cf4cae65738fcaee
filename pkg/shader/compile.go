package shader

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/scanner"
	"go/token"
)

// Module is a compiled entry point.
type Module struct {
	Stage   Stage
	Params  []Param
	Results []Type

	slots []Param // params first, then locals in declaration order
	body  []stmt
	ret   []expr
}

// fragmentParams are the parameter types of a Kage Fragment function, in
// order. Trailing parameters may be omitted.
var fragmentParams = []Type{Vec4, Vec2, Vec4}

// Compile parses and type-checks src as the entry point of stage.
func Compile(stage Stage, src string) (*Module, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, stage.String()+".kage", src, parser.SkipObjectResolution)
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok && len(list) > 0 {
			return nil, &Error{Pos: list[0].Pos, Msg: list[0].Msg}
		}
		return nil, &Error{Msg: err.Error()}
	}
	c := &checker{fset: fset, scope: make(map[string]int)}
	if f.Name.Name != "main" {
		return nil, c.errorf(f.Name.Pos(), "package must be main, got %s", f.Name.Name)
	}

	var entry *ast.FuncDecl
	for _, d := range f.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			return nil, c.errorf(d.Pos(), "unsupported top-level declaration")
		}
		if fd.Recv != nil || fd.Name.Name != stage.EntryPoint() {
			return nil, c.errorf(fd.Pos(), "unexpected function %s in %s shader", fd.Name.Name, stage)
		}
		if entry != nil {
			return nil, c.errorf(fd.Pos(), "%s redeclared", fd.Name.Name)
		}
		entry = fd
	}
	if entry == nil {
		return nil, &Error{Msg: fmt.Sprintf("missing %s entry point", stage.EntryPoint())}
	}

	m := &Module{Stage: stage}
	c.mod = m
	if err := c.signature(entry); err != nil {
		return nil, err
	}
	if err := c.checkStage(entry); err != nil {
		return nil, err
	}
	if err := c.block(entry); err != nil {
		return nil, err
	}
	return m, nil
}

type checker struct {
	fset  *token.FileSet
	mod   *Module
	scope map[string]int
}

func (c *checker) errorf(pos token.Pos, format string, args ...any) error {
	return &Error{Pos: c.fset.Position(pos), Msg: fmt.Sprintf(format, args...)}
}

func (c *checker) typeOf(e ast.Expr) (Type, error) {
	id, ok := e.(*ast.Ident)
	if !ok {
		return Invalid, c.errorf(e.Pos(), "unsupported type expression")
	}
	t, ok := typeNames[id.Name]
	if !ok {
		return Invalid, c.errorf(e.Pos(), "unknown type %s", id.Name)
	}
	return t, nil
}

func (c *checker) declare(pos token.Pos, name string, t Type) (int, error) {
	if name == "_" {
		return 0, c.errorf(pos, "blank identifier is not supported")
	}
	if _, ok := c.scope[name]; ok {
		return 0, c.errorf(pos, "%s redeclared", name)
	}
	if _, ok := typeNames[name]; ok {
		return 0, c.errorf(pos, "cannot use type name %s as a variable", name)
	}
	slot := len(c.mod.slots)
	c.mod.slots = append(c.mod.slots, Param{Name: name, Type: t})
	c.scope[name] = slot
	return slot, nil
}

func (c *checker) signature(fd *ast.FuncDecl) error {
	for _, field := range fd.Type.Params.List {
		t, err := c.typeOf(field.Type)
		if err != nil {
			return err
		}
		for _, name := range field.Names {
			if _, err := c.declare(name.Pos(), name.Name, t); err != nil {
				return err
			}
			c.mod.Params = append(c.mod.Params, Param{Name: name.Name, Type: t})
		}
	}
	if fd.Type.Results != nil {
		for _, field := range fd.Type.Results.List {
			if len(field.Names) > 0 {
				return c.errorf(field.Pos(), "named results are not supported")
			}
			t, err := c.typeOf(field.Type)
			if err != nil {
				return err
			}
			c.mod.Results = append(c.mod.Results, t)
		}
	}
	return nil
}

func (c *checker) checkStage(fd *ast.FuncDecl) error {
	m := c.mod
	switch m.Stage {
	case Vertex:
		if len(m.Params) == 0 {
			return c.errorf(fd.Pos(), "Vertex must take at least one attribute")
		}
		if len(m.Results) != 2 || m.Results[0] != Vec4 || m.Results[1] != Vec4 {
			return c.errorf(fd.Pos(), "Vertex must return (vec4, vec4)")
		}
	case Fragment:
		if len(m.Params) == 0 || len(m.Params) > len(fragmentParams) {
			return c.errorf(fd.Pos(), "Fragment must take 1 to %d parameters", len(fragmentParams))
		}
		for i, p := range m.Params {
			if p.Type != fragmentParams[i] {
				return c.errorf(fd.Pos(), "Fragment parameter %s must be %s, got %s", p.Name, fragmentParams[i], p.Type)
			}
		}
		if len(m.Results) != 1 || m.Results[0] != Vec4 {
			return c.errorf(fd.Pos(), "Fragment must return vec4")
		}
	}
	return nil
}

func (c *checker) block(fd *ast.FuncDecl) error {
	if fd.Body == nil {
		return c.errorf(fd.Pos(), "missing function body")
	}
	list := fd.Body.List
	for i, s := range list {
		switch s := s.(type) {
		case *ast.AssignStmt:
			if err := c.assign(s); err != nil {
				return err
			}
		case *ast.DeclStmt:
			if err := c.varDecl(s); err != nil {
				return err
			}
		case *ast.ReturnStmt:
			if i != len(list)-1 {
				return c.errorf(s.Pos(), "unreachable code after return")
			}
			return c.returns(s)
		default:
			return c.errorf(s.Pos(), "unsupported statement")
		}
	}
	return c.errorf(fd.Body.Rbrace, "missing return")
}

func (c *checker) assign(s *ast.AssignStmt) error {
	if len(s.Lhs) != 1 || len(s.Rhs) != 1 {
		return c.errorf(s.Pos(), "multiple assignment is not supported")
	}
	id, ok := s.Lhs[0].(*ast.Ident)
	if !ok {
		return c.errorf(s.Lhs[0].Pos(), "cannot assign to expression")
	}
	x, err := c.expr(s.Rhs[0])
	if err != nil {
		return err
	}
	switch s.Tok {
	case token.DEFINE:
		slot, err := c.declare(id.Pos(), id.Name, x.typ())
		if err != nil {
			return err
		}
		c.mod.body = append(c.mod.body, stmt{slot: slot, name: id.Name, declare: true, x: x})
	case token.ASSIGN:
		slot, ok := c.scope[id.Name]
		if !ok {
			return c.errorf(id.Pos(), "undefined: %s", id.Name)
		}
		if t := c.mod.slots[slot].Type; t != x.typ() {
			return c.errorf(s.Pos(), "cannot use %s value as %s in assignment", x.typ(), t)
		}
		c.mod.body = append(c.mod.body, stmt{slot: slot, name: id.Name, x: x})
	default:
		return c.errorf(s.Pos(), "unsupported assignment %s", s.Tok)
	}
	return nil
}

func (c *checker) varDecl(s *ast.DeclStmt) error {
	gd, ok := s.Decl.(*ast.GenDecl)
	if !ok || gd.Tok != token.VAR || len(gd.Specs) != 1 {
		return c.errorf(s.Pos(), "unsupported declaration")
	}
	vs := gd.Specs[0].(*ast.ValueSpec)
	if len(vs.Names) != 1 || len(vs.Values) > 1 {
		return c.errorf(s.Pos(), "multiple declaration is not supported")
	}
	var x expr
	if len(vs.Values) == 1 {
		var err error
		if x, err = c.expr(vs.Values[0]); err != nil {
			return err
		}
	}
	t := Invalid
	if vs.Type != nil {
		var err error
		if t, err = c.typeOf(vs.Type); err != nil {
			return err
		}
		if x != nil && x.typ() != t {
			return c.errorf(s.Pos(), "cannot use %s value as %s in variable declaration", x.typ(), t)
		}
	}
	if x == nil {
		if t == Invalid {
			return c.errorf(s.Pos(), "missing type or initializer")
		}
		x = &constExpr{v: Value{T: t}}
	}
	name := vs.Names[0]
	slot, err := c.declare(name.Pos(), name.Name, x.typ())
	if err != nil {
		return err
	}
	c.mod.body = append(c.mod.body, stmt{slot: slot, name: name.Name, declare: true, x: x})
	return nil
}

func (c *checker) returns(s *ast.ReturnStmt) error {
	if len(s.Results) != len(c.mod.Results) {
		return c.errorf(s.Pos(), "wrong number of return values: want %d, got %d", len(c.mod.Results), len(s.Results))
	}
	for i, r := range s.Results {
		x, err := c.expr(r)
		if err != nil {
			return err
		}
		if x.typ() != c.mod.Results[i] {
			return c.errorf(r.Pos(), "cannot use %s value as %s in return statement", x.typ(), c.mod.Results[i])
		}
		c.mod.ret = append(c.mod.ret, x)
	}
	return nil
}

func (c *checker) expr(e ast.Expr) (expr, error) {
	if v, ok, err := c.constant(e); err != nil {
		return nil, err
	} else if ok {
		f, _ := constant.Float32Val(constant.ToFloat(v))
		return &constExpr{v: F(f)}, nil
	}
	switch e := e.(type) {
	case *ast.BasicLit:
		return nil, c.errorf(e.Pos(), "unsupported literal %s", e.Value)
	case *ast.Ident:
		slot, ok := c.scope[e.Name]
		if !ok {
			return nil, c.errorf(e.Pos(), "undefined: %s", e.Name)
		}
		return &localExpr{slot: slot, name: e.Name, t: c.mod.slots[slot].Type}, nil
	case *ast.ParenExpr:
		return c.expr(e.X)
	case *ast.UnaryExpr:
		x, err := c.expr(e.X)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			return &negExpr{x: x}, nil
		}
		return nil, c.errorf(e.Pos(), "unsupported operator %s", e.Op)
	case *ast.BinaryExpr:
		return c.binary(e)
	case *ast.SelectorExpr:
		return c.swizzle(e)
	case *ast.CallExpr:
		return c.call(e)
	}
	return nil, c.errorf(e.Pos(), "unsupported expression")
}

func (c *checker) binary(e *ast.BinaryExpr) (expr, error) {
	switch e.Op {
	case token.ADD, token.SUB, token.MUL, token.QUO:
	default:
		return nil, c.errorf(e.OpPos, "unsupported operator %s", e.Op)
	}
	x, err := c.expr(e.X)
	if err != nil {
		return nil, err
	}
	y, err := c.expr(e.Y)
	if err != nil {
		return nil, err
	}
	t, ok := unify(x.typ(), y.typ())
	if !ok {
		return nil, c.errorf(e.OpPos, "invalid operation: mismatched types %s and %s", x.typ(), y.typ())
	}
	return &binaryExpr{op: e.Op, x: x, y: y, t: t}, nil
}

// constant folds an expression made only of numeric literals with Go's
// untyped constant rules, so 1/2 is 0 and 1.0/2 is 0.5. ok is false when e
// is not constant.
func (c *checker) constant(e ast.Expr) (v constant.Value, ok bool, err error) {
	switch e := e.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return nil, false, nil
		}
		v := constant.MakeFromLiteral(e.Value, e.Kind, 0)
		if v.Kind() == constant.Unknown {
			return nil, false, c.errorf(e.Pos(), "invalid number %s", e.Value)
		}
		return v, true, nil
	case *ast.ParenExpr:
		return c.constant(e.X)
	case *ast.UnaryExpr:
		if e.Op != token.ADD && e.Op != token.SUB {
			return nil, false, nil
		}
		x, ok, err := c.constant(e.X)
		if !ok || err != nil {
			return nil, false, err
		}
		return constant.UnaryOp(e.Op, x, 0), true, nil
	case *ast.BinaryExpr:
		switch e.Op {
		case token.ADD, token.SUB, token.MUL, token.QUO:
		default:
			return nil, false, nil
		}
		x, ok, err := c.constant(e.X)
		if !ok || err != nil {
			return nil, false, err
		}
		y, ok, err := c.constant(e.Y)
		if !ok || err != nil {
			return nil, false, err
		}
		op := e.Op
		if op == token.QUO {
			if constant.Sign(y) == 0 {
				return nil, false, c.errorf(e.OpPos, "invalid operation: division by zero")
			}
			if x.Kind() == constant.Int && y.Kind() == constant.Int {
				op = token.QUO_ASSIGN // integer division
			}
		}
		return constant.BinaryOp(x, op, y), true, nil
	}
	return nil, false, nil
}

// unify returns the result type of a component-wise operation.
func unify(a, b Type) (Type, bool) {
	switch {
	case a == b:
		return a, true
	case a == Float:
		return b, true
	case b == Float:
		return a, true
	}
	return Invalid, false
}

func (c *checker) swizzle(e *ast.SelectorExpr) (expr, error) {
	x, err := c.expr(e.X)
	if err != nil {
		return nil, err
	}
	if x.typ() == Float {
		return nil, c.errorf(e.Sel.Pos(), "cannot swizzle float")
	}
	sel := e.Sel.Name
	if len(sel) > 4 {
		return nil, c.errorf(e.Sel.Pos(), "invalid swizzle %s", sel)
	}
	idx, ok := swizzleIndices(sel, "xyzw")
	if !ok {
		idx, ok = swizzleIndices(sel, "rgba")
	}
	if !ok {
		return nil, c.errorf(e.Sel.Pos(), "invalid swizzle %s", sel)
	}
	for _, i := range idx {
		if i >= x.typ().Components() {
			return nil, c.errorf(e.Sel.Pos(), "swizzle %s out of range for %s", sel, x.typ())
		}
	}
	return &swizzleExpr{x: x, sel: sel, idx: idx}, nil
}

func swizzleIndices(sel, set string) ([]int, bool) {
	idx := make([]int, len(sel))
	for i, r := range sel {
		j := -1
		for k, s := range set {
			if r == s {
				j = k
			}
		}
		if j < 0 {
			return nil, false
		}
		idx[i] = j
	}
	return idx, true
}

func (c *checker) call(e *ast.CallExpr) (expr, error) {
	id, ok := e.Fun.(*ast.Ident)
	if !ok {
		return nil, c.errorf(e.Fun.Pos(), "unsupported call")
	}
	args := make([]expr, len(e.Args))
	for i, a := range e.Args {
		x, err := c.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}

	if t, ok := typeNames[id.Name]; ok {
		if len(args) == 1 && args[0].typ() == Float {
			return &ctorExpr{t: t, args: args}, nil
		}
		n := 0
		for _, a := range args {
			n += a.typ().Components()
		}
		if n != t.Components() {
			return nil, c.errorf(e.Pos(), "%s constructor needs %d components, got %d", t, t.Components(), n)
		}
		return &ctorExpr{t: t, args: args}, nil
	}

	fn, ok := builtins[id.Name]
	if !ok {
		return nil, c.errorf(id.Pos(), "undefined: %s", id.Name)
	}
	if len(args) != fn.arity {
		return nil, c.errorf(e.Pos(), "%s takes %d arguments, got %d", id.Name, fn.arity, len(args))
	}
	t := Float
	for _, a := range args {
		if a.typ() != Float {
			t = a.typ()
			break
		}
	}
	for _, a := range args {
		if a.typ() != Float && a.typ() != t {
			return nil, c.errorf(e.Pos(), "%s: mismatched argument types %s and %s", id.Name, t, a.typ())
		}
	}
	return &callExpr{name: id.Name, fn: fn, args: args, t: t}, nil
}

// Eval runs the module on the CPU. args must match m.Params.
func (m *Module) Eval(args []Value) ([]Value, error) {
	if len(args) != len(m.Params) {
		return nil, fmt.Errorf("shader: %s takes %d arguments, got %d", m.Stage.EntryPoint(), len(m.Params), len(args))
	}
	env := make([]Value, len(m.slots))
	for i, a := range args {
		if a.T != m.Params[i].Type {
			return nil, fmt.Errorf("shader: argument %s: want %s, got %s", m.Params[i].Name, m.Params[i].Type, a.T)
		}
		env[i] = a
	}
	for _, s := range m.body {
		env[s.slot] = s.x.eval(env)
	}
	out := make([]Value, len(m.ret))
	for i, r := range m.ret {
		out[i] = r.eval(env)
	}
	return out, nil
}
