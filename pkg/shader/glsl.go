package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// glslInputs are the GLSL expressions bound to the Fragment parameters when
// the program runs behind raylib's default vertex shader.
var glslInputs = []string{"gl_FragCoord", "vec2(fragTexCoord)", "fragColor"}

// GLSL returns a "#version 330" fragment shader equivalent to m.
func (m *Module) GLSL() (string, error) {
	if m.Stage != Fragment {
		return "", fmt.Errorf("shader: GLSL output is only available for fragment modules, got %s", m.Stage)
	}
	var b strings.Builder
	b.WriteString("#version 330\n\n")
	b.WriteString("in vec2 fragTexCoord;\n")
	b.WriteString("in vec4 fragColor;\n")
	b.WriteString("out vec4 finalColor;\n\n")
	b.WriteString("void main() {\n")
	for i, p := range m.Params {
		fmt.Fprintf(&b, "\t%s %s = %s;\n", p.Type, glslName(p.Name), glslInputs[i])
	}
	for _, s := range m.body {
		b.WriteString("\t")
		if s.declare {
			b.WriteString(s.x.typ().String())
			b.WriteString(" ")
		}
		b.WriteString(glslName(s.name))
		b.WriteString(" = ")
		writeGLSL(&b, s.x)
		b.WriteString(";\n")
	}
	b.WriteString("\tfinalColor = ")
	writeGLSL(&b, m.ret[0])
	b.WriteString(";\n}\n")
	return b.String(), nil
}

// glslName prefixes identifiers so they cannot collide with GLSL keywords
// or builtins.
func glslName(name string) string {
	return "k_" + name
}

func glslFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	if f < 0 {
		return "(" + s + ")"
	}
	return s
}

func writeGLSL(b *strings.Builder, e expr) {
	switch e := e.(type) {
	case *constExpr:
		if e.v.T == Float {
			b.WriteString(glslFloat(e.v.V[0]))
			break
		}
		b.WriteString(e.v.T.String())
		b.WriteString("(")
		for i := 0; i < e.v.T.Components(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(glslFloat(e.v.V[i]))
		}
		b.WriteString(")")
	case *localExpr:
		b.WriteString(glslName(e.name))
	case *negExpr:
		b.WriteString("(-")
		writeGLSL(b, e.x)
		b.WriteString(")")
	case *binaryExpr:
		b.WriteString("(")
		writeGLSL(b, e.x)
		b.WriteString(" " + e.op.String() + " ")
		writeGLSL(b, e.y)
		b.WriteString(")")
	case *swizzleExpr:
		b.WriteString("(")
		writeGLSL(b, e.x)
		b.WriteString(").")
		b.WriteString(e.sel)
	case *ctorExpr:
		b.WriteString(e.t.String())
		writeArgs(b, e.args, Invalid)
	case *callExpr:
		b.WriteString(e.name)
		writeArgs(b, e.args, e.t)
	}
}

// writeArgs writes a parenthesized argument list. When splat is a vector
// type, float arguments are widened to it since GLSL builtins do not accept
// a float in every position.
func writeArgs(b *strings.Builder, args []expr, splat Type) {
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if splat != Invalid && splat != Float && a.typ() == Float {
			b.WriteString(splat.String())
			b.WriteString("(")
			writeGLSL(b, a)
			b.WriteString(")")
			continue
		}
		writeGLSL(b, a)
	}
	b.WriteString(")")
}
