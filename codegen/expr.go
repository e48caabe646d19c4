package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/types"
)

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

func (g *generator) expr(e ast.Expr) string {
	t := g.typeOf(e)
	switch e := e.(type) {
	case *ast.NumberLit:
		return strconv.FormatInt(e.Value, 10)
	case *ast.StringLit:
		return quote(e.Value)
	case *ast.BoolLit:
		return strconv.FormatBool(e.Value)
	case *ast.ArrayLit:
		var elems []string
		for _, x := range e.Elems {
			elems = append(elems, g.owned(x))
		}
		if arr, ok := t.(*types.Array); ok && arr.Size != types.Dynamic {
			return "[" + strings.Join(elems, ", ") + "]"
		}
		return "vec![" + strings.Join(elems, ", ") + "]"
	case *ast.Ident:
		return ident(e.Name)
	case *ast.BinaryExpr:
		return g.binary(e)
	case *ast.UnaryExpr:
		return e.Op + g.side(e.X, 7, false)
	case *ast.RefExpr:
		prefix := "&"
		if e.Mutable {
			prefix = "&mut "
		}
		if isLiteralString(e.X) {
			return prefix + g.owned(e.X)
		}
		return prefix + g.atom(e.X)
	case *ast.CallExpr:
		return g.call(e)
	case *ast.MemberExpr:
		return g.member(e)
	case *ast.IndexExpr:
		return g.atom(e.X) + "[" + g.usize(e.Index) + "]"
	case *ast.StructLit:
		var fields []string
		for _, f := range e.Fields {
			fields = append(fields, ident(f.Name)+": "+g.owned(f.Value))
		}
		return ident(e.Name) + " { " + strings.Join(fields, ", ") + " }"
	case *ast.AssignExpr:
		return g.assign(e)
	}
	fault(e.Position(), "unexpected expression %T", e)
	return ""
}

// isLiteralString reports whether e is a string literal or a string
// constant, both of which are borrowed str in the output.
func isLiteralString(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.StringLit:
		return true
	case *ast.Ident:
		return e.Kind == ast.IdentConst && types.Is(e.Type, types.StringKind)
	}
	return false
}

func isConstStringArray(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	if !ok || id.Kind != ast.IdentConst {
		return false
	}
	arr, ok := id.Type.(*types.Array)
	return ok && types.Is(arr.Elem, types.StringKind)
}

// owned prints e where the context takes ownership of the value.
func (g *generator) owned(e ast.Expr) string {
	s := g.expr(e)
	if g.raw {
		return s
	}
	t := g.typeOf(e)
	if e.Info().Stringify {
		if debugFormatted(t) {
			return fmt.Sprintf("format!(\"{:?}\", %s)", s)
		}
		return g.atom(e) + ".to_string()"
	}
	switch x := e.(type) {
	case *ast.StringLit:
		return s + ".to_string()"
	case *ast.Ident:
		if isLiteralString(x) {
			return s + ".to_string()"
		}
		if isConstStringArray(x) {
			return s + ".map(String::from)"
		}
	case *ast.IndexExpr:
		if isConstStringArray(x.X) {
			return s + ".to_string()"
		}
		if !types.IsCopy(t) {
			return s + ".clone()"
		}
	case *ast.MemberExpr:
		if id, ok := x.X.(*ast.Ident); ok && id.Kind == ast.IdentTypeName {
			return s
		}
		if !types.IsCopy(t) {
			return s + ".clone()"
		}
	}
	return s
}

// atom prints e so that a postfix operator can follow it.
func (g *generator) atom(e ast.Expr) string {
	s := g.expr(e)
	switch e := e.(type) {
	case *ast.BinaryExpr:
		if !isConcat(e) {
			return "(" + s + ")"
		}
	case *ast.UnaryExpr, *ast.RefExpr, *ast.AssignExpr:
		return "(" + s + ")"
	}
	return s
}

// operand prints e as an arithmetic or logical operand, dereferencing
// references to scalars.
func (g *generator) operand(e ast.Expr) string {
	if _, ok := g.typeOf(e).(*types.Ref); ok {
		return "*" + g.atom(e)
	}
	return g.expr(e)
}

func (g *generator) cond(e ast.Expr) string {
	return g.operand(e)
}

// side prints an operand of a binary operator of precedence prec.
func (g *generator) side(e ast.Expr, prec int, right bool) string {
	s := g.operand(e)
	if b, ok := e.(*ast.BinaryExpr); ok && !isConcat(b) {
		p := precedence[b.Op]
		// comparisons do not chain in Rust
		if p < prec || (p == prec && (right || p == 3 || p == 4)) {
			return "(" + s + ")"
		}
	}
	return s
}

func (g *generator) usize(e ast.Expr) string {
	return g.side(e, 7, false) + " as usize"
}

func isConcat(e *ast.BinaryExpr) bool {
	return e.Op == "+" && types.Is(e.Type, types.StringKind)
}

func (g *generator) binary(e *ast.BinaryExpr) string {
	if isConcat(e) {
		return g.concat(e)
	}
	prec := precedence[e.Op]
	return g.side(e.Left, prec, false) + " " + e.Op + " " + g.side(e.Right, prec, true)
}

// concat prints a chain of string concatenations as one format!.
func (g *generator) concat(e *ast.BinaryExpr) string {
	var parts []ast.Expr
	var flatten func(x ast.Expr)
	flatten = func(x ast.Expr) {
		if b, ok := x.(*ast.BinaryExpr); ok && isConcat(b) {
			flatten(b.Left)
			flatten(b.Right)
			return
		}
		parts = append(parts, x)
	}
	flatten(e)

	var format strings.Builder
	var args []string
	for _, p := range parts {
		if lit, ok := p.(*ast.StringLit); ok {
			format.WriteString(strings.NewReplacer("{", "{{", "}", "}}").Replace(lit.Value))
			continue
		}
		format.WriteString("{}")
		args = append(args, g.expr(p))
	}
	return "format!(" + strings.Join(append([]string{quote(format.String())}, args...), ", ") + ")"
}

func (g *generator) assign(a *ast.AssignExpr) string {
	if id, ok := a.Target.(*ast.Ident); ok {
		if _, isRef := id.Type.(*types.Ref); isRef {
			if _, rebind := a.Value.(*ast.RefExpr); !rebind {
				return "*" + ident(id.Name) + " = " + g.owned(a.Value)
			}
		}
	}
	return g.expr(a.Target) + " = " + g.owned(a.Value)
}

// args prints call arguments. Parameters taken by value get owned values;
// calls without a known signature pass arguments as written.
func (g *generator) args(args []ast.Expr, params []types.Type, known bool) string {
	var out []string
	for i, a := range args {
		switch {
		case !known:
			out = append(out, g.expr(a))
		case i < len(params):
			if _, isRef := params[i].(*types.Ref); isRef {
				out = append(out, g.expr(a))
				continue
			}
			out = append(out, g.owned(a))
		default:
			out = append(out, g.owned(a))
		}
	}
	return strings.Join(out, ", ")
}

func (g *generator) call(e *ast.CallExpr) string {
	if m, ok := e.Callee.(*ast.MemberExpr); ok {
		return g.methodCall(e, m)
	}
	f, known := g.typeOf(e.Callee).(*types.Func)
	var params []types.Type
	if known {
		params = f.Params
	}
	return g.atom(e.Callee) + "(" + g.args(e.Args, params, known) + ")"
}

func (g *generator) methodCall(e *ast.CallExpr, m *ast.MemberExpr) string {
	if id, ok := m.X.(*ast.Ident); ok {
		path := ident(id.Name) + "::" + ident(m.Name)
		switch id.Kind {
		case ast.IdentTypeName, ast.IdentModule:
			f, known := g.typeOf(m).(*types.Func)
			var params []types.Type
			if known {
				params = f.Params
			}
			// functions of project modules take owned values
			return path + "(" + g.args(e.Args, params, known || id.Kind == ast.IdentModule) + ")"
		case ast.IdentExternal:
			return path + "(" + g.args(e.Args, nil, false) + ")"
		}
	}
	switch recv := types.Deref(g.typeOf(m.X)).(type) {
	case *types.Array:
		return g.arrayMethod(e, m)
	case *types.Basic:
		if types.Is(recv, types.StringKind) || types.Is(recv, types.AnyKind) {
			return g.stringMethod(e, m)
		}
	}
	return g.atom(m.X) + "." + ident(m.Name) + "(" + g.args(e.Args, nil, false) + ")"
}

// strArg prints a string argument for a std method taking a pattern or
// separator.
func (g *generator) strArg(e ast.Expr) string {
	if lit, ok := e.(*ast.StringLit); ok {
		return quote(lit.Value)
	}
	if isLiteralString(e) {
		return g.expr(e)
	}
	return g.atom(e) + ".as_str()"
}

func (g *generator) arrayMethod(e *ast.CallExpr, m *ast.MemberExpr) string {
	recv := g.atom(m.X)
	switch m.Name {
	case "push":
		return recv + ".push(" + g.owned(e.Args[0]) + ")"
	case "pop":
		return recv + ".pop().unwrap()"
	case "shift":
		return recv + ".remove(0)"
	case "unshift":
		return recv + ".insert(0, " + g.owned(e.Args[0]) + ")"
	case "slice":
		if len(e.Args) == 1 {
			return recv + "[" + g.usize(e.Args[0]) + "..].to_vec()"
		}
		return recv + "[" + g.usize(e.Args[0]) + ".." + g.usize(e.Args[1]) + "].to_vec()"
	case "reverse", "sort":
		return recv + "." + m.Name + "()"
	case "includes", "contains":
		return recv + ".contains(&" + g.owned(e.Args[0]) + ")"
	case "join":
		return recv + ".join(" + g.strArg(e.Args[0]) + ")"
	}
	fault(m.Pos, "unknown array method %q", m.Name)
	return ""
}

func (g *generator) stringMethod(e *ast.CallExpr, m *ast.MemberExpr) string {
	recv := g.atom(m.X)
	switch m.Name {
	case "toUpperCase":
		return recv + ".to_uppercase()"
	case "toLowerCase":
		return recv + ".to_lowercase()"
	case "trim":
		return recv + ".trim().to_string()"
	case "split":
		return recv + ".split(" + g.strArg(e.Args[0]) + ").map(|s| s.to_string()).collect::<Vec<String>>()"
	case "charAt":
		return recv + ".chars().nth(" + g.usize(e.Args[0]) + ").map(|c| c.to_string()).unwrap_or_default()"
	case "substring":
		start, end := g.usize(e.Args[0]), g.usize(e.Args[1])
		return fmt.Sprintf("%s.chars().skip(%s).take((%s).saturating_sub(%s)).collect::<String>()", recv, start, end, start)
	case "indexOf":
		return recv + ".find(" + g.strArg(e.Args[0]) + ").map(|i| i as i32).unwrap_or(-1)"
	case "includes", "contains":
		return recv + ".contains(" + g.strArg(e.Args[0]) + ")"
	}
	fault(m.Pos, "unknown string method %q", m.Name)
	return ""
}

func (g *generator) member(m *ast.MemberExpr) string {
	if id, ok := m.X.(*ast.Ident); ok {
		switch id.Kind {
		case ast.IdentTypeName, ast.IdentModule, ast.IdentExternal:
			return ident(id.Name) + "::" + ident(m.Name)
		}
	}
	if m.Name == "length" {
		switch b := types.Deref(g.typeOf(m.X)).(type) {
		case *types.Array:
			return "(" + g.atom(m.X) + ".len() as i32)"
		case *types.Basic:
			if types.Is(b, types.StringKind) || types.Is(b, types.AnyKind) {
				return "(" + g.atom(m.X) + ".len() as i32)"
			}
		}
	}
	return g.atom(m.X) + "." + ident(m.Name)
}
