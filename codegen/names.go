package codegen

import (
	"fmt"
	"strings"

	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/types"
)

var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "box": true, "break": true,
	"const": true, "continue": true, "do": true, "dyn": true, "else": true,
	"enum": true, "extern": true, "false": true, "final": true, "fn": true,
	"for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "macro": true, "match": true, "mod": true, "move": true,
	"mut": true, "override": true, "priv": true, "pub": true, "ref": true,
	"return": true, "static": true, "struct": true, "trait": true, "true": true,
	"try": true, "type": true, "typeof": true, "unsafe": true, "unsized": true,
	"use": true, "virtual": true, "where": true, "while": true, "yield": true,
	"abstract": true, "become": true,
}

// ident spells a source name as a Rust identifier.
func ident(name string) string {
	switch name {
	case "self", "Self", "super", "crate":
		return name + "_"
	}
	if rustKeywords[name] {
		return "r#" + name
	}
	return name
}

// rustType spells a checked type. ok is false when part of it is unknown.
func rustType(t types.Type) (string, bool) {
	switch t := t.(type) {
	case *types.Basic:
		switch t.Kind {
		case types.NumberKind:
			return "i32", true
		case types.BooleanKind:
			return "bool", true
		case types.VoidKind:
			return "()", true
		case types.StringKind, types.AnyKind:
			return "String", true
		}
		return "", false
	case *types.Array:
		elem, ok := rustType(t.Elem)
		if t.Size == types.Dynamic {
			return "Vec<" + elem + ">", ok
		}
		return fmt.Sprintf("[%s; %d]", elem, t.Size), ok
	case *types.Ref:
		inner, ok := rustType(t.Inner)
		if t.Mutable {
			return "&mut " + inner, ok
		}
		return "&" + inner, ok
	case *types.Struct:
		return ident(t.Name), true
	case *types.Enum:
		return ident(t.Name), true
	}
	return "", false
}

// typeExpr spells a type annotation. Names the checker could not see into,
// such as imported external types, are kept as written.
func typeExpr(te ast.TypeExpr) string {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "number":
			return "i32"
		case "boolean":
			return "bool"
		case "void":
			return "()"
		case "string", "any":
			return "String"
		}
		return ident(t.Name)
	case *ast.ArrayType:
		if t.Fixed {
			return fmt.Sprintf("[%s; %d]", typeExpr(t.Elem), t.Size)
		}
		return "Vec<" + typeExpr(t.Elem) + ">"
	case *ast.RefType:
		if t.Mutable {
			return "&mut " + typeExpr(t.Inner)
		}
		return "&" + typeExpr(t.Inner)
	}
	return "_"
}

// constType spells the type of a constant, with strings borrowed.
func constType(t types.Type) string {
	if types.Is(t, types.StringKind) {
		return "&str"
	}
	if arr, ok := t.(*types.Array); ok && types.Is(arr.Elem, types.StringKind) {
		return fmt.Sprintf("[&str; %d]", arr.Size)
	}
	s, _ := rustType(t)
	return s
}

// quote writes s as a Rust string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u{%x}`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// debugFormatted reports whether print shows t with {:?}.
func debugFormatted(t types.Type) bool {
	switch types.Deref(t).(type) {
	case *types.Array, *types.Struct, *types.Enum:
		return true
	}
	return false
}

// ModulePath turns a relative import path into a Rust module path:
// `./utils/math` is `crate::utils::math`, `./models/index` is
// `crate::models`, and `../x` is `super::x`.
func ModulePath(path string) string {
	path = strings.TrimSuffix(path, ".jr")
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			segs = append(segs, "super")
		default:
			segs = append(segs, ident(seg))
		}
	}
	if n := len(segs); n > 0 && segs[n-1] == "index" {
		segs = segs[:n-1]
	}
	if len(segs) == 0 || segs[0] != "super" {
		segs = append([]string{"crate"}, segs...)
	}
	return strings.Join(segs, "::")
}
