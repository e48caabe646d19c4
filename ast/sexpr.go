package ast

import (
	"strconv"
	"strings"
)

func itoa(n int) string { return strconv.Itoa(n) }

func quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return "\"" + s + "\""
}

func typeSExpr(t TypeExpr) string {
	if t == nil {
		return "nil"
	}
	return quote(t.String())
}

func list(head string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(parts, " ") + ")"
}

func exprList(exprs []Expr) []string {
	var parts []string
	for _, e := range exprs {
		parts = append(parts, ToSExpr(e))
	}
	return parts
}

// ToSExpr converts a node to its s-expression representation.
func ToSExpr(node Node) string {
	switch n := node.(type) {
	case *Program:
		var parts []string
		for _, s := range n.Stmts {
			parts = append(parts, ToSExpr(s))
		}
		return list("program", parts...)
	case *NumberLit:
		return list("integer", strconv.FormatInt(n.Value, 10))
	case *StringLit:
		return list("string", quote(n.Value))
	case *BoolLit:
		return list("boolean", strconv.FormatBool(n.Value))
	case *ArrayLit:
		return list("array", exprList(n.Elems)...)
	case *Ident:
		return list("ident", quote(n.Name))
	case *BinaryExpr:
		return list("binary", quote(n.Op), ToSExpr(n.Left), ToSExpr(n.Right))
	case *UnaryExpr:
		return list("unary", quote(n.Op), ToSExpr(n.X))
	case *RefExpr:
		if n.Mutable {
			return list("ref-mut", ToSExpr(n.X))
		}
		return list("ref", ToSExpr(n.X))
	case *CallExpr:
		return list("call", append([]string{ToSExpr(n.Callee)}, exprList(n.Args)...)...)
	case *MemberExpr:
		return list("member", ToSExpr(n.X), quote(n.Name))
	case *IndexExpr:
		return list("idx", ToSExpr(n.X), ToSExpr(n.Index))
	case *StructLit:
		parts := []string{quote(n.Name)}
		for _, f := range n.Fields {
			parts = append(parts, "("+quote(f.Name)+" "+ToSExpr(f.Value)+")")
		}
		return list("struct-lit", parts...)
	case *AssignExpr:
		return list("assign", ToSExpr(n.Target), ToSExpr(n.Value))

	case *VarDecl:
		head := "let"
		if n.Const {
			head = "const"
		}
		init := "nil"
		if n.Init != nil {
			init = ToSExpr(n.Init)
		}
		return list(head, quote(n.Name), typeSExpr(n.Type), init)
	case *FuncDecl:
		var params []string
		for _, p := range n.Params {
			params = append(params, "("+quote(p.Name)+" "+typeSExpr(p.Type)+")")
		}
		return list("function", quote(n.Name), list("params", params...), typeSExpr(n.Result), ToSExpr(n.Body))
	case *StructDecl:
		parts := []string{quote(n.Name)}
		for _, f := range n.Fields {
			parts = append(parts, "("+quote(f.Name)+" "+typeSExpr(f.Type)+")")
		}
		return list("struct", parts...)
	case *EnumDecl:
		parts := []string{quote(n.Name)}
		for _, v := range n.Variants {
			vparts := []string{quote(v.Name)}
			for _, p := range v.Payload {
				vparts = append(vparts, typeSExpr(p))
			}
			parts = append(parts, "("+strings.Join(vparts, " ")+")")
		}
		return list("enum", parts...)
	case *ImportDecl:
		parts := []string{quote(n.Path)}
		switch n.Kind {
		case ImportNamed:
			for _, item := range n.Items {
				if item.Alias != "" {
					parts = append(parts, "("+quote(item.Name)+" "+quote(item.Alias)+")")
				} else {
					parts = append(parts, "("+quote(item.Name)+")")
				}
			}
			return list("import", parts...)
		case ImportDefault:
			parts = append(parts, quote(n.Items[0].Name))
			if n.Alias != "" {
				parts = append(parts, quote(n.Alias))
			}
			return list("import-default", parts...)
		default:
			if n.Alias != "" {
				parts = append(parts, quote(n.Alias))
			}
			return list("import-module", parts...)
		}
	case *ExportDecl:
		return list("export", ToSExpr(n.Decl))
	case *IfStmt:
		parts := []string{ToSExpr(n.Cond), ToSExpr(n.Then)}
		if n.Else != nil {
			parts = append(parts, ToSExpr(n.Else))
		}
		return list("if", parts...)
	case *WhileStmt:
		return list("while", ToSExpr(n.Cond), ToSExpr(n.Body))
	case *ForInStmt:
		return list("for", quote(n.Var), ToSExpr(n.Iter), ToSExpr(n.Body))
	case *BreakStmt:
		return "(break)"
	case *ContinueStmt:
		return "(continue)"
	case *ReturnStmt:
		if n.Value == nil {
			return "(return)"
		}
		return list("return", ToSExpr(n.Value))
	case *TryStmt:
		param := "nil"
		if n.CatchParam != "" {
			param = quote(n.CatchParam)
		}
		return list("try", ToSExpr(n.Body), param, ToSExpr(n.Catch))
	case *ThrowStmt:
		return list("throw", ToSExpr(n.Value))
	case *PrintStmt:
		head := "print"
		if n.Level != "" {
			head += "-" + n.Level
		}
		return list(head, exprList(n.Args)...)
	case *ExprStmt:
		return ToSExpr(n.X)
	case *BlockStmt:
		var parts []string
		for _, s := range n.Stmts {
			parts = append(parts, ToSExpr(s))
		}
		return list("block", parts...)
	default:
		return ""
	}
}
