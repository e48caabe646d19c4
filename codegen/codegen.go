// Package codegen prints a checked unit as Rust source.
package codegen

import (
	"fmt"
	"strings"

	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/checker"
	"github.com/strager/jrust/types"
)

// Fault is the panic value for a unit the generator cannot print: one with
// error diagnostics or an expression without a type. It is always a bug in
// the caller, never a problem with the input program.
type Fault struct {
	Pos     ast.Pos
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("codegen fault at %d:%d: %s", f.Pos.Line, f.Pos.Column, f.Message)
}

func fault(pos ast.Pos, format string, args ...interface{}) {
	panic(&Fault{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

type config struct {
	module     bool
	children   []string
	haveTree   bool
	importPath func(*ast.ImportDecl) string
}

type Option func(*config)

// AsModule generates a module file instead of a crate root.
func AsModule() Option {
	return func(c *config) { c.module = true }
}

// WithModules declares the unit's child modules. Without it a crate root
// declares the first segment of each local import.
func WithModules(names ...string) Option {
	return func(c *config) {
		c.children = names
		c.haveTree = true
	}
}

// WithImportPath supplies the Rust module path of each local import.
func WithImportPath(f func(*ast.ImportDecl) string) Option {
	return func(c *config) { c.importPath = f }
}

type generator struct {
	cfg    config
	b      strings.Builder
	indent int

	tries    int
	tryDepth int
	// raw disables owned-value conversions inside constant initializers.
	raw bool
}

// Generate prints unit as Rust. It panics with *Fault if the unit has
// errors.
func Generate(unit *checker.Unit, opts ...Option) string {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if unit.Diagnostics.HasErrors() {
		panic(&Fault{Message: fmt.Sprintf("unit %q has errors", unit.Path)})
	}
	g := &generator{cfg: cfg}
	g.program(unit.Program)
	return g.b.String()
}

func (g *generator) line(format string, args ...interface{}) {
	if format == "" {
		g.b.WriteString("\n")
		return
	}
	g.b.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(&g.b, format, args...)
	g.b.WriteString("\n")
}

func (g *generator) program(prog *ast.Program) {
	var imports []*ast.ImportDecl
	var items, stmts []ast.Stmt
	var userMain *ast.FuncDecl
	for _, stmt := range prog.Stmts {
		decl, _ := ast.Decl(stmt)
		switch d := decl.(type) {
		case *ast.ImportDecl:
			imports = append(imports, d)
		case *ast.FuncDecl:
			if d.Name == "main" {
				userMain = d
				continue
			}
			items = append(items, stmt)
		case *ast.StructDecl, *ast.EnumDecl:
			items = append(items, stmt)
		case *ast.VarDecl:
			if d.Const {
				items = append(items, stmt)
			} else {
				stmts = append(stmts, stmt)
			}
		default:
			stmts = append(stmts, stmt)
		}
	}

	g.line("#![allow(non_snake_case, unused_mut, unused_variables, dead_code)]")
	g.modules(imports)
	for _, d := range imports {
		g.importDecl(d)
	}
	for _, item := range items {
		g.line("")
		g.stmt(item)
	}

	if len(stmts) == 0 && userMain == nil && g.cfg.module {
		return
	}
	g.line("")
	if g.cfg.module {
		g.line("pub fn main() {")
	} else {
		g.line("fn main() {")
	}
	g.indent++
	g.stmts(stmts)
	if userMain != nil {
		g.stmts(userMain.Body.Stmts)
	}
	g.indent--
	g.line("}")
}

func (g *generator) modules(imports []*ast.ImportDecl) {
	children := g.cfg.children
	if !g.cfg.haveTree && !g.cfg.module {
		seen := map[string]bool{}
		for _, d := range imports {
			if d.External {
				continue
			}
			segs := strings.Split(strings.TrimPrefix(ModulePath(d.Path), "crate::"), "::")
			if segs[0] == "crate" || segs[0] == "super" || seen[segs[0]] {
				continue
			}
			seen[segs[0]] = true
			children = append(children, segs[0])
		}
	}
	keyword := "mod"
	if g.cfg.module {
		keyword = "pub mod"
	}
	for _, name := range children {
		g.line("%s %s;", keyword, ident(name))
	}
}

func (g *generator) importDecl(d *ast.ImportDecl) {
	path := d.Path
	if !d.External {
		path = ModulePath(d.Path)
		if g.cfg.importPath != nil {
			path = g.cfg.importPath(d)
		}
	}
	switch d.Kind {
	case ast.ImportModule:
		switch {
		case d.Alias != "":
			g.line("use %s as %s;", path, ident(d.Alias))
		case !d.External && !g.cfg.module && strings.Count(path, "::") == 1:
			// `mod` already brings a top-level module into scope
		default:
			g.line("use %s;", path)
		}
	case ast.ImportDefault:
		name := d.Items[0].Name
		if d.Alias != "" {
			g.line("use %s::%s as %s;", path, ident(name), ident(d.Alias))
		} else {
			g.line("use %s::%s;", path, ident(name))
		}
	default:
		var names []string
		for _, item := range d.Items {
			name := ident(item.Name)
			if item.Alias != "" {
				name += " as " + ident(item.Alias)
			}
			names = append(names, name)
		}
		if len(names) == 1 {
			g.line("use %s::%s;", path, names[0])
		} else {
			g.line("use %s::{%s};", path, strings.Join(names, ", "))
		}
	}
}

func (g *generator) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		g.stmt(s)
	}
}

func (g *generator) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExportDecl:
		g.decl(s.Decl, "pub ")
	case *ast.VarDecl, *ast.FuncDecl, *ast.StructDecl, *ast.EnumDecl:
		g.decl(s, "")
	case *ast.IfStmt:
		g.ifStmt(s, false)
	case *ast.WhileStmt:
		g.line("while %s {", g.cond(s.Cond))
		g.block(s.Body)
	case *ast.ForInStmt:
		mut := ""
		if s.Mutated {
			mut = "mut "
		}
		g.line("for %s%s in %s {", mut, ident(s.Var), g.expr(s.Iter))
		g.block(s.Body)
	case *ast.BreakStmt:
		g.line("break;")
	case *ast.ContinueStmt:
		g.line("continue;")
	case *ast.ReturnStmt:
		if s.Value == nil {
			g.line("return;")
		} else {
			g.line("return %s;", g.owned(s.Value))
		}
	case *ast.TryStmt:
		g.tryStmt(s)
	case *ast.ThrowStmt:
		if g.tryDepth > 0 {
			g.line("return Err(%s.to_string());", g.atom(s.Value))
		} else {
			g.line("panic!(\"{}\", %s);", g.expr(s.Value))
		}
	case *ast.PrintStmt:
		g.print(s)
	case *ast.ExprStmt:
		g.line("%s;", g.expr(s.X))
	case *ast.BlockStmt:
		g.line("{")
		g.block(s)
	}
}

// block prints the statements of b and its closing brace. The caller has
// printed the opening line.
func (g *generator) block(b *ast.BlockStmt) {
	g.indent++
	g.stmts(b.Stmts)
	g.indent--
	g.line("}")
}

func (g *generator) decl(s ast.Stmt, pub string) {
	switch d := s.(type) {
	case *ast.VarDecl:
		if d.Const {
			g.raw = true
			g.line("%sconst %s: %s = %s;", pub, ident(d.Name), constType(d.Resolved), g.expr(d.Init))
			g.raw = false
			return
		}
		ty := ""
		if d.Type != nil {
			ty = ": " + typeExpr(d.Type)
		} else if t, ok := rustType(d.Resolved); ok {
			ty = ": " + t
		}
		g.line("let mut %s%s = %s;", ident(d.Name), ty, g.owned(d.Init))
	case *ast.FuncDecl:
		g.funcDecl(d, pub)
	case *ast.StructDecl:
		g.line("#[derive(Debug, Clone, PartialEq)]")
		g.line("%sstruct %s {", pub, ident(d.Name))
		g.indent++
		for _, f := range d.Fields {
			g.line("%s%s: %s,", pub, ident(f.Name), typeExpr(f.Type))
		}
		g.indent--
		g.line("}")
	case *ast.EnumDecl:
		g.line("#[derive(Debug, Clone, PartialEq)]")
		g.line("%senum %s {", pub, ident(d.Name))
		g.indent++
		for _, v := range d.Variants {
			if len(v.Payload) == 0 {
				g.line("%s,", ident(v.Name))
				continue
			}
			var payload []string
			for _, p := range v.Payload {
				payload = append(payload, typeExpr(p))
			}
			g.line("%s(%s),", ident(v.Name), strings.Join(payload, ", "))
		}
		g.indent--
		g.line("}")
	}
}

func (g *generator) funcDecl(d *ast.FuncDecl, pub string) {
	var params []string
	for _, p := range d.Params {
		mut := ""
		if _, isRef := p.Type.(*ast.RefType); p.Mutated && !isRef {
			mut = "mut "
		}
		params = append(params, fmt.Sprintf("%s%s: %s", mut, ident(p.Name), typeExpr(p.Type)))
	}
	result := ""
	if d.Result != nil {
		if rt := typeExpr(d.Result); rt != "()" {
			result = " -> " + rt
		}
	}
	g.line("%sfn %s(%s)%s {", pub, ident(d.Name), strings.Join(params, ", "), result)

	savedDepth := g.tryDepth
	g.tryDepth = 0
	g.block(d.Body)
	g.tryDepth = savedDepth
}

func (g *generator) ifStmt(s *ast.IfStmt, chained bool) {
	if chained {
		g.b.WriteString(fmt.Sprintf("if %s {\n", g.cond(s.Cond)))
	} else {
		g.line("if %s {", g.cond(s.Cond))
	}
	g.indent++
	g.stmts(s.Then.Stmts)
	g.indent--
	switch e := s.Else.(type) {
	case nil:
		g.line("}")
	case *ast.IfStmt:
		g.b.WriteString(strings.Repeat("    ", g.indent) + "} else ")
		g.ifStmt(e, true)
	case *ast.BlockStmt:
		g.line("} else {")
		g.block(e)
	}
}

// tryStmt runs the body in an immediately called closure returning
// Result, then matches on the outcome.
func (g *generator) tryStmt(s *ast.TryStmt) {
	g.tries++
	result := fmt.Sprintf("try_result_%d", g.tries)
	g.line("let %s = (|| -> Result<(), String> {", result)
	g.indent++
	g.tryDepth++
	g.stmts(s.Body.Stmts)
	g.tryDepth--
	g.line("Ok(())")
	g.indent--
	g.line("})();")
	g.line("match %s {", result)
	g.indent++
	g.line("Ok(()) => {}")
	param := "_"
	if s.CatchParam != "" {
		param = ident(s.CatchParam)
	}
	g.line("Err(%s) => {", param)
	g.block(s.Catch)
	g.indent--
	g.line("}")
}

var printPrefixes = map[string]string{
	"info":  "[INFO] ",
	"debug": "[DEBUG] ",
	"warn":  "[WARN] ",
	"error": "[ERROR] ",
}

func (g *generator) print(s *ast.PrintStmt) {
	macro := "println!"
	if s.Level == "error" || s.Level == "warn" {
		macro = "eprintln!"
	}
	var holes, args []string
	for _, arg := range s.Args {
		if debugFormatted(g.typeOf(arg)) {
			holes = append(holes, "{:?}")
		} else {
			holes = append(holes, "{}")
		}
		args = append(args, g.expr(arg))
	}
	format := strings.TrimSuffix(printPrefixes[s.Level]+strings.Join(holes, " "), " ")
	if format == "" {
		g.line("%s();", macro)
		return
	}
	g.line("%s(%s);", macro, strings.Join(append([]string{quote(format)}, args...), ", "))
}

func (g *generator) typeOf(e ast.Expr) types.Type {
	t := e.Info().Type
	if t == nil {
		fault(e.Position(), "expression has no type")
	}
	return t
}
