// Package checker resolves names, checks types and tracks ownership for
// one compilation unit, and orders units of a module graph.
package checker

import (
	"regexp"
	"strings"

	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/types"
)

// Importer hands the checker the already-checked unit an import refers
// to. It returns false when the module is external or unavailable.
type Importer interface {
	Import(decl *ast.ImportDecl) (*Unit, bool)
}

type ImporterFunc func(decl *ast.ImportDecl) (*Unit, bool)

func (f ImporterFunc) Import(decl *ast.ImportDecl) (*Unit, bool) { return f(decl) }

type config struct {
	file     string
	importer Importer
}

type Option func(*config)

// WithFile stamps diagnostics with the unit's path.
func WithFile(path string) Option {
	return func(c *config) { c.file = path }
}

// WithImporter resolves local imports against checked units.
func WithImporter(imp Importer) Option {
	return func(c *config) { c.importer = imp }
}

// Unit is a checked compilation unit. Every expression of Program carries
// its type.
type Unit struct {
	Path        string
	Program     *ast.Program
	Global      *Scope
	Exports     map[string]*Symbol
	Imports     []*ast.ImportDecl
	Diagnostics diag.List
	// HasMain is set when the unit declares its own main function.
	HasMain bool
}

type funcContext struct {
	name   string
	result types.Type
}

type checker struct {
	cfg  config
	errs diag.List
	unit *Unit

	global *Scope
	main   *Scope
	scope  *Scope
	nextID int

	flow  flow
	slots []*Symbol
	// holder owns borrows created by the expression being checked.
	holder int

	identSyms map[*ast.Ident]*Symbol
	declSyms  map[ast.Stmt]*Symbol

	loop        int // ID of the innermost loop, 0 outside loops
	loopDepth   int
	tryDepth    int
	tryLoopBase int // loopDepth when the innermost try body was entered
	fn          *funcContext
}

var constName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Check annotates prog and reports name, type and ownership errors.
func Check(prog *ast.Program, opts ...Option) (*Unit, diag.List) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &checker{
		cfg:       cfg,
		identSyms: map[*ast.Ident]*Symbol{},
		declSyms:  map[ast.Stmt]*Symbol{},
	}
	c.unit = &Unit{Path: cfg.file, Program: prog, Exports: map[string]*Symbol{}}
	c.global = c.openScope(GlobalScope)
	c.unit.Global = c.global

	c.collect()
	c.resolveDecls()
	c.checkConsts()
	c.checkMain()
	c.checkFunctions()

	for _, d := range c.errs {
		if d.File == "" {
			d.File = cfg.file
		}
		c.unit.Diagnostics = append(c.unit.Diagnostics, d)
	}
	return c.unit, c.unit.Diagnostics
}

func (c *checker) errorf(kind diag.Kind, pos ast.Pos, format string, args ...interface{}) {
	c.errs.Errorf(kind, pos.Line, pos.Column, format, args...)
}

func (c *checker) warnf(kind diag.Kind, pos ast.Pos, format string, args ...interface{}) {
	c.errs.Warnf(kind, pos.Line, pos.Column, format, args...)
}

func (c *checker) openScope(kind ScopeKind) *Scope {
	c.nextID++
	s := newScope(c.nextID, kind, c.scope)
	c.scope = s
	return s
}

// closeScope ends the current scope: borrows its variables held are
// released and unread function locals are reported.
func (c *checker) closeScope() {
	s := c.scope
	if s.function() {
		for _, sym := range s.order {
			if sym.Kind == SymVar && !sym.Used && sym.Name[0] != '_' {
				c.warnf(diag.UnusedVariable, sym.Pos, "variable '%s' is never used", sym.Name)
			}
		}
	}
	c.release(s.ID)
	c.scope = s.Parent
}

// declare adds sym to scope, reporting a redeclaration in the same scope.
func (c *checker) declare(scope *Scope, sym *Symbol) bool {
	if prev := scope.LookupLocal(sym.Name); prev != nil {
		c.errorf(diag.DuplicateDeclaration, sym.Pos, "'%s' is already declared at %d:%d", sym.Name, prev.Pos.Line, prev.Pos.Column)
		return false
	}
	if sym.tracked() && scope.function() && scope.Parent != nil {
		if outer := scope.Parent.Lookup(sym.Name); outer != nil && outer.tracked() && outer.Scope.function() {
			c.warnf(diag.ShadowedDeclaration, sym.Pos, "'%s' shadows the declaration at %d:%d", sym.Name, outer.Pos.Line, outer.Pos.Column)
		}
	}
	scope.insert(sym)
	if sym.tracked() {
		sym.loop = c.loop
		c.track(sym)
	}
	return true
}

// collect hoists top-level functions, types, constants and imports.
func (c *checker) collect() {
	for _, stmt := range c.unit.Program.Stmts {
		decl, exported := ast.Decl(stmt)
		var sym *Symbol
		switch d := decl.(type) {
		case *ast.StructDecl:
			sym = &Symbol{Name: d.Name, Kind: SymStruct, Type: &types.Struct{Name: d.Name}, Pos: d.Pos}
		case *ast.EnumDecl:
			sym = &Symbol{Name: d.Name, Kind: SymEnum, Type: &types.Enum{Name: d.Name}, Pos: d.Pos}
		case *ast.FuncDecl:
			sym = &Symbol{Name: d.Name, Kind: SymFunc, Type: &types.Func{Result: types.Void}, Pos: d.Pos}
			if d.Name == "main" {
				c.unit.HasMain = true
			}
		case *ast.VarDecl:
			if !d.Const {
				continue
			}
			sym = &Symbol{Name: d.Name, Kind: SymConst, Type: types.Unknown, Pos: d.Pos}
		case *ast.ImportDecl:
			c.unit.Imports = append(c.unit.Imports, d)
			c.collectImport(d)
			continue
		default:
			continue
		}
		sym.Exported = exported
		if c.declare(c.global, sym) {
			c.declSyms[decl] = sym
			if exported {
				c.unit.Exports[sym.Name] = sym
			}
		}
	}
}

// collectImport binds the names an import introduces. Names from checked
// local units take the exported symbol's kind and type; anything else is
// opaque.
func (c *checker) collectImport(d *ast.ImportDecl) {
	if d.Resolved == "" && !d.External {
		d.External = IsExternalPath(d.Path)
	}
	var dep *Unit
	if c.cfg.importer != nil && !d.External {
		dep, _ = c.cfg.importer.Import(d)
	}
	switch d.Kind {
	case ast.ImportModule:
		if d.Alias != "" {
			c.declare(c.global, &Symbol{Name: d.Alias, Kind: SymModule, Type: types.Unknown, Pos: d.Pos, External: d.External})
		}
		return
	}
	for _, item := range d.Items {
		local := item.LocalName()
		if d.Kind == ast.ImportDefault && d.Alias != "" {
			local = d.Alias
		}
		sym := &Symbol{Name: local, Kind: SymImport, Type: types.Unknown, Pos: item.Pos, External: d.External}
		if dep != nil && !dep.Diagnostics.HasErrors() {
			exp, ok := dep.Exports[item.Name]
			if !ok {
				c.errorf(diag.UndeclaredIdentifier, item.Pos, "module '%s' has no export named '%s'", d.Path, item.Name)
			} else {
				sym.Kind = exp.Kind
				sym.Type = exp.Type
			}
		}
		c.declare(c.global, sym)
	}
}

// resolveDecls fills in struct fields, enum variants and signatures now
// that every type name is known.
func (c *checker) resolveDecls() {
	for _, stmt := range c.unit.Program.Stmts {
		decl, _ := ast.Decl(stmt)
		sym := c.declSyms[decl]
		if sym == nil {
			continue
		}
		c.resolveDecl(decl, sym)
	}
}

func (c *checker) resolveDecl(decl ast.Stmt, sym *Symbol) {
	switch d := decl.(type) {
	case *ast.StructDecl:
		st := sym.Type.(*types.Struct)
		seen := map[string]bool{}
		for _, f := range d.Fields {
			if seen[f.Name] {
				c.errorf(diag.DuplicateDeclaration, f.Pos, "field '%s' is already declared in struct '%s'", f.Name, d.Name)
				continue
			}
			seen[f.Name] = true
			st.Fields = append(st.Fields, types.Field{Name: f.Name, Type: c.resolveType(f.Type)})
		}
	case *ast.EnumDecl:
		en := sym.Type.(*types.Enum)
		seen := map[string]bool{}
		for _, v := range d.Variants {
			if seen[v.Name] {
				c.errorf(diag.DuplicateDeclaration, v.Pos, "variant '%s' is already declared in enum '%s'", v.Name, d.Name)
				continue
			}
			seen[v.Name] = true
			variant := types.Variant{Name: v.Name}
			for _, p := range v.Payload {
				variant.Payload = append(variant.Payload, c.resolveType(p))
			}
			en.Variants = append(en.Variants, variant)
		}
	case *ast.FuncDecl:
		fn := sym.Type.(*types.Func)
		for _, p := range d.Params {
			fn.Params = append(fn.Params, c.resolveType(p.Type))
		}
		if d.Result != nil {
			fn.Result = c.resolveType(d.Result)
		}
		if d.Name == "main" && c.scope == c.global && (len(d.Params) > 0 || !types.Is(fn.Result, types.VoidKind)) {
			c.errorf(diag.TypeMismatch, d.Pos, "main must take no parameters and return void")
		}
	}
}

// resolveType maps a type annotation onto the semantic type model.
func (c *checker) resolveType(te ast.TypeExpr) types.Type {
	switch t := te.(type) {
	case *ast.NamedType:
		switch t.Name {
		case "number":
			return types.Number
		case "string":
			return types.String
		case "boolean":
			return types.Boolean
		case "void":
			return types.Void
		case "any":
			return types.Any
		}
		sym := c.scope.Lookup(t.Name)
		if sym == nil {
			c.errorf(diag.UndeclaredIdentifier, t.Pos, "unknown type '%s'", t.Name)
			return types.Unknown
		}
		switch sym.Kind {
		case SymStruct, SymEnum, SymImport:
			return sym.Type
		}
		c.errorf(diag.TypeMismatch, t.Pos, "'%s' is a %s, not a type", t.Name, sym.Kind)
		return types.Unknown
	case *ast.ArrayType:
		elem := c.resolveType(t.Elem)
		if t.Outer != nil {
			outer := c.resolveType(t.Outer)
			if !types.Equal(outer, elem) && !types.IsUnknown(outer) && !types.IsUnknown(elem) {
				c.errorf(diag.TypeMismatch, t.Pos, "array type '%s' does not match its element type '%s'", outer, elem)
			}
		}
		if types.Is(elem, types.VoidKind) {
			c.errorf(diag.TypeMismatch, t.Pos, "array elements cannot be void")
		}
		size := types.Dynamic
		if t.Fixed {
			size = t.Size
		}
		return &types.Array{Elem: elem, Size: size}
	case *ast.RefType:
		return &types.Ref{Mutable: t.Mutable, Inner: c.resolveType(t.Inner)}
	}
	return types.Unknown
}

// checkConsts checks top-level constants in source order.
func (c *checker) checkConsts() {
	for _, stmt := range c.unit.Program.Stmts {
		decl, _ := ast.Decl(stmt)
		if d, ok := decl.(*ast.VarDecl); ok && d.Const {
			if sym := c.declSyms[decl]; sym != nil {
				c.withHolder(func() { c.checkVarDecl(d, sym) })
			}
		}
	}
}

// checkMain checks the top-level executable statements in the main scope,
// which function bodies other than main cannot see.
func (c *checker) checkMain() {
	c.main = c.openScope(MainScope)
	for _, stmt := range c.unit.Program.Stmts {
		switch d := stmt.(type) {
		case *ast.FuncDecl, *ast.StructDecl, *ast.EnumDecl, *ast.ImportDecl, *ast.ExportDecl:
			continue
		case *ast.VarDecl:
			if d.Const {
				continue
			}
		}
		c.checkStmt(stmt)
	}
	c.scope = c.global
}

func (c *checker) checkFunctions() {
	for _, stmt := range c.unit.Program.Stmts {
		decl, _ := ast.Decl(stmt)
		d, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		sym := c.declSyms[decl]
		if sym == nil {
			continue
		}
		c.scope = c.global
		if d.Name == "main" {
			c.scope = c.main
		}
		c.checkFuncBody(d, sym.Type.(*types.Func))
		c.scope = c.global
	}
	c.release(c.main.ID)
}

// checkFuncBody checks a function in a fresh function scope whose parent
// is the current scope.
func (c *checker) checkFuncBody(d *ast.FuncDecl, fn *types.Func) {
	savedLoop, savedDepth, savedTry, savedBase, savedFn := c.loop, c.loopDepth, c.tryDepth, c.tryLoopBase, c.fn
	c.loop, c.loopDepth, c.tryDepth, c.tryLoopBase = 0, 0, 0, 0
	c.fn = &funcContext{name: d.Name, result: fn.Result}

	c.openScope(FunctionScope)
	for i, p := range d.Params {
		c.declare(c.scope, &Symbol{Name: p.Name, Kind: SymParam, Type: fn.Params[i], Pos: p.Pos, mutated: &p.Mutated, Used: true})
	}
	c.checkStmts(d.Body.Stmts)
	if !types.Is(fn.Result, types.VoidKind) && !diverges(d.Body) {
		c.errorf(diag.TypeMismatch, d.Pos, "function '%s' must return a value of type '%s' on every path", d.Name, fn.Result)
	}
	c.closeScope()

	c.loop, c.loopDepth, c.tryDepth, c.tryLoopBase, c.fn = savedLoop, savedDepth, savedTry, savedBase, savedFn
}

// withHolder runs f with a fresh temporary borrow holder, ending its
// borrows afterwards. f may switch c.holder to a longer-lived one; those
// borrows survive.
func (c *checker) withHolder(f func()) {
	saved := c.holder
	tmp := c.newTemp()
	c.holder = tmp
	f()
	c.release(tmp)
	c.holder = saved
}

// diverges reports whether control never falls off the end of s.
func diverges(s ast.Stmt) bool {
	return exits(s, true)
}

// exits reports whether every path through s ends in a jump. continue
// counts only when withContinue is set.
func exits(s ast.Stmt, withContinue bool) bool {
	switch s := s.(type) {
	case *ast.ReturnStmt, *ast.ThrowStmt, *ast.BreakStmt:
		return true
	case *ast.ContinueStmt:
		return withContinue
	case *ast.BlockStmt:
		return len(s.Stmts) > 0 && exits(s.Stmts[len(s.Stmts)-1], withContinue)
	case *ast.IfStmt:
		return s.Else != nil && exits(s.Then, withContinue) && exits(s.Else, withContinue)
	case *ast.TryStmt:
		return exits(s.Body, withContinue) && exits(s.Catch, withContinue)
	}
	return false
}

// IsExternalPath reports whether an import path names something outside
// the project: a `::` path, or anything not starting with '.'. Loaders with
// search roots may still resolve a bare path to a local module.
func IsExternalPath(path string) bool {
	return strings.Contains(path, "::") || !strings.HasPrefix(path, ".")
}

func isConstName(name string) bool {
	return constName.MatchString(name)
}
