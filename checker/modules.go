package checker

import (
	"fmt"
	"strings"

	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
	"github.com/strager/jrust/parser"
)

// Loader finds and reads project modules for CheckModules.
type Loader interface {
	// Resolve maps an import path written in module from to a module key.
	// external is true when the path names something outside the project,
	// in which case key is unused.
	Resolve(from, path string) (key string, external bool, err error)
	// Load returns the source text of a module.
	Load(key string) (string, error)
}

// Build is a checked module graph.
type Build struct {
	Entry string
	Units map[string]*Unit
	// Order lists every unit after the units it imports.
	Order []string
}

// Diagnostics returns the diagnostics of every unit, sorted.
func (b *Build) Diagnostics() diag.List {
	var all diag.List
	for _, key := range b.Order {
		all.Append(b.Units[key].Diagnostics, key)
	}
	return all.Sorted()
}

func (b *Build) HasErrors() bool {
	for _, u := range b.Units {
		if u.Diagnostics.HasErrors() {
			return true
		}
	}
	return false
}

type visitMark int

const (
	unvisited visitMark = iota
	visiting
	visited
)

type graph struct {
	loader  Loader
	build   *Build
	marks   map[string]visitMark
	stack   []string
	edges   map[string]*ast.ImportDecl // import each module on the stack is following
	pending map[string]diag.List
}

// CheckModules lexes, parses and checks entry and every project module it
// reaches, dependencies first. An import that closes a cycle is reported
// on every module of the cycle and not followed.
func CheckModules(entry string, loader Loader) (*Build, error) {
	src, err := loader.Load(entry)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", entry, err)
	}
	g := &graph{
		loader:  loader,
		build:   &Build{Entry: entry, Units: map[string]*Unit{}},
		marks:   map[string]visitMark{},
		edges:   map[string]*ast.ImportDecl{},
		pending: map[string]diag.List{},
	}
	g.visit(entry, src)
	return g.build, nil
}

func (g *graph) visit(key, src string) {
	g.marks[key] = visiting
	g.stack = append(g.stack, key)

	tokens, lexErrs := lexer.Tokenize(src)
	prog, parseErrs := parser.Parse(tokens)
	var syntax, edges diag.List
	syntax.Append(lexErrs, key)
	syntax.Append(parseErrs, key)

	for _, stmt := range prog.Stmts {
		d, ok := stmt.(*ast.ImportDecl)
		if !ok {
			continue
		}
		dep, external, err := g.loader.Resolve(key, d.Path)
		if err != nil {
			edges.Errorf(diag.UndeclaredIdentifier, d.Line, d.Column, "cannot resolve module '%s': %v", d.Path, err)
			continue
		}
		d.External = external
		if external {
			continue
		}
		d.Resolved = dep
		switch g.marks[dep] {
		case visiting:
			edges.Add(g.cycle(dep, d))
			continue
		case visited:
			continue
		}
		depSrc, err := g.loader.Load(dep)
		if err != nil {
			edges.Errorf(diag.UndeclaredIdentifier, d.Line, d.Column, "cannot read module '%s': %v", d.Path, err)
			continue
		}
		g.edges[key] = d
		g.visit(dep, depSrc)
		delete(g.edges, key)
	}

	unit := &Unit{Path: key, Program: prog}
	if syntax.HasErrors() {
		for _, stmt := range prog.Stmts {
			if d, ok := stmt.(*ast.ImportDecl); ok {
				unit.Imports = append(unit.Imports, d)
			}
		}
	} else {
		unit, _ = Check(prog, WithFile(key), WithImporter(ImporterFunc(g.imported)))
	}
	var all diag.List
	all.Append(syntax, key)
	all.Append(edges, key)
	all.Append(g.pending[key], key)
	all.Append(unit.Diagnostics, key)
	unit.Diagnostics = all.Sorted()

	g.build.Units[key] = unit
	g.build.Order = append(g.build.Order, key)
	g.stack = g.stack[:len(g.stack)-1]
	g.marks[key] = visited
}

func (g *graph) imported(d *ast.ImportDecl) (*Unit, bool) {
	u, ok := g.build.Units[d.Resolved]
	return u, ok
}

// cycle reports the import d that leads back to dep, which is still on the
// stack. Every other module on the cycle gets a diagnostic on the import it
// is following.
func (g *graph) cycle(dep string, d *ast.ImportDecl) diag.Diagnostic {
	start := 0
	for i, key := range g.stack {
		if key == dep {
			start = i
		}
	}
	path := strings.Join(append(append([]string(nil), g.stack[start:]...), dep), " -> ")
	for _, key := range g.stack[start : len(g.stack)-1] {
		edge := g.edges[key]
		list := g.pending[key]
		list.Errorf(diag.CircularDependency, edge.Line, edge.Column, "circular dependency: %s", path)
		g.pending[key] = list
	}
	return diag.Diagnostic{
		Severity: diag.Error,
		Kind:     diag.CircularDependency,
		Line:     d.Line,
		Column:   d.Column,
		Message:  fmt.Sprintf("circular dependency: %s", path),
	}
}
