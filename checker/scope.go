package checker

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/types"
)

type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymConst
	SymParam
	SymFunc
	SymStruct
	SymEnum
	SymImport // a name from a module whose exports are not known
	SymModule // `import "path" as name`
)

func (k SymbolKind) String() string {
	switch k {
	case SymVar:
		return "variable"
	case SymConst:
		return "constant"
	case SymParam:
		return "parameter"
	case SymFunc:
		return "function"
	case SymStruct:
		return "struct"
	case SymEnum:
		return "enum"
	case SymImport:
		return "import"
	default:
		return "module"
	}
}

// Symbol is one declared name. The ownership fields are only meaningful
// for variables and parameters.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     types.Type
	Pos      ast.Pos
	Scope    *Scope
	Exported bool
	// External marks names imported from outside the project.
	External bool
	Used     bool

	// mutated points at the declaration's flag for bindings that need
	// `mut` in the output.
	mutated *bool
	// loop is the innermost loop enclosing the declaration.
	loop int
	// slot indexes the ownership state in checker.flow.
	slot int
}

// IsConst reports whether the symbol may never be written.
func (s *Symbol) IsConst() bool {
	return s.Kind == SymConst
}

func (s *Symbol) tracked() bool {
	return s.Kind == SymVar || s.Kind == SymParam
}

type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	MainScope
	FunctionScope
	BlockScope
)

// Scope is one level of the lexical scope tree.
type Scope struct {
	ID      int
	Kind    ScopeKind
	Parent  *Scope
	symbols map[string]*Symbol
	order   []*Symbol
}

func newScope(id int, kind ScopeKind, parent *Scope) *Scope {
	return &Scope{ID: id, Kind: kind, Parent: parent, symbols: map[string]*Symbol{}}
}

// Lookup finds name in this scope or an enclosing one.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal finds name in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

func (s *Scope) insert(sym *Symbol) {
	sym.Scope = s
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym)
}

// Symbols lists the scope's symbols in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return s.order
}

// function reports whether the scope is inside a function body.
func (s *Scope) function() bool {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind == FunctionScope {
			return true
		}
	}
	return false
}
