// Package ast defines the jRust syntax tree. Statement, expression and type
// expression sets are closed: only types in this package implement them.
package ast

import "github.com/strager/jrust/types"

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

type Node interface {
	Position() Pos
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
	Info() *ExprInfo
}

type TypeExpr interface {
	Node
	typeNode()
	String() string
}

// ExprInfo is filled in by the checker. A checked expression always has a
// non-nil Type.
type ExprInfo struct {
	Type types.Type
	// Stringify marks a value stored into an `any` slot.
	Stringify bool
}

func (i *ExprInfo) Info() *ExprInfo { return i }

type Program struct {
	Stmts []Stmt
}

func (*Program) Position() Pos { return Pos{Line: 1, Column: 1} }

// Statements

type VarDecl struct {
	Pos
	Const bool
	Name  string
	Type  TypeExpr // nil when inferred
	Init  Expr     // nil when missing
	// Resolved is set by the checker.
	Resolved types.Type
}

type Param struct {
	Pos
	Name string
	Type TypeExpr
	// Mutated is set by the checker when the body writes to the parameter.
	Mutated bool
}

type FuncDecl struct {
	Pos
	Name   string
	Params []*Param
	Result TypeExpr // nil means void
	Body   *BlockStmt
}

type Field struct {
	Pos
	Name string
	Type TypeExpr
}

type StructDecl struct {
	Pos
	Name   string
	Fields []*Field
}

type Variant struct {
	Pos
	Name    string
	Payload []TypeExpr
}

type EnumDecl struct {
	Pos
	Name     string
	Variants []*Variant
}

type ImportKind int

const (
	ImportNamed   ImportKind = iota // import {A, B as C} from "path";
	ImportDefault                   // import A from "path";
	ImportModule                    // import "path";
)

type ImportItem struct {
	Pos
	Name  string
	Alias string // empty when not renamed
}

// LocalName is the binding the item introduces.
func (i *ImportItem) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Name
}

type ImportDecl struct {
	Pos
	Kind  ImportKind
	Items []*ImportItem // ImportNamed, and the single name of ImportDefault
	Path  string
	Alias string // `as X` after the path
	// Set by the checker.
	External bool
	Resolved string
}

type ExportDecl struct {
	Pos
	Decl Stmt
}

type IfStmt struct {
	Pos
	Cond Expr
	Then *BlockStmt
	Else Stmt // nil, *BlockStmt or *IfStmt
}

type WhileStmt struct {
	Pos
	Cond Expr
	Body *BlockStmt
}

type ForInStmt struct {
	Pos
	Var  string
	Iter Expr
	Body *BlockStmt
	// Mutated is set by the checker when the body writes to Var.
	Mutated bool
}

type BreakStmt struct{ Pos }

type ContinueStmt struct{ Pos }

type ReturnStmt struct {
	Pos
	Value Expr // nil for a bare return
}

type TryStmt struct {
	Pos
	Body       *BlockStmt
	CatchParam string // empty when the catch clause binds nothing
	Catch      *BlockStmt
}

type ThrowStmt struct {
	Pos
	Value Expr
}

type PrintStmt struct {
	Pos
	Level string // "", "error", "info", "warn" or "debug"
	Args  []Expr
}

type ExprStmt struct {
	Pos
	X Expr
}

type BlockStmt struct {
	Pos
	Stmts []Stmt
}

// Expressions

type NumberLit struct {
	Pos
	ExprInfo
	Value int64
}

type StringLit struct {
	Pos
	ExprInfo
	Value string
}

type BoolLit struct {
	Pos
	ExprInfo
	Value bool
}

type ArrayLit struct {
	Pos
	ExprInfo
	Elems []Expr
}

// IdentKind tells what an identifier resolved to.
type IdentKind int

const (
	IdentUnresolved IdentKind = iota
	IdentValue
	IdentConst
	IdentFunc
	IdentTypeName
	IdentModule   // alias of a project module
	IdentExternal // name from outside the project, emitted verbatim
)

type Ident struct {
	Pos
	ExprInfo
	Name string
	Kind IdentKind
}

type BinaryExpr struct {
	Pos
	ExprInfo
	Op    string
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	Pos
	ExprInfo
	Op string // "!" or "-"
	X  Expr
}

type RefExpr struct {
	Pos
	ExprInfo
	Mutable bool
	X       Expr
}

type CallExpr struct {
	Pos
	ExprInfo
	Callee Expr
	Args   []Expr
}

type MemberExpr struct {
	Pos
	ExprInfo
	X    Expr
	Name string
}

type IndexExpr struct {
	Pos
	ExprInfo
	X     Expr
	Index Expr
}

type FieldInit struct {
	Pos
	Name  string
	Value Expr
}

type StructLit struct {
	Pos
	ExprInfo
	Name   string
	Fields []*FieldInit
}

type AssignExpr struct {
	Pos
	ExprInfo
	Target Expr
	Value  Expr
}

// Type expressions

// NamedType is a builtin type keyword or a user type name.
type NamedType struct {
	Pos
	Name string
}

// ArrayType is `Elem[]`, or `Outer[Elem, Size]` for a fixed-size array.
type ArrayType struct {
	Pos
	Elem  TypeExpr
	Outer TypeExpr // fixed arrays only
	Fixed bool
	Size  int
}

type RefType struct {
	Pos
	Mutable bool
	Inner   TypeExpr
}

func (p Pos) Position() Pos { return p }

func (*VarDecl) stmtNode()      {}
func (*FuncDecl) stmtNode()     {}
func (*StructDecl) stmtNode()   {}
func (*EnumDecl) stmtNode()     {}
func (*ImportDecl) stmtNode()   {}
func (*ExportDecl) stmtNode()   {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForInStmt) stmtNode()    {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()   {}
func (*TryStmt) stmtNode()      {}
func (*ThrowStmt) stmtNode()    {}
func (*PrintStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()    {}

func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*ArrayLit) exprNode()   {}
func (*Ident) exprNode()      {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*RefExpr) exprNode()    {}
func (*CallExpr) exprNode()   {}
func (*MemberExpr) exprNode() {}
func (*IndexExpr) exprNode()  {}
func (*StructLit) exprNode()  {}
func (*AssignExpr) exprNode() {}

func (*NamedType) typeNode() {}
func (*ArrayType) typeNode() {}
func (*RefType) typeNode()   {}

func (t *NamedType) String() string { return t.Name }

func (t *ArrayType) String() string {
	if t.Fixed {
		outer := t.Elem.String()
		if t.Outer != nil {
			outer = t.Outer.String()
		}
		return outer + "[" + t.Elem.String() + ", " + itoa(t.Size) + "]"
	}
	return t.Elem.String() + "[]"
}

func (t *RefType) String() string {
	if t.Mutable {
		return "&mut " + t.Inner.String()
	}
	return "&" + t.Inner.String()
}

// Decl unwraps an export so callers can treat exported and plain
// declarations alike.
func Decl(s Stmt) (Stmt, bool) {
	if e, ok := s.(*ExportDecl); ok {
		return e.Decl, true
	}
	return s, false
}
