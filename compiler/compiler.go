// Package compiler runs the whole pipeline over one source file.
package compiler

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/checker"
	"github.com/strager/jrust/codegen"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
	"github.com/strager/jrust/parser"
)

// Stage is a pipeline phase.
type Stage int

const (
	Lex Stage = iota
	Parse
	Check
	Generate
)

func (s Stage) String() string {
	switch s {
	case Lex:
		return "lex"
	case Parse:
		return "parse"
	case Check:
		return "check"
	case Generate:
		return "generate"
	}
	return "unknown"
}

// Result holds everything the pipeline produced. Stage is the last phase
// that ran; fields of later phases are zero.
type Result struct {
	Name        string
	Stage       Stage
	Tokens      []lexer.Token
	Program     *ast.Program
	Unit        *checker.Unit
	Diagnostics diag.List
	Rust        string
}

// OK reports whether the source compiled to Rust.
func (r *Result) OK() bool {
	return r.Stage == Generate
}

// Compile translates a standalone jrust source to a Rust crate root. Each
// phase runs only if the previous one reported no errors. Warnings never
// stop the pipeline.
func Compile(name, src string) *Result {
	r := &Result{Name: name, Stage: Lex}

	var diags diag.List
	r.Tokens, diags = lexer.Tokenize(src)
	r.Diagnostics.Append(diags, name)
	if r.Diagnostics.HasErrors() {
		return r
	}

	r.Stage = Parse
	r.Program, diags = parser.Parse(r.Tokens)
	r.Diagnostics.Append(diags, name)
	if r.Diagnostics.HasErrors() {
		return r
	}

	r.Stage = Check
	r.Unit, diags = checker.Check(r.Program, checker.WithFile(name))
	r.Diagnostics.Append(diags, name)
	if r.Diagnostics.HasErrors() {
		return r
	}

	r.Stage = Generate
	r.Rust = codegen.Generate(r.Unit)
	return r
}
