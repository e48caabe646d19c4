// Package parser builds a jRust syntax tree from tokens.
package parser

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
)

// bailout unwinds the parser to the nearest statement boundary after a
// syntax error has been reported.
type bailout struct{}

type parser struct {
	tokens []lexer.Token
	pos    int
	errs   diag.List

	// noStructLit disables `Name { ... }` literals in if/while/for headers,
	// where the brace opens the body.
	noStructLit bool
	// unterminated is set once an UnterminatedBlock has been reported, so
	// enclosing blocks stay quiet.
	unterminated bool
}

// Parse builds a Program from tokens. Syntax errors are reported as
// diagnostics; the parser resynchronizes and keeps going, so the returned
// program holds every statement that parsed cleanly.
func Parse(tokens []lexer.Token) (*ast.Program, diag.List) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		eof := lexer.Token{Type: lexer.EOF, Line: 1, Column: 1}
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			eof.Line, eof.Column = last.Line, last.Column+len([]rune(last.Literal))
		}
		tokens = append(append([]lexer.Token(nil), tokens...), eof)
	}
	p := &parser{tokens: tokens}
	prog := &ast.Program{}
	for !p.at(lexer.EOF) {
		if p.at(lexer.RBRACE) {
			p.errorf(diag.UnexpectedToken, p.cur(), "unexpected %s", p.cur())
			p.next()
			continue
		}
		if stmt := p.parseStatementRecover(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}
	return prog, p.errs
}

func (p *parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) lexer.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) at(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *parser) next() lexer.Token {
	tok := p.cur()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(t lexer.TokenType) bool {
	if p.at(t) {
		p.next()
		return true
	}
	return false
}

func posOf(tok lexer.Token) ast.Pos {
	return ast.Pos{Line: tok.Line, Column: tok.Column}
}

func (p *parser) errorf(kind diag.Kind, tok lexer.Token, format string, args ...interface{}) {
	p.errs.Errorf(kind, tok.Line, tok.Column, format, args...)
}

// expect consumes a token of type t or reports what was missing and bails
// out of the current statement.
func (p *parser) expect(t lexer.TokenType, context string) lexer.Token {
	if p.at(t) {
		return p.next()
	}
	p.errorf(diag.MissingExpectedToken, p.cur(), "expected '%s' %s, found %s", describe(t), context, p.cur())
	panic(bailout{})
}

func (p *parser) expectIdent(context string) lexer.Token {
	if p.at(lexer.IDENT) {
		return p.next()
	}
	kind := diag.UnexpectedToken
	if p.at(lexer.EOF) {
		kind = diag.MissingExpectedToken
	}
	p.errorf(kind, p.cur(), "expected identifier %s, found %s", context, p.cur())
	panic(bailout{})
}

func describe(t lexer.TokenType) string {
	switch t {
	case lexer.CATCH:
		return "catch"
	case lexer.FROM:
		return "from"
	case lexer.IN:
		return "in"
	}
	return string(t)
}

// parseStatementRecover parses one statement, resynchronizing on error.
// It returns nil when the statement was abandoned.
func (p *parser) parseStatementRecover() (stmt ast.Stmt) {
	start := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			if p.pos == start {
				p.next()
			}
			stmt = nil
		}
	}()
	return p.parseStatement()
}

// synchronize skips to a plausible statement boundary: just past a ';',
// or before a '}' or a statement keyword.
func (p *parser) synchronize() {
	for !p.at(lexer.EOF) {
		switch p.cur().Type {
		case lexer.SEMICOLON:
			p.next()
			return
		case lexer.RBRACE, lexer.LET, lexer.CONST, lexer.FUNCTION, lexer.RETURN, lexer.IF, lexer.WHILE,
			lexer.FOR, lexer.BREAK, lexer.CONTINUE, lexer.STRUCT, lexer.ENUM, lexer.IMPORT, lexer.EXPORT,
			lexer.TRY, lexer.THROW, lexer.PRINT:
			return
		}
		p.next()
	}
}
