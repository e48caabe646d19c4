package parser

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
)

// precedence returns the precedence level for a given token type
func precedence(tokenType lexer.TokenType) int {
	switch tokenType {
	case lexer.ASSIGN:
		return 1 // assignment has very low precedence
	case lexer.OR:
		return 2
	case lexer.AND:
		return 3
	case lexer.EQ, lexer.NOT_EQ:
		return 4
	case lexer.LT, lexer.GT, lexer.LE, lexer.GE:
		return 5
	case lexer.PLUS, lexer.MINUS:
		return 6
	case lexer.ASTERISK, lexer.SLASH, lexer.PERCENT:
		return 7
	default:
		return 0 // not a binary operator
	}
}

// parseExpression parses an expression and returns an AST node
func (p *parser) parseExpression() ast.Expr {
	return p.parseExpressionWithPrecedence(1)
}

// parseHeaderExpression parses the condition of if/while or the iterable of
// for, where a '{' must open the body rather than a struct literal.
func (p *parser) parseHeaderExpression() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = saved }()
	return p.parseExpression()
}

// parseNested parses an expression inside brackets, where struct literals
// are always allowed again.
func (p *parser) parseNested() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	return p.parseExpression()
}

// parseExpressionWithPrecedence implements precedence climbing
func (p *parser) parseExpressionWithPrecedence(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		prec := precedence(p.cur().Type)
		if prec == 0 || prec < minPrec {
			break
		}
		opTok := p.next()
		if opTok.Type == lexer.ASSIGN {
			// right-associative
			right := p.parseExpressionWithPrecedence(prec)
			left = &ast.AssignExpr{Pos: posOf(opTok), Target: left, Value: right}
			continue
		}
		right := p.parseExpressionWithPrecedence(prec + 1) // left-associative
		left = &ast.BinaryExpr{Pos: posOf(opTok), Op: opTok.Literal, Left: left, Right: right}
	}

	return left
}

func (p *parser) parseUnary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.BANG, lexer.MINUS:
		p.next()
		return &ast.UnaryExpr{Pos: posOf(tok), Op: tok.Literal, X: p.parseUnary()}
	case lexer.AMP:
		p.next()
		mutable := p.accept(lexer.MUT)
		return &ast.RefExpr{Pos: posOf(tok), Mutable: mutable, X: p.parseUnary()}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.LPAREN:
			p.next()
			args := p.parseExpressionList(lexer.RPAREN)
			p.expect(lexer.RPAREN, "after call arguments")
			x = &ast.CallExpr{Pos: posOf(tok), Callee: x, Args: args}
		case lexer.LBRACKET:
			p.next()
			index := p.parseNested()
			p.expect(lexer.RBRACKET, "after index")
			x = &ast.IndexExpr{Pos: posOf(tok), X: x, Index: index}
		case lexer.DOT:
			p.next()
			name := p.expectIdent("after '.'")
			x = &ast.MemberExpr{Pos: posOf(name), X: x, Name: name.Literal}
		default:
			return x
		}
	}
}

// parseExpressionList parses comma separated expressions up to (not
// including) end. A trailing comma is allowed.
func (p *parser) parseExpressionList(end lexer.TokenType) []ast.Expr {
	var exprs []ast.Expr
	for !p.at(end) && !p.at(lexer.EOF) {
		exprs = append(exprs, p.parseNested())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	return exprs
}

// parsePrimary handles primary expressions (literals, identifiers, parentheses)
func (p *parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.INT:
		p.next()
		return &ast.NumberLit{Pos: posOf(tok), Value: tok.IntValue}

	case lexer.STRING:
		p.next()
		return &ast.StringLit{Pos: posOf(tok), Value: tok.Value}

	case lexer.TRUE, lexer.FALSE:
		p.next()
		return &ast.BoolLit{Pos: posOf(tok), Value: tok.Type == lexer.TRUE}

	case lexer.IDENT:
		if !p.noStructLit && p.startsStructLit() {
			return p.parseStructLit()
		}
		p.next()
		return &ast.Ident{Pos: posOf(tok), Name: tok.Literal}

	case lexer.LBRACKET:
		p.next()
		elems := p.parseExpressionList(lexer.RBRACKET)
		p.expect(lexer.RBRACKET, "after array elements")
		return &ast.ArrayLit{Pos: posOf(tok), Elems: elems}

	case lexer.LPAREN:
		p.next() // consume '('
		x := p.parseNested()
		p.expect(lexer.RPAREN, "after expression")
		return x

	case lexer.EOF:
		p.errorf(diag.MissingExpectedToken, tok, "expected expression, found end of file")
		panic(bailout{})

	default:
		p.errorf(diag.UnexpectedToken, tok, "expected expression, found %s", tok)
		panic(bailout{})
	}
}

// startsStructLit reports whether the identifier at the cursor opens a
// struct literal: `Name {}` or `Name { field: ...`.
func (p *parser) startsStructLit() bool {
	if p.peekAt(1).Type != lexer.LBRACE {
		return false
	}
	if p.peekAt(2).Type == lexer.RBRACE {
		return true
	}
	return p.peekAt(2).Type == lexer.IDENT && p.peekAt(3).Type == lexer.COLON
}

func (p *parser) parseStructLit() *ast.StructLit {
	name := p.next()
	lit := &ast.StructLit{Pos: posOf(name), Name: name.Literal}
	p.expect(lexer.LBRACE, "after struct name")
	for !p.at(lexer.RBRACE) {
		fname := p.expectIdent("for field")
		p.expect(lexer.COLON, "after field name")
		lit.Fields = append(lit.Fields, &ast.FieldInit{Pos: posOf(fname), Name: fname.Literal, Value: p.parseNested()})
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "after struct fields")
	return lit
}
