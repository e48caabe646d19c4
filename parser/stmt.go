package parser

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
)

// parseStatement parses a statement and returns an AST node
func (p *parser) parseStatement() ast.Stmt {
	tok := p.cur()
	switch tok.Type {
	case lexer.LET, lexer.CONST:
		return p.parseVarDecl()
	case lexer.FUNCTION:
		return p.parseFuncDecl()
	case lexer.STRUCT:
		return p.parseStructDecl()
	case lexer.ENUM:
		return p.parseEnumDecl()
	case lexer.IMPORT:
		return p.parseImportDecl()
	case lexer.EXPORT:
		return p.parseExportDecl()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		p.next()
		cond := p.parseHeaderExpression()
		return &ast.WhileStmt{Pos: posOf(tok), Cond: cond, Body: p.parseBlock()}
	case lexer.FOR:
		p.next()
		name := p.expectIdent("after 'for'")
		p.expect(lexer.IN, "after loop variable")
		iter := p.parseHeaderExpression()
		return &ast.ForInStmt{Pos: posOf(tok), Var: name.Literal, Iter: iter, Body: p.parseBlock()}
	case lexer.BREAK:
		p.next()
		p.expect(lexer.SEMICOLON, "after 'break'")
		return &ast.BreakStmt{Pos: posOf(tok)}
	case lexer.CONTINUE:
		p.next()
		p.expect(lexer.SEMICOLON, "after 'continue'")
		return &ast.ContinueStmt{Pos: posOf(tok)}
	case lexer.RETURN:
		p.next()
		stmt := &ast.ReturnStmt{Pos: posOf(tok)}
		if !p.at(lexer.SEMICOLON) {
			stmt.Value = p.parseExpression()
		}
		p.expect(lexer.SEMICOLON, "after return statement")
		return stmt
	case lexer.TRY:
		return p.parseTry()
	case lexer.THROW:
		p.next()
		value := p.parseExpression()
		p.expect(lexer.SEMICOLON, "after throw statement")
		return &ast.ThrowStmt{Pos: posOf(tok), Value: value}
	case lexer.PRINT:
		return p.parsePrint()
	case lexer.LBRACE:
		return p.parseBlock()
	default:
		x := p.parseExpression()
		p.expect(lexer.SEMICOLON, "after expression")
		return &ast.ExprStmt{Pos: posOf(tok), X: x}
	}
}

// parseBlock parses `{ stmt* }`. Statements inside recover on their own so
// one bad line does not swallow the rest of the block.
func (p *parser) parseBlock() *ast.BlockStmt {
	open := p.expect(lexer.LBRACE, "to open block")
	block := &ast.BlockStmt{Pos: posOf(open)}
	for !p.at(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			if !p.unterminated {
				p.unterminated = true
				p.errorf(diag.UnterminatedBlock, open, "block opened here is never closed")
			}
			panic(bailout{})
		}
		if stmt := p.parseStatementRecover(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	p.next() // consume '}'
	return block
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	kw := p.next()
	name := p.expectIdent("in declaration")
	decl := &ast.VarDecl{Pos: posOf(kw), Const: kw.Type == lexer.CONST, Name: name.Literal}
	if p.accept(lexer.COLON) {
		decl.Type = p.parseType()
	}
	if p.accept(lexer.ASSIGN) {
		decl.Init = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "after variable declaration")
	return decl
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	kw := p.next()
	name := p.expectIdent("after 'function'")
	fn := &ast.FuncDecl{Pos: posOf(kw), Name: name.Literal}
	p.expect(lexer.LPAREN, "after function name")
	for !p.at(lexer.RPAREN) {
		pname := p.expectIdent("for parameter")
		p.expect(lexer.COLON, "after parameter name")
		fn.Params = append(fn.Params, &ast.Param{Pos: posOf(pname), Name: pname.Literal, Type: p.parseType()})
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "after parameters")
	if p.accept(lexer.COLON) {
		fn.Result = p.parseType()
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *parser) parseStructDecl() *ast.StructDecl {
	kw := p.next()
	name := p.expectIdent("after 'struct'")
	decl := &ast.StructDecl{Pos: posOf(kw), Name: name.Literal}
	p.expect(lexer.LBRACE, "after struct name")
	for !p.at(lexer.RBRACE) {
		fname := p.expectIdent("for struct field")
		p.expect(lexer.COLON, "after field name")
		decl.Fields = append(decl.Fields, &ast.Field{Pos: posOf(fname), Name: fname.Literal, Type: p.parseType()})
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "after struct fields")
	return decl
}

func (p *parser) parseEnumDecl() *ast.EnumDecl {
	kw := p.next()
	name := p.expectIdent("after 'enum'")
	decl := &ast.EnumDecl{Pos: posOf(kw), Name: name.Literal}
	p.expect(lexer.LBRACE, "after enum name")
	for !p.at(lexer.RBRACE) {
		vname := p.expectIdent("for enum variant")
		v := &ast.Variant{Pos: posOf(vname), Name: vname.Literal}
		if p.accept(lexer.LPAREN) {
			for !p.at(lexer.RPAREN) {
				v.Payload = append(v.Payload, p.parseType())
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RPAREN, "after variant payload")
		}
		decl.Variants = append(decl.Variants, v)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE, "after enum variants")
	return decl
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	kw := p.next()
	decl := &ast.ImportDecl{Pos: posOf(kw)}
	switch {
	case p.accept(lexer.LBRACE):
		decl.Kind = ast.ImportNamed
		for !p.at(lexer.RBRACE) {
			name := p.expectIdent("in import list")
			item := &ast.ImportItem{Pos: posOf(name), Name: name.Literal}
			if p.accept(lexer.AS) {
				item.Alias = p.expectIdent("after 'as'").Literal
			}
			decl.Items = append(decl.Items, item)
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RBRACE, "after import list")
		p.expect(lexer.FROM, "after import list")
	case p.at(lexer.IDENT):
		name := p.next()
		decl.Kind = ast.ImportDefault
		decl.Items = []*ast.ImportItem{{Pos: posOf(name), Name: name.Literal}}
		p.expect(lexer.FROM, "after imported name")
	default:
		decl.Kind = ast.ImportModule
	}
	path := p.expect(lexer.STRING, "for module path")
	decl.Path = path.Value
	if p.accept(lexer.AS) {
		decl.Alias = p.expectIdent("after 'as'").Literal
	}
	p.expect(lexer.SEMICOLON, "after import statement")
	return decl
}

func (p *parser) parseExportDecl() *ast.ExportDecl {
	kw := p.next()
	export := &ast.ExportDecl{Pos: posOf(kw)}
	switch p.cur().Type {
	case lexer.FUNCTION:
		export.Decl = p.parseFuncDecl()
	case lexer.STRUCT:
		export.Decl = p.parseStructDecl()
	case lexer.ENUM:
		export.Decl = p.parseEnumDecl()
	case lexer.CONST:
		export.Decl = p.parseVarDecl()
	default:
		p.errorf(diag.UnexpectedToken, p.cur(), "expected function, struct, enum or const after 'export', found %s", p.cur())
		panic(bailout{})
	}
	return export
}

func (p *parser) parseIf() *ast.IfStmt {
	kw := p.next()
	stmt := &ast.IfStmt{Pos: posOf(kw)}
	stmt.Cond = p.parseHeaderExpression()
	stmt.Then = p.parseBlock()
	if p.accept(lexer.ELSE) {
		if p.at(lexer.IF) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	return stmt
}

func (p *parser) parseTry() *ast.TryStmt {
	kw := p.next()
	stmt := &ast.TryStmt{Pos: posOf(kw)}
	stmt.Body = p.parseBlock()
	p.expect(lexer.CATCH, "after try block")
	if p.accept(lexer.LPAREN) {
		stmt.CatchParam = p.expectIdent("for catch parameter").Literal
		p.expect(lexer.RPAREN, "after catch parameter")
	}
	stmt.Catch = p.parseBlock()
	return stmt
}

var printLevels = map[string]bool{"error": true, "info": true, "warn": true, "debug": true}

func (p *parser) parsePrint() *ast.PrintStmt {
	kw := p.next()
	stmt := &ast.PrintStmt{Pos: posOf(kw)}
	if p.accept(lexer.DOT) {
		level := p.expectIdent("after 'print.'")
		if !printLevels[level.Literal] {
			p.errorf(diag.UnexpectedToken, level, "unknown print level '%s'", level.Literal)
			panic(bailout{})
		}
		stmt.Level = level.Literal
	}
	p.expect(lexer.LPAREN, "after 'print'")
	stmt.Args = p.parseExpressionList(lexer.RPAREN)
	p.expect(lexer.RPAREN, "after print arguments")
	p.expect(lexer.SEMICOLON, "after print statement")
	return stmt
}

// parseType parses a type annotation.
func (p *parser) parseType() ast.TypeExpr {
	tok := p.cur()
	if p.accept(lexer.AMP) {
		ref := &ast.RefType{Pos: posOf(tok)}
		ref.Mutable = p.accept(lexer.MUT)
		ref.Inner = p.parseType()
		return ref
	}

	var t ast.TypeExpr
	switch tok.Type {
	case lexer.NUMBER_TYPE, lexer.STRING_TYPE, lexer.BOOLEAN_TYPE, lexer.VOID_TYPE, lexer.ANY_TYPE, lexer.IDENT:
		p.next()
		t = &ast.NamedType{Pos: posOf(tok), Name: tok.Literal}
	default:
		kind := diag.UnexpectedToken
		if tok.Type == lexer.EOF {
			kind = diag.MissingExpectedToken
		}
		p.errorf(kind, tok, "expected type, found %s", tok)
		panic(bailout{})
	}

	for p.at(lexer.LBRACKET) {
		open := p.next()
		if p.accept(lexer.RBRACKET) {
			t = &ast.ArrayType{Pos: posOf(open), Elem: t}
			continue
		}
		arr := &ast.ArrayType{Pos: posOf(open), Outer: t, Elem: p.parseType()}
		if p.accept(lexer.COMMA) {
			size := p.expect(lexer.INT, "for array size")
			arr.Fixed = true
			arr.Size = int(size.IntValue)
		}
		p.expect(lexer.RBRACKET, "after array type")
		t = arr
	}
	return t
}
