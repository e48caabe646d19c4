// Package lexer turns jRust source text into tokens.
package lexer

import (
	"math"
	"strings"

	"github.com/strager/jrust/diag"
)

type lexer struct {
	input  []rune
	pos    int // current reading position in input
	line   int
	col    int
	tokens []Token
	errs   diag.List
}

// Tokenize scans the whole source. Lexical problems are reported as
// diagnostics and scanning continues; the result always ends with EOF.
func Tokenize(source string) ([]Token, diag.List) {
	l := &lexer{input: []rune(source), line: 1, col: 1}
	for {
		tok, ok := l.next()
		if !ok {
			continue
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return l.tokens, l.errs
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset < len(l.input) {
		return l.input[l.pos+offset]
	}
	return 0
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) advance() rune {
	c := l.input[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// next scans one token. It returns false when the scanned text produced no
// token (an unexpected character, for instance).
func (l *lexer) next() (Token, bool) {
	l.skipWhitespaceAndComments()

	tok := Token{Line: l.line, Column: l.col}
	if l.atEnd() {
		tok.Type = EOF
		return tok, true
	}

	start := l.pos
	c := l.peek(0)

	if isLetter(c) {
		lit := l.readIdentifier()
		tok.Type = LookupIdent(lit)
		tok.Literal = lit
		return tok, true
	} else if isDigit(c) {
		return l.readNumber(tok), true
	} else if c == '"' {
		return l.readString(tok), true
	}

	two := string(c) + string(l.peek(1))
	switch two {
	case "==", "!=", "<=", ">=", "&&", "||":
		l.advance()
		l.advance()
		tok.Type = TokenType(two)
		tok.Literal = two
		return tok, true
	}

	switch c {
	case '=', '+', '-', '!', '*', '/', '%', '<', '>', '&',
		',', ';', ':', '(', ')', '{', '}', '[', ']', '.':
		l.advance()
		tok.Type = TokenType(string(c))
		tok.Literal = string(l.input[start:l.pos])
		return tok, true
	}

	l.advance()
	l.errs.Errorf(diag.UnexpectedCharacter, tok.Line, tok.Column, "unexpected character '%c'", c)
	return tok, false
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.atEnd() {
		c := l.peek(0)
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.advance()
		} else if c == '/' && l.peek(1) == '/' {
			for !l.atEnd() && l.peek(0) != '\n' {
				l.advance()
			}
		} else if c == '/' && l.peek(1) == '*' {
			l.skipBlockComment()
		} else {
			return
		}
	}
}

func (l *lexer) skipBlockComment() {
	line, col := l.line, l.col
	l.advance() // skip /
	l.advance() // skip *
	for !l.atEnd() {
		if l.peek(0) == '*' && l.peek(1) == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.errs.Errorf(diag.UnterminatedComment, line, col, "block comment is never closed")
}

func isLetter(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func (l *lexer) readIdentifier() string {
	start := l.pos
	for !l.atEnd() && (isLetter(l.peek(0)) || isDigit(l.peek(0))) {
		l.advance()
	}
	return string(l.input[start:l.pos])
}

func (l *lexer) readNumber(tok Token) Token {
	start := l.pos
	for !l.atEnd() && isDigit(l.peek(0)) {
		l.advance()
	}
	tok.Type = INT

	malformed := false
	if l.peek(0) == '.' && isDigit(l.peek(1)) {
		l.advance()
		for !l.atEnd() && isDigit(l.peek(0)) {
			l.advance()
		}
		malformed = true
	}
	for !l.atEnd() && (isLetter(l.peek(0)) || isDigit(l.peek(0))) {
		l.advance()
		malformed = true
	}
	tok.Literal = string(l.input[start:l.pos])
	if malformed {
		l.errs.Errorf(diag.InvalidNumericLiteral, tok.Line, tok.Column, "invalid numeric literal '%s'", tok.Literal)
		return tok
	}

	var val int64
	for _, d := range tok.Literal {
		val = val*10 + int64(d-'0')
		if val > math.MaxInt32 {
			l.errs.Errorf(diag.InvalidNumericLiteral, tok.Line, tok.Column, "numeric literal '%s' does not fit in a 32-bit integer", tok.Literal)
			return tok
		}
	}
	tok.IntValue = val
	return tok
}

func (l *lexer) readString(tok Token) Token {
	start := l.pos
	l.advance() // skip opening "
	tok.Type = STRING

	var value strings.Builder
	for {
		if l.atEnd() || l.peek(0) == '\n' {
			tok.Literal = string(l.input[start:l.pos])
			tok.Value = value.String()
			l.errs.Errorf(diag.UnterminatedString, tok.Line, tok.Column, "string literal is never closed")
			return tok
		}
		c := l.advance()
		if c == '"' {
			break
		}
		if c == '\\' && !l.atEnd() && l.peek(0) != '\n' {
			esc := l.advance()
			switch esc {
			case 'n':
				value.WriteRune('\n')
			case 'r':
				value.WriteRune('\r')
			case 't':
				value.WriteRune('\t')
			case '"', '\\':
				value.WriteRune(esc)
			default:
				value.WriteRune('\\')
				value.WriteRune(esc)
			}
			continue
		}
		value.WriteRune(c)
	}
	tok.Literal = string(l.input[start:l.pos])
	tok.Value = value.String()
	return tok
}
