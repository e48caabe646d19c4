package lexer

import "fmt"

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	EOF = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // main, foo, _bar
	INT    = "INT"    // 12345
	STRING = "STRING" // "hello"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT     = "<"
	GT     = ">"
	EQ     = "=="
	NOT_EQ = "!="
	LE     = "<="
	GE     = ">="

	AND = "&&"
	OR  = "||"
	AMP = "&"

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"
	DOT       = "."

	// Keywords
	LET      = "LET"
	CONST    = "CONST"
	FUNCTION = "FUNCTION"
	RETURN   = "RETURN"
	PRINT    = "PRINT"
	MUT      = "MUT"
	IF       = "IF"
	ELSE     = "ELSE"
	FOR      = "FOR"
	IN       = "IN"
	WHILE    = "WHILE"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	STRUCT   = "STRUCT"
	ENUM     = "ENUM"
	IMPORT   = "IMPORT"
	EXPORT   = "EXPORT"
	FROM     = "FROM"
	AS       = "AS"
	TRY      = "TRY"
	CATCH    = "CATCH"
	THROW    = "THROW"
	TRUE     = "TRUE"
	FALSE    = "FALSE"

	// Type keywords
	NUMBER_TYPE  = "NUMBER_TYPE"
	STRING_TYPE  = "STRING_TYPE"
	BOOLEAN_TYPE = "BOOLEAN_TYPE"
	VOID_TYPE    = "VOID_TYPE"
	ANY_TYPE     = "ANY_TYPE"
)

var keywords = map[string]TokenType{
	"let":      LET,
	"const":    CONST,
	"function": FUNCTION,
	"return":   RETURN,
	"void":     VOID_TYPE,
	"print":    PRINT,
	"number":   NUMBER_TYPE,
	"string":   STRING_TYPE,
	"boolean":  BOOLEAN_TYPE,
	"any":      ANY_TYPE,
	"mut":      MUT,
	"if":       IF,
	"else":     ELSE,
	"for":      FOR,
	"in":       IN,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"struct":   STRUCT,
	"enum":     ENUM,
	"import":   IMPORT,
	"export":   EXPORT,
	"from":     FROM,
	"as":       AS,
	"try":      TRY,
	"catch":    CATCH,
	"throw":    THROW,
	"true":     TRUE,
	"false":    FALSE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Class is the broad family of a token type.
type Class string

const (
	ClassKeyword    Class = "keyword"
	ClassIdentifier Class = "identifier"
	ClassLiteral    Class = "literal"
	ClassOperator   Class = "operator"
	ClassDelimiter  Class = "delimiter"
	ClassEOF        Class = "eof"
)

func (t TokenType) Class() Class {
	switch t {
	case EOF:
		return ClassEOF
	case IDENT:
		return ClassIdentifier
	case INT, STRING, TRUE, FALSE:
		return ClassLiteral
	case COMMA, SEMICOLON, COLON, LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET, DOT:
		return ClassDelimiter
	case ASSIGN, PLUS, MINUS, BANG, ASTERISK, SLASH, PERCENT, LT, GT, EQ, NOT_EQ, LE, GE, AND, OR, AMP:
		return ClassOperator
	default:
		return ClassKeyword
	}
}

// Token is one lexeme with its position. Line and Column are 1-based;
// Column counts runes.
type Token struct {
	Type     TokenType
	Literal  string // source text
	Value    string // decoded contents of a STRING
	IntValue int64  // only meaningful when Type == INT
	Line     int
	Column   int
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of file"
	case IDENT:
		return fmt.Sprintf("identifier '%s'", t.Literal)
	case INT:
		return fmt.Sprintf("number '%s'", t.Literal)
	case STRING:
		return fmt.Sprintf("string %s", t.Literal)
	default:
		return fmt.Sprintf("'%s'", t.Literal)
	}
}
