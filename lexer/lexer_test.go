package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
	"github.com/strager/jrust/diag"
)

func types(tokens []Token) []TokenType {
	var out []TokenType
	for _, tok := range tokens {
		out = append(out, tok.Type)
	}
	return out
}

func TestIntLiteral(t *testing.T) {
	tokens, errs := Tokenize("12345")
	be.Equal(t, len(errs), 0)
	be.Equal(t, tokens[0].Type, TokenType(INT))
	be.Equal(t, tokens[0].Literal, "12345")
	be.Equal(t, tokens[0].IntValue, int64(12345))
	be.Equal(t, tokens[1].Type, TokenType(EOF))
}

func TestIdentifierAndKeywords(t *testing.T) {
	tokens, errs := Tokenize("let mut foo_1 number string boolean any void")
	be.Equal(t, len(errs), 0)
	want := []TokenType{LET, MUT, IDENT, NUMBER_TYPE, STRING_TYPE, BOOLEAN_TYPE, ANY_TYPE, VOID_TYPE, EOF}
	if diff := cmp.Diff(want, types(tokens)); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
	be.Equal(t, tokens[2].Literal, "foo_1")
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		{"=", ASSIGN},
		{"+", PLUS},
		{"-", MINUS},
		{"!", BANG},
		{"*", ASTERISK},
		{"/", SLASH},
		{"%", PERCENT},
		{"==", EQ},
		{"!=", NOT_EQ},
		{"<", LT},
		{">", GT},
		{"<=", LE},
		{">=", GE},
		{"&&", AND},
		{"||", OR},
		{"&", AMP},
		{".", DOT},
		{":", COLON},
	}

	for _, tt := range tests {
		tokens, errs := Tokenize(tt.input)
		be.Equal(t, len(errs), 0)
		be.Equal(t, tokens[0].Type, tt.expected)
		be.Equal(t, tokens[0].Type.Class() != ClassKeyword, true)
	}
}

func TestTokenClasses(t *testing.T) {
	be.Equal(t, TokenType(LET).Class(), ClassKeyword)
	be.Equal(t, TokenType(IDENT).Class(), ClassIdentifier)
	be.Equal(t, TokenType(TRUE).Class(), ClassLiteral)
	be.Equal(t, TokenType(LBRACE).Class(), ClassDelimiter)
	be.Equal(t, TokenType(AND).Class(), ClassOperator)
	be.Equal(t, TokenType(EOF).Class(), ClassEOF)
}

func TestStatementTokens(t *testing.T) {
	tokens, errs := Tokenize(`let xs: number[] = [1, 2]; print.info(xs.length);`)
	be.Equal(t, len(errs), 0)
	want := []TokenType{
		LET, IDENT, COLON, NUMBER_TYPE, LBRACKET, RBRACKET, ASSIGN, LBRACKET, INT, COMMA, INT, RBRACKET, SEMICOLON,
		PRINT, DOT, IDENT, LPAREN, IDENT, DOT, IDENT, RPAREN, SEMICOLON, EOF,
	}
	if diff := cmp.Diff(want, types(tokens)); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestPositions(t *testing.T) {
	tokens, _ := Tokenize("let a = 1;\n  print(\"é\", b);")
	be.Equal(t, tokens[0].Line, 1)
	be.Equal(t, tokens[0].Column, 1)
	be.Equal(t, tokens[1].Column, 5)
	// print
	be.Equal(t, tokens[5].Line, 2)
	be.Equal(t, tokens[5].Column, 3)
	// b comes after a two-byte rune but is counted in runes
	be.Equal(t, tokens[9].Literal, "b")
	be.Equal(t, tokens[9].Column, 14)
}

func TestComments(t *testing.T) {
	tokens, errs := Tokenize("// line\nlet /* block\n comment */ x")
	be.Equal(t, len(errs), 0)
	be.Equal(t, types(tokens), []TokenType{LET, IDENT, EOF})
	be.Equal(t, tokens[1].Line, 3)
}

func TestUnterminatedComment(t *testing.T) {
	_, errs := Tokenize("let x /* never closed")
	be.Equal(t, errs.Kinds(), []diag.Kind{diag.UnterminatedComment})
}

func TestStringEscapes(t *testing.T) {
	tokens, errs := Tokenize(`"a\"b\\c\nd\te\rf\q"`)
	be.Equal(t, len(errs), 0)
	be.Equal(t, tokens[0].Type, TokenType(STRING))
	be.Equal(t, tokens[0].Value, "a\"b\\c\nd\te\rf\\q")
}

func TestStringEscapeRoundTrip(t *testing.T) {
	for _, value := range []string{"", "plain", "quote \" inside", "back\\slash", "tab\tand\nnewline"} {
		escaped := `"` + escapeForTest(value) + `"`
		tokens, errs := Tokenize(escaped)
		be.Equal(t, len(errs), 0)
		be.Equal(t, tokens[0].Value, value)
	}
}

func escapeForTest(s string) string {
	var out []rune
	for _, r := range s {
		switch r {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

func TestUnterminatedString(t *testing.T) {
	tokens, errs := Tokenize("let s = \"abc\nlet t = 1;")
	be.Equal(t, errs.Kinds(), []diag.Kind{diag.UnterminatedString})
	be.Equal(t, errs[0].Line, 1)
	be.Equal(t, errs[0].Column, 9)
	// scanning resumes on the next line
	be.Equal(t, tokens[4].Type, TokenType(LET))
	be.Equal(t, tokens[4].Line, 2)
}

func TestInvalidNumericLiterals(t *testing.T) {
	for _, src := range []string{"12ab", "3.14", "2147483648"} {
		_, errs := Tokenize(src)
		be.Equal(t, errs.Kinds(), []diag.Kind{diag.InvalidNumericLiteral})
	}
	tokens, errs := Tokenize("2147483647")
	be.Equal(t, len(errs), 0)
	be.Equal(t, tokens[0].IntValue, int64(2147483647))
}

func TestMemberAccessOnNumberIsNotFraction(t *testing.T) {
	tokens, errs := Tokenize("xs[0].len")
	be.Equal(t, len(errs), 0)
	be.Equal(t, types(tokens), []TokenType{IDENT, LBRACKET, INT, RBRACKET, DOT, IDENT, EOF})
}

func TestUnexpectedCharacter(t *testing.T) {
	tokens, errs := Tokenize("a | b @ c")
	be.Equal(t, errs.Kinds(), []diag.Kind{diag.UnexpectedCharacter, diag.UnexpectedCharacter})
	be.Equal(t, errs[0].Column, 3)
	be.Equal(t, types(tokens), []TokenType{IDENT, IDENT, IDENT, EOF})
}

func TestEmptyInput(t *testing.T) {
	tokens, errs := Tokenize("")
	be.Equal(t, len(errs), 0)
	be.Equal(t, len(tokens), 1)
	be.Equal(t, tokens[0].Type, TokenType(EOF))
	be.Equal(t, tokens[0].Line, 1)
}
