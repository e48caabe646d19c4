package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"test_var", "test_var"},
		{"ref-mut", "ref-mut"},
		{"_", "_"},
		{"+", "+"},
		{"nil", "nil"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Kind, Symbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`""`, "", `""`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
		{`"café ünïcode"`, "café ünïcode", `"café ünïcode"`},
		{"\"two\nlines\"", "two\nlines", "\"two\nlines\""},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Kind, String)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseInteger(t *testing.T) {
	for _, input := range []string{"42", "0", "-123", "+7"} {
		result, err := Parse(input)
		be.Err(t, err, nil)
		be.Equal(t, result.Kind, Integer)
		be.Equal(t, result.Text, input)
	}
}

func TestParseList(t *testing.T) {
	result, err := Parse(`(binary "+" (integer 1) (ident "x"))`)
	be.Err(t, err, nil)
	be.Equal(t, result.Kind, List)
	be.Equal(t, len(result.Items), 4)
	be.Equal(t, result.Items[0].Text, "binary")
	be.Equal(t, result.Items[1].Kind, String)
	be.Equal(t, result.Items[2].Items[1].Text, "1")
	be.Equal(t, result.Items[3].Items[1].Text, "x")

	empty, err := Parse("()")
	be.Err(t, err, nil)
	be.Equal(t, len(empty.Items), 0)
	be.Equal(t, empty.String(), "()")
}

func TestRoundTripParsing(t *testing.T) {
	tests := []string{
		"hello",
		`"world"`,
		"42",
		"...",
		"()",
		"(1 2 3)",
		`(binary "+" 1 2)`,
		`(program (let "x" "number" (integer 1)) ...)`,
	}

	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			result1, err := Parse(test)
			be.Err(t, err, nil)
			output := result1.String()

			result2, err := Parse(output)
			be.Err(t, err, nil)
			be.Equal(t, result2.String(), output)
		})
	}
}

func TestParseComments(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"; comment\nhello", "hello"},
		{"hello ; trailing comment", "hello"},
		{"(test ; inline comment\n world)", "(test world)"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"unterminated string`, "offset 0: unterminated string"},
		{`"invalid \escape"`, "offset 9: invalid escape in string"},
		{`"trailing \`, "offset 10: invalid escape in string"},
		{".", "offset 0: unexpected character '.'"},
		{"(1 2 . 4)", "offset 5: unexpected character '.'"},
		{"@", "offset 0: unexpected character '@'"},
		{"[1]", "offset 0: unexpected character '['"},
		{"(", "offset 0: unclosed list"},
		{"(a (hello", "offset 3: unclosed list"},
		{")", "offset 0: unexpected ')'"},
		{"", "unexpected end of input"},
		{"  ; only a comment", "unexpected end of input"},
		{"hello world", `offset 6: trailing input "world"`},
		{"(test) more", `offset 7: trailing input "more"`},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			result, err := Parse(test.input)
			be.True(t, err != nil)
			be.Equal(t, err.Error(), test.expected)
			be.True(t, result == nil)
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern, actual string
		want            bool
	}{
		{`(binary "+" (integer 1) (integer 2))`, `(binary "+" (integer 1) (integer 2))`, true},
		{`(binary "+" (integer 1) (integer 2))`, `(binary "-" (integer 1) (integer 2))`, false},
		{`(binary _ (integer 1) _)`, `(binary "*" (integer 1) (ident "x"))`, true},
		{`(program (let "x" ...) ...)`, `(program (let "x" nil (integer 1)) (print))`, true},
		{`(program ...)`, `(program)`, true},
		{`(program (print))`, `(program (print) (print))`, false},
		{`(program (print) (print))`, `(program (print))`, false},
		{`(integer 1)`, `(integer "1")`, false},
		{`_`, `(anything at all)`, true},
		{`(a)`, `a`, false},
	}

	for _, test := range tests {
		t.Run(test.pattern, func(t *testing.T) {
			pattern, err := Parse(test.pattern)
			be.Err(t, err, nil)
			actual, err := Parse(test.actual)
			be.Err(t, err, nil)
			be.Equal(t, Match(pattern, actual), test.want)
		})
	}
}
