// Package sexy reads the s-expressions used by the markdown test suites and
// matches them against printed syntax trees.
package sexy

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	Symbol Kind = iota
	String
	Integer
	Ellipsis
	List
)

type Node struct {
	Kind  Kind
	Text  string  // Symbol, String, Integer
	Items []*Node // List
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func (n *Node) String() string {
	switch n.Kind {
	case String:
		return `"` + quoter.Replace(n.Text) + `"`
	case Ellipsis:
		return "..."
	case List:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return n.Text
}

// Match reports whether actual has the shape of pattern. In a pattern the
// symbol _ matches any node and ... matches the rest of a list.
func Match(pattern, actual *Node) bool {
	if pattern.Kind == Symbol && pattern.Text == "_" {
		return true
	}
	if pattern.Kind != actual.Kind {
		return false
	}
	if pattern.Kind != List {
		return pattern.Text == actual.Text
	}
	for i, p := range pattern.Items {
		if p.Kind == Ellipsis {
			return true
		}
		if i >= len(actual.Items) || !Match(p, actual.Items[i]) {
			return false
		}
	}
	return len(pattern.Items) == len(actual.Items)
}

// Parse reads exactly one datum. Comments run from ';' to the end of the
// line. Errors carry the byte offset they were found at.
func Parse(src string) (*Node, error) {
	r := &reader{src: src}
	n, err := r.datum()
	if err != nil {
		return nil, err
	}
	r.skip()
	if r.pos < len(r.src) {
		return nil, fmt.Errorf("offset %d: trailing input %q", r.pos, r.src[r.pos:])
	}
	return n, nil
}

type reader struct {
	src string
	pos int
}

func (r *reader) peek(off int) rune {
	if r.pos+off >= len(r.src) {
		return 0
	}
	c, _ := utf8.DecodeRuneInString(r.src[r.pos+off:])
	return c
}

func (r *reader) span(ok func(rune) bool) {
	for r.pos < len(r.src) {
		c, w := utf8.DecodeRuneInString(r.src[r.pos:])
		if !ok(c) {
			return
		}
		r.pos += w
	}
}

func (r *reader) skip() {
	for r.pos < len(r.src) {
		c, w := utf8.DecodeRuneInString(r.src[r.pos:])
		switch {
		case c == ';':
			r.span(func(c rune) bool { return c != '\n' && c != '\r' })
		case unicode.IsSpace(c):
			r.pos += w
		default:
			return
		}
	}
}

func (r *reader) datum() (*Node, error) {
	r.skip()
	if r.pos >= len(r.src) {
		return nil, errors.New("unexpected end of input")
	}
	start := r.pos
	c, w := utf8.DecodeRuneInString(r.src[r.pos:])
	switch {
	case c == '(':
		r.pos += w
		return r.list(start)
	case c == ')':
		return nil, fmt.Errorf("offset %d: unexpected ')'", start)
	case c == '"':
		return r.str(start)
	case strings.HasPrefix(r.src[r.pos:], "..."):
		r.pos += len("...")
		return &Node{Kind: Ellipsis}, nil
	case unicode.IsDigit(c), (c == '+' || c == '-') && unicode.IsDigit(r.peek(w)):
		r.pos += w
		r.span(unicode.IsDigit)
		return &Node{Kind: Integer, Text: r.src[start:r.pos]}, nil
	case c == '+' || c == '-':
		r.pos += w
		return &Node{Kind: Symbol, Text: r.src[start:r.pos]}, nil
	case unicode.IsLetter(c) || c == '_':
		r.span(isSymbolRune)
		return &Node{Kind: Symbol, Text: r.src[start:r.pos]}, nil
	}
	return nil, fmt.Errorf("offset %d: unexpected character %q", start, c)
}

func (r *reader) list(start int) (*Node, error) {
	n := &Node{Kind: List}
	for {
		r.skip()
		if r.pos >= len(r.src) {
			return nil, fmt.Errorf("offset %d: unclosed list", start)
		}
		if r.src[r.pos] == ')' {
			r.pos++
			return n, nil
		}
		item, err := r.datum()
		if err != nil {
			return nil, err
		}
		n.Items = append(n.Items, item)
	}
}

// str reads a string literal; only \" and \\ are escapes.
func (r *reader) str(start int) (*Node, error) {
	var b strings.Builder
	for i := start + 1; i < len(r.src); i++ {
		switch c := r.src[i]; c {
		case '"':
			r.pos = i + 1
			return &Node{Kind: String, Text: b.String()}, nil
		case '\\':
			if i+1 >= len(r.src) || (r.src[i+1] != '"' && r.src[i+1] != '\\') {
				return nil, fmt.Errorf("offset %d: invalid escape in string", i)
			}
			i++
			b.WriteByte(r.src[i])
		default:
			b.WriteByte(c)
		}
	}
	return nil, fmt.Errorf("offset %d: unterminated string", start)
}

func isSymbolRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}
