package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence is the info string of a code fence inside a test case.
type Fence string

const (
	FenceInput Fence = "jrust"
	// FenceAST holds an s-expression pattern for the parsed program.
	FenceAST Fence = "ast"
	// FenceRust holds text the generated Rust must contain.
	FenceRust Fence = "rust"
	// FenceDiagnostics lists the expected diagnostics, one per line.
	FenceDiagnostics Fence = "diagnostics"
)

func (f Fence) known() bool {
	switch f {
	case FenceInput, FenceAST, FenceRust, FenceDiagnostics:
		return true
	}
	return false
}

type Assertion struct {
	Fence   Fence
	Content string
	Pattern *Node // FenceAST only
	Line    int
}

type TestCase struct {
	Name       string
	Input      string
	Line       int // of the input; 0 until one is seen
	Assertions []Assertion
}

// Cases reads the test cases of a markdown suite. A heading "Test: <name>"
// starts a case holding one jrust fence and at least one assertion fence.
// Fences without a language are prose and ignored.
func Cases(markdown string) ([]TestCase, error) {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var cases []TestCase
	var cur *TestCase
	finish := func() error {
		switch {
		case cur == nil:
			return nil
		case cur.Line == 0:
			return fmt.Errorf("test %q has no jrust fence", cur.Name)
		case len(cur.Assertions) == 0:
			return fmt.Errorf("test %q has no assertions", cur.Name)
		}
		cases = append(cases, *cur)
		return nil
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			if name, ok := strings.CutPrefix(plainText(n, src), "Test: "); ok {
				if err := finish(); err != nil {
					return ast.WalkStop, err
				}
				cur = &TestCase{Name: name}
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			return ast.WalkSkipChildren, addFence(cur, n, src)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func addFence(tc *TestCase, f *ast.FencedCodeBlock, src []byte) error {
	lang := Fence(f.Language(src))
	if lang == "" {
		return nil
	}
	line := firstLine(f, src)
	if !lang.known() {
		return fmt.Errorf("line %d: unknown fence language %q", line, lang)
	}
	if tc == nil {
		return fmt.Errorf("line %d: %s fence outside a test case", line, lang)
	}

	var body strings.Builder
	for i := 0; i < f.Lines().Len(); i++ {
		seg := f.Lines().At(i)
		body.Write(seg.Value(src))
	}
	content := strings.TrimRight(body.String(), "\n")

	if lang == FenceInput {
		if tc.Line != 0 {
			return fmt.Errorf("line %d: test %q already has an input", line, tc.Name)
		}
		tc.Input, tc.Line = content, line
		return nil
	}
	a := Assertion{Fence: lang, Content: content, Line: line}
	if lang == FenceAST {
		p, err := Parse(content)
		if err != nil {
			return fmt.Errorf("line %d: test %q: bad ast pattern: %w", line, tc.Name, err)
		}
		a.Pattern = p
	}
	tc.Assertions = append(tc.Assertions, a)
	return nil
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		} else {
			b.WriteString(plainText(c, src))
		}
	}
	return b.String()
}

// firstLine is the 1-based line of a fence's first content line.
func firstLine(f *ast.FencedCodeBlock, src []byte) int {
	if f.Lines().Len() == 0 {
		return 1
	}
	start := f.Lines().At(0).Start
	return bytes.Count(src[:start], []byte("\n")) + 1
}
