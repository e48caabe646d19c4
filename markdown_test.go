package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/compiler"
	"github.com/strager/jrust/sexy"
)

func TestSexyAllTests(t *testing.T) {
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.Cases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					r := compiler.Compile("", tc.Input)
					for _, assertion := range tc.Assertions {
						switch assertion.Fence {
						case sexy.FenceAST:
							assertAST(t, testFile, r, assertion)
						case sexy.FenceRust:
							assertRust(t, testFile, r, assertion)
						case sexy.FenceDiagnostics:
							assertDiagnostics(t, testFile, r, assertion)
						}
					}
				})
			}
		})
	}
}

func assertAST(t *testing.T, file string, r *compiler.Result, a sexy.Assertion) {
	t.Helper()
	if r.Program == nil {
		t.Errorf("%s:%d: program did not parse:\n%s", file, a.Line, r.Diagnostics)
		return
	}
	got, err := sexy.Parse(ast.ToSExpr(r.Program))
	if err != nil {
		t.Fatalf("%s:%d: cannot read printed AST: %v", file, a.Line, err)
	}
	if !sexy.Match(a.Pattern, got) {
		t.Errorf("%s:%d: AST mismatch\nwant: %s\ngot:  %s", file, a.Line, a.Pattern, got)
	}
}

func assertRust(t *testing.T, file string, r *compiler.Result, a sexy.Assertion) {
	t.Helper()
	if !r.OK() {
		t.Errorf("%s:%d: compilation stopped at %s:\n%s", file, a.Line, r.Stage, r.Diagnostics)
		return
	}
	if !strings.Contains(r.Rust, a.Content) {
		t.Errorf("%s:%d: generated Rust does not contain\n%s\n--- got ---\n%s", file, a.Line, a.Content, r.Rust)
	}
}

// assertDiagnostics expects one line per diagnostic, in order. Each line
// must occur in the printed diagnostic.
func assertDiagnostics(t *testing.T, file string, r *compiler.Result, a sexy.Assertion) {
	t.Helper()
	got := r.Diagnostics.Sorted()
	want := strings.Split(a.Content, "\n")
	if len(got) != len(want) {
		t.Errorf("%s:%d: got %d diagnostics, want %d:\n%s", file, a.Line, len(got), len(want), got)
		return
	}
	for i, w := range want {
		if !strings.Contains(got[i].String(), strings.TrimSpace(w)) {
			t.Errorf("%s:%d: diagnostic %d is %q, want it to contain %q", file, a.Line, i+1, got[i], w)
		}
	}
}
