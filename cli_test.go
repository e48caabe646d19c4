package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/nalgeon/be"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/project"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(append([]string{"jrust", "--color", "never", "--verbosity", "0"}, args...))
	return out.String(), errOut.String(), err
}

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	be.Err(t, os.MkdirAll(filepath.Dir(p), 0755), nil)
	be.Err(t, os.WriteFile(p, []byte(src), 0644), nil)
	return p
}

func TestReporterWithoutColor(t *testing.T) {
	color.NoColor = true
	d := diag.Diagnostic{
		Severity: diag.Warning,
		Kind:     diag.UnusedVariable,
		Message:  "'x' is never used",
		File:     "main.jr",
		Line:     3,
		Column:   9,
	}
	r := newReporter(nil)
	be.Equal(t, r.format(d), d.String())
	d.File = ""
	d.Severity = diag.Error
	be.Equal(t, r.format(d), d.String())
}

func TestColorEnabled(t *testing.T) {
	on, err := colorEnabled("always", os.Stderr)
	be.Err(t, err, nil)
	be.True(t, on)
	on, err = colorEnabled("never", os.Stderr)
	be.Err(t, err, nil)
	be.True(t, !on)
	_, err = colorEnabled("sometimes", os.Stderr)
	be.True(t, err != nil)
}

func TestFailure(t *testing.T) {
	be.Err(t, failure(0), nil)
	be.Equal(t, failure(1).Error(), "aborting due to 1 error")
	be.Equal(t, failure(3).Error(), "aborting due to 3 errors")
}

func TestEmit(t *testing.T) {
	file := writeSource(t, t.TempDir(), "hello.jr", `print("Hello, World!");`)
	stdout, stderr, err := run(t, "emit", file)
	be.Err(t, err, nil)
	be.Equal(t, stderr, "")
	be.True(t, strings.Contains(stdout, `println!("{}", "Hello, World!");`))
}

func TestEmitToFile(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "hello.jr", `let x = 1;`)
	out := filepath.Join(dir, "hello.rs")
	stdout, _, err := run(t, "emit", "-o", out, file)
	be.Err(t, err, nil)
	be.Equal(t, stdout, "")
	rust, err := os.ReadFile(out)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(rust), "let mut x: i32 = 1;"))
}

func TestEmitAST(t *testing.T) {
	file := writeSource(t, t.TempDir(), "a.jr", `print("hi");`)
	stdout, _, err := run(t, "emit", "--ast", file)
	be.Err(t, err, nil)
	be.Equal(t, stdout, "(program (print (string \"hi\")))\n")
}

func TestEmitDump(t *testing.T) {
	file := writeSource(t, t.TempDir(), "a.jr", `let answer = 42;`)
	stdout, _, err := run(t, "emit", "--dump", file)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stdout, "Stmts"))
	be.True(t, strings.Contains(stdout, `"answer"`))
	be.True(t, !strings.Contains(stdout, "fn main"))
}

func TestEmitReportsErrors(t *testing.T) {
	file := writeSource(t, t.TempDir(), "bad.jr", `let x: number = "s";`)
	stdout, stderr, err := run(t, "emit", file)
	be.Equal(t, err.Error(), "aborting due to 1 error")
	be.Equal(t, stdout, "")
	be.True(t, strings.HasPrefix(stderr, file+":1:"))
	be.True(t, strings.Contains(stderr, "error[TypeMismatch]"))
}

func TestEmitWithoutFile(t *testing.T) {
	_, _, err := run(t, "emit")
	be.True(t, errors.Is(err, errNoInput))
}

func TestTokens(t *testing.T) {
	file := writeSource(t, t.TempDir(), "a.jr", `let x = 1;`)
	stdout, _, err := run(t, "tokens", file)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(stdout, "IDENT"))
	be.True(t, strings.Contains(stdout, "keyword"))
	be.True(t, strings.Contains(stdout, "1:5"))
}

func TestTokensReportsLexErrors(t *testing.T) {
	file := writeSource(t, t.TempDir(), "a.jr", `let s = "open`)
	_, stderr, err := run(t, "tokens", file)
	be.True(t, err != nil)
	be.True(t, strings.Contains(stderr, file+":1:9: error[UnterminatedString]"))
}

func TestCheckSummary(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "math.jr", `export function add(a: number, b: number): number { return a + b; }`)
	main := writeSource(t, dir, "main.jr", `import {add} from "./math"; print(add(1, 2));`)
	stdout, stderr, err := run(t, "check", "--summary", main)
	be.Err(t, err, nil)
	be.Equal(t, stderr, "")
	be.True(t, strings.Contains(stdout, "Module"))
	be.True(t, strings.Contains(stdout, "math.jr"))
	be.True(t, strings.Index(stdout, "math.jr") < strings.Index(stdout, "main.jr"))
}

func TestCheckReportsModuleErrors(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "math.jr", `export function add(a: number): number { return "a"; }`)
	main := writeSource(t, dir, "main.jr", `import {add} from "./math"; print(add(1));`)
	_, stderr, err := run(t, "check", main)
	be.Equal(t, err.Error(), "aborting due to 1 error")
	be.True(t, strings.HasPrefix(stderr, "math.jr:1:"))
}

func TestCheckWithoutProject(t *testing.T) {
	_, _, err := run(t, "check", t.TempDir())
	be.True(t, errors.Is(err, project.ErrNoProject))
}

func TestInitThenBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	stdout, _, err := run(t, "init", "--name", "Demo App", dir)
	be.Err(t, err, nil)
	be.Equal(t, stdout, "Created project demo-app in "+dir+"\n")

	stdout, _, err = run(t, "build", dir)
	be.Err(t, err, nil)
	out := filepath.Join(dir, project.DefaultOutput)
	be.Equal(t, stdout, "Generated 2 files in "+out+"\n")

	rust, err := os.ReadFile(filepath.Join(out, "main.rs"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(rust), `println!("{}", "Hello, World!");`))
	cargo, err := os.ReadFile(filepath.Join(out, "Cargo.toml"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(cargo), "demo-app"))
	be.True(t, strings.Contains(string(cargo), "main.rs"))
}

func TestBuildLoneFile(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "tool.jr", `print(1);`)
	out := filepath.Join(dir, "crate")
	_, _, err := run(t, "build", "--output", out, file)
	be.Err(t, err, nil)
	_, err = os.Stat(filepath.Join(out, "main.rs"))
	be.Err(t, err, nil)
	cargo, err := os.ReadFile(filepath.Join(out, "Cargo.toml"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(cargo), "tool"))
}

func TestBuildStopsOnErrors(t *testing.T) {
	dir := t.TempDir()
	file := writeSource(t, dir, "bad.jr", `print(missing);`)
	_, stderr, err := run(t, "build", file)
	be.True(t, err != nil)
	be.True(t, strings.Contains(stderr, "error[UndeclaredIdentifier]"))
	_, err = os.Stat(filepath.Join(dir, project.DefaultOutput))
	be.True(t, os.IsNotExist(err))
}
