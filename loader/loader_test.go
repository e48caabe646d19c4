package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strager/jrust/diag"
	"github.com/stretchr/testify/require"
)

const header = "#![allow(non_snake_case, unused_mut, unused_variables, dead_code)]\n"

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return dir
}

func paths(files []File) string {
	var out []string
	for _, f := range files {
		out = append(out, f.Path)
	}
	return strings.Join(out, " ")
}

func content(t *testing.T, files []File, path string) string {
	t.Helper()
	for _, f := range files {
		if f.Path == path {
			return f.Content
		}
	}
	t.Fatalf("no file %s in %s", path, paths(files))
	return ""
}

var project = map[string]string{
	"main.jr": `import {add} from "./utils/math";
import {User} from "./models";
let u = User { name: "a" };
print(add(1, 2), u.name);
`,
	"utils/math.jr": `import {twice} from "./helpers";
export function add(a: number, b: number): number { return twice(a) + b; }
`,
	"utils/helpers.jr": `export function twice(n: number): number { return n * 2; }
`,
	"models/index.jr": `export struct User { name: string }
`,
}

func TestBuildLayout(t *testing.T) {
	dir := writeTree(t, project)
	res, err := Build(filepath.Join(dir, "main.jr"), Options{})
	require.NoError(t, err)
	require.False(t, res.HasErrors(), res.Diagnostics().String())

	require.Equal(t, "utils/helpers.jr utils/math.jr models/index.jr main.jr", strings.Join(res.Build.Order, " "))
	require.Equal(t, "main.rs models/mod.rs utils/helpers.rs utils/math.rs utils/mod.rs", paths(res.Files))

	require.Equal(t, header+`mod models;
mod utils;
use crate::utils::math::add;
use crate::models::User;

fn main() {
    let mut u: User = User { name: "a".to_string() };
    println!("{} {}", add(1, 2), u.name);
}
`, content(t, res.Files, "main.rs"))

	require.Equal(t, header+`use crate::utils::helpers::twice;

pub fn add(a: i32, b: i32) -> i32 {
    return twice(a) + b;
}
`, content(t, res.Files, "utils/math.rs"))

	require.Equal(t, "pub mod helpers;\npub mod math;\n", content(t, res.Files, "utils/mod.rs"))
	require.Contains(t, content(t, res.Files, "models/mod.rs"), "pub struct User {\n    pub name: String,\n}")
}

func TestBuildIndexEntry(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"src/index.jr":  `import {greet} from "./greet"; greet();`,
		"src/greet.jr":  `export function greet(): void { print("hi"); }`,
		"src/unused.jr": `this is not jrust`,
	})
	res, err := Build(filepath.Join(dir, "src", "index.jr"), Options{})
	require.NoError(t, err)
	require.False(t, res.HasErrors(), res.Diagnostics().String())
	require.Equal(t, "greet.rs main.rs", paths(res.Files))
	require.Contains(t, content(t, res.Files, "main.rs"), "mod greet;\nuse crate::greet::greet;\n")
}

func TestBuildSearchRoots(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"app/main.jr":    `import {shout} from "./text"; print(shout("hi"));`,
		"vendor/text.jr": `export function shout(s: string): string { return s.toUpperCase(); }`,
	})
	res, err := Build(filepath.Join(dir, "app", "main.jr"), Options{SearchRoots: []string{filepath.Join(dir, "vendor")}})
	require.NoError(t, err)
	require.False(t, res.HasErrors(), res.Diagnostics().String())
	require.Equal(t, "main.rs text.rs", paths(res.Files))
	require.Contains(t, content(t, res.Files, "main.rs"), `println!("{}", shout("hi".to_string()));`)
}

func TestBuildBareImportFromSearchRoot(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"app/main.jr":    `import {shout} from "text"; print(shout("hi"));`,
		"vendor/text.jr": `export function shout(s: string): string { return s.toUpperCase(); }`,
	})
	opts := Options{SearchRoots: []string{filepath.Join(dir, "vendor")}}
	res, err := Build(filepath.Join(dir, "app", "main.jr"), opts)
	require.NoError(t, err)
	require.False(t, res.HasErrors(), res.Diagnostics().String())
	require.Equal(t, "text.jr main.jr", strings.Join(res.Build.Order, " "))
	require.Equal(t, "main.rs text.rs", paths(res.Files))
	require.Contains(t, content(t, res.Files, "main.rs"), "mod text;\nuse crate::text::shout;\n")

	// the imported signature is checked like any local module
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.jr"), []byte(`import {shout} from "text"; print(shout(1));`), 0644))
	res, err = Build(filepath.Join(dir, "app", "main.jr"), opts)
	require.NoError(t, err)
	require.True(t, res.Diagnostics().Has(diag.TypeMismatch))

	// without the root the same import names a crate
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app", "main.jr"), []byte(`import {shout} from "text";`), 0644))
	res, err = Build(filepath.Join(dir, "app", "main.jr"), Options{})
	require.NoError(t, err)
	require.False(t, res.HasErrors(), res.Diagnostics().String())
	require.Equal(t, "main.rs", paths(res.Files))
	require.Contains(t, content(t, res.Files, "main.rs"), "use text::shout;\n")
}

func TestBuildReportsErrorsWithoutFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.jr": `import {x} from "./missing"; print(1);`,
	})
	res, err := Build(filepath.Join(dir, "main.jr"), Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	require.Empty(t, res.Files)

	diags := res.Diagnostics()
	require.Len(t, diags, 1)
	require.Equal(t, diag.UndeclaredIdentifier, diags[0].Kind)
	require.Equal(t, "main.jr", diags[0].File)
}

func TestBuildCycle(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.jr": `import {b} from "./b"; export function a(): void { }`,
		"b.jr": `import {a} from "./a"; export function b(): void { }`,
	})
	res, err := Build(filepath.Join(dir, "a.jr"), Options{})
	require.NoError(t, err)
	require.True(t, res.Diagnostics().Has(diag.CircularDependency))
	require.Empty(t, res.Files)
}

func TestBuildUnreadableEntry(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope.jr"), Options{})
	require.Error(t, err)
}

func TestCacheHitOnRebuild(t *testing.T) {
	dir := writeTree(t, project)
	cache, err := NewCache(16)
	require.NoError(t, err)

	_, err = Build(filepath.Join(dir, "main.jr"), Options{Cache: cache})
	require.NoError(t, err)
	hits, misses := cache.Stats()
	require.Equal(t, int64(0), hits)
	require.Equal(t, int64(4), misses)

	_, err = Build(filepath.Join(dir, "main.jr"), Options{Cache: cache})
	require.NoError(t, err)
	hits, misses = cache.Stats()
	require.Equal(t, int64(4), hits)
	require.Equal(t, int64(4), misses)
	require.Equal(t, 4, cache.Len())
}

func TestCacheSeesChangedFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.jr": "print(1);"})
	p := filepath.Join(dir, "a.jr")
	cache, err := NewCache(16)
	require.NoError(t, err)

	src, err := cache.Read(p)
	require.NoError(t, err)
	require.Equal(t, "print(1);", src)

	require.NoError(t, os.WriteFile(p, []byte("print(22);"), 0644))
	src, err = cache.Read(p)
	require.NoError(t, err)
	require.Equal(t, "print(22);", src)
}

func TestSourcesAreNormalized(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.jr": "\xef\xbb\xbfprint(\"cafe\u0301\");",
	})
	res, err := Build(filepath.Join(dir, "main.jr"), Options{})
	require.NoError(t, err)
	require.False(t, res.HasErrors(), res.Diagnostics().String())
	require.Contains(t, content(t, res.Files, "main.rs"), "\"caf\u00e9\"")
}

func TestResolve(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.jr":        ``,
		"lib/index.jr":   ``,
		"lib/strings.jr": ``,
		"extra/deep.jr":  ``,
	})
	fs, err := NewFS(dir, []string{filepath.Join(dir, "extra")}, nil)
	require.NoError(t, err)
	main, err := fs.Add(filepath.Join(dir, "main.jr"))
	require.NoError(t, err)
	require.Equal(t, "main.jr", main)

	tests := []struct {
		from, path, key string
		external        bool
	}{
		{"main.jr", "./lib", "lib/index.jr", false},
		{"main.jr", "./lib/strings", "lib/strings.jr", false},
		{"main.jr", "./lib/strings.jr", "lib/strings.jr", false},
		{"lib/strings.jr", "./index", "lib/index.jr", false},
		{"lib/strings.jr", "../main", "main.jr", false},
		{"main.jr", "./deep", "extra/deep.jr", false},
		{"main.jr", "deep", "extra/deep.jr", false},
		{"lib/strings.jr", "deep.jr", "extra/deep.jr", false},
		{"main.jr", "lib", "", true},
		{"main.jr", "std::fs", "", true},
		{"main.jr", "serde", "", true},
	}
	for _, tt := range tests {
		key, external, err := fs.Resolve(tt.from, tt.path)
		require.NoError(t, err, tt.path)
		require.Equal(t, tt.key, key, tt.path)
		require.Equal(t, tt.external, external, tt.path)
	}

	_, _, err = fs.Resolve("main.jr", "./nowhere")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	files := []File{
		{Path: "main.rs", Content: "fn main() {}\n"},
		{Path: "a/b/mod.rs", Content: "pub mod c;\n"},
	}
	require.NoError(t, Write(dir, files))
	data, err := os.ReadFile(filepath.Join(dir, "a", "b", "mod.rs"))
	require.NoError(t, err)
	require.Equal(t, "pub mod c;\n", string(data))
}
