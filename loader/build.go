// Package loader builds a jrust project: it reads modules from disk, checks
// the module graph and lays the generated Rust out as a crate.
package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/checker"
	"github.com/strager/jrust/codegen"
	"github.com/strager/jrust/diag"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	SearchRoots []string
	// Cache is shared between builds. A private cache is used when nil.
	Cache *Cache
}

// File is one generated file. Path is slash-separated and relative to the
// crate directory.
type File struct {
	Path    string
	Content string
}

type Result struct {
	Build *checker.Build
	// Files is empty when any module has errors.
	Files []File
}

func (r *Result) Diagnostics() diag.List {
	return r.Build.Diagnostics()
}

func (r *Result) HasErrors() bool {
	return r.Build.HasErrors()
}

// Check reads and checks the module graph rooted at entry without
// generating anything.
func Check(entry string, opts Options) (*checker.Build, error) {
	cache := opts.Cache
	if cache == nil {
		var err error
		if cache, err = NewCache(DefaultCacheSize); err != nil {
			return nil, err
		}
	}
	fs, err := NewFS(filepath.Dir(entry), opts.SearchRoots, cache)
	if err != nil {
		return nil, err
	}
	key, err := fs.Add(entry)
	if err != nil {
		return nil, err
	}
	b, err := checker.CheckModules(key, fs)
	if err != nil {
		return nil, err
	}
	diags := b.Diagnostics()
	log.Info("Checked modules", "entry", key, "units", len(b.Order), "errors", len(diags.Errors()), "warnings", len(diags.Warnings()))
	return b, nil
}

// Build checks the module graph rooted at entry and, when it is free of
// errors, generates every module concurrently. The returned error is for
// failures outside the program itself, such as an unreadable entry.
func Build(entry string, opts Options) (*Result, error) {
	b, err := Check(entry, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Build: b}
	if b.HasErrors() {
		return res, nil
	}

	tree := moduleTree(b)
	files := make([]File, len(b.Order))
	var g errgroup.Group
	for i, key := range b.Order {
		children := tree[modulePath(key)]
		if key == b.Entry {
			children = tree[""]
		}
		g.Go(func() error {
			content, err := generate(b.Units[key], key == b.Entry, children)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			files[i] = File{Path: outputPath(key, key == b.Entry), Content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res.Files = append(files, parentModules(b, tree)...)
	sort.Slice(res.Files, func(i, j int) bool { return res.Files[i].Path < res.Files[j].Path })
	return res, nil
}

func generate(unit *checker.Unit, entry bool, children []string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*codegen.Fault)
			if !ok {
				panic(r)
			}
			err = f
		}
	}()
	opts := []codegen.Option{
		codegen.WithModules(children...),
		codegen.WithImportPath(importPath),
	}
	if !entry {
		opts = append(opts, codegen.AsModule())
	}
	return codegen.Generate(unit, opts...), nil
}

func importPath(d *ast.ImportDecl) string {
	return codegen.ModulePath(d.Resolved)
}

// modulePath is the slash-separated module a key defines: "utils/math.jr"
// is "utils/math" and "models/index.jr" is "models".
func modulePath(key string) string {
	p := strings.TrimSuffix(key, ".jr")
	if p == "index" {
		return ""
	}
	return strings.TrimSuffix(p, "/index")
}

func outputPath(key string, entry bool) string {
	switch {
	case entry:
		return "main.rs"
	case path.Base(key) == "index.jr":
		return path.Join(path.Dir(key), "mod.rs")
	}
	return strings.TrimSuffix(key, ".jr") + ".rs"
}

// moduleTree maps each module path to the sorted names of its child
// modules. Directories without an index module still appear.
func moduleTree(b *checker.Build) map[string][]string {
	seen := map[string]map[string]bool{}
	for _, key := range b.Order {
		if key == b.Entry {
			continue
		}
		segs := strings.Split(modulePath(key), "/")
		for i, seg := range segs {
			parent := strings.Join(segs[:i], "/")
			if seen[parent] == nil {
				seen[parent] = map[string]bool{}
			}
			seen[parent][seg] = true
		}
	}
	tree := map[string][]string{}
	for parent, children := range seen {
		for name := range children {
			tree[parent] = append(tree[parent], name)
		}
		sort.Strings(tree[parent])
	}
	return tree
}

// parentModules synthesizes mod.rs for directories that hold modules but
// have no index module of their own.
func parentModules(b *checker.Build, tree map[string][]string) []File {
	defined := map[string]bool{"": true}
	for _, key := range b.Order {
		if key != b.Entry {
			defined[modulePath(key)] = true
		}
	}
	var files []File
	for dir, children := range tree {
		if defined[dir] {
			continue
		}
		var sb strings.Builder
		for _, name := range children {
			fmt.Fprintf(&sb, "pub mod %s;\n", name)
		}
		files = append(files, File{Path: path.Join(dir, "mod.rs"), Content: sb.String()})
	}
	return files
}

// Write stores files under dir, creating directories as needed.
func Write(dir string, files []File) error {
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(f.Content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", p, err)
		}
		log.Info("Wrote file", "path", p, "bytes", len(f.Content))
	}
	return nil
}
