package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naoina/toml"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, FileName)
	writeFile(t, file, "[package]\nname = \"demo\"\n")

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, "demo", cfg.Package.Name)
	require.Equal(t, DefaultVersion, cfg.Package.Version)
	require.Equal(t, DefaultEdition, cfg.Package.Edition)
	require.Equal(t, DefaultEntry, cfg.Build.Entry)
	require.Equal(t, DefaultOutput, cfg.Build.Output)
	require.Empty(t, cfg.Build.SearchRoots)
}

func TestLoadFullConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, FileName)
	writeFile(t, file, `[package]
name = "app"
version = "1.2.3"
edition = "2018"
authors = ["Ada", "Grace"]
description = "an app"

[build]
entry = "lib/main.jr"
output = "out"
search_roots = ["vendor", "/opt/jr"]
`)

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, Package{
		Name:        "app",
		Version:     "1.2.3",
		Edition:     "2018",
		Authors:     []string{"Ada", "Grace"},
		Description: "an app",
	}, cfg.Package)
	require.Equal(t, filepath.Join(dir, "lib", "main.jr"), cfg.EntryPath(dir))
	require.Equal(t, filepath.Join(dir, "out"), cfg.OutputPath(dir))
	require.Equal(t, []string{filepath.Join(dir, "vendor"), "/opt/jr"}, cfg.SearchPaths(dir))
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"unknown key", "[package]\nname = \"x\"\ncolor = \"red\"\n", "color"},
		{"missing name", "[build]\nentry = \"a.jr\"\n", "package name is required"},
		{"bad edition", "[package]\nname = \"x\"\nedition = \"2019\"\n", "edition"},
		{"bad entry", "[package]\nname = \"x\"\n[build]\nentry = \"main.rs\"\n", "not a .jr file"},
		{"syntax", "[package\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), FileName)
			writeFile(t, file, tt.content)
			_, err := Load(file)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.True(t, os.IsNotExist(err))
}

func TestFindRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "[package]\nname = \"x\"\n")
	nested := filepath.Join(dir, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0755))

	root, err := FindRoot(nested)
	require.NoError(t, err)
	want, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, want, root)
}

func TestFindRootWithoutProject(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	require.ErrorIs(t, err, ErrNoProject)
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "My App")
	cfg, err := Init(dir, "")
	require.NoError(t, err)
	require.Equal(t, "my-app", cfg.Package.Name)

	loaded, err := Load(filepath.Join(dir, FileName))
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	src, err := os.ReadFile(filepath.Join(dir, "src", "index.jr"))
	require.NoError(t, err)
	require.Contains(t, string(src), `print("Hello, World!");`)

	_, err = Init(dir, "again")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestInitKeepsExistingEntry(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "src", "index.jr")
	writeFile(t, entry, "print(1);\n")

	_, err := Init(dir, "keep")
	require.NoError(t, err)
	src, err := os.ReadFile(entry)
	require.NoError(t, err)
	require.Equal(t, "print(1);\n", string(src))
}

func TestCargoManifest(t *testing.T) {
	cfg := Default("demo")
	cfg.Package.Authors = []string{"Ada"}
	out, err := cfg.Cargo()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "[package]"), string(out))

	var m cargoManifest
	require.NoError(t, toml.Unmarshal(out, &m))
	require.Equal(t, "demo", m.Package.Name)
	require.Equal(t, DefaultEdition, m.Package.Edition)
	require.Equal(t, []string{"Ada"}, m.Package.Authors)
	require.Equal(t, []cargoBin{{Name: "demo", Path: "main.rs"}}, m.Bin)
}
