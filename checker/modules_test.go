package checker

import (
	"fmt"
	"path"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/jrust/diag"
)

// mapLoader serves modules from memory. Keys are slash paths ending in .jr.
type mapLoader map[string]string

func (m mapLoader) Resolve(from, p string) (string, bool, error) {
	if !strings.HasPrefix(p, ".") {
		return "", true, nil
	}
	key := path.Join(path.Dir(from), p)
	if !strings.HasSuffix(key, ".jr") {
		key += ".jr"
	}
	return key, false, nil
}

func (m mapLoader) Load(key string) (string, error) {
	src, ok := m[key]
	if !ok {
		return "", fmt.Errorf("no such module")
	}
	return src, nil
}

func buildModules(t *testing.T, entry string, files mapLoader) *Build {
	t.Helper()
	b, err := CheckModules(entry, files)
	be.Err(t, err, nil)
	return b
}

func unitKinds(b *Build, key string) string {
	return kindString(b.Units[key].Diagnostics.Errors())
}

func TestModulesCheckDependenciesFirst(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr":       `import { double } from "./lib/math"; print(double(2));`,
		"lib/math.jr":   `import { ONE } from "./consts"; export function double(n: number): number { return n * 2 + ONE - ONE; }`,
		"lib/consts.jr": `export const ONE: number = 1;`,
	})
	be.Equal(t, strings.Join(b.Order, " "), "lib/consts.jr lib/math.jr main.jr")
	be.True(t, !b.HasErrors())
	imp := b.Units["main.jr"].Imports[0]
	be.Equal(t, imp.Resolved, "lib/math.jr")
	be.True(t, !imp.External)
}

func TestModulesImportedTypesFlow(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { double } from "./math"; let s: string = double(2);`,
		"math.jr": `export function double(n: number): number { return n * 2; }`,
	})
	be.Equal(t, unitKinds(b, "main.jr"), "TypeMismatch")
}

func TestModulesMissingExport(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { missing } from "./math";`,
		"math.jr": `export function double(n: number): number { return n * 2; }
			function hidden(): void {}`,
	})
	be.Equal(t, unitKinds(b, "main.jr"), "UndeclaredIdentifier")
	be.Equal(t, unitKinds(b, "math.jr"), "")
}

func TestModulesUnexportedNameIsMissing(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { hidden } from "./math";`,
		"math.jr": `function hidden(): void {}`,
	})
	be.Equal(t, unitKinds(b, "main.jr"), "UndeclaredIdentifier")
}

func TestModulesTwoFileCycle(t *testing.T) {
	b := buildModules(t, "a.jr", mapLoader{
		"a.jr": `import { b } from "./b"; export function a(): void {}`,
		"b.jr": `import { a } from "./a"; export function b(): void {}`,
	})
	be.Equal(t, unitKinds(b, "a.jr"), "CircularDependency")
	be.Equal(t, unitKinds(b, "b.jr"), "CircularDependency")
	be.Equal(t, len(b.Order), 2)
	msg := b.Units["b.jr"].Diagnostics[0].Message
	be.Equal(t, msg, "circular dependency: a.jr -> b.jr -> a.jr")
}

func TestModulesThreeFileCycle(t *testing.T) {
	b := buildModules(t, "a.jr", mapLoader{
		"a.jr": `import { b } from "./b"; import { d } from "./d"; export function a(): void {}`,
		"b.jr": `import { c } from "./c"; export function b(): void {}`,
		"c.jr": `import { a } from "./a"; export function c(): void {}`,
		"d.jr": `export function d(): void {}`,
	})
	be.Equal(t, unitKinds(b, "a.jr"), "CircularDependency")
	be.Equal(t, unitKinds(b, "b.jr"), "CircularDependency")
	be.Equal(t, unitKinds(b, "c.jr"), "CircularDependency")
	be.Equal(t, unitKinds(b, "d.jr"), "")
	be.Equal(t, strings.Join(b.Order, " "), "c.jr b.jr d.jr a.jr")

	// the diagnostic sits on the import that closes or follows the cycle
	d := b.Units["a.jr"].Diagnostics.Errors()[0]
	be.Equal(t, d.Line, 1)
	be.Equal(t, d.Column, 1)
}

func TestModulesSelfImport(t *testing.T) {
	b := buildModules(t, "a.jr", mapLoader{
		"a.jr": `import { a } from "./a"; export function a(): void {}`,
	})
	be.True(t, b.Units["a.jr"].Diagnostics.Has(diag.CircularDependency))
}

func TestModulesExternalImportsAreLeaves(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { HashMap } from "std::collections"; import "serde" as serde; let m = HashMap.new();`,
	})
	be.Equal(t, strings.Join(b.Order, " "), "main.jr")
	be.True(t, !b.HasErrors())
	be.True(t, b.Units["main.jr"].Imports[0].External)
	be.True(t, b.Units["main.jr"].Imports[1].External)
}

func TestModulesUnreadableImport(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { x } from "./gone";`,
	})
	be.Equal(t, unitKinds(b, "main.jr"), "UndeclaredIdentifier")
}

func TestModulesSyntaxErrorsSkipChecking(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { f } from "./broken"; f();`,
		"broken.jr": `export function f(): void { let = ; }`,
	})
	be.True(t, b.Units["broken.jr"].Diagnostics.HasErrors())
	// names from a broken module are opaque, not errors
	be.Equal(t, unitKinds(b, "main.jr"), "")
}

func TestModulesUnreadableEntry(t *testing.T) {
	_, err := CheckModules("main.jr", mapLoader{})
	be.True(t, err != nil)
}

func TestModulesDiagnosticsCarryFiles(t *testing.T) {
	b := buildModules(t, "main.jr", mapLoader{
		"main.jr": `import { f } from "./lib"; let n: number = "x";`,
		"lib.jr":  `export function f(): void { let s: string = 1; }`,
	})
	var files []string
	for _, d := range b.Diagnostics().Errors() {
		files = append(files, d.File)
	}
	be.Equal(t, strings.Join(files, " "), "lib.jr main.jr")
}
