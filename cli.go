package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/log"
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/compiler"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
	"github.com/strager/jrust/loader"
	"github.com/strager/jrust/project"
	"gopkg.in/urfave/cli.v1"
)

var (
	outputFlag = cli.StringFlag{
		Name:  outputName + ", o",
		Usage: "Output file or directory",
	}
	summaryFlag = cli.BoolFlag{
		Name:  "summary",
		Usage: "Print a table of the checked modules",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the syntax tree as Go values",
	}
	astFlag = cli.BoolFlag{
		Name:  "ast",
		Usage: "Print the syntax tree as an s-expression",
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "Package name (default: the directory name)",
	}

	checkCommand = cli.Command{
		Action:    check,
		Name:      "check",
		Usage:     "Check a program and its modules",
		ArgsUsage: "[<file.jr> | <project dir>]",
		Flags:     []cli.Flag{summaryFlag},
		Description: `
Reads the entry module and every module it imports and reports all
diagnostics. Without an argument the project around the current
directory is checked.`,
	}
	emitCommand = cli.Command{
		Action:    emit,
		Name:      "emit",
		Usage:     "Translate a single file and print the Rust",
		ArgsUsage: "<file.jr>",
		Flags:     []cli.Flag{outputFlag, astFlag, dumpFlag},
	}
	buildCommand = cli.Command{
		Action:    build,
		Name:      "build",
		Usage:     "Generate a Rust crate",
		ArgsUsage: "[<file.jr> | <project dir>]",
		Flags:     []cli.Flag{outputFlag},
		Description: `
Generates one Rust module per jrust module plus a Cargo.toml. A project
writes to its configured output directory; a lone file writes to
"generated" next to it unless --output is given.`,
	}
	tokensCommand = cli.Command{
		Action:    tokens,
		Name:      "tokens",
		Usage:     "Print the token stream of a file",
		ArgsUsage: "<file.jr>",
	}
	initCommand = cli.Command{
		Action:    initProject,
		Name:      "init",
		Usage:     "Create a new project",
		ArgsUsage: "[<dir>]",
		Flags:     []cli.Flag{nameFlag},
	}
)

const outputName = "output"

var errNoInput = errors.New("expected a .jr file argument")

// target is what check and build operate on.
type target struct {
	entry  string
	output string
	roots  []string
	config *project.Config
}

// resolveTarget treats a .jr argument as a lone program and anything else as
// a directory to search upwards from for a project file.
func resolveTarget(arg string) (*target, error) {
	if strings.HasSuffix(arg, ".jr") {
		name := strings.TrimSuffix(filepath.Base(arg), ".jr")
		return &target{
			entry:  arg,
			output: filepath.Join(filepath.Dir(arg), project.DefaultOutput),
			config: project.Default(name),
		}, nil
	}
	if arg == "" {
		arg = "."
	}
	root, err := project.FindRoot(arg)
	if err != nil {
		return nil, err
	}
	cfg, err := project.Load(filepath.Join(root, project.FileName))
	if err != nil {
		return nil, err
	}
	log.Debug("Using project", "root", root, "name", cfg.Package.Name)
	return &target{
		entry:  cfg.EntryPath(root),
		output: cfg.OutputPath(root),
		roots:  cfg.SearchPaths(root),
		config: cfg,
	}, nil
}

func check(ctx *cli.Context) error {
	t, err := resolveTarget(ctx.Args().First())
	if err != nil {
		return err
	}
	b, err := loader.Check(t.entry, loader.Options{SearchRoots: t.roots})
	if err != nil {
		return err
	}
	diags := b.Diagnostics()
	newReporter(ctx.App.ErrWriter).diagnostics(diags)
	if ctx.Bool(summaryFlag.Name) {
		printSummary(ctx.App.Writer, b)
	}
	return failure(len(diags.Errors()))
}

func emit(ctx *cli.Context) error {
	file := ctx.Args().First()
	if file == "" {
		return errNoInput
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	r := compiler.Compile(file, string(src))
	newReporter(ctx.App.ErrWriter).diagnostics(r.Diagnostics)

	if r.Program != nil {
		if ctx.Bool(astFlag.Name) {
			fmt.Fprintln(ctx.App.Writer, ast.ToSExpr(r.Program))
		}
		if ctx.Bool(dumpFlag.Name) {
			dumpConfig.Fdump(ctx.App.Writer, r.Program)
		}
	}
	if !r.OK() {
		return failure(len(r.Diagnostics.Errors()))
	}
	if out := ctx.String(outputName); out != "" {
		if err := os.WriteFile(out, []byte(r.Rust), 0644); err != nil {
			return err
		}
		log.Info("Wrote file", "path", out, "bytes", len(r.Rust))
		return nil
	}
	if !ctx.Bool(astFlag.Name) && !ctx.Bool(dumpFlag.Name) {
		fmt.Fprint(ctx.App.Writer, r.Rust)
	}
	return nil
}

func build(ctx *cli.Context) error {
	t, err := resolveTarget(ctx.Args().First())
	if err != nil {
		return err
	}
	if out := ctx.String(outputName); out != "" {
		t.output = out
	}
	res, err := loader.Build(t.entry, loader.Options{SearchRoots: t.roots})
	if err != nil {
		return err
	}
	diags := res.Diagnostics()
	newReporter(ctx.App.ErrWriter).diagnostics(diags)
	if res.HasErrors() {
		return failure(len(diags.Errors()))
	}

	manifest, err := t.config.Cargo()
	if err != nil {
		return err
	}
	files := append(res.Files, loader.File{Path: "Cargo.toml", Content: string(manifest)})
	if err := loader.Write(t.output, files); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Generated %d files in %s\n", len(files), t.output)
	return nil
}

func tokens(ctx *cli.Context) error {
	file := ctx.Args().First()
	if file == "" {
		return errNoInput
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	toks, errs := lexer.Tokenize(string(src))
	printTokens(ctx.App.Writer, toks)
	var diags diag.List
	diags.Append(errs, file)
	newReporter(ctx.App.ErrWriter).diagnostics(diags)
	return failure(len(diags.Errors()))
}

func initProject(ctx *cli.Context) error {
	dir := ctx.Args().First()
	if dir == "" {
		dir = "."
	}
	cfg, err := project.Init(dir, ctx.String(nameFlag.Name))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Created project %s in %s\n", cfg.Package.Name, dir)
	return nil
}

// failure turns an error count into the command's result.
func failure(n int) error {
	switch n {
	case 0:
		return nil
	case 1:
		return errors.New("aborting due to 1 error")
	}
	return fmt.Errorf("aborting due to %d errors", n)
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}
