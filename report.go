package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/strager/jrust/checker"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/lexer"
)

// reporter prints diagnostics, colored unless color.NoColor is set.
type reporter struct {
	w        io.Writer
	location func(a ...interface{}) string
	error    func(a ...interface{}) string
	warning  func(a ...interface{}) string
}

func newReporter(w io.Writer) *reporter {
	return &reporter{
		w:        w,
		location: color.New(color.Bold).SprintFunc(),
		error:    color.New(color.FgRed, color.Bold).SprintFunc(),
		warning:  color.New(color.FgYellow, color.Bold).SprintFunc(),
	}
}

func (r *reporter) diagnostics(l diag.List) {
	for _, d := range l.Sorted() {
		fmt.Fprintln(r.w, r.format(d))
	}
}

// format matches diag.Diagnostic.String when colors are off.
func (r *reporter) format(d diag.Diagnostic) string {
	loc := fmt.Sprintf("%d:%d:", d.Line, d.Column)
	if d.File != "" {
		loc = d.File + ":" + loc
	}
	label := fmt.Sprintf("%s[%s]:", d.Severity, d.Kind)
	if d.Severity == diag.Error {
		label = r.error(label)
	} else {
		label = r.warning(label)
	}
	return r.location(loc) + " " + label + " " + d.Message
}

// printSummary writes one row per module in dependency order.
func printSummary(w io.Writer, b *checker.Build) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Module", "Imports", "Exports", "Errors", "Warnings"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, key := range b.Order {
		u := b.Units[key]
		table.Append([]string{
			key,
			strconv.Itoa(len(u.Imports)),
			strconv.Itoa(len(u.Exports)),
			strconv.Itoa(len(u.Diagnostics.Errors())),
			strconv.Itoa(len(u.Diagnostics.Warnings())),
		})
	}
	table.Render()
}

func printTokens(w io.Writer, toks []lexer.Token) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pos", "Type", "Class", "Text"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, t := range toks {
		table.Append([]string{
			fmt.Sprintf("%d:%d", t.Line, t.Column),
			string(t.Type),
			string(t.Type.Class()),
			t.Literal,
		})
	}
	table.Render()
}
