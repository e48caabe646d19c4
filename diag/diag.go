// Package diag holds the diagnostics every compiler phase reports.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Severity of a diagnostic. Only errors stop the pipeline.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Kind names a diagnostic. Kinds are stable strings so tests and tools can
// match on them.
type Kind string

const (
	// Lexical errors
	UnterminatedString    Kind = "UnterminatedString"
	InvalidNumericLiteral Kind = "InvalidNumericLiteral"
	UnexpectedCharacter   Kind = "UnexpectedCharacter"
	UnterminatedComment   Kind = "UnterminatedComment"

	// Syntax errors
	UnexpectedToken      Kind = "UnexpectedToken"
	MissingExpectedToken Kind = "MissingExpectedToken"
	UnterminatedBlock    Kind = "UnterminatedBlock"

	// Name errors
	UndeclaredIdentifier Kind = "UndeclaredIdentifier"
	DuplicateDeclaration Kind = "DuplicateDeclaration"
	CircularDependency   Kind = "CircularDependency"

	// Type errors
	TypeMismatch             Kind = "TypeMismatch"
	ArityMismatch            Kind = "ArityMismatch"
	NamingInvalid            Kind = "NamingInvalid"
	UninitializedDeclaration Kind = "UninitializedDeclaration"
	StaticArraySizeMismatch  Kind = "StaticArraySizeMismatch"
	ReassignToConst          Kind = "ReassignToConst"
	InvalidControlFlow       Kind = "InvalidControlFlow"

	// Ownership errors
	UseAfterMove   Kind = "UseAfterMove"
	BorrowConflict Kind = "BorrowConflict"

	// Warnings
	UnusedVariable      Kind = "UnusedVariable"
	ShadowedDeclaration Kind = "ShadowedDeclaration"
)

// Category groups kinds by the phase family that produces them.
type Category string

const (
	LexError       Category = "LexError"
	SyntaxError    Category = "SyntaxError"
	NameError      Category = "NameError"
	TypeError      Category = "TypeError"
	OwnershipError Category = "OwnershipError"
	Lint           Category = "Lint"
)

func (k Kind) Category() Category {
	switch k {
	case UnterminatedString, InvalidNumericLiteral, UnexpectedCharacter, UnterminatedComment:
		return LexError
	case UnexpectedToken, MissingExpectedToken, UnterminatedBlock:
		return SyntaxError
	case UndeclaredIdentifier, DuplicateDeclaration, CircularDependency:
		return NameError
	case UseAfterMove, BorrowConflict:
		return OwnershipError
	case UnusedVariable, ShadowedDeclaration:
		return Lint
	default:
		return TypeError
	}
}

// Diagnostic is a single positioned message.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	File     string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	var b strings.Builder
	if d.File != "" {
		b.WriteString(d.File)
		b.WriteString(":")
	}
	fmt.Fprintf(&b, "%d:%d: %s[%s]: %s", d.Line, d.Column, d.Severity, d.Kind, d.Message)
	return b.String()
}

// List accumulates diagnostics in the order they were reported.
type List []Diagnostic

func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Errorf appends an error-severity diagnostic.
func (l *List) Errorf(kind Kind, line, col int, format string, args ...interface{}) {
	l.Add(Diagnostic{Severity: Error, Kind: kind, Line: line, Column: col, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning-severity diagnostic.
func (l *List) Warnf(kind Kind, line, col int, format string, args ...interface{}) {
	l.Add(Diagnostic{Severity: Warning, Kind: kind, Line: line, Column: col, Message: fmt.Sprintf(format, args...)})
}

// Append adds every diagnostic of other, stamping File where it is unset.
func (l *List) Append(other List, file string) {
	for _, d := range other {
		if d.File == "" {
			d.File = file
		}
		l.Add(d)
	}
}

func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == Error {
			out = append(out, d)
		}
	}
	return out
}

func (l List) Warnings() List {
	var out List
	for _, d := range l {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether a diagnostic of the given kind is present.
func (l List) Has(kind Kind) bool {
	for _, d := range l {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds lists the kinds in order, for compact test assertions.
func (l List) Kinds() []Kind {
	kinds := make([]Kind, len(l))
	for i, d := range l {
		kinds[i] = d.Kind
	}
	return kinds
}

// Sorted returns a copy ordered by file, line, then column. Diagnostics at
// the same position keep their reporting order.
func (l List) Sorted() List {
	out := append(List(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

func (l List) String() string {
	var lines []string
	for _, d := range l.Sorted() {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}
