// Package types is the semantic type model shared by the checker and the
// code generator.
package types

import (
	"strconv"
	"strings"
)

// Type is a closed set: only types in this package implement it.
type Type interface {
	String() string
	isType()
}

// BasicKind enumerates the scalar types.
type BasicKind int

const (
	NumberKind BasicKind = iota
	StringKind
	BooleanKind
	VoidKind
	AnyKind
	// UnknownKind is the error-recovery type. It is compatible with
	// everything so that one mistake is reported once.
	UnknownKind
)

type Basic struct {
	Kind BasicKind
	name string
}

var (
	Number  = &Basic{NumberKind, "number"}
	String  = &Basic{StringKind, "string"}
	Boolean = &Basic{BooleanKind, "boolean"}
	Void    = &Basic{VoidKind, "void"}
	Any     = &Basic{AnyKind, "any"}
	Unknown = &Basic{UnknownKind, "unknown"}
)

// Dynamic is the Size of a growable array.
const Dynamic = -1

type Array struct {
	Elem Type
	Size int // Dynamic, or the fixed length
}

type Field struct {
	Name string
	Type Type
}

type Struct struct {
	Name   string
	Fields []Field
}

type Variant struct {
	Name    string
	Payload []Type
}

type Enum struct {
	Name     string
	Variants []Variant
}

type Ref struct {
	Mutable bool
	Inner   Type
}

// Func is the type of a declared function or builtin method.
type Func struct {
	Params []Type
	Result Type
}

func (*Basic) isType()  {}
func (*Array) isType()  {}
func (*Struct) isType() {}
func (*Enum) isType()   {}
func (*Ref) isType()    {}
func (*Func) isType()   {}

func (b *Basic) String() string { return b.name }

func (a *Array) String() string {
	if a.Size == Dynamic {
		return a.Elem.String() + "[]"
	}
	return a.Elem.String() + "[" + a.Elem.String() + ", " + strconv.Itoa(a.Size) + "]"
}

func (s *Struct) String() string { return s.Name }
func (e *Enum) String() string   { return e.Name }

func (r *Ref) String() string {
	if r.Mutable {
		return "&mut " + r.Inner.String()
	}
	return "&" + r.Inner.String()
}

func (f *Func) String() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	return "(" + strings.Join(params, ", ") + ") => " + f.Result.String()
}

func (s *Struct) Field(name string) (Type, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

func (e *Enum) Variant(name string) (*Variant, bool) {
	for i := range e.Variants {
		if e.Variants[i].Name == name {
			return &e.Variants[i], true
		}
	}
	return nil, false
}

// Equal is structural for arrays, references and functions and nominal for
// structs and enums.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case *Basic:
		b, ok := b.(*Basic)
		return ok && a.Kind == b.Kind
	case *Array:
		b, ok := b.(*Array)
		return ok && a.Size == b.Size && Equal(a.Elem, b.Elem)
	case *Struct:
		b, ok := b.(*Struct)
		return ok && a.Name == b.Name
	case *Enum:
		b, ok := b.(*Enum)
		return ok && a.Name == b.Name
	case *Ref:
		b, ok := b.(*Ref)
		return ok && a.Mutable == b.Mutable && Equal(a.Inner, b.Inner)
	case *Func:
		b, ok := b.(*Func)
		if !ok || len(a.Params) != len(b.Params) || !Equal(a.Result, b.Result) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Assignable reports whether a value of type src may be stored where dst is
// expected. Anything goes into any; unknown matches everything.
func Assignable(dst, src Type) bool {
	if IsUnknown(dst) || IsUnknown(src) {
		return true
	}
	if Is(dst, AnyKind) {
		return !Is(src, VoidKind)
	}
	if dr, ok := dst.(*Ref); ok && !dr.Mutable {
		if sr, ok := src.(*Ref); ok && sr.Mutable && Equal(dr.Inner, sr.Inner) {
			return true
		}
	}
	if da, ok := dst.(*Array); ok {
		if sa, ok := src.(*Array); ok && da.Size == sa.Size && (IsUnknown(da.Elem) || IsUnknown(sa.Elem)) {
			return true
		}
	}
	return Equal(dst, src)
}

// Is reports whether t is the basic type of the given kind.
func Is(t Type, kind BasicKind) bool {
	b, ok := t.(*Basic)
	return ok && b.Kind == kind
}

func IsUnknown(t Type) bool { return Is(t, UnknownKind) }

// IsCopy reports whether values of t are duplicated rather than moved.
func IsCopy(t Type) bool {
	switch t := t.(type) {
	case *Basic:
		return t.Kind == NumberKind || t.Kind == BooleanKind || t.Kind == VoidKind || t.Kind == UnknownKind
	case *Ref:
		return !t.Mutable
	case *Func:
		return true
	}
	return false
}

// IsScalar reports whether t is number, string or boolean.
func IsScalar(t Type) bool {
	return Is(t, NumberKind) || Is(t, StringKind) || Is(t, BooleanKind)
}

// Deref strips any references.
func Deref(t Type) Type {
	for {
		r, ok := t.(*Ref)
		if !ok {
			return t
		}
		t = r.Inner
	}
}
