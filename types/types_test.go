package types

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTypeStrings(t *testing.T) {
	be.Equal(t, Number.String(), "number")
	be.Equal(t, (&Array{Elem: String, Size: Dynamic}).String(), "string[]")
	be.Equal(t, (&Array{Elem: Number, Size: 3}).String(), "number[number, 3]")
	be.Equal(t, (&Ref{Mutable: true, Inner: &Array{Elem: Number, Size: Dynamic}}).String(), "&mut number[]")
	be.Equal(t, (&Func{Params: []Type{Number, String}, Result: Void}).String(), "(number, string) => void")
}

func TestEqual(t *testing.T) {
	be.True(t, Equal(Number, Number))
	be.True(t, !Equal(Number, String))
	be.True(t, Equal(&Array{Elem: Number, Size: 2}, &Array{Elem: Number, Size: 2}))
	be.True(t, !Equal(&Array{Elem: Number, Size: 2}, &Array{Elem: Number, Size: 3}))
	be.True(t, !Equal(&Array{Elem: Number, Size: Dynamic}, &Array{Elem: Number, Size: 3}))
	be.True(t, Equal(&Struct{Name: "Point"}, &Struct{Name: "Point"}))
	be.True(t, !Equal(&Struct{Name: "Point"}, &Enum{Name: "Point"}))
	be.True(t, !Equal(&Ref{Inner: Number}, &Ref{Mutable: true, Inner: Number}))
}

func TestAssignable(t *testing.T) {
	be.True(t, Assignable(Any, Number))
	be.True(t, Assignable(Any, &Struct{Name: "P"}))
	be.True(t, !Assignable(Any, Void))
	be.True(t, !Assignable(Number, Any))
	be.True(t, Assignable(Number, Unknown))
	be.True(t, Assignable(Unknown, String))
	be.True(t, Assignable(&Array{Elem: Number, Size: Dynamic}, &Array{Elem: Unknown, Size: Dynamic}))
	be.True(t, !Assignable(&Array{Elem: Number, Size: Dynamic}, &Array{Elem: String, Size: Dynamic}))
	be.True(t, Assignable(&Ref{Inner: String}, &Ref{Mutable: true, Inner: String}))
	be.True(t, !Assignable(&Ref{Mutable: true, Inner: String}, &Ref{Inner: String}))
}

func TestIsCopy(t *testing.T) {
	be.True(t, IsCopy(Number))
	be.True(t, IsCopy(Boolean))
	be.True(t, IsCopy(&Ref{Inner: String}))
	be.True(t, !IsCopy(&Ref{Mutable: true, Inner: String}))
	be.True(t, !IsCopy(String))
	be.True(t, !IsCopy(Any))
	be.True(t, !IsCopy(&Array{Elem: Number, Size: 3}))
	be.True(t, !IsCopy(&Struct{Name: "P"}))
}

func TestLookups(t *testing.T) {
	s := &Struct{Name: "P", Fields: []Field{{"x", Number}, {"name", String}}}
	ft, ok := s.Field("name")
	be.True(t, ok)
	be.Equal(t, ft, Type(String))
	_, ok = s.Field("missing")
	be.True(t, !ok)

	e := &Enum{Name: "Shape", Variants: []Variant{{Name: "Circle", Payload: []Type{Number}}, {Name: "Empty"}}}
	v, ok := e.Variant("Circle")
	be.True(t, ok)
	be.Equal(t, len(v.Payload), 1)
	be.Equal(t, Deref(&Ref{Inner: &Ref{Mutable: true, Inner: String}}), Type(String))
}
