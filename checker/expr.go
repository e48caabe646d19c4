package checker

import (
	"fmt"

	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/types"
)

// expr checks e and records its type. want is a hint for literals whose
// type depends on context, such as empty arrays.
func (c *checker) expr(e ast.Expr, want types.Type) types.Type {
	t := c.exprType(e, want)
	if t == nil {
		t = types.Unknown
	}
	e.Info().Type = t
	return t
}

// value checks e in a position that takes ownership of its result.
func (c *checker) value(e ast.Expr, want types.Type, context string) types.Type {
	t := c.expr(e, want)
	if want != nil {
		c.coerce(e, t, want, context)
	}
	if _, reborrow := want.(*types.Ref); !reborrow {
		c.consume(e)
	}
	return t
}

func (c *checker) coerce(e ast.Expr, got, want types.Type, context string) {
	if !types.Assignable(want, got) {
		c.errorf(diag.TypeMismatch, e.Position(), "%s: expected '%s', found '%s'", context, want, got)
		return
	}
	if types.Is(want, types.AnyKind) && !types.Is(got, types.AnyKind) && !types.IsUnknown(got) {
		e.Info().Stringify = true
	}
}

// consume moves out of a variable read as a whole.
func (c *checker) consume(e ast.Expr) {
	if id, ok := e.(*ast.Ident); ok {
		if sym := c.identSyms[id]; sym != nil {
			c.move(id, sym)
		}
	}
}

func (c *checker) exprType(e ast.Expr, want types.Type) types.Type {
	switch e := e.(type) {
	case *ast.NumberLit:
		return types.Number
	case *ast.StringLit:
		return types.String
	case *ast.BoolLit:
		return types.Boolean
	case *ast.ArrayLit:
		return c.arrayLit(e, want)
	case *ast.Ident:
		t := c.ident(e)
		if e.Kind == ast.IdentTypeName {
			c.errorf(diag.TypeMismatch, e.Pos, "'%s' is a type, not a value", e.Name)
			return types.Unknown
		}
		return t
	case *ast.BinaryExpr:
		return c.binary(e)
	case *ast.UnaryExpr:
		return c.unary(e)
	case *ast.RefExpr:
		return c.ref(e)
	case *ast.CallExpr:
		return c.call(e)
	case *ast.MemberExpr:
		return c.member(e)
	case *ast.IndexExpr:
		return c.index(e)
	case *ast.StructLit:
		return c.structLit(e)
	case *ast.AssignExpr:
		return c.assign(e)
	}
	return types.Unknown
}

// ident resolves a name read as a value.
func (c *checker) ident(e *ast.Ident) types.Type {
	sym := c.scope.Lookup(e.Name)
	if sym == nil {
		c.errorf(diag.UndeclaredIdentifier, e.Pos, "'%s' is not declared", e.Name)
		e.Kind = ast.IdentUnresolved
		return types.Unknown
	}
	c.identSyms[e] = sym
	e.Kind = identKind(sym)
	if sym.tracked() {
		sym.Used = true
		c.use(e, sym)
	}
	return sym.Type
}

func identKind(sym *Symbol) ast.IdentKind {
	switch sym.Kind {
	case SymConst:
		return ast.IdentConst
	case SymFunc:
		return ast.IdentFunc
	case SymStruct, SymEnum:
		return ast.IdentTypeName
	case SymModule:
		if sym.External {
			return ast.IdentExternal
		}
		return ast.IdentModule
	case SymImport:
		if sym.External {
			return ast.IdentExternal
		}
	}
	return ast.IdentValue
}

// rootSymbol finds the variable a place expression reads from.
func (c *checker) rootSymbol(e ast.Expr) *Symbol {
	switch e := e.(type) {
	case *ast.Ident:
		return c.identSyms[e]
	case *ast.MemberExpr:
		return c.rootSymbol(e.X)
	case *ast.IndexExpr:
		return c.rootSymbol(e.X)
	}
	return nil
}

func (c *checker) arrayLit(e *ast.ArrayLit, want types.Type) types.Type {
	var elemWant types.Type
	size := types.Dynamic
	if arr, ok := want.(*types.Array); ok {
		elemWant = arr.Elem
		size = arr.Size
		if size != types.Dynamic && size != len(e.Elems) {
			c.errorf(diag.StaticArraySizeMismatch, e.Pos, "expected %d elements, found %d", size, len(e.Elems))
		}
	}

	if len(e.Elems) == 0 {
		if elemWant == nil {
			c.errorf(diag.TypeMismatch, e.Pos, "cannot infer the element type of an empty array")
			return &types.Array{Elem: types.Unknown, Size: types.Dynamic}
		}
		return &types.Array{Elem: elemWant, Size: size}
	}

	elem := elemWant
	for i, x := range e.Elems {
		t := c.expr(x, elemWant)
		if elem == nil {
			elem = t
			if types.Is(t, types.VoidKind) {
				c.errorf(diag.TypeMismatch, x.Position(), "array elements cannot be void")
			}
		} else {
			c.coerce(x, t, elem, fmt.Sprintf("array element %d", i+1))
		}
		c.consume(x)
	}
	return &types.Array{Elem: elem, Size: size}
}

func stringLike(t types.Type) bool {
	return types.Is(t, types.StringKind) || types.Is(t, types.AnyKind)
}

func (c *checker) binary(e *ast.BinaryExpr) types.Type {
	l := types.Deref(c.expr(e.Left, nil))
	r := types.Deref(c.expr(e.Right, nil))
	num := types.Is(l, types.NumberKind) && types.Is(r, types.NumberKind)
	unknown := types.IsUnknown(l) || types.IsUnknown(r)

	switch e.Op {
	case "+":
		if num {
			return types.Number
		}
		if (stringLike(l) && types.IsScalar(r)) || (types.IsScalar(l) && stringLike(r)) || (stringLike(l) && stringLike(r)) {
			return types.String
		}
		if unknown {
			return types.Unknown
		}
	case "-", "*", "/", "%":
		if num || unknown {
			return types.Number
		}
	case "<", ">", "<=", ">=":
		if num || unknown || (stringLike(l) && stringLike(r)) {
			return types.Boolean
		}
	case "==", "!=":
		if unknown || types.Equal(l, r) || (stringLike(l) && stringLike(r)) {
			return types.Boolean
		}
	case "&&", "||":
		if unknown || (types.Is(l, types.BooleanKind) && types.Is(r, types.BooleanKind)) {
			return types.Boolean
		}
	}
	c.errorf(diag.TypeMismatch, e.Pos, "operator '%s' cannot be applied to '%s' and '%s'", e.Op, l, r)
	return types.Unknown
}

func (c *checker) unary(e *ast.UnaryExpr) types.Type {
	t := types.Deref(c.expr(e.X, nil))
	want := types.Number
	if e.Op == "!" {
		want = types.Boolean
	}
	if !types.Equal(t, want) && !types.IsUnknown(t) {
		c.errorf(diag.TypeMismatch, e.Pos, "operator '%s' cannot be applied to '%s'", e.Op, t)
	}
	return want
}

func (c *checker) ref(e *ast.RefExpr) types.Type {
	t := c.expr(e.X, nil)
	if root := c.rootSymbol(e.X); root != nil {
		_, whole := e.X.(*ast.Ident)
		switch {
		case e.Mutable && root.IsConst():
			c.errorf(diag.ReassignToConst, e.Pos, "cannot borrow constant '%s' as mutable", root.Name)
		case e.Mutable && !whole && isSharedRef(root.Type):
			c.errorf(diag.BorrowConflict, e.Pos, "cannot borrow through shared reference '%s' as mutable", root.Name)
		default:
			c.borrowOf(e.Pos, root, e.Mutable)
			if e.Mutable && root.mutated != nil {
				if _, viaRef := root.Type.(*types.Ref); !viaRef {
					*root.mutated = true
				}
			}
		}
	}
	return &types.Ref{Mutable: e.Mutable, Inner: t}
}

func isSharedRef(t types.Type) bool {
	r, ok := t.(*types.Ref)
	return ok && !r.Mutable
}

func (c *checker) call(e *ast.CallExpr) types.Type {
	if m, ok := e.Callee.(*ast.MemberExpr); ok {
		return c.methodCall(e, m)
	}
	ft := c.expr(e.Callee, nil)
	if f, ok := ft.(*types.Func); ok {
		name := "function"
		if id, ok := e.Callee.(*ast.Ident); ok {
			name = id.Name
		}
		c.args(e, f.Params, name)
		return f.Result
	}
	if !types.IsUnknown(ft) {
		c.errorf(diag.TypeMismatch, e.Callee.Position(), "'%s' is not callable", ft)
	}
	c.looseArgs(e.Args)
	return types.Unknown
}

// args checks call arguments against params. Borrows taken for the call
// end with it.
func (c *checker) args(e *ast.CallExpr, params []types.Type, name string) {
	if len(e.Args) != len(params) {
		c.errorf(diag.ArityMismatch, e.Pos, "'%s' expects %d arguments, found %d", name, len(params), len(e.Args))
	}
	saved := c.holder
	tmp := c.newTemp()
	c.holder = tmp
	for i, a := range e.Args {
		if i < len(params) {
			c.value(a, params[i], fmt.Sprintf("argument %d of '%s'", i+1, name))
		} else {
			c.value(a, nil, "")
		}
	}
	c.release(tmp)
	c.holder = saved
}

// looseArgs checks arguments of a call whose signature is unknown.
func (c *checker) looseArgs(args []ast.Expr) {
	for _, a := range args {
		c.value(a, nil, "")
	}
}

func (c *checker) methodCall(e *ast.CallExpr, m *ast.MemberExpr) types.Type {
	var recv types.Type
	if id, ok := m.X.(*ast.Ident); ok {
		recv = c.ident(id)
		id.Type = recv
		switch id.Kind {
		case ast.IdentTypeName:
			return c.variantCall(e, m, recv)
		case ast.IdentModule, ast.IdentExternal:
			m.Type = types.Unknown
			c.looseArgs(e.Args)
			return types.Unknown
		}
	} else {
		recv = c.expr(m.X, nil)
	}
	return c.builtinMethod(e, m, recv)
}

func (c *checker) variantCall(e *ast.CallExpr, m *ast.MemberExpr, t types.Type) types.Type {
	m.Type = types.Unknown
	en, ok := t.(*types.Enum)
	if !ok {
		if !types.IsUnknown(t) {
			c.errorf(diag.TypeMismatch, m.Pos, "'%s' has no associated function '%s'", t, m.Name)
		}
		c.looseArgs(e.Args)
		return types.Unknown
	}
	v, ok := en.Variant(m.Name)
	if !ok {
		c.errorf(diag.TypeMismatch, m.Pos, "enum '%s' has no variant '%s'", en.Name, m.Name)
		c.looseArgs(e.Args)
		return en
	}
	if len(v.Payload) == 0 {
		c.errorf(diag.ArityMismatch, e.Pos, "variant '%s.%s' takes no values", en.Name, v.Name)
		c.looseArgs(e.Args)
		return en
	}
	c.args(e, v.Payload, en.Name+"."+v.Name)
	m.Type = &types.Func{Params: v.Payload, Result: en}
	return en
}

type methodSig struct {
	params   []types.Type
	min      int
	result   types.Type
	mutating bool
	// growable methods change the array's length.
	growable bool
	// borrowArgs methods take their arguments by reference.
	borrowArgs bool
}

func arrayMethod(arr *types.Array, name string) (methodSig, bool) {
	switch name {
	case "push", "unshift":
		return methodSig{params: []types.Type{arr.Elem}, min: 1, result: types.Void, mutating: true, growable: true}, true
	case "pop", "shift":
		return methodSig{result: arr.Elem, mutating: true, growable: true}, true
	case "slice":
		return methodSig{params: []types.Type{types.Number, types.Number}, min: 1, result: &types.Array{Elem: arr.Elem, Size: types.Dynamic}}, true
	case "reverse", "sort":
		return methodSig{result: types.Void, mutating: true}, true
	case "includes", "contains":
		return methodSig{params: []types.Type{arr.Elem}, min: 1, result: types.Boolean, borrowArgs: true}, true
	case "join":
		if stringLike(arr.Elem) || types.IsUnknown(arr.Elem) {
			return methodSig{params: []types.Type{types.String}, min: 1, result: types.String, borrowArgs: true}, true
		}
	}
	return methodSig{}, false
}

func stringMethod(name string) (methodSig, bool) {
	switch name {
	case "toUpperCase", "toLowerCase", "trim":
		return methodSig{result: types.String}, true
	case "split":
		return methodSig{params: []types.Type{types.String}, min: 1, result: &types.Array{Elem: types.String, Size: types.Dynamic}, borrowArgs: true}, true
	case "charAt":
		return methodSig{params: []types.Type{types.Number}, min: 1, result: types.String}, true
	case "substring":
		return methodSig{params: []types.Type{types.Number, types.Number}, min: 2, result: types.String}, true
	case "indexOf":
		return methodSig{params: []types.Type{types.String}, min: 1, result: types.Number, borrowArgs: true}, true
	case "includes", "contains":
		return methodSig{params: []types.Type{types.String}, min: 1, result: types.Boolean, borrowArgs: true}, true
	}
	return methodSig{}, false
}

// builtinMethod checks a call of one of the array or string methods.
func (c *checker) builtinMethod(e *ast.CallExpr, m *ast.MemberExpr, recv types.Type) types.Type {
	base := types.Deref(recv)
	if types.IsUnknown(base) {
		m.Type = types.Unknown
		c.looseArgs(e.Args)
		return types.Unknown
	}
	var sig methodSig
	found := false
	switch b := base.(type) {
	case *types.Array:
		sig, found = arrayMethod(b, m.Name)
		if found && sig.growable && b.Size != types.Dynamic {
			c.errorf(diag.TypeMismatch, m.Pos, "method '%s' requires a dynamic array, found '%s'", m.Name, b)
		}
	case *types.Basic:
		if stringLike(b) {
			sig, found = stringMethod(m.Name)
		}
	}
	if !found {
		c.errorf(diag.TypeMismatch, m.Pos, "type '%s' has no method '%s'", base, m.Name)
		m.Type = types.Unknown
		c.looseArgs(e.Args)
		return types.Unknown
	}
	m.Type = &types.Func{Params: sig.params, Result: sig.result}

	if sig.mutating {
		c.mutate(m.X, recv, m.Pos)
	}
	if len(e.Args) < sig.min || len(e.Args) > len(sig.params) {
		if sig.min == len(sig.params) {
			c.errorf(diag.ArityMismatch, e.Pos, "'%s' expects %d arguments, found %d", m.Name, sig.min, len(e.Args))
		} else {
			c.errorf(diag.ArityMismatch, e.Pos, "'%s' expects %d to %d arguments, found %d", m.Name, sig.min, len(sig.params), len(e.Args))
		}
	}
	for i, a := range e.Args {
		if i >= len(sig.params) {
			c.value(a, nil, "")
			continue
		}
		context := fmt.Sprintf("argument %d of '%s'", i+1, m.Name)
		if sig.borrowArgs {
			c.coerce(a, c.expr(a, sig.params[i]), sig.params[i], context)
		} else {
			c.value(a, sig.params[i], context)
		}
	}
	return sig.result
}

// mutate checks a write through a place expression: a method that changes
// its receiver, or an assignment to a field or element.
func (c *checker) mutate(place ast.Expr, placeType types.Type, pos ast.Pos) {
	root := c.rootSymbol(place)
	if root == nil {
		return
	}
	if root.IsConst() {
		c.errorf(diag.ReassignToConst, pos, "cannot modify constant '%s'", root.Name)
		return
	}
	if r, ok := root.Type.(*types.Ref); ok {
		if !r.Mutable {
			c.errorf(diag.BorrowConflict, pos, "cannot modify '%s' through a shared reference", root.Name)
		}
		return
	}
	if isSharedRef(placeType) {
		c.errorf(diag.BorrowConflict, pos, "cannot modify a value behind a shared reference")
		return
	}
	c.write(pos, root, false)
}

func (c *checker) member(m *ast.MemberExpr) types.Type {
	var xt types.Type
	if id, ok := m.X.(*ast.Ident); ok {
		xt = c.ident(id)
		id.Type = xt
		switch id.Kind {
		case ast.IdentTypeName:
			return c.variantValue(m, xt)
		case ast.IdentModule, ast.IdentExternal:
			return types.Unknown
		}
	} else {
		xt = c.expr(m.X, nil)
	}

	base := types.Deref(xt)
	switch b := base.(type) {
	case *types.Array:
		if m.Name == "length" {
			return types.Number
		}
	case *types.Basic:
		if m.Name == "length" && stringLike(b) {
			return types.Number
		}
		if types.IsUnknown(b) {
			return types.Unknown
		}
	case *types.Struct:
		if f, ok := b.Field(m.Name); ok {
			return f
		}
		c.errorf(diag.TypeMismatch, m.Pos, "struct '%s' has no field '%s'", b.Name, m.Name)
		return types.Unknown
	}
	c.errorf(diag.TypeMismatch, m.Pos, "type '%s' has no field '%s'", base, m.Name)
	return types.Unknown
}

// variantValue checks a bare `Enum.Variant` used as a value.
func (c *checker) variantValue(m *ast.MemberExpr, t types.Type) types.Type {
	en, ok := t.(*types.Enum)
	if !ok {
		if !types.IsUnknown(t) {
			c.errorf(diag.TypeMismatch, m.Pos, "'%s' has no member '%s'", t, m.Name)
		}
		return types.Unknown
	}
	v, ok := en.Variant(m.Name)
	if !ok {
		c.errorf(diag.TypeMismatch, m.Pos, "enum '%s' has no variant '%s'", en.Name, m.Name)
		return en
	}
	if len(v.Payload) > 0 {
		c.errorf(diag.ArityMismatch, m.Pos, "variant '%s.%s' expects %d values", en.Name, v.Name, len(v.Payload))
	}
	return en
}

func (c *checker) index(ix *ast.IndexExpr) types.Type {
	xt := c.expr(ix.X, nil)
	it := types.Deref(c.expr(ix.Index, nil))
	if !types.Is(it, types.NumberKind) && !types.IsUnknown(it) {
		c.errorf(diag.TypeMismatch, ix.Index.Position(), "array index must be a number, found '%s'", it)
	}
	switch b := types.Deref(xt).(type) {
	case *types.Array:
		if lit, ok := ix.Index.(*ast.NumberLit); ok && b.Size != types.Dynamic && lit.Value >= int64(b.Size) {
			c.errorf(diag.StaticArraySizeMismatch, ix.Index.Position(), "index %d is out of bounds for an array of length %d", lit.Value, b.Size)
		}
		return b.Elem
	case *types.Basic:
		if types.IsUnknown(b) {
			return types.Unknown
		}
	}
	c.errorf(diag.TypeMismatch, ix.Pos, "cannot index into '%s'", xt)
	return types.Unknown
}

func (c *checker) structLit(s *ast.StructLit) types.Type {
	sym := c.scope.Lookup(s.Name)
	var st *types.Struct
	switch {
	case sym == nil:
		c.errorf(diag.UndeclaredIdentifier, s.Pos, "unknown struct '%s'", s.Name)
	case types.IsUnknown(sym.Type):
	default:
		var ok bool
		if st, ok = sym.Type.(*types.Struct); !ok {
			c.errorf(diag.TypeMismatch, s.Pos, "'%s' is not a struct", s.Name)
		}
	}
	if st == nil {
		for _, f := range s.Fields {
			c.value(f.Value, nil, "")
		}
		return types.Unknown
	}

	seen := map[string]bool{}
	for _, f := range s.Fields {
		ft, ok := st.Field(f.Name)
		switch {
		case !ok:
			c.errorf(diag.TypeMismatch, f.Pos, "struct '%s' has no field '%s'", st.Name, f.Name)
			c.value(f.Value, nil, "")
		case seen[f.Name]:
			c.errorf(diag.DuplicateDeclaration, f.Pos, "field '%s' is given more than once", f.Name)
			c.value(f.Value, nil, "")
		default:
			c.value(f.Value, ft, fmt.Sprintf("field '%s' of '%s'", f.Name, st.Name))
		}
		seen[f.Name] = true
	}
	for _, f := range st.Fields {
		if !seen[f.Name] {
			c.errorf(diag.TypeMismatch, s.Pos, "missing field '%s' in '%s' literal", f.Name, st.Name)
		}
	}
	return st
}

// assign checks `target = value`. Assigning a non-reference to a `&mut`
// variable writes through it.
func (c *checker) assign(a *ast.AssignExpr) types.Type {
	switch t := a.Target.(type) {
	case *ast.Ident:
		sym := c.scope.Lookup(t.Name)
		if sym == nil {
			c.errorf(diag.UndeclaredIdentifier, t.Pos, "'%s' is not declared", t.Name)
			t.Type = types.Unknown
			c.value(a.Value, nil, "")
			return types.Void
		}
		c.identSyms[t] = sym
		t.Kind = identKind(sym)
		t.Type = sym.Type
		if !sym.tracked() && !sym.IsConst() {
			c.errorf(diag.TypeMismatch, t.Pos, "cannot assign to %s '%s'", sym.Kind, sym.Name)
			c.value(a.Value, nil, "")
			return types.Void
		}

		want := sym.Type
		_, rebind := a.Value.(*ast.RefExpr)
		through := false
		if r, ok := sym.Type.(*types.Ref); ok && !rebind {
			if !r.Mutable {
				c.errorf(diag.BorrowConflict, a.Pos, "cannot assign through shared reference '%s'", sym.Name)
			}
			want = r.Inner
			through = true
		}
		saved := c.holder
		if rebind && sym.Scope != nil {
			c.holder = sym.Scope.ID
		}
		c.value(a.Value, want, "assignment to '"+sym.Name+"'")
		c.holder = saved
		if through {
			sym.Used = true
		} else {
			c.write(a.Pos, sym, true)
		}
	case *ast.MemberExpr, *ast.IndexExpr:
		tt := c.expr(t, nil)
		c.value(a.Value, tt, "assignment")
		if m, ok := t.(*ast.MemberExpr); ok && m.Name == "length" {
			if _, isStruct := types.Deref(m.X.Info().Type).(*types.Struct); !isStruct {
				c.errorf(diag.TypeMismatch, m.Pos, "cannot assign to 'length'")
				return types.Void
			}
		}
		var placeType types.Type
		switch p := t.(type) {
		case *ast.MemberExpr:
			placeType = p.X.Info().Type
		case *ast.IndexExpr:
			placeType = p.X.Info().Type
		}
		c.mutate(t, placeType, a.Pos)
	default:
		c.errorf(diag.TypeMismatch, a.Target.Position(), "invalid assignment target")
		c.expr(a.Target, nil)
		c.value(a.Value, nil, "")
	}
	return types.Void
}
