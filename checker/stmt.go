package checker

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/types"
)

func (c *checker) checkStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.checkStmt(s)
	}
}

// checkStmt checks one statement. Borrows taken by temporaries in the
// statement end with it.
func (c *checker) checkStmt(s ast.Stmt) {
	c.withHolder(func() { c.stmt(s) })
}

func (c *checker) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		kind := SymVar
		if s.Const {
			kind = SymConst
		}
		c.checkVarDecl(s, &Symbol{Name: s.Name, Kind: kind, Pos: s.Pos})
	case *ast.FuncDecl:
		c.checkNestedFunc(s)
	case *ast.StructDecl:
		sym := &Symbol{Name: s.Name, Kind: SymStruct, Type: &types.Struct{Name: s.Name}, Pos: s.Pos}
		if c.declare(c.scope, sym) {
			c.resolveDecl(s, sym)
		}
	case *ast.EnumDecl:
		sym := &Symbol{Name: s.Name, Kind: SymEnum, Type: &types.Enum{Name: s.Name}, Pos: s.Pos}
		if c.declare(c.scope, sym) {
			c.resolveDecl(s, sym)
		}
	case *ast.ImportDecl:
		c.errorf(diag.UnexpectedToken, s.Pos, "imports are only allowed at the top level")
	case *ast.ExportDecl:
		c.errorf(diag.UnexpectedToken, s.Pos, "export is only allowed at the top level")
	case *ast.IfStmt:
		c.checkIf(s)
	case *ast.WhileStmt:
		c.loopBody(s.Cond, s.Body, nil)
	case *ast.ForInStmt:
		c.checkForIn(s)
	case *ast.BreakStmt:
		c.checkJump(s.Pos, "break")
	case *ast.ContinueStmt:
		c.checkJump(s.Pos, "continue")
	case *ast.ReturnStmt:
		c.checkReturn(s)
	case *ast.TryStmt:
		c.checkTry(s)
	case *ast.ThrowStmt:
		t := types.Deref(c.value(s.Value, nil, ""))
		if !types.IsScalar(t) && !types.IsUnknown(t) && !types.Is(t, types.AnyKind) {
			c.errorf(diag.TypeMismatch, s.Value.Position(), "thrown value must be a string, number or boolean, found '%s'", t)
		}
	case *ast.PrintStmt:
		for _, arg := range s.Args {
			if t := c.expr(arg, nil); types.Is(t, types.VoidKind) {
				c.errorf(diag.TypeMismatch, arg.Position(), "cannot print a void value")
			}
		}
	case *ast.ExprStmt:
		c.expr(s.X, nil)
	case *ast.BlockStmt:
		c.block(s)
	}
}

func (c *checker) block(b *ast.BlockStmt) {
	c.openScope(BlockScope)
	c.checkStmts(b.Stmts)
	c.closeScope()
}

// checkVarDecl checks a let or const. The name is bound after the
// initializer so `let x = x;` refers to an outer x.
func (c *checker) checkVarDecl(d *ast.VarDecl, sym *Symbol) {
	if d.Const && !isConstName(d.Name) {
		c.errorf(diag.NamingInvalid, d.Pos, "constant '%s' must be named in ALL_CAPS", d.Name)
	}
	var want types.Type
	if d.Type != nil {
		want = c.resolveType(d.Type)
	}

	t := want
	if d.Init == nil {
		c.errorf(diag.UninitializedDeclaration, d.Pos, "'%s' must be initialized when declared", d.Name)
	} else {
		if _, ok := d.Init.(*ast.RefExpr); ok && !d.Const {
			// the binding holds the borrow until its scope ends
			c.holder = c.scope.ID
		}
		got := c.value(d.Init, want, "initializer of '"+d.Name+"'")
		if t == nil {
			t = got
		}
		if types.Is(got, types.VoidKind) {
			c.errorf(diag.TypeMismatch, d.Init.Position(), "cannot bind '%s' to a void value", d.Name)
		}
		if d.Const && !isConstExpr(d.Init) {
			c.errorf(diag.TypeMismatch, d.Init.Position(), "initializer of constant '%s' must be a constant expression", d.Name)
		}
	}
	if t == nil {
		t = types.Unknown
	}
	if d.Const && !isConstType(t) {
		c.errorf(diag.TypeMismatch, d.Pos, "constant '%s' must be a number, string, boolean or fixed-size array of those, found '%s'", d.Name, t)
	}

	sym.Type = t
	d.Resolved = t
	if sym.Scope == nil {
		c.declare(c.scope, sym)
	}
}

func isConstType(t types.Type) bool {
	if types.IsScalar(t) || types.IsUnknown(t) {
		return true
	}
	arr, ok := t.(*types.Array)
	return ok && arr.Size != types.Dynamic && (types.IsScalar(arr.Elem) || types.IsUnknown(arr.Elem))
}

func isConstExpr(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.BoolLit:
		return true
	case *ast.Ident:
		return e.Kind == ast.IdentConst
	case *ast.UnaryExpr:
		return isConstExpr(e.X)
	case *ast.BinaryExpr:
		return !types.Is(e.Type, types.StringKind) && isConstExpr(e.Left) && isConstExpr(e.Right)
	case *ast.ArrayLit:
		for _, elem := range e.Elems {
			if !isConstExpr(elem) {
				return false
			}
		}
		return true
	}
	return false
}

// checkNestedFunc checks a function declared inside a block. It sees
// items but not the enclosing function's locals.
func (c *checker) checkNestedFunc(d *ast.FuncDecl) {
	sym := &Symbol{Name: d.Name, Kind: SymFunc, Type: &types.Func{Result: types.Void}, Pos: d.Pos}
	if !c.declare(c.scope, sym) {
		return
	}
	c.resolveDecl(d, sym)

	saved := c.scope
	c.scope = c.global
	c.openScope(BlockScope)
	c.scope.symbols[sym.Name] = sym
	c.checkFuncBody(d, sym.Type.(*types.Func))
	c.scope = saved
}

func (c *checker) condition(e ast.Expr) {
	t := types.Deref(c.expr(e, nil))
	if !types.Is(t, types.BooleanKind) && !types.IsUnknown(t) {
		c.errorf(diag.TypeMismatch, e.Position(), "condition must be boolean, found '%s'", t)
	}
}

func (c *checker) checkIf(s *ast.IfStmt) {
	c.condition(s.Cond)
	base := c.snapshot()

	c.block(s.Then)
	thenState := c.capture(base)
	c.restore(base)

	if s.Else != nil {
		c.stmt(s.Else)
	}
	elseState := c.capture(base)

	thenExits := diverges(s.Then)
	elseExits := s.Else != nil && diverges(s.Else)
	switch {
	case thenExits && !elseExits:
		c.restore(elseState)
	case elseExits && !thenExits:
		c.restore(thenState)
	default:
		c.restore(c.merge(thenState, elseState, s.Pos, true))
	}
}

// loopBody checks a loop condition and body once. cond is nil for for-in
// loops; it runs again before every iteration. bind declares the loop
// variable in the body scope.
func (c *checker) loopBody(cond ast.Expr, body *ast.BlockStmt, bind func()) {
	base := c.snapshot()
	if cond != nil {
		c.condition(cond)
	}
	savedLoop := c.loop
	c.loop = c.newTemp()
	c.loopDepth++

	c.openScope(BlockScope)
	if bind != nil {
		bind()
	}
	c.checkStmts(body.Stmts)
	c.closeScope()

	c.loopDepth--
	c.loop = savedLoop

	after := c.capture(base)
	if !exits(body, false) {
		c.checkLoopMoves(base, after)
	}
	c.restore(c.merge(base, after, body.Pos, false))
}

func (c *checker) checkForIn(s *ast.ForInStmt) {
	it := c.value(s.Iter, nil, "")
	var elem types.Type = types.Unknown
	switch t := it.(type) {
	case *types.Array:
		elem = t.Elem
	case *types.Ref:
		if arr, ok := t.Inner.(*types.Array); ok {
			elem = &types.Ref{Mutable: t.Mutable, Inner: arr.Elem}
		} else {
			c.errorf(diag.TypeMismatch, s.Iter.Position(), "cannot iterate over '%s'", t)
		}
	default:
		if !types.IsUnknown(it) {
			c.errorf(diag.TypeMismatch, s.Iter.Position(), "cannot iterate over '%s'", it)
		}
	}
	c.loopBody(nil, s.Body, func() {
		c.declare(c.scope, &Symbol{Name: s.Var, Kind: SymVar, Type: elem, Pos: s.Pos, mutated: &s.Mutated})
	})
}

func (c *checker) checkJump(pos ast.Pos, keyword string) {
	if c.loopDepth == 0 {
		c.errorf(diag.InvalidControlFlow, pos, "'%s' outside of a loop", keyword)
	} else if c.tryDepth > 0 && c.loopDepth <= c.tryLoopBase {
		c.errorf(diag.InvalidControlFlow, pos, "'%s' cannot leave a try block", keyword)
	}
}

func (c *checker) checkReturn(s *ast.ReturnStmt) {
	if c.tryDepth > 0 {
		c.errorf(diag.InvalidControlFlow, s.Pos, "'return' cannot be used inside a try block")
	}
	if c.fn == nil {
		if s.Value != nil {
			c.expr(s.Value, nil)
			c.errorf(diag.TypeMismatch, s.Value.Position(), "top-level return cannot carry a value")
		}
		return
	}
	want := c.fn.result
	switch {
	case s.Value == nil:
		if !types.Is(want, types.VoidKind) {
			c.errorf(diag.TypeMismatch, s.Pos, "function '%s' must return a value of type '%s'", c.fn.name, want)
		}
	case types.Is(want, types.VoidKind):
		c.expr(s.Value, nil)
		c.errorf(diag.TypeMismatch, s.Value.Position(), "function '%s' returns void but a value is returned", c.fn.name)
	default:
		c.value(s.Value, want, "return value of '"+c.fn.name+"'")
	}
}

// checkTry checks the body, then the catch clause starting from the state
// the body left behind, and joins the two.
func (c *checker) checkTry(s *ast.TryStmt) {
	base := c.snapshot()

	c.tryDepth++
	savedBase := c.tryLoopBase
	c.tryLoopBase = c.loopDepth
	c.block(s.Body)
	c.tryDepth--
	c.tryLoopBase = savedBase
	afterTry := c.capture(base)

	c.openScope(BlockScope)
	if s.CatchParam != "" {
		c.declare(c.scope, &Symbol{Name: s.CatchParam, Kind: SymVar, Type: types.String, Pos: s.Catch.Pos, Used: true})
	}
	c.checkStmts(s.Catch.Stmts)
	c.closeScope()
	afterCatch := c.capture(base)

	c.restore(c.merge(afterTry, afterCatch, s.Pos, true))
}
