package checker

import (
	"github.com/strager/jrust/ast"
	"github.com/strager/jrust/diag"
	"github.com/strager/jrust/types"
)

// borrow is one live reference to a variable. It ends when the holder
// lifetime (a scope ID, or a temporary ID for a call or statement) ends.
type borrow struct {
	mutable bool
	holder  int
	pos     ast.Pos
}

type ownership struct {
	moved   bool
	movedAt ast.Pos
	borrows []borrow
}

func (o ownership) shared() int {
	n := 0
	for _, b := range o.borrows {
		if !b.mutable {
			n++
		}
	}
	return n
}

func (o ownership) exclusive() bool {
	for _, b := range o.borrows {
		if b.mutable {
			return true
		}
	}
	return false
}

// flow is the ownership state of every tracked symbol, indexed by
// Symbol.slot.
type flow []ownership

func (c *checker) track(sym *Symbol) {
	sym.slot = len(c.flow)
	c.flow = append(c.flow, ownership{})
	c.slots = append(c.slots, sym)
}

func (c *checker) state(sym *Symbol) *ownership {
	return &c.flow[sym.slot]
}

// snapshot copies the ownership state of every slot.
func (c *checker) snapshot() flow {
	out := make(flow, len(c.flow))
	for i, o := range c.flow {
		out[i] = ownership{moved: o.moved, movedAt: o.movedAt, borrows: append([]borrow(nil), o.borrows...)}
	}
	return out
}

// restore rewinds to a snapshot. Symbols declared since then are out of
// scope and lose their slots.
func (c *checker) restore(f flow) {
	c.flow = c.flow[:0]
	for _, o := range f {
		c.flow = append(c.flow, ownership{moved: o.moved, movedAt: o.movedAt, borrows: append([]borrow(nil), o.borrows...)})
	}
	c.slots = c.slots[:len(f)]
}

// capture snapshots the current state truncated to the slots of base.
func (c *checker) capture(base flow) flow {
	return c.snapshot()[:len(base)]
}

// merge joins the states of two paths. Moved wins over owned and borrows
// are unioned. A variable left exclusively borrowed on one path and shared
// on the other is a conflict at pos.
func (c *checker) merge(a, b flow, pos ast.Pos, report bool) flow {
	out := make(flow, len(a))
	for i := range a {
		x, y := a[i], b[i]
		o := ownership{moved: x.moved || y.moved}
		switch {
		case x.moved:
			o.movedAt = x.movedAt
		case y.moved:
			o.movedAt = y.movedAt
		}
		o.borrows = append([]borrow(nil), x.borrows...)
		for _, bb := range y.borrows {
			dup := false
			for _, xb := range x.borrows {
				if xb == bb {
					dup = true
					break
				}
			}
			if !dup {
				o.borrows = append(o.borrows, bb)
			}
		}
		if report && ((x.exclusive() && y.shared() > 0 && !y.exclusive()) || (y.exclusive() && x.shared() > 0 && !x.exclusive())) {
			c.errorf(diag.BorrowConflict, pos, "'%s' is mutably borrowed on one branch and borrowed on the other", c.slots[i].Name)
		}
		out[i] = o
	}
	return out
}

func (c *checker) newTemp() int {
	c.nextID++
	return c.nextID
}

// release ends every borrow held by holder.
func (c *checker) release(holder int) {
	for i := range c.flow {
		kept := c.flow[i].borrows[:0]
		for _, b := range c.flow[i].borrows {
			if b.holder != holder {
				kept = append(kept, b)
			}
		}
		c.flow[i].borrows = kept
	}
}

// use checks that a variable still owns its value.
func (c *checker) use(id *ast.Ident, sym *Symbol) {
	if !sym.tracked() {
		return
	}
	st := c.state(sym)
	if st.moved {
		c.errorf(diag.UseAfterMove, id.Pos, "use of moved value '%s' (moved at %d:%d)", sym.Name, st.movedAt.Line, st.movedAt.Column)
	}
}

// move transfers ownership out of a variable.
func (c *checker) move(id *ast.Ident, sym *Symbol) {
	if !sym.tracked() || types.IsCopy(sym.Type) {
		return
	}
	st := c.state(sym)
	if len(st.borrows) > 0 {
		c.errorf(diag.BorrowConflict, id.Pos, "cannot move '%s' while it is borrowed", sym.Name)
	}
	if st.moved {
		return
	}
	st.moved = true
	st.movedAt = id.Pos
}

// borrowOf records a new reference to sym held by the current holder.
func (c *checker) borrowOf(pos ast.Pos, sym *Symbol, mutable bool) {
	if !sym.tracked() {
		return
	}
	st := c.state(sym)
	if mutable && len(st.borrows) > 0 {
		c.errorf(diag.BorrowConflict, pos, "cannot borrow '%s' as mutable because it is already borrowed", sym.Name)
	} else if !mutable && st.exclusive() {
		c.errorf(diag.BorrowConflict, pos, "cannot borrow '%s' because it is already mutably borrowed", sym.Name)
	}
	st.borrows = append(st.borrows, borrow{mutable: mutable, holder: c.holder, pos: pos})
}

// write checks a store into sym (directly or through a field or index)
// and, for a direct store, gives the variable back its value.
func (c *checker) write(pos ast.Pos, sym *Symbol, direct bool) {
	if sym.IsConst() {
		c.errorf(diag.ReassignToConst, pos, "cannot assign to constant '%s'", sym.Name)
		return
	}
	if !sym.tracked() {
		return
	}
	if sym.mutated != nil {
		*sym.mutated = true
	}
	st := c.state(sym)
	if len(st.borrows) > 0 {
		c.errorf(diag.BorrowConflict, pos, "cannot assign to '%s' while it is borrowed", sym.Name)
	}
	if direct {
		st.moved = false
	}
}

// checkLoopMoves reports variables from outside a loop that the body moved
// and did not give a new value before the next iteration.
func (c *checker) checkLoopMoves(before, after flow) {
	for i := range before {
		if !before[i].moved && after[i].moved {
			sym := c.slots[i]
			c.errorf(diag.UseAfterMove, after[i].movedAt, "value '%s' moved in previous iteration of loop", sym.Name)
		}
	}
}
