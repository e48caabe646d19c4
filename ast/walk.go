package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. When f returns false the node's children are skipped.
// Type expressions are not visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *ArrayLit:
		for _, e := range n.Elems {
			Inspect(e, f)
		}
	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *UnaryExpr:
		Inspect(n.X, f)
	case *RefExpr:
		Inspect(n.X, f)
	case *CallExpr:
		Inspect(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *MemberExpr:
		Inspect(n.X, f)
	case *IndexExpr:
		Inspect(n.X, f)
		Inspect(n.Index, f)
	case *StructLit:
		for _, fi := range n.Fields {
			Inspect(fi.Value, f)
		}
	case *AssignExpr:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *VarDecl:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
	case *FuncDecl:
		Inspect(n.Body, f)
	case *ExportDecl:
		Inspect(n.Decl, f)
	case *IfStmt:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStmt:
		Inspect(n.Cond, f)
		Inspect(n.Body, f)
	case *ForInStmt:
		Inspect(n.Iter, f)
		Inspect(n.Body, f)
	case *ReturnStmt:
		if n.Value != nil {
			Inspect(n.Value, f)
		}
	case *TryStmt:
		Inspect(n.Body, f)
		Inspect(n.Catch, f)
	case *ThrowStmt:
		Inspect(n.Value, f)
	case *PrintStmt:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *ExprStmt:
		Inspect(n.X, f)
	case *BlockStmt:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	}
}
