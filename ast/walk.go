package ast

// Children returns the direct children of n in source order. Nil children
// are skipped.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c == nil || isNilNode(c) {
			return
		}
		out = append(out, c)
	}
	switch n := n.(type) {
	case *TemplateLit:
		for _, e := range n.Exprs {
			add(e)
		}
	case *UnaryExpr:
		add(n.X)
	case *BinaryExpr:
		add(n.X)
		add(n.Y)
	case *LogicalExpr:
		add(n.X)
		add(n.Y)
	case *ConditionalExpr:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *ObjectLit:
		for _, m := range n.Props {
			add(m)
		}
	case *Property:
		if n.Computed {
			add(n.Key)
		}
		add(n.Value)
	case *SpreadProperty:
		add(n.Arg)
	case *ArrayLit:
		for _, e := range n.Elems {
			add(e)
		}
	case *MemberExpr:
		add(n.Object)
		if n.Computed {
			add(n.Property)
		}
	case *CallExpr:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *FuncExpr:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *SpreadExpr:
		add(n.Arg)
	case *Opaque:
		for _, c := range n.Children {
			add(c)
		}
	case *JSXElement:
		for _, a := range n.Attrs {
			add(a)
		}
		for _, c := range n.Children {
			add(c)
		}
	case *JSXExprContainer:
		add(n.X)
	case *JSXNamedAttr:
		add(n.Value)
	case *JSXSpreadAttr:
		add(n.Arg)
	case *DefaultPattern:
		add(n.Target)
		add(n.Default)
	case *ObjectPattern:
		for _, p := range n.Props {
			add(p.Value)
		}
	case *ArrayPattern:
		for _, p := range n.Elems {
			add(p)
		}
	case *Program:
		for _, s := range n.Body {
			add(s)
		}
	case *Declarator:
		add(n.Target)
		add(n.Init)
	case *VarDecl:
		for _, d := range n.Decls {
			add(d)
		}
	case *FuncDecl:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *ClassDecl:
		for _, c := range n.Children {
			add(c)
		}
	case *BlockStmt:
		for _, s := range n.Body {
			add(s)
		}
	case *ExprStmt:
		add(n.X)
	case *ReturnStmt:
		add(n.X)
	case *IfStmt:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *ExportDecl:
		add(n.Decl)
		add(n.X)
	case *OtherStmt:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}

// Inspect traverses the tree depth-first, calling fn for every node. When fn
// returns false the children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || isNilNode(n) || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// isNilNode catches typed nil pointers stored in interfaces.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *BlockStmt:
		return n == nil
	case *JSXElement:
		return n == nil
	case *IdentPattern:
		return n == nil
	case *Declarator:
		return n == nil
	}
	return false
}
