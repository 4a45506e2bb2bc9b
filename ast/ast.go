// Package ast defines the syntax tree the extractor pattern-matches.
//
// The tree is a closed set of node types: every expression implements Expr,
// every statement implements Stmt, and both are sealed by unexported marker
// methods so exhaustive type switches have a single default arm for anything
// the extractor does not understand. Hosts produce this tree (see package jsx)
// and the extractor never mutates it.
package ast

import "fmt"

// Span locates a node in its source unit.
type Span struct {
	Start  int // byte offset, inclusive
	End    int // byte offset, exclusive
	Line   int // 1-based
	Column int // 1-based
}

// Key returns a string that uniquely identifies the span within a unit.
func (s Span) Key() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// String returns human readable position.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Node is implemented by every tree node.
type Node interface {
	Pos() Span
	node()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmt()
}

// Pattern is implemented by binding targets (identifiers and destructuring).
type Pattern interface {
	Node
	pattern()
}

// JSXAttr is implemented by JSX attributes.
type JSXAttr interface {
	Node
	jsxAttr()
}

// Expressions.
type (
	Ident struct {
		Span Span
		Name string
	}

	NullLit struct {
		Span Span
	}

	UndefinedLit struct {
		Span Span
	}

	BoolLit struct {
		Span  Span
		Value bool
	}

	NumberLit struct {
		Span  Span
		Value float64
		Raw   string
	}

	StringLit struct {
		Span  Span
		Value string
	}

	// TemplateLit holds len(Exprs)+1 quasis.
	TemplateLit struct {
		Span   Span
		Quasis []string
		Exprs  []Expr
	}

	UnaryExpr struct {
		Span Span
		Op   string // "-", "+", "!", "typeof", "void", "~"
		X    Expr
	}

	BinaryExpr struct {
		Span Span
		Op   string
		X, Y Expr
	}

	// LogicalExpr covers "&&", "||" and "??".
	LogicalExpr struct {
		Span Span
		Op   string
		X, Y Expr
	}

	ConditionalExpr struct {
		Span       Span
		Test       Expr
		Consequent Expr
		Alternate  Expr
	}

	ObjectLit struct {
		Span  Span
		Props []ObjectMember
	}

	ArrayLit struct {
		Span  Span
		Elems []Expr
	}

	MemberExpr struct {
		Span     Span
		Object   Expr
		Property Expr // *Ident when not computed
		Computed bool
		Optional bool
	}

	CallExpr struct {
		Span   Span
		Callee Expr
		Args   []Expr
	}

	// FuncExpr is an arrow function or function expression. Its body is
	// either a *BlockStmt or an Expr.
	FuncExpr struct {
		Span   Span
		Params []Pattern
		Body   Node
	}

	// SpreadExpr appears in array literals and call arguments.
	SpreadExpr struct {
		Span Span
		Arg  Expr
	}

	// Opaque is any expression the host could not map. Children keeps
	// nested nodes reachable so JSX inside unknown constructs is still visited.
	Opaque struct {
		Span     Span
		Kind     string
		Text     string
		Children []Node
	}

	JSXElement struct {
		Span        Span
		Name        string // "" for fragments
		NameSpan    Span
		Attrs       []JSXAttr
		Children    []Node
		SelfClosing bool
		OpenSpan    Span // opening tag including angle brackets
		CloseSpan   Span // closing tag, zero when SelfClosing
	}

	JSXText struct {
		Span Span
		Text string
	}

	// JSXExprContainer is a {expression} child. X is nil for empty containers.
	JSXExprContainer struct {
		Span Span
		X    Expr
	}
)

// ObjectMember is a property or a spread in an object literal.
type ObjectMember interface {
	Node
	objectMember()
}

type (
	Property struct {
		Span      Span
		Key       Expr // *Ident, *StringLit, *NumberLit or any Expr when Computed
		Computed  bool
		Shorthand bool
		Value     Expr
	}

	SpreadProperty struct {
		Span Span
		Arg  Expr
	}
)

// JSX attributes.
type (
	// JSXNamedAttr is name={value}. Value is nil for bare boolean attributes.
	JSXNamedAttr struct {
		Span  Span
		Name  string
		Value Expr
	}

	JSXSpreadAttr struct {
		Span Span
		Arg  Expr
	}
)

// Patterns.
type (
	IdentPattern struct {
		Span Span
		Name string
	}

	PatternProp struct {
		Key   string
		Value Pattern
	}

	ObjectPattern struct {
		Span  Span
		Props []PatternProp
		Rest  *IdentPattern
	}

	ArrayPattern struct {
		Span  Span
		Elems []Pattern // nil entries are holes
	}

	// DefaultPattern is target = default.
	DefaultPattern struct {
		Span    Span
		Target  Pattern
		Default Expr
	}
)

// Statements.
type (
	Program struct {
		Span Span
		Path string
		Body []Stmt
	}

	Declarator struct {
		Span   Span
		Target Pattern
		Init   Expr
	}

	VarDecl struct {
		Span  Span
		Kind  string // "const", "let", "var"
		Decls []*Declarator
	}

	ImportSpec struct {
		Span     Span
		Imported string // "default", "*" or exported name
		Local    string
	}

	ImportDecl struct {
		Span   Span
		Source string
		Specs  []ImportSpec
	}

	FuncDecl struct {
		Span   Span
		Name   string
		Params []Pattern
		Body   *BlockStmt
	}

	ClassDecl struct {
		Span     Span
		Name     string
		Children []Node
	}

	BlockStmt struct {
		Span Span
		Body []Stmt
	}

	ExprStmt struct {
		Span Span
		X    Expr
	}

	ReturnStmt struct {
		Span Span
		X    Expr
	}

	IfStmt struct {
		Span       Span
		Test       Expr
		Consequent Stmt
		Alternate  Stmt
	}

	// ExportDecl wraps a declaration (Decl) or a default expression (X).
	ExportDecl struct {
		Span    Span
		Default bool
		Decl    Stmt
		X       Expr
	}

	// OtherStmt is any statement the host could not map.
	OtherStmt struct {
		Span     Span
		Kind     string
		Children []Node
	}
)

func (n *Ident) Pos() Span            { return n.Span }
func (n *NullLit) Pos() Span          { return n.Span }
func (n *UndefinedLit) Pos() Span     { return n.Span }
func (n *BoolLit) Pos() Span          { return n.Span }
func (n *NumberLit) Pos() Span        { return n.Span }
func (n *StringLit) Pos() Span        { return n.Span }
func (n *TemplateLit) Pos() Span      { return n.Span }
func (n *UnaryExpr) Pos() Span        { return n.Span }
func (n *BinaryExpr) Pos() Span       { return n.Span }
func (n *LogicalExpr) Pos() Span      { return n.Span }
func (n *ConditionalExpr) Pos() Span  { return n.Span }
func (n *ObjectLit) Pos() Span        { return n.Span }
func (n *ArrayLit) Pos() Span         { return n.Span }
func (n *MemberExpr) Pos() Span       { return n.Span }
func (n *CallExpr) Pos() Span         { return n.Span }
func (n *FuncExpr) Pos() Span         { return n.Span }
func (n *SpreadExpr) Pos() Span       { return n.Span }
func (n *Opaque) Pos() Span           { return n.Span }
func (n *JSXElement) Pos() Span       { return n.Span }
func (n *JSXText) Pos() Span          { return n.Span }
func (n *JSXExprContainer) Pos() Span { return n.Span }
func (n *Property) Pos() Span         { return n.Span }
func (n *SpreadProperty) Pos() Span   { return n.Span }
func (n *JSXNamedAttr) Pos() Span     { return n.Span }
func (n *JSXSpreadAttr) Pos() Span    { return n.Span }
func (n *IdentPattern) Pos() Span     { return n.Span }
func (n *ObjectPattern) Pos() Span    { return n.Span }
func (n *ArrayPattern) Pos() Span     { return n.Span }
func (n *DefaultPattern) Pos() Span   { return n.Span }
func (n *Program) Pos() Span          { return n.Span }
func (n *Declarator) Pos() Span       { return n.Span }
func (n *VarDecl) Pos() Span          { return n.Span }
func (n *ImportDecl) Pos() Span       { return n.Span }
func (n *FuncDecl) Pos() Span         { return n.Span }
func (n *ClassDecl) Pos() Span        { return n.Span }
func (n *BlockStmt) Pos() Span        { return n.Span }
func (n *ExprStmt) Pos() Span         { return n.Span }
func (n *ReturnStmt) Pos() Span       { return n.Span }
func (n *IfStmt) Pos() Span           { return n.Span }
func (n *ExportDecl) Pos() Span       { return n.Span }
func (n *OtherStmt) Pos() Span        { return n.Span }

func (*Ident) node()            {}
func (*NullLit) node()          {}
func (*UndefinedLit) node()     {}
func (*BoolLit) node()          {}
func (*NumberLit) node()        {}
func (*StringLit) node()        {}
func (*TemplateLit) node()      {}
func (*UnaryExpr) node()        {}
func (*BinaryExpr) node()       {}
func (*LogicalExpr) node()      {}
func (*ConditionalExpr) node()  {}
func (*ObjectLit) node()        {}
func (*ArrayLit) node()         {}
func (*MemberExpr) node()       {}
func (*CallExpr) node()         {}
func (*FuncExpr) node()         {}
func (*SpreadExpr) node()       {}
func (*Opaque) node()           {}
func (*JSXElement) node()       {}
func (*JSXText) node()          {}
func (*JSXExprContainer) node() {}
func (*Property) node()         {}
func (*SpreadProperty) node()   {}
func (*JSXNamedAttr) node()     {}
func (*JSXSpreadAttr) node()    {}
func (*IdentPattern) node()     {}
func (*ObjectPattern) node()    {}
func (*ArrayPattern) node()     {}
func (*DefaultPattern) node()   {}
func (*Program) node()          {}
func (*Declarator) node()       {}
func (*VarDecl) node()          {}
func (*ImportDecl) node()       {}
func (*FuncDecl) node()         {}
func (*ClassDecl) node()        {}
func (*BlockStmt) node()        {}
func (*ExprStmt) node()         {}
func (*ReturnStmt) node()       {}
func (*IfStmt) node()           {}
func (*ExportDecl) node()       {}
func (*OtherStmt) node()        {}

func (*Ident) expr()            {}
func (*NullLit) expr()          {}
func (*UndefinedLit) expr()     {}
func (*BoolLit) expr()          {}
func (*NumberLit) expr()        {}
func (*StringLit) expr()        {}
func (*TemplateLit) expr()      {}
func (*UnaryExpr) expr()        {}
func (*BinaryExpr) expr()       {}
func (*LogicalExpr) expr()      {}
func (*ConditionalExpr) expr()  {}
func (*ObjectLit) expr()        {}
func (*ArrayLit) expr()         {}
func (*MemberExpr) expr()       {}
func (*CallExpr) expr()         {}
func (*FuncExpr) expr()         {}
func (*SpreadExpr) expr()       {}
func (*Opaque) expr()           {}
func (*JSXElement) expr()       {}
func (*JSXExprContainer) expr() {}

func (*Property) objectMember()       {}
func (*SpreadProperty) objectMember() {}

func (*JSXNamedAttr) jsxAttr()  {}
func (*JSXSpreadAttr) jsxAttr() {}

func (*IdentPattern) pattern()   {}
func (*ObjectPattern) pattern()  {}
func (*ArrayPattern) pattern()   {}
func (*DefaultPattern) pattern() {}

func (*VarDecl) stmt()    {}
func (*ImportDecl) stmt() {}
func (*FuncDecl) stmt()   {}
func (*ClassDecl) stmt()  {}
func (*BlockStmt) stmt()  {}
func (*ExprStmt) stmt()   {}
func (*ReturnStmt) stmt() {}
func (*IfStmt) stmt()     {}
func (*ExportDecl) stmt() {}
func (*OtherStmt) stmt()  {}

// IsLiteral reports whether e is a primitive literal.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *NullLit, *UndefinedLit, *BoolLit, *NumberLit, *StringLit:
		return true
	}
	return false
}
