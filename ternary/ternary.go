// Package ternary canonicalizes conditional attribute values and groups them
// by test so each distinct condition produces one className expression.
package ternary

import (
	"errors"
	"fmt"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

var (
	// ErrUnsupportedOperator is returned for logical operators other than &&.
	ErrUnsupportedOperator = errors.New("unsupported conditional operator")
	// ErrNotConditional is returned for expressions that are neither a
	// conditional nor a logical expression.
	ErrNotConditional = errors.New("not a conditional expression")
)

// Conditional is a canonical test with its two branches. Test never starts
// with a negation and never uses != or !==.
type Conditional struct {
	Test       ast.Expr
	Consequent ast.Expr
	Alternate  ast.Expr
}

// Normalize canonicalizes a ternary or && expression. The input is left
// untouched. Rewritten tests are fresh nodes without a span, so printers do
// not copy the original source text for them.
func Normalize(e ast.Expr) (Conditional, error) {
	var c Conditional
	switch e := e.(type) {
	case *ast.ConditionalExpr:
		c = Conditional{Test: e.Test, Consequent: e.Consequent, Alternate: e.Alternate}
	case *ast.LogicalExpr:
		if e.Op != "&&" {
			return Conditional{}, fmt.Errorf("%w: %s", ErrUnsupportedOperator, e.Op)
		}
		c = Conditional{Test: e.X, Consequent: e.Y, Alternate: &ast.NullLit{}}
	default:
		return Conditional{}, fmt.Errorf("%w: %T", ErrNotConditional, e)
	}

	for {
		switch t := c.Test.(type) {
		case *ast.UnaryExpr:
			if t.Op != "!" {
				return c, nil
			}
			if inner, ok := t.X.(*ast.UnaryExpr); ok && inner.Op == "!" {
				c.Test = inner.X
				continue
			}
			c.Test = t.X
			c.Consequent, c.Alternate = c.Alternate, c.Consequent
		case *ast.BinaryExpr:
			var op string
			switch t.Op {
			case "!=":
				op = "=="
			case "!==":
				op = "==="
			default:
				return c, nil
			}
			c.Test = &ast.BinaryExpr{Op: op, X: t.X, Y: t.Y}
			c.Consequent, c.Alternate = c.Alternate, c.Consequent
		default:
			return c, nil
		}
	}
}

// Record is one attribute whose value depends on a canonical test.
type Record struct {
	Attribute  string
	Test       ast.Expr
	Consequent value.Value
	Alternate  value.Value
}

// Grouped holds every attribute sharing one test. Each side keeps the
// attribute order the records were seen in.
type Grouped struct {
	Key        string
	Test       ast.Expr
	Consequent *value.Object
	Alternate  *value.Object
}

// Group merges records with identical canonical test text, in order of first
// appearance.
func Group(records []Record) []*Grouped {
	var (
		out   []*Grouped
		index = make(map[string]*Grouped)
	)
	for _, r := range records {
		key := ast.Format(r.Test)
		g, ok := index[key]
		if !ok {
			g = &Grouped{Key: key, Test: r.Test, Consequent: value.NewObject(), Alternate: value.NewObject()}
			index[key] = g
			out = append(out, g)
		}
		g.Consequent.Set(r.Attribute, r.Consequent)
		g.Alternate.Set(r.Attribute, r.Alternate)
	}
	return out
}
