package ast_test

import (
	"testing"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

func TestFormat_Expressions(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{"ident", &ast.Ident{Name: "dynamic"}, "dynamic"},
		{"string", &ast.StringLit{Value: `a"b`}, `"a\"b"`},
		{"number", &ast.NumberLit{Value: 1.5}, "1.5"},
		{"integer", &ast.NumberLit{Value: 42}, "42"},
		{"strict equality", &ast.BinaryExpr{Op: "===", X: &ast.Ident{Name: "a"}, Y: &ast.NumberLit{Value: 4}}, "a === 4"},
		{"nested binary", &ast.BinaryExpr{
			Op: "+",
			X:  &ast.BinaryExpr{Op: "*", X: &ast.Ident{Name: "a"}, Y: &ast.NumberLit{Value: 2}},
			Y:  &ast.NumberLit{Value: 1},
		}, "(a * 2) + 1"},
		{"conditional", &ast.ConditionalExpr{
			Test:       &ast.Ident{Name: "x"},
			Consequent: &ast.StringLit{Value: "a"},
			Alternate:  &ast.StringLit{Value: ""},
		}, `x ? "a" : ""`},
		{"member", &ast.MemberExpr{Object: &ast.Ident{Name: "theme"}, Property: &ast.Ident{Name: "color"}}, "theme.color"},
		{"computed member", &ast.MemberExpr{Object: &ast.Ident{Name: "a"}, Property: &ast.StringLit{Value: "b"}, Computed: true}, `a["b"]`},
		{"not", &ast.UnaryExpr{Op: "!", X: &ast.Ident{Name: "a"}}, "!a"},
		{"typeof", &ast.UnaryExpr{Op: "typeof", X: &ast.Ident{Name: "a"}}, "typeof a"},
		{"template", &ast.TemplateLit{Quasis: []string{"w-", "px"}, Exprs: []ast.Expr{&ast.Ident{Name: "n"}}}, "`w-${n}px`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.Format(tt.expr); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_VerbatimSource(t *testing.T) {
	src := []byte(`<Block onClick={() => go(1)} />`)
	fn := &ast.FuncExpr{Span: ast.Span{Start: 16, End: 27}}
	attr := &ast.JSXNamedAttr{Span: ast.Span{Start: 7, End: 28}, Name: "onClick", Value: fn}
	el := &ast.JSXElement{
		Name:        "div",
		SelfClosing: true,
		Attrs: []ast.JSXAttr{
			attr,
			&ast.JSXNamedAttr{Name: "className", Value: &ast.StringLit{Value: "_x0"}},
		},
	}

	p := &ast.Printer{Source: src}
	want := `<div onClick={() => go(1)} className="_x0" />`
	if got := p.OpenTag(el); got != want {
		t.Errorf("OpenTag() = %q, want %q", got, want)
	}
}

func TestInspect_FindsNestedJSX(t *testing.T) {
	inner := &ast.JSXElement{Name: "Block", SelfClosing: true}
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.FuncDecl{Name: "App", Body: &ast.BlockStmt{Body: []ast.Stmt{
			&ast.ReturnStmt{X: &ast.ConditionalExpr{
				Test:       &ast.Ident{Name: "x"},
				Consequent: inner,
				Alternate:  &ast.NullLit{},
			}},
		}}},
	}}

	var found []string
	ast.Inspect(prog, func(n ast.Node) bool {
		if el, ok := n.(*ast.JSXElement); ok {
			found = append(found, el.Name)
		}
		return true
	})
	if len(found) != 1 || found[0] != "Block" {
		t.Errorf("Inspect() found %v, want [Block]", found)
	}
}
