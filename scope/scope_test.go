package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/scope"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

var nextOffset = 100

func span() ast.Span {
	nextOffset += 10
	return ast.Span{Start: nextOffset, End: nextOffset + 5, Line: 1, Column: 1}
}

func constDecl(kind, name string, init ast.Expr) *ast.VarDecl {
	return &ast.VarDecl{Kind: kind, Decls: []*ast.Declarator{{
		Span:   span(),
		Target: &ast.IdentPattern{Name: name},
		Init:   init,
	}}}
}

func ident(n string) *ast.Ident { return &ast.Ident{Name: n} }

func program(el *ast.JSXElement) *ast.Program {
	return &ast.Program{Path: "/src/app.jsx", Body: []ast.Stmt{
		&ast.ImportDecl{Source: "./theme", Specs: []ast.ImportSpec{{Span: span(), Imported: "default", Local: "theme"}}},
		&ast.ImportDecl{Source: "jsxstyle", Specs: []ast.ImportSpec{{Span: span(), Imported: "Block", Local: "Block"}}},
		&ast.ImportDecl{Source: "./missing", Specs: []ast.ImportSpec{{Span: span(), Imported: "x", Local: "x"}}},
		&ast.VarDecl{Kind: "const", Decls: []*ast.Declarator{{
			Span: span(),
			Target: &ast.ObjectPattern{
				Props: []ast.PatternProp{{Key: "primary", Value: &ast.IdentPattern{Name: "primary"}}},
				Rest:  &ast.IdentPattern{Name: "others"},
			},
			Init: &ast.CallExpr{Callee: ident("require"), Args: []ast.Expr{&ast.StringLit{Value: "../colors"}}},
		}}},
		constDecl("const", "size", &ast.NumberLit{Value: 12}),
		constDecl("const", "base", &ast.ObjectLit{Props: []ast.ObjectMember{
			&ast.Property{Key: ident("color"), Value: &ast.StringLit{Value: "red"}},
		}}),
		&ast.FuncDecl{Name: "App", Params: []ast.Pattern{&ast.IdentPattern{Name: "props"}}, Body: &ast.BlockStmt{Body: []ast.Stmt{
			constDecl("const", "double", &ast.BinaryExpr{Op: "*", X: ident("size"), Y: &ast.NumberLit{Value: 2}}),
			constDecl("const", "local", &ast.ObjectLit{}),
			constDecl("let", "mutable", &ast.NumberLit{Value: 1}),
			constDecl("const", "fromProps", &ast.MemberExpr{Object: ident("props"), Property: ident("color")}),
			&ast.ReturnStmt{X: el},
		}}},
	}}
}

func modules() scope.Modules {
	return scope.Modules{
		"/src/theme.js":    value.ObjectOf("default", value.ObjectOf("color", "blue")),
		"/colors/index.ts": value.ObjectOf("primary", "#f00", "secondary", "#0f0"),
		"jsxstyle":         value.ObjectOf("Block", "Block"),
	}
}

func TestResolveBindings(t *testing.T) {
	el := &ast.JSXElement{Name: "Block", SelfClosing: true}
	var at *scope.Scope
	scope.Walk(program(el), func(n *ast.JSXElement, s *scope.Scope) {
		if n == el {
			at = s
		}
	})
	require.NotNil(t, at)

	ns := scope.ResolveBindings(at, modules(), "/src/app.jsx", scope.NewBindingCache(), nil)

	assert.Equal(t, `{"color":"blue"}`, value.Serialize(ns["theme"]))
	assert.Equal(t, "Block", ns["Block"])
	assert.Equal(t, "#f00", ns["primary"])
	assert.Equal(t, `{"secondary":"#0f0"}`, value.Serialize(ns["others"]))
	assert.Equal(t, 12.0, ns["size"])
	assert.Equal(t, 24.0, ns["double"])
	assert.Equal(t, `{"color":"red"}`, value.Serialize(ns["base"]))

	for _, name := range []string{"x", "local", "mutable", "props", "fromProps", "App"} {
		_, ok := ns[name]
		assert.False(t, ok, "%s must not be static", name)
	}
}

func TestResolveBindings_InnerShadowsOuter(t *testing.T) {
	el := &ast.JSXElement{Name: "Block", SelfClosing: true}
	prog := &ast.Program{Body: []ast.Stmt{
		constDecl("const", "color", &ast.StringLit{Value: "red"}),
		constDecl("const", "bg", &ast.StringLit{Value: "white"}),
		&ast.FuncDecl{Name: "App", Params: []ast.Pattern{&ast.IdentPattern{Name: "bg"}}, Body: &ast.BlockStmt{Body: []ast.Stmt{
			constDecl("const", "color", &ast.StringLit{Value: "blue"}),
			&ast.ReturnStmt{X: el},
		}}},
	}}

	var at *scope.Scope
	scope.Walk(prog, func(n *ast.JSXElement, s *scope.Scope) { at = s })
	ns := scope.ResolveBindings(at, nil, "/a.jsx", nil, nil)

	assert.Equal(t, "blue", ns["color"])
	_, ok := ns["bg"]
	assert.False(t, ok, "parameter shadows module constant")
}

func TestBindingCache_WriteOnce(t *testing.T) {
	c := scope.NewBindingCache()
	c.Put("a@1:2", "red", true)
	c.Put("a@1:2", "blue", true)
	c.Put("b@3:4", nil, false)

	v, ok, known := c.Get("a@1:2")
	assert.True(t, known)
	assert.True(t, ok)
	assert.Equal(t, "red", v)

	_, ok, known = c.Get("b@3:4")
	assert.True(t, known)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestResolveBindings_UsesCache(t *testing.T) {
	el := &ast.JSXElement{Name: "Block", SelfClosing: true}
	prog := &ast.Program{Body: []ast.Stmt{
		constDecl("const", "size", &ast.NumberLit{Value: 4}),
		&ast.ExprStmt{X: el},
	}}
	var at *scope.Scope
	scope.Walk(prog, func(_ *ast.JSXElement, s *scope.Scope) { at = s })

	cache := scope.NewBindingCache()
	b := at.Lookup("size")
	require.NotNil(t, b)
	cache.Put(b.Key(), 99.0, true)

	ns := scope.ResolveBindings(at, nil, "/a.jsx", cache, nil)
	assert.Equal(t, 99.0, ns["size"])
}

func TestWalk_HoistsVarToFunction(t *testing.T) {
	el := &ast.JSXElement{Name: "Block", SelfClosing: true}
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.FuncDecl{Name: "App", Body: &ast.BlockStmt{Body: []ast.Stmt{
			&ast.IfStmt{Test: ident("x"), Consequent: &ast.BlockStmt{Body: []ast.Stmt{
				constDecl("var", "v", &ast.NumberLit{Value: 1}),
			}}},
			&ast.ReturnStmt{X: el},
		}}},
	}}
	var at *scope.Scope
	scope.Walk(prog, func(_ *ast.JSXElement, s *scope.Scope) { at = s })

	b := at.Lookup("v")
	require.NotNil(t, b)
	assert.Equal(t, scope.BindingVar, b.Kind)
	assert.Equal(t, scope.KindFunction, b.Scope.Kind)
}

func TestModules_Resolve(t *testing.T) {
	m := modules()
	_, p, ok := m.Resolve("../colors", "/src/app.jsx")
	assert.True(t, ok)
	assert.Equal(t, "/colors/index.ts", p)

	_, p, ok = m.Resolve("./theme", "/src/app.jsx")
	assert.True(t, ok)
	assert.Equal(t, "/src/theme.js", p)

	_, _, ok = m.Resolve("./nope", "/src/app.jsx")
	assert.False(t, ok)
}
