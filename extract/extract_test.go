package extract_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/extract"
	"github.com/jsxstyle/jsxstyle-sub000/scope"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

const unitPath = "/src/app.jsx"

func program(body ...ast.Stmt) *ast.Program {
	return &ast.Program{Path: unitPath, Body: body}
}

func importFrom(source string, names ...string) *ast.ImportDecl {
	d := &ast.ImportDecl{Source: source}
	for _, n := range names {
		d.Specs = append(d.Specs, ast.ImportSpec{Imported: n, Local: n})
	}
	return d
}

func jsx(name string, attrs ...ast.JSXAttr) *ast.JSXElement {
	return &ast.JSXElement{Name: name, Attrs: attrs, SelfClosing: true}
}

func attr(name string, v ast.Expr) *ast.JSXNamedAttr {
	return &ast.JSXNamedAttr{Name: name, Value: v}
}

func spread(x ast.Expr) *ast.JSXSpreadAttr { return &ast.JSXSpreadAttr{Arg: x} }
func stmt(x ast.Expr) *ast.ExprStmt        { return &ast.ExprStmt{X: x} }
func ident(name string) *ast.Ident         { return &ast.Ident{Name: name} }
func str(s string) *ast.StringLit          { return &ast.StringLit{Value: s} }
func num(f float64) *ast.NumberLit         { return &ast.NumberLit{Value: f} }

func ternary(test ast.Expr, cons, alt string) *ast.ConditionalExpr {
	return &ast.ConditionalExpr{Test: test, Consequent: str(cons), Alternate: str(alt)}
}

func object(kv ...any) *ast.ObjectLit {
	o := &ast.ObjectLit{}
	for i := 0; i+1 < len(kv); i += 2 {
		o.Props = append(o.Props, &ast.Property{Key: str(kv[i].(string)), Value: kv[i+1].(ast.Expr)})
	}
	return o
}

func newExtractor(t *testing.T, opts extract.Options) *extract.Extractor {
	t.Helper()
	x, err := extract.New(opts, zaptest.NewLogger(t))
	require.NoError(t, err)
	return x
}

func process(t *testing.T, opts extract.Options, prog *ast.Program) *extract.Result {
	t.Helper()
	res, err := newExtractor(t, opts).Process(prog)
	require.NoError(t, err)
	return res
}

func openTag(r extract.Replacement) string {
	return (&ast.Printer{}).OpenTag(r.Element)
}

func ruleTexts(rules []css.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Text)
	}
	return out
}

func TestProcess_FullDowngrade(t *testing.T) {
	el := jsx("Block", attr("color", str("red")), attr("margin", num(4)), attr("id", str("main")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Block"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	r := res.Replacements[0]
	assert.Same(t, el, r.Original)
	assert.Equal(t, extract.ModeStatic, r.Mode)
	assert.Equal(t, `<div id="main" className="_x0 _x1 _x2" />`, openTag(r))
	assert.Equal(t, []string{
		"._x0 { display: block }",
		"._x1 { color: red }",
		"._x2 { margin: 4px }",
	}, ruleTexts(res.Rules))
	assert.False(t, res.Dynamic)
	assert.NoError(t, res.Err)

	assert.Equal(t, "Block", el.Name, "input element must not be modified")
	assert.Len(t, el.Attrs, 3)
}

func TestProcess_UserStylesOverrideDefaults(t *testing.T) {
	el := jsx("Row", attr("flexDirection", str("column")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Row"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	assert.Equal(t, []string{
		"._x0 { display: flex }",
		"._x1._x1 { flex-direction: column }",
	}, ruleTexts(res.Rules))
}

func TestProcess_PartialDowngradeOrdering(t *testing.T) {
	el := jsx("Block",
		attr("className", ident("cls")),
		attr("color", ternary(ident("dynamic"), "red", "blue")),
		attr("width", ident("w")),
		attr("margin", num(1)),
	)
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Block"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	r := res.Replacements[0]
	assert.Equal(t, extract.ModePartial, r.Mode)
	assert.Equal(t, "<Block width={w} className={`${cls || \"\"} ${dynamic ? \"_x1\" : \"_x2\"} _x0`} />", openTag(r))
	assert.True(t, res.Dynamic)
	assert.Len(t, res.Rules, 3)
}

func TestProcess_PartialKeepsOnlyUnresolved(t *testing.T) {
	el := jsx("Block", attr("color", str("red")), attr("width", ident("w")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Block"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<Block width={w} className="_x0" />`, openTag(res.Replacements[0]))
	assert.Equal(t, []string{"._x0 { color: red }"}, ruleTexts(res.Rules))
}

func TestProcess_TernaryGroupsShareRules(t *testing.T) {
	prog := program(
		importFrom("jsxstyle", "Block", "Inline"),
		stmt(jsx("Block", attr("color", ternary(ident("dynamic"), "red", "blue")))),
		stmt(jsx("Inline", attr("color", ternary(ident("dynamic"), "red", "blue")))),
	)
	res := process(t, extract.Options{}, prog)

	require.Len(t, res.Replacements, 2)
	assert.Equal(t, "<div className={`${dynamic ? \"_x1\" : \"_x2\"} _x0`} />", openTag(res.Replacements[0]))
	assert.Equal(t, "<div className={`${dynamic ? \"_x1\" : \"_x2\"} _x3`} />", openTag(res.Replacements[1]))

	red := 0
	for _, text := range ruleTexts(res.Rules) {
		if strings.Contains(text, "color: red") {
			red++
		}
	}
	assert.Equal(t, 1, red)
	assert.Len(t, res.Rules, 4)
	assert.False(t, res.Dynamic)
}

func TestProcess_LogicalAndGroupedUnderOneTest(t *testing.T) {
	and := func(y string) ast.Expr { return &ast.LogicalExpr{Op: "&&", X: ident("a"), Y: str(y)} }
	el := jsx("Box", attr("color", and("red")), attr("backgroundColor", and("blue")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	assert.Equal(t, "<div className={`${a ? \"_x0 _x1\" : \"\"}`} />", openTag(res.Replacements[0]))
	assert.Len(t, res.Rules, 2)
}

func TestProcess_NegatedTestsShareOutput(t *testing.T) {
	neq := &ast.BinaryExpr{Op: "!==", X: ident("a"), Y: num(4)}
	eq := &ast.BinaryExpr{Op: "===", X: ident("a"), Y: num(4)}
	prog := program(
		importFrom("jsxstyle", "Box"),
		stmt(jsx("Box", attr("color", ternary(neq, "red", "blue")))),
		stmt(jsx("Box", attr("color", ternary(eq, "blue", "red")))),
	)
	res := process(t, extract.Options{}, prog)

	require.Len(t, res.Replacements, 2)
	assert.Equal(t, openTag(res.Replacements[0]), openTag(res.Replacements[1]))
	assert.Len(t, res.Rules, 2)
}

func TestProcess_UnresolvedSpreadKeepsEarlierAttributes(t *testing.T) {
	el := jsx("Box", attr("color", str("red")), spread(ident("rest")), attr("margin", num(2)))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	assert.Equal(t, "<Box color=\"red\" {...rest} margin={null} className={`${rest?.className || \"\"} _x0`} />", openTag(res.Replacements[0]))
	assert.Equal(t, []string{"._x0 { margin: 2px }"}, ruleTexts(res.Rules))
	assert.True(t, res.Dynamic)
}

func TestProcess_UnresolvedSpreadClassName(t *testing.T) {
	t.Run("inherited before spread", func(t *testing.T) {
		el := jsx("Box", attr("className", str("foo")), spread(ident("rest")), attr("margin", num(2)))
		res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

		require.Len(t, res.Replacements, 1)
		assert.Equal(t, "<Box {...rest} margin={null} className={`${rest?.className || \"foo\"} _x0`} />", openTag(res.Replacements[0]))
	})
	t.Run("static spread before unresolved one", func(t *testing.T) {
		el := jsx("Box",
			spread(object("className", str("bar"))),
			spread(&ast.MemberExpr{Object: ident("props"), Property: ident("rest")}),
			attr("color", ternary(ident("on"), "red", "blue")),
		)
		res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

		require.Len(t, res.Replacements, 1)
		assert.Equal(t, "<Box {...{\"className\": \"bar\"}} {...props.rest} color={null} className={`${props.rest?.className || \"bar\"} ${on ? \"_x0\" : \"_x1\"}`} />",
			openTag(res.Replacements[0]))
	})
	t.Run("className after spread wins", func(t *testing.T) {
		el := jsx("Box", attr("className", str("foo")), spread(ident("rest")), attr("className", str("last")), attr("margin", num(2)))
		res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

		require.Len(t, res.Replacements, 1)
		assert.Equal(t, `<Box {...rest} margin={null} className="last _x0" />`, openTag(res.Replacements[0]))
	})
	t.Run("spread of a call stays untouched", func(t *testing.T) {
		el := jsx("Box", attr("className", str("foo")), spread(&ast.CallExpr{Callee: ident("more")}), attr("margin", num(2)))
		res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

		assert.Empty(t, res.Replacements)
		assert.Empty(t, res.Rules)
		assert.True(t, res.Dynamic)
	})
}

func TestProcess_StaticSpreadMerges(t *testing.T) {
	el := jsx("Box", spread(object("color", str("red"), "id", str("hi"))), attr("color", str("blue")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))

	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<div id="hi" className="_x0" />`, openTag(res.Replacements[0]))
	assert.Equal(t, []string{"._x0 { color: blue }"}, ruleTexts(res.Rules))
}

func TestProcess_FullyDynamicUntouched(t *testing.T) {
	el := jsx("Box", attr("color", ident("c")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))
	assert.Empty(t, res.Replacements)
	assert.Empty(t, res.Rules)
	assert.True(t, res.Dynamic)
}

func TestProcess_IgnoresOtherElements(t *testing.T) {
	prog := program(
		importFrom("./local", "Block"),
		stmt(jsx("div", attr("color", str("red")))),
		stmt(jsx("Block", attr("color", str("red")))),
		stmt(jsx("Inline", attr("color", str("red")))),
	)
	res := process(t, extract.Options{}, prog)
	assert.Empty(t, res.Replacements)
	assert.False(t, res.Dynamic)
}

func TestProcess_NamespaceAndRequire(t *testing.T) {
	prog := program(
		&ast.ImportDecl{Source: "jsxstyle", Specs: []ast.ImportSpec{{Imported: "*", Local: "js"}}},
		&ast.VarDecl{Kind: "const", Decls: []*ast.Declarator{{
			Target: &ast.ObjectPattern{Props: []ast.PatternProp{{Key: "Col", Value: &ast.IdentPattern{Name: "Col"}}}},
			Init:   &ast.CallExpr{Callee: ident("require"), Args: []ast.Expr{str("jsxstyle")}},
		}}},
		stmt(jsx("js.Block", attr("color", str("red")))),
		stmt(jsx("Col")),
	)
	res := process(t, extract.Options{}, prog)
	require.Len(t, res.Replacements, 2)
	assert.Equal(t, `<div className="_x0 _x1" />`, openTag(res.Replacements[0]))
	assert.Equal(t, `<div className="_x2 _x3" />`, openTag(res.Replacements[1]))
}

func TestProcess_ResolvesBindings(t *testing.T) {
	prog := program(
		importFrom("jsxstyle", "Box"),
		importFrom("./theme", "primary"),
		&ast.VarDecl{Kind: "const", Decls: []*ast.Declarator{{
			Target: &ast.IdentPattern{Name: "sizes"},
			Init:   object("gap", num(8)),
		}}},
		stmt(jsx("Box",
			attr("color", ident("primary")),
			attr("padding", &ast.MemberExpr{Object: ident("sizes"), Property: ident("gap")}),
		)),
	)
	opts := extract.Options{Modules: scope.Modules{"/src/theme.js": value.ObjectOf("primary", "blue")}}
	res := process(t, opts, prog)

	require.Len(t, res.Replacements, 1)
	assert.Equal(t, []string{
		"._x0 { color: blue }",
		"._x1 { padding: 8px }",
	}, ruleTexts(res.Rules))
}

func TestProcess_Props(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		el := jsx("Box", attr("props", object("title", str("t"), "tabIndex", num(0))), attr("color", str("red")))
		res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Box"), stmt(el)))
		require.Len(t, res.Replacements, 1)
		assert.Equal(t, `<div title="t" tabIndex={0} className="_x0" />`, openTag(res.Replacements[0]))
	})
	t.Run("schema violation", func(t *testing.T) {
		var errs []extract.Diagnostic
		opts := extract.Options{Error: func(d extract.Diagnostic) { errs = append(errs, d) }}
		el := jsx("Box", attr("props", object("bad key", num(1), "style", str("x"))), attr("color", str("red")))
		res := process(t, opts, program(importFrom("jsxstyle", "Box"), stmt(el)))

		assert.Empty(t, res.Replacements)
		assert.True(t, res.Dynamic)
		assert.True(t, errors.Is(res.Err, extract.ErrSchema))
		assert.Len(t, errs, 2)
	})
}

func TestProcess_RefWarns(t *testing.T) {
	var warnings []extract.Diagnostic
	opts := extract.Options{Warn: func(d extract.Diagnostic) { warnings = append(warnings, d) }}
	el := jsx("Box", attr("ref", ident("node")), attr("color", str("red")))
	res := process(t, opts, program(importFrom("jsxstyle", "Box"), stmt(el)))

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Error(), "ref")
	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<div ref={node} className="_x0" />`, openTag(res.Replacements[0]))
}

func TestProcess_RefKeptQuietOnPartialElement(t *testing.T) {
	var warnings []extract.Diagnostic
	opts := extract.Options{Warn: func(d extract.Diagnostic) { warnings = append(warnings, d) }}
	el := jsx("Box", attr("ref", ident("node")), attr("width", ident("w")), attr("color", str("red")))
	res := process(t, opts, program(importFrom("jsxstyle", "Box"), stmt(el)))

	assert.Empty(t, warnings)
	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<Box ref={node} width={w} className="_x0" />`, openTag(res.Replacements[0]))
}

func TestProcess_UnsupportedValueStaysInline(t *testing.T) {
	var warnings []extract.Diagnostic
	opts := extract.Options{Warn: func(d extract.Diagnostic) { warnings = append(warnings, d) }}
	el := jsx("Box", attr("color", str("red; display: none")), attr("margin", num(1)))
	res := process(t, opts, program(importFrom("jsxstyle", "Box"), stmt(el)))

	require.Len(t, warnings, 1)
	assert.True(t, errors.Is(warnings[0], extract.ErrUnsupportedSyntax))
	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<Box color="red; display: none" className="_x0" />`, openTag(res.Replacements[0]))
}

func TestProcess_Component(t *testing.T) {
	el := jsx("Block", attr("component", str("span")))
	res := process(t, extract.Options{}, program(importFrom("jsxstyle", "Block"), stmt(el)))
	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<span className="_x0" />`, openTag(res.Replacements[0]))

	el = jsx("Block", attr("component", ident("Link")), attr("id", str("home")))
	res = process(t, extract.Options{}, program(importFrom("jsxstyle", "Block"), stmt(el)))
	require.Len(t, res.Replacements, 1)
	assert.Equal(t, `<Link id="home" className="_x0" />`, openTag(res.Replacements[0]))
}

func TestProcess_VoidElementWithChildren(t *testing.T) {
	el := jsx("Block", attr("component", str("input")))
	el.SelfClosing = false
	el.Children = []ast.Node{&ast.JSXText{Text: "text"}}
	_, err := newExtractor(t, extract.Options{}).Process(program(importFrom("jsxstyle", "Block"), stmt(el)))
	assert.True(t, errors.Is(err, extract.ErrStructure), "got %v", err)
}

func TestProcess_StrictReportsRuntime(t *testing.T) {
	var errs []extract.Diagnostic
	opts := extract.Options{Strict: true, Error: func(d extract.Diagnostic) { errs = append(errs, d) }}
	el := jsx("Box", attr("color", ident("c")))
	res := process(t, opts, program(importFrom("jsxstyle", "Box"), stmt(el)))

	assert.True(t, errors.Is(res.Err, extract.ErrRuntimeRequired))
	assert.Len(t, errs, 1)
}

func TestProcess_SharedCacheAcrossUnits(t *testing.T) {
	names := css.NewClassNameCache(css.NamingCounter, "")
	emitted := css.NewEmissionLog()
	x := newExtractor(t, extract.Options{Names: names, Emitted: emitted})

	unit := func() *ast.Program {
		return program(importFrom("jsxstyle", "Box"), stmt(jsx("Box", attr("color", str("red")))))
	}
	first, err := x.Process(unit())
	require.NoError(t, err)
	second, err := x.Process(unit())
	require.NoError(t, err)

	assert.Len(t, first.Rules, 1)
	assert.Empty(t, second.Rules)
	assert.Equal(t, openTag(first.Replacements[0]), openTag(second.Replacements[0]))
	assert.Equal(t, 1, emitted.Len())
}

func TestNew_Configuration(t *testing.T) {
	tests := []struct {
		name string
		opts extract.Options
	}{
		{"bad element", extract.Options{OutputElement: "not valid"}},
		{"bad prefix", extract.Options{ClassPrefix: "1x"}},
		{"prefix with shared cache", extract.Options{ClassPrefix: "x", Names: css.NewClassNameCache(css.NamingHash, "")}},
		{"empty module", extract.Options{ComponentModules: []string{" "}}},
		{"bad naming", extract.Options{Naming: css.Naming(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extract.New(tt.opts, nil)
			assert.True(t, errors.Is(err, extract.ErrConfiguration), "got %v", err)
		})
	}
}
