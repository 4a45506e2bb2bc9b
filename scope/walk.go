package scope

import (
	"strconv"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

// Visitor is called for every JSX element with the scope it appears in.
type Visitor func(el *ast.JSXElement, s *Scope)

// Walk traverses prog depth-first in source order, building scopes as it
// goes. Declarations are hoisted on scope entry, so an element sees every
// binding of its enclosing scopes regardless of declaration position. The
// module scope is returned.
func Walk(prog *ast.Program, visit Visitor) *Scope {
	w := &walker{visit: visit}
	module := New(nil, KindModule)
	w.body(module, prog.Body)
	return module
}

type walker struct {
	visit Visitor
}

// body declares and walks statements of a function or module body.
func (w *walker) body(s *Scope, stmts []ast.Stmt) {
	hoistVars(s, stmts)
	declareLexical(s, stmts)
	for _, st := range stmts {
		w.node(st, s)
	}
}

func (w *walker) function(s *Scope, params []ast.Pattern, body ast.Node) {
	fs := New(s, KindFunction)
	for _, p := range params {
		declarePattern(fs, BindingParam, p, nil, nil, nil, p.Pos())
	}
	switch b := body.(type) {
	case *ast.BlockStmt:
		if b != nil {
			w.body(fs, b.Body)
		}
	case ast.Node:
		w.node(b, fs)
	}
}

func (w *walker) node(n ast.Node, s *Scope) {
	switch n := n.(type) {
	case nil:
		return
	case *ast.FuncDecl:
		var body ast.Node
		if n.Body != nil {
			body = n.Body
		}
		w.function(s, n.Params, body)
		return
	case *ast.FuncExpr:
		w.function(s, n.Params, n.Body)
		return
	case *ast.BlockStmt:
		bs := New(s, KindBlock)
		declareLexical(bs, n.Body)
		for _, st := range n.Body {
			w.node(st, bs)
		}
		return
	case *ast.JSXElement:
		if w.visit != nil {
			w.visit(n, s)
		}
	}
	for _, c := range ast.Children(n) {
		w.node(c, s)
	}
}

// hoistVars declares every var found in stmts, including nested blocks but
// not nested functions, in s.
func hoistVars(s *Scope, stmts []ast.Stmt) {
	for _, st := range stmts {
		ast.Inspect(st, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.FuncDecl, *ast.FuncExpr, *ast.ClassDecl:
				return false
			case *ast.VarDecl:
				if n.Kind == "var" {
					declareVar(s, n)
				}
				return false
			}
			return true
		})
	}
}

// declareLexical declares const, let, function, class and import bindings
// found directly in stmts.
func declareLexical(s *Scope, stmts []ast.Stmt) {
	for _, st := range stmts {
		if ex, ok := st.(*ast.ExportDecl); ok {
			st = ex.Decl
		}
		switch d := st.(type) {
		case *ast.VarDecl:
			if d.Kind != "var" {
				declareVar(s, d)
			}
		case *ast.FuncDecl:
			if d.Name != "" {
				s.Declare(&Binding{Name: d.Name, Kind: BindingFunction, Span: d.Span})
			}
		case *ast.ClassDecl:
			if d.Name != "" {
				s.Declare(&Binding{Name: d.Name, Kind: BindingClass, Span: d.Span})
			}
		case *ast.ImportDecl:
			for _, spec := range d.Specs {
				s.Declare(&Binding{
					Name:   spec.Local,
					Kind:   BindingImport,
					Span:   spec.Span,
					Import: &ImportRef{Source: d.Source, Export: spec.Imported},
				})
			}
		}
	}
}

func declareVar(s *Scope, d *ast.VarDecl) {
	kind := BindingConst
	switch d.Kind {
	case "let":
		kind = BindingLet
	case "var":
		kind = BindingVar
	}
	for _, decl := range d.Decls {
		if src, ok := requireSource(decl.Init); ok {
			declarePattern(s, BindingRequire, decl.Target, nil, nil, &ImportRef{Source: src, Export: "*"}, decl.Span)
			continue
		}
		declarePattern(s, kind, decl.Target, decl.Init, nil, nil, decl.Span)
	}
}

// requireSource matches require("module").
func requireSource(e ast.Expr) (string, bool) {
	call, ok := e.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return "", false
	}
	if id, ok := call.Callee.(*ast.Ident); !ok || id.Name != "require" {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.StringLit)
	if !ok {
		return "", false
	}
	return lit.Value, true
}

func declarePattern(s *Scope, kind BindingKind, p ast.Pattern, init ast.Expr, path []Step, ref *ImportRef, span ast.Span) {
	switch p := p.(type) {
	case *ast.IdentPattern:
		if p == nil {
			return
		}
		s.Declare(&Binding{
			Name:   p.Name,
			Kind:   kind,
			Span:   span,
			Init:   init,
			Path:   append([]Step(nil), path...),
			Import: ref,
		})
	case *ast.DefaultPattern:
		if len(path) > 0 {
			last := path[len(path)-1]
			last.Default = p.Default
			path = append(append([]Step(nil), path[:len(path)-1]...), last)
		}
		declarePattern(s, kind, p.Target, init, path, ref, span)
	case *ast.ObjectPattern:
		keys := make([]string, 0, len(p.Props))
		for _, prop := range p.Props {
			keys = append(keys, prop.Key)
			declarePattern(s, kind, prop.Value, init, extend(path, Step{Key: prop.Key}), ref, span)
		}
		if p.Rest != nil {
			declarePattern(s, kind, p.Rest, init, extend(path, Step{Rest: true, Exclude: keys}), ref, span)
		}
	case *ast.ArrayPattern:
		for i, el := range p.Elems {
			if el == nil {
				continue
			}
			declarePattern(s, kind, el, init, extend(path, Step{Key: strconv.Itoa(i)}), ref, span)
		}
	}
}

func extend(path []Step, st Step) []Step {
	out := make([]Step, 0, len(path)+1)
	out = append(out, path...)
	return append(out, st)
}
