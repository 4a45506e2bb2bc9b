package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/evaluate"
	"github.com/jsxstyle/jsxstyle-sub000/props"
	"github.com/jsxstyle/jsxstyle-sub000/scope"
	"github.com/jsxstyle/jsxstyle-sub000/styles"
	"github.com/jsxstyle/jsxstyle-sub000/ternary"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

var attrNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_:.-]*$`)

// reservedProps cannot appear inside the props object.
var reservedProps = map[string]bool{
	"className": true,
	"component": true,
	"props":     true,
	"style":     true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// element collects what is known about one layout component.
type element struct {
	u         *unit
	component string
	attempt   props.Attempt

	// kept are the attributes staying on a partially static element.
	kept []ast.JSXAttr
	// passthrough are the attributes moved to the output element.
	passthrough []ast.JSXAttr
	// extracted names style attributes turned into classes, in order.
	extracted []string
	inherited ast.Expr
	ref       *ast.Span
	target    string
	props     *value.Object
	static    []css.Declaration
	records   []ternary.Record

	dynamic    bool // some style must be computed at runtime
	untouched  bool // element cannot be rewritten at all
	schemaErrs int
}

func (u *unit) element(el *ast.JSXElement, s *scope.Scope) error {
	component, ok := u.x.componentName(el, s)
	if !ok {
		return nil
	}

	ns := scope.ResolveBindings(s, u.x.opts.Modules, u.path, u.cache, u.x.opts.Fallback)
	sandbox := evaluate.NewSandbox(ns, u.x.opts.Fallback)
	a := &element{
		u:         u,
		component: component,
		target:    u.x.opts.OutputElement,
		attempt: func(e ast.Expr) (value.Value, error) {
			return evaluate.Evaluate(e, sandbox.Eval)
		},
	}

	flat := props.Flatten(el.Attrs, a.attempt)
	if flat.LastUnresolvedSpread >= 0 {
		a.dynamic = true
		if !a.inline(flat.Inline) {
			u.needsRuntime(el)
			return nil
		}
	}
	for _, e := range flat.Entries() {
		a.entry(e)
	}

	if a.schemaErrs > 0 || a.untouched {
		u.needsRuntime(el)
		return nil
	}

	mode := ModeStatic
	if a.dynamic {
		if len(a.static) == 0 && len(a.records) == 0 {
			u.log.Debug("Leaving element dynamic", zap.String("component", component))
			u.needsRuntime(el)
			return nil
		}
		mode = ModePartial
	} else {
		if err := a.defaults(flat); err != nil {
			return err
		}
		if voidElements[a.target] && hasContent(el.Children) {
			return fmt.Errorf("%w: %s:%d:%d: <%s> cannot have children once rewritten to <%s>",
				ErrStructure, u.path, el.Span.Line, el.Span.Column, el.Name, a.target)
		}
	}

	className, err := a.className()
	if err != nil {
		u.warn(el.OpenSpan, fmt.Errorf("%w: %w", ErrUnsupportedSyntax, err))
		u.needsRuntime(el)
		return nil
	}

	out := &ast.JSXElement{
		Span:        el.Span,
		Name:        el.Name,
		NameSpan:    el.NameSpan,
		Children:    el.Children,
		SelfClosing: el.SelfClosing,
		OpenSpan:    el.OpenSpan,
		CloseSpan:   el.CloseSpan,
	}
	switch mode {
	case ModeStatic:
		out.Name, out.NameSpan = a.target, ast.Span{}
		out.Attrs = append(out.Attrs, a.passthrough...)
		out.Attrs = append(out.Attrs, a.propsAttrs()...)
		if a.ref != nil {
			u.warn(*a.ref, fmt.Errorf("ref on <%s> will point to the output element once styles are extracted", el.Name))
		}
	case ModePartial:
		out.Attrs = append(out.Attrs, a.kept...)
		if flat.LastUnresolvedSpread >= 0 {
			// unresolved spread must not bring back extracted styles
			for _, name := range a.extracted {
				out.Attrs = append(out.Attrs, &ast.JSXNamedAttr{Name: name, Value: &ast.NullLit{}})
			}
		}
		u.needsRuntime(el)
	}
	if className != nil {
		out.Attrs = append(out.Attrs, &ast.JSXNamedAttr{Name: "className", Value: className})
	}

	u.res.Replacements = append(u.res.Replacements, Replacement{Original: el, Element: out, Mode: mode})
	u.log.Debug("Rewrote element",
		zap.String("component", component),
		zap.Stringer("mode", mode),
		zap.Int("line", el.Span.Line))
	return nil
}

func (a *element) entry(e props.Entry) {
	switch {
	case e.Name == "className":
		a.inheritClassName(e)
	case e.Name == "component":
		a.setTarget(e)
	case e.Name == "props":
		a.setProps(e)
	case styles.IsPassthrough(e.Name):
		if e.Name == "ref" {
			span := e.Attr.Pos()
			a.ref = &span
		}
		attr, ok := a.attrFor(e)
		if !ok {
			a.untouched = true
			return
		}
		a.kept = append(a.kept, attr)
		a.passthrough = append(a.passthrough, attr)
	default:
		a.style(e)
	}
}

// value returns the static value of an entry.
func (a *element) value(e props.Entry) (value.Value, error) {
	if e.Resolved {
		return e.Value, nil
	}
	return a.attempt(e.Node)
}

// attrFor returns the attribute an entry is written back as. Entries that
// came from an evaluated spread are turned into literal attributes.
func (a *element) attrFor(e props.Entry) (ast.JSXAttr, bool) {
	if named, ok := e.Attr.(*ast.JSXNamedAttr); ok && named.Name == e.Name {
		return named, true
	}
	expr, ok := value.ToExpr(e.Value)
	if !ok {
		a.u.warn(e.Attr.Pos(), fmt.Errorf("%w: %s cannot be written as an attribute", ErrUnsupportedSyntax, e.Name))
		return nil, false
	}
	return &ast.JSXNamedAttr{Name: e.Name, Value: expr}, true
}

func (a *element) keepDynamic(e props.Entry) {
	a.dynamic = true
	if attr, ok := a.attrFor(e); ok {
		a.kept = append(a.kept, attr)
		return
	}
	a.untouched = true
}

// inline keeps attributes an unresolved spread may override. className is
// taken out of them and combined with whatever className spreads carry, the
// rewritten className attribute replaces all of them.
func (a *element) inline(attrs []ast.JSXAttr) bool {
	for _, attr := range attrs {
		switch at := attr.(type) {
		case *ast.JSXNamedAttr:
			if at.Name != "className" {
				break
			}
			if at.Value == nil {
				a.inherited = nil
			} else {
				a.inheritClassName(props.Entry{Name: at.Name, Node: at.Value, Attr: at})
			}
			continue
		case *ast.JSXSpreadAttr:
			if v, err := a.attempt(at.Arg); err == nil {
				if obj, ok := v.(*value.Object); ok {
					if cls, ok := obj.Get("className"); ok {
						a.inheritClassName(props.Entry{Name: "className", Resolved: true, Value: cls, Attr: at})
					}
					break
				}
				if value.IsNullish(v) {
					break
				}
			}
			if !isReference(at.Arg) {
				return false
			}
			var fromSpread ast.Expr = &ast.MemberExpr{Object: at.Arg, Property: &ast.Ident{Name: "className"}, Optional: true}
			if a.inherited != nil {
				fromSpread = &ast.LogicalExpr{Op: "||", X: fromSpread, Y: a.inherited}
			}
			a.inherited = fromSpread
		}
		a.kept = append(a.kept, attr)
	}
	return true
}

func (a *element) inheritClassName(e props.Entry) {
	a.inherited = nil
	v, err := a.value(e)
	if err != nil {
		a.inherited = e.Node
		return
	}
	if !value.Truthy(v) || !value.IsPrimitive(v) {
		return
	}
	if s := strings.TrimSpace(value.ToString(v)); s != "" {
		a.inherited = &ast.StringLit{Value: s}
	}
}

func (a *element) setTarget(e props.Entry) {
	attr, ok := a.attrFor(e)
	if !ok {
		a.untouched = true
		return
	}
	a.kept = append(a.kept, attr)

	var name string
	if v, err := a.value(e); err == nil {
		s, ok := v.(string)
		if !ok {
			a.u.warn(e.Attr.Pos(), fmt.Errorf("%w: component must be a string, got %s", ErrUnsupportedSyntax, value.TypeOf(v)))
			a.dynamic = true
			return
		}
		name = s
	} else if isReference(e.Node) {
		name = ast.Format(e.Node)
	}
	if !tagPattern.MatchString(name) {
		a.dynamic = true
		return
	}
	a.target = name
}

// isReference matches identifiers and dotted member chains.
func isReference(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.Ident:
		return true
	case *ast.MemberExpr:
		return !e.Computed && !e.Optional && isReference(e.Object)
	}
	return false
}

func (a *element) setProps(e props.Entry) {
	attr, ok := a.attrFor(e)
	if !ok {
		a.untouched = true
		return
	}
	a.kept = append(a.kept, attr)

	v, err := a.value(e)
	if err != nil {
		a.dynamic = true
		return
	}
	if value.IsNullish(v) {
		return
	}
	obj, ok := v.(*value.Object)
	if !ok {
		a.schema(e.Attr.Pos(), fmt.Errorf("%w: props must be an object, got %s", ErrSchema, value.TypeOf(v)))
		return
	}
	bad := 0
	for _, k := range obj.Keys() {
		item, _ := obj.Get(k)
		switch _, literal := value.ToExpr(item); {
		case !attrNamePattern.MatchString(k):
			a.schema(e.Attr.Pos(), fmt.Errorf("%w: props key %q is not an attribute name", ErrSchema, k))
		case reservedProps[k]:
			a.schema(e.Attr.Pos(), fmt.Errorf("%w: props key %q must be given directly", ErrSchema, k))
		case !literal:
			a.schema(e.Attr.Pos(), fmt.Errorf("%w: props.%s must be a primitive, got %s", ErrSchema, k, value.TypeOf(item)))
		default:
			continue
		}
		bad++
	}
	if bad == 0 {
		a.props = obj
	}
}

func (a *element) schema(span ast.Span, err error) {
	a.schemaErrs++
	a.u.fail(span, err)
}

func (a *element) propsAttrs() []ast.JSXAttr {
	if a.props == nil {
		return nil
	}
	out := make([]ast.JSXAttr, 0, a.props.Len())
	for _, k := range a.props.Keys() {
		v, _ := a.props.Get(k)
		expr, _ := value.ToExpr(v)
		out = append(out, &ast.JSXNamedAttr{Name: k, Value: expr})
	}
	return out
}

func (a *element) style(e props.Entry) {
	span := e.Attr.Pos()

	if v, err := a.value(e); err == nil {
		decls, ok := a.classify(e.Name, v, span)
		if !ok {
			a.keepDynamic(e)
			return
		}
		a.static = append(a.static, decls...)
		a.extracted = append(a.extracted, e.Name)
		return
	}

	if rec, ok := a.conditional(e); ok {
		a.records = append(a.records, rec)
		a.extracted = append(a.extracted, e.Name)
		return
	}
	a.keepDynamic(e)
}

// conditional turns a ternary or && attribute with static branches into a
// record.
func (a *element) conditional(e props.Entry) (ternary.Record, bool) {
	if e.Node == nil {
		return ternary.Record{}, false
	}
	c, err := ternary.Normalize(e.Node)
	if err != nil {
		if errors.Is(err, ternary.ErrUnsupportedOperator) {
			a.u.log.Debug("Keeping conditional dynamic", zap.String("name", e.Name), zap.Error(err))
		}
		return ternary.Record{}, false
	}
	cons, err := a.attempt(c.Consequent)
	if err != nil {
		return ternary.Record{}, false
	}
	alt, err := a.attempt(c.Alternate)
	if err != nil {
		return ternary.Record{}, false
	}
	span := e.Attr.Pos()
	if _, ok := a.classify(e.Name, cons, span); !ok {
		return ternary.Record{}, false
	}
	if _, ok := a.classify(e.Name, alt, span); !ok {
		return ternary.Record{}, false
	}
	return ternary.Record{Attribute: e.Name, Test: c.Test, Consequent: cons, Alternate: alt}, true
}

// classify converts one static style into declarations the registry
// accepts. Rejections are reported as warnings.
func (a *element) classify(name string, v value.Value, span ast.Span) ([]css.Declaration, bool) {
	r, err := a.u.x.classifier.Classify(name, v, styles.Context{})
	if err != nil {
		a.u.warn(span, fmt.Errorf("%w: %w", ErrUnsupportedSyntax, err))
		return nil, false
	}
	for _, d := range r.Declarations {
		if err := a.u.registry.Check(d); err != nil {
			a.u.warn(span, fmt.Errorf("%w: %s: %w", ErrUnsupportedSyntax, name, err))
			return nil, false
		}
	}
	return r.Declarations, true
}

// defaults puts the component's default styles in front of the static
// declarations, skipping any the element sets itself.
func (a *element) defaults(flat *props.Flattened) error {
	obj, ok := styles.Defaults(a.component)
	if !ok || obj.Len() == 0 {
		return nil
	}
	var decls []css.Declaration
	for _, k := range obj.Keys() {
		if _, set := flat.Get(k); set {
			continue
		}
		v, _ := obj.Get(k)
		r, err := a.u.x.classifier.Classify(k, v, styles.Context{})
		if err != nil {
			return fmt.Errorf("default style %s of %s: %w", k, a.component, err)
		}
		decls = append(decls, r.Declarations...)
	}
	a.static = append(decls, a.static...)
	return nil
}

// className assigns classes and assembles the className value: the
// inherited className, then one conditional per grouped test, then the
// static classes. Nothing is emitted unless every declaration is accepted.
func (a *element) className() (ast.Expr, error) {
	groups := ternary.Group(a.records)
	sides := make([][2][]css.Declaration, len(groups))
	all := append([]css.Declaration(nil), a.static...)
	for i, g := range groups {
		for j, side := range []*value.Object{g.Consequent, g.Alternate} {
			decls, err := a.sideDeclarations(side)
			if err != nil {
				return nil, err
			}
			sides[i][j] = decls
			all = append(all, decls...)
		}
	}
	if err := a.u.registry.CheckAll(all); err != nil {
		return nil, err
	}

	static, err := a.u.registry.ClassesFor(a.static)
	if err != nil {
		return nil, err
	}

	var parts []ast.Expr
	if a.inherited != nil {
		parts = append(parts, a.inherited)
	}
	for i, g := range groups {
		var names [2]string
		for j := range names {
			classes, err := a.u.registry.ClassesFor(sides[i][j])
			if err != nil {
				return nil, err
			}
			names[j] = strings.Join(classes, " ")
		}
		parts = append(parts, &ast.ConditionalExpr{
			Test:       g.Test,
			Consequent: &ast.StringLit{Value: names[0]},
			Alternate:  &ast.StringLit{Value: names[1]},
		})
	}
	if len(static) > 0 {
		parts = append(parts, &ast.StringLit{Value: strings.Join(static, " ")})
	}
	return concat(parts), nil
}

func (a *element) sideDeclarations(side *value.Object) ([]css.Declaration, error) {
	var decls []css.Declaration
	for _, k := range side.Keys() {
		v, _ := side.Get(k)
		r, err := a.u.x.classifier.Classify(k, v, styles.Context{})
		if err != nil {
			return nil, err
		}
		decls = append(decls, r.Declarations...)
	}
	return decls, nil
}

// concat joins className parts with single spaces. String literals are
// merged, anything else becomes a template literal.
func concat(parts []ast.Expr) ast.Expr {
	dynamic := false
	for _, p := range parts {
		if _, ok := p.(*ast.StringLit); !ok {
			dynamic = true
		}
	}
	if !dynamic {
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			texts = append(texts, p.(*ast.StringLit).Value)
		}
		if len(texts) == 0 {
			return nil
		}
		return &ast.StringLit{Value: strings.Join(texts, " ")}
	}

	tpl := &ast.TemplateLit{Quasis: []string{""}}
	last := func() *string { return &tpl.Quasis[len(tpl.Quasis)-1] }
	for i, p := range parts {
		if i > 0 {
			*last() += " "
		}
		switch p := p.(type) {
		case *ast.StringLit:
			*last() += p.Value
		case *ast.ConditionalExpr:
			tpl.Exprs = append(tpl.Exprs, p)
			tpl.Quasis = append(tpl.Quasis, "")
		case *ast.LogicalExpr:
			if y, ok := p.Y.(*ast.StringLit); ok && p.Op == "||" && y.Value != "" {
				tpl.Exprs = append(tpl.Exprs, p)
			} else {
				tpl.Exprs = append(tpl.Exprs, &ast.LogicalExpr{Op: "||", X: p, Y: &ast.StringLit{}})
			}
			tpl.Quasis = append(tpl.Quasis, "")
		default:
			tpl.Exprs = append(tpl.Exprs, &ast.LogicalExpr{Op: "||", X: p, Y: &ast.StringLit{}})
			tpl.Quasis = append(tpl.Quasis, "")
		}
	}
	return tpl
}

// hasContent reports whether children contain anything but whitespace.
func hasContent(children []ast.Node) bool {
	for _, c := range children {
		if t, ok := c.(*ast.JSXText); ok && strings.TrimSpace(t.Text) == "" {
			continue
		}
		return true
	}
	return false
}
