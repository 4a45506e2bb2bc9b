package jsx

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/net/html"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

func (c *converter) element(n *sitter.Node) *ast.JSXElement {
	el := &ast.JSXElement{Span: c.span(n)}

	if n.Type() == "jsx_self_closing_element" {
		el.SelfClosing = true
		el.OpenSpan = el.Span
		c.openTag(el, n)
		return el
	}

	opening, closing := n.ChildByFieldName("open_tag"), n.ChildByFieldName("close_tag")
	for _, ch := range c.named(n) {
		switch {
		case ch.Type() == "jsx_opening_element" && opening == nil:
			opening = ch
		case ch.Type() == "jsx_closing_element" && closing == nil:
			closing = ch
		}
	}
	for _, ch := range c.named(n) {
		if sameNode(ch, opening) || sameNode(ch, closing) {
			continue
		}
		if child := c.jsxChild(ch); child != nil {
			el.Children = append(el.Children, child)
		}
	}
	if closing != nil {
		el.CloseSpan = c.span(closing)
	}
	if opening != nil {
		el.OpenSpan = c.span(opening)
		c.openTag(el, opening)
	}
	return el
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

func (c *converter) openTag(el *ast.JSXElement, open *sitter.Node) {
	if name := open.ChildByFieldName("name"); name != nil {
		el.Name = strings.Join(strings.Fields(c.text(name)), "")
		el.NameSpan = c.span(name)
	}
	for _, ch := range c.named(open) {
		switch ch.Type() {
		case "jsx_attribute":
			if a := c.attr(ch); a != nil {
				el.Attrs = append(el.Attrs, a)
			}
		case "jsx_expression":
			// {...props}
			if sp := c.first(ch); sp != nil && sp.Type() == "spread_element" {
				el.Attrs = append(el.Attrs, &ast.JSXSpreadAttr{Span: c.span(ch), Arg: c.expr(c.first(sp))})
			}
		}
	}
}

func (c *converter) attr(n *sitter.Node) ast.JSXAttr {
	kids := c.named(n)
	if len(kids) == 0 {
		return nil
	}
	a := &ast.JSXNamedAttr{Span: c.span(n), Name: c.text(kids[0])}
	if len(kids) < 2 {
		return a
	}
	switch v := kids[1]; v.Type() {
	case "string":
		a.Value = &ast.StringLit{Span: c.span(v), Value: c.jsxString(v)}
	case "jsx_expression":
		inner := c.first(v)
		if inner == nil {
			// name={} is a syntax error in React, keep it verbatim
			a.Value = &ast.Opaque{Span: c.span(v), Kind: v.Type(), Text: c.text(v)}
			break
		}
		a.Value = c.expr(inner)
	default:
		a.Value = c.expr(v)
	}
	return a
}

func (c *converter) jsxChild(n *sitter.Node) ast.Node {
	sp := c.span(n)
	switch n.Type() {
	case "jsx_text", "html_character_reference":
		return &ast.JSXText{Span: sp, Text: html.UnescapeString(c.text(n))}
	case "jsx_expression":
		ec := &ast.JSXExprContainer{Span: sp}
		if inner := c.first(n); inner != nil {
			ec.X = c.expr(inner)
		}
		return ec
	}
	return c.node(n)
}

// jsxString returns the value of a quoted JSX attribute. JSX attribute
// strings do not support backslash escapes, only HTML entities.
func (c *converter) jsxString(n *sitter.Node) string {
	raw := c.text(n)
	if len(raw) >= 2 {
		raw = raw[1 : len(raw)-1]
	}
	return html.UnescapeString(raw)
}
