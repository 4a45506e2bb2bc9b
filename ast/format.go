package ast

import (
	"strconv"
	"strings"
)

// Printer renders nodes as JavaScript source. When Source is set, nodes that
// carry a real span are copied from it verbatim, so constructs the tree does
// not model (functions, type assertions) survive a rewrite untouched.
// Generated nodes have zero spans and are always printed.
type Printer struct {
	Source []byte
}

// Format prints e canonically: two structurally equal expressions always
// print identically, which is what the ternary grouper relies on when
// comparing tests. Compound operands are always parenthesized.
func Format(e Expr) string {
	return (&Printer{}).Expr(e)
}

// Expr prints a single expression.
func (p *Printer) Expr(e Expr) string {
	var sb strings.Builder
	p.formatExpr(&sb, e)
	return sb.String()
}

// OpenTag prints a JSX opening tag for el, self-closing when requested.
func (p *Printer) OpenTag(el *JSXElement) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(el.Name)
	for _, a := range el.Attrs {
		sb.WriteByte(' ')
		if text, ok := p.verbatim(a); ok {
			sb.WriteString(text)
			continue
		}
		p.formatAttr(&sb, a)
	}
	if el.SelfClosing {
		sb.WriteString(" />")
	} else {
		sb.WriteByte('>')
	}
	return sb.String()
}

// CloseTag prints a JSX closing tag for el.
func (p *Printer) CloseTag(el *JSXElement) string {
	return "</" + el.Name + ">"
}

func (p *Printer) verbatim(n Node) (string, bool) {
	if p.Source == nil || n == nil {
		return "", false
	}
	s := n.Pos()
	if s.End <= s.Start || s.End > len(p.Source) {
		return "", false
	}
	return string(p.Source[s.Start:s.End]), true
}

func (p *Printer) formatAttr(sb *strings.Builder, a JSXAttr) {
	switch a := a.(type) {
	case *JSXNamedAttr:
		sb.WriteString(a.Name)
		switch v := a.Value.(type) {
		case nil:
		case *StringLit:
			if !strings.ContainsAny(v.Value, "\"\n\\{}") {
				sb.WriteString(`="`)
				sb.WriteString(v.Value)
				sb.WriteByte('"')
				return
			}
			sb.WriteString("={")
			p.formatExpr(sb, v)
			sb.WriteByte('}')
		default:
			sb.WriteString("={")
			p.formatExpr(sb, v)
			sb.WriteByte('}')
		}
	case *JSXSpreadAttr:
		sb.WriteString("{...")
		p.formatExpr(sb, a.Arg)
		sb.WriteByte('}')
	}
}

func isCompound(e Expr) bool {
	switch e.(type) {
	case *BinaryExpr, *LogicalExpr, *ConditionalExpr, *FuncExpr, *UnaryExpr:
		return true
	}
	return false
}

func (p *Printer) formatOperand(sb *strings.Builder, e Expr) {
	if isCompound(e) {
		sb.WriteByte('(')
		p.formatExpr(sb, e)
		sb.WriteByte(')')
		return
	}
	p.formatExpr(sb, e)
}

// FormatNumber renders a number the way JavaScript's ToString does for the
// common range.
func FormatNumber(f float64) string {
	switch {
	case f != f:
		return "NaN"
	case f > 1e308:
		return "Infinity"
	case f < -1e308:
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (p *Printer) formatExpr(sb *strings.Builder, e Expr) {
	if e != nil {
		if text, ok := p.verbatim(e); ok {
			sb.WriteString(text)
			return
		}
	}
	switch e := e.(type) {
	case nil:
		sb.WriteString("undefined")
	case *Ident:
		sb.WriteString(e.Name)
	case *NullLit:
		sb.WriteString("null")
	case *UndefinedLit:
		sb.WriteString("undefined")
	case *BoolLit:
		sb.WriteString(strconv.FormatBool(e.Value))
	case *NumberLit:
		sb.WriteString(FormatNumber(e.Value))
	case *StringLit:
		sb.WriteString(strconv.Quote(e.Value))
	case *TemplateLit:
		sb.WriteByte('`')
		for i, q := range e.Quasis {
			sb.WriteString(strings.NewReplacer("`", "\\`", "${", "\\${").Replace(q))
			if i < len(e.Exprs) {
				sb.WriteString("${")
				p.formatExpr(sb, e.Exprs[i])
				sb.WriteByte('}')
			}
		}
		sb.WriteByte('`')
	case *UnaryExpr:
		sb.WriteString(e.Op)
		if len(e.Op) > 1 {
			sb.WriteByte(' ')
		}
		p.formatOperand(sb, e.X)
	case *BinaryExpr:
		p.formatOperand(sb, e.X)
		sb.WriteString(" " + e.Op + " ")
		p.formatOperand(sb, e.Y)
	case *LogicalExpr:
		p.formatOperand(sb, e.X)
		sb.WriteString(" " + e.Op + " ")
		p.formatOperand(sb, e.Y)
	case *ConditionalExpr:
		p.formatOperand(sb, e.Test)
		sb.WriteString(" ? ")
		p.formatOperand(sb, e.Consequent)
		sb.WriteString(" : ")
		p.formatOperand(sb, e.Alternate)
	case *ObjectLit:
		sb.WriteByte('{')
		for i, m := range e.Props {
			if i > 0 {
				sb.WriteString(", ")
			}
			switch m := m.(type) {
			case *Property:
				if m.Computed {
					sb.WriteByte('[')
					p.formatExpr(sb, m.Key)
					sb.WriteByte(']')
				} else {
					p.formatExpr(sb, m.Key)
				}
				sb.WriteString(": ")
				p.formatExpr(sb, m.Value)
			case *SpreadProperty:
				sb.WriteString("...")
				p.formatExpr(sb, m.Arg)
			}
		}
		sb.WriteByte('}')
	case *ArrayLit:
		sb.WriteByte('[')
		for i, el := range e.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			if el != nil {
				p.formatExpr(sb, el)
			}
		}
		sb.WriteByte(']')
	case *MemberExpr:
		p.formatOperand(sb, e.Object)
		switch {
		case e.Computed:
			if e.Optional {
				sb.WriteString("?.")
			}
			sb.WriteByte('[')
			p.formatExpr(sb, e.Property)
			sb.WriteByte(']')
		default:
			if e.Optional {
				sb.WriteString("?.")
			} else {
				sb.WriteByte('.')
			}
			p.formatExpr(sb, e.Property)
		}
	case *CallExpr:
		p.formatOperand(sb, e.Callee)
		sb.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			p.formatExpr(sb, a)
		}
		sb.WriteByte(')')
	case *SpreadExpr:
		sb.WriteString("...")
		p.formatExpr(sb, e.Arg)
	case *Opaque:
		sb.WriteString(e.Text)
	case *FuncExpr:
		// Only reachable without Source; functions are never generated.
		sb.WriteString("function () {}")
	case *JSXElement:
		sb.WriteString(p.OpenTag(e))
		if !e.SelfClosing {
			sb.WriteString("...")
			sb.WriteString(p.CloseTag(e))
		}
	case *JSXExprContainer:
		p.formatExpr(sb, e.X)
	}
}
