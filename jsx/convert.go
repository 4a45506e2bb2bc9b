package jsx

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

// converter maps tree-sitter nodes to ast nodes. Constructs without a
// dedicated ast type become Opaque or OtherStmt with their children kept, so
// elements nested anywhere are still reachable.
type converter struct {
	src []byte
}

func (c *converter) span(n *sitter.Node) ast.Span {
	pt := n.StartPoint()
	return ast.Span{
		Start:  int(n.StartByte()),
		End:    int(n.EndByte()),
		Line:   int(pt.Row) + 1,
		Column: int(pt.Column) + 1,
	}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// named returns named children without comments.
func (c *converter) named(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch == nil || ch.Type() == "comment" || ch.Type() == "hash_bang_line" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func (c *converter) first(n *sitter.Node) *sitter.Node {
	if kids := c.named(n); len(kids) > 0 {
		return kids[0]
	}
	return nil
}

func isStatement(kind string) bool {
	return kind == "statement_block" ||
		strings.HasSuffix(kind, "_statement") ||
		strings.HasSuffix(kind, "_declaration")
}

// node converts n as a statement or as an expression depending on its kind.
func (c *converter) node(n *sitter.Node) ast.Node {
	if isStatement(n.Type()) {
		if st := c.stmt(n); st != nil {
			return st
		}
		return nil
	}
	if e := c.expr(n); e != nil {
		return e
	}
	return nil
}

func (c *converter) children(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for _, ch := range c.named(n) {
		if nd := c.node(ch); nd != nil {
			out = append(out, nd)
		}
	}
	return out
}

func (c *converter) stmt(n *sitter.Node) ast.Stmt {
	if n == nil {
		return nil
	}
	sp := c.span(n)
	switch n.Type() {
	case "empty_statement":
		return nil
	case "import_statement":
		return c.importDecl(n)
	case "lexical_declaration", "variable_declaration":
		return c.varDecl(n)
	case "function_declaration", "generator_function_declaration":
		fd := &ast.FuncDecl{Span: sp, Params: c.params(n.ChildByFieldName("parameters"))}
		if name := n.ChildByFieldName("name"); name != nil {
			fd.Name = c.text(name)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			fd.Body = c.block(body)
		}
		return fd
	case "class_declaration", "abstract_class_declaration":
		cd := &ast.ClassDecl{Span: sp, Children: c.children(n.ChildByFieldName("body"))}
		if name := n.ChildByFieldName("name"); name != nil {
			cd.Name = c.text(name)
		}
		return cd
	case "statement_block":
		return c.block(n)
	case "expression_statement":
		x := c.first(n)
		if x == nil {
			return nil
		}
		return &ast.ExprStmt{Span: sp, X: c.expr(x)}
	case "return_statement":
		rs := &ast.ReturnStmt{Span: sp}
		if x := c.first(n); x != nil {
			rs.X = c.expr(x)
		}
		return rs
	case "if_statement":
		is := &ast.IfStmt{
			Span:       sp,
			Test:       c.expr(n.ChildByFieldName("condition")),
			Consequent: c.stmt(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil {
			if alt.Type() == "else_clause" {
				alt = c.first(alt)
			}
			if alt != nil {
				is.Alternate = c.stmt(alt)
			}
		}
		return is
	case "export_statement":
		return c.exportDecl(n)
	}
	return &ast.OtherStmt{Span: sp, Kind: n.Type(), Children: c.children(n)}
}

func (c *converter) block(n *sitter.Node) *ast.BlockStmt {
	b := &ast.BlockStmt{Span: c.span(n)}
	for _, ch := range c.named(n) {
		if st := c.stmt(ch); st != nil {
			b.Body = append(b.Body, st)
		}
	}
	return b
}

func (c *converter) importDecl(n *sitter.Node) ast.Stmt {
	d := &ast.ImportDecl{Span: c.span(n)}
	source := n.ChildByFieldName("source")
	for _, ch := range c.named(n) {
		switch ch.Type() {
		case "string":
			if source == nil {
				source = ch
			}
		case "import_clause":
			for _, part := range c.named(ch) {
				switch part.Type() {
				case "identifier":
					d.Specs = append(d.Specs, ast.ImportSpec{Span: c.span(part), Imported: "default", Local: c.text(part)})
				case "namespace_import":
					if id := c.first(part); id != nil {
						d.Specs = append(d.Specs, ast.ImportSpec{Span: c.span(part), Imported: "*", Local: c.text(id)})
					}
				case "named_imports":
					for _, spec := range c.named(part) {
						if spec.Type() != "import_specifier" {
							continue
						}
						d.Specs = append(d.Specs, c.importSpec(spec))
					}
				}
			}
		}
	}
	if source == nil {
		return &ast.OtherStmt{Span: d.Span, Kind: n.Type()}
	}
	d.Source = c.stringValue(source)
	return d
}

func (c *converter) importSpec(n *sitter.Node) ast.ImportSpec {
	spec := ast.ImportSpec{Span: c.span(n)}
	name := n.ChildByFieldName("name")
	if name == nil {
		name = c.first(n)
	}
	if name != nil {
		if name.Type() == "string" {
			spec.Imported = c.stringValue(name)
		} else {
			spec.Imported = c.text(name)
		}
		spec.Local = spec.Imported
	}
	if alias := n.ChildByFieldName("alias"); alias != nil {
		spec.Local = c.text(alias)
	}
	return spec
}

func (c *converter) varDecl(n *sitter.Node) ast.Stmt {
	d := &ast.VarDecl{Span: c.span(n), Kind: "var"}
	if n.Type() == "lexical_declaration" && n.ChildCount() > 0 {
		d.Kind = c.text(n.Child(0))
	}
	for _, ch := range c.named(n) {
		if ch.Type() != "variable_declarator" {
			continue
		}
		target := c.pattern(ch.ChildByFieldName("name"))
		if target == nil {
			continue
		}
		decl := &ast.Declarator{Span: c.span(ch), Target: target}
		if v := ch.ChildByFieldName("value"); v != nil {
			decl.Init = c.expr(v)
		}
		d.Decls = append(d.Decls, decl)
	}
	return d
}

func (c *converter) exportDecl(n *sitter.Node) ast.Stmt {
	ex := &ast.ExportDecl{Span: c.span(n)}
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); ch != nil && !ch.IsNamed() && ch.Type() == "default" {
			ex.Default = true
		}
	}
	switch {
	case n.ChildByFieldName("declaration") != nil:
		ex.Decl = c.stmt(n.ChildByFieldName("declaration"))
	case n.ChildByFieldName("value") != nil:
		ex.X = c.expr(n.ChildByFieldName("value"))
	default:
		return &ast.OtherStmt{Span: ex.Span, Kind: n.Type(), Children: c.children(n)}
	}
	return ex
}

func (c *converter) params(n *sitter.Node) []ast.Pattern {
	var out []ast.Pattern
	for _, ch := range c.named(n) {
		if p := c.pattern(ch); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// pattern returns nil for targets that cannot bind names statically.
func (c *converter) pattern(n *sitter.Node) ast.Pattern {
	if n == nil {
		return nil
	}
	sp := c.span(n)
	switch n.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return &ast.IdentPattern{Span: sp, Name: c.text(n)}
	case "assignment_pattern":
		target := c.pattern(n.ChildByFieldName("left"))
		if target == nil {
			return nil
		}
		return &ast.DefaultPattern{Span: sp, Target: target, Default: c.expr(n.ChildByFieldName("right"))}
	case "required_parameter", "optional_parameter":
		target := c.pattern(n.ChildByFieldName("pattern"))
		if target == nil {
			return nil
		}
		if v := n.ChildByFieldName("value"); v != nil {
			return &ast.DefaultPattern{Span: sp, Target: target, Default: c.expr(v)}
		}
		return target
	case "object_pattern":
		op := &ast.ObjectPattern{Span: sp}
		for _, ch := range c.named(n) {
			switch ch.Type() {
			case "shorthand_property_identifier_pattern":
				op.Props = append(op.Props, ast.PatternProp{Key: c.text(ch), Value: c.pattern(ch)})
			case "pair_pattern":
				key, ok := c.propertyKey(ch.ChildByFieldName("key"))
				value := c.pattern(ch.ChildByFieldName("value"))
				if ok && value != nil {
					op.Props = append(op.Props, ast.PatternProp{Key: key, Value: value})
				}
			case "object_assignment_pattern":
				left := c.pattern(ch.ChildByFieldName("left"))
				id, ok := left.(*ast.IdentPattern)
				if !ok {
					continue
				}
				op.Props = append(op.Props, ast.PatternProp{
					Key:   id.Name,
					Value: &ast.DefaultPattern{Span: c.span(ch), Target: id, Default: c.expr(ch.ChildByFieldName("right"))},
				})
			case "rest_pattern":
				if id, ok := c.pattern(c.first(ch)).(*ast.IdentPattern); ok {
					op.Rest = id
				}
			}
		}
		return op
	case "array_pattern":
		ap := &ast.ArrayPattern{Span: sp}
		pending := true
		for i := 0; i < int(n.ChildCount()); i++ {
			ch := n.Child(i)
			switch {
			case ch == nil || ch.Type() == "comment" || ch.Type() == "[" || ch.Type() == "]":
			case ch.Type() == ",":
				if pending {
					ap.Elems = append(ap.Elems, nil)
				}
				pending = true
			case ch.Type() == "rest_pattern":
				return ap
			case ch.IsNamed():
				ap.Elems = append(ap.Elems, c.pattern(ch))
				pending = false
			}
		}
		return ap
	}
	return nil
}

// propertyKey returns the static name of an object key.
func (c *converter) propertyKey(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "property_identifier", "identifier", "shorthand_property_identifier":
		return c.text(n), true
	case "string":
		return c.stringValue(n), true
	case "number":
		if f, ok := parseNumber(c.text(n)); ok {
			return ast.FormatNumber(f), true
		}
	}
	return "", false
}

func (c *converter) expr(n *sitter.Node) ast.Expr {
	if n == nil {
		return nil
	}
	sp := c.span(n)
	switch n.Type() {
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression", "type_assertion":
		// type annotations and parentheses do not change the value
		var inner *sitter.Node
		for _, ch := range c.named(n) {
			if !strings.HasSuffix(ch.Type(), "_type") && ch.Type() != "type_arguments" && ch.Type() != "type_identifier" {
				inner = ch
				break
			}
		}
		if inner == nil {
			return c.opaque(n)
		}
		return c.expr(inner)
	case "identifier":
		if c.text(n) == "undefined" {
			return &ast.UndefinedLit{Span: sp}
		}
		return &ast.Ident{Span: sp, Name: c.text(n)}
	case "undefined":
		return &ast.UndefinedLit{Span: sp}
	case "null":
		return &ast.NullLit{Span: sp}
	case "true", "false":
		return &ast.BoolLit{Span: sp, Value: n.Type() == "true"}
	case "number":
		raw := c.text(n)
		if f, ok := parseNumber(raw); ok {
			return &ast.NumberLit{Span: sp, Value: f, Raw: raw}
		}
	case "string":
		return &ast.StringLit{Span: sp, Value: c.stringValue(n)}
	case "template_string":
		return c.template(n)
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op != nil && arg != nil {
			return &ast.UnaryExpr{Span: sp, Op: c.text(op), X: c.expr(arg)}
		}
	case "binary_expression":
		op := n.ChildByFieldName("operator")
		x, y := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		if op == nil || x == nil || y == nil {
			break
		}
		switch o := c.text(op); o {
		case "&&", "||", "??":
			return &ast.LogicalExpr{Span: sp, Op: o, X: c.expr(x), Y: c.expr(y)}
		default:
			return &ast.BinaryExpr{Span: sp, Op: o, X: c.expr(x), Y: c.expr(y)}
		}
	case "ternary_expression":
		return &ast.ConditionalExpr{
			Span:       sp,
			Test:       c.expr(n.ChildByFieldName("condition")),
			Consequent: c.expr(n.ChildByFieldName("consequence")),
			Alternate:  c.expr(n.ChildByFieldName("alternative")),
		}
	case "object":
		return c.object(n)
	case "array":
		return c.array(n)
	case "member_expression":
		obj, prop := n.ChildByFieldName("object"), n.ChildByFieldName("property")
		if obj == nil || prop == nil || prop.Type() == "private_property_identifier" {
			break
		}
		return &ast.MemberExpr{
			Span:     sp,
			Object:   c.expr(obj),
			Property: &ast.Ident{Span: c.span(prop), Name: c.text(prop)},
			Optional: c.hasToken(n, "?.", "optional_chain"),
		}
	case "subscript_expression":
		obj, idx := n.ChildByFieldName("object"), n.ChildByFieldName("index")
		if obj == nil || idx == nil {
			break
		}
		return &ast.MemberExpr{
			Span:     sp,
			Object:   c.expr(obj),
			Property: c.expr(idx),
			Computed: true,
			Optional: c.hasToken(n, "?.", "optional_chain"),
		}
	case "call_expression":
		fn, args := n.ChildByFieldName("function"), n.ChildByFieldName("arguments")
		if fn == nil || args == nil || args.Type() != "arguments" {
			break
		}
		call := &ast.CallExpr{Span: sp, Callee: c.expr(fn)}
		for _, a := range c.named(args) {
			call.Args = append(call.Args, c.expr(a))
		}
		return call
	case "spread_element":
		return &ast.SpreadExpr{Span: sp, Arg: c.expr(c.first(n))}
	case "arrow_function":
		fe := &ast.FuncExpr{Span: sp}
		if p := n.ChildByFieldName("parameter"); p != nil {
			if pat := c.pattern(p); pat != nil {
				fe.Params = []ast.Pattern{pat}
			}
		} else {
			fe.Params = c.params(n.ChildByFieldName("parameters"))
		}
		fe.Body = c.funcBody(n.ChildByFieldName("body"))
		return fe
	case "function", "function_expression", "generator_function", "method_definition":
		return &ast.FuncExpr{
			Span:   sp,
			Params: c.params(n.ChildByFieldName("parameters")),
			Body:   c.funcBody(n.ChildByFieldName("body")),
		}
	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return c.element(n)
	}
	return c.opaque(n)
}

func (c *converter) opaque(n *sitter.Node) ast.Expr {
	return &ast.Opaque{Span: c.span(n), Kind: n.Type(), Text: c.text(n), Children: c.children(n)}
}

func (c *converter) funcBody(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "statement_block" {
		return c.block(n)
	}
	if e := c.expr(n); e != nil {
		return e
	}
	return nil
}

func (c *converter) hasToken(n *sitter.Node, kinds ...string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch == nil {
			continue
		}
		for _, k := range kinds {
			if ch.Type() == k {
				return true
			}
		}
	}
	return false
}

func (c *converter) object(n *sitter.Node) ast.Expr {
	obj := &ast.ObjectLit{Span: c.span(n)}
	for _, ch := range c.named(n) {
		sp := c.span(ch)
		switch ch.Type() {
		case "pair":
			key := ch.ChildByFieldName("key")
			value := ch.ChildByFieldName("value")
			if key == nil || value == nil {
				return c.opaque(n)
			}
			prop := &ast.Property{Span: sp, Value: c.expr(value)}
			if key.Type() == "computed_property_name" {
				prop.Computed = true
				prop.Key = c.expr(c.first(key))
			} else if name, ok := c.propertyKey(key); ok {
				prop.Key = &ast.StringLit{Span: c.span(key), Value: name}
				if key.Type() == "property_identifier" {
					prop.Key = &ast.Ident{Span: c.span(key), Name: name}
				}
			} else {
				return c.opaque(n)
			}
			obj.Props = append(obj.Props, prop)
		case "shorthand_property_identifier":
			name := c.text(ch)
			obj.Props = append(obj.Props, &ast.Property{
				Span:      sp,
				Key:       &ast.Ident{Span: sp, Name: name},
				Value:     &ast.Ident{Span: sp, Name: name},
				Shorthand: true,
			})
		case "spread_element":
			obj.Props = append(obj.Props, &ast.SpreadProperty{Span: sp, Arg: c.expr(c.first(ch))})
		case "method_definition":
			name, ok := c.propertyKey(ch.ChildByFieldName("name"))
			if !ok {
				return c.opaque(n)
			}
			obj.Props = append(obj.Props, &ast.Property{
				Span:  sp,
				Key:   &ast.Ident{Span: c.span(ch.ChildByFieldName("name")), Name: name},
				Value: c.expr(ch),
			})
		default:
			return c.opaque(n)
		}
	}
	return obj
}

func (c *converter) array(n *sitter.Node) ast.Expr {
	arr := &ast.ArrayLit{Span: c.span(n)}
	pending := true
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		switch {
		case ch == nil || ch.Type() == "comment" || ch.Type() == "[" || ch.Type() == "]":
		case ch.Type() == ",":
			if pending {
				// holes read as undefined
				arr.Elems = append(arr.Elems, &ast.UndefinedLit{})
			}
			pending = true
		case ch.IsNamed():
			arr.Elems = append(arr.Elems, c.expr(ch))
			pending = false
		}
	}
	return arr
}

func (c *converter) template(n *sitter.Node) ast.Expr {
	tl := &ast.TemplateLit{Span: c.span(n)}
	var (
		sb     strings.Builder
		cursor = int(n.StartByte()) + 1
	)
	for _, ch := range c.named(n) {
		switch ch.Type() {
		case "escape_sequence":
			sb.Write(c.src[cursor:ch.StartByte()])
			sb.WriteString(unescape(c.text(ch)))
			cursor = int(ch.EndByte())
		case "template_substitution":
			sb.Write(c.src[cursor:ch.StartByte()])
			tl.Quasis = append(tl.Quasis, normalizeNewlines(sb.String()))
			sb.Reset()
			tl.Exprs = append(tl.Exprs, c.expr(c.first(ch)))
			cursor = int(ch.EndByte())
		}
	}
	if end := int(n.EndByte()) - 1; end > cursor {
		sb.Write(c.src[cursor:end])
	}
	tl.Quasis = append(tl.Quasis, normalizeNewlines(sb.String()))
	return tl
}

// stringValue decodes a quoted string literal. Text between escape sequences
// is copied as is, so it works whether or not the grammar emits fragments.
func (c *converter) stringValue(n *sitter.Node) string {
	start, end := int(n.StartByte())+1, int(n.EndByte())-1
	if end < start {
		return ""
	}
	var sb strings.Builder
	cursor := start
	for _, ch := range c.named(n) {
		if ch.Type() != "escape_sequence" {
			continue
		}
		sb.Write(c.src[cursor:ch.StartByte()])
		sb.WriteString(unescape(c.text(ch)))
		cursor = int(ch.EndByte())
	}
	if end > cursor {
		sb.Write(c.src[cursor:end])
	}
	return sb.String()
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// unescape decodes a single JavaScript escape sequence.
func unescape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(seq) == 2 {
			return "\x00"
		}
	case '\r', '\n':
		return ""
	case 'x':
		if r, err := strconv.ParseUint(seq[2:], 16, 32); err == nil {
			return string(rune(r))
		}
	case 'u':
		hex := strings.TrimSuffix(strings.TrimPrefix(seq[2:], "{"), "}")
		if r, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return string(rune(r))
		}
	}
	if seq[1:] == "\u2028" || seq[1:] == "\u2029" {
		return ""
	}
	return seq[1:]
}

// parseNumber handles decimal, hex, octal and binary literals with numeric
// separators. BigInt literals are not numbers.
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, "_", "")
	if strings.HasSuffix(s, "n") {
		return 0, false
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			u, err := strconv.ParseUint(s[2:], base, 64)
			return float64(u), err == nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
