// Package jsx turns JavaScript and TypeScript sources into the syntax tree the
// extractor works on and writes rewritten elements back into the source.
package jsx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

// ErrSyntax is returned for sources tree-sitter could not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Parser produces ast.Program from source text. It is safe for concurrent use,
// every call gets its own tree-sitter parser.
type Parser struct {
	log *zap.Logger
}

// NewParser returns a parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("jsx")}
}

// language selects grammar by file extension: TSX for .tsx, TypeScript for
// other TypeScript extensions and JavaScript (with JSX) otherwise.
func language(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Parse parses src, which must be UTF-8, as the unit at path.
func (p *Parser) Parse(ctx context.Context, src []byte, path string) (*ast.Program, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language(path))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: %s: empty tree", ErrSyntax, path)
	}
	if root.HasError() {
		if bad := firstError(root); bad != nil {
			pt := bad.StartPoint()
			return nil, fmt.Errorf("%w: %s:%d:%d: unexpected %q", ErrSyntax, path, pt.Row+1, pt.Column+1, excerpt(bad.Content(src)))
		}
		return nil, fmt.Errorf("%w: %s", ErrSyntax, path)
	}

	c := &converter{src: src}
	prog := &ast.Program{Span: c.span(root), Path: path}
	for _, n := range c.named(root) {
		if st := c.stmt(n); st != nil {
			prog.Body = append(prog.Body, st)
		}
	}
	p.log.Debug("Parsed unit", zap.String("path", path), zap.Int("statements", len(prog.Body)))
	return prog, nil
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch == nil || !(ch.HasError() || ch.IsMissing()) {
			continue
		}
		if bad := firstError(ch); bad != nil {
			return bad
		}
	}
	return nil
}

func excerpt(s string) string {
	const limit = 32
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
