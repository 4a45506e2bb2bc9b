package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ErrUnsafeValue is returned for values or rules that would not survive
// being written into a stylesheet as a single declaration.
var ErrUnsafeValue = errors.New("unsafe css")

// CheckValue tokenizes a declaration value and rejects anything that could
// terminate the declaration or the block it lives in.
func CheckValue(value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty value", ErrUnsafeValue)
	}
	lexer := css.NewLexer(parse.NewInputString(value))
	depth := 0
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && err != io.EOF {
				return fmt.Errorf("%w: %q: %w", ErrUnsafeValue, value, err)
			}
			if depth != 0 {
				return fmt.Errorf("%w: %q: unbalanced parentheses", ErrUnsafeValue, value)
			}
			return nil
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken,
			css.BadStringToken, css.BadURLToken, css.CDOToken, css.CDCToken:
			return fmt.Errorf("%w: %q: unexpected %s", ErrUnsafeValue, value, string(data))
		case css.StringToken:
			// The lexer accepts strings cut off by the end of input.
			if len(data) < 2 || data[len(data)-1] != data[0] {
				return fmt.Errorf("%w: %q: unterminated string", ErrUnsafeValue, value)
			}
		case css.FunctionToken, css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: %q: unbalanced parentheses", ErrUnsafeValue, value)
			}
		}
	}
}

// CheckRule parses generated rule text and verifies it is a single well
// formed top-level block containing declarations only.
func CheckRule(text string) error {
	// The parser treats @container bodies as opaque tokens, check the inner
	// rule on its own.
	if strings.HasPrefix(text, "@container") {
		open, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
		if open < 0 || end < open {
			return fmt.Errorf("%w: unbalanced rule %q", ErrUnsafeValue, text)
		}
		return CheckRule(strings.TrimSpace(text[open+1 : end]))
	}
	parser := css.NewParser(parse.NewInputString(text), false)
	open, top, decls := 0, 0, 0
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err != io.EOF {
				return fmt.Errorf("%w: %w", ErrUnsafeValue, err)
			}
			if open != 0 || top != 1 {
				return fmt.Errorf("%w: unbalanced rule %q", ErrUnsafeValue, text)
			}
			if decls == 0 {
				return fmt.Errorf("%w: no declarations in %q", ErrUnsafeValue, text)
			}
			return nil
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			if open == 0 {
				top++
			}
			open++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			open--
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls++
		case css.CommentGrammar:
		default:
			return fmt.Errorf("%w: unexpected %s %q in %q", ErrUnsafeValue, gt, string(data), text)
		}
	}
}
