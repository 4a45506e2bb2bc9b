package css

import (
	"fmt"
	"io"
	"strings"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stylesheet is the CSS output of one or more units.
type Stylesheet struct {
	Banner  string   // Optional comment written first
	Imports []string // @import URLs
	Rules   []Rule   // Rules in emission order
}

// NewStylesheet builds a stylesheet from emitted rules.
func NewStylesheet(rules []Rule) *Stylesheet {
	return &Stylesheet{Rules: append([]Rule(nil), rules...)}
}

// Empty reports whether there is nothing to write.
func (s *Stylesheet) Empty() bool {
	return len(s.Imports) == 0 && len(s.Rules) == 0
}

// WriteTo writes the stylesheet to w, one rule per line, implementing
// io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}

	if s.Banner != "" {
		if err := write("/* %s */\n", strings.ReplaceAll(s.Banner, "*/", "* /")); err != nil {
			return total, err
		}
	}
	for _, u := range s.Imports {
		if err := write("@import url(\"%s\");\n", cssEscapeDoubleQuoted(u)); err != nil {
			return total, err
		}
	}
	for _, r := range s.Rules {
		if err := write("%s\n", r.Text); err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}
