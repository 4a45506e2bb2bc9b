package jsx

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/extract"
)

type edit struct {
	start, end int
	text       string
}

// Render returns src with the tags of every replaced element rewritten.
// Everything outside opening and closing tags is kept byte for byte.
// Elements nested in an attribute of another replaced element are copied
// with that attribute and not rewritten.
func Render(src []byte, reps []extract.Replacement) ([]byte, error) {
	p := &ast.Printer{Source: src}

	edits := make([]edit, 0, 2*len(reps))
	for _, r := range reps {
		if r.Original == nil || r.Element == nil {
			continue
		}
		edits = append(edits, edit{r.Original.OpenSpan.Start, r.Original.OpenSpan.End, p.OpenTag(r.Element)})
		if !r.Original.SelfClosing {
			edits = append(edits, edit{r.Original.CloseSpan.Start, r.Original.CloseSpan.End, p.CloseTag(r.Element)})
		}
	}
	slices.SortStableFunc(edits, func(a, b edit) int {
		return a.start - b.start
	})

	var (
		out    bytes.Buffer
		cursor int
	)
	out.Grow(len(src))
	for _, e := range edits {
		if e.start < cursor {
			continue
		}
		if e.end <= e.start || e.end > len(src) {
			return nil, fmt.Errorf("replacement span %d:%d is outside of source", e.start, e.end)
		}
		out.Write(src[cursor:e.start])
		out.WriteString(e.text)
		cursor = e.end
	}
	out.Write(src[cursor:])
	return out.Bytes(), nil
}

// PrependImport adds a side effect import of path at the top of src, after a
// leading hashbang and directive prologue ("use client") if present.
func PrependImport(src []byte, path string) []byte {
	line := fmt.Sprintf("import %q;\n", path)
	at := prologueEnd(src)
	out := make([]byte, 0, len(src)+len(line))
	out = append(out, src[:at]...)
	out = append(out, line...)
	return append(out, src[at:]...)
}

func prologueEnd(src []byte) int {
	pos := 0
	if bytes.HasPrefix(src, []byte("#!")) {
		if i := bytes.IndexByte(src, '\n'); i >= 0 {
			pos = i + 1
		} else {
			return len(src)
		}
	}
	for {
		rest := src[pos:]
		trimmed := bytes.TrimLeft(rest, " \t\r\n")
		if len(trimmed) == 0 || (trimmed[0] != '"' && trimmed[0] != '\'') {
			return pos
		}
		end := bytes.IndexByte(trimmed[1:], trimmed[0])
		if end < 0 {
			return pos
		}
		after := trimmed[end+2:]
		nl := bytes.IndexByte(after, '\n')
		if nl < 0 {
			return len(src)
		}
		if stmt := bytes.TrimSpace(after[:nl]); len(stmt) != 0 && string(stmt) != ";" {
			return pos
		}
		pos = len(src) - len(after) + nl + 1
	}
}
