// Package props merges JSX attribute lists into a single ordered map,
// honoring spread override order.
package props

import (
	"github.com/elliotchance/orderedmap/v3"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/evaluate"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

// Attempt evaluates a spread argument. Any error leaves the spread dynamic.
type Attempt func(ast.Expr) (value.Value, error)

// Entry is a single flattened attribute.
type Entry struct {
	Name     string
	Resolved bool
	Value    value.Value // set when Resolved
	Node     ast.Expr    // set when not Resolved; nil for bare attributes
	Attr     ast.JSXAttr // attribute the entry came from
}

// Flattened is the result of Flatten.
type Flattened struct {
	// Inline holds attributes that must stay on the element untouched: an
	// unresolved spread may override any of them at runtime.
	Inline []ast.JSXAttr
	// LastUnresolvedSpread is the index of the last spread that could not be
	// evaluated, -1 when there is none.
	LastUnresolvedSpread int
	entries              *orderedmap.OrderedMap[string, Entry]
}

// Get returns the entry for name.
func (f *Flattened) Get(name string) (Entry, bool) {
	return f.entries.Get(name)
}

// Delete drops name.
func (f *Flattened) Delete(name string) {
	f.entries.Delete(name)
}

// Len returns number of flattened entries.
func (f *Flattened) Len() int {
	return f.entries.Len()
}

// Entries returns flattened entries in order.
func (f *Flattened) Entries() []Entry {
	out := make([]Entry, 0, f.entries.Len())
	for e := range f.entries.Values() {
		out = append(out, e)
	}
	return out
}

// Flatten merges attrs. Spreads are evaluated with attempt, named attributes
// with literal values are resolved directly.
func Flatten(attrs []ast.JSXAttr, attempt Attempt) *Flattened {
	spreads := make([]*value.Object, len(attrs))
	last := -1
	for i, a := range attrs {
		sp, ok := a.(*ast.JSXSpreadAttr)
		if !ok {
			continue
		}
		obj, ok := evaluateSpread(sp.Arg, attempt)
		if !ok {
			last = i
			continue
		}
		spreads[i] = obj
	}

	f := &Flattened{
		LastUnresolvedSpread: last,
		entries:              orderedmap.NewOrderedMap[string, Entry](),
	}
	if last >= 0 {
		f.Inline = append(f.Inline, attrs[:last+1]...)
	}
	for i := last + 1; i < len(attrs); i++ {
		switch a := attrs[i].(type) {
		case *ast.JSXSpreadAttr:
			obj := spreads[i]
			if obj == nil {
				continue
			}
			for _, k := range obj.Keys() {
				v, _ := obj.Get(k)
				f.entries.Set(k, Entry{Name: k, Resolved: true, Value: v, Attr: a})
			}
		case *ast.JSXNamedAttr:
			f.entries.Set(a.Name, named(a))
		}
	}
	return f
}

func evaluateSpread(arg ast.Expr, attempt Attempt) (*value.Object, bool) {
	if attempt == nil {
		return nil, false
	}
	v, err := attempt(arg)
	if err != nil {
		return nil, false
	}
	switch v := v.(type) {
	case *value.Object:
		return v, true
	case nil:
		return value.NewObject(), true
	}
	if value.IsUndefined(v) {
		return value.NewObject(), true
	}
	return nil, false
}

func named(a *ast.JSXNamedAttr) Entry {
	e := Entry{Name: a.Name, Attr: a}
	if a.Value == nil {
		e.Resolved, e.Value = true, true
		return e
	}
	if ast.IsLiteral(a.Value) {
		if v, err := evaluate.Evaluate(a.Value, nil); err == nil {
			e.Resolved, e.Value = true, v
			return e
		}
	}
	e.Node = a.Value
	return e
}
