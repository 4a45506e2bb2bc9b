// Package scope tracks lexical scopes of a program and resolves the subset of
// bindings whose values are statically known.
package scope

import (
	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

// Kind of a lexical scope.
type Kind int

const (
	KindModule Kind = iota
	KindFunction
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindFunction:
		return "function"
	case KindBlock:
		return "block"
	}
	return "unknown"
}

// BindingKind tells how a name was introduced.
type BindingKind int

const (
	BindingConst BindingKind = iota
	BindingLet
	BindingVar
	BindingImport
	BindingRequire
	BindingParam
	BindingFunction
	BindingClass
)

// Step is one level of destructuring applied to an initializer value.
type Step struct {
	Key     string   // property name or array index
	Default ast.Expr // used when the value at Key is undefined
	Rest    bool     // object rest: everything except Exclude
	Exclude []string
}

// ImportRef points to a value exported by another module.
type ImportRef struct {
	Source string // module specifier as written
	Export string // "default", "*" or exported name
}

// Binding is a single name introduced in a scope.
type Binding struct {
	Name   string
	Kind   BindingKind
	Span   ast.Span // declarator or import specifier
	Init   ast.Expr // initializer for const/let/var
	Path   []Step   // destructuring path into Init or the imported value
	Import *ImportRef
	Scope  *Scope
}

// Key identifies the binding within a unit.
func (b *Binding) Key() string {
	return b.Name + "@" + b.Span.Key()
}

// Scope is a lexical scope with its bindings in declaration order.
type Scope struct {
	Parent   *Scope
	Kind     Kind
	bindings []*Binding
	byName   map[string]*Binding
}

// New returns an empty scope nested in parent.
func New(parent *Scope, kind Kind) *Scope {
	return &Scope{Parent: parent, Kind: kind, byName: map[string]*Binding{}}
}

// Declare adds b to the scope. Redeclaring a name replaces the previous
// binding but keeps its position.
func (s *Scope) Declare(b *Binding) {
	b.Scope = s
	if old, ok := s.byName[b.Name]; ok {
		for i := range s.bindings {
			if s.bindings[i] == old {
				s.bindings[i] = b
			}
		}
	} else {
		s.bindings = append(s.bindings, b)
	}
	s.byName[b.Name] = b
}

// Bindings returns bindings declared directly in s.
func (s *Scope) Bindings() []*Binding {
	return s.bindings
}

// Own returns a binding declared directly in s.
func (s *Scope) Own(name string) *Binding {
	return s.byName[name]
}

// Lookup finds the innermost binding visible from s.
func (s *Scope) Lookup(name string) *Binding {
	for c := s; c != nil; c = c.Parent {
		if b, ok := c.byName[name]; ok {
			return b
		}
	}
	return nil
}

// Chain returns scopes from the outermost to s.
func (s *Scope) Chain() []*Scope {
	var out []*Scope
	for c := s; c != nil; c = c.Parent {
		out = append(out, c)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// function returns the nearest function or module scope.
func (s *Scope) function() *Scope {
	c := s
	for c.Kind == KindBlock && c.Parent != nil {
		c = c.Parent
	}
	return c
}
