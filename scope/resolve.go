package scope

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/evaluate"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

// Namespace maps names visible at a point to their static values.
type Namespace = evaluate.Namespace

// Modules holds already evaluated module exports keyed by absolute path.
// Bare specifiers ("jsxstyle", "@acme/theme") are keyed as written.
type Modules map[string]value.Value

var moduleExtensions = []string{"", ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"}

// Resolve finds the exports of source imported from the unit at unitPath.
func (m Modules) Resolve(source, unitPath string) (value.Value, string, bool) {
	if len(m) == 0 {
		return nil, "", false
	}
	if !isRelative(source) {
		v, ok := m[source]
		return v, source, ok
	}
	base := source
	if !filepath.IsAbs(source) {
		base = filepath.Join(filepath.Dir(unitPath), filepath.FromSlash(source))
	}
	for _, ext := range moduleExtensions {
		if v, ok := m[base+ext]; ok {
			return v, base + ext, true
		}
	}
	for _, ext := range moduleExtensions[1:] {
		p := filepath.Join(base, "index"+ext)
		if v, ok := m[p]; ok {
			return v, p, true
		}
	}
	return nil, "", false
}

func isRelative(source string) bool {
	return strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") ||
		source == "." || source == ".." || strings.HasPrefix(source, "/")
}

type cached struct {
	v  value.Value
	ok bool
}

// BindingCache memoizes binding values for one unit. Entries are written
// once and never replaced; failures are remembered too.
type BindingCache struct {
	entries map[string]cached
}

// NewBindingCache returns an empty cache.
func NewBindingCache() *BindingCache {
	return &BindingCache{entries: map[string]cached{}}
}

// Get returns the cached value for key. known is false when the key was never
// stored; ok is false when evaluation failed.
func (c *BindingCache) Get(key string) (v value.Value, ok, known bool) {
	e, known := c.entries[key]
	return e.v, e.ok, known
}

// Put stores a value unless key is already present.
func (c *BindingCache) Put(key string, v value.Value, ok bool) {
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = cached{v: v, ok: ok}
}

// Len returns number of cached entries.
func (c *BindingCache) Len() int {
	return len(c.entries)
}

// ResolveBindings builds the namespace visible at s. Bindings are applied
// outermost first so inner declarations shadow outer ones; names that are not
// statically known are absent. hook, when not nil, is chained after the
// sandbox when evaluating initializers.
func ResolveBindings(s *Scope, modules Modules, unitPath string, cache *BindingCache, hook evaluate.Fallback) Namespace {
	if cache == nil {
		cache = NewBindingCache()
	}
	ns := Namespace{}
	for _, sc := range s.Chain() {
		for _, b := range sc.Bindings() {
			delete(ns, b.Name)
			var (
				v  value.Value
				ok bool
			)
			switch b.Kind {
			case BindingImport, BindingRequire:
				v, ok = resolveImport(b, modules, unitPath)
			case BindingConst:
				v, ok = resolveConst(b, ns, cache, hook)
			}
			if ok {
				ns[b.Name] = v
			}
		}
	}
	return ns
}

func resolveImport(b *Binding, modules Modules, unitPath string) (value.Value, bool) {
	exports, _, found := modules.Resolve(b.Import.Source, unitPath)
	if !found {
		return nil, false
	}
	var v value.Value
	switch b.Import.Export {
	case "*":
		v = exports
	case "default":
		v = exports
		if obj, ok := exports.(*value.Object); ok {
			if d, ok := obj.Get("default"); ok {
				v = d
			}
		}
	default:
		obj, ok := exports.(*value.Object)
		if !ok {
			return nil, false
		}
		if v, ok = obj.Get(b.Import.Export); !ok {
			return nil, false
		}
	}
	return follow(v, b.Path, nil)
}

func resolveConst(b *Binding, ns Namespace, cache *BindingCache, hook evaluate.Fallback) (value.Value, bool) {
	// Generated declarations carry no span and cannot be keyed.
	store := b.Span != (ast.Span{})
	if store {
		if v, ok, known := cache.Get(b.Key()); known {
			return v, ok
		}
	}
	v, ok := evaluateConst(b, ns, cache, hook, store)
	if store {
		cache.Put(b.Key(), v, ok)
	}
	return v, ok
}

func evaluateConst(b *Binding, ns Namespace, cache *BindingCache, hook evaluate.Fallback, store bool) (value.Value, bool) {
	if b.Init == nil {
		return nil, false
	}
	if _, isObject := b.Init.(*ast.ObjectLit); isObject && b.Scope.Kind != KindModule {
		return nil, false
	}

	sb := evaluate.NewSandbox(ns, hook)
	// Destructured names share one declarator and evaluate its initializer once.
	initKey := "init@" + b.Span.Key()
	init, ok, known := cache.Get(initKey)
	if !store || !known {
		var err error
		init, err = evaluate.Evaluate(b.Init, sb.Eval)
		ok = err == nil
		if store {
			cache.Put(initKey, init, ok)
		}
	}
	if !ok {
		return nil, false
	}
	return follow(init, b.Path, sb.Eval)
}

// follow applies destructuring steps to v.
func follow(v value.Value, path []Step, fallback evaluate.Fallback) (value.Value, bool) {
	for _, st := range path {
		if st.Rest {
			obj, ok := v.(*value.Object)
			if !ok {
				return nil, false
			}
			rest := value.NewObject()
			for _, k := range obj.Keys() {
				if !slices.Contains(st.Exclude, k) {
					e, _ := obj.Get(k)
					rest.Set(k, e)
				}
			}
			v = rest
			continue
		}

		var next value.Value = value.Undefined
		switch c := v.(type) {
		case *value.Object:
			if e, ok := c.Get(st.Key); ok {
				next = e
			}
		case value.Array:
			if i, err := strconv.Atoi(st.Key); err == nil && i >= 0 && i < len(c) {
				next = c[i]
			}
		default:
			return nil, false
		}
		if value.IsUndefined(next) && st.Default != nil {
			d, err := evaluate.Evaluate(st.Default, fallback)
			if err != nil {
				return nil, false
			}
			next = d
		}
		v = next
	}
	return v, true
}
