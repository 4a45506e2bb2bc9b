// Package value models the results of static evaluation.
//
// A Value is one of: nil (JavaScript null), Undefined, bool, float64, string,
// Array or *Object. Objects keep insertion order because style object key
// order decides CSS rule order.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v3"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
)

// Value is any statically known JavaScript value.
type Value = any

type undefinedType struct{}

func (undefinedType) String() string { return "undefined" }

// Undefined is the JavaScript undefined value.
var Undefined Value = undefinedType{}

// Array is a JavaScript array.
type Array []Value

// Object is an insertion-ordered JavaScript object with string keys.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{m: orderedmap.NewOrderedMap[string, Value]()}
}

// ObjectOf builds an object from alternating key/value pairs. It is meant
// for tests and static tables.
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

// Set assigns key. Reassigning an existing key keeps its position, the same
// way JavaScript object spread does.
func (o *Object) Set(key string, v Value) {
	o.m.Set(key, v)
}

// Get returns the value for key.
func (o *Object) Get(key string) (Value, bool) {
	return o.m.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	return o.m.Has(key)
}

// Len returns number of keys.
func (o *Object) Len() int {
	return o.m.Len()
}

// Keys returns keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	for k := range o.m.Keys() {
		keys = append(keys, k)
	}
	return keys
}

// Clone returns a shallow copy.
func (o *Object) Clone() *Object {
	c := NewObject()
	for k, v := range o.m.AllFromFront() {
		c.Set(k, v)
	}
	return c
}

// Merge copies every key of src into o, later keys overriding.
func (o *Object) Merge(src *Object) {
	for k, v := range src.m.AllFromFront() {
		o.Set(k, v)
	}
}

// IsUndefined reports whether v is undefined.
func IsUndefined(v Value) bool {
	_, ok := v.(undefinedType)
	return ok
}

// IsNullish reports whether v is null or undefined.
func IsNullish(v Value) bool {
	return v == nil || IsUndefined(v)
}

// IsPrimitive reports whether v is a string, number, boolean, null or undefined.
func IsPrimitive(v Value) bool {
	switch v.(type) {
	case nil, undefinedType, bool, float64, string:
		return true
	}
	return false
}

// Truthy implements JavaScript ToBoolean.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, undefinedType:
		return false
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	}
	return true
}

// ToNumber implements JavaScript ToNumber for primitives. Objects and
// arrays yield NaN.
func ToNumber(v Value) float64 {
	switch v := v.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case float64:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return math.NaN()
	}
	return math.NaN()
}

// ToString implements JavaScript ToString for the values the extractor
// deals with.
func ToString(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case undefinedType:
		return "undefined"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return ast.FormatNumber(v)
	case string:
		return v
	case Array:
		parts := make([]string, len(v))
		for i, e := range v {
			if !IsNullish(e) {
				parts[i] = ToString(e)
			}
		}
		return strings.Join(parts, ",")
	case *Object:
		return "[object Object]"
	}
	return fmt.Sprint(v)
}

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch v.(type) {
	case nil, Array, *Object:
		return "object"
	case undefinedType:
		return "undefined"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	}
	return "object"
}

// StrictEqual implements ===. Objects compare by identity.
func StrictEqual(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case undefinedType:
		return IsUndefined(b)
	case bool:
		bb, ok := b.(bool)
		return ok && a == bb
	case float64:
		bf, ok := b.(float64)
		return ok && a == bf
	case string:
		bs, ok := b.(string)
		return ok && a == bs
	case *Object:
		bo, ok := b.(*Object)
		return ok && a == bo
	}
	return false
}

// LooseEqual implements == for primitives.
func LooseEqual(a, b Value) bool {
	if IsNullish(a) || IsNullish(b) {
		return IsNullish(a) && IsNullish(b)
	}
	if TypeOf(a) == TypeOf(b) {
		return StrictEqual(a, b)
	}
	if IsPrimitive(a) && IsPrimitive(b) {
		return ToNumber(a) == ToNumber(b)
	}
	return false
}

// Serialize renders v deterministically. It is used for cache keys, so two
// values serialize identically exactly when they are structurally equal.
func Serialize(v Value) string {
	var sb strings.Builder
	serialize(&sb, v)
	return sb.String()
}

func serialize(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case string:
		sb.WriteString(strconv.Quote(v))
	case Array:
		sb.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			serialize(sb, e)
		}
		sb.WriteByte(']')
	case *Object:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			e, _ := v.Get(k)
			serialize(sb, e)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(ToString(v))
	}
}

// ToExpr converts a primitive value back into a literal expression.
func ToExpr(v Value) (ast.Expr, bool) {
	switch v := v.(type) {
	case nil:
		return &ast.NullLit{}, true
	case undefinedType:
		return &ast.UndefinedLit{}, true
	case bool:
		return &ast.BoolLit{Value: v}, true
	case float64:
		return &ast.NumberLit{Value: v, Raw: ast.FormatNumber(v)}, true
	case string:
		return &ast.StringLit{Value: v}, true
	}
	return nil, false
}
