package evaluate

import (
	"math"
	"strconv"
	"unicode/utf16"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

// Namespace maps identifiers to statically known values.
type Namespace map[string]value.Value

// Sandbox evaluates side-effect free expressions over a Namespace. It never
// calls functions. Its Eval method is a Fallback.
type Sandbox struct {
	ns   Namespace
	next Fallback
}

// NewSandbox returns a sandbox over ns. next, when not nil, is consulted for
// anything the sandbox cannot evaluate.
func NewSandbox(ns Namespace, next Fallback) *Sandbox {
	if ns == nil {
		ns = Namespace{}
	}
	return &Sandbox{ns: ns, next: next}
}

// Eval evaluates e.
func (s *Sandbox) Eval(e ast.Expr) (value.Value, error) {
	v, handled, err := s.eval(e)
	if handled {
		return v, err
	}
	if v, handled, err = fold(e, s.Eval); handled {
		return v, err
	}
	if s.next != nil {
		return callFallback(e, s.next)
	}
	return nil, unevaluable(e, "not supported by sandbox")
}

func (s *Sandbox) sub(e ast.Expr) (value.Value, error) {
	return Evaluate(e, s.Eval)
}

func (s *Sandbox) eval(e ast.Expr) (value.Value, bool, error) {
	switch e := e.(type) {
	case *ast.Ident:
		if v, ok := s.ns[e.Name]; ok {
			return v, true, nil
		}
		switch e.Name {
		case "undefined":
			return value.Undefined, true, nil
		case "NaN":
			return math.NaN(), true, nil
		case "Infinity":
			return math.Inf(1), true, nil
		}
		return nil, false, nil

	case *ast.JSXExprContainer:
		v, err := s.sub(e.X)
		return v, true, err

	case *ast.UnaryExpr:
		if e.Op == "-" {
			return nil, false, nil
		}
		x, err := s.sub(e.X)
		if err != nil {
			return nil, true, err
		}
		switch e.Op {
		case "!":
			return !value.Truthy(x), true, nil
		case "+":
			return value.ToNumber(x), true, nil
		case "typeof":
			return value.TypeOf(x), true, nil
		case "void":
			return value.Undefined, true, nil
		}
		return nil, true, unevaluable(e, "operator "+e.Op)

	case *ast.BinaryExpr:
		switch e.Op {
		case "+", "-", "*", "/":
			return nil, false, nil
		}
		x, err := s.sub(e.X)
		if err != nil {
			return nil, true, err
		}
		y, err := s.sub(e.Y)
		if err != nil {
			return nil, true, err
		}
		v, ok := compare(e.Op, x, y)
		if !ok {
			return nil, true, unevaluable(e, "operator "+e.Op)
		}
		return v, true, nil

	case *ast.LogicalExpr:
		x, err := s.sub(e.X)
		if err != nil {
			return nil, true, err
		}
		switch e.Op {
		case "&&":
			if !value.Truthy(x) {
				return x, true, nil
			}
		case "||":
			if value.Truthy(x) {
				return x, true, nil
			}
		case "??":
			if !value.IsNullish(x) {
				return x, true, nil
			}
		default:
			return nil, true, unevaluable(e, "operator "+e.Op)
		}
		y, err := s.sub(e.Y)
		return y, true, err

	case *ast.ConditionalExpr:
		t, err := s.sub(e.Test)
		if err != nil {
			return nil, true, err
		}
		if value.Truthy(t) {
			v, err := s.sub(e.Consequent)
			return v, true, err
		}
		v, err := s.sub(e.Alternate)
		return v, true, err

	case *ast.ArrayLit:
		arr := make(value.Array, 0, len(e.Elems))
		for _, el := range e.Elems {
			if el == nil {
				arr = append(arr, value.Undefined)
				continue
			}
			if sp, ok := el.(*ast.SpreadExpr); ok {
				v, err := s.sub(sp.Arg)
				if err != nil {
					return nil, true, err
				}
				src, ok := v.(value.Array)
				if !ok {
					return nil, true, unevaluable(sp, "spread of non-array")
				}
				arr = append(arr, src...)
				continue
			}
			v, err := s.sub(el)
			if err != nil {
				return nil, true, err
			}
			arr = append(arr, v)
		}
		return arr, true, nil

	case *ast.MemberExpr:
		v, err := s.member(e)
		return v, true, err
	}
	return nil, false, nil
}

func (s *Sandbox) member(e *ast.MemberExpr) (value.Value, error) {
	obj, err := s.sub(e.Object)
	if err != nil {
		return nil, err
	}
	if value.IsNullish(obj) {
		if e.Optional {
			return value.Undefined, nil
		}
		return nil, unevaluable(e, "property access on "+value.ToString(obj))
	}

	var key string
	if !e.Computed {
		id, ok := e.Property.(*ast.Ident)
		if !ok {
			return nil, unevaluable(e, "unsupported property")
		}
		key = id.Name
	} else {
		k, err := s.sub(e.Property)
		if err != nil {
			return nil, err
		}
		key = value.ToString(k)
	}

	switch o := obj.(type) {
	case *value.Object:
		if v, ok := o.Get(key); ok {
			return v, nil
		}
		return value.Undefined, nil
	case value.Array:
		if key == "length" {
			return float64(len(o)), nil
		}
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(o) {
			return o[i], nil
		}
		return value.Undefined, nil
	case string:
		// JavaScript strings are sequences of UTF-16 code units
		units := utf16.Encode([]rune(o))
		if key == "length" {
			return float64(len(units)), nil
		}
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(units) {
			return string(utf16.Decode(units[i : i+1])), nil
		}
		return value.Undefined, nil
	}
	return nil, unevaluable(e, "property access on "+value.TypeOf(obj))
}

func compare(op string, x, y value.Value) (value.Value, bool) {
	switch op {
	case "===":
		return value.StrictEqual(x, y), true
	case "!==":
		return !value.StrictEqual(x, y), true
	case "==":
		return value.LooseEqual(x, y), true
	case "!=":
		return !value.LooseEqual(x, y), true
	case "%":
		return math.Mod(value.ToNumber(x), value.ToNumber(y)), true
	case "**":
		return math.Pow(value.ToNumber(x), value.ToNumber(y)), true
	case "<", ">", "<=", ">=":
	default:
		return nil, false
	}

	xs, xok := x.(string)
	ys, yok := y.(string)
	if xok && yok {
		switch op {
		case "<":
			return xs < ys, true
		case ">":
			return xs > ys, true
		case "<=":
			return xs <= ys, true
		default:
			return xs >= ys, true
		}
	}
	a, b := value.ToNumber(x), value.ToNumber(y)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false, true
	}
	switch op {
	case "<":
		return a < b, true
	case ">":
		return a > b, true
	case "<=":
		return a <= b, true
	default:
		return a >= b, true
	}
}
