// Package evaluate folds constant expressions into values.
//
// Evaluate understands a deliberately small grammar: literals, object
// literals, template literals, unary minus and arithmetic. Everything else is
// handed to a Fallback, normally a Sandbox built over the names visible at the
// element being processed.
package evaluate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

// ErrUnevaluable is returned whenever an expression cannot be folded. It is
// an expected outcome: callers treat it as "leave this dynamic".
var ErrUnevaluable = errors.New("unevaluable expression")

// Fallback evaluates forms the folder does not understand.
type Fallback func(ast.Expr) (value.Value, error)

// Evaluate folds e. When e, or any part of it, is outside the supported
// grammar it is passed to fallback; with no fallback the result is an error
// wrapping ErrUnevaluable.
func Evaluate(e ast.Expr, fallback Fallback) (value.Value, error) {
	v, handled, err := fold(e, fallback)
	if handled {
		return v, err
	}
	return callFallback(e, fallback)
}

func callFallback(e ast.Expr, fallback Fallback) (value.Value, error) {
	if fallback == nil {
		return nil, unevaluable(e, "no fallback")
	}
	v, err := fallback(e)
	if err != nil {
		if errors.Is(err, ErrUnevaluable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnevaluable, err)
	}
	return v, nil
}

func unevaluable(e ast.Expr, reason string) error {
	if e == nil {
		return fmt.Errorf("%w: %s", ErrUnevaluable, reason)
	}
	return fmt.Errorf("%w: %T at %s: %s", ErrUnevaluable, e, e.Pos(), reason)
}

// fold evaluates the forms the folder owns. handled is false for everything
// that must go to the fallback.
func fold(e ast.Expr, fallback Fallback) (v value.Value, handled bool, err error) {
	switch e := e.(type) {
	case *ast.NullLit:
		return nil, true, nil
	case *ast.UndefinedLit:
		return value.Undefined, true, nil
	case *ast.BoolLit:
		return e.Value, true, nil
	case *ast.NumberLit:
		return e.Value, true, nil
	case *ast.StringLit:
		return e.Value, true, nil
	case *ast.TemplateLit:
		v, err := foldTemplate(e, fallback)
		return v, true, err
	case *ast.ObjectLit:
		v, err := foldObject(e, fallback)
		return v, true, err
	case *ast.UnaryExpr:
		if e.Op != "-" {
			return nil, false, nil
		}
		x, err := Evaluate(e.X, fallback)
		if err != nil {
			return nil, true, err
		}
		if x == nil {
			return nil, true, nil
		}
		return -value.ToNumber(x), true, nil
	case *ast.BinaryExpr:
		switch e.Op {
		case "+", "-", "*", "/":
		default:
			return nil, false, nil
		}
		x, err := Evaluate(e.X, fallback)
		if err != nil {
			return nil, true, err
		}
		y, err := Evaluate(e.Y, fallback)
		if err != nil {
			return nil, true, err
		}
		return Arithmetic(e.Op, x, y), true, nil
	}
	return nil, false, nil
}

// Arithmetic applies one of + - * / with JavaScript coercion rules.
func Arithmetic(op string, x, y value.Value) value.Value {
	if op == "+" {
		_, xs := x.(string)
		_, ys := y.(string)
		if xs || ys || !value.IsPrimitive(x) || !value.IsPrimitive(y) {
			return value.ToString(x) + value.ToString(y)
		}
	}
	a, b := value.ToNumber(x), value.ToNumber(y)
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	default:
		return a / b
	}
}

func foldTemplate(t *ast.TemplateLit, fallback Fallback) (value.Value, error) {
	var sb strings.Builder
	for i, q := range t.Quasis {
		sb.WriteString(q)
		if i >= len(t.Exprs) {
			continue
		}
		v, err := Evaluate(t.Exprs[i], fallback)
		if err != nil {
			return nil, err
		}
		sb.WriteString(value.ToString(v))
	}
	return sb.String(), nil
}

func foldObject(o *ast.ObjectLit, fallback Fallback) (value.Value, error) {
	obj := value.NewObject()
	for _, m := range o.Props {
		switch m := m.(type) {
		case *ast.Property:
			key, err := propertyKey(m, fallback)
			if err != nil {
				return nil, err
			}
			v, err := Evaluate(m.Value, fallback)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		case *ast.SpreadProperty:
			v, err := Evaluate(m.Arg, fallback)
			if err != nil {
				return nil, err
			}
			switch src := v.(type) {
			case *value.Object:
				obj.Merge(src)
			case nil:
			default:
				if !value.IsUndefined(src) {
					return nil, unevaluable(m.Arg, "spread of non-object")
				}
			}
		default:
			return nil, unevaluable(o, "unknown object member")
		}
	}
	return obj, nil
}

func propertyKey(p *ast.Property, fallback Fallback) (string, error) {
	if p.Computed {
		if fallback == nil {
			return "", unevaluable(p.Key, "computed key requires fallback")
		}
		k, err := Evaluate(p.Key, fallback)
		if err != nil {
			return "", err
		}
		return value.ToString(k), nil
	}
	switch k := p.Key.(type) {
	case *ast.Ident:
		return k.Name, nil
	case *ast.StringLit:
		return k.Value, nil
	case *ast.NumberLit:
		return ast.FormatNumber(k.Value), nil
	}
	return "", unevaluable(p.Key, "unsupported key")
}
