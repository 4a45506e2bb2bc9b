// Package styles classifies component attributes into CSS declarations.
package styles

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/ast"
	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

// ErrUnsupported is returned for attribute shapes that cannot be turned into
// declarations. The attribute must stay dynamic.
var ErrUnsupported = errors.New("unsupported style")

// Kind is the outcome of classifying an attribute.
type Kind int

const (
	Ignored Kind = iota
	Passthrough
	Styles
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case Styles:
		return "styles"
	}
	return "ignored"
}

// Context is the selector context an attribute is classified in.
type Context struct {
	MediaQuery string
	Ampersand  string
}

// Result of classifying a single attribute.
type Result struct {
	Kind         Kind
	Declarations []css.Declaration
}

var queryMarkers = []string{"@media ", "@container "}

func isQuery(name string) bool {
	for _, m := range queryMarkers {
		if strings.HasPrefix(name, m) {
			return true
		}
	}
	return false
}

// Classifier turns attribute name/value pairs into declarations.
type Classifier struct {
	log *zap.Logger
}

// NewClassifier creates a classifier.
func NewClassifier(log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{log: log.Named("styles")}
}

// Classify classifies one attribute. Passthrough attributes belong to the
// component; falsy values produce no rule at all.
func (c *Classifier) Classify(name string, v value.Value, ctx Context) (Result, error) {
	nested := ctx.MediaQuery != "" || ctx.Ampersand != ""

	switch {
	case IsPassthrough(name):
		if nested {
			return Result{}, fmt.Errorf("%w: %q inside %q", ErrUnsupported, name, ctx.describe())
		}
		return Result{Kind: Passthrough}, nil

	case isQuery(name):
		if isFalsy(v) {
			return Result{Kind: Ignored}, nil
		}
		if ctx.MediaQuery != "" {
			return Result{}, fmt.Errorf("%w: query %q nested in %q", ErrUnsupported, name, ctx.MediaQuery)
		}
		if ctx.Ampersand != "" {
			return Result{}, fmt.Errorf("%w: query %q nested in selector %q", ErrUnsupported, name, ctx.Ampersand)
		}
		inner := ctx
		inner.MediaQuery = strings.TrimSpace(name)
		return c.classifyObject(name, v, inner)

	case strings.Contains(name, "&"):
		if isFalsy(v) {
			return Result{Kind: Ignored}, nil
		}
		if ctx.MediaQuery != "" {
			return Result{}, fmt.Errorf("%w: selector %q nested in %q", ErrUnsupported, name, ctx.MediaQuery)
		}
		inner := ctx
		inner.Ampersand = name
		if ctx.Ampersand != "" {
			inner.Ampersand = strings.ReplaceAll(name, "&", ctx.Ampersand)
		}
		return c.classifyObject(name, v, inner)
	}

	if isFalsy(v) {
		c.log.Debug("Ignoring falsy style", zap.String("name", name))
		return Result{Kind: Ignored}, nil
	}
	decls, err := c.declarations(name, v, ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: Styles, Declarations: decls}, nil
}

func (ctx Context) describe() string {
	if ctx.MediaQuery != "" {
		return ctx.MediaQuery
	}
	return ctx.Ampersand
}

func (c *Classifier) classifyObject(name string, v value.Value, ctx Context) (Result, error) {
	obj, ok := v.(*value.Object)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q expects an object, got %s", ErrUnsupported, name, value.TypeOf(v))
	}
	res := Result{Kind: Ignored}
	for _, k := range obj.Keys() {
		item, _ := obj.Get(k)
		r, err := c.Classify(k, item, ctx)
		if err != nil {
			return Result{}, err
		}
		if r.Kind == Styles {
			res.Kind = Styles
			res.Declarations = append(res.Declarations, r.Declarations...)
		}
	}
	return res, nil
}

// StripPseudo removes pseudo-element and pseudo-class prefixes from a style
// name. The pseudo-element is looked for first, and again after a
// pseudo-class, so both hoverAfterColor and afterHoverColor resolve to
// :hover::after.
func StripPseudo(name string) (prop, pseudoClass string, pseudoElement css.PseudoElement) {
	prop = name
	if notPrefixed[prop] || strings.HasPrefix(prop, "--") {
		return prop, "", css.PseudoNone
	}
	if lead, rest := leadingSegment(prop); rest != "" {
		if pe, ok := css.ParsePseudoElement(lead); ok {
			pseudoElement, prop = pe, lowerFirst(rest)
		}
	}
	if lead, rest := leadingSegment(prop); rest != "" && pseudoClasses[lead] {
		pseudoClass, prop = lead, lowerFirst(rest)
		if pseudoElement == css.PseudoNone {
			if lead, rest := leadingSegment(prop); rest != "" {
				if pe, ok := css.ParsePseudoElement(lead); ok {
					pseudoElement, prop = pe, lowerFirst(rest)
				}
			}
		}
	}
	return prop, pseudoClass, pseudoElement
}

// isBumped reports whether prop is a longhand of one of the bumped families.
func isBumped(prop string) bool {
	lead, rest := leadingSegment(prop)
	return rest != "" && bumped[lead]
}

func (c *Classifier) declarations(name string, v value.Value, ctx Context) ([]css.Declaration, error) {
	prop, pc, pe := StripPseudo(name)

	props := []string{prop}
	if pair, ok := shorthands[prop]; ok {
		props = pair[:]
	}

	base := 0
	if ctx.MediaQuery != "" {
		base++
	}

	out := make([]css.Declaration, 0, len(props))
	for _, p := range props {
		d := css.Declaration{
			Property:      Hyphenate(p),
			PseudoClass:   pc,
			PseudoElement: pe,
			MediaQuery:    ctx.MediaQuery,
			Ampersand:     ctx.Ampersand,
			Specificity:   base,
		}
		if isBumped(p) {
			d.Specificity++
		}

		if obj, ok := v.(*value.Object); ok && p == "animation" {
			frames, err := c.keyframes(obj)
			if err != nil {
				return nil, err
			}
			d.Property = "animation-name"
			d.Keyframes = frames
			d.Specificity++
			out = append(out, d)
			continue
		}

		text, err := cssValue(p, v)
		if err != nil {
			return nil, err
		}
		d.Value = text
		out = append(out, d)
	}
	return out, nil
}

func (c *Classifier) keyframes(obj *value.Object) ([]css.Keyframe, error) {
	frames := make([]css.Keyframe, 0, obj.Len())
	for _, sel := range obj.Keys() {
		step, _ := obj.Get(sel)
		styles, ok := step.(*value.Object)
		if !ok {
			return nil, fmt.Errorf("%w: keyframe %q expects an object", ErrUnsupported, sel)
		}
		if err := css.CheckValue(sel); err != nil {
			return nil, fmt.Errorf("%w: keyframe selector: %w", ErrUnsupported, err)
		}
		frame := css.Keyframe{Selector: sel}
		for _, k := range styles.Keys() {
			item, _ := styles.Get(k)
			r, err := c.Classify(k, item, Context{})
			if err != nil {
				return nil, err
			}
			for _, d := range r.Declarations {
				if d.PseudoClass != "" || d.PseudoElement != css.PseudoNone || d.Keyframes != nil {
					return nil, fmt.Errorf("%w: %q is not allowed in a keyframe", ErrUnsupported, k)
				}
				frame.Declarations = append(frame.Declarations, css.Declaration{Property: d.Property, Value: d.Value})
			}
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func isFalsy(v value.Value) bool {
	if b, ok := v.(bool); ok {
		return !b
	}
	return value.IsNullish(v)
}

// cssValue renders v for property prop (camel-case).
func cssValue(prop string, v value.Value) (string, error) {
	var text string
	switch v := v.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("%w: %s: %s is not a length", ErrUnsupported, prop, ast.FormatNumber(v))
		}
		text = ast.FormatNumber(v)
		if v != 0 && !IsUnitless(prop) && !strings.HasPrefix(prop, "--") {
			text += "px"
		}
	case string:
		text = strings.TrimSpace(v)
	default:
		return "", fmt.Errorf("%w: %s: unsupported %s value", ErrUnsupported, prop, value.TypeOf(v))
	}
	if err := css.CheckValue(text); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnsupported, prop, err)
	}
	return text, nil
}
