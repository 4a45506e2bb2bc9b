package css

import (
	"strconv"
	"strings"
)

// MaxSpecificityRepeat caps how many times a class selector is repeated.
const MaxSpecificityRepeat = 4

// PseudoElement represents which pseudo-element a declaration applies to.
type PseudoElement int

const (
	PseudoNone        PseudoElement = iota // No pseudo-element
	PseudoAfter                            // ::after
	PseudoBefore                           // ::before
	PseudoPlaceholder                      // ::placeholder
	PseudoSelection                        // ::selection
)

// String returns the CSS representation of the pseudo-element.
func (p PseudoElement) String() string {
	switch p {
	case PseudoAfter:
		return "::after"
	case PseudoBefore:
		return "::before"
	case PseudoPlaceholder:
		return "::placeholder"
	case PseudoSelection:
		return "::selection"
	default:
		return ""
	}
}

// ParsePseudoElement maps a camel-case prefix ("after") to its pseudo-element.
func ParsePseudoElement(prefix string) (PseudoElement, bool) {
	switch prefix {
	case "after":
		return PseudoAfter, true
	case "before":
		return PseudoBefore, true
	case "placeholder":
		return PseudoPlaceholder, true
	case "selection":
		return PseudoSelection, true
	}
	return PseudoNone, false
}

// Declaration is one normalized CSS declaration together with the context
// its selector is built from.
type Declaration struct {
	Property      string // hyphenated, e.g. "margin-left"
	Value         string // CSS text, e.g. "4px"
	PseudoClass   string // without colon, e.g. "hover"
	PseudoElement PseudoElement
	MediaQuery    string // full at-rule prelude, e.g. "@media (min-width: 600px)"
	Ampersand     string // selector template containing "&"
	Specificity   int
	// Keyframes is set for animation declarations. Value is then filled in
	// with the generated keyframes name.
	Keyframes []Keyframe
}

// Keyframe is a single step of a @keyframes rule.
type Keyframe struct {
	Selector     string // "from", "to", "50%"
	Declarations []Declaration
}

// Key returns the canonical cache key of the declaration: equal keys produce
// equal classes and a single rule.
func (d Declaration) Key() string {
	var sb strings.Builder
	sb.WriteString(d.Property)
	sb.WriteByte(':')
	if d.Keyframes != nil {
		sb.WriteString(KeyframesKey(d.Keyframes))
	} else {
		sb.WriteString(d.Value)
	}
	if d.PseudoClass != "" {
		sb.WriteString("|pc=" + d.PseudoClass)
	}
	if d.PseudoElement != PseudoNone {
		sb.WriteString("|pe=" + d.PseudoElement.String())
	}
	if d.MediaQuery != "" {
		sb.WriteString("|mq=" + d.MediaQuery)
	}
	if d.Ampersand != "" {
		sb.WriteString("|amp=" + d.Ampersand)
	}
	if d.Specificity > 0 {
		sb.WriteString("|s=" + strconv.Itoa(d.Specificity))
	}
	return sb.String()
}

// KeyframesKey serializes a keyframes body. Identical animation objects
// produce identical keys.
func KeyframesKey(frames []Keyframe) string {
	return "@keyframes{" + keyframesBody(frames) + "}"
}

func keyframesBody(frames []Keyframe) string {
	var sb strings.Builder
	for i, f := range frames {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Selector)
		sb.WriteString(" { ")
		for j, d := range f.Declarations {
			if j > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(d.Property)
			sb.WriteString(": ")
			sb.WriteString(d.Value)
		}
		sb.WriteString(" }")
	}
	return sb.String()
}

// Selector builds the selector for class cls.
func (d Declaration) Selector(cls string) string {
	repeat := min(1+d.Specificity, MaxSpecificityRepeat)
	sel := strings.Repeat("."+cls, repeat)
	if d.PseudoClass != "" {
		sel += ":" + d.PseudoClass
	}
	sel += d.PseudoElement.String()
	if d.Ampersand != "" {
		sel = strings.ReplaceAll(d.Ampersand, "&", sel)
	}
	return sel
}

// Rule renders the rule text for class cls.
func (d Declaration) Rule(cls string) string {
	rule := d.Selector(cls) + " { " + d.Property + ": " + d.Value + " }"
	if d.MediaQuery != "" {
		rule = d.MediaQuery + " { " + rule + " }"
	}
	return rule
}

// KeyframesRule renders a @keyframes rule.
func KeyframesRule(name string, frames []Keyframe) string {
	return "@keyframes " + name + " { " + keyframesBody(frames) + " }"
}
