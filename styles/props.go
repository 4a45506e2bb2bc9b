package styles

import (
	"strings"
	"unicode"
)

// passthrough holds attribute names that are never styles.
var passthrough = map[string]bool{
	"ref":       true,
	"key":       true,
	"style":     true,
	"className": true,
	"class":     true,
	"id":        true,
	"component": true,
	"props":     true,
	"children":  true,
	"name":      true,
	"htmlFor":   true,
}

// IsPassthrough reports whether an attribute belongs to the component rather
// than to its styles: event handlers and a fixed set of reserved names.
func IsPassthrough(name string) bool {
	if passthrough[name] {
		return true
	}
	return isEventHandler(name)
}

func isEventHandler(name string) bool {
	if len(name) < 3 || !strings.HasPrefix(name, "on") {
		return false
	}
	return unicode.IsUpper(rune(name[2]))
}

var pseudoClasses = map[string]bool{
	"active":   true,
	"checked":  true,
	"disabled": true,
	"empty":    true,
	"enabled":  true,
	"focus":    true,
	"hover":    true,
	"invalid":  true,
	"link":     true,
	"required": true,
	"target":   true,
	"valid":    true,
	"visited":  true,
}

// notPrefixed are style names whose first segment looks like a pseudo
// prefix but is part of the property.
var notPrefixed = map[string]bool{
	"emptyCells": true,
}

var shorthands = map[string][2]string{
	"paddingH": {"paddingLeft", "paddingRight"},
	"paddingV": {"paddingTop", "paddingBottom"},
	"marginH":  {"marginLeft", "marginRight"},
	"marginV":  {"marginTop", "marginBottom"},
}

// bumped families get one extra specificity point on their longhands so they
// win over the shorthand regardless of rule order.
var bumped = map[string]bool{
	"animation":  true,
	"background": true,
	"border":     true,
	"flex":       true,
	"font":       true,
	"margin":     true,
	"padding":    true,
}

var unitless = map[string]bool{
	"animationIterationCount": true,
	"aspectRatio":             true,
	"borderImageOutset":       true,
	"borderImageSlice":        true,
	"borderImageWidth":        true,
	"boxFlex":                 true,
	"boxFlexGroup":            true,
	"boxOrdinalGroup":         true,
	"columnCount":             true,
	"columns":                 true,
	"flex":                    true,
	"flexGrow":                true,
	"flexPositive":            true,
	"flexShrink":              true,
	"flexNegative":            true,
	"flexOrder":               true,
	"gridArea":                true,
	"gridRow":                 true,
	"gridRowEnd":              true,
	"gridRowSpan":             true,
	"gridRowStart":            true,
	"gridColumn":              true,
	"gridColumnEnd":           true,
	"gridColumnSpan":          true,
	"gridColumnStart":         true,
	"fontWeight":              true,
	"lineClamp":               true,
	"lineHeight":              true,
	"opacity":                 true,
	"order":                   true,
	"orphans":                 true,
	"scale":                   true,
	"tabSize":                 true,
	"widows":                  true,
	"zIndex":                  true,
	"zoom":                    true,
	"fillOpacity":             true,
	"floodOpacity":            true,
	"stopOpacity":             true,
	"strokeDasharray":         true,
	"strokeDashoffset":        true,
	"strokeMiterlimit":        true,
	"strokeOpacity":           true,
	"strokeWidth":             true,
}

var vendorPrefixes = []string{"Webkit", "Moz", "ms", "O"}

// IsUnitless reports whether numbers for the (camel-case) property are
// written without a unit.
func IsUnitless(name string) bool {
	if unitless[name] {
		return true
	}
	for _, p := range vendorPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok && rest != "" && unicode.IsUpper(rune(rest[0])) {
			return unitless[lowerFirst(rest)]
		}
	}
	return false
}

// Hyphenate converts a camel-case style name to a CSS property name.
// Vendor prefixes become leading dashes: msTransition is -ms-transition,
// WebkitTransition is -webkit-transition. Custom properties are kept.
func Hyphenate(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	if strings.HasPrefix(name, "ms") && len(name) > 2 && unicode.IsUpper(rune(name[2])) {
		sb.WriteByte('-')
	}
	for _, r := range name {
		if unicode.IsUpper(r) {
			sb.WriteByte('-')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// leadingSegment splits "hoverAfterColor" into "hover" and "AfterColor".
func leadingSegment(name string) (string, string) {
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			return name[:i], name[i:]
		}
	}
	return name, ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
