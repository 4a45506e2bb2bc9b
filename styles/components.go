package styles

import (
	"slices"

	"github.com/jsxstyle/jsxstyle-sub000/value"
)

type defaultStyle struct {
	name  string
	value string
}

var componentDefaults = map[string][]defaultStyle{
	"Box":         nil,
	"Block":       {{"display", "block"}},
	"Inline":      {{"display", "inline"}},
	"InlineBlock": {{"display", "inline-block"}},
	"Row":         {{"display", "flex"}, {"flexDirection", "row"}},
	"Col":         {{"display", "flex"}, {"flexDirection", "column"}},
	"InlineRow":   {{"display", "inline-flex"}, {"flexDirection", "row"}},
	"InlineCol":   {{"display", "inline-flex"}, {"flexDirection", "column"}},
	"Grid":        {{"display", "grid"}},
}

// Components returns the names of the known layout components, sorted.
func Components() []string {
	names := make([]string, 0, len(componentDefaults))
	for name := range componentDefaults {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsComponent reports whether name is a known layout component.
func IsComponent(name string) bool {
	_, ok := componentDefaults[name]
	return ok
}

// Defaults returns a fresh object with the default styles of a component.
func Defaults(component string) (*value.Object, bool) {
	list, ok := componentDefaults[component]
	if !ok {
		return nil, false
	}
	obj := value.NewObject()
	for _, d := range list {
		obj.Set(d.name, d.value)
	}
	return obj, true
}
