package styles_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/styles"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

func TestClassify_Passthrough(t *testing.T) {
	c := styles.NewClassifier(zaptest.NewLogger(t))
	for _, name := range []string{"onClick", "ref", "key", "className", "component", "props", "style", "htmlFor"} {
		r, err := c.Classify(name, "x", styles.Context{})
		require.NoError(t, err, name)
		assert.Equal(t, styles.Passthrough, r.Kind, name)
	}
	r, err := c.Classify("one", 1.0, styles.Context{})
	require.NoError(t, err)
	assert.Equal(t, styles.Styles, r.Kind, "lowercase after on is not a handler")
}

func TestClassify_Ignored(t *testing.T) {
	c := styles.NewClassifier(nil)
	for _, v := range []value.Value{nil, false, value.Undefined} {
		r, err := c.Classify("color", v, styles.Context{})
		require.NoError(t, err)
		assert.Equal(t, styles.Ignored, r.Kind)
		assert.Empty(t, r.Declarations)
	}
}

func TestClassify_Declarations(t *testing.T) {
	tests := []struct {
		name  string
		attr  string
		value value.Value
		want  []css.Declaration
	}{
		{
			name:  "px",
			attr:  "width",
			value: 10.0,
			want:  []css.Declaration{{Property: "width", Value: "10px"}},
		},
		{
			name:  "zero",
			attr:  "width",
			value: 0.0,
			want:  []css.Declaration{{Property: "width", Value: "0"}},
		},
		{
			name:  "unitless",
			attr:  "zIndex",
			value: 3.0,
			want:  []css.Declaration{{Property: "z-index", Value: "3"}},
		},
		{
			name:  "vendor unitless",
			attr:  "WebkitFlexGrow",
			value: 1.0,
			want:  []css.Declaration{{Property: "-webkit-flex-grow", Value: "1"}},
		},
		{
			name:  "ms prefix",
			attr:  "msTransition",
			value: "none",
			want:  []css.Declaration{{Property: "-ms-transition", Value: "none"}},
		},
		{
			name:  "string trimmed",
			attr:  "color",
			value: "  red ",
			want:  []css.Declaration{{Property: "color", Value: "red"}},
		},
		{
			name:  "hover after",
			attr:  "hoverAfterColor",
			value: "red",
			want:  []css.Declaration{{Property: "color", Value: "red", PseudoClass: "hover", PseudoElement: css.PseudoAfter}},
		},
		{
			name:  "placeholder",
			attr:  "placeholderColor",
			value: "gray",
			want:  []css.Declaration{{Property: "color", Value: "gray", PseudoElement: css.PseudoPlaceholder}},
		},
		{
			name:  "not a pseudo",
			attr:  "emptyCells",
			value: "show",
			want:  []css.Declaration{{Property: "empty-cells", Value: "show"}},
		},
		{
			name:  "shorthand",
			attr:  "paddingH",
			value: 4.0,
			want: []css.Declaration{
				{Property: "padding-left", Value: "4px", Specificity: 1},
				{Property: "padding-right", Value: "4px", Specificity: 1},
			},
		},
		{
			name:  "family shorthand not bumped",
			attr:  "margin",
			value: 2.0,
			want:  []css.Declaration{{Property: "margin", Value: "2px"}},
		},
		{
			name:  "longhand bumped",
			attr:  "borderColor",
			value: "red",
			want:  []css.Declaration{{Property: "border-color", Value: "red", Specificity: 1}},
		},
		{
			name:  "custom property",
			attr:  "--gap",
			value: 8.0,
			want:  []css.Declaration{{Property: "--gap", Value: "8"}},
		},
	}
	c := styles.NewClassifier(zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.Classify(tt.attr, tt.value, styles.Context{})
			require.NoError(t, err)
			assert.Equal(t, styles.Styles, r.Kind)
			assert.Equal(t, tt.want, r.Declarations)
		})
	}
}

func TestClassify_MediaQuery(t *testing.T) {
	c := styles.NewClassifier(zaptest.NewLogger(t))
	q := "@media (min-width: 600px)"
	r, err := c.Classify(q, value.ObjectOf("color", "red", "marginTop", 4.0, "width", nil), styles.Context{})
	require.NoError(t, err)
	assert.Equal(t, []css.Declaration{
		{Property: "color", Value: "red", MediaQuery: q, Specificity: 1},
		{Property: "margin-top", Value: "4px", MediaQuery: q, Specificity: 2},
	}, r.Declarations)
}

func TestClassify_Ampersand(t *testing.T) {
	c := styles.NewClassifier(zaptest.NewLogger(t))
	inner := value.ObjectOf("& span", value.ObjectOf("color", "red"))
	r, err := c.Classify(".dark &", inner, styles.Context{})
	require.NoError(t, err)
	require.Len(t, r.Declarations, 1)
	assert.Equal(t, ".dark & span", r.Declarations[0].Ampersand)
}

func TestClassify_NestingRejected(t *testing.T) {
	c := styles.NewClassifier(zaptest.NewLogger(t))
	tests := []struct {
		name string
		attr string
		v    value.Value
	}{
		{"query in query", "@media print", value.ObjectOf("@media screen", value.ObjectOf("color", "red"))},
		{"query in selector", "&:hover", value.ObjectOf("@media print", value.ObjectOf("color", "red"))},
		{"selector in query", "@media print", value.ObjectOf("&:hover", value.ObjectOf("color", "red"))},
		{"passthrough in query", "@media print", value.ObjectOf("onClick", "x")},
		{"query with string", "@media print", "red"},
		{"object value", "color", value.ObjectOf("a", "b")},
		{"array value", "color", value.Array{"red"}},
		{"true", "color", true},
		{"unsafe", "color", "red; background: blue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Classify(tt.attr, tt.v, styles.Context{})
			assert.True(t, errors.Is(err, styles.ErrUnsupported), "got %v", err)
		})
	}
}

func TestClassify_Animation(t *testing.T) {
	c := styles.NewClassifier(zaptest.NewLogger(t))
	anim := value.ObjectOf(
		"from", value.ObjectOf("opacity", 0.0),
		"to", value.ObjectOf("opacity", 1.0, "marginLeft", 10.0),
	)
	r, err := c.Classify("animation", anim, styles.Context{})
	require.NoError(t, err)
	require.Len(t, r.Declarations, 1)

	d := r.Declarations[0]
	assert.Equal(t, "animation-name", d.Property)
	assert.Equal(t, 1, d.Specificity)
	assert.Equal(t, []css.Keyframe{
		{Selector: "from", Declarations: []css.Declaration{{Property: "opacity", Value: "0"}}},
		{Selector: "to", Declarations: []css.Declaration{
			{Property: "opacity", Value: "1"},
			{Property: "margin-left", Value: "10px"},
		}},
	}, d.Keyframes)

	_, err = c.Classify("animation", value.ObjectOf("from", value.ObjectOf("hoverColor", "red")), styles.Context{})
	assert.ErrorIs(t, err, styles.ErrUnsupported)
}

func TestStripPseudo(t *testing.T) {
	tests := []struct {
		in   string
		prop string
		pc   string
		pe   css.PseudoElement
	}{
		{"hoverColor", "color", "hover", css.PseudoNone},
		{"afterHoverColor", "color", "hover", css.PseudoAfter},
		{"hoverAfterColor", "color", "hover", css.PseudoAfter},
		{"selectionBackgroundColor", "backgroundColor", "", css.PseudoSelection},
		{"hover", "hover", "", css.PseudoNone},
		{"emptyCells", "emptyCells", "", css.PseudoNone},
		{"focusOutline", "outline", "focus", css.PseudoNone},
	}
	for _, tt := range tests {
		prop, pc, pe := styles.StripPseudo(tt.in)
		assert.Equal(t, tt.prop, prop, tt.in)
		assert.Equal(t, tt.pc, pc, tt.in)
		assert.Equal(t, tt.pe, pe, tt.in)
	}
}

func TestDefaults(t *testing.T) {
	obj, ok := styles.Defaults("Row")
	require.True(t, ok)
	assert.Equal(t, []string{"display", "flexDirection"}, obj.Keys())
	v, _ := obj.Get("flexDirection")
	assert.Equal(t, "row", v)

	box, ok := styles.Defaults("Box")
	require.True(t, ok)
	assert.Equal(t, 0, box.Len())

	_, ok = styles.Defaults("Button")
	assert.False(t, ok)
	assert.Contains(t, styles.Components(), "InlineCol")
}
