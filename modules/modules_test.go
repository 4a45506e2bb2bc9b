package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsxstyle/jsxstyle-sub000/modules"
	"github.com/jsxstyle/jsxstyle-sub000/scope"
	"github.com/jsxstyle/jsxstyle-sub000/value"
)

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`./theme.js:
  spacing: 8
  colors: &c
    primary: "#0af"
    accent: red
  ratio: 1.5
  flags: [true, null, undefined, "undefined"]
  alias:
    <<: *c
    accent: blue
"@acme/tokens":
  default:
    radius: 4
`), 0o644))

	mods, err := modules.Load(path)
	require.NoError(t, err)
	require.Len(t, mods, 2)

	theme, ok := mods[filepath.Join(dir, "theme.js")].(*value.Object)
	require.True(t, ok, "relative specifier must resolve against the table directory")
	assert.Equal(t, []string{"spacing", "colors", "ratio", "flags", "alias"}, theme.Keys())

	spacing, _ := theme.Get("spacing")
	assert.Equal(t, 8.0, spacing)
	ratio, _ := theme.Get("ratio")
	assert.Equal(t, 1.5, ratio)

	colors, _ := theme.Get("colors")
	assert.Equal(t, []string{"primary", "accent"}, colors.(*value.Object).Keys())

	flags, _ := theme.Get("flags")
	assert.Equal(t, value.Array{true, nil, value.Undefined, "undefined"}, flags)

	alias, _ := theme.Get("alias")
	accent, _ := alias.(*value.Object).Get("accent")
	assert.Equal(t, "blue", accent)
	primary, _ := alias.(*value.Object).Get("primary")
	assert.Equal(t, "#0af", primary)

	_, ok = mods["@acme/tokens"]
	assert.True(t, ok, "bare specifiers are kept as written")

	// the table plugs straight into import resolution
	v, _, found := mods.Resolve("./theme", filepath.Join(dir, "App.jsx"))
	require.True(t, found)
	assert.Same(t, theme, v)
}

func TestParse_JSON(t *testing.T) {
	mods, err := modules.Parse([]byte(`{"../shared/index.ts": {"gap": 12, "nested": {"z": 1, "a": 2}}}`), "/work/src")
	require.NoError(t, err)

	exports, ok := mods[filepath.Join("/work", "shared", "index.ts")].(*value.Object)
	require.True(t, ok)
	nested, _ := exports.Get("nested")
	assert.Equal(t, []string{"z", "a"}, nested.(*value.Object).Keys())

	v, _, found := scope.Modules(mods).Resolve("../shared", "/work/src/App.jsx")
	require.True(t, found)
	assert.Same(t, exports, v)
}

func TestLoad_Empty(t *testing.T) {
	mods, err := modules.Load("")
	require.NoError(t, err)
	assert.Empty(t, mods)

	mods, err = modules.Parse(nil, "/")
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestLoad_Errors(t *testing.T) {
	_, err := modules.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := []struct {
		name, data string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"invalid yaml", "a: [1, 2\n"},
		{"non scalar key", "? [a]\n: 1\n"},
		{"nested non scalar key", "m:\n  ? [a]\n  : 1\n"},
		{"binary", "m: !!binary aGk=\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := modules.Parse([]byte(tt.data), "/")
			assert.Error(t, err)
		})
	}

	_, err = modules.Parse([]byte("- a\n"), "/")
	assert.ErrorIs(t, err, modules.ErrFormat)
}
