package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/store"
)

func open(t *testing.T, path string) *store.Store {
	t.Helper()
	s, err := store.Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.db")

	first := css.NewClassNameCache(css.NamingCounter, "")
	a := first.ClassName("color:red")
	b := first.ClassName("margin:4px")

	s := open(t, path)
	require.NoError(t, s.Save(first, css.NamingCounter))
	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, s.Close())

	// next run, keys arrive in different order but keep their names
	s = open(t, path)
	second := css.NewClassNameCache(css.NamingCounter, "")
	seeded, err := s.Seed(second, css.NamingCounter)
	require.NoError(t, err)
	assert.Equal(t, 2, seeded)

	assert.Equal(t, b, second.ClassName("margin:4px"))
	assert.Equal(t, a, second.ClassName("color:red"))
	c := second.ClassName("padding:0")
	assert.NotContains(t, []string{a, b}, c)

	require.NoError(t, s.Save(second, css.NamingCounter))
	n, err = s.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	third := css.NewClassNameCache(css.NamingCounter, "")
	_, err = s.Seed(third, css.NamingCounter)
	require.NoError(t, err)
	assert.Equal(t, []css.Assignment{
		{Key: "color:red", Name: a},
		{Key: "margin:4px", Name: b},
		{Key: "padding:0", Name: c},
	}, third.Assignments())
}

func TestStore_SaveKeepsStoredNames(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "classes.db"))

	one := css.NewClassNameCache(css.NamingReadable, "")
	one.ClassName("color:red")
	require.NoError(t, s.Save(one, css.NamingReadable))

	// same key, clashing name: both are ignored
	other := css.NewClassNameCache(css.NamingReadable, "")
	other.Seed("color:red", "_xother")
	other.Seed("color:blue", one.Assignments()[0].Name)
	require.NoError(t, s.Save(other, css.NamingReadable))

	check := css.NewClassNameCache(css.NamingReadable, "")
	seeded, err := s.Seed(check, css.NamingReadable)
	require.NoError(t, err)
	assert.Equal(t, 1, seeded)
	assert.Equal(t, one.Assignments(), check.Assignments())
}

func TestStore_NamingMismatch(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "classes.db"))

	cache := css.NewClassNameCache(css.NamingHash, "")
	cache.ClassName("color:red")
	require.NoError(t, s.Save(cache, css.NamingHash))

	_, err := s.Seed(css.NewClassNameCache(css.NamingCounter, ""), css.NamingCounter)
	require.ErrorIs(t, err, store.ErrNamingMismatch)
}

func TestStore_EmptyAndErrors(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "classes.db"))
	seeded, err := s.Seed(css.NewClassNameCache(css.NamingCounter, ""), css.NamingCounter)
	require.NoError(t, err)
	assert.Zero(t, seeded)

	_, err = store.Open(filepath.Join(t.TempDir(), "missing", "dir", "classes.db"), nil)
	assert.Error(t, err)

	var nilStore *store.Store
	assert.NoError(t, nilStore.Close())
}
