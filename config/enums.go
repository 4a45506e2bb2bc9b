package config

import (
	"fmt"

	"github.com/jsxstyle/jsxstyle-sub000/css"
)

// ClassNaming selects how generated class names are derived.
type ClassNaming string

const (
	ClassNamingCounter  ClassNaming = "counter"
	ClassNamingHash     ClassNaming = "hash"
	ClassNamingReadable ClassNaming = "readable"
)

// Naming converts configuration value to the registry setting.
func (n ClassNaming) Naming() (css.Naming, error) {
	v, err := css.ParseNaming(string(n))
	if err != nil {
		return 0, fmt.Errorf("bad class naming: %w", err)
	}
	return v, nil
}

// CacheScope tells whether class names and rules are shared by all processed
// units or kept per unit.
type CacheScope string

const (
	CacheScopeUnit   CacheScope = "unit"
	CacheScopeShared CacheScope = "shared"
)

func (s CacheScope) Shared() bool {
	return s == CacheScopeShared
}
