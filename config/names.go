package config

import (
	"strings"

	"github.com/gosimple/slug"
)

// CleanFileName removes characters not allowed in file names. Names which
// end up empty are transliterated instead.
func CleanFileName(in string) string {
	clean := func(s string) string {
		return strings.TrimLeft(strings.Map(func(r rune) rune {
			if r == 0 || strings.ContainsRune(forbiddenInName, r) {
				return -1
			}
			return r
		}, s), ".")
	}
	if out := clean(in); out != "" {
		return out
	}
	if out := clean(slug.Make(in)); out != "" {
		return out
	}
	return "_bad_file_name_"
}
