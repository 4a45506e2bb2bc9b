// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk, file is the entry which satisfied match condition. If an error is
// returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// MatchFunc selects entries by their slash separated name.
type MatchFunc func(name string) bool

// Walk calls walkFn for every regular file in archive whose name starts with
// prefix and is accepted by match (nil accepts everything). Entries are visited
// in natural name order, entries under hidden directories are skipped. Archives
// with absolute entries or entries containing ".." are refused to prevent Zip
// Slip.
func Walk(archive, prefix string, match MatchFunc, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	byName := make(map[string]*zip.File, len(r.File))
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) || inHiddenDir(name) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if _, dup := byName[name]; dup {
			continue
		}
		byName[name] = f
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))

	for _, name := range names {
		if err := walkFn(archive, byName[name]); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

func inHiddenDir(name string) bool {
	dir := path.Dir(name)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if strings.HasPrefix(part, ".") || part == "node_modules" || part == "__MACOSX" {
			return true
		}
	}
	return false
}
