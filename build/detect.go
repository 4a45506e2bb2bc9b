package build

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// headerSize is the number of leading bytes filetype needs to recognize zip.
const headerSize = 262

// isArchiveFile reports whether path is a zip archive. Extension is checked
// first so sources are never opened twice.
func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// isSourceFile reports whether name has one of configured source extensions.
// Declaration files (.d.ts) never contain JSX and are skipped.
func isSourceFile(name string, exts map[string]bool) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".d.ts") || strings.HasSuffix(lower, ".d.mts") || strings.HasSuffix(lower, ".d.cts") {
		return false
	}
	return exts[strings.ToLower(filepath.Ext(name))]
}

// isHidden reports whether a directory should not be descended into.
func isHidden(name string) bool {
	return name != "." && name != ".." && strings.HasPrefix(name, ".") || name == "node_modules"
}
