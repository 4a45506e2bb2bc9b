package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func makeZip(t *testing.T, names ...string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer zipFile.Close()

	w := zip.NewWriter(zipFile)
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			hdr := &zip.FileHeader{Name: name}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatalf("Failed to create directory %s: %v", name, err)
			}
			continue
		}
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte("export default 1;\n")); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finalize zip: %v", err)
	}
	return zipPath
}

func collect(t *testing.T, zipPath, prefix string, match MatchFunc) []string {
	t.Helper()
	var visited []string
	err := Walk(zipPath, prefix, match, func(archive string, file *zip.File) error {
		if archive != zipPath {
			t.Errorf("archive = %s, want %s", archive, zipPath)
		}
		visited = append(visited, file.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	return visited
}

func TestWalk(t *testing.T) {
	zipPath := makeZip(t,
		"src/",
		"src/item10.jsx",
		"src/item2.jsx",
		"src/.cache/skip.jsx",
		"src/node_modules/lib/index.js",
		"docs/readme.md",
		"App.tsx",
	)

	t.Run("natural order under prefix", func(t *testing.T) {
		got := collect(t, zipPath, "src/", nil)
		want := []string{"src/item2.jsx", "src/item10.jsx"}
		if !slices.Equal(got, want) {
			t.Errorf("visited %v, want %v", got, want)
		}
	})

	t.Run("match filter", func(t *testing.T) {
		got := collect(t, zipPath, "", func(name string) bool { return strings.HasSuffix(name, ".tsx") })
		if !slices.Equal(got, []string{"App.tsx"}) {
			t.Errorf("visited %v", got)
		}
	})

	t.Run("everything", func(t *testing.T) {
		if got := collect(t, zipPath, "", nil); len(got) != 4 {
			t.Errorf("visited %d files, want 4: %v", len(got), got)
		}
	})

	t.Run("no matching prefix", func(t *testing.T) {
		if got := collect(t, zipPath, "nonexistent/", nil); len(got) != 0 {
			t.Errorf("visited %v, want nothing", got)
		}
	})

	t.Run("case sensitive prefix", func(t *testing.T) {
		if got := collect(t, zipPath, "SRC/", nil); len(got) != 0 {
			t.Errorf("visited %v, want nothing", got)
		}
	})
}

func TestWalk_EarlyTermination(t *testing.T) {
	zipPath := makeZip(t, "a.js", "b.js", "c.js")

	var visited int
	stopErr := errors.New("stop walking")
	err := Walk(zipPath, "", nil, func(archive string, file *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2", visited)
	}
}

func TestWalk_UnsafePath(t *testing.T) {
	zipPath := makeZip(t, "ok.js", "../evil.js")
	err := Walk(zipPath, "", nil, func(string, *zip.File) error { return nil })
	if err == nil {
		t.Error("Walk() must refuse archives with path traversal")
	}
}

func TestWalk_InvalidArchive(t *testing.T) {
	if err := Walk("/nonexistent/file.zip", "", nil, func(string, *zip.File) error { return nil }); err == nil {
		t.Error("Expected error for nonexistent file")
	}

	invalidZip := filepath.Join(t.TempDir(), "invalid.zip")
	if err := os.WriteFile(invalidZip, []byte("not a zip file"), 0644); err != nil {
		t.Fatalf("Failed to create invalid zip: %v", err)
	}
	if err := Walk(invalidZip, "", nil, func(string, *zip.File) error { return nil }); err == nil {
		t.Error("Expected error for invalid zip file")
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a/b.js", true},
		{"a/..b.js", true},
		{"/etc/passwd", false},
		{`\windows`, false},
		{"a/../../b", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
