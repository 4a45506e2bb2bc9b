package build

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/config"
	"github.com/jsxstyle/jsxstyle-sub000/misc"
)

const defaultStylesheetSuffix = ".jsxstyle.css"

// Values is a struct that holds variables we make available for template
// expansion.
type Values struct {
	Context string // name of the template field being expanded
	Name    string // unit file name without extension
	Ext     string // unit file extension including the dot
	Dir     string // unit directory relative to the source root, slash separated
	Source  string // unit path relative to the source root, slash separated
	Version string
	Rules   int
}

func newValues(src string, rules int) Values {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return Values{
		Name:    strings.TrimSuffix(base, ext),
		Ext:     ext,
		Dir:     filepath.ToSlash(filepath.Dir(src)),
		Source:  filepath.ToSlash(src),
		Version: misc.GetVersion(),
		Rules:   rules,
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// outputDir returns directory for outputs of unit src (path relative to the
// source root), flattening the tree when requested.
func (b *Builder) outputDir(src string) string {
	if b.env.NoDirs {
		return b.dst
	}
	return filepath.Join(b.dst, filepath.Dir(src))
}

func (b *Builder) unitOutputPath(src string) string {
	return filepath.Join(b.outputDir(src), filepath.Base(src))
}

// stylesheetPath returns constructed stylesheet path for unit src based on
// the output name template. Template may produce subdirectories, every path
// segment is cleaned.
func (b *Builder) stylesheetPath(src string) string {
	outDir := b.outputDir(src)
	defaultName := filepath.Join(outDir, defaultStylesheetName(src))

	expanded, err := expandTemplate(config.OutputNameTemplateFieldName, b.cfg.OutputNameTemplate, newValues(src, 0))
	if err != nil {
		b.log.Warn("Unable to prepare stylesheet name", zap.String("unit", src), zap.Error(err))
		return defaultName
	}
	if name := assemblePathWithSubdirs(outDir, strings.TrimSpace(expanded)); name != "" {
		return name
	}
	return defaultName
}

// sharedStylesheetPath is where the single stylesheet of shared cache scope
// goes.
func (b *Builder) sharedStylesheetPath() string {
	name := assemblePathWithSubdirs(b.dst, b.cfg.SharedStylesheet)
	if name == "" {
		return filepath.Join(b.dst, "jsxstyle.css")
	}
	return name
}

func defaultStylesheetName(src string) string {
	base := filepath.Base(src)
	return config.CleanFileName(strings.TrimSuffix(base, filepath.Ext(base))) + defaultStylesheetSuffix
}

// assemblePathWithSubdirs joins cleaned segments of name under outDir making
// sure result has .css extension. It returns empty string when name has no
// usable segments.
func assemblePathWithSubdirs(outDir, name string) string {
	segments := splitPath(name)
	if len(segments) == 0 {
		return ""
	}

	fileName := config.CleanFileName(segments[len(segments)-1])
	if !strings.EqualFold(filepath.Ext(fileName), ".css") {
		fileName += ".css"
	}
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, config.CleanFileName(segment))
	}
	parts = append(parts, fileName)
	return filepath.Join(parts...)
}

func splitPath(name string) []string {
	segments := strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == os.PathSeparator
	})
	out := segments[:0]
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

// importPath returns specifier to import stylesheet from the rewritten unit.
func importPath(unitOut, sheet string) string {
	rel, err := filepath.Rel(filepath.Dir(unitOut), sheet)
	if err != nil {
		rel = filepath.Base(sheet)
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// banner renders the stylesheet banner, empty when not configured.
func (b *Builder) banner(src string, rules int) string {
	if b.cfg.Banner == "" {
		return ""
	}
	text, err := expandTemplate(config.BannerFieldName, b.cfg.Banner, newValues(src, rules))
	if err != nil {
		b.log.Warn("Unable to prepare stylesheet banner", zap.String("unit", src), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}
