package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jsxstyle/jsxstyle-sub000/config"
	"github.com/jsxstyle/jsxstyle-sub000/css"
	"github.com/jsxstyle/jsxstyle-sub000/extract"
	"github.com/jsxstyle/jsxstyle-sub000/jsx"
	"github.com/jsxstyle/jsxstyle-sub000/modules"
	"github.com/jsxstyle/jsxstyle-sub000/state"
	"github.com/jsxstyle/jsxstyle-sub000/store"
)

// ErrOutputExists is returned when an output is already present and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// Summary describes a run. It is stored in the debug report.
type Summary struct {
	RunID      string   `yaml:"run_id"`
	Units      int      `yaml:"units"`
	Rewritten  int      `yaml:"rewritten"`
	Elements   int      `yaml:"elements"`
	Rules      int      `yaml:"rules"`
	Errors     int      `yaml:"errors"`
	Dynamic    []string `yaml:"dynamic,omitempty"`
	Failed     []string `yaml:"failed,omitempty"`
	Outputs    []string `yaml:"outputs,omitempty"`
	Elapsed    string   `yaml:"elapsed,omitempty"`
	Stylesheet string   `yaml:"stylesheet,omitempty"`
}

// Builder runs extraction for units and writes outputs under a destination
// directory. It is not safe for concurrent use.
type Builder struct {
	env *state.LocalEnv
	cfg *config.ExtractConfig
	log *zap.Logger
	dst string

	parser  *jsx.Parser
	x       *extract.Extractor
	naming  css.Naming
	exts    map[string]bool
	names   *css.ClassNameCache // shared cache scope only
	emitted *css.EmissionLog    // shared cache scope only
	store   *store.Store

	// outputs written by this builder, they may be replaced without
	// --overwrite when units are processed again
	written map[string]bool
	errs    error
	summary Summary
}

// NewBuilder prepares everything units need: module table, class name cache
// and persistent store.
func NewBuilder(env *state.LocalEnv, dst string, log *zap.Logger) (*Builder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &env.Cfg.Extract

	naming, err := cfg.Naming.Naming()
	if err != nil {
		return nil, err
	}
	mods, err := modules.Load(cfg.ModulesFile)
	if err != nil {
		return nil, err
	}
	if len(mods) > 0 {
		log.Debug("Module table loaded", zap.String("file", cfg.ModulesFile), zap.Int("modules", len(mods)))
	}

	b := &Builder{
		env:     env,
		cfg:     cfg,
		log:     log,
		dst:     dst,
		parser:  jsx.NewParser(log),
		naming:  naming,
		exts:    make(map[string]bool, len(cfg.Extensions)),
		written: make(map[string]bool),
		summary: Summary{RunID: env.RunID.String()},
	}
	for _, ext := range cfg.Extensions {
		b.exts[strings.ToLower(ext)] = true
	}

	if cfg.CacheScope.Shared() {
		b.names = css.NewClassNameCache(naming, "")
		b.emitted = css.NewEmissionLog()
		if cfg.StorePath != "" {
			if b.store, err = store.Open(cfg.StorePath, log); err != nil {
				return nil, err
			}
			if _, err := b.store.Seed(b.names, naming); err != nil {
				return nil, multierr.Append(err, b.store.Close())
			}
		}
	} else if cfg.StorePath != "" {
		log.Warn("Class name store requires shared cache scope, ignoring", zap.String("store", cfg.StorePath))
	}

	b.x, err = extract.New(extract.Options{
		ComponentModules: cfg.ComponentModules,
		OutputElement:    cfg.OutputElement,
		Naming:           naming,
		ClassPrefix:      cfg.ClassPrefix,
		Names:            b.names,
		Emitted:          b.emitted,
		Modules:          mods,
		Strict:           cfg.Strict,
	}, log)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("bad extraction configuration: %w", err), b.store.Close())
	}
	return b, nil
}

func (b *Builder) shared() bool {
	return b.names != nil
}

// Summary returns counters collected so far.
func (b *Builder) Summary() Summary {
	return b.summary
}

// Err returns error diagnostics collected from all units.
func (b *Builder) Err() error {
	return b.errs
}

// processUnit runs the whole pipeline for a single unit. "src" is the unit
// path relative to the source root (just the base name when a single file was
// requested), "unitPath" is the absolute path used to resolve relative
// imports.
func (b *Builder) processUnit(ctx context.Context, r io.Reader, src, unitPath string) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.summary.Units++

	log := b.log.With(zap.String("unit", src))
	var outputName string

	log.Debug("Extraction starting")
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Extraction ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("extraction panic: %v", r)
		}
		if rerr != nil {
			b.summary.Failed = append(b.summary.Failed, src)
			return
		}
		log.Debug("Extraction completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
	}(time.Now())

	data, err := jsx.Decode(r, b.env.Encoding)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", src, err)
	}
	prog, err := b.parser.Parse(ctx, data, unitPath)
	if err != nil {
		return err
	}
	res, err := b.x.Process(prog)
	if err != nil {
		return fmt.Errorf("unable to extract styles (%s): %w", src, err)
	}

	if res.Dynamic {
		b.summary.Dynamic = append(b.summary.Dynamic, src)
	}
	if res.Err != nil {
		b.summary.Errors += len(multierr.Errors(res.Err))
		b.errs = multierr.Append(b.errs, res.Err)
	}
	if len(res.Replacements) == 0 {
		log.Debug("Nothing to extract")
		return nil
	}

	out, err := jsx.Render(data, res.Replacements)
	if err != nil {
		return fmt.Errorf("unable to rewrite source (%s): %w", src, err)
	}

	outputName = b.unitOutputPath(src)
	var sheet string
	switch {
	case b.shared():
		sheet = b.sharedStylesheetPath()
	case len(res.Rules) > 0:
		sheet = b.stylesheetPath(src)
	}
	if sheet != "" && b.cfg.InjectImport {
		out = jsx.PrependImport(out, importPath(outputName, sheet))
	}

	// nothing is written unless every output of the unit can be
	if err := b.checkOutput(outputName); err != nil {
		return err
	}
	if !b.shared() && len(res.Rules) > 0 {
		if err := b.checkOutput(sheet); err != nil {
			return err
		}
		ss := css.NewStylesheet(res.Rules)
		ss.Banner = b.banner(src, len(res.Rules))
		if err := b.writeStylesheet(sheet, ss); err != nil {
			return err
		}
	}
	if err := b.writeOutput(outputName, out); err != nil {
		return err
	}

	b.summary.Rewritten++
	b.summary.Elements += len(res.Replacements)
	b.summary.Rules += len(res.Rules)
	log.Info("Unit rewritten", zap.Int("elements", len(res.Replacements)), zap.Int("rules", len(res.Rules)), zap.Bool("dynamic", res.Dynamic))
	return nil
}

// Finish writes the shared stylesheet, saves class names to the persistent
// store and records the run summary in the debug report. It may be called
// repeatedly (watch mode), the store stays open until Close.
func (b *Builder) Finish(source string) error {
	if b.shared() && b.emitted.Len() > 0 {
		sheet := b.sharedStylesheetPath()
		ss := css.NewStylesheet(b.emitted.Rules())
		ss.Banner = b.banner(source, b.emitted.Len())
		if err := b.writeStylesheet(sheet, ss); err != nil {
			return err
		}
		b.summary.Stylesheet = sheet
	}
	if b.store != nil {
		if err := b.store.Save(b.names, b.naming); err != nil {
			return err
		}
	}
	b.summary.Elapsed = b.env.Uptime().Round(time.Millisecond).String()
	if data, err := yaml.Marshal(b.summary); err == nil {
		b.env.Rpt.StoreData("summary.yaml", data)
	}
	return nil
}

// Close releases the persistent store.
func (b *Builder) Close() error {
	if b.store == nil {
		return nil
	}
	return b.store.Close()
}

func (b *Builder) writeStylesheet(name string, ss *css.Stylesheet) error {
	if err := b.writeOutput(name, []byte(ss.String())); err != nil {
		return err
	}
	if rel, err := filepath.Rel(b.dst, name); err == nil {
		b.env.Rpt.Store("stylesheets/"+filepath.ToSlash(rel), name)
	}
	return nil
}

// checkOutput makes sure output may be written: existing files are only
// replaced when overwriting was requested or when they were written by this
// builder.
func (b *Builder) checkOutput(name string) error {
	if b.written[name] {
		return nil
	}
	if _, err := os.Stat(name); err == nil {
		if !b.env.Overwrite {
			return fmt.Errorf("%w: %s", ErrOutputExists, name)
		}
		b.log.Warn("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}

func (b *Builder) writeOutput(name string, data []byte) error {
	if err := b.checkOutput(name); err != nil {
		return err
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	if !b.written[name] {
		b.written[name] = true
		b.summary.Outputs = append(b.summary.Outputs, name)
	}
	return nil
}
