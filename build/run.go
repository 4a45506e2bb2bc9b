// Package build drives extraction over files, directories and zip archives
// and writes rewritten sources with their stylesheets.
package build

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jsxstyle/jsxstyle-sub000/archive"
	"github.com/jsxstyle/jsxstyle-sub000/state"
)

// ErrStrict is returned in strict mode when any unit still needs the runtime
// or could not be processed.
var ErrStrict = errors.New("extraction finished with errors")

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("extract")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite, env.Watch = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("watch")
	env.Encoding = cmd.String("encoding")
	if cmd.Bool("strict") {
		env.Cfg.Extract.Strict = true
	}
	return Extract(ctx, src, dst)
}

// Extract processes src writing results under dst (current directory when
// empty) using environment from ctx.
func Extract(ctx context.Context, src, dst string) (err error) {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("extract")

	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	b, err := NewBuilder(env, dst, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, b.Close())
	}()

	log.Info("Processing starting",
		zap.String("source", src), zap.String("destination", dst), zap.Stringer("run_id", env.RunID),
		zap.Stringer("naming", b.naming), zap.String("cache_scope", string(b.cfg.CacheScope)))
	defer func(start time.Time) {
		s := b.Summary()
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int("units", s.Units), zap.Int("rewritten", s.Rewritten), zap.Int("rules", s.Rules),
			zap.Int("dynamic", len(s.Dynamic)), zap.Int("failed", len(s.Failed)))
	}(time.Now())

	if err := b.process(ctx, src); err != nil {
		return err
	}
	if err := b.Finish(filepath.Base(src)); err != nil {
		return err
	}

	if env.Watch {
		if err := b.watch(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	if b.cfg.Strict {
		s := b.Summary()
		if s.Errors > 0 || len(s.Failed) > 0 {
			err := fmt.Errorf("%w: %d error(s), %d unit(s) failed", ErrStrict, s.Errors, len(s.Failed))
			if b.Err() != nil {
				err = fmt.Errorf("%w: %w", err, b.Err())
			}
			return err
		}
	}
	return nil
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly.
func (b *Builder) process(ctx context.Context, src string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := b.processDir(ctx, head); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := b.processArchive(ctx, head, filepath.ToSlash(tail), ""); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if len(tail) == 0 && isSourceFile(head, b.exts) {
			if err := b.processFile(ctx, head, filepath.Base(head)); err != nil {
				b.log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as source file (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding source files and archives and
// processes them in natural order.
func (b *Builder) processDir(ctx context.Context, dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			b.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != dir && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if path == b.env.Rpt.Name() || !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	count := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			b.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			count++
			if err := b.processArchive(ctx, path, "", filepath.Dir(rel)); err != nil {
				b.log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}
		if !isSourceFile(path, b.exts) {
			continue
		}
		count++
		if err := b.processFile(ctx, path, rel); err != nil {
			b.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	if count == 0 {
		b.log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

func (b *Builder) processFile(ctx context.Context, path, src string) error {
	file, err := os.Open(path)
	if err != nil {
		b.summary.Failed = append(b.summary.Failed, src)
		return err
	}
	defer file.Close()
	return b.processUnit(ctx, file, src, path)
}

// processArchive walks all source files inside archive under "pathIn" and
// processes them. Outputs go under "pathOut" relative to destination.
func (b *Builder) processArchive(ctx context.Context, path, pathIn, pathOut string) error {
	count := 0
	err := archive.Walk(path, pathIn, func(name string) bool { return isSourceFile(name, b.exts) },
		func(arc string, f *zip.File) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++

			r, err := f.Open()
			if err != nil {
				b.summary.Failed = append(b.summary.Failed, f.Name)
				b.log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
				return nil
			}
			defer r.Close()

			name := filepath.FromSlash(f.Name)
			// relative imports inside archive resolve as if it was unpacked
			// next to itself
			unitPath := filepath.Join(strings.TrimSuffix(arc, filepath.Ext(arc)), name)
			if err := b.processUnit(ctx, r, filepath.Join(pathOut, name), unitPath); err != nil {
				b.log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
			}
			return nil
		})
	if err == nil && count == 0 {
		b.log.Debug("Nothing to process", zap.String("archive", path))
	}
	return err
}
