package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// ErrWatchArchive is returned when watching was requested for an archive.
var ErrWatchArchive = errors.New("watching is not supported for archives")

// watch re-runs extraction for source files changed under src until ctx is
// done. Outputs written by the builder itself are ignored.
func (b *Builder) watch(ctx context.Context, src string) error {
	fi, err := os.Stat(src)
	if err != nil {
		// path inside of archive
		return ErrWatchArchive
	}
	single := !fi.IsDir()
	if single {
		if isArchive, err := isArchiveFile(src); err != nil || isArchive {
			return ErrWatchArchive
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	addDir := func(dir string) error { return watchDirRecursive(w, dir) }
	if single {
		err = w.Add(filepath.Dir(src))
	} else {
		err = addDir(src)
	}
	if err != nil {
		return err
	}

	b.log.Info("Watching for changes", zap.String("source", src), zap.Int("debounce_ms", b.env.Cfg.Watch.DebounceMs))
	return b.eventLoop(ctx, src, single, w.Events, w.Errors, addDir)
}

// watchDirRecursive adds a directory and its subdirectories to the watch
// list skipping hidden ones.
func watchDirRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}

// eventLoop collects changed sources and processes them once no new changes
// arrived for the debounce interval.
func (b *Builder) eventLoop(ctx context.Context, root string, single bool, events <-chan fsnotify.Event, errs <-chan error, addDir func(string) error) error {
	debounce := time.Duration(b.env.Cfg.Watch.DebounceMs) * time.Millisecond

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if b.written[event.Name] {
				continue
			}
			if !single && event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if !b.ignored(root, event.Name) {
						if err := addDir(event.Name); err != nil {
							b.log.Warn("Unable to watch directory", zap.String("dir", event.Name), zap.Error(err))
						}
					}
					continue
				}
			}
			if single && event.Name != root {
				continue
			}
			if !single && (!isSourceFile(event.Name, b.exts) || b.ignored(root, event.Name)) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			b.log.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			b.rebuild(ctx, root, single, pending)
			pending = make(map[string]bool)
		}
	}
}

// ignored reports whether path is inside of a hidden directory under root.
func (b *Builder) ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if isHidden(part) {
			return true
		}
	}
	return false
}

func (b *Builder) rebuild(ctx context.Context, root string, single bool, changed map[string]bool) {
	paths := make([]string, 0, len(changed))
	for p := range changed {
		paths = append(paths, p)
	}
	sort.Sort(natural.StringSlice(paths))

	start := time.Now()
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		src := filepath.Base(path)
		if !single {
			src = strings.TrimPrefix(strings.TrimPrefix(path, root), string(filepath.Separator))
		}
		if err := b.processFile(ctx, path, src); err != nil {
			b.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	if err := b.Finish(filepath.Base(root)); err != nil {
		b.log.Error("Unable to finish rebuild", zap.Error(err))
	}
	b.log.Info("Rebuild completed", zap.Int("units", len(paths)), zap.Duration("elapsed", time.Since(start)))
}
