// Package watch reports batches of changed files under a directory tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tliron/commonlog"

	"github.com/mongodb-university/yokedox/config"
)

var log = commonlog.GetLogger("yokedox.watch")

type Options struct {
	Debounce   time.Duration
	Exclude    *config.Filter // slash separated paths relative to the root
	Extensions []string       // empty means every file
	Ignore     []string       // files never reported, such as our own output
}

// Watcher watches a directory tree. Directories created while watching are
// added as they appear; hidden directories are never watched.
type Watcher struct {
	root     string
	opts     Options
	fs       *fsnotify.Watcher
	onChange func(paths []string)
	pending  map[string]bool
}

// New watches root. onChange receives the sorted, root relative paths that
// changed during one quiet period. Calls never overlap.
func New(root string, opts Options, onChange func(paths []string)) (*Watcher, error) {
	ignore := make([]string, 0, len(opts.Ignore))
	for _, p := range opts.Ignore {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("ignore %s: %w", p, err)
		}
		ignore = append(ignore, abs)
	}
	opts.Ignore = ignore

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		opts:     opts,
		fs:       fsw,
		onChange: onChange,
		pending:  map[string]bool{},
	}
	if err := w.add(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) add(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.skipDir(p, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// Run delivers changes until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch: %s", err)

		case <-fire:
			fire = nil
			w.flush()
		}
	}
}

// handle records event and reports whether it changed a relevant file.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.skipDir(event.Name, info.Name()) {
				return false
			}
			if err := w.add(event.Name); err != nil {
				log.Warningf("%s", err)
			}
			return w.enqueueExisting(event.Name)
		}
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	rel, ok := w.relevant(event.Name)
	if ok {
		log.Debugf("changed: %s (%s)", rel, event.Op)
		w.pending[rel] = true
	}
	return ok
}

// enqueueExisting records the files of a directory that appeared after its
// parent was already watched.
func (w *Watcher) enqueueExisting(dir string) bool {
	found := false
	filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if rel, ok := w.relevant(p); ok {
			w.pending[rel] = true
			found = true
		}
		return nil
	})
	return found
}

func (w *Watcher) flush() {
	if len(w.pending) == 0 {
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	clear(w.pending)
	w.onChange(paths)
}

func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return "", false
		}
	}
	if !w.opts.Exclude.Empty() && w.opts.Exclude.Match(rel) {
		return "", false
	}
	if len(w.opts.Extensions) > 0 && !slices.Contains(w.opts.Extensions, filepath.Ext(rel)) {
		return "", false
	}
	if len(w.opts.Ignore) > 0 {
		if abs, err := filepath.Abs(path); err == nil && slices.Contains(w.opts.Ignore, abs) {
			return "", false
		}
	}
	return rel, true
}

func (w *Watcher) skipDir(path, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return !w.opts.Exclude.Empty() && (w.opts.Exclude.Match(rel) || w.opts.Exclude.Match(rel+"/"))
}
