// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch watches a content directory tree and reports markdown
// changes in debounced batches.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/concepts/internal/logger"
)

// DefaultDelay is the quiet period after the last event before a batch is
// reported.
const DefaultDelay = 300 * time.Millisecond

// ChangeHandler receives the sorted, de-duplicated paths of one batch.
type ChangeHandler func(paths []string)

// Option configures a Watcher.
type Option func(*Watcher)

// Delay sets the debounce delay.
func Delay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithClock sets the clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) { w.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) { w.log = logger.OrNop(l) }
}

// Watcher reports markdown changes under a directory tree. Directories
// created while running are watched too. Hidden entries and entries
// starting with "_" are ignored.
type Watcher struct {
	root     string
	onChange ChangeHandler
	delay    time.Duration
	clock    clock.Clock
	log      *logger.Logger
}

// New returns a Watcher for root.
func New(root string, onChange ChangeHandler, opts ...Option) *Watcher {
	w := &Watcher{
		root:     filepath.Clean(root),
		onChange: onChange,
		delay:    DefaultDelay,
		clock:    clock.New(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. The handler runs on Run's goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}
	w.log.Info("watching content", "dir", w.root, "delay", w.delay)

	var (
		timer   *clock.Timer
		fire    = make(chan struct{}, 1)
		pending = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fsw, event) {
				continue
			}
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = w.clock.AfterFunc(w.delay, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-fire:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)
			w.log.Debug("content changed", "paths", len(paths))
			w.onChange(paths)
		}
	}
}

// relevant reports whether event should trigger a batch. New directories
// are added to the watch list as a side effect.
func (w *Watcher) relevant(fsw *fsnotify.Watcher, event fsnotify.Event) bool {
	if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, event.Name); err != nil {
				w.log.Warn("watching new directory", "dir", event.Name, "error", err)
			}
			return true
		}
	}
	if strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return true
	}
	// A removed or renamed directory no longer exists to stat.
	return (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) && filepath.Ext(event.Name) == ""
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") || strings.HasPrefix(part, "_") {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
