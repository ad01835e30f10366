package watcher

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/depcache/internal/adapters/fs" //nolint:depguard // Wired in adapter layer
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher reports class file changes using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	walker    *fs.Walker
	logger    ports.Logger
	root      string
	events    chan ports.ClassEvent
}

// NewWatcher creates a watcher. Directories and files the walker skips are ignored.
func NewWatcher(walker *fs.Walker, logger ports.Logger) *Watcher {
	return &Watcher{
		walker: walker,
		logger: logger,
		events: make(chan ports.ClassEvent, eventChannelBuffer),
	}
}

// Start begins watching root recursively.
func (w *Watcher) Start(ctx context.Context, root string) error {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return zerr.With(zerr.Wrap(domain.ErrClassDirNotFound, "failed to start watcher"), "dir", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	w.fsWatcher = watcher
	w.root = root

	for dir := range w.walker.Dirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			_ = w.fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "dir", dir)
		}
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	if w.fsWatcher == nil {
		return nil
	}
	return w.fsWatcher.Close()
}

// Events returns an iterator of class file events.
func (w *Watcher) Events() iter.Seq[ports.ClassEvent] {
	return func(yield func(ports.ClassEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) && !w.watchNewDir(ctx, event.Name) {
				return
			}

			classEvent, ok := w.convertEvent(event)
			if !ok {
				continue
			}
			select {
			case w.events <- classEvent:
			case <-ctx.Done():
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error: " + err.Error())
		}
	}
}

// watchNewDir adds a directory created after Start, including anything the
// compiler already wrote below it. It returns false once ctx is done.
func (w *Watcher) watchNewDir(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return true
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || w.walker.SkipsDir(rel) {
		return true
	}
	for dir := range w.walker.Dirs(path) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory " + dir + ": " + err.Error())
		}
	}
	for rel, err := range w.walker.WalkClasses(path) {
		if err != nil {
			break
		}
		classEvent, ok := w.classEvent(filepath.Join(path, filepath.FromSlash(rel)), ports.OpWrite)
		if !ok {
			continue
		}
		select {
		case w.events <- classEvent:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *Watcher) convertEvent(event fsnotify.Event) (ports.ClassEvent, bool) {
	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		return w.classEvent(event.Name, ports.OpWrite)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return w.classEvent(event.Name, ports.OpRemove)
	default:
		return ports.ClassEvent{}, false
	}
}

func (w *Watcher) classEvent(path string, op ports.WatchOp) (ports.ClassEvent, bool) {
	if !strings.HasSuffix(path, domain.ClassFileExt) {
		return ports.ClassEvent{}, false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ports.ClassEvent{}, false
	}
	rel = filepath.ToSlash(rel)
	if w.walker.Skipped(rel) {
		return ports.ClassEvent{}, false
	}
	return ports.ClassEvent{Path: rel, Class: fs.ClassName(rel), Operation: op}, true
}
