// Package watch re-runs analysis when source files change, debouncing
// bursts of filesystem events.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/propscope/pkg/parser"
)

// Options configures a Watcher.
type Options struct {
	// Debounce groups rapid changes to one notification per file.
	// Zero means 200ms.
	Debounce time.Duration
	// IgnoreDirs are directory names never watched or reported.
	IgnoreDirs []string
}

// DefaultOptions ignores the usual dependency and build trees.
func DefaultOptions() Options {
	return Options{
		Debounce:   200 * time.Millisecond,
		IgnoreDirs: []string{"node_modules", ".git", "dist", "build", ".next", "coverage", "out"},
	}
}

// Watcher watches a source tree and reports changed analyzable files.
// Consumers invalidate their caches and re-run whatever analysis they
// need; the watcher itself performs no analysis.
type Watcher struct {
	fsw     *fsnotify.Watcher
	opts    Options
	onEvent func(path string)
	logger  *slog.Logger

	timersMu sync.Mutex
	timers   map[string]*time.Timer

	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
}

// New creates a Watcher delivering debounced per-file notifications to
// onEvent. onEvent runs on a timer goroutine and must be safe for
// concurrent calls.
func New(opts Options, onEvent func(path string), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce == 0 {
		opts.Debounce = 200 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	return &Watcher{
		fsw:     fsw,
		opts:    opts,
		onEvent: onEvent,
		logger:  logger,
		timers:  make(map[string]*time.Timer),
		stop:    make(chan struct{}),
	}, nil
}

// Start watches rootPath and all non-ignored subdirectories, then runs
// the event loop in the background.
func (w *Watcher) Start(rootPath string) error {
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("setup watches: %w", err)
	}

	w.logger.Info("file watcher started", "root", rootPath)
	go w.eventLoop()
	return nil
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stop)

	w.timersMu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = make(map[string]*time.Timer)
	w.timersMu.Unlock()

	return w.fsw.Close()
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories must be added to the watch set.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.shouldIgnore(event.Name) {
				_ = w.fsw.Add(event.Name)
			}
			return
		}
	}

	if !parser.IsSupportedFile(event.Name) || w.shouldIgnore(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.debounce(event.Name)
}

// debounce re-arms a per-file timer; the notification fires once the
// file has been quiet for the debounce window.
func (w *Watcher) debounce(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.timersMu.Lock()
		delete(w.timers, path)
		w.timersMu.Unlock()

		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}

		w.logger.Debug("file changed", "path", path)
		w.onEvent(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, part := range parts {
		for _, ignored := range w.opts.IgnoreDirs {
			if part == ignored {
				return true
			}
		}
	}
	return false
}
