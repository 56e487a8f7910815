package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/fardannozami/habit-bot/internal/logger"
)

// WatcherConfig configures the file watcher
type WatcherConfig struct {
	// Root is the directory watched recursively.
	Root string

	// Extensions limits which files count as changes, e.g. ".go". Empty
	// means every file.
	Extensions []string

	// DebounceDelay is how long the tree must be quiet before a burst of
	// changes is reported.
	DebounceDelay time.Duration

	Logger *log.Logger
}

// Watcher reports bursts of source changes under a directory tree. Each
// burst produces a single value on Changes, carrying the last path seen.
type Watcher struct {
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *log.Logger

	pendingMu sync.Mutex
	pending   string

	changes chan string
}

func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	l := config.Logger
	if l == nil {
		l = logger.Get()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = time.Second
	}
	if config.Root == "" {
		config.Root = "."
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  l,
		// One slot: a burst that arrives while a restart is already queued
		// folds into it.
		changes: make(chan string, 1),
	}, nil
}

// Changes returns the channel of debounced change notifications. It is
// closed when the watcher stops.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Start adds the watches and processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("File watcher started",
		"root", w.config.Root,
		"extensions", w.config.Extensions,
		"debounce", w.config.DebounceDelay)
	return nil
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func skipDir(path string) bool {
	base := filepath.Base(path)
	return base == "vendor" || base == "node_modules" || strings.HasPrefix(base, ".")
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)

	timer := time.NewTimer(w.config.DebounceDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleFSEvent(event) {
				timer.Reset(w.config.DebounceDelay)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-timer.C:
			w.flushPending()
		}
	}
}

// handleFSEvent reports whether event is a change worth restarting for.
func (w *Watcher) handleFSEvent(event fsnotify.Event) bool {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !skipDir(path) {
				// Files may land in the directory before the watch exists.
				if err := w.addWatchesRecursive(path); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", path, "error", err)
				}
			}
			return false
		}
	}
	if event.Op == fsnotify.Chmod || !w.matches(path) {
		return false
	}

	w.pendingMu.Lock()
	w.pending = path
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected", "path", path, "op", event.Op.String())
	return true
}

func (w *Watcher) matches(path string) bool {
	if len(w.config.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range w.config.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	path := w.pending
	w.pending = ""
	w.pendingMu.Unlock()

	if path == "" {
		return
	}

	select {
	case w.changes <- path:
	default:
		w.logger.Debug("Restart already pending", "path", path)
	}
}
