package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	// DefaultDebounce is the delay used to coalesce rapid file events
	// (editors often fire several writes per save).
	DefaultDebounce = 300 * time.Millisecond

	// DefaultMinInterval is the minimum spacing between triggered runs.
	DefaultMinInterval = time.Second
)

// Config controls which changes trigger a run.
type Config struct {
	// Extensions are the file extensions to react to, e.g. [".py"].
	Extensions []string

	// Ignore lists directory names or path prefixes to skip entirely.
	Ignore []string

	// Debounce is how long to wait after the last event before
	// triggering. Zero means DefaultDebounce.
	Debounce time.Duration

	// MinInterval is the minimum time between two triggers. Zero means
	// DefaultMinInterval.
	MinInterval time.Duration
}

// Watcher watches directory trees and emits one trigger per settled
// burst of relevant file events.
type Watcher struct {
	fsw     *fsnotify.Watcher
	cfg     Config
	limiter *rate.Limiter
	changes chan string
	watched map[string]bool
}

// New creates a Watcher. Close must be called when done.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".py"}
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = DefaultMinInterval
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		fsw:     fsw,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		changes: make(chan string, 1),
		watched: make(map[string]bool),
	}, nil
}

// AddRecursive watches root and every directory below it, skipping
// ignored ones.
func (w *Watcher) AddRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if w.watched[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.watched[path] = true
		return nil
	})
}

// Changes delivers the path whose change triggered each run.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run processes filesystem events until the context is canceled or the
// underlying watcher closes. Newly created directories are added to the
// watch set as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.AddRecursive(event.Name)
					continue
				}
			}

			if !w.relevant(event) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			trigger := event.Name
			debounce = time.AfterFunc(w.cfg.Debounce, func() {
				if err := w.limiter.Wait(ctx); err != nil {
					return
				}
				select {
				case w.changes <- trigger:
				default:
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watcher error: %v\n", err)
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant reports whether an event should count as a change: a write,
// create, remove or rename of a file with a watched extension outside
// the ignore list.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.ignored(event.Name) {
		return false
	}
	ext := filepath.Ext(event.Name)
	for _, want := range w.cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// ignored reports whether a path falls under any ignore entry. Entries
// match by directory name anywhere in the path, or by path prefix.
func (w *Watcher) ignored(path string) bool {
	for _, ig := range w.cfg.Ignore {
		if ig == "" {
			continue
		}
		if strings.HasPrefix(path, ig) {
			return true
		}
		for _, part := range strings.Split(filepath.ToSlash(path), "/") {
			if part == ig {
				return true
			}
		}
	}
	return false
}
