package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/onionpad/internal/logging"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to the configuration file and scripts.
//
// It watches the directories holding the files so that editors replacing a
// file by rename are noticed. Bursts of events are coalesced into one
// notification. Notifications are consumed with Changed, which never
// blocks, so the tick loop can poll it.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]bool
	patterns []string
	dirs     map[string]bool
	debounce time.Duration
	timer    *time.Timer
	log      *logging.Logger

	changes  chan struct{}
	closeCh  chan struct{}
	closedWg sync.WaitGroup
	closed   bool
}

// NewWatcher creates a watcher. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(debounce time.Duration, log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logging.NullLogger
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		log:      log.WithComponent("watcher"),
		changes:  make(chan struct{}, 1),
		closeCh:  make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch adds files to the watched set.
func (w *Watcher) Watch(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving path %s: %w", path, err)
		}
		if err := w.watchDir(filepath.Dir(abs)); err != nil {
			return err
		}
		w.files[abs] = true
	}
	return nil
}

// WatchGlob reports files matching pattern, including files created after
// the call. Only the last path element may contain wildcards. Adding a
// pattern again has no effect.
func (w *Watcher) WatchGlob(pattern string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	abs, err := filepath.Abs(pattern)
	if err != nil {
		return fmt.Errorf("resolving pattern %s: %w", pattern, err)
	}
	if _, err := filepath.Match(abs, abs); err != nil {
		return fmt.Errorf("pattern %s: %w", pattern, err)
	}
	if slices.Contains(w.patterns, abs) {
		return nil
	}
	if err := w.watchDir(filepath.Dir(abs)); err != nil {
		return err
	}
	w.patterns = append(w.patterns, abs)
	return nil
}

func (w *Watcher) watchDir(dir string) error {
	if w.dirs[dir] {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return nil
}

// Changes returns the notification channel. It holds at most one pending
// notification.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Changed reports whether a change happened since the last call.
func (w *Watcher) Changed() bool {
	select {
	case <-w.changes:
		return true
	default:
		return false
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	// Wait for processLoop to finish
	w.closedWg.Wait()

	return w.watcher.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || !w.matches(ev.Name) {
		return
	}
	w.log.Debug("%s %s", ev.Op, ev.Name)

	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.notify)
		return
	}
	w.timer.Reset(w.debounce)
}

// matches reports whether path is watched. Callers hold w.mu.
func (w *Watcher) matches(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	for _, pattern := range w.patterns {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
		// A notification is already pending.
	}
}
