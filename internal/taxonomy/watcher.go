package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"rolefit/internal/errors"
)

// ReloadFunc is notified after every reload attempt. t is nil when err is set.
type ReloadFunc func(t *Taxonomy, err error)

// Watcher reloads a taxonomy file into a Holder whenever the file changes.
// A file that fails to parse or validate leaves the previous taxonomy in place.
type Watcher struct {
	mu sync.Mutex

	path   string
	holder *Holder

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	lastModTime   time.Time

	stopChan   chan struct{}
	reloadChan chan struct{}
	done       chan struct{}

	onReload ReloadFunc
	logger   *errors.Logger

	running bool
}

// NewWatcher creates a watcher for path feeding holder.
func NewWatcher(path string, holder *Holder, debounceDelay time.Duration, onReload ReloadFunc, logger *errors.Logger) *Watcher {
	if debounceDelay <= 0 {
		debounceDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = errors.Nop()
	}
	return &Watcher{
		path:          filepath.Clean(path),
		holder:        holder,
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1),
		onReload:      onReload,
		logger:        logger,
	}
}

// Start begins watching. The file's directory is watched so editors that
// replace the file by rename are picked up. A stopped watcher can be
// started again.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("taxonomy watcher is already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	w.fsWatcher = fsw

	if stat, err := os.Stat(w.path); err == nil {
		w.lastModTime = stat.ModTime()
	}

	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true
	go w.watchLoop(fsw, w.stopChan, w.done)

	w.logger.Info("Taxonomy file watcher started", "file", w.path, "debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	err := w.fsWatcher.Close()
	done := w.done
	w.running = false
	w.mu.Unlock()

	<-done
	w.logger.Info("Taxonomy file watcher stopped")
	return err
}

// Reload loads the file now and swaps it in on success.
func (w *Watcher) Reload() error {
	t, err := LoadFile(w.path)
	if err != nil {
		w.logger.LogError(err, "Taxonomy reload failed, keeping previous taxonomy", "file", w.path)
		if w.onReload != nil {
			w.onReload(nil, err)
		}
		return err
	}

	w.holder.Swap(t)
	w.logger.Info("Taxonomy reloaded", "file", w.path, "branches", len(t.ListBranches()))
	if w.onReload != nil {
		w.onReload(t, nil)
	}
	return nil
}

func (w *Watcher) watchLoop(fsw *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.isRelevant(event) {
				w.scheduleReload()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Taxonomy watcher error")

		case <-w.reloadChan:
			if w.hasChanged() {
				_ = w.Reload()
			}

		case <-stop:
			return
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) hasChanged() bool {
	stat, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if stat.ModTime().Equal(w.lastModTime) {
		return false
	}
	w.lastModTime = stat.ModTime()
	return true
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
