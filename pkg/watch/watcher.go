// Package watch notifies callers when any of a set of input documents changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"

	"github.com/compozy/unitgen/pkg/logger"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher watches the parent directories of the given files so that editors
// replacing a file by rename are still observed.
type Watcher struct {
	watcher   *fsnotify.Watcher
	files     map[string]struct{}
	debounce  time.Duration
	mu        sync.RWMutex
	closeOnce sync.Once
}

func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]struct{}),
		debounce: debounce,
	}, nil
}

// Add registers a file. Empty paths are ignored.
func (w *Watcher) Add(path string) error {
	if path == "" {
		return nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	w.mu.Lock()
	_, seenDir := w.dirs()[filepath.Dir(absPath)]
	w.files[absPath] = struct{}{}
	w.mu.Unlock()
	if seenDir {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return nil
}

func (w *Watcher) dirs() map[string]struct{} {
	out := make(map[string]struct{}, len(w.files))
	for f := range w.files {
		out[filepath.Dir(f)] = struct{}{}
	}
	return out
}

// Run calls onChange once per burst of changes to a registered file until ctx
// is done or the watcher is closed. A burst longer than ten debounce periods
// still triggers onChange.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	log := logger.FromContext(ctx)
	var (
		mu      sync.Mutex
		pending string
	)
	fire, cancel := debounce.NewWithMaxWait(w.debounce, 10*w.debounce, func() {
		mu.Lock()
		path := pending
		mu.Unlock()
		onChange(path)
	})
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.tracked(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			pending = event.Name
			mu.Unlock()
			fire()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) tracked(name string) bool {
	absPath, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[absPath]
	return ok
}

func (w *Watcher) Close() error {
	var closeErr error
	w.closeOnce.Do(func() {
		if err := w.watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
	return closeErr
}
