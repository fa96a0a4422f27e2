// Package observer watches a corpus folder and reports new instance files
// so watch mode can benchmark them as they arrive.
package observer

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// NewFilesCallback is called with newly written files matching the pattern
type NewFilesCallback func(files []string)

// CorpusWatcher monitors a folder for new instance files
type CorpusWatcher struct {
	watcher  *fsnotify.Watcher
	folder   string
	pattern  string
	callback NewFilesCallback
	debounce time.Duration

	// Debounce state
	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
}

// NewCorpusWatcher creates a watcher for the given folder and glob pattern
func NewCorpusWatcher(folder, pattern string, callback NewFilesCallback) (*CorpusWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(folder); err != nil {
		watcher.Close()
		return nil, err
	}

	return &CorpusWatcher{
		watcher:  watcher,
		folder:   folder,
		pattern:  pattern,
		callback: callback,
		debounce: 500 * time.Millisecond, // Debounce rapid changes
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins watching for file changes
func (cw *CorpusWatcher) Start(ctx context.Context) {
	ctx, cw.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-cw.watcher.Events:
				if !ok {
					return
				}
				cw.handleEvent(event)
			case _, ok := <-cw.watcher.Errors:
				if !ok {
					return
				}
				// Keep watching
			}
		}
	}()
}

// Stop stops watching for file changes
func (cw *CorpusWatcher) Stop() {
	if cw.cancel != nil {
		cw.cancel()
	}
	cw.watcher.Close()
}

// SetDebounce sets the debounce duration for batching file changes
func (cw *CorpusWatcher) SetDebounce(d time.Duration) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.debounce = d
}

func (cw *CorpusWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !cw.matches(event.Name) {
		return
	}

	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.pending[event.Name] = struct{}{}

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.flush)
}

// matches applies the configured glob to the file's base name
func (cw *CorpusWatcher) matches(path string) bool {
	if cw.pattern == "" {
		return true
	}
	ok, err := filepath.Match(cw.pattern, filepath.Base(path))
	return err == nil && ok
}

func (cw *CorpusWatcher) flush() {
	cw.mu.Lock()
	pending := cw.pending
	cw.pending = make(map[string]struct{})
	cw.mu.Unlock()

	if cw.callback == nil || len(pending) == 0 {
		return
	}

	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
	}
	cw.callback(files)
}
