package table

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileWatcher polls the *.yaml files of some directories and triggers a
// callback when one is created, modified or removed.
type FileWatcher struct {
	Dirs      []string
	Interval  time.Duration
	onChange  func(string) // called with path that changed
	stopOnce  sync.Once
	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given dirs and interval.
func NewFileWatcher(dirs []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Dirs:      dirs,
		Interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start primes the mtimes, then polls in a goroutine until ctx is done or
// Stop is called.
func (w *FileWatcher) Start(ctx context.Context) {
	w.scanAll(true)
	ticker := time.NewTicker(w.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scanAll(false)
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scanAll checks mtimes and invokes onChange for files that changed since last scan.
func (w *FileWatcher) scanAll(prime bool) {
	seen := make(map[string]bool, len(w.lastMTime))
	for _, dir := range w.Dirs {
		files, _ := filepath.Glob(filepath.Join(dir, "*.yaml"))
		for _, p := range files {
			fi, err := os.Stat(p)
			if err != nil {
				// removed between glob and stat; the next scan reports it
				continue
			}
			seen[p] = true
			mt := fi.ModTime()
			last, ok := w.lastMTime[p]
			w.lastMTime[p] = mt
			if prime {
				continue
			}
			if !ok || mt.After(last) {
				w.fire(p)
			}
		}
	}
	for p := range w.lastMTime {
		if !seen[p] {
			delete(w.lastMTime, p)
			w.fire(p)
		}
	}
}

func (w *FileWatcher) fire(path string) {
	if w.onChange != nil {
		w.onChange(path)
	}
}
