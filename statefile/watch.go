package statefile

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

// Watcher reports changes to state files and the scripts next to them.
// The parent directories are watched; events are kept for the given files and
// for any .yaml, .yml or .tengo file in a watched directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	events  chan string
	errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher watches paths, which may be files or directories.
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}

		dir := abs
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			files[abs] = true
			dir = filepath.Dir(abs)
		}

		if dirs[dir] {
			continue
		}

		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}

		dirs[dir] = true
	}

	watcher := &Watcher{
		watcher: w,
		files:   files,
		events:  make(chan string, 16),
		errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}

	go watcher.run()

	return watcher, nil
}

// Events delivers the path of every relevant change. It is closed by Close.
func (w *Watcher) Events() <-chan string { return w.events }

// Errors delivers watcher failures. It is closed by Close.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Changed drains pending events and reports whether there were any. It never
// blocks, so hosts can poll it once per frame.
func (w *Watcher) Changed() bool {
	changed := false

	for {
		select {
		case _, ok := <-w.events:
			if !ok {
				return changed
			}

			changed = true
		default:
			return changed
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error

	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})

	return err
}

func (w *Watcher) run() {
	defer close(w.errors)
	defer close(w.events)

	last := make(map[string]time.Time)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			if !w.relevant(event.Name) {
				continue
			}

			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounce {
				continue
			}

			last[event.Name] = now

			select {
			case w.events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			select {
			case w.errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if w.files[path] {
		return true
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".tengo":
		return true
	}

	return false
}
