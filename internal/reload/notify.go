package reload

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// notifier marks the watched file dirty when the filesystem reports a
// change. The loop still stats the file each tick; the notifier only
// forces a reload attempt for editors that rewrite files without
// advancing the mtime resolution.
type notifier struct {
	watcher *fsnotify.Watcher
	target  string
	dirty   atomic.Bool
	done    chan struct{}
}

// newNotifier watches the directory containing path. Watching the
// directory instead of the file keeps the watch alive across the
// rename-and-replace save pattern most editors use.
func newNotifier(path string) (*notifier, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	n := &notifier{
		watcher: watcher,
		target:  abs,
		done:    make(chan struct{}),
	}
	go n.run()
	return n, nil
}

func (n *notifier) run() {
	for {
		select {
		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != n.target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				n.dirty.Store(true)
			}
		case _, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
		case <-n.done:
			return
		}
	}
}

// consumeDirty reports and clears the pending-change flag.
func (n *notifier) consumeDirty() bool {
	return n.dirty.Swap(false)
}

func (n *notifier) close() {
	close(n.done)
	n.watcher.Close()
}
