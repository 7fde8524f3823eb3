// Package watcher reports changes to a single file.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of editor writes into one change
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a file for changes
type Watcher struct {
	path     string
	onChange func(ctx context.Context)
	debounce time.Duration
}

// New creates a new file watcher
func New(path string, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch calls onChange after the file is written or replaced, at most once
// per debounce window. It blocks until ctx is cancelled or the fsnotify
// watcher fails to start.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory so editors that replace the file are seen
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	log.Printf("Watching %s for changes", abs)

	// The timer only signals; onChange runs on this goroutine so it never
	// outlives Watch
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			log.Printf("File changed: %s", abs)
			w.onChange(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
