// Package watch reruns a callback when a schema file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher watches one file. Editors often write a file several times in a
// row, so change events are debounced.
type Watcher struct {
	file     string
	watcher  *fsnotify.Watcher
	Debounce time.Duration
	// OnError receives callback and watcher errors; nil drops them
	OnError func(error)
}

// New creates a watcher for file. The containing directory is watched so
// that editors replacing the file are still seen.
func New(file string) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}
	return &Watcher{file: abs, watcher: w, Debounce: DefaultDebounce}, nil
}

// Run calls onChange once, then after every change to the file, until ctx
// is done. Errors from onChange after the first call go to OnError.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	defer w.watcher.Close()
	if err := onChange(); err != nil {
		return err
	}

	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if path, err := filepath.Abs(event.Name); err == nil && path == w.file {
				timer.Reset(w.Debounce)
				pending = timer.C
			}
		case <-pending:
			pending = nil
			if err := onChange(); err != nil {
				w.report(err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.report(err)
		}
	}
}

func (w *Watcher) report(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}
