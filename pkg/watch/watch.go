// Package watch re-runs work when a family tree file changes on disk.
//
// The watcher observes the file's directory rather than the file itself so
// that editors which save by rename are still seen. Bursts of events are
// coalesced by a [Debouncer].
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnChange sets the callback invoked after each debounced change.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked on watcher errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher monitors a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)

	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	changeCh  chan struct{}

	mu      sync.RWMutex
	cancel  context.CancelFunc
	started bool
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		onChange: func() {},
		onError:  func(error) {},
		changeCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// Changed receives after each debounced change. Sends never block; bursts
// that arrive while a value is pending are merged.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

// Start begins watching. The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	if _, err := os.Stat(w.path); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.started = true
	go w.loop(ctx, fsw)
	return nil
}

// Stop ends watching and drops any pending change.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}
	w.cancel()
	w.fsw.Close()
	w.fsw = nil
	w.debouncer.Cancel()
	w.started = false
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove != 0:
				w.onError(ErrFileRemoved)
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.notify)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) notify() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}

	w.onChange()

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
