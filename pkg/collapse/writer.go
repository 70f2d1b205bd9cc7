package collapse

import (
	"context"
	"sync"
	"time"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/watch"
)

// DefaultWriteDelay batches rapid collapse toggles into one write.
const DefaultWriteDelay = 250 * time.Millisecond

// Writer holds the current collapsed set for one tree in memory and writes
// it to a Store after a quiet period. Interactive callers toggle through the
// Writer so that layout recomputation never waits on the backend.
type Writer struct {
	store  Store
	treeID string
	onErr  func(error)

	mu        sync.Mutex
	ids       []string
	dirty     bool
	closed    bool
	debouncer *watch.Debouncer

	writeMu  sync.Mutex     // held across snapshot and store write
	inflight sync.WaitGroup // scheduled flushes that have started
}

// NewWriter creates a writer seeded with ids. onErr receives background
// write failures and may be nil.
func NewWriter(store Store, treeID string, ids []string, delay time.Duration, onErr func(error)) *Writer {
	if delay <= 0 {
		delay = DefaultWriteDelay
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	return &Writer{
		store:     store,
		treeID:    treeID,
		onErr:     onErr,
		ids:       Normalize(ids),
		debouncer: watch.NewDebouncer(delay),
	}
}

// IDs returns a copy of the current collapsed set.
func (w *Writer) IDs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.ids...)
}

// Toggle flips id and schedules a write. It returns the new set.
func (w *Writer) Toggle(id string) []string {
	w.mu.Lock()
	next := make([]string, 0, len(w.ids)+1)
	found := false
	for _, x := range w.ids {
		if x == id {
			found = true
			continue
		}
		next = append(next, x)
	}
	if !found {
		next = append(next, id)
	}
	w.ids = Normalize(next)
	w.dirty = true
	out := append([]string(nil), w.ids...)
	w.mu.Unlock()

	w.debouncer.Trigger(w.scheduledFlush)
	return out
}

func (w *Writer) scheduledFlush() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	if err := w.Flush(context.Background()); err != nil {
		w.onErr(err)
	}
}

// Flush writes the pending set now, if it changed since the last write.
// Writes are serialized, so an older set never lands after a newer one.
func (w *Writer) Flush(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return nil
	}
	ids := append([]string(nil), w.ids...)
	w.dirty = false
	w.mu.Unlock()

	if err := w.store.Set(ctx, w.treeID, ids); err != nil {
		w.mu.Lock()
		w.dirty = true
		w.mu.Unlock()
		return err
	}
	return nil
}

// Close cancels the scheduled write, waits for a write already in progress,
// and flushes synchronously. Toggles after Close are kept in memory only.
func (w *Writer) Close(ctx context.Context) error {
	w.debouncer.Cancel()
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.inflight.Wait()
	return w.Flush(ctx)
}
