package history

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// Recorder coalesces bursts of edits into single history entries. Each
// Record restarts a quiet-period timer; when it expires the latest value is
// pushed. Intermediate values are never recorded.
type Recorder[T any] struct {
	h    *History[T]
	wait time.Duration

	mu        sync.Mutex
	pending   T
	hasValue  bool
	debounced func(func())
}

// NewRecorder returns a recorder pushing into h after wait of quiet.
// wait <= 0 pushes every value immediately.
func NewRecorder[T any](h *History[T], wait time.Duration) *Recorder[T] {
	r := &Recorder[T]{h: h, wait: wait}
	if wait > 0 {
		r.debounced = debounce.New(wait)
	}
	return r
}

// Record schedules v as the next history entry.
func (r *Recorder[T]) Record(v T) {
	if r.debounced == nil {
		r.h.Push(v)
		return
	}

	r.mu.Lock()
	r.pending = v
	r.hasValue = true
	r.mu.Unlock()

	r.debounced(func() { r.Flush() })
}

// Flush pushes the pending value now. It reports whether a new history
// entry was created. The lock is held through the push, so a concurrent
// Flush returns only once the value it found missing is in history.
func (r *Recorder[T]) Flush() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.hasValue {
		return false
	}
	v := r.pending
	var zero T
	r.pending = zero
	r.hasValue = false
	return r.h.Push(v)
}

// Pending reports whether a value is waiting for the quiet period to end.
func (r *Recorder[T]) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasValue
}

// Discard drops the pending value without recording it.
func (r *Recorder[T]) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.pending = zero
	r.hasValue = false
}
