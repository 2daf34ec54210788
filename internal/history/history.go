// Package history implements linear undo/redo over any JSON-serializable
// value.
package history

import (
	"bytes"
	"encoding/json"
	"slices"
	"sync"
)

// DefaultMaxEntries bounds the undo stack when no size is given.
const DefaultMaxEntries = 50

// State is a snapshot of the history.
// Past is oldest first; Future is next-redo first.
type State[T any] struct {
	Past    []T `json:"past"`
	Present T   `json:"present"`
	Future  []T `json:"future"`
}

// EqualFunc reports whether two values are the same document.
type EqualFunc[T any] func(a, b T) bool

// Option configures a History.
type Option[T any] func(*History[T])

// WithEqual replaces the default JSON equality.
func WithEqual[T any](eq EqualFunc[T]) Option[T] {
	return func(h *History[T]) {
		h.equal = eq
	}
}

// History is a {past, present, future} stack. It is safe for concurrent use.
type History[T any] struct {
	mu sync.Mutex

	past    []T
	present T
	future  []T

	maxEntries int
	equal      EqualFunc[T]
}

// New returns a history whose present is initial.
// maxEntries <= 0 means DefaultMaxEntries.
func New[T any](initial T, maxEntries int, opts ...Option[T]) *History[T] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	h := &History[T]{
		present:    initial,
		maxEntries: maxEntries,
		equal:      JSONEqual[T],
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// JSONEqual compares two values by their canonical JSON encoding.
// Values that fail to encode are never equal.
func JSONEqual[T any](a, b T) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// Set replaces present and clears past and future.
func (h *History[T]) Set(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.present = v
	h.past = nil
	h.future = nil
}

// Clear establishes v as a fresh baseline with empty history.
func (h *History[T]) Clear(v T) {
	h.Set(v)
}

// Push records v as a new edit. It returns false, and records nothing, when
// v equals the present value.
func (h *History[T]) Push(v T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.equal(v, h.present) {
		return false
	}

	h.past = append(h.past, h.present)
	if excess := len(h.past) - h.maxEntries; excess > 0 {
		h.past = slices.Delete(h.past, 0, excess)
	}
	h.present = v
	h.future = nil
	return true
}

// Undo steps back one edit. It returns false when there is nothing to undo.
func (h *History[T]) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		return false
	}

	last := len(h.past) - 1
	prev := h.past[last]
	h.past = h.past[:last]
	h.future = slices.Insert(h.future, 0, h.present)
	h.present = prev
	return true
}

// Redo re-applies the most recently undone edit. It returns false when
// there is nothing to redo.
func (h *History[T]) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		return false
	}

	next := h.future[0]
	h.future = slices.Delete(h.future, 0, 1)
	h.past = append(h.past, h.present)
	if excess := len(h.past) - h.maxEntries; excess > 0 {
		h.past = slices.Delete(h.past, 0, excess)
	}
	h.present = next
	return true
}

// Present returns the current value.
func (h *History[T]) Present() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.present
}

// State returns a snapshot of the stacks. The slices are copies; empty
// stacks are nil.
func (h *History[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return State[T]{
		Past:    cloneStack(h.past),
		Present: h.present,
		Future:  cloneStack(h.future),
	}
}

func cloneStack[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// CanUndo reports whether Undo would change the present.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo reports whether Redo would change the present.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// MaxEntries returns the undo stack bound.
func (h *History[T]) MaxEntries() int {
	return h.maxEntries
}
