package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hpungsan/slate/internal/errors"
	"github.com/robfig/cron/v3"
)

// DefaultInterval is the auto-save period when none is configured.
const DefaultInterval = 30 * time.Second

// ErrUnsavedChanges is returned by Close when the final flush did not
// complete. The in-memory value is still authoritative.
var ErrUnsavedChanges = stderrors.New("unsaved changes were not written")

// SaveState is the auto-saver's last observable activity.
type SaveState string

const (
	StateIdle   SaveState = "idle"
	StateSaving SaveState = "saving"
	StateSaved  SaveState = "saved"
	StateError  SaveState = "error"
)

// Status is a snapshot of the auto-saver for display.
type Status struct {
	State             SaveState `json:"state"`
	HasUnsavedChanges bool      `json:"has_unsaved_changes"`
	LastSavedAt       int64     `json:"last_saved_at,omitempty"` // Unix milliseconds
	Error             string    `json:"error,omitempty"`
	// Code is set with Error; always SAVE_FAILED.
	Code errors.ErrorCode `json:"code,omitempty"`
	// Err is the typed failure of the last write, from a timer tick or Save.
	Err *errors.SlateError `json:"-"`
}

// AutoSaveOptions configures an AutoSaver.
type AutoSaveOptions[T any] struct {
	// Key is the draft ID. Required.
	Key string
	// Type is the draft type used for enumeration. Required.
	Type string
	// Interval is the periodic flush period; 0 means DefaultInterval and a
	// negative value disables the timer.
	Interval time.Duration
	// Title derives the draft title from the tracked value.
	Title func(T) string
	// Now overrides the clock (tests).
	Now func() time.Time
}

// AutoSaver checkpoints the latest tracked value into a Store: on a timer
// when dirty, on explicit Save, and best-effort on Close.
type AutoSaver[T any] struct {
	store    Store
	key      string
	typ      string
	interval time.Duration
	title    func(T) string
	now      func() time.Time

	flushMu sync.Mutex // one write in flight

	mu           sync.Mutex
	current      []byte
	currentTitle string
	hasCurrent   bool
	saved        []byte
	dirty        bool
	status       Status

	sched *cron.Cron
}

// NewAutoSaver returns an auto-saver writing into store. Call Start to
// enable the periodic flush.
func NewAutoSaver[T any](store Store, opts AutoSaveOptions[T]) (*AutoSaver[T], error) {
	if opts.Key == "" {
		return nil, errors.NewInvalidRequest("auto-save key is required")
	}
	if opts.Type == "" {
		return nil, errors.NewInvalidRequest("auto-save type is required")
	}
	a := &AutoSaver[T]{
		store:    store,
		key:      opts.Key,
		typ:      opts.Type,
		interval: opts.Interval,
		title:    opts.Title,
		now:      opts.Now,
		status:   Status{State: StateIdle},
	}
	if a.interval == 0 {
		a.interval = DefaultInterval
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// Key returns the draft ID.
func (a *AutoSaver[T]) Key() string {
	return a.key
}

// Start schedules the periodic flush. It is a no-op when the timer is
// disabled or already running.
func (a *AutoSaver[T]) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.interval < 0 || a.sched != nil {
		return nil
	}
	c := cron.New()
	schedule := fmt.Sprintf("@every %s", a.interval)
	if _, err := c.AddFunc(schedule, a.tick); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid auto-save interval %s: %v", a.interval, err))
	}
	c.Start()
	a.sched = c
	return nil
}

func (a *AutoSaver[T]) tick() {
	if err := a.flush(context.Background(), true); err != nil {
		log.Printf("autosave: %s: %v", a.key, err)
	}
}

// Track records v as the current value. The auto-saver becomes dirty when
// v differs from the last saved snapshot.
func (a *AutoSaver[T]) Track(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("value is not serializable: %v", err))
	}
	var title string
	if a.title != nil {
		title = a.title(v)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = data
	a.currentTitle = title
	a.hasCurrent = true
	a.dirty = !bytes.Equal(data, a.saved)
	a.status.HasUnsavedChanges = a.dirty
	return nil
}

// MarkSaved records v as both the tracked value and the stored snapshot,
// e.g. right after it was restored from this key's draft.
func (a *AutoSaver[T]) MarkSaved(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("value is not serializable: %v", err))
	}
	var title string
	if a.title != nil {
		title = a.title(v)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = data
	a.currentTitle = title
	a.hasCurrent = true
	a.saved = data
	a.dirty = false
	a.status.HasUnsavedChanges = false
	return nil
}

// Save writes the current value now, dirty or not.
func (a *AutoSaver[T]) Save(ctx context.Context) error {
	return a.flush(ctx, false)
}

// flush writes the tracked value. With onlyDirty it skips clean values.
func (a *AutoSaver[T]) flush(ctx context.Context, onlyDirty bool) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if !a.hasCurrent || (onlyDirty && !a.dirty) {
		a.mu.Unlock()
		return nil
	}
	d := Draft{
		ID:        a.key,
		Type:      a.typ,
		Title:     a.currentTitle,
		Data:      a.current,
		Timestamp: a.now().UnixMilli(),
	}
	a.status.State = StateSaving
	a.mu.Unlock()

	err := a.store.Save(ctx, d)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		saveErr := errors.NewSaveFailed(a.key, err)
		a.status.State = StateError
		a.status.Error = err.Error()
		a.status.Code = saveErr.Code
		a.status.Err = saveErr
		return saveErr
	}
	a.saved = d.Data
	// Track may have run while the write was in flight.
	a.dirty = !bytes.Equal(a.current, a.saved)
	a.status = Status{
		State:             StateSaved,
		HasUnsavedChanges: a.dirty,
		LastSavedAt:       d.Timestamp,
	}
	return nil
}

// Recover returns the stored draft for this key, or nil if none exists.
// The draft is never applied; the caller decides whether to restore it.
func (a *AutoSaver[T]) Recover(ctx context.Context) (*Draft, error) {
	d, err := a.store.Get(ctx, a.key)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Discard deletes the stored draft. The tracked value, if any, becomes
// unsaved again.
func (a *AutoSaver[T]) Discard(ctx context.Context) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	if err := a.store.Delete(ctx, a.key); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = nil
	a.dirty = a.hasCurrent
	a.status = Status{State: StateIdle, HasUnsavedChanges: a.dirty}
	return nil
}

// Promote hands the current value to persist and, once that succeeds,
// deletes the draft.
func (a *AutoSaver[T]) Promote(ctx context.Context, persist func(T) error) error {
	a.flushMu.Lock()
	defer a.flushMu.Unlock()

	a.mu.Lock()
	if !a.hasCurrent {
		a.mu.Unlock()
		return errors.NewInvalidRequest("nothing to promote")
	}
	data := a.current
	a.mu.Unlock()

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.NewInternal(err)
	}
	if err := persist(v); err != nil {
		return err
	}
	if err := a.store.Delete(ctx, a.key); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.saved = data
	a.dirty = !bytes.Equal(a.current, data)
	a.status = Status{State: StateIdle, HasUnsavedChanges: a.dirty}
	return nil
}

// HasUnsavedChanges reports whether the tracked value differs from the last
// saved snapshot.
func (a *AutoSaver[T]) HasUnsavedChanges() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// Status returns a snapshot of the auto-saver state.
func (a *AutoSaver[T]) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Close stops the timer, waits for a running tick, and makes a final
// best-effort flush. If that flush fails the result wraps ErrUnsavedChanges.
func (a *AutoSaver[T]) Close(ctx context.Context) error {
	a.mu.Lock()
	sched := a.sched
	a.sched = nil
	a.mu.Unlock()

	if sched != nil {
		<-sched.Stop().Done()
	}

	if err := a.flush(ctx, true); err != nil {
		log.Printf("autosave: %s: final flush failed: %v", a.key, err)
		return stderrors.Join(ErrUnsavedChanges, err)
	}
	return nil
}
