// Package editor ties the document, its history and its auto-saver into one
// editing session: a canvas edit re-derives the slide, is recorded in
// history after a quiet period, and is checkpointed to the draft store.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hpungsan/slate/internal/compliance"
	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/drafts"
	"github.com/hpungsan/slate/internal/errors"
	"github.com/hpungsan/slate/internal/history"
)

// DraftType is the draft type under which sessions checkpoint outlines.
const DraftType = "outline"

// Options configures a Session.
type Options struct {
	// Key is the draft key for this session. Required.
	Key string
	// Initial is the outline the session starts from.
	Initial deck.Outline
	// AutosaveInterval overrides the configured interval; negative disables
	// the timer (manual Save and Close still flush).
	AutosaveInterval time.Duration
}

// Session is a single-editor editing session.
type Session struct {
	cfg *config.Config

	mu    sync.Mutex
	doc   *deck.Document
	hist  *history.History[deck.Outline]
	rec   *history.Recorder[deck.Outline]
	saver *drafts.AutoSaver[deck.Outline]
}

// Open starts a session over store. The auto-save timer starts immediately.
func Open(store drafts.Store, cfg *config.Config, opts Options) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	interval := opts.AutosaveInterval
	if interval == 0 {
		interval = cfg.AutosaveInterval()
	}
	saver, err := drafts.NewAutoSaver(store, drafts.AutoSaveOptions[deck.Outline]{
		Key:      opts.Key,
		Type:     DraftType,
		Interval: interval,
		Title:    func(o deck.Outline) string { return o.Title },
	})
	if err != nil {
		return nil, err
	}

	dopts := deck.Options{MaxIndexedRecords: cfg.MaxIndexedRecords}
	h := history.New(opts.Initial.Clone(), cfg.MaxHistory)
	s := &Session{
		cfg:   cfg,
		doc:   deck.NewDocument(opts.Initial, dopts),
		hist:  h,
		rec:   history.NewRecorder(h, cfg.HistoryDebounce()),
		saver: saver,
	}
	if err := saver.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the session's draft key.
func (s *Session) Key() string {
	return s.saver.Key()
}

// Outline returns a copy of the current outline.
func (s *Session) Outline() deck.Outline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Outline()
}

// Elements returns the generated canvas for slide i.
func (s *Session) Elements(i int) ([]deck.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Elements(i)
}

// ApplyCanvas re-derives slide i from an edited canvas. No-op edits leave
// history and the draft untouched.
func (s *Session) ApplyCanvas(i int, elements []deck.Element) (bool, error) {
	return s.mutate(func(d *deck.Document) (bool, error) {
		return d.ApplyCanvas(i, elements)
	})
}

// ReplaceSlide replaces slide i, e.g. with regenerated content.
func (s *Session) ReplaceSlide(i int, slide deck.Slide) error {
	_, err := s.mutate(func(d *deck.Document) (bool, error) {
		return true, d.ReplaceSlide(i, slide)
	})
	return err
}

// InsertSlide inserts an empty slide of layout at position at.
func (s *Session) InsertSlide(at int, layout string) error {
	_, err := s.mutate(func(d *deck.Document) (bool, error) {
		return true, d.InsertSlide(at, layout)
	})
	return err
}

// RemoveSlide removes slide i.
func (s *Session) RemoveSlide(i int) error {
	_, err := s.mutate(func(d *deck.Document) (bool, error) {
		return true, d.RemoveSlide(i)
	})
	return err
}

// MoveSlide moves a slide to a new position.
func (s *Session) MoveSlide(from, to int) error {
	_, err := s.mutate(func(d *deck.Document) (bool, error) {
		return from != to, d.MoveSlide(from, to)
	})
	return err
}

// SetTitle sets the deck title and strategy name.
func (s *Session) SetTitle(title, strategyName string) {
	_, _ = s.mutate(func(d *deck.Document) (bool, error) {
		d.SetTitle(title, strategyName)
		return true, nil
	})
}

// AddCustomElement layers a user-added element on slide i.
func (s *Session) AddCustomElement(i int, el deck.Element) (deck.Element, error) {
	var added deck.Element
	_, err := s.mutate(func(d *deck.Document) (bool, error) {
		var err error
		added, err = d.AddCustomElement(i, el)
		return err == nil, err
	})
	return added, err
}

// mutate applies fn and, when it reports a change, records the new outline
// in history and marks it for auto-save.
func (s *Session) mutate(fn func(*deck.Document) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := fn(s.doc)
	if err != nil || !changed {
		return false, err
	}
	o := s.doc.Outline()
	s.rec.Record(o)
	if err := s.saver.Track(o); err != nil {
		return true, err
	}
	return true, nil
}

// Undo restores the previous effective outline. It reports false when there
// is nothing to undo.
func (s *Session) Undo() bool {
	return s.travel(s.hist.Undo)
}

// Redo re-applies the most recently undone outline.
func (s *Session) Redo() bool {
	return s.travel(s.hist.Redo)
}

func (s *Session) travel(step func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A pending burst is committed first so it can itself be undone.
	s.rec.Flush()
	if !step() {
		return false
	}
	o := s.hist.Present()
	s.doc.Load(o)
	_ = s.saver.Track(o) // outlines always marshal
	return true
}

// CanUndo reports whether Undo would change the outline, counting a pending
// unrecorded edit.
func (s *Session) CanUndo() bool {
	return s.rec.Pending() || s.hist.CanUndo()
}

// CanRedo reports whether Redo would change the outline.
func (s *Session) CanRedo() bool {
	return !s.rec.Pending() && s.hist.CanRedo()
}

// History returns a snapshot of the undo and redo stacks.
func (s *Session) History() history.State[deck.Outline] {
	s.rec.Flush()
	return s.hist.State()
}

// Recover returns the outline checkpointed under this session's key, or nil
// when there is none. It never applies it; see Restore.
func (s *Session) Recover(ctx context.Context) (*deck.Outline, error) {
	d, err := s.saver.Recover(ctx)
	if err != nil || d == nil {
		return nil, err
	}
	o, err := deck.ParseOutline(d.Data)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("stored draft %q is not an outline: %v", d.ID, err))
	}
	return &o, nil
}

// Restore replaces the document with o, typically the outline returned by
// Recover, and starts a fresh history. o is treated as already stored.
func (s *Session) Restore(o deck.Outline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.Discard()
	s.doc.Load(o)
	s.hist.Clear(o.Clone())
	return s.saver.MarkSaved(o)
}

// Discard drops the stored draft.
func (s *Session) Discard(ctx context.Context) error {
	return s.saver.Discard(ctx)
}

// Check runs the compliance validator over the current outline.
func (s *Session) Check() compliance.Result {
	return compliance.Check(s.Outline(), compliance.Options{MinSlideCount: s.cfg.MinSlideCount})
}

// Export gates the current outline on compliance, hands it to persist and
// then deletes the draft. The returned result is valid even on error.
func (s *Session) Export(ctx context.Context, persist func(deck.Outline) error) (compliance.Result, error) {
	s.mu.Lock()
	s.rec.Flush()
	o := s.doc.Outline()
	if err := s.saver.Track(o); err != nil {
		s.mu.Unlock()
		return compliance.Result{}, err
	}
	s.mu.Unlock()

	res := compliance.Check(o, compliance.Options{MinSlideCount: s.cfg.MinSlideCount})
	if err := compliance.GateExport(res); err != nil {
		return res, err
	}
	return res, s.saver.Promote(ctx, persist)
}

// Save writes the current outline to the draft store now.
func (s *Session) Save(ctx context.Context) error {
	return s.saver.Save(ctx)
}

// Status reports the auto-save state.
func (s *Session) Status() drafts.Status {
	return s.saver.Status()
}

// HasUnsavedChanges reports whether the outline differs from the last draft.
func (s *Session) HasUnsavedChanges() bool {
	return s.saver.HasUnsavedChanges()
}

// Close commits pending history, stops the auto-save timer and makes a
// final flush. A failed flush wraps drafts.ErrUnsavedChanges.
func (s *Session) Close(ctx context.Context) error {
	s.rec.Flush()
	return s.saver.Close(ctx)
}
