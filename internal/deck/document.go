package deck

import (
	"fmt"
	"slices"

	"github.com/hpungsan/slate/internal/errors"
)

// Document owns the authoritative current outline. It is not safe for
// concurrent use; an editor session drives it from one goroutine.
type Document struct {
	outline Outline
	opts    Options
}

// NewDocument returns a document holding a copy of o.
func NewDocument(o Outline, opts Options) *Document {
	return &Document{outline: o.Clone(), opts: opts}
}

// Options returns the document's element options.
func (d *Document) Options() Options {
	return d.opts
}

// Outline returns a deep copy of the current outline.
func (d *Document) Outline() Outline {
	return d.outline.Clone()
}

// Load replaces the whole outline.
func (d *Document) Load(o Outline) {
	d.outline = o.Clone()
}

// Len returns the number of slides.
func (d *Document) Len() int {
	return len(d.outline.Slides)
}

// SetTitle sets the outline title and strategy name.
func (d *Document) SetTitle(title, strategyName string) {
	d.outline.Title = title
	d.outline.StrategyName = strategyName
}

// Slide returns a copy of slide i.
func (d *Document) Slide(i int) (Slide, error) {
	if err := d.checkIndex(i); err != nil {
		return Slide{}, err
	}
	return d.outline.Slides[i].Clone(), nil
}

// Elements returns the generated canvas for slide i.
func (d *Document) Elements(i int) ([]Element, error) {
	if err := d.checkIndex(i); err != nil {
		return nil, err
	}
	return ElementsFromSlide(d.outline.Slides[i], d.opts), nil
}

// ApplyCanvas re-derives slide i from an edited canvas. changed is false
// when the derived slide equals the current one.
func (d *Document) ApplyCanvas(i int, elements []Element) (bool, error) {
	if err := d.checkIndex(i); err != nil {
		return false, err
	}
	prev := d.outline.Slides[i]
	next := SyncElementsToSlide(elements, prev, d.opts)
	next.CustomElements = ExtractCustomElements(elements, prev.Layout, d.opts)
	if len(next.CustomElements) == 0 && len(prev.CustomElements) == 0 {
		next.CustomElements = prev.CustomElements
	}
	if Equal(next, prev) {
		return false, nil
	}
	d.outline.Slides[i] = next
	return true, nil
}

// ReplaceSlide replaces slide i.
func (d *Document) ReplaceSlide(i int, s Slide) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.outline.Slides[i] = s.Clone()
	return nil
}

// InsertSlide inserts an empty slide with the given layout at position at
// (0 <= at <= Len).
func (d *Document) InsertSlide(at int, layout string) error {
	if at < 0 || at > len(d.outline.Slides) {
		return errors.NewInvalidRequest(fmt.Sprintf("insert position %d out of range [0, %d]", at, len(d.outline.Slides)))
	}
	if layout == "" {
		return errors.NewInvalidRequest("layout is required")
	}
	d.outline.Slides = slices.Insert(d.outline.Slides, at, NewSlide(layout))
	return nil
}

// RemoveSlide removes slide i.
func (d *Document) RemoveSlide(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.outline.Slides = slices.Delete(d.outline.Slides, i, i+1)
	return nil
}

// MoveSlide moves slide from to position to.
func (d *Document) MoveSlide(from, to int) error {
	if err := d.checkIndex(from); err != nil {
		return err
	}
	if err := d.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	s := d.outline.Slides[from]
	d.outline.Slides = slices.Delete(d.outline.Slides, from, from+1)
	d.outline.Slides = slices.Insert(d.outline.Slides, to, s)
	return nil
}

// AddCustomElement appends a user-added element to slide i and returns it.
// An empty ID is replaced with a fresh custom ID; an ID that binds a field
// of the layout is rejected.
func (d *Document) AddCustomElement(i int, el Element) (Element, error) {
	if err := d.checkIndex(i); err != nil {
		return Element{}, err
	}
	s := &d.outline.Slides[i]
	if el.ID == "" {
		el.ID = NewCustomID()
	}
	if KnownIDs(s.Layout, d.opts)[el.ID] {
		return Element{}, errors.NewInvalidRequest(fmt.Sprintf("element id %q is reserved by layout %q", el.ID, s.Layout))
	}
	for _, c := range s.CustomElements {
		if c.ID == el.ID {
			return Element{}, errors.NewInvalidRequest(fmt.Sprintf("element id %q already exists", el.ID))
		}
	}
	el = el.Clone()
	s.CustomElements = append(s.CustomElements, el)
	return el, nil
}

func (d *Document) checkIndex(i int) error {
	if i < 0 || i >= len(d.outline.Slides) {
		return errors.NewInvalidRequest(fmt.Sprintf("slide index %d out of range [0, %d)", i, len(d.outline.Slides)))
	}
	return nil
}
