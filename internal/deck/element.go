package deck

import (
	"encoding/json"
	"slices"

	"github.com/tidwall/gjson"
)

// ElementType is the kind of visual content an element carries.
type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
	ElementShape ElementType = "shape"
	ElementChart ElementType = "chart"
	ElementTable ElementType = "table"
	ElementGroup ElementType = "group"
)

// Rect is an element's geometry in slide units.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Element is a positioned, typed box on a slide's canvas.
// Style and Options are carried verbatim and never interpreted here.
type Element struct {
	ID      string          `json:"id"`
	Type    ElementType     `json:"type"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	W       float64         `json:"w"`
	H       float64         `json:"h"`
	Content string          `json:"content,omitempty"`
	Style   json.RawMessage `json:"style,omitempty"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Rect returns the element's geometry.
func (e Element) Rect() Rect {
	return Rect{X: e.X, Y: e.Y, W: e.W, H: e.H}
}

// WithRect returns a copy of e placed at r.
func (e Element) WithRect(r Rect) Element {
	e.X, e.Y, e.W, e.H = r.X, r.Y, r.W, r.H
	return e
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	e.Style = slices.Clone(e.Style)
	e.Options = slices.Clone(e.Options)
	return e
}

func cloneElements(els []Element) []Element {
	if els == nil {
		return nil
	}
	out := make([]Element, len(els))
	for i, e := range els {
		out[i] = e.Clone()
	}
	return out
}

// elementFromJSON decodes an element leniently: wrongly typed members
// fall back to zero values instead of failing the whole slide.
func elementFromJSON(v gjson.Result) (Element, bool) {
	if !v.IsObject() {
		return Element{}, false
	}
	el := Element{
		ID:      v.Get("id").String(),
		Type:    ElementType(v.Get("type").String()),
		X:       v.Get("x").Float(),
		Y:       v.Get("y").Float(),
		W:       v.Get("w").Float(),
		H:       v.Get("h").Float(),
		Content: v.Get("content").String(),
	}
	if s := v.Get("style"); s.Exists() && s.Type != gjson.Null {
		el.Style = json.RawMessage(s.Raw)
	}
	if o := v.Get("options"); o.Exists() && o.Type != gjson.Null {
		el.Options = json.RawMessage(o.Raw)
	}
	return el, el.ID != ""
}
