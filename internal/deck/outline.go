package deck

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Default canvas size in slide units (16:9).
const (
	DefaultCanvasWidth  = 13.33
	DefaultCanvasHeight = 7.5
)

// Outline is an ordered deck of slides.
type Outline struct {
	Title        string  `json:"title" jsonschema_description:"Deck title"`
	StrategyName string  `json:"strategy_name,omitempty" jsonschema_description:"Name of the investment strategy the deck presents"`
	Slides       []Slide `json:"slides" jsonschema_description:"Ordered slides. The first slide must use the cover layout."`
}

// Options tunes element-ID recognition and element generation.
// The zero value uses the defaults.
type Options struct {
	// MaxIndexedRecords bounds indices recognised in element IDs.
	MaxIndexedRecords int
	CanvasWidth       float64
	CanvasHeight      float64
}

func (o Options) limit() int {
	if o.MaxIndexedRecords <= 0 {
		return DefaultMaxIndexedRecords
	}
	return o.MaxIndexedRecords
}

func (o Options) canvas() (float64, float64) {
	w, h := o.CanvasWidth, o.CanvasHeight
	if w <= 0 {
		w = DefaultCanvasWidth
	}
	if h <= 0 {
		h = DefaultCanvasHeight
	}
	return w, h
}

// ParseOutline decodes an outline leniently. It fails only when data is not
// a JSON object; mistyped members degrade to empty values.
func ParseOutline(data []byte) (Outline, error) {
	var o Outline
	if err := o.UnmarshalJSON(data); err != nil {
		return Outline{}, err
	}
	return o, nil
}

// UnmarshalJSON implements json.Unmarshaler with the same leniency as Slide.
func (o *Outline) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("outline: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		return nil
	}
	if !root.IsObject() {
		return fmt.Errorf("outline: expected JSON object")
	}

	*o = Outline{
		Title:        root.Get("title").String(),
		StrategyName: root.Get("strategy_name").String(),
	}
	slides := root.Get("slides")
	if !slides.IsArray() {
		return nil
	}
	o.Slides = make([]Slide, 0, len(slides.Array()))
	for _, item := range slides.Array() {
		var s Slide
		if item.IsObject() {
			// Valid object input cannot fail.
			_ = s.UnmarshalJSON([]byte(item.Raw))
		}
		o.Slides = append(o.Slides, s)
	}
	return nil
}

// MarshalJSON always emits a slides array, never null.
func (o Outline) MarshalJSON() ([]byte, error) {
	type alias Outline
	a := alias(o)
	if a.Slides == nil {
		a.Slides = []Slide{}
	}
	return json.Marshal(a)
}

// Clone returns a deep copy of o.
func (o Outline) Clone() Outline {
	out := o
	if o.Slides != nil {
		out.Slides = make([]Slide, len(o.Slides))
		for i, s := range o.Slides {
			out.Slides[i] = s.Clone()
		}
	}
	return out
}
