package deck

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// Pillar is one record of a three_pillars slide.
type Pillar struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Component is one record of a composite or diagram slide.
type Component struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	IsResult bool   `json:"is_result,omitempty"`
}

// Case is one record of a use_cases slide.
type Case struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Definition is one record of a definitions slide.
type Definition struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Slide is the semantic form of one slide.
//
// Scalar string fields live in Fields keyed by their JSON name. Any other
// top-level member that is not a string is kept raw in Extra so that a
// decoded slide re-encodes without losing data.
type Slide struct {
	Layout         string
	Fields         map[string]string
	Pillars        []Pillar
	Components     []Component
	Cases          []Case
	Definitions    []Definition
	Columns        []string
	Rows           [][]string
	Positions      map[string]Rect
	CustomElements []Element
	Extra          map[string]json.RawMessage
}

// Reserved JSON member names.
const (
	keyLayout         = "layout"
	keyPillars        = "pillars"
	keyComponents     = "components"
	keyCases          = "cases"
	keyDefinitions    = "definitions"
	keyColumns        = "columns"
	keyRows           = "rows"
	keyPositions      = "_positions"
	keyCustomElements = "_customElements"
)

// NewSlide returns an empty slide with the given layout.
func NewSlide(layout string) Slide {
	return Slide{Layout: layout}
}

// Field returns a scalar field value ("" if absent).
func (s Slide) Field(name string) string {
	return s.Fields[name]
}

// HasField reports whether a scalar field is set.
func (s Slide) HasField(name string) bool {
	_, ok := s.Fields[name]
	return ok
}

// SetField sets a scalar field.
func (s *Slide) SetField(name, value string) {
	if s.Fields == nil {
		s.Fields = make(map[string]string)
	}
	s.Fields[name] = value
}

// Present reports whether the named member carries content: a non-blank
// scalar, a non-empty array, or any other non-null value. A scalar field
// holding a non-string value is absent.
func (s Slide) Present(name string) bool {
	switch name {
	case keyLayout:
		return s.Layout != ""
	case keyPillars:
		return len(s.Pillars) > 0
	case keyComponents:
		return len(s.Components) > 0
	case keyCases:
		return len(s.Cases) > 0
	case keyDefinitions:
		return len(s.Definitions) > 0
	case keyColumns:
		return len(s.Columns) > 0
	case keyRows:
		return len(s.Rows) > 0
	}
	if v, ok := s.Fields[name]; ok {
		return strings.TrimSpace(v) != ""
	}
	if isScalarField(name) {
		return false
	}
	if raw, ok := s.Extra[name]; ok {
		r := gjson.ParseBytes(raw)
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return r.Type != gjson.Null
	}
	return false
}

// ResultIndex returns the index of the first component flagged as the
// result, or -1.
func (s Slide) ResultIndex() int {
	for i, c := range s.Components {
		if c.IsResult {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of s.
func (s Slide) Clone() Slide {
	out := Slide{
		Layout:         s.Layout,
		Fields:         maps.Clone(s.Fields),
		Pillars:        slices.Clone(s.Pillars),
		Components:     slices.Clone(s.Components),
		Cases:          slices.Clone(s.Cases),
		Definitions:    slices.Clone(s.Definitions),
		Columns:        slices.Clone(s.Columns),
		Positions:      maps.Clone(s.Positions),
		CustomElements: cloneElements(s.CustomElements),
	}
	if s.Rows != nil {
		out.Rows = make([][]string, len(s.Rows))
		for i, row := range s.Rows {
			out.Rows[i] = slices.Clone(row)
		}
	}
	if s.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = slices.Clone(v)
		}
	}
	return out
}

// MarshalJSON encodes the slide as a flat JSON object. Map keys are
// emitted in sorted order, so equal slides encode to equal bytes.
func (s Slide) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(s.Fields)+len(s.Extra)+8)
	for k, v := range s.Extra {
		obj[k] = v
	}
	for k, v := range s.Fields {
		obj[k] = v
	}
	obj[keyLayout] = s.Layout
	if s.Pillars != nil {
		obj[keyPillars] = s.Pillars
	}
	if s.Components != nil {
		obj[keyComponents] = s.Components
	}
	if s.Cases != nil {
		obj[keyCases] = s.Cases
	}
	if s.Definitions != nil {
		obj[keyDefinitions] = s.Definitions
	}
	if s.Columns != nil {
		obj[keyColumns] = s.Columns
	}
	if s.Rows != nil {
		obj[keyRows] = s.Rows
	}
	if s.Positions != nil {
		obj[keyPositions] = s.Positions
	}
	if s.CustomElements != nil {
		obj[keyCustomElements] = s.CustomElements
	}
	return json.Marshal(obj)
}

// UnmarshalJSON decodes a slide leniently. JSON null is a no-op and only a
// non-object input is an error. Wrongly typed members degrade to empty
// values or are kept raw.
func (s *Slide) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("slide: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		return nil
	}
	if !root.IsObject() {
		return fmt.Errorf("slide: expected JSON object")
	}

	*s = Slide{}
	root.ForEach(func(key, value gjson.Result) bool {
		s.decodeMember(key.String(), value)
		return true
	})
	return nil
}

func (s *Slide) decodeMember(k string, v gjson.Result) {
	if v.Type == gjson.Null {
		return
	}

	switch k {
	case keyLayout:
		s.Layout = v.String()
		return
	case keyPillars:
		if v.IsArray() {
			s.Pillars = decodeRecords(v, func(r gjson.Result) Pillar {
				return Pillar{Label: r.Get("label").String(), Description: r.Get("description").String()}
			})
			return
		}
	case keyComponents:
		if v.IsArray() {
			s.Components = decodeRecords(v, func(r gjson.Result) Component {
				return Component{
					Title:    r.Get("title").String(),
					Body:     r.Get("body").String(),
					IsResult: r.Get("is_result").Type == gjson.True,
				}
			})
			return
		}
	case keyCases:
		if v.IsArray() {
			s.Cases = decodeRecords(v, func(r gjson.Result) Case {
				return Case{Title: r.Get("title").String(), Body: r.Get("body").String()}
			})
			return
		}
	case keyDefinitions:
		if v.IsArray() {
			s.Definitions = decodeRecords(v, func(r gjson.Result) Definition {
				return Definition{Term: r.Get("term").String(), Definition: r.Get("definition").String()}
			})
			return
		}
	case keyColumns:
		if v.IsArray() {
			s.Columns = decodeStrings(v)
			return
		}
	case keyRows:
		if v.IsArray() {
			s.Rows = decodeRecords(v, decodeStrings)
			return
		}
	case keyPositions:
		if v.IsObject() {
			s.Positions = make(map[string]Rect)
			v.ForEach(func(id, r gjson.Result) bool {
				if r.IsObject() {
					s.Positions[id.String()] = Rect{
						X: r.Get("x").Float(), Y: r.Get("y").Float(),
						W: r.Get("w").Float(), H: r.Get("h").Float(),
					}
				}
				return true
			})
			return
		}
	case keyCustomElements:
		if v.IsArray() {
			s.CustomElements = make([]Element, 0, len(v.Array()))
			for _, item := range v.Array() {
				if el, ok := elementFromJSON(item); ok {
					s.CustomElements = append(s.CustomElements, el)
				}
			}
			return
		}
	default:
		if v.Type == gjson.String {
			s.SetField(k, v.String())
			return
		}
	}

	// Unexpected shape: keep it verbatim.
	if s.Extra == nil {
		s.Extra = make(map[string]json.RawMessage)
	}
	s.Extra[k] = json.RawMessage(v.Raw)
}

// decodeRecords maps every array item through fn. The result is non-nil
// so that an empty array survives a round trip.
func decodeRecords[T any](v gjson.Result, fn func(gjson.Result) T) []T {
	items := v.Array()
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func decodeStrings(v gjson.Result) []string {
	if !v.IsArray() {
		return []string{}
	}
	return decodeRecords(v, func(r gjson.Result) string {
		if r.Type == gjson.Null {
			return ""
		}
		return r.String()
	})
}

// Equal reports whether two values encode to the same JSON.
// Values that fail to encode are never equal.
func Equal(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
