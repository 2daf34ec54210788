package deck

import (
	"errors"
	"maps"

	"github.com/tidwall/gjson"
)

// SyncElementsToSlide derives a new slide from a canvas. Elements whose ID
// binds a field write that field; everything else is left as it was in
// original. Malformed or mistyped elements are ignored. Neither input is
// mutated.
//
// Geometry is kept in _positions only as a manual override: an element is
// recorded when it already had an override or when it sits away from the
// box the layout would give it.
func SyncElementsToSlide(elements []Element, original Slide, opts Options) Slide {
	out := original.Clone()
	limit := opts.limit()
	defaults := defaultRects(original, opts)
	positions := make(map[string]Rect, len(elements))

	for _, el := range elements {
		if el.ID == "" {
			continue
		}
		_, pinned := original.Positions[el.ID]
		if def, ok := defaults[el.ID]; pinned || !ok || def != el.Rect() {
			positions[el.ID] = el.Rect()
		}

		switch a := ParseAddress(el.ID, limit).(type) {
		case ScalarAddress:
			if el.Type == a.Kind.ElementType() {
				out.SetField(a.Field, el.Content)
			}
		case RecordAddress:
			if a.Subfield == "" {
				if el.Type != ElementGroup {
					continue
				}
				res := parsePacked(el.Content, a.Family)
				if res.err != nil {
					// Keep the record's prior value.
					continue
				}
				for sub, v := range res.values {
					setRecordField(&out, a.Family, a.Index, sub, v)
				}
				ensureRecord(&out, a.Family, a.Index)
				continue
			}
			if el.Type == ElementText {
				setRecordField(&out, a.Family, a.Index, a.Subfield, el.Content)
			}
		case ColumnAddress:
			if el.Type == ElementText {
				out.Columns = grow(out.Columns, a.Index+1)
				out.Columns[a.Index] = el.Content
			}
		case CellAddress:
			if el.Type == ElementText {
				out.Rows = grow(out.Rows, a.Row+1)
				for r := range out.Rows {
					if out.Rows[r] == nil {
						out.Rows[r] = []string{}
					}
				}
				out.Rows[a.Row] = grow(out.Rows[a.Row], a.Col+1)
				out.Rows[a.Row][a.Col] = el.Content
			}
		case ResultAddress:
			i := out.ResultIndex()
			if i < 0 || el.Type != ElementText {
				continue
			}
			setRecordField(&out, familyComponent, i, a.Subfield, el.Content)
		case ChromeAddress, UnknownAddress:
		}
	}

	if !positionsEqual(positions, original.Positions) {
		out.Positions = positions
		if len(positions) == 0 {
			out.Positions = nil
		}
	}
	return out
}

// defaultRects returns the geometry ElementsFromSlide gives each element of
// s when no _positions override applies. Custom elements default to their
// own stored boxes.
func defaultRects(s Slide, opts Options) map[string]Rect {
	bare := s
	bare.Positions = nil
	els := ElementsFromSlide(bare, opts)
	rects := make(map[string]Rect, len(els))
	for _, el := range els {
		rects[el.ID] = el.Rect()
	}
	return rects
}

// parseResult is the outcome of decoding a packed group's content. A non-nil
// err means the content is unusable and the caller must keep the record's
// prior value.
type parseResult struct {
	values map[string]string
	err    error
}

var (
	errPackedInvalid  = errors.New("packed content is not valid JSON")
	errPackedNoObject = errors.New("packed content is not a JSON object")
)

// parsePacked decodes group content such as {"label":"A","description":"B"}.
// Only the family's subfields are read; absent or null members are left out
// of values so they do not overwrite existing data.
func parsePacked(content string, f Family) parseResult {
	if !gjson.Valid(content) {
		return parseResult{err: errPackedInvalid}
	}
	root := gjson.Parse(content)
	if !root.IsObject() {
		return parseResult{err: errPackedNoObject}
	}
	values := make(map[string]string, len(f.Subfields))
	for _, sub := range f.Subfields {
		v := root.Get(gjsonEscape(sub))
		if v.Exists() && v.Type != gjson.Null {
			values[sub] = v.String()
		}
	}
	return parseResult{values: values}
}

// ensureRecord extends a family's array so that index i exists.
func ensureRecord(s *Slide, f Family, i int) {
	switch f.Field {
	case keyPillars:
		s.Pillars = grow(s.Pillars, i+1)
	case keyComponents:
		s.Components = grow(s.Components, i+1)
	case keyCases:
		s.Cases = grow(s.Cases, i+1)
	case keyDefinitions:
		s.Definitions = grow(s.Definitions, i+1)
	}
}

// setRecordField writes one subfield of record i, creating empty
// placeholder records up to i as needed.
func setRecordField(s *Slide, f Family, i int, sub, v string) {
	ensureRecord(s, f, i)
	switch f.Field {
	case keyPillars:
		switch sub {
		case "label":
			s.Pillars[i].Label = v
		case "description":
			s.Pillars[i].Description = v
		}
	case keyComponents:
		switch sub {
		case "title":
			s.Components[i].Title = v
		case "body":
			s.Components[i].Body = v
		}
	case keyCases:
		switch sub {
		case "title":
			s.Cases[i].Title = v
		case "body":
			s.Cases[i].Body = v
		}
	case keyDefinitions:
		switch sub {
		case "term":
			s.Definitions[i].Term = v
		case "definition":
			s.Definitions[i].Definition = v
		}
	}
}

// recordFields returns the subfield values of record i, or nil if the
// record does not exist.
func recordFields(s Slide, f Family, i int) map[string]string {
	switch f.Field {
	case keyPillars:
		if i < len(s.Pillars) {
			return map[string]string{"label": s.Pillars[i].Label, "description": s.Pillars[i].Description}
		}
	case keyComponents:
		if i < len(s.Components) {
			return map[string]string{"title": s.Components[i].Title, "body": s.Components[i].Body}
		}
	case keyCases:
		if i < len(s.Cases) {
			return map[string]string{"title": s.Cases[i].Title, "body": s.Cases[i].Body}
		}
	case keyDefinitions:
		if i < len(s.Definitions) {
			return map[string]string{"term": s.Definitions[i].Term, "definition": s.Definitions[i].Definition}
		}
	}
	return nil
}

// recordCount returns the length of a family's array.
func recordCount(s Slide, f Family) int {
	switch f.Field {
	case keyPillars:
		return len(s.Pillars)
	case keyComponents:
		return len(s.Components)
	case keyCases:
		return len(s.Cases)
	case keyDefinitions:
		return len(s.Definitions)
	}
	return 0
}

// grow extends xs with zero values to length n. The result is never nil.
func grow[T any](xs []T, n int) []T {
	if xs == nil {
		xs = make([]T, 0, n)
	}
	for len(xs) < n {
		var zero T
		xs = append(xs, zero)
	}
	return xs
}

func positionsEqual(a, b map[string]Rect) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return maps.Equal(a, b)
}

// gjsonEscape escapes path metacharacters so a key is matched literally.
func gjsonEscape(key string) string {
	var out []byte
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
