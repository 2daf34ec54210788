package deck

import (
	"github.com/tidwall/sjson"
)

const (
	margin    = 0.5
	gutter    = 0.25
	bodyTop   = 2.1
	titleH    = 0.8
	lineH     = 0.45
	recordHdr = 0.6
)

// ElementsFromSlide returns the generated canvas for a slide: chrome, the
// layout's present scalar fields, indexed records, table cells and the
// result component, followed by the slide's custom elements. Geometry
// comes from the layout defaults unless _positions overrides it.
func ElementsFromSlide(s Slide, opts Options) []Element {
	l, _ := LookupLayout(s.Layout)
	w, h := opts.canvas()
	limit := opts.limit()
	g := &generator{w: w, h: h}

	g.add(Element{ID: "logo", Type: ElementImage}, Rect{X: w - margin - 1.2, Y: 0.3, W: 1.2, H: 0.5})
	g.add(Element{ID: "slide_number", Type: ElementText}, Rect{X: w - margin - 0.6, Y: h - 0.45, W: 0.6, H: 0.3})

	for _, id := range l.Scalars {
		sf := scalarIDs[id]
		if !s.HasField(sf.field) {
			continue
		}
		g.add(Element{ID: id, Type: sf.kind.ElementType(), Content: s.Field(sf.field)}, g.scalarRect(id))
	}

	result := -1
	if l.Result {
		result = s.ResultIndex()
	}
	for _, f := range l.Families {
		g.records(s, f, limit, result)
	}
	if result >= 0 && result < limit {
		c := s.Components[result]
		r := Rect{X: margin, Y: h - 2.2, W: w - 2*margin, H: 0.5}
		g.add(Element{ID: resultTitle, Type: ElementText, Content: c.Title}, r)
		r.Y, r.H = r.Y+0.5, 0.6
		g.add(Element{ID: resultBody, Type: ElementText, Content: c.Body}, r)
	}
	if l.Table {
		g.table(s, limit)
	}

	out := make([]Element, 0, len(g.els)+len(s.CustomElements))
	for _, el := range g.els {
		out = append(out, withPosition(el, s.Positions))
	}
	for _, el := range s.CustomElements {
		out = append(out, withPosition(el.Clone(), s.Positions))
	}
	return out
}

func withPosition(el Element, positions map[string]Rect) Element {
	if p, ok := positions[el.ID]; ok {
		return el.WithRect(p)
	}
	return el
}

type generator struct {
	w, h float64
	els  []Element
}

func (g *generator) add(el Element, r Rect) {
	g.els = append(g.els, el.WithRect(r))
}

// scalarRect is the default box for a scalar element.
func (g *generator) scalarRect(id string) Rect {
	w, h := g.w, g.h
	full := w - 2*margin
	half := (full - gutter) / 2
	switch id {
	case "title":
		return Rect{X: margin, Y: 0.4, W: full - 1.5, H: titleH}
	case "subtitle", "headline":
		return Rect{X: margin, Y: 1.3, W: full, H: 0.6}
	case "section_number":
		return Rect{X: margin, Y: 1.8, W: 2, H: 1}
	case "section_title":
		return Rect{X: margin, Y: 2.9, W: full, H: 1.2}
	case "chart_title":
		return Rect{X: margin, Y: 1.4, W: full, H: 0.5}
	case "tagline":
		return Rect{X: margin, Y: 3.2, W: full, H: 0.6}
	case "date":
		return Rect{X: margin, Y: h - 2.0, W: 4, H: 0.4}
	case "presenter":
		return Rect{X: margin, Y: h - 1.5, W: 4, H: 0.4}
	case "body":
		return Rect{X: margin, Y: bodyTop, W: half, H: h - 3.2}
	case "quote":
		return Rect{X: margin, Y: bodyTop, W: full, H: 1.5}
	case "disclosure_text":
		return Rect{X: margin, Y: 1.4, W: full, H: h - 2.4}
	case "image":
		return Rect{X: margin + half + gutter, Y: bodyTop, W: half, H: h - 3.4}
	case "chart_caption":
		return Rect{X: margin, Y: h - 1.3, W: full, H: 0.3}
	case "footnote":
		return Rect{X: margin, Y: h - 0.95, W: full - 1, H: 0.3}
	case "disclaimer":
		return Rect{X: margin, Y: h - 0.6, W: full - 1, H: 0.3}
	}
	return Rect{X: margin, Y: bodyTop, W: full, H: lineH}
}

// records lays out a family's records side by side (definitions stack
// vertically). Packed families become one group element per record.
func (g *generator) records(s Slide, f Family, limit, result int) {
	n := min(recordCount(s, f), limit)
	if n == 0 {
		return
	}
	vertical := f.Field == keyDefinitions
	full := g.w - 2*margin
	area := g.h - 3.4

	for i := range n {
		if i == result {
			continue
		}
		var r Rect
		if vertical {
			rowH := (area - gutter*float64(n-1)) / float64(n)
			r = Rect{X: margin, Y: bodyTop + float64(i)*(rowH+gutter), W: full, H: rowH}
		} else {
			colW := (full - gutter*float64(n-1)) / float64(n)
			r = Rect{X: margin + float64(i)*(colW+gutter), Y: bodyTop, W: colW, H: area}
		}

		fields := recordFields(s, f, i)
		if f.Packed {
			content := "{}"
			for _, sub := range f.Subfields {
				content, _ = sjson.Set(content, gjsonEscape(sub), fields[sub])
			}
			g.add(Element{ID: recordID(f, i, ""), Type: ElementGroup, Content: content}, r)
			continue
		}

		head, body := f.Subfields[0], f.Subfields[1]
		g.add(Element{ID: recordID(f, i, head), Type: ElementText, Content: fields[head]},
			Rect{X: r.X, Y: r.Y, W: r.W, H: recordHdr})
		g.add(Element{ID: recordID(f, i, body), Type: ElementText, Content: fields[body]},
			Rect{X: r.X, Y: r.Y + recordHdr, W: r.W, H: r.H - recordHdr})
	}
}

// table lays out column headers and cells on a grid.
func (g *generator) table(s Slide, limit int) {
	cols := min(len(s.Columns), limit)
	for _, row := range s.Rows {
		cols = max(cols, min(len(row), limit))
	}
	if cols == 0 {
		return
	}
	full := g.w - 2*margin
	colW := full / float64(cols)
	top := 1.4

	for i := range min(len(s.Columns), limit) {
		g.add(Element{ID: columnID(i), Type: ElementText, Content: s.Columns[i]},
			Rect{X: margin + float64(i)*colW, Y: top, W: colW, H: 0.5})
	}
	for r := range min(len(s.Rows), limit) {
		row := s.Rows[r]
		for c := range min(len(row), limit) {
			g.add(Element{ID: cellID(r, c), Type: ElementText, Content: row[c]},
				Rect{X: margin + float64(c)*colW, Y: top + 0.5 + float64(r)*lineH, W: colW, H: lineH})
		}
	}
}
