package deck

import (
	"strings"

	"github.com/google/uuid"
)

// CustomIDPrefix prefixes engine-assigned IDs of user-added elements.
const CustomIDPrefix = "custom_"

// NewCustomID returns a fresh ID for a user-added element.
func NewCustomID() string {
	return CustomIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// KnownIDs returns every element ID the generated layout may use for the
// named layout: chrome, the layout's scalars, result IDs and every indexed
// record, column and cell ID below the limit.
func KnownIDs(layout string, opts Options) map[string]bool {
	l, _ := LookupLayout(layout)
	limit := opts.limit()

	known := make(map[string]bool, len(chromeIDs)+len(l.Scalars)+limit*limit+limit*8)
	for _, id := range chromeIDs {
		known[id] = true
	}
	for _, id := range l.Scalars {
		known[id] = true
	}
	known[resultTitle] = true
	known[resultBody] = true

	for i := range limit {
		for _, f := range families {
			if f.Packed {
				known[recordID(f, i, "")] = true
			}
			for _, sub := range f.Subfields {
				known[recordID(f, i, sub)] = true
			}
		}
		known[columnID(i)] = true
		for j := range limit {
			known[cellID(i, j)] = true
		}
	}
	return known
}

// ExtractCustomElements returns the elements that are not part of the
// layout's generated set, in input order. Elements without an ID are
// dropped.
func ExtractCustomElements(elements []Element, layout string, opts Options) []Element {
	known := KnownIDs(layout, opts)
	var out []Element
	for _, el := range elements {
		if el.ID == "" || known[el.ID] {
			continue
		}
		out = append(out, el.Clone())
	}
	return out
}
