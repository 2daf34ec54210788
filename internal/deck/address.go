package deck

import (
	"slices"
	"strconv"
	"strings"
)

// Address is the semantic target of an element ID. It is a closed union:
// ScalarAddress, RecordAddress, ColumnAddress, CellAddress, ResultAddress,
// ChromeAddress or UnknownAddress.
type Address interface {
	isAddress()
}

// ScalarAddress targets a scalar slide field.
type ScalarAddress struct {
	Field string
	Kind  FieldKind
}

// RecordAddress targets one record of an indexed family. An empty Subfield
// addresses the whole record as a packed group.
type RecordAddress struct {
	Family   Family
	Index    int
	Subfield string
}

// ColumnAddress targets a table column header.
type ColumnAddress struct {
	Index int
}

// CellAddress targets a table cell.
type CellAddress struct {
	Row int
	Col int
}

// ResultAddress targets a subfield of the component flagged as the result.
type ResultAddress struct {
	Subfield string
}

// ChromeAddress is a generated element that binds no field.
type ChromeAddress struct {
	ID string
}

// UnknownAddress is any ID the engine does not recognise (a custom element).
type UnknownAddress struct {
	ID string
}

func (ScalarAddress) isAddress()  {}
func (RecordAddress) isAddress()  {}
func (ColumnAddress) isAddress()  {}
func (CellAddress) isAddress()    {}
func (ResultAddress) isAddress()  {}
func (ChromeAddress) isAddress()  {}
func (UnknownAddress) isAddress() {}

// ParseAddress classifies an element ID. Indices must be canonical decimals
// in [0, limit); anything else is unknown. A limit <= 0 means
// DefaultMaxIndexedRecords. ParseAddress never fails.
func ParseAddress(id string, limit int) Address {
	if limit <= 0 {
		limit = DefaultMaxIndexedRecords
	}

	if sf, ok := scalarIDs[id]; ok {
		return ScalarAddress{Field: sf.field, Kind: sf.kind}
	}
	if slices.Contains(chromeIDs, id) {
		return ChromeAddress{ID: id}
	}
	switch id {
	case resultTitle:
		return ResultAddress{Subfield: "title"}
	case resultBody:
		return ResultAddress{Subfield: "body"}
	}

	prefix, rest, ok := strings.Cut(id, "_")
	if !ok {
		return UnknownAddress{ID: id}
	}

	switch prefix {
	case columnPrefix:
		if i, ok := parseIndex(rest, limit); ok {
			return ColumnAddress{Index: i}
		}
		return UnknownAddress{ID: id}
	case cellPrefix:
		r, c, ok := strings.Cut(rest, "_")
		if !ok {
			return UnknownAddress{ID: id}
		}
		ri, rok := parseIndex(r, limit)
		ci, cok := parseIndex(c, limit)
		if rok && cok {
			return CellAddress{Row: ri, Col: ci}
		}
		return UnknownAddress{ID: id}
	}

	fam, ok := familyByPrefix(prefix)
	if !ok {
		return UnknownAddress{ID: id}
	}
	idx, sub, hasSub := strings.Cut(rest, "_")
	i, ok := parseIndex(idx, limit)
	if !ok {
		return UnknownAddress{ID: id}
	}
	if !hasSub {
		if fam.Packed {
			return RecordAddress{Family: fam, Index: i}
		}
		return UnknownAddress{ID: id}
	}
	if slices.Contains(fam.Subfields, sub) {
		return RecordAddress{Family: fam, Index: i, Subfield: sub}
	}
	return UnknownAddress{ID: id}
}

func familyByPrefix(prefix string) (Family, bool) {
	for _, f := range families {
		if f.Prefix == prefix {
			return f, true
		}
	}
	return Family{}, false
}

// parseIndex accepts only canonical non-negative decimals below limit
// ("0", "7"; not "07", "+1" or "-1").
func parseIndex(s string, limit int) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n >= limit {
		return 0, false
	}
	return n, true
}

// recordID returns the element ID for a family record or subfield.
func recordID(f Family, i int, sub string) string {
	id := f.Prefix + "_" + strconv.Itoa(i)
	if sub != "" {
		id += "_" + sub
	}
	return id
}

func columnID(i int) string {
	return columnPrefix + "_" + strconv.Itoa(i)
}

func cellID(r, c int) string {
	return cellPrefix + "_" + strconv.Itoa(r) + "_" + strconv.Itoa(c)
}
