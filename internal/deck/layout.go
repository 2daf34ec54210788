package deck

import "slices"

// Layout names understood by the engine.
const (
	LayoutCover                = "cover"
	LayoutSectionDivider       = "section_divider"
	LayoutThreePillars         = "three_pillars"
	LayoutChart                = "chart"
	LayoutCompositeThree       = "composite_three"
	LayoutCompositeFour        = "composite_four"
	LayoutFiveComponentDiagram = "five_component_diagram"
	LayoutProcessSteps         = "process_steps"
	LayoutStrategyOverview     = "strategy_overview"
	LayoutStrategyTable        = "strategy_table"
	LayoutRiskStatistics       = "risk_statistics"
	LayoutUseCases             = "use_cases"
	LayoutThankYou             = "thank_you"
	LayoutDisclosures          = "disclosures"
	LayoutDefinitions          = "definitions"
)

// DefaultMaxIndexedRecords is the default bound on indices recognised in
// element IDs (pillar_<i>, cell_<r>_<c>, ...).
const DefaultMaxIndexedRecords = 10

// FieldKind is the expected element type for a scalar field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindImage
)

// ElementType returns the element type that may write a field of this kind.
func (k FieldKind) ElementType() ElementType {
	if k == KindImage {
		return ElementImage
	}
	return ElementText
}

// scalarField binds a well-known element ID to a slide field.
type scalarField struct {
	field string
	kind  FieldKind
}

// scalarIDs maps well-known scalar element IDs to slide fields.
var scalarIDs = map[string]scalarField{
	"title":           {"title", KindText},
	"subtitle":        {"subtitle", KindText},
	"headline":        {"headline", KindText},
	"section_title":   {"section_title", KindText},
	"section_number":  {"section_number", KindText},
	"chart_title":     {"chart_title", KindText},
	"chart_caption":   {"chart_caption", KindText},
	"tagline":         {"tagline", KindText},
	"footnote":        {"footnote", KindText},
	"disclaimer":      {"disclaimer", KindText},
	"disclosure_text": {"disclosure_text", KindText},
	"date":            {"date", KindText},
	"presenter":       {"presenter", KindText},
	"body":            {"body", KindText},
	"quote":           {"quote", KindText},
	"image":           {"image_url", KindImage},
}

func isScalarField(name string) bool {
	for _, sf := range scalarIDs {
		if sf.field == name {
			return true
		}
	}
	return false
}

// scalarOrder is the generation order for scalar elements.
var scalarOrder = []string{
	"section_number", "title", "section_title", "subtitle", "headline",
	"chart_title", "tagline", "date", "presenter", "body", "quote",
	"disclosure_text", "image", "chart_caption", "footnote", "disclaimer",
}

// chromeIDs belong to the generated layout but bind no field.
var chromeIDs = []string{"logo", "slide_number", "footer", "background", "divider"}

// Family describes an indexed record array addressed as prefix_<i>[_<subfield>].
type Family struct {
	Prefix    string
	Field     string
	Subfields []string
	// Packed families also accept prefix_<i> group elements whose content
	// is a JSON object holding every subfield.
	Packed bool
}

var (
	familyPillar     = Family{Prefix: "pillar", Field: "pillars", Subfields: []string{"label", "description"}, Packed: true}
	familyComponent  = Family{Prefix: "component", Field: "components", Subfields: []string{"title", "body"}}
	familyCase       = Family{Prefix: "case", Field: "cases", Subfields: []string{"title", "body"}}
	familyDefinition = Family{Prefix: "def", Field: "definitions", Subfields: []string{"term", "definition"}, Packed: true}
)

var families = []Family{familyPillar, familyComponent, familyCase, familyDefinition}

// Table and result element IDs.
const (
	columnPrefix = "col"
	cellPrefix   = "cell"
	resultTitle  = "result_title"
	resultBody   = "result_body"
)

// Layout describes which well-known elements a layout generates.
type Layout struct {
	Name     string
	Scalars  []string
	Families []Family
	Table    bool
	Result   bool
}

var layouts = map[string]Layout{
	LayoutCover:                {Scalars: []string{"title", "subtitle", "date", "presenter", "image"}},
	LayoutSectionDivider:       {Scalars: []string{"section_number", "section_title", "subtitle"}},
	LayoutThreePillars:         {Scalars: []string{"title", "headline", "footnote"}, Families: []Family{familyPillar}},
	LayoutChart:                {Scalars: []string{"title", "chart_title", "image", "chart_caption", "footnote", "disclaimer"}},
	LayoutCompositeThree:       {Scalars: []string{"title", "headline", "footnote"}, Families: []Family{familyComponent}, Result: true},
	LayoutCompositeFour:        {Scalars: []string{"title", "headline", "footnote"}, Families: []Family{familyComponent}, Result: true},
	LayoutFiveComponentDiagram: {Scalars: []string{"title", "headline"}, Families: []Family{familyComponent}},
	LayoutProcessSteps:         {Scalars: []string{"title", "headline"}, Families: []Family{familyComponent}},
	LayoutStrategyOverview:     {Scalars: []string{"title", "headline", "body", "image"}},
	LayoutStrategyTable:        {Scalars: []string{"title", "footnote", "disclaimer"}, Table: true},
	LayoutRiskStatistics:       {Scalars: []string{"title", "footnote", "disclaimer"}, Table: true},
	LayoutUseCases:             {Scalars: []string{"title", "headline"}, Families: []Family{familyCase}},
	LayoutThankYou:             {Scalars: []string{"title", "tagline", "subtitle"}},
	LayoutDisclosures:          {Scalars: []string{"title", "disclosure_text"}},
	LayoutDefinitions:          {Scalars: []string{"title"}, Families: []Family{familyDefinition}},
}

func init() {
	for name, l := range layouts {
		l.Name = name
		layouts[name] = l
	}
}

// LookupLayout returns the layout description for name.
// Unknown layouts get a generic description recognising every scalar ID.
func LookupLayout(name string) (Layout, bool) {
	if l, ok := layouts[name]; ok {
		return l, true
	}
	return Layout{Name: name, Scalars: slices.Clone(scalarOrder)}, false
}

// LayoutNames returns every known layout name, sorted.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsKnownLayout reports whether name is a known layout.
func IsKnownLayout(name string) bool {
	_, ok := layouts[name]
	return ok
}
