package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func text(id, content string) Element {
	return Element{ID: id, Type: ElementText, Content: content, W: 1, H: 1}
}

func group(id, content string) Element {
	return Element{ID: id, Type: ElementGroup, Content: content, W: 1, H: 1}
}

func sampleSlides() []Slide {
	return []Slide{
		{Layout: LayoutCover, Fields: map[string]string{
			"title": "GLOBAL INCOME", "subtitle": "Q3 review", "date": "2026-10-01",
			"presenter": "Portfolio team", "image_url": "https://example.com/cover.png",
		}},
		{Layout: LayoutSectionDivider, Fields: map[string]string{"section_number": "02", "section_title": "PROCESS"}},
		{Layout: LayoutThreePillars, Fields: map[string]string{"title": "PILLARS", "headline": "Three ideas"},
			Pillars: []Pillar{{"Income", "Steady"}, {"Growth", "Compounding"}, {"Risk", `Managed "tightly"`}}},
		{Layout: LayoutCompositeThree, Fields: map[string]string{"title": "COMPOSITE"},
			Components: []Component{{Title: "A", Body: "a"}, {Title: "Result", Body: "r", IsResult: true}, {Title: "C", Body: "c"}}},
		{Layout: LayoutUseCases, Fields: map[string]string{"title": "USE CASES"},
			Cases: []Case{{"Retirees", "Income"}, {"Endowments", "Spending"}}},
		{Layout: LayoutDefinitions, Fields: map[string]string{"title": "DEFINITIONS"},
			Definitions: []Definition{{"Alpha", "Excess return"}, {"Beta", "Market sensitivity"}}},
		{Layout: LayoutStrategyTable, Fields: map[string]string{"title": "RETURNS", "disclaimer": "Past performance..."},
			Columns: []string{"Period", "Return"}, Rows: [][]string{{"1Y", "8.2%"}, {"3Y", "6.1%"}, {"5Y"}}},
	}
}

func TestSync_RoundTrip(t *testing.T) {
	for _, s := range sampleSlides() {
		t.Run(s.Layout, func(t *testing.T) {
			got := SyncElementsToSlide(ElementsFromSlide(s, Options{}), s, Options{})

			require.Equal(t, s.Layout, got.Layout)
			require.Equal(t, s.Fields, got.Fields)
			require.Equal(t, s.Pillars, got.Pillars)
			require.Equal(t, s.Components, got.Components)
			require.Equal(t, s.Cases, got.Cases)
			require.Equal(t, s.Definitions, got.Definitions)
			require.Equal(t, s.Columns, got.Columns)
			require.Equal(t, s.Rows, got.Rows)
		})
	}
}

func TestSync_RoundTripIsStable(t *testing.T) {
	s := sampleSlides()[2]
	once := SyncElementsToSlide(ElementsFromSlide(s, Options{}), s, Options{})
	twice := SyncElementsToSlide(ElementsFromSlide(once, Options{}), once, Options{})
	require.True(t, Equal(once, twice))
}

func TestSync_SparsePillars(t *testing.T) {
	original := NewSlide(LayoutThreePillars)
	got := SyncElementsToSlide([]Element{
		group("pillar_2", `{"label":"Third","description":"3"}`),
	}, original, Options{})

	require.Len(t, got.Pillars, 3)
	require.Equal(t, Pillar{}, got.Pillars[0])
	require.Equal(t, Pillar{}, got.Pillars[1])
	require.Equal(t, Pillar{Label: "Third", Description: "3"}, got.Pillars[2])
	require.Nil(t, original.Pillars, "original must not be mutated")
}

func TestSync_SparseSubfields(t *testing.T) {
	got := SyncElementsToSlide([]Element{
		text("component_3_title", "Fourth"),
		text("cell_1_2", "x"),
	}, NewSlide(LayoutFiveComponentDiagram), Options{})

	require.Len(t, got.Components, 4)
	require.Equal(t, "Fourth", got.Components[3].Title)
	require.Len(t, got.Rows, 2)
	require.Equal(t, []string{}, got.Rows[0])
	require.Equal(t, []string{"", "", "x"}, got.Rows[1])
}

func TestSync_MalformedPackedContentKeepsPriorValue(t *testing.T) {
	original := NewSlide(LayoutThreePillars)
	original.Pillars = []Pillar{{Label: "Keep", Description: "me"}}

	got := SyncElementsToSlide([]Element{
		group("pillar_0", `{"label": "Broken`),
		group("pillar_1", `["not", "an", "object"]`),
	}, original, Options{})

	require.Equal(t, []Pillar{{Label: "Keep", Description: "me"}}, got.Pillars)
}

func TestSync_PartialPackedContent(t *testing.T) {
	original := NewSlide(LayoutThreePillars)
	original.Pillars = []Pillar{{Label: "Old", Description: "kept"}}

	got := SyncElementsToSlide([]Element{group("pillar_0", `{"label":"New","description":null}`)}, original, Options{})
	require.Equal(t, Pillar{Label: "New", Description: "kept"}, got.Pillars[0])
}

func TestSync_TypeMismatchIgnored(t *testing.T) {
	original := NewSlide(LayoutCover)
	original.SetField("title", "ORIGINAL")

	got := SyncElementsToSlide([]Element{
		{ID: "title", Type: ElementImage, Content: "https://example.com/x.png"},
		{ID: "image", Type: ElementText, Content: "not an image"},
		{ID: "pillar_0", Type: ElementText, Content: `{"label":"x"}`},
	}, original, Options{})

	require.Equal(t, "ORIGINAL", got.Field("title"))
	require.False(t, got.HasField("image_url"))
	require.Nil(t, got.Pillars)
}

func TestSync_ResultRedirect(t *testing.T) {
	original := NewSlide(LayoutCompositeThree)
	original.Components = []Component{{Title: "A"}, {Title: "B", IsResult: true}}

	got := SyncElementsToSlide([]Element{
		text("result_title", "Outcome"),
		text("result_body", "Better"),
	}, original, Options{})

	require.Equal(t, Component{Title: "Outcome", Body: "Better", IsResult: true}, got.Components[1])
	require.Equal(t, Component{Title: "A"}, got.Components[0])
}

func TestSync_ResultWithoutFlagIsNoop(t *testing.T) {
	original := NewSlide(LayoutCompositeThree)
	original.Components = []Component{{Title: "A"}, {Title: "B"}}

	got := SyncElementsToSlide([]Element{text("result_title", "Outcome")}, original, Options{})
	require.Equal(t, original.Components, got.Components)
}

func TestSync_PositionsReplacedOnlyWhenChanged(t *testing.T) {
	original := NewSlide(LayoutCover)
	original.SetField("title", "T")
	original.Positions = map[string]Rect{"title": {X: 1, Y: 2, W: 3, H: 4}}

	same := SyncElementsToSlide([]Element{
		{ID: "title", Type: ElementText, Content: "T", X: 1, Y: 2, W: 3, H: 4},
	}, original, Options{})
	require.Equal(t, original.Positions, same.Positions)
	require.True(t, Equal(original, same))

	moved := SyncElementsToSlide([]Element{
		{ID: "title", Type: ElementText, Content: "T", X: 5, Y: 2, W: 3, H: 4},
	}, original, Options{})
	require.Equal(t, Rect{X: 5, Y: 2, W: 3, H: 4}, moved.Positions["title"])
	require.Equal(t, 1.0, original.Positions["title"].X, "original must not be mutated")
}

func TestSync_UntouchedCanvasRecordsNoPositions(t *testing.T) {
	for _, s := range sampleSlides() {
		t.Run(s.Layout, func(t *testing.T) {
			s.CustomElements = []Element{{ID: "custom_note", Type: ElementText, X: 2, Y: 2, W: 1, H: 1}}
			got := SyncElementsToSlide(ElementsFromSlide(s, Options{}), s, Options{})
			require.Nil(t, got.Positions)
			require.True(t, Equal(s, got))
		})
	}
}

func TestSync_OnlyMovedElementsBecomeOverrides(t *testing.T) {
	s := sampleSlides()[2]
	els := ElementsFromSlide(s, Options{})
	for i := range els {
		if els[i].ID == "pillar_0" {
			els[i].X += 0.5
		}
	}
	got := SyncElementsToSlide(els, s, Options{})
	require.Len(t, got.Positions, 1)
	require.Contains(t, got.Positions, "pillar_0")

	// The override survives a later untouched sync.
	again := SyncElementsToSlide(ElementsFromSlide(got, Options{}), got, Options{})
	require.Equal(t, got.Positions, again.Positions)
}

func TestSync_IndexBeyondLimitIsIgnored(t *testing.T) {
	got := SyncElementsToSlide([]Element{text("case_10_title", "overflow")}, NewSlide(LayoutUseCases), Options{})
	require.Nil(t, got.Cases)

	got = SyncElementsToSlide([]Element{text("case_10_title", "fits")}, NewSlide(LayoutUseCases), Options{MaxIndexedRecords: 12})
	require.Len(t, got.Cases, 11)
	require.Equal(t, "fits", got.Cases[10].Title)
}

func TestExtractCustomElements(t *testing.T) {
	els := []Element{
		text("title", "T"),
		text("logo", ""),
		text("pillar_0", ""),
		text("cell_9_9", ""),
		text("quote", "not a cover field"),
		text("custom_1", "mine"),
		text("pillar_10", "overflow"),
		text("", "no id"),
	}

	got := ExtractCustomElements(els, LayoutCover, Options{})
	ids := make([]string, 0, len(got))
	for _, el := range got {
		ids = append(ids, el.ID)
	}
	require.Equal(t, []string{"quote", "custom_1", "pillar_10"}, ids)
}

func TestSlideJSON_PreservesUnknownMembers(t *testing.T) {
	in := `{
		"layout": "three_pillars",
		"title": "PILLARS",
		"speaker_notes": "say hi",
		"chart_data": {"series": [1, 2]},
		"footnote": null,
		"pillars": [{"label": "A", "description": "a"}, "junk"],
		"components": [{"title": "X", "is_result": "true"}],
		"cases": "not an array",
		"_positions": {"title": {"x": 1, "y": 2, "w": 3, "h": 4}},
		"_customElements": [{"id": "custom_1", "type": "shape", "x": 1, "y": 1, "w": 2, "h": 2, "style": {"fill": "#000"}}]
	}`

	var s Slide
	require.NoError(t, json.Unmarshal([]byte(in), &s))

	require.Equal(t, "three_pillars", s.Layout)
	require.Equal(t, "say hi", s.Field("speaker_notes"))
	require.False(t, s.HasField("footnote"))
	require.Equal(t, []Pillar{{"A", "a"}, {}}, s.Pillars)
	require.False(t, s.Components[0].IsResult)
	require.Nil(t, s.Cases)
	require.JSONEq(t, `"not an array"`, string(s.Extra["cases"]))
	require.JSONEq(t, `{"series":[1,2]}`, string(s.Extra["chart_data"]))
	require.Equal(t, Rect{X: 1, Y: 2, W: 3, H: 4}, s.Positions["title"])
	require.Len(t, s.CustomElements, 1)
	require.JSONEq(t, `{"fill":"#000"}`, string(s.CustomElements[0].Style))

	out, err := json.Marshal(s)
	require.NoError(t, err)

	var again Slide
	require.NoError(t, json.Unmarshal(out, &again))
	require.True(t, Equal(s, again))
}

func TestSlideJSON_EmptyArraySurvives(t *testing.T) {
	var s Slide
	require.NoError(t, json.Unmarshal([]byte(`{"layout":"three_pillars","pillars":[]}`), &s))
	require.NotNil(t, s.Pillars)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"layout":"three_pillars","pillars":[]}`, string(out))
}

func TestSlideJSON_RejectsNonObject(t *testing.T) {
	var s Slide
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &s))
}

func TestPresent(t *testing.T) {
	s := Slide{
		Layout: LayoutChart,
		Fields: map[string]string{"title": "  ", "footnote": "Source: x"},
		Extra:  map[string]json.RawMessage{"series": json.RawMessage(`[]`), "meta": json.RawMessage(`{}`)},
	}
	require.False(t, s.Present("title"))
	require.True(t, s.Present("footnote"))
	require.False(t, s.Present("series"))
	require.True(t, s.Present("meta"))
	require.False(t, s.Present("pillars"))
	require.False(t, s.Present("missing"))

	var typed Slide
	require.NoError(t, typed.UnmarshalJSON([]byte(`{"layout":"cover","title":123,"image_url":true}`)))
	require.False(t, typed.Present("title"))
	require.False(t, typed.Present("image_url"))
	require.JSONEq(t, `123`, string(typed.Extra["title"]), "mistyped value is still preserved")
}
