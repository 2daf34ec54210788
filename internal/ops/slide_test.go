package ops

import (
	"encoding/json"
	"testing"

	"github.com/hpungsan/slate/internal/deck"
	"github.com/hpungsan/slate/internal/errors"
)

const coverSlide = `{"layout": "cover", "title": "GLOBAL INCOME", "subtitle": "Q3 review"}`

func canvasFor(t *testing.T, slide string) []deck.Element {
	t.Helper()
	out, err := Elements(nil, ElementsInput{Slide: json.RawMessage(slide)})
	if err != nil {
		t.Fatalf("Elements failed: %v", err)
	}
	return out.Elements
}

func TestElements_Cover(t *testing.T) {
	out, err := Elements(nil, ElementsInput{Slide: json.RawMessage(coverSlide)})
	if err != nil {
		t.Fatalf("Elements failed: %v", err)
	}
	if out.Layout != "cover" {
		t.Errorf("Layout = %q", out.Layout)
	}

	byID := make(map[string]deck.Element)
	for _, el := range out.Elements {
		byID[el.ID] = el
	}
	if byID["title"].Content != "GLOBAL INCOME" {
		t.Errorf("title content = %q", byID["title"].Content)
	}
	if _, ok := byID["date"]; ok {
		t.Error("absent fields must not produce elements")
	}
	if byID["title"].W <= 0 || byID["title"].H <= 0 {
		t.Errorf("title has no default geometry: %+v", byID["title"])
	}
}

func TestSync_UnchangedCanvas(t *testing.T) {
	out, err := Sync(nil, SyncInput{
		Slide:    json.RawMessage(coverSlide),
		Elements: canvasFor(t, coverSlide),
	})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if out.Changed {
		t.Error("Changed = true for an untouched canvas")
	}
	if out.CustomElements == nil || len(out.CustomElements) != 0 {
		t.Errorf("CustomElements = %v, want empty slice", out.CustomElements)
	}
}

func TestSync_EditAndCustomElement(t *testing.T) {
	els := canvasFor(t, coverSlide)
	for i := range els {
		if els[i].ID == "title" {
			els[i].Content = "GLOBAL INCOME 2026"
		}
	}
	els = append(els, deck.Element{ID: "custom_note", Type: deck.ElementText, X: 1, Y: 1, W: 2, H: 1, Content: "Draft"})

	out, err := Sync(nil, SyncInput{Slide: json.RawMessage(coverSlide), Elements: els})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if !out.Changed {
		t.Error("Changed = false after an edit")
	}
	if got := out.Slide.Field("title"); got != "GLOBAL INCOME 2026" {
		t.Errorf("title = %q", got)
	}
	if got := out.Slide.Field("subtitle"); got != "Q3 review" {
		t.Errorf("subtitle = %q, want untouched", got)
	}
	if len(out.CustomElements) != 1 || out.CustomElements[0].ID != "custom_note" {
		t.Errorf("CustomElements = %+v", out.CustomElements)
	}
}

func TestSync_MissingSlide(t *testing.T) {
	_, err := Sync(nil, SyncInput{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}
	_, err = Elements(nil, ElementsInput{Slide: json.RawMessage(`[]`)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for array slide, got: %v", err)
	}
}
