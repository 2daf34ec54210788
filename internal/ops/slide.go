package ops

import (
	"encoding/json"

	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
)

// SyncInput contains parameters for the Sync operation.
type SyncInput struct {
	Slide    json.RawMessage // required: the slide the canvas was generated from
	Elements []deck.Element  // the edited canvas
}

// SyncOutput contains the result of the Sync operation.
type SyncOutput struct {
	Slide          deck.Slide     `json:"slide"`
	CustomElements []deck.Element `json:"custom_elements"`
	Changed        bool           `json:"changed"`
}

// Sync re-derives a slide from an edited canvas. Malformed element content
// never fails the operation; affected fields keep their previous values.
func Sync(cfg *config.Config, input SyncInput) (*SyncOutput, error) {
	orig, err := parseSlide("slide", input.Slide)
	if err != nil {
		return nil, err
	}

	d := deck.NewDocument(deck.Outline{Slides: []deck.Slide{orig}}, deckOptions(cfg))
	changed, err := d.ApplyCanvas(0, input.Elements)
	if err != nil {
		return nil, err
	}
	s, err := d.Slide(0)
	if err != nil {
		return nil, err
	}

	custom := s.CustomElements
	if custom == nil {
		custom = []deck.Element{}
	}
	return &SyncOutput{
		Slide:          s,
		CustomElements: custom,
		Changed:        changed,
	}, nil
}

// ElementsInput contains parameters for the Elements operation.
type ElementsInput struct {
	Slide json.RawMessage // required
}

// ElementsOutput contains the result of the Elements operation.
type ElementsOutput struct {
	Layout   string         `json:"layout"`
	Elements []deck.Element `json:"elements"`
}

// Elements generates the canvas for a slide: layout elements with their
// default or overridden geometry, then custom elements.
func Elements(cfg *config.Config, input ElementsInput) (*ElementsOutput, error) {
	s, err := parseSlide("slide", input.Slide)
	if err != nil {
		return nil, err
	}
	els := deck.ElementsFromSlide(s, deckOptions(cfg))
	if els == nil {
		els = []deck.Element{}
	}
	return &ElementsOutput{Layout: s.Layout, Elements: els}, nil
}
