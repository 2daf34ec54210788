package ops

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/hpungsan/slate/internal/compliance"
	"github.com/hpungsan/slate/internal/config"
	"github.com/hpungsan/slate/internal/deck"
)

// CheckInput contains parameters for the Check operation.
type CheckInput struct {
	Outline json.RawMessage // required
	Report  bool            // include a markdown report
}

// CheckOutput contains the result of the Check operation.
type CheckOutput struct {
	compliance.Result
	Title  string `json:"title"`
	Slides int    `json:"slides"`
	Report string `json:"report,omitempty"`
}

// Check runs the compliance validator over an outline. Validation findings
// are data, not errors; only an unreadable outline fails.
func Check(cfg *config.Config, input CheckInput) (*CheckOutput, error) {
	o, err := parseOutline("outline", input.Outline)
	if err != nil {
		return nil, err
	}

	opts := compliance.Options{}
	if cfg != nil {
		opts.MinSlideCount = cfg.MinSlideCount
	}
	res := compliance.Check(o, opts)

	out := &CheckOutput{
		Result: res,
		Title:  o.Title,
		Slides: len(o.Slides),
	}
	if input.Report {
		out.Report = compliance.Markdown(o.Title, res)
	}
	return out, nil
}

// SchemaOutput contains the result of the Schema operation.
type SchemaOutput struct {
	Schema  *jsonschema.Schema `json:"schema"`
	Layouts []string           `json:"layouts"`
}

// Schema returns the JSON Schema for inbound outlines and the known layouts.
func Schema() *SchemaOutput {
	return &SchemaOutput{
		Schema:  deck.OutlineSchema(),
		Layouts: deck.LayoutNames(),
	}
}
