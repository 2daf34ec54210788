package deck

import (
	"github.com/invopop/jsonschema"
)

// OutlineSchema returns the JSON Schema accepted for inbound outlines.
func OutlineSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true}
	return r.Reflect(&Outline{})
}

// JSONSchema describes the flat slide object. Unknown members are allowed
// and preserved.
func (Slide) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()

	layoutEnum := make([]any, 0, len(layouts))
	for _, name := range LayoutNames() {
		layoutEnum = append(layoutEnum, name)
	}
	props.Set(keyLayout, &jsonschema.Schema{
		Type:        "string",
		Description: "Layout discriminator. Unknown layouts are accepted but only checked generically.",
		Enum:        layoutEnum,
	})

	for _, id := range scalarOrder {
		sf := scalarIDs[id]
		desc := "Text field bound to the " + id + " element"
		if sf.kind == KindImage {
			desc = "Image URL bound to the " + id + " element"
		}
		props.Set(sf.field, &jsonschema.Schema{Type: "string", Description: desc})
	}

	props.Set(keyPillars, recordArray[Pillar]("Exactly three pillars on three_pillars slides"))
	props.Set(keyComponents, recordArray[Component]("Components; composite layouts flag exactly one with is_result"))
	props.Set(keyCases, recordArray[Case]("Use cases"))
	props.Set(keyDefinitions, recordArray[Definition]("Glossary entries"))
	props.Set(keyColumns, &jsonschema.Schema{
		Type:        "array",
		Description: "Table column headers",
		Items:       &jsonschema.Schema{Type: "string"},
	})
	props.Set(keyRows, &jsonschema.Schema{
		Type:        "array",
		Description: "Table rows of cell strings",
		Items:       &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
	})

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{keyLayout},
	}
}

func recordArray[T any](desc string) *jsonschema.Schema {
	r := jsonschema.Reflector{DoNotReference: true, AllowAdditionalProperties: true}
	var v T
	item := r.Reflect(&v)
	item.Version = ""
	item.ID = ""
	return &jsonschema.Schema{Type: "array", Description: desc, Items: item}
}
