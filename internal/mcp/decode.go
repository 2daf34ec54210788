package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// objectArgs are arguments that carry whole documents. Some clients send
// them as JSON-encoded strings; those are unwrapped before decoding.
var objectArgs = []string{"outline", "slide", "data", "elements", "boxes"}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	if args == nil {
		args = map[string]any{}
	}
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	b, err = unwrapStringArgs(b)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

func unwrapStringArgs(b []byte) ([]byte, error) {
	for _, key := range objectArgs {
		v := gjson.GetBytes(b, key)
		if v.Type != gjson.String {
			continue
		}
		s := strings.TrimSpace(v.String())
		if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
			continue
		}
		if !gjson.Valid(s) {
			return nil, fmt.Errorf("%s: invalid JSON", key)
		}
		var err error
		b, err = sjson.SetRawBytes(b, key, []byte(s))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return b, nil
}
