package driver

import (
	"encoding/json"
	"fmt"
)

// decodeProperties parses a JSON-encoded property map as stored by the embedded stores.
func decodeProperties(v any) (map[string]any, error) {
	var raw []byte
	switch p := v.(type) {
	case string:
		raw = []byte(p)
	case []byte:
		raw = p
	case nil:
		return map[string]any{}, nil
	default:
		return nil, NewTypeConversionError("JSON properties", fmt.Sprintf("%T", v), "properties")
	}

	props := make(map[string]any)
	if len(raw) == 0 {
		return props, nil
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return props, nil
}
