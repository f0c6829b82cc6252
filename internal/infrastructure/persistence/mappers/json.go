package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

func marshalJSON(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	return datatypes.JSON(data), nil
}

func unmarshalStringMap(data datatypes.JSON) (map[string]string, error) {
	out := make(map[string]string)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON map: %w", err)
	}
	if out == nil {
		out = make(map[string]string)
	}
	return out, nil
}

func unmarshalStrings(data datatypes.JSON) ([]string, error) {
	var out []string
	if len(data) == 0 {
		return []string{}, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
