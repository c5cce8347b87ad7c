package common

import (
	"encoding/json"
	"fmt"
)

// DecodeDocument unmarshals a stored document into T. The backing store
// occasionally returns documents wrapped in whitespace or with a BOM left
// by older writers, so decoding trims to the outermost JSON object first.
func DecodeDocument[T any](data []byte) (*T, error) {
	start := -1
	end := -1
	for i, c := range data {
		if c == '{' {
			start = i
			break
		}
	}
	for i := len(data) - 1; i >= 0; i-- {
		if data[i] == '}' {
			end = i + 1
			break
		}
	}
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in document")
	}

	var result T
	if err := json.Unmarshal(data[start:end], &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &result, nil
}

// EncodeDocument marshals an entity for storage.
func EncodeDocument(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}
