package postgres

import (
	"encoding/json"
	"fmt"
)

// marshalColumn serializes a value for a JSONB column. A nil pointer or nil
// map/slice becomes SQL NULL.
func marshalColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column value: %w", err)
	}
	return data, nil
}

// unmarshalColumn deserializes a JSONB column into dst. NULL columns leave
// dst untouched.
func unmarshalColumn(data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal column value: %w", err)
	}
	return nil
}
