package record

import (
	"encoding/json"
	"fmt"
)

// ParseDynamicJSON parses JSON data from a byte slice into a DynamicRecord map.
// It returns ErrJSONUnmarshalFailed (wrapping the original error) if unmarshalling fails.
func ParseDynamicJSON(data []byte) (DynamicRecord, error) {
	var rec DynamicRecord

	err := json.Unmarshal(data, &rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	return rec, nil
}
