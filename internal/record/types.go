package record

import (
	"fmt"
	"time"
)

// DynamicRecord represents a trip record with arbitrary key-value pairs,
// typically parsed from JSON.
type DynamicRecord map[string]interface{}

// GetInt64 retrieves an integer value for a given key.
// Handles missing keys, null values, and the float64 representation
// JSON unmarshalling produces for numbers.
// Returns the value pointer and true if successful, otherwise (nil, false).
func (dr DynamicRecord) GetInt64(key string) (*int64, bool) {
	val, exists := dr[key]
	if !exists || val == nil {
		return nil, false
	}

	switch v := val.(type) {
	case float64:
		// JSON numbers arrive as float64; reject non-integral values.
		iVal := int64(v)
		if float64(iVal) != v {
			return nil, false
		}
		return &iVal, true
	case int:
		iVal := int64(v)
		return &iVal, true
	case int64:
		return &v, true
	case int32:
		iVal := int64(v)
		return &iVal, true
	}

	// Value exists but is not a convertible integer type
	return nil, false
}

// HasNonNull checks if a key exists and its value is not explicitly null.
func (dr DynamicRecord) HasNonNull(key string) bool {
	val, exists := dr[key]
	return exists && val != nil
}

// GetTime attempts to retrieve a time.Time value for a given key.
// Assumes the timestamp is stored as a string parsable by common formats.
// Returns the time pointer and true if successful, otherwise (nil, false).
func (dr DynamicRecord) GetTime(key string) (*time.Time, bool) {
	val, exists := dr[key]
	if !exists || val == nil {
		return nil, false
	}

	timeStr, ok := val.(string)
	if !ok {
		// Value exists but is not a string
		return nil, false
	}

	// Define common timestamp formats to try
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z07:00", // RFC3339 without nano part
		"2006-01-02 15:04:05",       // Common space-separated format
	}

	// Attempt parsing with each defined format
	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return &t, true
		}
	}

	// None of the defined formats matched
	return nil, false
}

// FieldSnippet returns a string snippet of a field's value, useful for logging.
// It handles missing keys and truncates long values.
func (dr DynamicRecord) FieldSnippet(fieldName string, maxLength int) string {
	value, exists := dr[fieldName]
	if !exists {
		return "<missing>"
	}

	strValue := fmt.Sprintf("%v", value)

	if maxLength <= 0 {
		return "..."
	}

	// Truncate if the string representation exceeds the max length
	if len(strValue) > maxLength {
		return strValue[:maxLength] + "..."
	}

	return strValue
}
