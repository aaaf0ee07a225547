package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalEmbedding converts a vector to JSON TEXT for storage. A nil or
// empty vector is stored as SQL NULL.
func marshalEmbedding(vec []float32) (any, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}
	return string(data), nil
}

// unmarshalEmbedding parses a JSON TEXT column back into a vector.
// NULL yields nil.
func unmarshalEmbedding(data sql.NullString) ([]float32, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var vec []float32
	if err := json.Unmarshal([]byte(data.String), &vec); err != nil {
		return nil, fmt.Errorf("unmarshal embedding: %w", err)
	}
	return vec, nil
}

// marshalPayload converts a queue payload to JSON TEXT for storage.
func marshalPayload(payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses a JSON TEXT payload column.
func unmarshalPayload(data string) (map[string]any, error) {
	if data == "" {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return payload, nil
}

// nullable converts an optional string to its SQL representation.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// fromNull converts a nullable TEXT column back to a plain string.
func fromNull(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}
