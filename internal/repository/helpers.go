package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists")
}

// recordIDPart returns the document id of a stored record: the key of its
// record id, trimmed to the last path segment for nested documents.
func recordIDPart(row interface{}) string {
	m, ok := row.(map[string]interface{})
	if !ok {
		return ""
	}

	var key string
	switch v := m["id"].(type) {
	case models.RecordID:
		key = fmt.Sprint(v.ID)
	case *models.RecordID:
		if v != nil {
			key = fmt.Sprint(v.ID)
		}
	case string:
		// table:key
		if i := strings.Index(v, ":"); i >= 0 {
			key = v[i+1:]
		} else {
			key = v
		}
	}

	key = strings.Trim(key, "⟨⟩`")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	return key
}

// encodeDocument converts a SurrealDB record into the JSON document callers
// see: bookkeeping fields stripped, the record id replaced by the document id.
func encodeDocument(row interface{}, id string) (json.RawMessage, error) {
	m, ok := row.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected record format %T", row)
	}

	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch k {
		case "id", fieldParent, fieldCreatedOn:
			continue
		}
		out[k] = plainValue(v)
	}
	if id != "" {
		out["id"] = id
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// plainValue rewrites SurrealDB wire types into JSON friendly values
func plainValue(v interface{}) interface{} {
	switch t := v.(type) {
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t == nil {
			return nil
		}
		return t.Time
	case models.RecordID:
		return t.String()
	case *models.RecordID:
		if t == nil {
			return nil
		}
		return t.String()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, inner := range t {
			out[k] = plainValue(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, inner := range t {
			out[i] = plainValue(inner)
		}
		return out
	}
	return v
}

// normalizeFields round trips caller fields through JSON so the database
// driver only sees maps, slices and scalars.
func normalizeFields(fields map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	out := make(map[string]interface{})
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	for _, reserved := range []string{"id", fieldParent, fieldCreatedOn} {
		delete(out, reserved)
	}
	return out, nil
}
