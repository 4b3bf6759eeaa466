package audit

import "encoding/json"

// maxStringLen caps individual string values in audit records so one
// oversized note cannot bloat the trail.
const maxStringLen = 500

// sanitize normalizes a scanned row for serialization: byte slices become
// strings and long strings are truncated.
func sanitize(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch s := v.(type) {
		case []byte:
			out[k] = truncate(string(s))
		case string:
			out[k] = truncate(s)
		default:
			out[k] = v
		}
	}
	return out
}

// truncate caps a string at maxStringLen characters, never splitting a
// multi-byte rune (names and notes here are mostly Arabic).
func truncate(s string) string {
	if len(s) <= maxStringLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxStringLen {
		return s
	}
	return string(runes[:maxStringLen]) + "..."
}

// marshalValues serializes a sanitized row to the JSON stored in the
// audit record.
func marshalValues(values map[string]any) (string, error) {
	if values == nil {
		return "", nil
	}
	b, err := json.Marshal(sanitize(values))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
