package snapshot

import (
	"encoding/json"
	"strings"
)

// The wire convention is camelCase, the internal convention snake_case. The
// translation is a structural key rewrite, reversible for every record. Keys
// listed here bypass the generic rule; the pair below is the one irregular
// mapping carried over from the wire format.
var (
	snakeToCamelExceptions = map[string]string{"po_number": "poNumber"}
	camelToSnakeExceptions = map[string]string{"poNumber": "po_number"}
)

// MarshalWire serializes a snapshot into its external camelCase form.
func MarshalWire(snap *Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(rewriteKeys(doc, camelKey))
}

// UnmarshalWire parses the external camelCase form back into a snapshot.
func UnmarshalWire(data []byte) (*Snapshot, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rewriteKeys(doc, snakeKey))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func rewriteKeys(doc any, rewrite func(string) string) any {
	switch v := doc.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[rewrite(key)] = rewriteKeys(val, rewrite)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = rewriteKeys(val, rewrite)
		}
		return out
	default:
		return v
	}
}

func camelKey(key string) string {
	if mapped, ok := snakeToCamelExceptions[key]; ok {
		return mapped
	}
	var b strings.Builder
	upper := false
	for _, r := range key {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func snakeKey(key string) string {
	if mapped, ok := camelToSnakeExceptions[key]; ok {
		return mapped
	}
	var b strings.Builder
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
