package store

import (
	"encoding/json"
	"strings"

	"github.com/jward/doctree/internal/model"
)

// marshalList converts a slice to JSON text for storage. Empty slices are
// stored as "[]".
func marshalList[T any](items []T) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// unmarshalList converts JSON text back to a slice. Empty input and "[]"
// both yield nil.
func unmarshalList[T any](s string) []T {
	if s == "" || s == "null" || s == "[]" {
		return nil
	}
	var items []T
	_ = json.Unmarshal([]byte(s), &items)
	return items
}

// normalizePath rewrites "#" separators to "." so that lookups match the
// stored form of a path.
func normalizePath(path string) string {
	return strings.Join(model.SplitPath(path), ".")
}
