package ingestion

import (
	"strings"

	"fileflow/internal/domain"
)

const keySeparator = "|"

// BuildKey joins the duplicate-check field values of a validated record with
// a fixed separator, in the configured field order. Missing fields contribute
// an empty segment, so the key is deterministic for any record shape.
func BuildKey(fields []string, record domain.Record) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = record[f]
	}
	return strings.Join(parts, keySeparator)
}

// InFileChecker remembers duplicate keys seen within a single file. The first
// occurrence of a key is never a duplicate.
type InFileChecker struct {
	seen map[string]struct{}
}

// NewInFileChecker creates an empty per-file checker.
func NewInFileChecker() *InFileChecker {
	return &InFileChecker{seen: make(map[string]struct{})}
}

// IsDuplicate reports whether the key was seen before, remembering it either
// way.
func (c *InFileChecker) IsDuplicate(key string) bool {
	if _, ok := c.seen[key]; ok {
		return true
	}
	c.seen[key] = struct{}{}
	return false
}
