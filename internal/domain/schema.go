package domain

import (
	"fmt"
	"strings"
)

// FileFormat identifies the physical format a schema applies to.
type FileFormat string

const (
	FormatCSV FileFormat = "CSV"
	FormatXML FileFormat = "XML"
)

// FieldType represents the logical type of a mapped field.
type FieldType string

const (
	FieldTypeLong    FieldType = "LONG"
	FieldTypeString  FieldType = "STRING"
	FieldTypeDate    FieldType = "LOCAL_DATE"
	FieldTypeDecimal FieldType = "DECIMAL"
)

// FieldRule describes how one logical field is located, validated and typed.
// The source locator depends on the format: CSV records resolve by Header (or
// positional Index when the file has no header row), XML records by Tag.
type FieldRule struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Nullable bool      `json:"nullable"`
	Pattern  string    `json:"pattern,omitempty"`
	Header   string    `json:"header,omitempty"`
	Index    *int      `json:"index,omitempty"`
	Tag      string    `json:"tag,omitempty"`
}

// FileSchema is the resolved ingestion schema for one configuration id and
// format. Field order is meaningful: it drives record key order and the
// duplicate key layout.
type FileSchema struct {
	Format FileFormat `json:"format"`

	// CSV options
	Delimiter string `json:"delimiter,omitempty"`
	HasHeader bool   `json:"hasHeader,omitempty"`

	// XML options
	RootElement   string `json:"rootElement,omitempty"`
	RecordElement string `json:"recordElement,omitempty"`

	Fields         []FieldRule `json:"fields"`
	DuplicateCheck []string    `json:"duplicateCheck,omitempty"`
}

// FieldNames returns the schema's field names in declaration order.
func (s FileSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// RuleFor returns the rule for a field name and whether one exists.
func (s FileSchema) RuleFor(name string) (FieldRule, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldRule{}, false
}

// Validate checks schema level invariants: at least one field, a usable
// delimiter for CSV, root/record element names for XML, and every
// duplicate-check field referencing a declared field.
func (s FileSchema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema has no fields")
	}

	switch s.Format {
	case FormatCSV:
		if len(s.Delimiter) != 1 {
			return fmt.Errorf("csv delimiter must be a single character, got %q", s.Delimiter)
		}
	case FormatXML:
		if strings.TrimSpace(s.RootElement) == "" {
			return fmt.Errorf("xml schema is missing a root element")
		}
		if strings.TrimSpace(s.RecordElement) == "" {
			return fmt.Errorf("xml schema is missing a record element")
		}
	default:
		return fmt.Errorf("unsupported schema format %q", s.Format)
	}

	declared := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("schema contains a field without a name")
		}
		declared[f.Name] = struct{}{}
	}
	for _, d := range s.DuplicateCheck {
		if _, ok := declared[d]; !ok {
			return fmt.Errorf("duplicate-check field %q is not declared in the schema", d)
		}
	}
	return nil
}

// Record is one logical unit of input: field name -> raw string value.
// A blank value and an absent value are treated identically downstream,
// so readers may emit "" for missing fields.
type Record map[string]string
