package validator

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fileflow/internal/domain"
)

// ErrorCode normalizes the reasons a record can be refused.
type ErrorCode string

const (
	CodeMissingColumn   ErrorCode = "MISSING_COLUMN"
	CodeRequiredMissing ErrorCode = "REQUIRED_FIELD_MISSING"
	CodeNullNotAllowed  ErrorCode = "NULL_NOT_ALLOWED"
	CodeTypeMismatch    ErrorCode = "TYPE_MISMATCH"
	CodePatternMismatch ErrorCode = "PATTERN_MISMATCH"
	CodeDuplicateInFile ErrorCode = "DUPLICATE_IN_FILE"
	CodeDuplicateInDB   ErrorCode = "DUPLICATE_IN_DB"
	CodeTechnical       ErrorCode = "TECHNICAL"
)

// RecordError is a per-record validation failure. It fails only the record it
// belongs to; the pipeline turns it into an import log line.
type RecordError struct {
	Code  ErrorCode
	Field string
	Line  int
	Msg   string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s - %s", e.Code, e.Msg)
}

// NewRecordError builds a RecordError for the given code, field and line.
func NewRecordError(code ErrorCode, field string, line int, msg string) *RecordError {
	return &RecordError{Code: code, Field: field, Line: line, Msg: msg}
}

// FieldValidator applies the validation rules for a single field: required /
// nullable checks, type compatibility, then the optional regex pattern.
type FieldValidator struct{}

// NewFieldValidator creates a new field validator.
func NewFieldValidator() *FieldValidator {
	return &FieldValidator{}
}

// Validate checks one raw value against one rule. A blank accepted value
// (nullable, not required) comes back as "" with ok=false; a valid non-blank
// value comes back trimmed with ok=true. Conversion to a native type happens
// later, at persistence and duplicate-check time.
func (v *FieldValidator) Validate(rule domain.FieldRule, raw string, line int) (value string, ok bool, err error) {
	if strings.TrimSpace(raw) == "" {
		if rule.Required {
			return "", false, NewRecordError(CodeRequiredMissing, rule.Name, line,
				fmt.Sprintf("required field '%s' is missing/empty", rule.Name))
		}
		if !rule.Nullable {
			return "", false, NewRecordError(CodeNullNotAllowed, rule.Name, line,
				fmt.Sprintf("field '%s' cannot be null/empty", rule.Name))
		}
		return "", false, nil
	}

	value = strings.TrimSpace(raw)

	if !TypeMatches(rule.Type, value) {
		return "", false, NewRecordError(CodeTypeMismatch, rule.Name, line,
			fmt.Sprintf("type mismatch for '%s': expected %s", rule.Name, rule.Type))
	}

	if rule.Pattern != "" {
		matched, matchErr := regexp.MatchString("^(?:"+rule.Pattern+")$", value)
		if matchErr != nil || !matched {
			return "", false, NewRecordError(CodePatternMismatch, rule.Name, line,
				fmt.Sprintf("field '%s' does not match pattern", rule.Name))
		}
	}

	return value, true, nil
}

// TypeMatches reports whether a raw string is a valid literal for the type.
func TypeMatches(t domain.FieldType, raw string) bool {
	switch t {
	case domain.FieldTypeLong:
		_, err := strconv.ParseInt(raw, 10, 64)
		return err == nil
	case domain.FieldTypeDecimal:
		_, _, err := big.ParseFloat(raw, 10, 128, big.ToNearestEven)
		return err == nil
	case domain.FieldTypeDate:
		_, err := time.Parse("2006-01-02", raw)
		return err == nil
	default:
		return true
	}
}

// Convert turns a validated string into its native Go value: LONG -> int64,
// LOCAL_DATE -> time.Time, DECIMAL -> the exact string (bound to numeric at
// the database boundary), STRING -> string.
func Convert(t domain.FieldType, value string) (any, error) {
	switch t {
	case domain.FieldTypeLong:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to LONG: %w", value, err)
		}
		return n, nil
	case domain.FieldTypeDate:
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to LOCAL_DATE: %w", value, err)
		}
		return d, nil
	case domain.FieldTypeDecimal:
		if _, _, err := big.ParseFloat(value, 10, 128, big.ToNearestEven); err != nil {
			return nil, fmt.Errorf("cannot convert %q to DECIMAL: %w", value, err)
		}
		return value, nil
	default:
		return value, nil
	}
}
