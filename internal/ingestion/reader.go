package ingestion

import (
	"errors"

	"fileflow/internal/domain"
)

// ErrSchemaValidation tags structural errors that fail a whole file before
// (or instead of) any record: bad root element, missing required header,
// delimiter mismatch.
var ErrSchemaValidation = errors.New("schema validation failed")

// RecordReader streams one file as a lazy, single-pass record sequence.
// Next returns io.EOF once the file is exhausted; a *validator.RecordError
// fails only the record it belongs to, any other error fails the file.
// Close releases the underlying file handle and is safe after partial
// iteration.
type RecordReader interface {
	Next() (domain.Record, error)
	Close() error
}
