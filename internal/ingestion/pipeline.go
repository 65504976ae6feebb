package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fileflow/internal/domain"
	"fileflow/internal/repository"
	"fileflow/pkg/validator"

	"github.com/sirupsen/logrus"
)

// RecordPersister upserts one validated record into the target store.
type RecordPersister interface {
	Persist(ctx context.Context, rules []domain.FieldRule, validated domain.Record) error
}

// DuplicateDBChecker reports whether a record's duplicate-check fields match
// an already persisted entry.
type DuplicateDBChecker interface {
	Exists(ctx context.Context, rules []domain.FieldRule, validated domain.Record, duplicateFields []string) (bool, error)
}

// Pipeline runs the per-file ingestion state machine: validate each record,
// detect duplicates in file and in store, persist, and write one import log
// line per record. A failing record never aborts the file; structural errors
// from the reader propagate to the caller.
type Pipeline struct {
	logs   repository.ImportLogRepository
	fields *validator.FieldValidator
	log    *logrus.Logger
}

// NewPipeline creates a pipeline writing to the given import log store.
func NewPipeline(logs repository.ImportLogRepository, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		logs:   logs,
		fields: validator.NewFieldValidator(),
		log:    log,
	}
}

// Process ingests every record the reader yields and returns the number of
// successfully persisted records. onRecord, when non-nil, is invoked exactly
// once per processed record, success or failure.
func (p *Pipeline) Process(
	ctx context.Context,
	fileName string,
	schema domain.FileSchema,
	records RecordReader,
	persister RecordPersister,
	dbChecker DuplicateDBChecker,
	onRecord func(),
) (int, error) {
	importLog, err := p.logs.Start(ctx, fileName)
	if err != nil {
		return 0, fmt.Errorf("cannot open import log for %s: %w", fileName, err)
	}

	inFile := NewInFileChecker()
	success := 0
	line := 0

	for {
		raw, readErr := records.Next()
		if readErr == io.EOF {
			break
		}
		line++

		var recErr *validator.RecordError
		switch {
		case readErr == nil:
			recErr = p.processRecord(ctx, schema, raw, inFile, persister, dbChecker, line)
		case errors.As(readErr, &recErr):
			// per-record reader failure, logged below
		default:
			// structural or I/O failure: the file is done for
			return success, readErr
		}

		if recErr == nil {
			success++
			if err := p.logs.AddLine(ctx, importLog.ID, line, domain.LineStatusSuccess, ""); err != nil {
				return success, fmt.Errorf("cannot append import log line: %w", err)
			}
		} else {
			p.log.WithFields(logrus.Fields{"file": fileName, "line": line, "code": recErr.Code}).
				Debug("record rejected")
			if err := p.logs.AddLine(ctx, importLog.ID, line, domain.LineStatusFailed, recErr.Error()); err != nil {
				return success, fmt.Errorf("cannot append import log line: %w", err)
			}
		}

		if onRecord != nil {
			onRecord()
		}
	}

	if _, err := p.logs.Finalize(ctx, importLog.ID); err != nil {
		return success, fmt.Errorf("cannot finalize import log for %s: %w", fileName, err)
	}
	return success, nil
}

// processRecord applies validation, duplicate detection and persistence to
// one record, collapsing every failure into a RecordError.
func (p *Pipeline) processRecord(
	ctx context.Context,
	schema domain.FileSchema,
	raw domain.Record,
	inFile *InFileChecker,
	persister RecordPersister,
	dbChecker DuplicateDBChecker,
	line int,
) *validator.RecordError {
	validated := make(domain.Record, len(schema.Fields))
	for _, rule := range schema.Fields {
		value, ok, err := p.fields.Validate(rule, raw[rule.Name], line)
		if err != nil {
			var recErr *validator.RecordError
			errors.As(err, &recErr)
			return recErr
		}
		if ok {
			validated[rule.Name] = value
		} else {
			validated[rule.Name] = ""
		}
	}

	if len(schema.DuplicateCheck) > 0 {
		key := BuildKey(schema.DuplicateCheck, validated)
		if inFile.IsDuplicate(key) {
			return validator.NewRecordError(validator.CodeDuplicateInFile,
				strings.Join(schema.DuplicateCheck, ","), line,
				fmt.Sprintf("duplicate key in file for fields: %v", schema.DuplicateCheck))
		}
		exists, err := dbChecker.Exists(ctx, schema.Fields, validated, schema.DuplicateCheck)
		if err != nil {
			return technicalError(line, err)
		}
		if exists {
			return validator.NewRecordError(validator.CodeDuplicateInDB,
				strings.Join(schema.DuplicateCheck, ","), line,
				fmt.Sprintf("duplicate key in store for fields: %v", schema.DuplicateCheck))
		}
	}

	if err := persister.Persist(ctx, schema.Fields, validated); err != nil {
		return technicalError(line, err)
	}
	return nil
}

// technicalError wraps an unexpected persistence or lookup failure so it
// fails only the current record.
func technicalError(line int, err error) *validator.RecordError {
	return &validator.RecordError{Code: validator.CodeTechnical, Line: line, Msg: err.Error()}
}
