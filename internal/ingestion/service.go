package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fileflow/internal/target"
)

// SchemaSource resolves a reader configuration into its file schemas and
// the target type its records persist to.
type SchemaSource interface {
	SchemaLoader
	TargetType(ctx context.Context, configID string) (string, error)
}

// Service ingests a single file end to end: it resolves the schema and
// handler for the configuration, opens the right reader for the file's
// extension and runs the record pipeline over it.
type Service struct {
	schemas  SchemaSource
	handlers *target.Registry
	pipeline *Pipeline
}

func NewService(schemas SchemaSource, handlers *target.Registry, pipeline *Pipeline) *Service {
	return &Service{schemas: schemas, handlers: handlers, pipeline: pipeline}
}

// IngestFile processes one file from the treatment folder and returns the
// number of successfully persisted records. Record-level failures are
// absorbed into the import log; a returned error means the file as a whole
// failed and no import can be attributed to it beyond the log entry.
func (s *Service) IngestFile(ctx context.Context, configID, path string, onRecord func()) (int, error) {
	targetType, err := s.schemas.TargetType(ctx, configID)
	if err != nil {
		return 0, err
	}
	handler, err := s.handlers.Resolve(targetType)
	if err != nil {
		return 0, err
	}

	var records RecordReader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		schema, err := s.schemas.LoadCSV(ctx, configID)
		if err != nil {
			return 0, err
		}
		records, err = OpenCSV(path, schema)
		if err != nil {
			return 0, err
		}
		defer records.Close()
		return s.pipeline.Process(ctx, filepath.Base(path), schema, records, handler, handler, onRecord)
	case ".xml":
		schema, err := s.schemas.LoadXML(ctx, configID)
		if err != nil {
			return 0, err
		}
		records, err = OpenXML(path, schema)
		if err != nil {
			return 0, err
		}
		defer records.Close()
		return s.pipeline.Process(ctx, filepath.Base(path), schema, records, handler, handler, onRecord)
	default:
		return 0, fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}
