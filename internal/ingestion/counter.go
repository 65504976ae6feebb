package ingestion

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fileflow/internal/domain"
)

// SchemaLoader resolves the persisted ingestion schema for a configuration.
type SchemaLoader interface {
	LoadCSV(ctx context.Context, configID string) (domain.FileSchema, error)
	LoadXML(ctx context.Context, configID string) (domain.FileSchema, error)
}

// Counter pre-computes record totals by streaming over inbound files, so a
// job can report percentages without ever loading a file into memory.
type Counter struct {
	schemas SchemaLoader
}

// NewCounter wires a counter over a schema loader.
func NewCounter(schemas SchemaLoader) *Counter {
	return &Counter{schemas: schemas}
}

// CountRecords counts the records of one file by extension. Unsupported
// extensions contribute zero.
func (c *Counter) CountRecords(ctx context.Context, path, configID string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		schema, err := c.schemas.LoadCSV(ctx, configID)
		if err != nil {
			return 0, err
		}
		return countCSVRecords(path, schema)
	case ".xml":
		schema, err := c.schemas.LoadXML(ctx, configID)
		if err != nil {
			return 0, err
		}
		return countXMLRecords(path, schema)
	default:
		return 0, nil
	}
}

// countCSVRecords counts non-blank lines, minus the header row when one is
// configured.
func countCSVRecords(path string, schema domain.FileSchema) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot count csv records for %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("cannot count csv records for %s: %w", filepath.Base(path), err)
	}

	if schema.HasHeader && count > 0 {
		count--
	}
	return count, nil
}

// countXMLRecords counts the start tags of the schema's record element.
func countXMLRecords(path string, schema domain.FileSchema) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot count xml records for %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	decoder := xml.NewDecoder(f)
	count := 0
	for {
		tok, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return 0, fmt.Errorf("cannot count xml records for %s: %w", filepath.Base(path), err)
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == schema.RecordElement {
			count++
		}
	}
	return count, nil
}
