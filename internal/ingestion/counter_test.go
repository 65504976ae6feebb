package ingestion

import (
	"context"
	"testing"

	"fileflow/internal/domain"
)

type stubSchemaLoader struct {
	csv domain.FileSchema
	xml domain.FileSchema
}

func (s *stubSchemaLoader) LoadCSV(ctx context.Context, configID string) (domain.FileSchema, error) {
	return s.csv, nil
}

func (s *stubSchemaLoader) LoadXML(ctx context.Context, configID string) (domain.FileSchema, error) {
	return s.xml, nil
}

func TestCountRecordsCSV(t *testing.T) {
	counter := NewCounter(&stubSchemaLoader{csv: employeeCSVSchema()})
	path := writeTempFile(t, "count.csv", "id,firstName,salary\n1,Alice,10\n\n2,Bob,20\n")

	n, err := counter.CountRecords(context.Background(), path, "employees")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("blank lines and the header must not count, got %d", n)
	}
}

func TestCountRecordsCSVNoHeader(t *testing.T) {
	schema := employeeCSVSchema()
	schema.HasHeader = false
	counter := NewCounter(&stubSchemaLoader{csv: schema})
	path := writeTempFile(t, "count.csv", "1,Alice,10\n2,Bob,20\n")

	n, err := counter.CountRecords(context.Background(), path, "employees")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 records, got %d (%v)", n, err)
	}
}

func TestCountRecordsXML(t *testing.T) {
	counter := NewCounter(&stubSchemaLoader{xml: employeeXMLSchema()})
	path := writeTempFile(t, "count.xml",
		`<employees><employee><id>1</id></employee><employee><id>2</id></employee><employee><id>3</id></employee></employees>`)

	n, err := counter.CountRecords(context.Background(), path, "employees")
	if err != nil || n != 3 {
		t.Fatalf("expected 3 records, got %d (%v)", n, err)
	}
}

func TestCountRecordsUnknownExtension(t *testing.T) {
	counter := NewCounter(&stubSchemaLoader{})
	path := writeTempFile(t, "notes.txt", "whatever\n")

	n, err := counter.CountRecords(context.Background(), path, "employees")
	if err != nil || n != 0 {
		t.Fatalf("unknown extensions contribute zero, got %d (%v)", n, err)
	}
}
