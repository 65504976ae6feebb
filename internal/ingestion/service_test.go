package ingestion

import (
	"context"
	"testing"

	"fileflow/internal/domain"
	"fileflow/internal/target"
)

type stubSchemaSource struct {
	stubSchemaLoader
	targetType string
}

func (s *stubSchemaSource) TargetType(ctx context.Context, configID string) (string, error) {
	return s.targetType, nil
}

// fakeHandler satisfies target.Handler over the pipeline stubs.
type fakeHandler struct {
	persister stubPersister
	checker   stubDBChecker
}

func (h *fakeHandler) Name() string { return "EMPLOYEES" }

func (h *fakeHandler) Persist(ctx context.Context, rules []domain.FieldRule, validated domain.Record) error {
	return h.persister.Persist(ctx, rules, validated)
}

func (h *fakeHandler) Exists(ctx context.Context, rules []domain.FieldRule, validated domain.Record, duplicateFields []string) (bool, error) {
	return h.checker.Exists(ctx, rules, validated, duplicateFields)
}

func newTestIngestService(t *testing.T, schemas *stubSchemaSource) (*Service, *fakeHandler, *stubLogRepo) {
	t.Helper()
	handler := &fakeHandler{}
	handlers := target.NewRegistry()
	if err := handlers.Register(handler); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	logs := newStubLogRepo()
	return NewService(schemas, handlers, NewPipeline(logs, testLogger())), handler, logs
}

func TestIngestFileCSV(t *testing.T) {
	schemas := &stubSchemaSource{
		stubSchemaLoader: stubSchemaLoader{csv: employeeCSVSchema()},
		targetType:       "EMPLOYEES",
	}
	service, handler, logs := newTestIngestService(t, schemas)

	path := writeTempFile(t, "batch.csv", "id,firstName,salary\n1,Alice,10.5\n2,Bob,\n")
	success, err := service.IngestFile(context.Background(), "employees", path, nil)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if success != 2 || len(handler.persister.persisted) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", success)
	}
	if log := logs.only(t); log.FileName != "batch.csv" {
		t.Fatalf("log must carry the treated file name, got %s", log.FileName)
	}
}

func TestIngestFileXML(t *testing.T) {
	schemas := &stubSchemaSource{
		stubSchemaLoader: stubSchemaLoader{xml: employeeXMLSchema()},
		targetType:       "EMPLOYEES",
	}
	service, handler, _ := newTestIngestService(t, schemas)

	content := `<employees><employee><id>3</id><firstName>Carol</firstName></employee></employees>`
	path := writeTempFile(t, "batch.xml", content)

	success, err := service.IngestFile(context.Background(), "employees", path, nil)
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if success != 1 || handler.persister.persisted[0]["id"] != "3" {
		t.Fatalf("unexpected persisted records: %v", handler.persister.persisted)
	}
}

func TestIngestFileUnknownExtension(t *testing.T) {
	schemas := &stubSchemaSource{targetType: "EMPLOYEES"}
	service, _, _ := newTestIngestService(t, schemas)

	path := writeTempFile(t, "batch.pdf", "junk")
	if _, err := service.IngestFile(context.Background(), "employees", path, nil); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestIngestFileUnknownTargetType(t *testing.T) {
	schemas := &stubSchemaSource{targetType: "INVOICES"}
	service, _, _ := newTestIngestService(t, schemas)

	path := writeTempFile(t, "batch.csv", "id\n1\n")
	if _, err := service.IngestFile(context.Background(), "employees", path, nil); err == nil {
		t.Fatalf("expected error for unregistered target type")
	}
}
