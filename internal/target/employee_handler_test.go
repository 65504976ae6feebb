package target

import (
	"context"
	"testing"
	"time"

	"fileflow/internal/domain"
)

type stubEmployeeRepo struct {
	upserted []domain.Employee
	existing map[int64]bool
	queries  []map[string]any
}

func (s *stubEmployeeRepo) Upsert(ctx context.Context, employee domain.Employee) error {
	s.upserted = append(s.upserted, employee)
	return nil
}

func (s *stubEmployeeRepo) ExistsByFields(ctx context.Context, fields map[string]any) (bool, error) {
	s.queries = append(s.queries, fields)
	if id, ok := fields["id"].(int64); ok {
		return s.existing[id], nil
	}
	return false, nil
}

func (s *stubEmployeeRepo) GetByID(ctx context.Context, id int64) (domain.Employee, error) {
	return domain.Employee{}, nil
}

func (s *stubEmployeeRepo) List(ctx context.Context, limit, offset int) ([]domain.Employee, error) {
	return nil, nil
}

func (s *stubEmployeeRepo) Delete(ctx context.Context, id int64) error { return nil }

func (s *stubEmployeeRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func employeeRules() []domain.FieldRule {
	return []domain.FieldRule{
		{Name: "id", Type: domain.FieldTypeLong, Required: true},
		{Name: "firstName", Type: domain.FieldTypeString, Required: true},
		{Name: "lastName", Type: domain.FieldTypeString, Required: true},
		{Name: "position", Type: domain.FieldTypeString, Nullable: true},
		{Name: "hireDate", Type: domain.FieldTypeDate, Nullable: true},
		{Name: "salary", Type: domain.FieldTypeDecimal, Nullable: true},
	}
}

func TestEmployeeHandlerPersist(t *testing.T) {
	repo := &stubEmployeeRepo{}
	h := NewEmployeeHandler(repo)

	record := domain.Record{
		"id":        "42",
		"firstName": "Alice",
		"lastName":  "Smith",
		"position":  "Engineer",
		"hireDate":  "2020-01-15",
		"salary":    "85000.50",
	}
	if err := h.Persist(context.Background(), employeeRules(), record); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}

	emp := repo.upserted[0]
	if emp.ID != 42 || emp.FirstName != "Alice" || emp.LastName != "Smith" {
		t.Fatalf("unexpected employee: %+v", emp)
	}
	if emp.Position == nil || *emp.Position != "Engineer" {
		t.Fatalf("position not mapped: %+v", emp.Position)
	}
	want := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)
	if emp.HireDate == nil || !emp.HireDate.Equal(want) {
		t.Fatalf("hire date not mapped: %+v", emp.HireDate)
	}
	if emp.Salary == nil || *emp.Salary != "85000.50" {
		t.Fatalf("salary must keep its exact text: %+v", emp.Salary)
	}
}

func TestEmployeeHandlerBlankOptionalStaysNil(t *testing.T) {
	repo := &stubEmployeeRepo{}
	h := NewEmployeeHandler(repo)

	record := domain.Record{
		"id": "7", "firstName": "Bo", "lastName": "Ek",
		"position": "", "hireDate": "", "salary": "",
	}
	if err := h.Persist(context.Background(), employeeRules(), record); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	emp := repo.upserted[0]
	if emp.Position != nil || emp.HireDate != nil || emp.Salary != nil {
		t.Fatalf("blank optional fields must stay nil: %+v", emp)
	}
}

func TestEmployeeHandlerMissingID(t *testing.T) {
	h := NewEmployeeHandler(&stubEmployeeRepo{})

	record := domain.Record{"id": "", "firstName": "Alice", "lastName": "Smith"}
	if err := h.Persist(context.Background(), employeeRules(), record); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestEmployeeHandlerExistsConvertsTypes(t *testing.T) {
	repo := &stubEmployeeRepo{existing: map[int64]bool{1: true}}
	h := NewEmployeeHandler(repo)

	record := domain.Record{"id": "1", "firstName": "Alice", "lastName": "Smith"}
	exists, err := h.Exists(context.Background(), employeeRules(), record,
		[]string{"id", "firstName", "lastName"})
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Fatalf("expected a match")
	}

	query := repo.queries[0]
	if _, ok := query["id"].(int64); !ok {
		t.Fatalf("id must be looked up as int64, got %T", query["id"])
	}
	if query["firstName"] != "Alice" {
		t.Fatalf("unexpected firstName value: %v", query["firstName"])
	}
}

func TestEmployeeHandlerExistsBlankFieldComparesAsNull(t *testing.T) {
	repo := &stubEmployeeRepo{}
	h := NewEmployeeHandler(repo)

	// salary is DECIMAL and nullable; a blank value must not be converted
	record := domain.Record{"id": "1", "salary": ""}
	if _, err := h.Exists(context.Background(), employeeRules(), record,
		[]string{"id", "salary"}); err != nil {
		t.Fatalf("exists failed: %v", err)
	}

	query := repo.queries[0]
	if v, ok := query["salary"]; !ok || v != nil {
		t.Fatalf("blank salary must be queried as nil, got %v", v)
	}
	if _, ok := query["id"].(int64); !ok {
		t.Fatalf("id must still be looked up as int64, got %T", query["id"])
	}
}

func TestEmployeeHandlerExistsNoFields(t *testing.T) {
	repo := &stubEmployeeRepo{}
	h := NewEmployeeHandler(repo)

	exists, err := h.Exists(context.Background(), employeeRules(), domain.Record{}, nil)
	if err != nil || exists {
		t.Fatalf("no duplicate fields means no match, got %v (%v)", exists, err)
	}
	if len(repo.queries) != 0 {
		t.Fatalf("store must not be queried without fields")
	}
}

func TestRegistryResolveIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewEmployeeHandler(&stubEmployeeRepo{})); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := r.Resolve("employees"); err != nil {
		t.Fatalf("lowercase lookup failed: %v", err)
	}
	if _, err := r.Resolve("EMPLOYEES"); err != nil {
		t.Fatalf("uppercase lookup failed: %v", err)
	}
	if _, err := r.Resolve("INVOICES"); err == nil {
		t.Fatalf("unknown target type must fail")
	}
}

func TestRegistryRejectsDoubleRegistration(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewEmployeeHandler(&stubEmployeeRepo{})); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(NewEmployeeHandler(&stubEmployeeRepo{})); err == nil {
		t.Fatalf("duplicate registration must fail")
	}
}
