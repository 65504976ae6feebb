package target

import (
	"context"
	"fmt"
	"time"

	"fileflow/internal/domain"
	"fileflow/internal/repository"
	"fileflow/pkg/validator"
)

// TypeEmployees is the target type name of the seeded employee pipeline.
const TypeEmployees = "EMPLOYEES"

// EmployeeHandler maps validated records onto employee rows. Field names in
// the schema mapping follow the employee column names; fields the mapping
// declares but the handler does not know are skipped so that configurations
// can carry extra validated-only columns.
type EmployeeHandler struct {
	employees repository.EmployeeRepository
}

func NewEmployeeHandler(employees repository.EmployeeRepository) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

func (h *EmployeeHandler) Name() string { return TypeEmployees }

func (h *EmployeeHandler) Persist(ctx context.Context, rules []domain.FieldRule, validated domain.Record) error {
	emp, err := h.build(rules, validated)
	if err != nil {
		return err
	}
	return h.employees.Upsert(ctx, emp)
}

func (h *EmployeeHandler) Exists(ctx context.Context, rules []domain.FieldRule, validated domain.Record, duplicateFields []string) (bool, error) {
	if len(duplicateFields) == 0 {
		return false, nil
	}
	fields := make(map[string]any, len(duplicateFields))
	for _, name := range duplicateFields {
		raw := validated[name]
		if raw == "" {
			// a nullable duplicate field left blank compares as NULL
			fields[name] = nil
			continue
		}
		rule := ruleFor(rules, name)
		if rule == nil {
			fields[name] = raw
			continue
		}
		v, err := validator.Convert(rule.Type, raw)
		if err != nil {
			return false, fmt.Errorf("convert duplicate field %s: %w", name, err)
		}
		fields[name] = v
	}
	return h.employees.ExistsByFields(ctx, fields)
}

func (h *EmployeeHandler) build(rules []domain.FieldRule, validated domain.Record) (domain.Employee, error) {
	var emp domain.Employee
	idSet := false
	for _, rule := range rules {
		raw, ok := validated[rule.Name]
		if !ok || raw == "" {
			continue
		}
		v, err := validator.Convert(rule.Type, raw)
		if err != nil {
			return domain.Employee{}, fmt.Errorf("convert field %s: %w", rule.Name, err)
		}
		switch rule.Name {
		case "id":
			id, ok := v.(int64)
			if !ok {
				return domain.Employee{}, fmt.Errorf("field id must be LONG, got %s", rule.Type)
			}
			emp.ID = id
			idSet = true
		case "firstName":
			emp.FirstName = raw
		case "lastName":
			emp.LastName = raw
		case "position":
			val := raw
			emp.Position = &val
		case "department":
			val := raw
			emp.Department = &val
		case "hireDate":
			d, ok := v.(time.Time)
			if !ok {
				return domain.Employee{}, fmt.Errorf("field hireDate must be LOCAL_DATE, got %s", rule.Type)
			}
			emp.HireDate = &d
		case "salary":
			val := raw
			emp.Salary = &val
		default:
			// validated-only column, not persisted
		}
	}
	if !idSet {
		return domain.Employee{}, fmt.Errorf("record is missing the id field")
	}
	return emp, nil
}

func ruleFor(rules []domain.FieldRule, name string) *domain.FieldRule {
	for i := range rules {
		if rules[i].Name == name {
			return &rules[i]
		}
	}
	return nil
}
