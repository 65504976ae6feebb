package repository

import (
	"testing"
)

func TestEmployeeConditionsBindsSalaryAsNumeric(t *testing.T) {
	conds, args, err := employeeConditions(map[string]any{
		"id":     int64(7),
		"salary": "85000.50",
	})
	if err != nil {
		t.Fatalf("conditions failed: %v", err)
	}
	if len(conds) != 2 || len(args) != 2 {
		t.Fatalf("unexpected shape: conds=%v args=%v", conds, args)
	}
	if conds[0] != "id = $1" {
		t.Fatalf("unexpected id condition: %q", conds[0])
	}
	if conds[1] != "salary = $2::numeric" {
		t.Fatalf("salary must bind through a numeric cast, got %q", conds[1])
	}
	if args[1] != "85000.50" {
		t.Fatalf("unexpected salary argument: %v", args[1])
	}
}

func TestEmployeeConditionsNilValueComparesAsNull(t *testing.T) {
	conds, args, err := employeeConditions(map[string]any{
		"id":         int64(7),
		"department": nil,
	})
	if err != nil {
		t.Fatalf("conditions failed: %v", err)
	}
	if len(conds) != 2 {
		t.Fatalf("unexpected conditions: %v", conds)
	}
	if conds[0] != "department IS NULL" {
		t.Fatalf("nil value must compare with IS NULL, got %q", conds[0])
	}
	if conds[1] != "id = $1" || len(args) != 1 {
		t.Fatalf("placeholders must skip null conditions: conds=%v args=%v", conds, args)
	}
}

func TestEmployeeConditionsRejectsUnknownField(t *testing.T) {
	if _, _, err := employeeConditions(map[string]any{"id; DROP TABLE": 1}); err == nil {
		t.Fatalf("unmapped field names must be rejected")
	}
}
