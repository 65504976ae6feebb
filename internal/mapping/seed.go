package mapping

import (
	"context"
	"fmt"
	"path/filepath"

	"fileflow/internal/domain"
	"fileflow/internal/repository"
)

// DefaultConfigID is the reader configuration seeded on first boot.
const DefaultConfigID = "employees"

// SeedDefaults installs the employees configuration when no configuration
// with that id exists yet. An already-present row is left untouched so
// operator edits survive restarts.
func SeedDefaults(ctx context.Context, configs repository.ConfigRepository, dataDir string) error {
	exists, err := configs.Exists(ctx, DefaultConfigID)
	if err != nil {
		return fmt.Errorf("failed to check seed config: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := configs.Save(ctx, defaultEmployeesConfig(dataDir)); err != nil {
		return fmt.Errorf("failed to seed config: %w", err)
	}
	return nil
}

func defaultEmployeesConfig(dataDir string) domain.ReaderConfig {
	fields := []domain.FieldRule{
		{Name: "id", Type: domain.FieldTypeLong, Required: true, Pattern: `^[0-9]+$`},
		{Name: "firstName", Type: domain.FieldTypeString, Required: true, Pattern: `^[A-Za-zÀ-ÿ' -]{2,100}$`},
		{Name: "lastName", Type: domain.FieldTypeString, Required: true, Pattern: `^[A-Za-zÀ-ÿ' -]{2,100}$`},
		{Name: "position", Type: domain.FieldTypeString, Nullable: true},
		{Name: "department", Type: domain.FieldTypeString, Nullable: true},
		{Name: "hireDate", Type: domain.FieldTypeDate, Nullable: true, Pattern: `^\d{4}-\d{2}-\d{2}$`},
		{Name: "salary", Type: domain.FieldTypeDecimal, Nullable: true, Pattern: `^-?\d+(\.\d+)?$`},
	}
	duplicateCheck := []string{"id", "firstName", "lastName"}

	csvColumns := make([]domain.FieldRule, len(fields))
	xmlFields := make([]domain.FieldRule, len(fields))
	for i, f := range fields {
		csv := f
		csv.Header = f.Name
		idx := i
		csv.Index = &idx
		csvColumns[i] = csv

		x := f
		x.Tag = f.Name
		xmlFields[i] = x
	}

	return domain.ReaderConfig{
		ID:          DefaultConfigID,
		Description: "Employee imports from CSV and XML drops",
		LoadMode:    "UPSERT",
		TargetType:  "EMPLOYEES",
		Paths: domain.FolderSet{
			BaseDir: filepath.Join(dataDir, "employees"),
		},
		CSVMapping: &domain.CSVMapping{
			Delimiter:      ",",
			HasHeader:      true,
			DuplicateCheck: duplicateCheck,
			Columns:        csvColumns,
		},
		XMLMapping: &domain.XMLMapping{
			RootElement:    "employees",
			RecordElement:  "employee",
			DuplicateCheck: duplicateCheck,
			Fields:         xmlFields,
		},
	}
}
