package domain

import "fmt"

// FolderSet names the lifecycle directories of one configuration, relative to
// a base directory.
type FolderSet struct {
	BaseDir      string `json:"baseDir"`
	InDir        string `json:"inDir"`
	TreatmentDir string `json:"treatmentDir"`
	BackupDir    string `json:"backupDir"`
	FailedDir    string `json:"failedDir"`
}

// CSVMapping is the persisted CSV half of a reader configuration.
type CSVMapping struct {
	Delimiter      string      `json:"delimiter"`
	HasHeader      bool        `json:"hasHeader"`
	DuplicateCheck []string    `json:"duplicateCheck,omitempty"`
	Columns        []FieldRule `json:"columns"`
}

// XMLMapping is the persisted XML half of a reader configuration.
type XMLMapping struct {
	RootElement    string      `json:"rootElement"`
	RecordElement  string      `json:"recordElement"`
	DuplicateCheck []string    `json:"duplicateCheck,omitempty"`
	Fields         []FieldRule `json:"fields"`
}

// ReaderConfig is one persisted ingestion configuration: which folders a
// batch flows through, how its files are mapped, and which registered record
// handler receives the validated records.
type ReaderConfig struct {
	ID          string      `json:"id"`
	Description string      `json:"description,omitempty"`
	LoadMode    string      `json:"loadMode,omitempty"`
	TargetType  string      `json:"targetType"`
	Paths       FolderSet   `json:"paths"`
	CSVMapping  *CSVMapping `json:"csvMapping,omitempty"`
	XMLMapping  *XMLMapping `json:"xmlMapping,omitempty"`
}

// CSVSchema projects the configuration into a resolved CSV file schema.
func (c ReaderConfig) CSVSchema() (FileSchema, error) {
	if c.CSVMapping == nil {
		return FileSchema{}, fmt.Errorf("csv mapping missing for config: %s", c.ID)
	}
	schema := FileSchema{
		Format:         FormatCSV,
		Delimiter:      c.CSVMapping.Delimiter,
		HasHeader:      c.CSVMapping.HasHeader,
		Fields:         c.CSVMapping.Columns,
		DuplicateCheck: c.CSVMapping.DuplicateCheck,
	}
	if err := schema.Validate(); err != nil {
		return FileSchema{}, fmt.Errorf("invalid csv mapping for config %s: %w", c.ID, err)
	}
	return schema, nil
}

// XMLSchema projects the configuration into a resolved XML file schema.
func (c ReaderConfig) XMLSchema() (FileSchema, error) {
	if c.XMLMapping == nil {
		return FileSchema{}, fmt.Errorf("xml mapping missing for config: %s", c.ID)
	}
	schema := FileSchema{
		Format:         FormatXML,
		RootElement:    c.XMLMapping.RootElement,
		RecordElement:  c.XMLMapping.RecordElement,
		Fields:         c.XMLMapping.Fields,
		DuplicateCheck: c.XMLMapping.DuplicateCheck,
	}
	if err := schema.Validate(); err != nil {
		return FileSchema{}, fmt.Errorf("invalid xml mapping for config %s: %w", c.ID, err)
	}
	return schema, nil
}
