package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"fileflow/internal/domain"
)

// ErrConfigNotFound is returned when no reader configuration matches an id.
var ErrConfigNotFound = errors.New("config not found")

// configRepository implements ConfigRepository on Postgres. CSV and XML
// mappings are stored as JSONB documents next to the scalar columns.
type configRepository struct {
	pool *pgxpool.Pool
}

func NewConfigRepository(pool *pgxpool.Pool) ConfigRepository {
	return &configRepository{pool: pool}
}

const configColumns = `id, description, load_mode, target_type, base_dir,
	in_dir, treatment_dir, backup_dir, failed_dir, csv_mapping, xml_mapping`

func (r *configRepository) Get(ctx context.Context, id string) (domain.ReaderConfig, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+configColumns+` FROM file_reader_configs WHERE id = $1`, id)
	cfg, err := scanConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ReaderConfig{}, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}
	if err != nil {
		return domain.ReaderConfig{}, fmt.Errorf("failed to get config: %w", err)
	}
	return cfg, nil
}

func (r *configRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM file_reader_configs WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check config existence: %w", err)
	}
	return exists, nil
}

func (r *configRepository) Save(ctx context.Context, cfg domain.ReaderConfig) (domain.ReaderConfig, error) {
	var csvJSON, xmlJSON []byte
	var err error
	if cfg.CSVMapping != nil {
		if csvJSON, err = json.Marshal(cfg.CSVMapping); err != nil {
			return domain.ReaderConfig{}, fmt.Errorf("failed to marshal csv mapping: %w", err)
		}
	}
	if cfg.XMLMapping != nil {
		if xmlJSON, err = json.Marshal(cfg.XMLMapping); err != nil {
			return domain.ReaderConfig{}, fmt.Errorf("failed to marshal xml mapping: %w", err)
		}
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO file_reader_configs (
			id, description, load_mode, target_type, base_dir,
			in_dir, treatment_dir, backup_dir, failed_dir, csv_mapping, xml_mapping
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			description   = EXCLUDED.description,
			load_mode     = EXCLUDED.load_mode,
			target_type   = EXCLUDED.target_type,
			base_dir      = EXCLUDED.base_dir,
			in_dir        = EXCLUDED.in_dir,
			treatment_dir = EXCLUDED.treatment_dir,
			backup_dir    = EXCLUDED.backup_dir,
			failed_dir    = EXCLUDED.failed_dir,
			csv_mapping   = EXCLUDED.csv_mapping,
			xml_mapping   = EXCLUDED.xml_mapping,
			updated_at    = now()`,
		cfg.ID, cfg.Description, cfg.LoadMode, cfg.TargetType, cfg.Paths.BaseDir,
		nullText(cfg.Paths.InDir), nullText(cfg.Paths.TreatmentDir),
		nullText(cfg.Paths.BackupDir), nullText(cfg.Paths.FailedDir),
		csvJSON, xmlJSON)
	if err != nil {
		return domain.ReaderConfig{}, fmt.Errorf("failed to save config: %w", err)
	}
	return r.Get(ctx, cfg.ID)
}

func (r *configRepository) List(ctx context.Context) ([]domain.ReaderConfig, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+configColumns+` FROM file_reader_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.ReaderConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan config: %w", err)
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func scanConfig(row pgx.Row) (domain.ReaderConfig, error) {
	var cfg domain.ReaderConfig
	var inDir, treatmentDir, backupDir, failedDir pgtype.Text
	var csvJSON, xmlJSON []byte
	err := row.Scan(
		&cfg.ID, &cfg.Description, &cfg.LoadMode, &cfg.TargetType, &cfg.Paths.BaseDir,
		&inDir, &treatmentDir, &backupDir, &failedDir, &csvJSON, &xmlJSON)
	if err != nil {
		return domain.ReaderConfig{}, err
	}
	cfg.Paths.InDir = inDir.String
	cfg.Paths.TreatmentDir = treatmentDir.String
	cfg.Paths.BackupDir = backupDir.String
	cfg.Paths.FailedDir = failedDir.String
	if len(csvJSON) > 0 {
		var m domain.CSVMapping
		if err := json.Unmarshal(csvJSON, &m); err != nil {
			return domain.ReaderConfig{}, fmt.Errorf("failed to unmarshal csv mapping: %w", err)
		}
		cfg.CSVMapping = &m
	}
	if len(xmlJSON) > 0 {
		var m domain.XMLMapping
		if err := json.Unmarshal(xmlJSON, &m); err != nil {
			return domain.ReaderConfig{}, fmt.Errorf("failed to unmarshal xml mapping: %w", err)
		}
		cfg.XMLMapping = &m
	}
	return cfg, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
