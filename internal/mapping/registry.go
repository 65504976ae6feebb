package mapping

import (
	"context"
	"fmt"
	"path/filepath"

	"fileflow/internal/domain"
	"fileflow/internal/folder"
	"fileflow/internal/repository"
)

// Registry resolves reader configurations into the pieces the rest of the
// system consumes: parsed file schemas, target handler names and lifecycle
// folder paths. It is a thin, stateless view over the config repository so
// that configuration edits take effect on the next job without a restart.
type Registry struct {
	configs repository.ConfigRepository
}

func NewRegistry(configs repository.ConfigRepository) *Registry {
	return &Registry{configs: configs}
}

func (r *Registry) Get(ctx context.Context, configID string) (domain.ReaderConfig, error) {
	return r.configs.Get(ctx, configID)
}

// LoadCSV returns the validated CSV schema for the given configuration.
func (r *Registry) LoadCSV(ctx context.Context, configID string) (domain.FileSchema, error) {
	cfg, err := r.configs.Get(ctx, configID)
	if err != nil {
		return domain.FileSchema{}, err
	}
	return cfg.CSVSchema()
}

// LoadXML returns the validated XML schema for the given configuration.
func (r *Registry) LoadXML(ctx context.Context, configID string) (domain.FileSchema, error) {
	cfg, err := r.configs.Get(ctx, configID)
	if err != nil {
		return domain.FileSchema{}, err
	}
	return cfg.XMLSchema()
}

// TargetType names the persistence handler the configuration routes to.
func (r *Registry) TargetType(ctx context.Context, configID string) (string, error) {
	cfg, err := r.configs.Get(ctx, configID)
	if err != nil {
		return "", err
	}
	if cfg.TargetType == "" {
		return "", fmt.Errorf("config %s has no target type", configID)
	}
	return cfg.TargetType, nil
}

// FolderPaths derives the four lifecycle directories from the configured
// base directory. It satisfies folder.PathResolver.
func (r *Registry) FolderPaths(ctx context.Context, configID string) (folder.Paths, error) {
	cfg, err := r.configs.Get(ctx, configID)
	if err != nil {
		return folder.Paths{}, err
	}
	base := cfg.Paths.BaseDir
	if base == "" {
		return folder.Paths{}, fmt.Errorf("config %s has no base directory", configID)
	}
	p := folder.Paths{
		In:        cfg.Paths.InDir,
		Treatment: cfg.Paths.TreatmentDir,
		Backup:    cfg.Paths.BackupDir,
		Failed:    cfg.Paths.FailedDir,
	}
	if p.In == "" {
		p.In = filepath.Join(base, "in")
	}
	if p.Treatment == "" {
		p.Treatment = filepath.Join(base, "treatment")
	}
	if p.Backup == "" {
		p.Backup = filepath.Join(base, "backup")
	}
	if p.Failed == "" {
		p.Failed = filepath.Join(base, "failed")
	}
	return p, nil
}
