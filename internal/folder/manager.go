package folder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Kind selects one of the four lifecycle folders of a configuration.
type Kind string

const (
	Inbound     Kind = "in"
	InTreatment Kind = "treatment"
	Backup      Kind = "backup"
	Failed      Kind = "failed"
)

// Outcome drives where a treated file is relocated.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
)

var (
	// ErrFileExists is returned when an upload would overwrite an inbound file.
	ErrFileExists = errors.New("file already exists in inbound folder")
	// ErrInvalidName is returned for names that escape the folder.
	ErrInvalidName = errors.New("invalid file name")
)

var illegalChars = regexp.MustCompile(`[\\/:*?"<>|]`)

const timestampLayout = "2006-01-02_15-04-05"

// Paths holds the four folder locations for one configuration id.
type Paths struct {
	In        string
	Treatment string
	Backup    string
	Failed    string
}

// Dir returns the directory behind a folder kind.
func (p Paths) Dir(kind Kind) (string, error) {
	switch kind {
	case Inbound:
		return p.In, nil
	case InTreatment:
		return p.Treatment, nil
	case Backup:
		return p.Backup, nil
	case Failed:
		return p.Failed, nil
	default:
		return "", fmt.Errorf("unknown folder kind %q", kind)
	}
}

// PathResolver maps a configuration id to its lifecycle folders.
type PathResolver interface {
	FolderPaths(ctx context.Context, configID string) (Paths, error)
}

// Manager owns the inbound -> in-treatment -> backup/failed lifecycle on the
// local filesystem. All operations create the folders idempotently first.
type Manager struct {
	resolver PathResolver
	now      func() time.Time
}

// NewManager wires a manager over a path resolver.
func NewManager(resolver PathResolver) *Manager {
	return &Manager{resolver: resolver, now: time.Now}
}

// EnsureFolders creates the four lifecycle directories if absent.
func (m *Manager) EnsureFolders(ctx context.Context, configID string) error {
	paths, err := m.resolver.FolderPaths(ctx, configID)
	if err != nil {
		return err
	}
	for _, dir := range []string{paths.In, paths.Treatment, paths.Backup, paths.Failed} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create data folder %s: %w", dir, err)
		}
	}
	return nil
}

// List returns the regular-file names of one folder, sorted lexicographically.
func (m *Manager) List(ctx context.Context, configID string, kind Kind) ([]string, error) {
	if err := m.EnsureFolders(ctx, configID); err != nil {
		return nil, err
	}
	paths, err := m.resolver.FolderPaths(ctx, configID)
	if err != nil {
		return nil, err
	}
	dir, err := paths.Dir(kind)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list folder %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// SaveInbound writes an uploaded file into the inbound folder under its
// sanitized name. An existing file with the same name is a conflict, never a
// silent overwrite.
func (m *Manager) SaveInbound(ctx context.Context, configID string, src io.Reader, suggestedName string) (string, error) {
	if err := m.EnsureFolders(ctx, configID); err != nil {
		return "", err
	}
	paths, err := m.resolver.FolderPaths(ctx, configID)
	if err != nil {
		return "", err
	}

	name := Sanitize(suggestedName)
	if name == "" {
		name = "file"
	}
	dest := filepath.Join(paths.In, name)

	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %s", ErrFileExists, name)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("cannot stat %s: %w", dest, err)
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrFileExists, name)
		}
		return "", fmt.Errorf("cannot save uploaded file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, src); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("cannot write uploaded file: %w", err)
	}
	return name, nil
}

// DeleteInbound removes one inbound file by exact name.
func (m *Manager) DeleteInbound(ctx context.Context, configID, name string) error {
	paths, err := m.resolver.FolderPaths(ctx, configID)
	if err != nil {
		return err
	}
	if err := checkSingleSegment(name); err != nil {
		return err
	}
	target := filepath.Join(paths.In, name)
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("cannot delete inbound file %s: %w", name, err)
	}
	return nil
}

// DeleteAllInbound removes every regular file from the inbound folder.
func (m *Manager) DeleteAllInbound(ctx context.Context, configID string) (int, error) {
	names, err := m.List(ctx, configID, Inbound)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, name := range names {
		if err := m.DeleteInbound(ctx, configID, name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// DequeueOneToTreatment picks the inbound file with the oldest modification
// time, renames it with a timestamp suffix and moves it into in-treatment.
// It returns "" when inbound is empty. This is the only concurrency boundary
// of a job: one file is checked out at a time.
func (m *Manager) DequeueOneToTreatment(ctx context.Context, configID string) (string, error) {
	if err := m.EnsureFolders(ctx, configID); err != nil {
		return "", err
	}
	paths, err := m.resolver.FolderPaths(ctx, configID)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(paths.In)
	if err != nil {
		return "", fmt.Errorf("cannot list inbound folder: %w", err)
	}

	var chosen string
	var chosenMod time.Time
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if chosen == "" || info.ModTime().Before(chosenMod) {
			chosen = e.Name()
			chosenMod = info.ModTime()
		}
	}
	if chosen == "" {
		return "", nil
	}

	renamed := appendTimestamp(chosen, m.now())
	target := filepath.Join(paths.Treatment, renamed)
	if err := os.Rename(filepath.Join(paths.In, chosen), target); err != nil {
		return "", fmt.Errorf("cannot move %s to in-treatment: %w", chosen, err)
	}
	return target, nil
}

// Relocate moves a treated file to backup (success) or failed (failure),
// keeping its timestamped name and overwriting any same-named file there.
func (m *Manager) Relocate(ctx context.Context, configID, treatmentFile string, outcome Outcome) error {
	if err := m.EnsureFolders(ctx, configID); err != nil {
		return err
	}
	paths, err := m.resolver.FolderPaths(ctx, configID)
	if err != nil {
		return err
	}

	destDir := paths.Backup
	if outcome == OutcomeFailure {
		destDir = paths.Failed
	}
	target := filepath.Join(destDir, filepath.Base(treatmentFile))
	if err := os.Rename(treatmentFile, target); err != nil {
		return fmt.Errorf("cannot relocate %s: %w", filepath.Base(treatmentFile), err)
	}
	return nil
}

// Sanitize replaces filesystem-illegal characters and strips any path
// component from a suggested upload name.
func Sanitize(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return illegalChars.ReplaceAllString(name, "_")
}

func checkSingleSegment(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func appendTimestamp(fileName string, now time.Time) string {
	ts := now.Format(timestampLayout)
	ext := filepath.Ext(fileName)
	if ext != "" && len(ext) < len(fileName) {
		base := strings.TrimSuffix(fileName, ext)
		return base + "_" + ts + ext
	}
	return fileName + "_" + ts
}
