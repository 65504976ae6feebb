package folder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type staticResolver struct {
	paths Paths
}

func (r staticResolver) FolderPaths(ctx context.Context, configID string) (Paths, error) {
	return r.paths, nil
}

func newTestManager(t *testing.T) (*Manager, Paths) {
	t.Helper()
	base := t.TempDir()
	paths := Paths{
		In:        filepath.Join(base, "in"),
		Treatment: filepath.Join(base, "treatment"),
		Backup:    filepath.Join(base, "backup"),
		Failed:    filepath.Join(base, "failed"),
	}
	return NewManager(staticResolver{paths: paths}), paths
}

func TestEnsureFoldersIsIdempotent(t *testing.T) {
	m, paths := newTestManager(t)
	ctx := context.Background()

	if err := m.EnsureFolders(ctx, "employees"); err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	if err := m.EnsureFolders(ctx, "employees"); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	for _, dir := range []string{paths.In, paths.Treatment, paths.Backup, paths.Failed} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestSaveInboundSanitizesAndRejectsDuplicates(t *testing.T) {
	m, paths := newTestManager(t)
	ctx := context.Background()

	saved, err := m.SaveInbound(ctx, "employees", strings.NewReader("data"), `../we:ird*name?.csv`)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved != "we_ird_name_.csv" {
		t.Fatalf("unexpected sanitized name: %q", saved)
	}
	if _, err := os.Stat(filepath.Join(paths.In, saved)); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	_, err = m.SaveInbound(ctx, "employees", strings.NewReader("other"), saved)
	if !errors.Is(err, ErrFileExists) {
		t.Fatalf("expected conflict, got %v", err)
	}

	content, _ := os.ReadFile(filepath.Join(paths.In, saved))
	if string(content) != "data" {
		t.Fatalf("conflict must not overwrite, got %q", content)
	}
}

func TestListReturnsSortedNames(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"b.csv", "a.csv", "c.xml"} {
		if _, err := m.SaveInbound(ctx, "employees", strings.NewReader("x"), name); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	names, err := m.List(ctx, "employees", Inbound)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(names) != 3 || names[0] != "a.csv" || names[1] != "b.csv" || names[2] != "c.xml" {
		t.Fatalf("unexpected listing: %v", names)
	}
}

func TestDeleteInboundRejectsPathEscapes(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "../x", `a\b`, "sub/f.csv"} {
		if err := m.DeleteInbound(ctx, "employees", name); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("name %q should be rejected, got %v", name, err)
		}
	}
}

func TestDeleteAllInbound(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"a.csv", "b.csv"} {
		if _, err := m.SaveInbound(ctx, "employees", strings.NewReader("x"), name); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	deleted, err := m.DeleteAllInbound(ctx, "employees")
	if err != nil || deleted != 2 {
		t.Fatalf("expected 2 deletions, got %d (%v)", deleted, err)
	}

	names, err := m.List(ctx, "employees", Inbound)
	if err != nil || len(names) != 0 {
		t.Fatalf("inbound should be empty, got %v (%v)", names, err)
	}
}

func TestDequeuePicksOldestAndAppendsTimestamp(t *testing.T) {
	m, paths := newTestManager(t)
	m.now = func() time.Time {
		return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	}
	ctx := context.Background()

	if err := m.EnsureFolders(ctx, "employees"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	older := filepath.Join(paths.In, "older.csv")
	newer := filepath.Join(paths.In, "newer.csv")
	if err := os.WriteFile(older, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(newer, []byte("2"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	target, err := m.DequeueOneToTreatment(ctx, "employees")
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if filepath.Base(target) != "older_2024-03-01_09-30-00.csv" {
		t.Fatalf("unexpected treatment name: %q", filepath.Base(target))
	}
	if filepath.Dir(target) != paths.Treatment {
		t.Fatalf("file should be in treatment, got %s", target)
	}
	if _, err := os.Stat(older); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("inbound file should be gone")
	}
}

func TestDequeueEmptyReturnsNoPath(t *testing.T) {
	m, _ := newTestManager(t)

	target, err := m.DequeueOneToTreatment(context.Background(), "employees")
	if err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if target != "" {
		t.Fatalf("expected empty result, got %q", target)
	}
}

func TestRelocateMovesToBackupAndFailed(t *testing.T) {
	m, paths := newTestManager(t)
	ctx := context.Background()

	if err := m.EnsureFolders(ctx, "employees"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}

	ok := filepath.Join(paths.Treatment, "good_2024.csv")
	bad := filepath.Join(paths.Treatment, "bad_2024.csv")
	os.WriteFile(ok, []byte("x"), 0o644)
	os.WriteFile(bad, []byte("y"), 0o644)

	if err := m.Relocate(ctx, "employees", ok, OutcomeSuccess); err != nil {
		t.Fatalf("relocate to backup failed: %v", err)
	}
	if err := m.Relocate(ctx, "employees", bad, OutcomeFailure); err != nil {
		t.Fatalf("relocate to failed failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(paths.Backup, "good_2024.csv")); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(paths.Failed, "bad_2024.csv")); err != nil {
		t.Fatalf("failed file missing: %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"report.csv":       "report.csv",
		`a\b:c*d?e"f<g>h|i`: "a_b_c_d_e_f_g_h_i",
		"  spaced.xml  ":   "spaced.xml",
		"../../etc/passwd": "passwd",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAppendTimestampWithoutExtension(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	if got := appendTimestamp("README", now); got != "README_2024-03-01_09-30-00" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := appendTimestamp("data.csv", now); got != "data_2024-03-01_09-30-00.csv" {
		t.Fatalf("unexpected name: %q", got)
	}
}
