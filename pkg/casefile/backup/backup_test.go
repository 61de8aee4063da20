package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotCopiesFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "archive.db")
	if err := os.WriteFile(dbPath, []byte("sqlite bytes"), 0o644); err != nil {
		t.Fatalf("write db: %v", err)
	}

	backupDir := filepath.Join(dir, "database_backups")
	path, err := Snapshot(dbPath, backupDir)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(data) != "sqlite bytes" {
		t.Errorf("backup content = %q", data)
	}
	if filepath.Dir(path) != backupDir {
		t.Errorf("backup written to %q, want %q", filepath.Dir(path), backupDir)
	}
}

func TestSnapshotMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	if _, err := Snapshot(filepath.Join(dir, "nope.db"), dir); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestRotateKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"archive-2024-01-01T00-00-00Z.db",
		"archive-2024-02-01T00-00-00Z.db",
		"archive-2024-03-01T00-00-00Z.db",
		"archive-2024-04-01T00-00-00Z.db",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := Rotate(dir, 2); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("remaining backups = %d, want 2", len(entries))
	}
	if entries[0].Name() != names[2] || entries[1].Name() != names[3] {
		t.Errorf("remaining = %s, %s; want the two newest", entries[0].Name(), entries[1].Name())
	}
}

func TestRotateZeroKeepIsNoop(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.db"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Rotate(dir, 0); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("keep=0 should not delete anything, %d files left", len(entries))
	}
}
