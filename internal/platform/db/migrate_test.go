package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestMigrator_Load_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0002_consents.sql", "CREATE TABLE b ();")
	writeFile(t, dir, "0001_core.sql", "CREATE TABLE a ();")
	writeFile(t, dir, "notes.txt", "ignore me")
	writeFile(t, dir, "README.sql", "no numeric prefix")

	m := NewMigrator(nil, dir)
	migrations, err := m.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("expected versions [1 2], got [%d %d]", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "core" {
		t.Errorf("expected name 'core', got %s", migrations[0].Name)
	}
}

func TestMigrator_Load_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.Load(); err == nil {
		t.Error("expected error for missing directory")
	}
}
