package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Project.ID = "abc-123"
	cfg.Project.Name = "Test Project"
	cfg.Project.Domain = "web-app"

	if err := WriteConfig(dir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	got, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("version: got %d, want 1", got.Version)
	}
	if got.Project != cfg.Project {
		t.Errorf("project: got %+v, want %+v", got.Project, cfg.Project)
	}
	if got.Storage.Path != cfg.Storage.Path {
		t.Errorf("storage path: got %q, want %q", got.Storage.Path, cfg.Storage.Path)
	}
}

func TestReadConfigMissing(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".llpm", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("version: [not: valid"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadConfig(dir); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Project.Domain != "general" {
		t.Errorf("default domain: got %q", cfg.Project.Domain)
	}
	if cfg.Storage.Path != filepath.Join(".llpm", "sessions.db") {
		t.Errorf("default storage path: got %q", cfg.Storage.Path)
	}
	if cfg.Documents.OutputDir != filepath.Join(".llpm", "docs") {
		t.Errorf("default docs dir: got %q", cfg.Documents.OutputDir)
	}
}

func TestPathResolvers(t *testing.T) {
	cfg := DefaultConfig()
	root := filepath.Join(string(filepath.Separator), "proj")

	if got := cfg.StoragePath(root); got != filepath.Join(root, ".llpm", "sessions.db") {
		t.Errorf("StoragePath: got %q", got)
	}
	if got := cfg.DocumentsDir(root); got != filepath.Join(root, ".llpm", "docs") {
		t.Errorf("DocumentsDir: got %q", got)
	}

	abs := filepath.Join(string(filepath.Separator), "elsewhere", "db.sqlite")
	cfg.Storage.Path = abs
	if got := cfg.StoragePath(root); got != abs {
		t.Errorf("absolute StoragePath: got %q", got)
	}
}
