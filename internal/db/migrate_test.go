package db

import (
	"strings"
	"testing"
	"testing/fstest"

	"agro-backoffice/migrations"
)

func TestLoadMigrations_SortsAndChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"README.md":      {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys)
	if err != nil {
		t.Fatalf("LoadMigrations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Filename != "001_first.sql" || got[1].Filename != "002_second.sql" {
		t.Errorf("unexpected order: %s, %s", got[0].Filename, got[1].Filename)
	}
	if got[0].Version != "001" {
		t.Errorf("expected version 001, got %s", got[0].Version)
	}
	if len(got[0].Checksum) != 64 {
		t.Errorf("expected sha256 hex checksum, got %q", got[0].Checksum)
	}
	if got[0].Checksum == got[1].Checksum {
		t.Error("different files must have different checksums")
	}
}

func TestLoadMigrations_RejectsDuplicatesAndBadNames(t *testing.T) {
	dup := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := LoadMigrations(dup); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate version error, got %v", err)
	}

	bad := fstest.MapFS{"schema.sql": {Data: []byte("SELECT 1;")}}
	if _, err := LoadMigrations(bad); err == nil {
		t.Error("expected error for filename without version prefix")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := LoadMigrations(migrations.FS)
	if err != nil {
		t.Fatalf("embedded migrations failed to load: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected at least 2 embedded migrations, got %d", len(got))
	}
	if !strings.Contains(got[len(got)-1].SQL+got[0].SQL, "raw_materials") {
		t.Error("expected raw_materials table in embedded schema")
	}
}
