package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesDirectoryAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "linecap.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	var name string
	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='records'`).Scan(&name)
	if err != nil {
		t.Fatalf("records table missing: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	if err := database.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestLogicalTypeCheckConstraint(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	_, err = database.Exec(`INSERT INTO records (id, logical_type) VALUES ('r1', 'task')`)
	if err != nil {
		t.Fatalf("valid insert: %v", err)
	}

	_, err = database.Exec(`INSERT INTO records (id, logical_type) VALUES ('r2', 'grocery_list')`)
	if err == nil {
		t.Fatal("insert with unknown logical_type succeeded")
	}
}
