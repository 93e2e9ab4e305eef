package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	dir := t.TempDir()
	d, err := Open(filepath.Join(dir, "magnus.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	for _, table := range []string{"sessions", "messages", "kb_loads"} {
		var name string
		err := d.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer d.Close()

	if _, err := d.Exec(`INSERT INTO sessions (id) VALUES ('s1')`); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	// State check constraint should reject unknown states.
	if _, err := d.Exec(`UPDATE sessions SET state='bogus' WHERE id='s1'`); err == nil {
		t.Error("expected CHECK constraint violation for unknown state")
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Errorf("second migrate should be a no-op, got: %v", err)
	}
}
