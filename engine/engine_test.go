package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("CREATE TABLE docs(id INTEGER PRIMARY KEY, text TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO docs(id, text) VALUES (0, 'ünïcödé text')"); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	var text string
	if err := db.QueryRow("SELECT text FROM docs WHERE id = 0").Scan(&text); err != nil || text != "ünïcödé text" {
		t.Fatalf("SELECT = %q, %v", text, err)
	}
}

func TestOpenReadOnly(t *testing.T) {
	for _, dir := range []string{"plain", "model?v=2#x 100%"} {
		testOpenReadOnly(t, dir)
	}
}

func testOpenReadOnly(t *testing.T, name string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	path := filepath.Join(dir, "ro.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE t(x INTEGER)"); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	_ = db.Close()

	ro, err := OpenReadOnly(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer ro.Close()
	if _, err := ro.Exec("INSERT INTO t(x) VALUES (1)"); err == nil {
		t.Fatalf("expected write on read-only connection to fail")
	}
	var n int
	if err := ro.QueryRow("SELECT COUNT(*) FROM t").Scan(&n); err != nil || n != 0 {
		t.Fatalf("SELECT COUNT(*) = %d, %v", n, err)
	}
}

func TestOpenReadOnlyMissing(t *testing.T) {
	if _, err := OpenReadOnly(context.Background(), filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatalf("expected missing database to fail")
	}
}
