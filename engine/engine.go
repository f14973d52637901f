package engine

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a read-write SQLite database with the modernc.org/sqlite driver,
// creating the file when missing. The artifact builder uses it to create
// documents.db; tests pass ":memory:".
func Open(path string) (*sql.DB, error) {
	if path == ":memory:" {
		return sql.Open("sqlite", path)
	}
	return sql.Open("sqlite", fileDSN(path, "rwc"))
}

// OpenReadOnly opens an existing database file without write access and
// verifies the connection. Missing files fail instead of being created.
func OpenReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fileDSN(path, "ro"))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("engine: open %s: %w", path, err)
	}
	return db, nil
}

// fileDSN builds a SQLite URI for path. The driver splits plain names at the
// first '?', and SQLite percent-decodes URI paths, so ?, # and % in
// directory names must be escaped.
func fileDSN(path, mode string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=" + mode
}
