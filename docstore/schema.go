package docstore

import (
	"context"
	"database/sql"
)

const docsSchema = `
CREATE TABLE IF NOT EXISTS docs (
    id INTEGER PRIMARY KEY,
    content TEXT NOT NULL,
    meta TEXT
);
`

const artifactSchema = `
CREATE TABLE IF NOT EXISTS artifact (
    key TEXT PRIMARY KEY,
    value TEXT
);
`

// Keys of the artifact table.
const (
	keyArtifactID = "artifact_id"
	keyDocCount   = "doc_count"
	keyCreatedAt  = "created_at"
)

// EnsureSchema creates the docs and artifact tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, ddl := range []string{docsSchema, artifactSchema} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}
