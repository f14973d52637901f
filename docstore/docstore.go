package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/viant/vecserve/engine"
	"github.com/viant/vecserve/vector"
)

// ErrInvalid is returned when a document table is unreadable or violates the
// contiguous-id layout.
var ErrInvalid = errors.New("docstore: invalid document table")

// Info describes the artifact a document table belongs to.
type Info struct {
	ArtifactID uuid.UUID
	Count      int
	CreatedAt  time.Time
}

// Write creates a fresh document table at path. Document i is stored with
// id i regardless of its ID field.
func Write(ctx context.Context, path string, artifactID uuid.UUID, docs []vector.Document) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	db, err := engine.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := EnsureSchema(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO docs(id, content, meta) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, d := range docs {
		var meta sql.NullString
		if len(d.Metadata) > 0 {
			data, err := json.Marshal(d.Metadata)
			if err != nil {
				return fmt.Errorf("docstore: document %d metadata: %w", i, err)
			}
			meta = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, d.Text, meta); err != nil {
			return err
		}
	}

	info := map[string]string{
		keyArtifactID: artifactID.String(),
		keyDocCount:   strconv.Itoa(len(docs)),
		keyCreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range info {
		if _, err := tx.ExecContext(ctx, `INSERT INTO artifact(key, value) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Read loads the whole document table at path. The returned slice is indexed
// by document id.
func Read(ctx context.Context, path string) (Info, []vector.Document, error) {
	var info Info
	db, err := engine.OpenReadOnly(ctx, path)
	if err != nil {
		return info, nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer db.Close()

	if info, err = readInfo(ctx, db); err != nil {
		return info, nil, err
	}
	docs, err := readDocs(ctx, db)
	if err != nil {
		return info, nil, err
	}
	if len(docs) != info.Count {
		return info, nil, fmt.Errorf("%w: %d documents, artifact declares %d", ErrInvalid, len(docs), info.Count)
	}
	return info, docs, nil
}

func readInfo(ctx context.Context, db *sql.DB) (Info, error) {
	var info Info
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM artifact`)
	if err != nil {
		return info, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer rows.Close()
	values := map[string]string{}
	for rows.Next() {
		var k string
		var v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return info, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		values[k] = v.String
	}
	if err := rows.Err(); err != nil {
		return info, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if info.ArtifactID, err = uuid.Parse(values[keyArtifactID]); err != nil {
		return info, fmt.Errorf("%w: artifact id: %v", ErrInvalid, err)
	}
	if info.Count, err = strconv.Atoi(values[keyDocCount]); err != nil || info.Count < 0 {
		return info, fmt.Errorf("%w: doc count %q", ErrInvalid, values[keyDocCount])
	}
	if created := values[keyCreatedAt]; created != "" {
		if info.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return info, fmt.Errorf("%w: created_at: %v", ErrInvalid, err)
		}
	}
	return info, nil
}

func readDocs(ctx context.Context, db *sql.DB) ([]vector.Document, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, content, meta FROM docs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer rows.Close()

	var out []vector.Document
	for rows.Next() {
		var d vector.Document
		var meta sql.NullString
		if err := rows.Scan(&d.ID, &d.Text, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if d.ID != len(out) {
			return nil, fmt.Errorf("%w: expected id %d, found %d", ErrInvalid, len(out), d.ID)
		}
		if meta.Valid && meta.String != "" {
			if err := json.Unmarshal([]byte(meta.String), &d.Metadata); err != nil {
				return nil, fmt.Errorf("%w: document %d metadata: %v", ErrInvalid, d.ID, err)
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return out, nil
}
