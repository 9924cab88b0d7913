package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/halvard/gebo/internal/apperr"
)

// DocRow represents a row in the documents table.
type DocRow struct {
	Path      string
	Title     string
	Checksum  string
	Tags      []string
	Birthday  string // raw birthday property value, "" when absent
	UpdatedAt time.Time
}

// UpsertDocument inserts or replaces a document row and its property
// entries within a transaction.
func (db *DB) UpsertDocument(d DocRow, properties map[string]string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(d.Tags)

	_, err = tx.Exec(`
		INSERT INTO documents (path, title, checksum, tags, birthday, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			birthday   = excluded.birthday,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, string(tagsJSON), d.Birthday, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// Replace properties: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM properties WHERE path = ?`, d.Path)
	if len(properties) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO properties (path, key, value) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare property insert: %w", err)
		}
		defer stmt.Close()
		for key, value := range properties {
			if _, err := stmt.Exec(d.Path, key, value); err != nil {
				return fmt.Errorf("index: insert property: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document row and its properties.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM properties WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetDocument returns one indexed document, or apperr.ErrNotFound.
func (db *DB) GetDocument(path string) (*DocRow, error) {
	row := db.conn.QueryRow(
		`SELECT path, title, checksum, tags, birthday, updated_at FROM documents WHERE path = ?`, path)
	d, err := scanDoc(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns documents ordered by title, with optional tag
// filter and pagination, plus the total count for the filter.
func (db *DB) ListDocuments(limit, offset int, tag string) ([]DocRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where, args := "", []any{}
	if tag != "" {
		// Tags are stored as a JSON array of strings.
		where = `WHERE EXISTS (SELECT 1 FROM json_each(documents.tags) WHERE json_each.value = ?)`
		args = append(args, tag)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM documents `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	query := `SELECT path, title, checksum, tags, birthday, updated_at FROM documents ` +
		where + ` ORDER BY title, path LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	out, err := collectDocs(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// FindByTag returns every document carrying the given tag.
func (db *DB) FindByTag(tag string) ([]DocRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, title, checksum, tags, birthday, updated_at FROM documents
		WHERE EXISTS (SELECT 1 FROM json_each(documents.tags) WHERE json_each.value = ?)
		ORDER BY path`, tag)
	if err != nil {
		return nil, fmt.Errorf("index: find by tag: %w", err)
	}
	defer rows.Close()
	return collectDocs(rows)
}

// FindByProperty returns every document that declares the given
// property key, regardless of value.
func (db *DB) FindByProperty(key string) ([]DocRow, error) {
	rows, err := db.conn.Query(`
		SELECT d.path, d.title, d.checksum, d.tags, d.birthday, d.updated_at
		FROM documents d JOIN properties p ON p.path = d.path
		WHERE p.key = ?
		ORDER BY d.path`, key)
	if err != nil {
		return nil, fmt.Errorf("index: find by property: %w", err)
	}
	defer rows.Close()
	return collectDocs(rows)
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func scanDoc(scan func(...any) error) (*DocRow, error) {
	var d DocRow
	var tagsJSON string
	if err := scan(&d.Path, &d.Title, &d.Checksum, &tagsJSON, &d.Birthday, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &d.Tags); err != nil {
		d.Tags = nil
	}
	return &d, nil
}

func collectDocs(rows *sql.Rows) ([]DocRow, error) {
	var out []DocRow
	for rows.Next() {
		d, err := scanDoc(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
