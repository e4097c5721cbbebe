// Package index maintains the SQLite build index. The index is an
// ephemeral cache rebuilt on every build from the resolved records; the
// bibliography and configuration remain the source of truth.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	// Dir is the index directory name under the build directory.
	Dir = ".pubgen"
	// File is the index database file name.
	File = "index.db"
)

// Path returns the index database path for a build directory.
func Path(buildDir string) string {
	return filepath.Join(buildDir, Dir, File)
}

// Row is one indexed publication.
type Row struct {
	Key     string
	Title   string
	Date    string
	DOI     string
	Venue   string
	Authors []string
	Types   []int
}

// DB wraps the SQLite connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates the index database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS publications (
			key TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			doi TEXT NOT NULL,
			venue TEXT,
			authors_json TEXT NOT NULL,
			types_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publications_doi ON publications(doi);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and repopulates it from the given rows.
func (d *DB) Rebuild(rows []Row) (int, error) {
	if _, err := d.db.Exec("DELETE FROM publications"); err != nil {
		return 0, fmt.Errorf("clearing publications table: %w", err)
	}

	stmt, err := d.db.Prepare(`
		INSERT INTO publications (key, title, date, doi, venue, authors_json, types_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		authorsJSON, err := json.Marshal(row.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %s: %w", row.Key, err)
		}
		typesJSON, err := json.Marshal(row.Types)
		if err != nil {
			return 0, fmt.Errorf("marshaling types for %s: %w", row.Key, err)
		}
		if _, err := stmt.Exec(row.Key, row.Title, row.Date, row.DOI, row.Venue, string(authorsJSON), string(typesJSON)); err != nil {
			return 0, fmt.Errorf("inserting %s: %w", row.Key, err)
		}
	}

	return len(rows), nil
}

// List returns all indexed publications ordered by key.
func (d *DB) List() ([]Row, error) {
	rows, err := d.db.Query(`
		SELECT key, title, date, doi, venue, authors_json, types_json
		FROM publications ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var venue sql.NullString
		var authorsJSON, typesJSON string
		if err := rows.Scan(&row.Key, &row.Title, &row.Date, &row.DOI, &venue, &authorsJSON, &typesJSON); err != nil {
			return nil, err
		}
		row.Venue = venue.String
		if err := json.Unmarshal([]byte(authorsJSON), &row.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors for %s: %w", row.Key, err)
		}
		if err := json.Unmarshal([]byte(typesJSON), &row.Types); err != nil {
			return nil, fmt.Errorf("parsing types for %s: %w", row.Key, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Count returns the number of indexed publications.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}
