package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/bibsite/internal/publication"
	_ "modernc.org/sqlite"
)

// ErrIndexMissing is returned by OpenIndex when no index has been built.
var ErrIndexMissing = errors.New("publication index not built (run 'bibsite rebuild')")

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// Search fields accepted by SearchField.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
)

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// OpenIndex opens an existing index, returning ErrIndexMissing if the
// database file has not been created yet.
func OpenIndex(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexMissing
		}
		return nil, fmt.Errorf("checking index: %w", err)
	}
	return OpenDB(path)
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- One row per emitted entry; keys are not guaranteed unique
		CREATE TABLE IF NOT EXISTS publications (
			pos INTEGER PRIMARY KEY,
			key TEXT NOT NULL,
			type TEXT NOT NULL,
			year INTEGER NOT NULL,
			title TEXT,
			author TEXT,
			venue TEXT,
			selected INTEGER NOT NULL,
			entry_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publications_key ON publications(key);

		-- Full-text search virtual table (standalone, not external content)
		-- rowid mirrors publications.pos
		CREATE VIRTUAL TABLE IF NOT EXISTS publications_fts USING fts5(
			key,
			title,
			author,
			abstract,
			keywords
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and loads the given entries, keeping their
// order as the tie-breaker for equal years.
func (d *DB) Rebuild(entries []publication.Entry) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM publications"); err != nil {
		return 0, fmt.Errorf("clearing publications table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM publications_fts"); err != nil {
		return 0, fmt.Errorf("clearing publications_fts table: %w", err)
	}

	pubStmt, err := tx.Prepare(`
		INSERT INTO publications (pos, key, type, year, title, author, venue, selected, entry_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing publications insert: %w", err)
	}
	defer pubStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO publications_fts (rowid, key, title, author, abstract, keywords)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, e := range entries {
		entryJSON, err := json.Marshal(e)
		if err != nil {
			return 0, fmt.Errorf("marshaling entry %s: %w", e.Key, err)
		}

		_, err = pubStmt.Exec(i, e.Key, e.Type, e.YearValue(), e.Title, e.Author, e.VenueName(), boolToInt(e.Selected), string(entryJSON))
		if err != nil {
			return 0, fmt.Errorf("inserting entry %s: %w", e.Key, err)
		}

		_, err = ftsStmt.Exec(i, e.Key, e.Title, e.Author, e.Abstract, e.Keywords)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}

	return len(entries), nil
}

// Count returns the number of indexed entries.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM publications").Scan(&count)
	return count, err
}

// Search performs a full-text search across key, title, author, abstract
// and keywords. Results are newest first.
func (d *DB) Search(query string, limit int) ([]publication.Entry, error) {
	return d.searchFTS(prepareFTSQuery(query), limit)
}

// SearchField performs a search restricted to one field. Every term of
// value must match within that field.
func (d *DB) SearchField(field, value string, limit int) ([]publication.Entry, error) {
	switch field {
	case FieldTitle, FieldAuthor:
		q := prepareFTSQuery(value)
		if q == "" {
			return nil, nil
		}
		return d.searchFTS(field+" : ("+q+")", limit)
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}
}

func (d *DB) searchFTS(ftsQuery string, limit int) ([]publication.Entry, error) {
	if strings.TrimSpace(ftsQuery) == "" {
		return nil, nil
	}

	query := `
		SELECT entry_json
		FROM publications
		WHERE pos IN (SELECT rowid FROM publications_fts WHERE publications_fts MATCH ?)
		ORDER BY year DESC, pos`
	args := []interface{}{ftsQuery}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	var entries []publication.Entry
	for rows.Next() {
		var entryJSON string
		if err := rows.Scan(&entryJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var e publication.Entry
		if err := json.Unmarshal([]byte(entryJSON), &e); err != nil {
			return nil, fmt.Errorf("decoding entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// prepareFTSQuery quotes queries containing FTS5 operator characters so
// they are matched as a phrase.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
