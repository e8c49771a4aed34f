package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/reqtree/internal/errdef"
)

type Kind string

const (
	KindCurl        Kind = "curl"
	KindEnvironment Kind = "environment"
)

const defaultMaxEntries = 200

// Entry records one successful import.
type Entry struct {
	ID         int64
	ImportedAt time.Time
	Kind       Kind
	Name       string
	Source     string
	Collection string
	Method     string
	URL        string
}

// Store keeps the most recent imports in an SQLite database, newest first.
type Store struct {
	db         *sql.DB
	maxEntries int
	mu         sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS imports (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	imported_at INTEGER NOT NULL,
	kind        TEXT    NOT NULL,
	name        TEXT    NOT NULL,
	source      TEXT    NOT NULL DEFAULT '',
	collection  TEXT    NOT NULL DEFAULT '',
	method      TEXT    NOT NULL DEFAULT '',
	url         TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_imports_time ON imports(imported_at DESC);
`

func Open(path string, maxEntries int) (*Store, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create history dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "open history %s", path)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errdef.Wrap(errdef.CodeHistory, err, "init history schema")
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts e and trims the table to the newest maxEntries rows. A zero
// ImportedAt is stamped with the current time.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ImportedAt.IsZero() {
		e.ImportedAt = time.Now()
	}
	if strings.TrimSpace(e.Name) == "" {
		return errdef.New(errdef.CodeHistory, "history entry needs a name")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "begin history append")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO imports (imported_at, kind, name, source, collection, method, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ImportedAt.UnixNano(), string(e.Kind), e.Name, e.Source, e.Collection, e.Method, e.URL,
	); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "insert history entry")
	}
	if _, err := tx.Exec(
		`DELETE FROM imports WHERE id NOT IN (
			SELECT id FROM imports ORDER BY imported_at DESC, id DESC LIMIT ?
		)`,
		s.maxEntries,
	); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "trim history")
	}
	if err := tx.Commit(); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "commit history append")
	}
	return nil
}

// Entries returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) Entries(limit int) ([]Entry, error) {
	return s.query(
		`SELECT id, imported_at, kind, name, source, collection, method, url
		 FROM imports ORDER BY imported_at DESC, id DESC LIMIT ?`,
		sqlLimit(limit),
	)
}

// ByName returns the entries recorded under name, newest first.
func (s *Store) ByName(name string) ([]Entry, error) {
	return s.query(
		`SELECT id, imported_at, kind, name, source, collection, method, url
		 FROM imports WHERE name = ? ORDER BY imported_at DESC, id DESC`,
		name,
	)
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "query history")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e    Entry
			at   int64
			kind string
		)
		if err := rows.Scan(&e.ID, &at, &kind, &e.Name, &e.Source, &e.Collection, &e.Method, &e.URL); err != nil {
			return nil, errdef.Wrap(errdef.CodeHistory, err, "scan history row")
		}
		e.ImportedAt = time.Unix(0, at)
		e.Kind = Kind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "read history rows")
	}
	return out, nil
}

func (s *Store) Delete(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete history entry %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete history entry %d", id)
	}
	return n > 0, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM imports`); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "clear history")
	}
	return nil
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
