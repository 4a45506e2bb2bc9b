// Package store persists class name assignments between runs so class names
// stay stable across builds.
package store

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/jsxstyle/jsxstyle-sub000/css"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS classes (
	key  TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	seq  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// ErrNamingMismatch is returned when the store was filled with a different
// naming scheme than the one requested.
var ErrNamingMismatch = errors.New("class naming scheme differs from stored one")

// Store is a SQLite backed table of declaration key to class name
// assignments. It is not safe for concurrent use.
type Store struct {
	log  *zap.Logger
	conn *sqlite.Conn
	path string
}

// Open opens (creating when necessary) the store at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("open class store: %w", err)
	}
	s := &Store{log: log.Named("store"), conn: conn, path: path}
	if err := s.migrate(); err != nil {
		return nil, multierr.Append(err, conn.Close())
	}
	return s, nil
}

func (s *Store) migrate() error {
	var version int64
	err := sqlitex.Execute(s.conn, `PRAGMA user_version`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			version = stmt.ColumnInt64(0)
			return nil
		}})
	if err != nil {
		return fmt.Errorf("read class store version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("class store %s has unsupported version %d", s.path, version)
	}
	if err := sqlitex.ExecuteScript(s.conn, schema, nil); err != nil {
		return fmt.Errorf("create class store schema: %w", err)
	}
	if err := sqlitex.ExecuteTransient(s.conn, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion), nil); err != nil {
		return fmt.Errorf("set class store version: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Seed loads stored assignments into cache in their original order and
// returns number of names taken. A store written with another naming scheme
// is refused with ErrNamingMismatch.
func (s *Store) Seed(cache *css.ClassNameCache, naming css.Naming) (int, error) {
	stored, err := s.meta("naming")
	if err != nil {
		return 0, err
	}
	if stored != "" && stored != naming.String() {
		return 0, fmt.Errorf("%w: %s has %q, requested %q", ErrNamingMismatch, s.path, stored, naming)
	}

	var seeded, skipped int
	err = sqlitex.Execute(s.conn, `SELECT key, name FROM classes ORDER BY seq`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if cache.Seed(stmt.ColumnText(0), stmt.ColumnText(1)) {
				seeded++
			} else {
				skipped++
			}
			return nil
		}})
	if err != nil {
		return 0, fmt.Errorf("read class store: %w", err)
	}
	s.log.Debug("Class names seeded", zap.String("path", s.path), zap.Int("seeded", seeded), zap.Int("skipped", skipped))
	return seeded, nil
}

// Save writes every assignment of cache, keeping names already stored for a
// key. It runs in a single transaction.
func (s *Store) Save(cache *css.ClassNameCache, naming css.Naming) (err error) {
	defer sqlitex.Save(s.conn)(&err)

	if err = s.setMeta("naming", naming.String()); err != nil {
		return err
	}

	var next int64
	err = sqlitex.Execute(s.conn, `SELECT COALESCE(MAX(seq), -1) + 1 FROM classes`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			next = stmt.ColumnInt64(0)
			return nil
		}})
	if err != nil {
		return fmt.Errorf("read class store: %w", err)
	}

	var added int
	for _, a := range cache.Assignments() {
		err = sqlitex.Execute(s.conn, `INSERT INTO classes (key, name, seq) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			&sqlitex.ExecOptions{Args: []any{a.Key, a.Name, next}})
		if err != nil {
			return fmt.Errorf("write class %q: %w", a.Name, err)
		}
		if s.conn.Changes() > 0 {
			added++
			next++
		}
	}
	s.log.Debug("Class names saved", zap.String("path", s.path), zap.Int("added", added), zap.Int("total", cache.Len()))
	return nil
}

// Len returns number of stored assignments.
func (s *Store) Len() (int, error) {
	var n int
	err := sqlitex.Execute(s.conn, `SELECT COUNT(*) FROM classes`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		}})
	if err != nil {
		return 0, fmt.Errorf("count class store: %w", err)
	}
	return n, nil
}

func (s *Store) meta(key string) (string, error) {
	var v string
	err := sqlitex.Execute(s.conn, `SELECT value FROM meta WHERE key = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			v = stmt.ColumnText(0)
			return nil
		}})
	if err != nil {
		return "", fmt.Errorf("read class store %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) setMeta(key, value string) error {
	err := sqlitex.Execute(s.conn, `INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		&sqlitex.ExecOptions{Args: []any{key, value}})
	if err != nil {
		return fmt.Errorf("write class store %s: %w", key, err)
	}
	return nil
}
