// Package sqlite provides the embedded record store: one table per
// collection holding JSON payloads, queried through the sqldoc layer.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"modcurves/internal/infra/persistence/sqldoc"
	"modcurves/pkg/domain"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.Store = (*Store)(nil)

const defaultPath = "modcurves.db"

// Dialect returns the SQLite flavour of the document layer. Containment
// runs through json_each over the payload column.
func Dialect() sqldoc.Dialect {
	return sqldoc.Dialect{
		Name:        "sqlite",
		Placeholder: func(int) string { return "?" },
		CreateTable: func(table string) string {
			return `CREATE TABLE IF NOT EXISTS ` + table + ` (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL UNIQUE,
		payload TEXT NOT NULL
	)`
		},
		Upsert: func(table string) string {
			return `INSERT INTO ` + table + `(label, payload) VALUES(?, ?) ON CONFLICT(label) DO UPDATE SET payload = excluded.payload`
		},
		Contains: func(field string, _ int) string {
			return `EXISTS (SELECT 1 FROM json_each(payload, '$.` + field + `') WHERE json_each.value = ?)`
		},
		ContainsArg: containsArg,
	}
}

func containsArg(value any) (any, error) {
	switch v := value.(type) {
	case string, int, int64, bool:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported containment value %T", value)
}

// Store is a SQLite-backed domain.Store.
type Store struct {
	db     *sql.DB
	path   string
	curves *sqldoc.Collection[domain.CurveRecord]
	ecq    *sqldoc.Collection[domain.ECRecord]
	ecnf   *sqldoc.Collection[domain.NFCurveRecord]
}

// NewStore opens (creating if needed) the database at path and ensures
// the collection tables exist.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	d := Dialect()
	if err := sqldoc.EnsureSchema(context.Background(), db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:     db,
		path:   path,
		curves: sqldoc.NewCollection[domain.CurveRecord](db, d, domain.CollectionCurves),
		ecq:    sqldoc.NewCollection[domain.ECRecord](db, d, domain.CollectionECQ),
		ecnf:   sqldoc.NewCollection[domain.NFCurveRecord](db, d, domain.CollectionECNF),
	}, nil
}

// Curves returns the modular curve collection.
func (s *Store) Curves() domain.Table[domain.CurveRecord] { return s.curves }

// EllipticCurves returns the elliptic curves over Q.
func (s *Store) EllipticCurves() domain.Table[domain.ECRecord] { return s.ecq }

// NumberFieldCurves returns the elliptic curves over number fields.
func (s *Store) NumberFieldCurves() domain.Table[domain.NFCurveRecord] { return s.ecnf }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying sql.DB for tests.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
