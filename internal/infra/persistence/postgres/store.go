// Package postgres provides the server record store: one JSONB document
// table per collection, with label and containment narrowing done by
// Postgres and the remaining query steps shared with the other backends.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"modcurves/internal/infra/persistence/sqldoc"
	"modcurves/pkg/domain"
	"strconv"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/modcurves?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Dialect returns the Postgres flavour of the document layer.
func Dialect() sqldoc.Dialect {
	return sqldoc.Dialect{
		Name:        "postgres",
		Placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
		CreateTable: func(table string) string {
			return `CREATE TABLE IF NOT EXISTS ` + table + ` (
		seq BIGSERIAL,
		label TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
		},
		Upsert: func(table string) string {
			return `INSERT INTO ` + table + `(label, payload) VALUES($1, $2) ON CONFLICT(label) DO UPDATE SET payload = EXCLUDED.payload`
		},
		Contains: func(field string, arg int) string {
			return `payload->'` + field + `' @> $` + strconv.Itoa(arg) + `::jsonb`
		},
		ContainsArg: containsArg,
	}
}

// containsArg encodes value as a one-element JSON array for the @> operator.
func containsArg(value any) (any, error) {
	switch value.(type) {
	case string, int, int64, bool:
	default:
		return nil, fmt.Errorf("unsupported containment value %T", value)
	}
	raw, err := json.Marshal([]any{value})
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Store is a Postgres-backed domain.Store.
type Store struct {
	db     *sql.DB
	curves *sqldoc.Collection[domain.CurveRecord]
	ecq    *sqldoc.Collection[domain.ECRecord]
	ecnf   *sqldoc.Collection[domain.NFCurveRecord]
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN) and ensures the collection tables exist.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	d := Dialect()
	if err := sqldoc.EnsureSchema(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:     db,
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

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
