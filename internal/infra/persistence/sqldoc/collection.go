// Package sqldoc stores documents as JSON payload rows keyed by label and
// pushes label and array-containment narrowing down to SQL. The remaining
// filter, sort and dedupe steps run through the shared query package so
// that SQL backends answer exactly like the in-memory store.
package sqldoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"modcurves/internal/infra/persistence/query"
	"modcurves/pkg/domain"
	"regexp"
	"strings"
)

// Dialect captures the SQL differences between backends.
type Dialect struct {
	Name string
	// Placeholder renders the i-th (1-based) bind parameter.
	Placeholder func(i int) string
	// CreateTable returns DDL for a document table.
	CreateTable func(table string) string
	// Upsert returns an insert-or-replace statement taking (label, payload).
	Upsert func(table string) string
	// Contains returns a predicate testing that the JSON array at field
	// holds the bound value, and converts the value to its bind argument.
	Contains func(field string, arg int) string
	ContainsArg func(value any) (any, error)
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Collection is a document table over a database/sql handle.
type Collection[T domain.Document] struct {
	db    *sql.DB
	d     Dialect
	coll  domain.Collection
	table string
}

// NewCollection binds coll to its table (named after the collection).
func NewCollection[T domain.Document](db *sql.DB, d Dialect, coll domain.Collection) *Collection[T] {
	return &Collection[T]{db: db, d: d, coll: coll, table: string(coll)}
}

// EnsureSchema creates the document tables of every collection.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, coll := range []domain.Collection{domain.CollectionCurves, domain.CollectionECQ, domain.CollectionECNF} {
		if _, err := db.ExecContext(ctx, d.CreateTable(string(coll))); err != nil {
			return fmt.Errorf("create %s table: %w", coll, err)
		}
	}
	return nil
}

// Put upserts docs in a single transaction.
func (c *Collection[T]) Put(ctx context.Context, docs []T) (retErr error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Unavailable(c.coll, "put", fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	stmt := c.d.Upsert(c.table)
	for _, doc := range docs {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode %s: %w", doc.DocumentLabel(), err)
		}
		if _, err := tx.ExecContext(ctx, stmt, doc.DocumentLabel(), string(payload)); err != nil {
			return domain.Unavailable(c.coll, "put", fmt.Errorf("upsert %s: %w", doc.DocumentLabel(), err))
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Unavailable(c.coll, "put", fmt.Errorf("commit: %w", err))
	}
	return nil
}

// Count returns the number of stored documents.
func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(&n); err != nil {
		return 0, domain.Unavailable(c.coll, "count", err)
	}
	return n, nil
}

// Get returns the document stored under label.
func (c *Collection[T]) Get(ctx context.Context, label string) (T, bool, error) {
	var zero T
	docs, err := c.query(ctx, "get", "label = "+c.d.Placeholder(1), label)
	if err != nil {
		return zero, false, err
	}
	if len(docs) == 0 {
		return zero, false, nil
	}
	return docs[0], true, nil
}

// LookupByLabels returns documents whose label is in labels and which match filter.
func (c *Collection[T]) LookupByLabels(ctx context.Context, labels []string, filter domain.Filter) ([]T, error) {
	if len(labels) == 0 {
		return []T{}, nil
	}
	marks := make([]string, len(labels))
	args := make([]any, len(labels))
	for i, l := range labels {
		marks[i] = c.d.Placeholder(i + 1)
		args[i] = l
	}
	docs, err := c.query(ctx, "lookup_by_labels", "label IN ("+strings.Join(marks, ",")+")", args...)
	if err != nil {
		return nil, err
	}
	return query.Filter(docs, filter), nil
}

// LookupByContainment returns documents whose array field contains value.
func (c *Collection[T]) LookupByContainment(ctx context.Context, field string, value any, filter domain.Filter) ([]T, error) {
	where, args, err := c.containment("lookup_by_containment", field, value)
	if err != nil {
		return nil, err
	}
	docs, err := c.query(ctx, "lookup_by_containment", where, args...)
	if err != nil {
		return nil, err
	}
	return query.Filter(docs, filter), nil
}

// LookupBest pushes the first containment condition down, then sorts,
// dedupes and limits in process.
func (c *Collection[T]) LookupBest(ctx context.Context, q domain.BestQuery) ([]T, error) {
	where := ""
	var args []any
	for _, cond := range q.Filter {
		if cond.Op != domain.OpContains {
			continue
		}
		var err error
		where, args, err = c.containment("lookup_best", cond.Field, cond.Value)
		if err != nil {
			return nil, err
		}
		break
	}
	docs, err := c.query(ctx, "lookup_best", where, args...)
	if err != nil {
		return nil, err
	}
	return query.Best(docs, q), nil
}

func (c *Collection[T]) containment(op, field string, value any) (string, []any, error) {
	if !fieldName.MatchString(field) {
		return "", nil, fmt.Errorf("%s %s: invalid field name %q", c.coll, op, field)
	}
	arg, err := c.d.ContainsArg(value)
	if err != nil {
		return "", nil, fmt.Errorf("%s %s: %w", c.coll, op, err)
	}
	return c.d.Contains(field, 1), []any{arg}, nil
}

func (c *Collection[T]) query(ctx context.Context, op, where string, args ...any) ([]T, error) {
	stmt := "SELECT label, payload FROM " + c.table
	if where != "" {
		stmt += " WHERE " + where
	}
	stmt += " ORDER BY seq"
	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, domain.Unavailable(c.coll, op, err)
	}
	defer func() { _ = rows.Close() }()
	out := make([]T, 0)
	for rows.Next() {
		var label string
		var payload []byte
		if err := rows.Scan(&label, &payload); err != nil {
			return nil, domain.Unavailable(c.coll, op, fmt.Errorf("scan: %w", err))
		}
		var doc T
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, &domain.DataConsistencyError{Label: label, Field: "payload", Detail: "undecodable document", Err: err}
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable(c.coll, op, fmt.Errorf("iterate: %w", err))
	}
	return out, nil
}
