// Package memory provides an in-memory implementation of the record store
// used for tests and ephemeral environments.
package memory

import (
	"context"
	"modcurves/internal/infra/persistence/query"
	"modcurves/pkg/domain"
	"sync"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain store interface.
var _ domain.Store = (*Store)(nil)

// Table holds one collection in insertion order. Reads and writes clone
// documents so callers never alias stored slices.
type Table[T domain.Document] struct {
	coll  domain.Collection
	clone func(T) T

	mu    sync.RWMutex
	order []string
	docs  map[string]T
}

// NewTable constructs an empty table for coll.
func NewTable[T domain.Document](coll domain.Collection, clone func(T) T) *Table[T] {
	return &Table[T]{coll: coll, clone: clone, docs: make(map[string]T)}
}

// Put inserts or replaces documents by label. New labels are appended to
// the scan order; replaced labels keep their position.
func (t *Table[T]) Put(ctx context.Context, docs []T) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable(t.coll, "put", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range docs {
		key := d.DocumentLabel()
		if _, exists := t.docs[key]; !exists {
			t.order = append(t.order, key)
		}
		t.docs[key] = t.clone(d)
	}
	return nil
}

// Count returns the number of stored documents.
func (t *Table[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.Unavailable(t.coll, "count", err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.docs), nil
}

// Get returns the document stored under label.
func (t *Table[T]) Get(ctx context.Context, label string) (T, bool, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, false, domain.Unavailable(t.coll, "get", err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.docs[label]
	if !ok {
		return zero, false, nil
	}
	return t.clone(d), true, nil
}

// LookupByLabels returns the documents whose label is in labels and which
// match filter, in scan order.
func (t *Table[T]) LookupByLabels(ctx context.Context, labels []string, filter domain.Filter) ([]T, error) {
	want := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		want[l] = struct{}{}
	}
	return t.scan(ctx, "lookup_by_labels", func(d T) bool {
		_, ok := want[d.DocumentLabel()]
		return ok && query.Match(d, filter)
	})
}

// LookupByContainment returns the documents whose array field contains value.
func (t *Table[T]) LookupByContainment(ctx context.Context, field string, value any, filter domain.Filter) ([]T, error) {
	cond := domain.Filter{domain.Contains(field, value)}
	return t.scan(ctx, "lookup_by_containment", func(d T) bool {
		return query.Match(d, cond) && query.Match(d, filter)
	})
}

// LookupBest runs a sorted, deduplicated and limited scan.
func (t *Table[T]) LookupBest(ctx context.Context, q domain.BestQuery) ([]T, error) {
	all, err := t.scan(ctx, "lookup_best", func(T) bool { return true })
	if err != nil {
		return nil, err
	}
	return query.Best(all, q), nil
}

func (t *Table[T]) scan(ctx context.Context, op string, keep func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable(t.coll, op, err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0)
	for _, key := range t.order {
		d := t.docs[key]
		if keep(d) {
			out = append(out, t.clone(d))
		}
	}
	return out, nil
}

// Store is an in-memory record store.
type Store struct {
	curves *Table[domain.CurveRecord]
	ecq    *Table[domain.ECRecord]
	ecnf   *Table[domain.NFCurveRecord]
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		curves: NewTable(domain.CollectionCurves, domain.CurveRecord.Clone),
		ecq:    NewTable(domain.CollectionECQ, domain.ECRecord.Clone),
		ecnf:   NewTable(domain.CollectionECNF, domain.NFCurveRecord.Clone),
	}
}

// Curves returns the modular curve table.
func (s *Store) Curves() domain.Table[domain.CurveRecord] { return s.curves }

// EllipticCurves returns the elliptic curves over Q.
func (s *Store) EllipticCurves() domain.Table[domain.ECRecord] { return s.ecq }

// NumberFieldCurves returns the elliptic curves over number fields.
func (s *Store) NumberFieldCurves() domain.Table[domain.NFCurveRecord] { return s.ecnf }

// Close is a no-op.
func (s *Store) Close() error { return nil }
