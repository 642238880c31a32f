package domain

import "context"

// Document is a stored record the query layer can filter, sort and dedupe.
type Document interface {
	DocumentLabel() string
	Field(name string) (any, bool)
}

// Op is a comparison applied by a Condition.
type Op string

// Supported condition operators.
const (
	OpEq       Op = "eq"
	OpNe       Op = "ne"
	OpLte      Op = "lte"
	OpGte      Op = "gte"
	OpContains Op = "contains" // array field contains Value
)

// Condition restricts a query to documents whose Field satisfies Op against Value.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of conditions. The empty filter matches everything.
type Filter []Condition

// Eq builds an equality condition.
func Eq(field string, value any) Condition { return Condition{Field: field, Op: OpEq, Value: value} }

// Ne builds an inequality condition.
func Ne(field string, value any) Condition { return Condition{Field: field, Op: OpNe, Value: value} }

// Lte builds a less-or-equal condition.
func Lte(field string, value any) Condition { return Condition{Field: field, Op: OpLte, Value: value} }

// Gte builds a greater-or-equal condition.
func Gte(field string, value any) Condition { return Condition{Field: field, Op: OpGte, Value: value} }

// Contains builds an array-containment condition.
func Contains(field string, value any) Condition {
	return Condition{Field: field, Op: OpContains, Value: value}
}

// BestQuery is a sorted, optionally deduplicated and limited scan.
type BestQuery struct {
	Filter Filter
	SortBy []string
	// OnePer keeps only the first document, in SortBy order, for each
	// distinct value of this field. Empty disables deduplication.
	OnePer string
	// Limit caps the result after deduplication. Zero means no limit.
	Limit int
}

// Finder is the read-only lookup capability over one collection. Every
// backend failure is reported as a StoreUnavailableError, never as an empty result.
type Finder[T Document] interface {
	Get(ctx context.Context, label string) (T, bool, error)
	LookupByLabels(ctx context.Context, labels []string, filter Filter) ([]T, error)
	LookupByContainment(ctx context.Context, field string, value any, filter Filter) ([]T, error)
	LookupBest(ctx context.Context, q BestQuery) ([]T, error)
}

// Table is a Finder that can also be loaded with records by the ingest path.
type Table[T Document] interface {
	Finder[T]
	Put(ctx context.Context, docs []T) error
	Count(ctx context.Context) (int, error)
}

// Store is the record store capability injected into every component.
type Store interface {
	Curves() Table[CurveRecord]
	EllipticCurves() Table[ECRecord]
	NumberFieldCurves() Table[NFCurveRecord]
	Close() error
}
