// Package query evaluates filters, sort keys and one-per deduplication over
// documents. Every persistence backend shares it so that results are
// identical regardless of driver.
package query

import (
	"fmt"
	"modcurves/pkg/domain"
	"sort"
	"strings"
)

// Match reports whether doc satisfies every condition of f. A missing field
// satisfies only OpNe.
func Match(doc domain.Document, f domain.Filter) bool {
	for _, c := range f {
		if !matchCondition(doc, c) {
			return false
		}
	}
	return true
}

func matchCondition(doc domain.Document, c domain.Condition) bool {
	v, ok := doc.Field(c.Field)
	if !ok {
		return c.Op == domain.OpNe
	}
	switch c.Op {
	case domain.OpEq:
		return sameKind(v, c.Value) && Compare(v, c.Value) == 0
	case domain.OpNe:
		return !sameKind(v, c.Value) || Compare(v, c.Value) != 0
	case domain.OpLte:
		return sameKind(v, c.Value) && Compare(v, c.Value) <= 0
	case domain.OpGte:
		return sameKind(v, c.Value) && Compare(v, c.Value) >= 0
	case domain.OpContains:
		return ContainsValue(v, c.Value)
	}
	return false
}

// ContainsValue reports whether the array value arr holds an element equal to v.
func ContainsValue(arr, v any) bool {
	switch xs := arr.(type) {
	case []string:
		s, ok := v.(string)
		if !ok {
			return false
		}
		for _, x := range xs {
			if x == s {
				return true
			}
		}
	case []int:
		n, ok := toInt64(v)
		if !ok {
			return false
		}
		for _, x := range xs {
			if int64(x) == n {
				return true
			}
		}
	case []int64:
		n, ok := toInt64(v)
		if !ok {
			return false
		}
		for _, x := range xs {
			if x == n {
				return true
			}
		}
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func sameKind(a, b any) bool {
	if _, ok := toInt64(a); ok {
		_, ok = toInt64(b)
		return ok
	}
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	}
	return false
}

// Compare orders two scalar values: numbers numerically, strings
// lexically, false before true. nil sorts first. Values of unrelated types
// fall back to their printed form.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if x, ok := toInt64(a); ok {
		if y, ok := toInt64(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func field(doc domain.Document, name string) any {
	v, ok := doc.Field(name)
	if !ok {
		return nil
	}
	return v
}

// Sort orders docs stably by the given keys, falling back to the document
// label so that results are deterministic.
func Sort[T domain.Document](docs []T, keys []string) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			if c := Compare(field(docs[i], k), field(docs[j], k)); c != 0 {
				return c < 0
			}
		}
		return docs[i].DocumentLabel() < docs[j].DocumentLabel()
	})
}

// Filter returns the documents matching f, preserving order.
func Filter[T domain.Document](docs []T, f domain.Filter) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		if Match(d, f) {
			out = append(out, d)
		}
	}
	return out
}

// Best applies a BestQuery to candidate documents: filter, sort, keep the
// first document per distinct OnePer value, then limit.
func Best[T domain.Document](docs []T, q domain.BestQuery) []T {
	out := Filter(docs, q.Filter)
	Sort(out, q.SortBy)
	if q.OnePer != "" {
		seen := make(map[string]struct{}, len(out))
		kept := out[:0]
		for _, d := range out {
			key := fmt.Sprint(field(d, q.OnePer))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, d)
		}
		out = kept
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
