package sqldoc

import (
	"context"
	"errors"
	"modcurves/pkg/domain"
	"strings"
	"testing"
)

func testDialect() Dialect {
	return Dialect{
		Name:        "test",
		Placeholder: func(int) string { return "?" },
		Contains:    func(field string, _ int) string { return field + " CONTAINS ?" },
		ContainsArg: func(value any) (any, error) {
			if _, ok := value.(string); !ok {
				return nil, errors.New("strings only")
			}
			return value, nil
		},
	}
}

func TestContainmentRejectsUnsafeFieldNames(t *testing.T) {
	c := NewCollection[domain.CurveRecord](nil, testDialect(), domain.CollectionCurves)
	for _, field := range []string{"", "parents'", "a b", "1abc", "parents;DROP"} {
		if _, err := c.LookupByContainment(context.Background(), field, "1.1.0.a.1", nil); err == nil {
			t.Fatalf("expected %q to be rejected", field)
		}
	}
}

func TestContainmentRejectsUnsupportedValues(t *testing.T) {
	c := NewCollection[domain.CurveRecord](nil, testDialect(), domain.CollectionCurves)
	_, err := c.LookupBest(context.Background(), domain.BestQuery{Filter: domain.Filter{domain.Contains("parents", 3.5)}})
	if err == nil || !strings.Contains(err.Error(), "strings only") {
		t.Fatalf("expected dialect argument error, got %v", err)
	}
}

func TestLookupByLabelsEmptyShortCircuits(t *testing.T) {
	c := NewCollection[domain.CurveRecord](nil, testDialect(), domain.CollectionCurves)
	got, err := c.LookupByLabels(context.Background(), nil, nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v %v", got, err)
	}
}
