package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubConnUpsertsAndFiltersRows(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	insert := "INSERT INTO modcurves(label, payload) VALUES($1, $2) ON CONFLICT(label) DO UPDATE SET payload = EXCLUDED.payload"
	for _, args := range [][]driver.NamedValue{
		{{Value: "2.2.0.a.1"}, {Value: `{"label":"2.2.0.a.1","parents":["1.1.0.a.1"]}`}},
		{{Value: "1.1.0.a.1"}, {Value: `{"label":"1.1.0.a.1"}`}},
		{{Value: "2.2.0.a.1"}, {Value: `{"label":"2.2.0.a.1","parents":["1.1.0.a.1"],"name":"X0(2)"}`}},
	} {
		if _, err := conn.ExecContext(ctx, insert, args); err != nil {
			t.Fatalf("ExecContext insert: %v", err)
		}
	}
	if got := len(conn.Tables["modcurves"]); got != 2 {
		t.Fatalf("expected upsert to keep 2 rows, got %d", got)
	}

	rows, err := conn.QueryContext(ctx, "SELECT label, payload FROM modcurves WHERE payload->'parents' @> $1::jsonb ORDER BY seq",
		[]driver.NamedValue{{Value: `["1.1.0.a.1"]`}})
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "2.2.0.a.1" {
		t.Fatalf("unexpected row %v", dest)
	}
	if err := rows.Next(dest); err == nil {
		t.Fatalf("expected a single containment match")
	}

	count, err := conn.QueryContext(ctx, "SELECT COUNT(*) FROM modcurves", nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	one := make([]driver.Value, 1)
	if err := count.Next(one); err != nil || one[0] != int64(2) {
		t.Fatalf("unexpected count %v %v", one, err)
	}
}
