package postgres

import (
	"context"
	"database/sql"
	"errors"
	"modcurves/internal/infra/persistence/postgres/testutil"
	"modcurves/pkg/domain"
	"strings"
	"testing"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreCreatesJSONBTables(t *testing.T) {
	_, conn := openStub(t)
	var ddl int
	for _, stmt := range conn.Execs {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS") && strings.Contains(stmt, "JSONB") {
			ddl++
		}
	}
	if ddl != 3 {
		t.Fatalf("expected 3 collection tables, got execs: %v", conn.Execs)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailExec = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "ignored"); err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestNewStoreOpenFailure(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("boom") })
	defer restore()
	if _, err := NewStore(context.Background(), "ignored"); err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestContainmentPushesDownJSONB(t *testing.T) {
	store, conn := openStub(t)
	ctx := context.Background()
	curves := []domain.CurveRecord{
		{Label: "1.1.0.a.1", Level: 1, Index: 1, ContainsNegativeOne: true},
		{Label: "2.2.0.a.1", Level: 2, Index: 2, Parents: []string{"1.1.0.a.1"}, ContainsNegativeOne: true},
		{Label: "2.3.0.a.1", Level: 2, Index: 3, Parents: []string{"1.1.0.a.1"}, ContainsNegativeOne: false},
	}
	if err := store.Curves().Put(ctx, curves); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Curves().LookupByContainment(ctx, "parents", "1.1.0.a.1", domain.Filter{domain.Eq("contains_negative_one", true)})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 1 || got[0].Label != "2.2.0.a.1" {
		t.Fatalf("unexpected result %+v", got)
	}
	last := conn.Queries[len(conn.Queries)-1]
	if !strings.Contains(last.SQL, "payload->'parents' @> $1::jsonb") {
		t.Fatalf("containment not pushed down: %s", last.SQL)
	}
	if len(last.Args) != 1 || last.Args[0] != `["1.1.0.a.1"]` {
		t.Fatalf("unexpected containment args %v", last.Args)
	}
}

func TestLookupByLabelsUsesNumberedPlaceholders(t *testing.T) {
	store, conn := openStub(t)
	ctx := context.Background()
	if err := store.Curves().Put(ctx, []domain.CurveRecord{{Label: "1.1.0.a.1"}, {Label: "2.2.0.a.1"}, {Label: "2.3.0.a.1"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Curves().LookupByLabels(ctx, []string{"2.3.0.a.1", "1.1.0.a.1"}, nil)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 2 || got[0].Label != "1.1.0.a.1" || got[1].Label != "2.3.0.a.1" {
		t.Fatalf("unexpected result %+v", got)
	}
	last := conn.Queries[len(conn.Queries)-1]
	if !strings.Contains(last.SQL, "label IN ($1,$2)") {
		t.Fatalf("unexpected statement %s", last.SQL)
	}
	n, err := store.Curves().Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("count = %d, %v", n, err)
	}
}

func TestQueryFailureIsStoreUnavailable(t *testing.T) {
	store, conn := openStub(t)
	conn.FailQuery = true
	_, err := store.EllipticCurves().LookupBest(context.Background(), domain.BestQuery{
		Filter: domain.Filter{domain.Contains("modm_images", "2.3.0.a.1")},
	})
	var su *domain.StoreUnavailableError
	if !errors.As(err, &su) || su.Collection != domain.CollectionECQ || su.Op != "lookup_best" {
		t.Fatalf("expected store unavailable for ec_q lookup_best, got %v", err)
	}
}

func TestPutCommitFailure(t *testing.T) {
	store, conn := openStub(t)
	conn.FailCommit = true
	err := store.Curves().Put(context.Background(), []domain.CurveRecord{{Label: "1.1.0.a.1"}})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable on commit failure, got %v", err)
	}
}
