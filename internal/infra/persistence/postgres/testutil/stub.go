// Package testutil provides a stub document database for postgres store tests.
// It understands the statement shapes issued by the sqldoc layer: table DDL,
// label upserts, label and JSONB containment predicates, and row counts.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// StubRow is one stored document row.
type StubRow struct {
	Label   string
	Payload string
}

// StubQuery is a recorded query with its bound arguments.
type StubQuery struct {
	SQL  string
	Args []any
}

// StubConn records statements and holds document rows per table.
type StubConn struct {
	Execs      []string
	Queries    []StubQuery
	Tables     map[string][]StubRow
	FailExec   bool
	FailBegin  bool
	FailQuery  bool
	FailCommit bool
	RowsErr    error
}

var stubSeq atomic.Int64

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Tables: make(map[string][]StubRow)}
	name := fmt.Sprintf("stubpg%d_%d", time.Now().UnixNano(), stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailExec {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO") {
		return driver.RowsAffected(0), nil
	}
	table, err := parseInsert(query)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("expected (label, payload) args for %s", table)
	}
	row := StubRow{Label: fmt.Sprint(args[0].Value), Payload: fmt.Sprint(args[1].Value)}
	rows := c.Tables[table]
	for i := range rows {
		if rows[i].Label == row.Label {
			rows[i] = row
			return driver.RowsAffected(1), nil
		}
	}
	c.Tables[table] = append(rows, row)
	return driver.RowsAffected(1), nil
}

var containsPattern = regexp.MustCompile(`payload->'([A-Za-z_][A-Za-z0-9_]*)' @> \$1::jsonb`)

// QueryContext implements driver.QueryerContext.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	c.Queries = append(c.Queries, StubQuery{SQL: query, Args: values})
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	table, err := parseFrom(query)
	if err != nil {
		return nil, err
	}
	rows := c.Tables[table]
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT COUNT(*)") {
		return &stubRows{cols: []string{"count"}, rows: [][]driver.Value{{int64(len(rows))}}}, nil
	}
	out := make([][]driver.Value, 0, len(rows))
	for _, row := range rows {
		ok, err := matches(query, values, row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, []driver.Value{row.Label, []byte(row.Payload)})
		}
	}
	return &stubRows{cols: []string{"label", "payload"}, rows: out, err: c.RowsErr}, nil
}

func matches(query string, args []any, row StubRow) (bool, error) {
	switch {
	case strings.Contains(query, "label = "), strings.Contains(query, "label IN ("):
		for _, a := range args {
			if fmt.Sprint(a) == row.Label {
				return true, nil
			}
		}
		return false, nil
	case containsPattern.MatchString(query):
		field := containsPattern.FindStringSubmatch(query)[1]
		var want []any
		if err := json.Unmarshal([]byte(fmt.Sprint(args[0])), &want); err != nil {
			return false, fmt.Errorf("decode containment arg: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(row.Payload), &doc); err != nil {
			return false, fmt.Errorf("decode payload: %w", err)
		}
		have, _ := doc[field].([]any)
		for _, w := range want {
			found := false
			for _, h := range have {
				if fmt.Sprint(h) == fmt.Sprint(w) {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}
	return true, nil
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}
func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}

func parseInsert(query string) (string, error) {
	up := strings.ToUpper(query)
	intoIdx := strings.Index(up, "INTO ")
	if intoIdx == -1 {
		return "", fmt.Errorf("cannot parse insert: %s", query)
	}
	rest := strings.TrimSpace(query[intoIdx+len("INTO "):])
	open := strings.Index(rest, "(")
	if open == -1 {
		return "", fmt.Errorf("cannot parse insert: %s", query)
	}
	return strings.ToLower(strings.TrimSpace(rest[:open])), nil
}

func parseFrom(query string) (string, error) {
	lower := strings.ToLower(query)
	fromToken := " from "
	if !strings.HasPrefix(strings.TrimSpace(lower), "select ") {
		return "", fmt.Errorf("cannot parse select: %s", query)
	}
	fromIdx := strings.Index(lower, fromToken)
	if fromIdx == -1 {
		return "", fmt.Errorf("cannot parse select: %s", query)
	}
	rest := strings.Fields(query[fromIdx+len(fromToken):])
	if len(rest) == 0 {
		return "", fmt.Errorf("cannot parse select: %s", query)
	}
	return strings.ToLower(rest[0]), nil
}
