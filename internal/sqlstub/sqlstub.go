// Package sqlstub provides a scriptable database/sql driver for tests.
//
// The stub records every statement it executes, can return canned result
// sets matched by query substring, and can be told to fail on a chosen
// statement so rollback paths can be exercised without a real PostgreSQL.
package sqlstub

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
)

// Stmt is one statement the stub connection saw.
type Stmt struct {
	Query string
	Args  []driver.NamedValue
}

type resultSet struct {
	match   string
	columns []string
	rows    [][]driver.Value
}

// Conn is a scriptable driver connection shared by every database/sql
// connection minted from OpenDB.
type Conn struct {
	Execs   []Stmt
	Queries []Stmt

	Begun      int
	Committed  int
	RolledBack int

	// FailOn makes any statement containing the substring fail with FailErr.
	FailOn  string
	FailErr error

	results []resultSet
}

// OpenDB returns a *sql.DB backed by a fresh stub connection.
func OpenDB() (*sql.DB, *Conn) {
	c := &Conn{}
	return sql.OpenDB(&connector{conn: c}), c
}

// On scripts a result set for queries containing match.
func (c *Conn) On(match string, columns []string, rows ...[]driver.Value) {
	c.results = append(c.results, resultSet{match: match, columns: columns, rows: rows})
}

func (c *Conn) fail(query string) error {
	if c.FailOn != "" && strings.Contains(query, c.FailOn) {
		if c.FailErr != nil {
			return c.FailErr
		}
		return errors.New("stub failure")
	}
	return nil
}

type connector struct{ conn *Conn }

func (c *connector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c *connector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("sqlstub: use OpenDB")
}

func (c *Conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("sqlstub: prepared statements not supported")
}

func (c *Conn) Close() error { return nil }

func (c *Conn) Begin() (driver.Tx, error) {
	c.Begun++
	return &stubTx{conn: c}, nil
}

func (c *Conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return c.Begin()
}

// CheckNamedValue accepts every argument unchanged so pointer-typed NULLable
// fields survive into the recorded statements.
func (c *Conn) CheckNamedValue(*driver.NamedValue) error { return nil }

func (c *Conn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.Execs = append(c.Execs, Stmt{Query: query, Args: args})
	if err := c.fail(query); err != nil {
		return nil, err
	}
	return driver.RowsAffected(int64(len(args))), nil
}

func (c *Conn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.Queries = append(c.Queries, Stmt{Query: query, Args: args})
	if err := c.fail(query); err != nil {
		return nil, err
	}
	for _, rs := range c.results {
		if strings.Contains(query, rs.match) {
			return &stubRows{columns: rs.columns, rows: rs.rows}, nil
		}
	}
	return &stubRows{}, nil
}

type stubTx struct{ conn *Conn }

func (t *stubTx) Commit() error {
	t.conn.Committed++
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.RolledBack++
	return nil
}

type stubRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

var _ driver.Conn = (*Conn)(nil)
var _ driver.ExecerContext = (*Conn)(nil)
var _ driver.QueryerContext = (*Conn)(nil)
var _ driver.NamedValueChecker = (*Conn)(nil)
var _ driver.ConnBeginTx = (*Conn)(nil)
