package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// sliceRows replays a list of scan funcs.
type sliceRows struct {
	testRowsBase
	scans []func(dest ...any) error
	idx   int
	err   error
}

func (r *sliceRows) Close() {}

func (r *sliceRows) Err() error { return r.err }

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.scans) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error { return r.scans[r.idx-1](dest...) }

type call struct {
	marker string
	args   []any
}

// fakeDB records calls and answers from canned closures.
type fakeDB struct {
	calls   []call
	row     func(args []any) pgx.Row
	rows    func(args []any) (pgx.Rows, error)
	execTag string
	execErr error
}

func (f *fakeDB) record(query string, args []any) {
	first, _, _ := strings.Cut(query, "\n")
	f.calls = append(f.calls, call{marker: first, args: args})
}

func (f *fakeDB) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.record(query, args)
	return pgconn.NewCommandTag(f.execTag), f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.record(query, args)
	if f.row == nil {
		return simpleRow{}
	}
	return f.row(args)
}

func (f *fakeDB) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query, args)
	if f.rows == nil {
		return &sliceRows{}, nil
	}
	return f.rows(args)
}
