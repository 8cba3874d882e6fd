package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type execCall struct {
	sql  string
	args []any
}

type fakeQuerier struct {
	execs       []execCall
	execResult  int64
	execErr     error
	row         *fakeRow
	lastQueryAt []any
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execResult, f.execErr
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.lastQueryAt = args
	if f.row == nil {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	return f.row
}

type fakeRow struct {
	err  error
	scan func(dest ...any)
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.scan != nil {
		r.scan(dest...)
	}
	return nil
}
