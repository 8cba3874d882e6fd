package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// querier is the subset of database.Postgres the repositories need
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
