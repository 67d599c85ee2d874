package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the query surface shared by pgx.Tx and *pgxpool.Pool. Repositories
// depend on this interface so they can run inside a caller's transaction or
// directly against the pool.
type Tx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Row is the scan surface shared by pgx.Row and pgx.Rows, letting one scan
// helper serve both single-row and multi-row queries.
type Row interface {
	Scan(dest ...any) error
}
