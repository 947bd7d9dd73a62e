package db

import (
	"context"
	"database/sql"
	"errors"
)

// ErrMissingID is returned when a record without identifier is saved to a
// store keyed by id.
var ErrMissingID = errors.New("record has no id")

// ErrNotConnected is returned by clients used before Connect succeeded.
var ErrNotConnected = errors.New("not connected")

// DBProvider is implemented by clients that expose a sql.DB handle, so
// PostgresClient and a directly connected SupabaseClient can share the SQL
// helpers in this package.
type DBProvider interface {
	DB() *sql.DB
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
