// Package store implements the two surfaces the daemon uses to talk to the
// replicated CRDT-backed SQL store: a transactional HTTP writer whose
// writes trigger the store's subscription events, and a CLI-based reader.
// Neither surface retries; both are designed around the assumption that the
// store is only ever eventually consistent (see spec §9).
package store

import (
	"context"
)

// Result is one statement's outcome from a transaction.
type Result struct {
	RowsAffected int64
	Columns      []string
	Rows         [][]string
}

// Writer executes SQL statements against the store's transaction endpoint.
// Writes issued here are the only ones that trigger the store's
// subscription events.
type Writer interface {
	// Exec runs the given SQL statements as a single transaction and
	// returns one Result per statement. It never retries; on transport
	// failure it returns a wrapped error and the caller should treat the
	// write as not having happened.
	Exec(ctx context.Context, statements ...string) ([]Result, error)
}

// Reader runs read-only SQL against the store's CLI query interface.
type Reader interface {
	// Query returns one []string per row, pipe-delimited column values as
	// given by the store CLI. An empty result set yields an empty (not
	// nil) slice. Read failures are logged by the caller and degrade to an
	// empty sequence — callers must not treat an empty result as proof of
	// an empty table.
	Query(ctx context.Context, sql string) ([][]string, error)

	// Scalar returns the first cell of the first row, or ok=false if there
	// were no rows or the query failed.
	Scalar(ctx context.Context, sql string) (value string, ok bool)
}
