package repository

import (
    "context"
    "database/sql"
    "fmt"
)

// WithTx runs fn inside a transaction.  sql.Tx pins one pooled connection for
// the unit of work, so multi-statement writes are never interleaved with
// other requests' statements.  The transaction commits when fn returns nil
// and rolls back on error or panic; every exit path releases the connection.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
    tx, err := db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    defer func() {
        if p := recover(); p != nil {
            _ = tx.Rollback()
            panic(p)
        }
        if err != nil {
            _ = tx.Rollback()
            return
        }
        err = tx.Commit()
    }()
    err = fn(tx)
    return err
}
