package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"camphub/internal/interfaces"
)

// BeginTransaction begins a new database transaction on the request context.
func BeginTransaction(ctx *gin.Context, pool interfaces.PgxPoolIface) (pgx.Tx, error) {
	LogMessageWithFields(ctx, "debug", "Beginning transaction...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error beginning transaction", err)
		return nil, err
	}

	return tx, nil
}

// RollbackTransaction rolls the transaction back. It is safe to defer after
// a successful commit; the already-closed case is ignored.
func RollbackTransaction(ctx *gin.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return
		}
		LogMessageWithFieldsAndError(ctx, "error", "Error rolling back transaction", err)
	}
}

// CommitTransaction attempts to commit the given transaction.
func CommitTransaction(ctx *gin.Context, tx pgx.Tx) error {
	LogMessageWithFields(ctx, "debug", "Committing transaction...")

	if err := tx.Commit(ctx); err != nil {
		LogMessageWithFieldsAndError(ctx, "error", "Error committing transaction", err)
		return err
	}

	return nil
}
