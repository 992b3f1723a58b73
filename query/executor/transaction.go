package executor

import (
	"database/sql"
)

// NewTxExecutor creates an executor that runs every query inside tx. The
// caller owns the transaction; commit and rollback stay with the caller.
// Prepared statements cached by a tx executor belong to tx and are closed
// with it.
func NewTxExecutor(tx *sql.Tx) *DBExecutor {
	return newExecutor(tx)
}
