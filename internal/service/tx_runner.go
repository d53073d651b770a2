package service

import (
	"context"
	"database/sql"

	"github.com/feedscribe/feedscribe/internal/store"
)

// TxRunner runs a function within a database transaction. It exists so
// services can be tested with fake stores that have no real database behind
// them.
type TxRunner interface {
	// RunInTransaction executes fn inside a transaction, committing on nil
	// return and rolling back otherwise.
	RunInTransaction(ctx context.Context, fn store.TxFn) error
}

// sqlTxRunner is the production TxRunner backed by a *sql.DB.
type sqlTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner creates a TxRunner that opens transactions on db.
func NewSQLTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return store.RunInTransaction(ctx, r.db, fn)
}
