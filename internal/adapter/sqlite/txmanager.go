package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// TxManager manages database transactions using the context pattern.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx executes fn within a transaction.
// A RunInTx nested inside another joins the outer transaction: the store has a
// single connection, so a second BeginTx would wait on itself.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return InTx(ctx, m.db, fn)
}

// InTx runs fn in the transaction already carried by ctx, or in a new one.
// On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
func InTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(fmt.Errorf("begin transaction: %w", err))
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapError(fmt.Errorf("commit transaction: %w", err))
	}

	return nil
}
