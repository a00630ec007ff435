package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queryer is the subset of pgx query methods shared by *pgxpool.Pool and
// pgx.Tx. Repositories run against a Queryer so the same code works inside
// and outside a transaction.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type contextKey string

const txKey contextKey = "db_tx"

// QueryerFromContext returns the transaction carried by ctx, or nil when the
// caller is not inside RunInTx.
func QueryerFromContext(ctx context.Context) Queryer {
	q, _ := ctx.Value(txKey).(Queryer)
	return q
}

// TxRunner executes a function inside a store transaction. The transaction is
// made available to repositories through the context; any error from fn rolls
// the whole transaction back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type poolTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner returns a TxRunner backed by the connection pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &poolTxRunner{pool: pool}
}

func (r *poolTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, Queryer(tx))); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
