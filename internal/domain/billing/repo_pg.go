package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lims/lims/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const invoiceCols = `id, test_request_id, amount, status, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.TestRequestID, &inv.Amount, &inv.Status,
		&inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	return &inv, err
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, test_request_id, amount, status)
		VALUES ($1,$2,$3,$4)`,
		inv.ID, inv.TestRequestID, inv.Amount, inv.Status)
	return err
}

func (r *repoPG) GetByRequest(ctx context.Context, requestID uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE test_request_id = $1`, requestID))
}

func (r *repoPG) UpdateAmount(ctx context.Context, requestID uuid.UUID, amount float64) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET amount=$2, updated_at=NOW() WHERE test_request_id = $1`,
		requestID, amount)
	return err
}

func (r *repoPG) SetStatus(ctx context.Context, requestID uuid.UUID, status string) error {
	paidAt := "NULL"
	if status == StatusPaid {
		paidAt = "NOW()"
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status=$2, paid_at=`+paidAt+`, updated_at=NOW() WHERE test_request_id = $1`,
		requestID, status)
	return err
}

func (r *repoPG) DeleteByRequest(ctx context.Context, requestID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM invoice WHERE test_request_id = $1`, requestID)
	return err
}
