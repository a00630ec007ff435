package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lims/lims/internal/platform/db"
)

// =========== Request Repository ===========

type requestRepoPG struct{ pool *pgxpool.Pool }

func NewRequestRepoPG(pool *pgxpool.Pool) RequestRepository {
	return &requestRepoPG{pool: pool}
}

func (r *requestRepoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const requestCols = `id, patient_id, status, payment_status, payment_amount, priority,
	created_by, version, created_at, updated_at`

func scanRequest(row pgx.Row) (*TestRequest, error) {
	var tr TestRequest
	err := row.Scan(&tr.ID, &tr.PatientID, &tr.Status, &tr.PaymentStatus, &tr.PaymentAmount,
		&tr.Priority, &tr.CreatedBy, &tr.Version, &tr.CreatedAt, &tr.UpdatedAt)
	return &tr, err
}

func (r *requestRepoPG) Create(ctx context.Context, tr *TestRequest) error {
	tr.ID = uuid.New()
	tr.Version = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO test_request (id, patient_id, status, payment_status, payment_amount, priority, created_by, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		tr.ID, tr.PatientID, tr.Status, tr.PaymentStatus, tr.PaymentAmount, tr.Priority, tr.CreatedBy, tr.Version)
	return err
}

func (r *requestRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestRequest, error) {
	tr, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM test_request WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, &NotFoundError{Resource: "test request", ID: id.String()}
	}
	return tr, err
}

func (r *requestRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, version int, status Status) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_request SET status=$3, version=version+1, updated_at=NOW()
		WHERE id = $1 AND version = $2`,
		id, version, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &ConflictError{RequestID: id}
	}
	return nil
}

func (r *requestRepoPG) UpdatePricing(ctx context.Context, id uuid.UUID, amount float64, priority Priority) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_request SET payment_amount=$2, priority=$3, updated_at=NOW() WHERE id = $1`,
		id, amount, priority)
	return err
}

func (r *requestRepoPG) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_request SET payment_status=$2, updated_at=NOW() WHERE id = $1`,
		id, paymentStatus)
	return err
}

func (r *requestRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_request WHERE id = $1`, id)
	return err
}

func (r *requestRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TestRequest, int, error) {
	query := `SELECT ` + requestCols + ` FROM test_request WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM test_request WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["patient"]; ok {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["priority"]; ok {
		query += fmt.Sprintf(` AND priority = $%d`, idx)
		countQuery += fmt.Sprintf(` AND priority = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var requests []*TestRequest
	for rows.Next() {
		tr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, tr)
	}
	return requests, total, rows.Err()
}

// =========== Item Repository ===========

type itemRepoPG struct{ pool *pgxpool.Pool }

func NewItemRepoPG(pool *pgxpool.Pool) ItemRepository {
	return &itemRepoPG{pool: pool}
}

func (r *itemRepoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

const itemCols = `id, test_request_id, test_catalog_id, parent_id, result_value, status,
	verified_by, verified_by_name, verified_at, created_at`

func scanItem(row pgx.Row) (*TestRequestItem, error) {
	var it TestRequestItem
	err := row.Scan(&it.ID, &it.TestRequestID, &it.TestCatalogID, &it.ParentID, &it.ResultValue,
		&it.Status, &it.VerifiedBy, &it.VerifiedByName, &it.VerifiedAt, &it.CreatedAt)
	return &it, err
}

func (r *itemRepoPG) Insert(ctx context.Context, item *TestRequestItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO test_request_item (id, test_request_id, test_catalog_id, parent_id, status)
		VALUES ($1,$2,$3,$4,$5)`,
		item.ID, item.TestRequestID, item.TestCatalogID, item.ParentID, item.Status)
	return err
}

func (r *itemRepoPG) GetByRequest(ctx context.Context, requestID uuid.UUID) ([]*TestRequestItem, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM test_request_item WHERE test_request_id = $1 ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TestRequestItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemRepoPG) SaveResult(ctx context.Context, itemID uuid.UUID, value string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_request_item SET result_value=$2, status=$3 WHERE id = $1`,
		itemID, value, ItemCompleted)
	return err
}

func (r *itemRepoPG) SetVerification(ctx context.Context, itemID uuid.UUID, status ItemStatus, verifierID, verifierName string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_request_item SET status=$2, verified_by=$3, verified_by_name=$4, verified_at=NOW()
		WHERE id = $1`,
		itemID, status, verifierID, verifierName)
	return err
}

func (r *itemRepoPG) DeleteByRequest(ctx context.Context, requestID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_request_item WHERE test_request_id = $1`, requestID)
	return err
}
