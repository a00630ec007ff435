package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lims/lims/internal/platform/db"
)

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

const itemCols = `id, name, price, department_id, sample_type, unit, is_panel, is_active, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Price, &it.DepartmentID, &it.SampleType,
		&it.Unit, &it.IsPanel, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	return &it, err
}

func (r *itemRepoPG) Create(ctx context.Context, item *Item) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO catalog_item (id, name, price, department_id, sample_type, unit, is_panel, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.Name, item.Price, item.DepartmentID, item.SampleType,
		item.Unit, item.IsPanel, item.Active)
	return err
}

func (r *itemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM catalog_item WHERE id = $1`, id))
}

func (r *itemRepoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+itemCols+` FROM catalog_item WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemRepoPG) Update(ctx context.Context, item *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE catalog_item SET name=$2, price=$3, department_id=$4, sample_type=$5,
			unit=$6, is_panel=$7, is_active=$8, updated_at=NOW()
		WHERE id = $1`,
		item.ID, item.Name, item.Price, item.DepartmentID, item.SampleType,
		item.Unit, item.IsPanel, item.Active)
	return err
}

func (r *itemRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error) {
	query := `SELECT ` + itemCols + ` FROM catalog_item WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM catalog_item WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["department"]; ok {
		query += fmt.Sprintf(` AND department_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND department_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["active"]; ok {
		query += fmt.Sprintf(` AND is_active = $%d`, idx)
		countQuery += fmt.Sprintf(` AND is_active = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}
	if p, ok := params["panel"]; ok {
		query += fmt.Sprintf(` AND is_panel = $%d`, idx)
		countQuery += fmt.Sprintf(` AND is_panel = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

// =========== Panel Repository ===========

type panelRepoPG struct{ pool *pgxpool.Pool }

func NewPanelRepoPG(pool *pgxpool.Pool) PanelRepository {
	return &panelRepoPG{pool: pool}
}

func (r *panelRepoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

func (r *panelRepoPG) SetMembers(ctx context.Context, panelID uuid.UUID, memberIDs []uuid.UUID) error {
	if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM panel_membership WHERE panel_id = $1`, panelID); err != nil {
		return err
	}
	for _, memberID := range memberIDs {
		if _, err := r.conn(ctx).Exec(ctx,
			`INSERT INTO panel_membership (panel_id, member_id) VALUES ($1, $2)`, panelID, memberID); err != nil {
			return err
		}
	}
	return nil
}

func (r *panelRepoPG) Members(ctx context.Context, panelID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT member_id FROM panel_membership WHERE panel_id = $1 ORDER BY member_id`, panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// =========== Department Repository ===========

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO department (id, name) VALUES ($1, $2)`, d.ID, d.Name)
	return err
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var d Department
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, created_at FROM department WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.CreatedAt)
	return &d, err
}

func (r *departmentRepoPG) List(ctx context.Context) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name, created_at FROM department ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var departments []*Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, &d)
	}
	return departments, rows.Err()
}
