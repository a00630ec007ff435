package reference

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

const rangeCols = `id, analyte_id, range_type, gender, age_min, age_max,
	min_value, max_value, qualitative_value, symbol_operator, note, created_at`

func scanRange(row pgx.Row) (*NormalRange, error) {
	var nr NormalRange
	err := row.Scan(&nr.ID, &nr.AnalyteID, &nr.RangeType, &nr.Gender, &nr.AgeMin, &nr.AgeMax,
		&nr.MinValue, &nr.MaxValue, &nr.QualitativeValue, &nr.SymbolOperator, &nr.Note, &nr.CreatedAt)
	return &nr, err
}

func (r *repoPG) Create(ctx context.Context, nr *NormalRange) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO normal_range (analyte_id, range_type, gender, age_min, age_max,
			min_value, max_value, qualitative_value, symbol_operator, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at`,
		nr.AnalyteID, nr.RangeType, nr.Gender, nr.AgeMin, nr.AgeMax,
		nr.MinValue, nr.MaxValue, nr.QualitativeValue, nr.SymbolOperator, nr.Note).
		Scan(&nr.ID, &nr.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*NormalRange, error) {
	return scanRange(r.conn(ctx).QueryRow(ctx, `SELECT `+rangeCols+` FROM normal_range WHERE id = $1`, id))
}

func (r *repoPG) GetByAnalyte(ctx context.Context, analyteID uuid.UUID) ([]*NormalRange, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+rangeCols+` FROM normal_range WHERE analyte_id = $1 ORDER BY id`, analyteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ranges []*NormalRange
	for rows.Next() {
		nr, err := scanRange(rows)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, nr)
	}
	return ranges, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, nr *NormalRange) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE normal_range SET range_type=$2, gender=$3, age_min=$4, age_max=$5,
			min_value=$6, max_value=$7, qualitative_value=$8, symbol_operator=$9, note=$10
		WHERE id = $1`,
		nr.ID, nr.RangeType, nr.Gender, nr.AgeMin, nr.AgeMax,
		nr.MinValue, nr.MaxValue, nr.QualitativeValue, nr.SymbolOperator, nr.Note)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM normal_range WHERE id = $1`, id)
	return err
}
