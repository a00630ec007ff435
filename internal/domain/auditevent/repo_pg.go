package auditevent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
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

func (r *repoPG) Insert(ctx context.Context, e *AuditEvent) error {
	e.ID = uuid.New()
	var detail []byte
	if e.Detail != nil {
		var err error
		detail, err = json.Marshal(e.Detail)
		if err != nil {
			return err
		}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_event (id, actor_id, actor_name, action, entity_type, entity_id, outcome, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.ActorID, e.ActorName, e.Action, e.EntityType, e.EntityID, e.Outcome, detail)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*AuditEvent, int, error) {
	query := `SELECT id, actor_id, actor_name, action, entity_type, entity_id, outcome, detail, recorded_at
		FROM audit_event WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM audit_event WHERE 1=1`
	var args []interface{}
	idx := 1

	for param, col := range map[string]string{
		"actor":   "actor_id",
		"action":  "action",
		"entity":  "entity_id",
		"outcome": "outcome",
	} {
		if p, ok := params[param]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY recorded_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var events []*AuditEvent
	for rows.Next() {
		var (
			e      AuditEvent
			detail []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.EntityType,
			&e.EntityID, &e.Outcome, &detail, &e.RecordedAt); err != nil {
			return nil, 0, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &e.Detail); err != nil {
				return nil, 0, err
			}
		}
		events = append(events, &e)
	}
	return events, total, rows.Err()
}
