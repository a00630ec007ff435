package auditevent

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent maps to the audit_event table. Detail is stored as jsonb.
type AuditEvent struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	ActorID    string                 `db:"actor_id" json:"actor_id"`
	ActorName  string                 `db:"actor_name" json:"actor_name"`
	Action     string                 `db:"action" json:"action"`
	EntityType string                 `db:"entity_type" json:"entity_type"`
	EntityID   string                 `db:"entity_id" json:"entity_id"`
	Outcome    string                 `db:"outcome" json:"outcome"`
	Detail     map[string]interface{} `db:"detail" json:"detail,omitempty"`
	RecordedAt time.Time              `db:"recorded_at" json:"recorded_at"`
}
