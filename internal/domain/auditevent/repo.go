package auditevent

import "context"

// Repository is the audit-event persistence contract. Events are
// append-only.
type Repository interface {
	Insert(ctx context.Context, e *AuditEvent) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*AuditEvent, int, error)
}
