package orders

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports missing or malformed input, raised before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an unknown request, patient, or item.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IllegalTransitionError reports a transition outside the allowed edge
// table, or a print attempted without preview confirmation.
type IllegalTransitionError struct {
	RequestID uuid.UUID
	From      Status
	To        Status
	Reason    string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("request %s: transition %s -> %s: %s", e.RequestID, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("request %s: transition %s -> %s is not allowed", e.RequestID, e.From, e.To)
}

// LockedStateError reports an edit or delete attempted after the request
// left its editable states.
type LockedStateError struct {
	RequestID uuid.UUID
	Status    Status
}

func (e *LockedStateError) Error() string {
	return fmt.Sprintf("request %s is locked in status %s", e.RequestID, e.Status)
}

// AuthorizationError reports a department mismatch, a missing department,
// or an insufficient role, always raised before touching any row.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// ConflictError reports a concurrent transition detected by the version
// check on the request header.
type ConflictError struct {
	RequestID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("request %s was modified concurrently", e.RequestID)
}
