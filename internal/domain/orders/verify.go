package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/platform/auth"
)

// Verification actions.
const (
	ActionVerify = "verify"
	ActionReject = "reject"
)

// verificationTarget maps an action onto the item status it applies and
// the header status the request reaches once every item agrees.
var verificationTarget = map[string]struct {
	item   ItemStatus
	header Status
}{
	ActionVerify: {item: ItemVerified, header: StatusVerified},
	ActionReject: {item: ItemCancelled, header: StatusCancelled},
}

// VerifyOrReject applies a verification action to the items the caller
// is eligible for. Elevated callers touch every item; senior staff touch
// their own department's items. The header moves to the action's target
// status only once every item in the request shares it exactly.
func (s *Service) VerifyOrReject(ctx context.Context, requestID uuid.UUID, action string) (err error) {
	defer func() {
		s.audit.Record(ctx, auditOutcome("items."+action, requestID, err, nil))
	}()

	target, ok := verificationTarget[action]
	if !ok {
		return &ValidationError{Msg: "unrecognized action " + action}
	}
	id := auth.IdentityFromContext(ctx)
	if id == nil {
		return &AuthorizationError{Msg: "authentication required"}
	}
	if !id.Caps.Elevated && !id.Caps.SeniorStaff {
		return &AuthorizationError{Msg: "verification requires senior staff"}
	}
	if !id.Caps.Elevated && id.Caps.Department == nil {
		return &AuthorizationError{Msg: "caller has no department assignment"}
	}

	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	items, err := s.items.GetByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	entries, err := s.entriesForItems(ctx, items)
	if err != nil {
		return err
	}

	var eligible []*TestRequestItem
	for _, it := range items {
		entry, found := entries[it.TestCatalogID]
		if !found {
			continue
		}
		if id.Caps.Elevated || entry.DepartmentID == *id.Caps.Department {
			eligible = append(eligible, it)
		}
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, it := range eligible {
			if err := s.items.SetVerification(ctx, it.ID, target.item, id.UserID, id.Name); err != nil {
				return err
			}
			it.Status = target.item
		}
		// Other departments may still be pending; reconcile only when
		// every item agrees on the target.
		for _, it := range items {
			if it.Status != target.item {
				return nil
			}
		}
		if tr.Status == target.header {
			return nil
		}
		if err := s.requests.UpdateStatus(ctx, tr.ID, tr.Version, target.header); err != nil {
			return err
		}
		tr.Status = target.header
		tr.Version++
		return nil
	})
}

// TransitionStatus moves the header along the lifecycle chain. Moves to
// Verified or Released are restricted to elevated or senior/managerial
// callers; other targets are open through this path.
func (s *Service) TransitionStatus(ctx context.Context, requestID uuid.UUID, next Status, previewConfirmed bool) (err error) {
	var from Status
	defer func() {
		s.audit.Record(ctx, auditOutcome("status.transition", requestID, err, map[string]interface{}{
			"from": string(from), "to": string(next), "confirmed": previewConfirmed,
		}))
	}()

	if next == StatusVerified || next == StatusReleased {
		id := auth.IdentityFromContext(ctx)
		if id == nil || (!id.Caps.Elevated && !id.Caps.Managerial) {
			return &AuthorizationError{Msg: "transition to " + string(next) + " requires a managerial role"}
		}
	}

	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	from = tr.Status
	if err = ValidateTransition(requestID, tr.Status, next, previewConfirmed); err != nil {
		return err
	}
	return s.requests.UpdateStatus(ctx, requestID, tr.Version, next)
}

// auditOutcome builds an audit entry for an action that may have failed.
func auditOutcome(action string, requestID uuid.UUID, err error, detail map[string]interface{}) AuditEntry {
	entry := AuditEntry{
		Action:     action,
		EntityType: "test_request",
		EntityID:   requestID.String(),
		Outcome:    OutcomeSuccess,
		Detail:     detail,
	}
	if err != nil {
		entry.Outcome = OutcomeFailure
		if entry.Detail == nil {
			entry.Detail = map[string]interface{}{}
		}
		entry.Detail["error"] = err.Error()
	}
	return entry
}
