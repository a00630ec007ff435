package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/platform/auth"
)

// completedTwoDeptOrder builds a two-department order with all results in.
func completedTwoDeptOrder(t *testing.T, f *fixture) (tr *TestRequest, deptX, deptY uuid.UUID) {
	t.Helper()
	tr, deptX, deptY, itemX, itemY := twoDeptOrder(t, f)
	err := f.svc.SaveResults(elevatedCtx(), tr.ID, []ResultInput{
		{ItemID: itemX.ID, Value: "13.5"},
		{ItemID: itemY.ID, Value: "1.1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return tr, deptX, deptY
}

func TestVerify_PartialDepartmentLeavesHeader(t *testing.T) {
	f := newFixture()
	tr, deptX, _ := completedTwoDeptOrder(t, f)

	if err := f.svc.VerifyOrReject(deptCtx(deptX, true), tr.ID, ActionVerify); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := f.requests.GetByID(context.Background(), tr.ID)
	if got.Status != StatusCompleted {
		t.Errorf("header must stay unchanged while department Y is outstanding, got %s", got.Status)
	}
}

func TestVerify_AllDepartmentsReconcileHeader(t *testing.T) {
	f := newFixture()
	tr, deptX, deptY := completedTwoDeptOrder(t, f)

	if err := f.svc.VerifyOrReject(deptCtx(deptX, true), tr.ID, ActionVerify); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.VerifyOrReject(deptCtx(deptY, true), tr.ID, ActionVerify); err != nil {
		t.Fatal(err)
	}
	got, _ := f.requests.GetByID(context.Background(), tr.ID)
	if got.Status != StatusVerified {
		t.Errorf("expected header Verified once every department finished, got %s", got.Status)
	}
}

func TestVerify_ElevatedTouchesAllItems(t *testing.T) {
	f := newFixture()
	tr, _, _ := completedTwoDeptOrder(t, f)

	if err := f.svc.VerifyOrReject(elevatedCtx(), tr.ID, ActionVerify); err != nil {
		t.Fatal(err)
	}
	items, _ := f.items.GetByRequest(context.Background(), tr.ID)
	for _, it := range items {
		if it.Status != ItemVerified {
			t.Errorf("expected every item Verified, got %s", it.Status)
		}
		if it.VerifiedBy == nil || it.VerifiedAt == nil {
			t.Error("expected verifier fields recorded")
		}
	}
	got, _ := f.requests.GetByID(context.Background(), tr.ID)
	if got.Status != StatusVerified {
		t.Errorf("expected header Verified, got %s", got.Status)
	}
}

func TestReject_SetsItemsCancelled(t *testing.T) {
	f := newFixture()
	tr, _, _ := completedTwoDeptOrder(t, f)

	if err := f.svc.VerifyOrReject(elevatedCtx(), tr.ID, ActionReject); err != nil {
		t.Fatal(err)
	}
	items, _ := f.items.GetByRequest(context.Background(), tr.ID)
	for _, it := range items {
		if it.Status != ItemCancelled {
			t.Errorf("expected every item Cancelled, got %s", it.Status)
		}
	}
	got, _ := f.requests.GetByID(context.Background(), tr.ID)
	if got.Status != StatusCancelled {
		t.Errorf("expected header Cancelled, got %s", got.Status)
	}
}

func TestVerify_RequiresSeniorStaff(t *testing.T) {
	f := newFixture()
	tr, deptX, _ := completedTwoDeptOrder(t, f)

	err := f.svc.VerifyOrReject(deptCtx(deptX, false), tr.ID, ActionVerify)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Errorf("expected AuthorizationError for non-senior caller, got %v", err)
	}
}

func TestVerify_SeniorWithoutDepartmentFails(t *testing.T) {
	f := newFixture()
	tr, _, _ := completedTwoDeptOrder(t, f)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		UserID: "path-1", Name: "Pathologist",
		Caps: auth.Capabilities{SeniorStaff: true, Managerial: true},
	})
	err := f.svc.VerifyOrReject(ctx, tr.ID, ActionVerify)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Errorf("expected hard failure for senior staff without a department, got %v", err)
	}
}

func TestVerify_UnrecognizedAction(t *testing.T) {
	f := newFixture()
	tr, _, _ := completedTwoDeptOrder(t, f)

	err := f.svc.VerifyOrReject(elevatedCtx(), tr.ID, "approve")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestVerify_AuditsFailures(t *testing.T) {
	f := newFixture()
	tr, deptX, _ := completedTwoDeptOrder(t, f)

	_ = f.svc.VerifyOrReject(deptCtx(deptX, false), tr.ID, ActionVerify)
	entry := f.audit.last()
	if entry == nil || entry.Outcome != OutcomeFailure {
		t.Errorf("expected a failure-tagged audit entry, got %+v", entry)
	}
}

func TestTransitionStatus_WalksTheChain(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)
	ctx := elevatedCtx()

	steps := []Status{StatusSampleCollected, StatusSampleReceived, StatusProcessing, StatusCompleted, StatusVerified, StatusReleased}
	for _, next := range steps {
		if err := f.svc.TransitionStatus(ctx, tr.ID, next, false); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	got, _ := f.requests.GetByID(ctx, tr.ID)
	if got.Status != StatusReleased {
		t.Fatalf("expected Released, got %s", got.Status)
	}

	if err := f.svc.TransitionStatus(ctx, tr.ID, StatusPrinted, false); err == nil {
		t.Error("print without preview confirmation must fail")
	}
	if err := f.svc.TransitionStatus(ctx, tr.ID, StatusPrinted, true); err != nil {
		t.Errorf("print with confirmation must succeed, got %v", err)
	}
}

func TestTransitionStatus_IllegalSkip(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)

	err := f.svc.TransitionStatus(elevatedCtx(), tr.ID, StatusSampleReceived, false)
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Errorf("expected IllegalTransitionError, got %v", err)
	}
}

func TestTransitionStatus_ReleaseNeedsManagerialRole(t *testing.T) {
	f := newFixture()
	tr, deptX, _ := completedTwoDeptOrder(t, f)

	err := f.svc.TransitionStatus(deptCtx(deptX, false), tr.ID, StatusVerified, false)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Errorf("expected AuthorizationError for non-managerial caller, got %v", err)
	}

	// Ordinary statuses stay open through this path.
	f2 := newFixture()
	tr2, dept2, _, _, _ := twoDeptOrder(t, f2)
	if err := f2.svc.TransitionStatus(deptCtx(dept2, false), tr2.ID, StatusSampleCollected, false); err != nil {
		t.Errorf("unexpected error for unrestricted status: %v", err)
	}
}

func TestTransitionStatus_ConflictOnRace(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)
	f.requests.raceOnce = true

	err := f.svc.TransitionStatus(elevatedCtx(), tr.ID, StatusSampleCollected, false)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError, got %v", err)
	}
}

func TestTransitionStatus_AuditsOutcome(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)

	if err := f.svc.TransitionStatus(elevatedCtx(), tr.ID, StatusSampleCollected, false); err != nil {
		t.Fatal(err)
	}
	entry := f.audit.last()
	if entry == nil || entry.Action != "status.transition" || entry.Outcome != OutcomeSuccess {
		t.Fatalf("expected success transition audit, got %+v", entry)
	}
	if entry.Detail["from"] != string(StatusPending) || entry.Detail["to"] != string(StatusSampleCollected) {
		t.Errorf("expected from/to detail, got %+v", entry.Detail)
	}

	_ = f.svc.TransitionStatus(elevatedCtx(), tr.ID, StatusPrinted, false)
	entry = f.audit.last()
	if entry == nil || entry.Outcome != OutcomeFailure {
		t.Errorf("expected failure-tagged audit entry, got %+v", entry)
	}
}
