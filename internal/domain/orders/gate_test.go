package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// twoDeptOrder composes one request with one item in each of two
// departments and returns the request plus both items keyed by
// department.
func twoDeptOrder(t *testing.T, f *fixture) (tr *TestRequest, deptX, deptY uuid.UUID, itemX, itemY *TestRequestItem) {
	t.Helper()
	deptX = uuid.New()
	deptY = uuid.New()
	hx := f.catalog.add("Hemoglobin", 15, deptX, false)
	cy := f.catalog.add("Creatinine", 25, deptY, false)
	patientID := f.patients.add()

	tr, err := f.svc.CreateOrder(elevatedCtx(), patientID, []uuid.UUID{hx.ID, cy.ID}, "")
	if err != nil {
		t.Fatal(err)
	}
	items, _ := f.items.GetByRequest(context.Background(), tr.ID)
	for _, it := range items {
		switch it.TestCatalogID {
		case hx.ID:
			itemX = it
		case cy.ID:
			itemY = it
		}
	}
	if itemX == nil || itemY == nil {
		t.Fatal("expected one item per department")
	}
	return tr, deptX, deptY, itemX, itemY
}

func TestSaveResults_CrossDepartmentFailsWholesale(t *testing.T) {
	f := newFixture()
	tr, deptX, _, itemX, itemY := twoDeptOrder(t, f)

	// A department-X caller naming a department-Y item fails entirely,
	// including the co-batched in-scope item.
	err := f.svc.SaveResults(deptCtx(deptX, false), tr.ID, []ResultInput{
		{ItemID: itemX.ID, Value: "13.5"},
		{ItemID: itemY.ID, Value: "1.1"},
	})
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	items, _ := f.items.GetByRequest(context.Background(), tr.ID)
	for _, it := range items {
		if it.ResultValue != nil || it.Status != ItemPending {
			t.Errorf("no item may be written on a wholesale rejection")
		}
	}
}

func TestSaveResults_NoDepartmentDenied(t *testing.T) {
	f := newFixture()
	tr, _, _, itemX, _ := twoDeptOrder(t, f)

	err := f.svc.SaveResults(noDeptCtx(), tr.ID, []ResultInput{{ItemID: itemX.ID, Value: "13.5"}})
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Errorf("expected outright denial for caller with no department, got %v", err)
	}
}

func TestSaveResults_ElevatedBypassesScoping(t *testing.T) {
	f := newFixture()
	tr, _, _, itemX, itemY := twoDeptOrder(t, f)

	err := f.svc.SaveResults(elevatedCtx(), tr.ID, []ResultInput{
		{ItemID: itemX.ID, Value: "13.5"},
		{ItemID: itemY.ID, Value: "1.1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, _ := f.items.GetByRequest(context.Background(), tr.ID)
	for _, it := range items {
		if it.Status != ItemCompleted {
			t.Errorf("expected all items Completed, got %s", it.Status)
		}
	}
}

func TestSaveResults_AutoCompletesHeader(t *testing.T) {
	f := newFixture()
	tr, _, _, itemX, itemY := twoDeptOrder(t, f)

	err := f.svc.SaveResults(elevatedCtx(), tr.ID, []ResultInput{
		{ItemID: itemX.ID, Value: "13.5"},
		{ItemID: itemY.ID, Value: "1.1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := f.requests.GetByID(context.Background(), tr.ID)
	if got.Status != StatusCompleted {
		t.Errorf("saving every result must drive the header to Completed, got %s", got.Status)
	}
}

func TestSaveResults_PartialBatchLeavesHeader(t *testing.T) {
	f := newFixture()
	tr, deptX, _, itemX, _ := twoDeptOrder(t, f)

	err := f.svc.SaveResults(deptCtx(deptX, false), tr.ID, []ResultInput{{ItemID: itemX.ID, Value: "13.5"}})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := f.requests.GetByID(context.Background(), tr.ID)
	if got.Status != StatusPending {
		t.Errorf("header must not complete while an item is outstanding, got %s", got.Status)
	}
}

func TestSaveResults_UnknownItem(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)

	err := f.svc.SaveResults(elevatedCtx(), tr.ID, []ResultInput{{ItemID: uuid.New(), Value: "1"}})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestGetResultEntryView_FiltersToDepartment(t *testing.T) {
	f := newFixture()
	tr, deptX, _, itemX, _ := twoDeptOrder(t, f)

	view, err := f.svc.GetResultEntryView(deptCtx(deptX, false), tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 1 || view.Items[0].ID != itemX.ID {
		t.Errorf("expected only the caller's department item in the view")
	}
}

func TestGetResultEntryView_ElevatedSeesAll(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)

	view, err := f.svc.GetResultEntryView(elevatedCtx(), tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Items) != 2 {
		t.Errorf("expected both items for an elevated caller, got %d", len(view.Items))
	}
}

func TestGetResultEntryView_NoDepartmentDenied(t *testing.T) {
	f := newFixture()
	tr, _, _, _, _ := twoDeptOrder(t, f)

	_, err := f.svc.GetResultEntryView(noDeptCtx(), tr.ID)
	var authz *AuthorizationError
	if !errors.As(err, &authz) {
		t.Errorf("expected denial, not an empty view, got %v", err)
	}
}

func TestAutoComplete_ConflictOnStaleVersion(t *testing.T) {
	f := newFixture()
	tr, _, _, itemX, itemY := twoDeptOrder(t, f)

	// Another writer bumps the header version between read and write.
	f.requests.raceOnce = true

	err := f.svc.SaveResults(elevatedCtx(), tr.ID, []ResultInput{
		{ItemID: itemX.ID, Value: "13.5"},
		{ItemID: itemY.ID, Value: "1.1"},
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError on a stale header version, got %v", err)
	}
}
