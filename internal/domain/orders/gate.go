package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/platform/auth"
)

// ResultEntryItem is one line-item as presented for result capture,
// decorated with its catalog name and the resolved reference range.
type ResultEntryItem struct {
	*TestRequestItem
	TestName     string    `json:"test_name"`
	DepartmentID uuid.UUID `json:"department_id"`
	Range        RangeInfo `json:"range"`
}

// ResultEntryView is the result-capture read model for one request,
// filtered to the caller's scope.
type ResultEntryView struct {
	Request *TestRequest       `json:"request"`
	Items   []*ResultEntryItem `json:"items"`
}

// ResultInput is one captured value.
type ResultInput struct {
	ItemID uuid.UUID `json:"item_id"`
	Value  string    `json:"value"`
}

// scope captures the caller's result-entry authority for one call.
type scope struct {
	elevated   bool
	department uuid.UUID
}

// resultScope derives the caller's scope. A caller with neither
// elevation nor a department is denied outright rather than shown an
// empty view.
func resultScope(ctx context.Context) (*scope, error) {
	id := auth.IdentityFromContext(ctx)
	if id == nil {
		return nil, &AuthorizationError{Msg: "authentication required"}
	}
	if id.Caps.Elevated {
		return &scope{elevated: true}, nil
	}
	if id.Caps.Department == nil {
		return nil, &AuthorizationError{Msg: "caller has no department assignment"}
	}
	return &scope{department: *id.Caps.Department}, nil
}

func (sc *scope) covers(departmentID uuid.UUID) bool {
	return sc.elevated || sc.department == departmentID
}

// entriesForItems loads the catalog entries behind a set of line-items,
// keyed by catalog id.
func (s *Service) entriesForItems(ctx context.Context, items []*TestRequestItem) (map[uuid.UUID]*CatalogEntry, error) {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.TestCatalogID]; !ok {
			seen[it.TestCatalogID] = struct{}{}
			ids = append(ids, it.TestCatalogID)
		}
	}
	entries, err := s.catalog.Entries(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return byID, nil
}

// GetResultEntryView returns the request's line-items visible to the
// caller, each with its freshly resolved reference range.
func (s *Service) GetResultEntryView(ctx context.Context, requestID uuid.UUID) (*ResultEntryView, error) {
	sc, err := resultScope(ctx)
	if err != nil {
		return nil, err
	}
	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	items, err := s.items.GetByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entriesForItems(ctx, items)
	if err != nil {
		return nil, err
	}
	subject, err := s.patients.Subject(ctx, tr.PatientID)
	if err != nil {
		return nil, err
	}

	view := &ResultEntryView{Request: tr}
	for _, it := range items {
		entry, ok := entries[it.TestCatalogID]
		if !ok || !sc.covers(entry.DepartmentID) {
			continue
		}
		value := ""
		if it.ResultValue != nil {
			value = *it.ResultValue
		}
		rng, err := s.resolver.ResolveFor(ctx, it.TestCatalogID, subject.Gender, subject.AgeYears, value)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, &ResultEntryItem{
			TestRequestItem: it,
			TestName:        entry.Name,
			DepartmentID:    entry.DepartmentID,
			Range:           rng,
		})
	}
	return view, nil
}

// SaveResults writes a batch of captured values. A batch naming any item
// outside the caller's scope is rejected wholesale before any write.
// Each write sets the item Completed; the auto-completion post-condition
// then runs on the header, all inside one transaction.
func (s *Service) SaveResults(ctx context.Context, requestID uuid.UUID, results []ResultInput) error {
	if len(results) == 0 {
		return &ValidationError{Msg: "at least one result is required"}
	}
	sc, err := resultScope(ctx)
	if err != nil {
		return err
	}
	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	items, err := s.items.GetByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*TestRequestItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	entries, err := s.entriesForItems(ctx, items)
	if err != nil {
		return err
	}

	// All-or-nothing scope check before the first write.
	for _, in := range results {
		it, ok := byID[in.ItemID]
		if !ok {
			return &NotFoundError{Resource: "test request item", ID: in.ItemID.String()}
		}
		entry, ok := entries[it.TestCatalogID]
		if !ok {
			return &NotFoundError{Resource: "catalog item", ID: it.TestCatalogID.String()}
		}
		if !sc.covers(entry.DepartmentID) {
			return &AuthorizationError{Msg: "item " + in.ItemID.String() + " is outside the caller's department"}
		}
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, in := range results {
			if err := s.items.SaveResult(ctx, in.ItemID, in.Value); err != nil {
				return err
			}
			byID[in.ItemID].Status = ItemCompleted
		}
		return s.autoComplete(ctx, tr, items)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{
		Action: "results.save", EntityType: "test_request", EntityID: requestID.String(),
		Outcome: OutcomeSuccess,
		Detail:  map[string]interface{}{"count": len(results)},
	})
	return nil
}

// autoComplete advances the header to Completed when every item has
// settled and the header has not yet reached Completed.
func (s *Service) autoComplete(ctx context.Context, tr *TestRequest, items []*TestRequestItem) error {
	statuses := make([]ItemStatus, len(items))
	for i, it := range items {
		statuses[i] = it.Status
	}
	if !AllItemsSettled(statuses) || !BeforeCompletion(tr.Status) {
		return nil
	}
	if err := s.requests.UpdateStatus(ctx, tr.ID, tr.Version, StatusCompleted); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{
		Action: "status.transition", EntityType: "test_request", EntityID: tr.ID.String(),
		Outcome: OutcomeSuccess,
		Detail:  map[string]interface{}{"from": string(tr.Status), "to": string(StatusCompleted), "auto": true},
	})
	tr.Status = StatusCompleted
	tr.Version++
	return nil
}
