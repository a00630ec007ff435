package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/platform/auth"
	"github.com/lims/lims/internal/platform/db"
)

// Service owns the order lifecycle: composition, result capture,
// verification, and header transitions.
type Service struct {
	requests RequestRepository
	items    ItemRepository
	catalog  CatalogSource
	patients PatientSource
	resolver RangeResolver
	audit    AuditSink
	invoices InvoiceSink
	tx       db.TxRunner
}

func NewService(
	requests RequestRepository,
	items ItemRepository,
	catalog CatalogSource,
	patients PatientSource,
	resolver RangeResolver,
	audit AuditSink,
	invoices InvoiceSink,
	tx db.TxRunner,
) *Service {
	return &Service{
		requests: requests,
		items:    items,
		catalog:  catalog,
		patients: patients,
		resolver: resolver,
		audit:    audit,
		invoices: invoices,
		tx:       tx,
	}
}

// resolveEntries loads the catalog entries for the requested ids and
// fails on any unknown id before a single row is written.
func (s *Service) resolveEntries(ctx context.Context, catalogIDs []uuid.UUID) ([]*CatalogEntry, error) {
	unique := make([]uuid.UUID, 0, len(catalogIDs))
	seen := make(map[uuid.UUID]struct{}, len(catalogIDs))
	for _, id := range catalogIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	entries, err := s.catalog.Entries(ctx, unique)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	ordered := make([]*CatalogEntry, 0, len(catalogIDs))
	for _, id := range catalogIDs {
		e, ok := byID[id]
		if !ok {
			return nil, &NotFoundError{Resource: "catalog item", ID: id.String()}
		}
		ordered = append(ordered, e)
	}
	return ordered, nil
}

// insertItems writes one Pending line-item per entry and, for panels, one
// Pending child per member linked to the panel's own item id.
func (s *Service) insertItems(ctx context.Context, requestID uuid.UUID, entries []*CatalogEntry) error {
	for _, e := range entries {
		parent := &TestRequestItem{
			ID:            uuid.New(),
			TestRequestID: requestID,
			TestCatalogID: e.ID,
			Status:        ItemPending,
		}
		if err := s.items.Insert(ctx, parent); err != nil {
			return err
		}
		if !e.IsPanel {
			continue
		}
		members, err := s.catalog.PanelMembers(ctx, e.ID)
		if err != nil {
			return err
		}
		for _, m := range members {
			parentID := parent.ID
			child := &TestRequestItem{
				ID:            uuid.New(),
				TestRequestID: requestID,
				TestCatalogID: m.ID,
				ParentID:      &parentID,
				Status:        ItemPending,
			}
			if err := s.items.Insert(ctx, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// topLevelPrice sums the requested entries' prices. Panel children add
// no separate cost.
func topLevelPrice(entries []*CatalogEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Price
	}
	return sum
}

// CreateOrder composes a new request: header, line-items with one level
// of panel expansion, and the invoice row, in one transaction.
func (s *Service) CreateOrder(ctx context.Context, patientID uuid.UUID, catalogIDs []uuid.UUID, priority string) (*TestRequest, error) {
	if len(catalogIDs) == 0 {
		return nil, &ValidationError{Msg: "at least one catalog item is required"}
	}
	if _, err := s.patients.Subject(ctx, patientID); err != nil {
		return nil, &NotFoundError{Resource: "patient", ID: patientID.String()}
	}
	entries, err := s.resolveEntries(ctx, catalogIDs)
	if err != nil {
		return nil, err
	}

	tr := &TestRequest{
		PatientID:     patientID,
		Status:        StatusPending,
		PaymentStatus: "Unpaid",
		PaymentAmount: topLevelPrice(entries),
		Priority:      NormalizePriority(priority),
		CreatedBy:     callerID(ctx),
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Create(ctx, tr); err != nil {
			return err
		}
		if err := s.insertItems(ctx, tr.ID, entries); err != nil {
			return err
		}
		return s.invoices.CreateInvoice(ctx, tr.ID, tr.PaymentAmount)
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{
		Action: "order.create", EntityType: "test_request", EntityID: tr.ID.String(),
		Outcome: OutcomeSuccess,
		Detail:  map[string]interface{}{"patient_id": patientID.String(), "amount": tr.PaymentAmount},
	})
	return tr, nil
}

// EditOrder replaces the item set and re-prices the request. Allowed only
// while the header is in an editable state.
func (s *Service) EditOrder(ctx context.Context, requestID uuid.UUID, catalogIDs []uuid.UUID, priority string) (*TestRequest, error) {
	if len(catalogIDs) == 0 {
		return nil, &ValidationError{Msg: "at least one catalog item is required"}
	}
	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !Editable(tr.Status) {
		return nil, &LockedStateError{RequestID: requestID, Status: tr.Status}
	}
	entries, err := s.resolveEntries(ctx, catalogIDs)
	if err != nil {
		return nil, err
	}

	amount := topLevelPrice(entries)
	normalized := NormalizePriority(priority)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.items.DeleteByRequest(ctx, requestID); err != nil {
			return err
		}
		if err := s.insertItems(ctx, requestID, entries); err != nil {
			return err
		}
		if err := s.requests.UpdatePricing(ctx, requestID, amount, normalized); err != nil {
			return err
		}
		return s.invoices.UpdateInvoiceAmount(ctx, requestID, amount)
	})
	if err != nil {
		return nil, err
	}
	tr.PaymentAmount = amount
	tr.Priority = normalized
	s.audit.Record(ctx, AuditEntry{
		Action: "order.edit", EntityType: "test_request", EntityID: requestID.String(),
		Outcome: OutcomeSuccess,
		Detail:  map[string]interface{}{"amount": amount},
	})
	return tr, nil
}

// DeleteOrder removes the header, its items, and its invoice. Allowed
// only while the header is in an editable state.
func (s *Service) DeleteOrder(ctx context.Context, requestID uuid.UUID) error {
	tr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if !Editable(tr.Status) {
		return &LockedStateError{RequestID: requestID, Status: tr.Status}
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.items.DeleteByRequest(ctx, requestID); err != nil {
			return err
		}
		if err := s.invoices.DeleteInvoice(ctx, requestID); err != nil {
			return err
		}
		return s.requests.Delete(ctx, requestID)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{
		Action: "order.delete", EntityType: "test_request", EntityID: requestID.String(),
		Outcome: OutcomeSuccess,
	})
	return nil
}

// SearchOrders lists request headers.
func (s *Service) SearchOrders(ctx context.Context, params map[string]string, limit, offset int) ([]*TestRequest, int, error) {
	return s.requests.Search(ctx, params, limit, offset)
}

func callerID(ctx context.Context) string {
	if id := auth.IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return ""
}
