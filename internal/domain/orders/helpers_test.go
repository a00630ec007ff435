package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lims/lims/internal/platform/auth"
)

// -- Mock Repositories and Collaborators --

type mockRequestRepo struct {
	requests map[uuid.UUID]*TestRequest
	// raceOnce simulates a concurrent writer: the next read returns the
	// current state, then the stored version advances underneath it.
	raceOnce bool
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[uuid.UUID]*TestRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, tr *TestRequest) error {
	tr.ID = uuid.New()
	tr.Version = 1
	tr.CreatedAt = time.Now()
	m.requests[tr.ID] = tr
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*TestRequest, error) {
	tr, ok := m.requests[id]
	if !ok {
		return nil, &NotFoundError{Resource: "test request", ID: id.String()}
	}
	cp := *tr
	if m.raceOnce {
		m.raceOnce = false
		tr.Version++
	}
	return &cp, nil
}

func (m *mockRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, version int, status Status) error {
	tr, ok := m.requests[id]
	if !ok || tr.Version != version {
		return &ConflictError{RequestID: id}
	}
	tr.Status = status
	tr.Version++
	return nil
}

func (m *mockRequestRepo) UpdatePricing(_ context.Context, id uuid.UUID, amount float64, priority Priority) error {
	tr, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	tr.PaymentAmount = amount
	tr.Priority = priority
	return nil
}

func (m *mockRequestRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, paymentStatus string) error {
	tr, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	tr.PaymentStatus = paymentStatus
	return nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.requests, id)
	return nil
}

func (m *mockRequestRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*TestRequest, int, error) {
	var result []*TestRequest
	for _, tr := range m.requests {
		result = append(result, tr)
	}
	return result, len(result), nil
}

type mockItemRepo struct {
	items map[uuid.UUID]*TestRequestItem
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[uuid.UUID]*TestRequestItem)}
}

func (m *mockItemRepo) Insert(_ context.Context, item *TestRequestItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockItemRepo) GetByRequest(_ context.Context, requestID uuid.UUID) ([]*TestRequestItem, error) {
	var result []*TestRequestItem
	for _, it := range m.items {
		if it.TestRequestID == requestID {
			cp := *it
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *mockItemRepo) SaveResult(_ context.Context, itemID uuid.UUID, value string) error {
	it, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("not found")
	}
	it.ResultValue = &value
	it.Status = ItemCompleted
	return nil
}

func (m *mockItemRepo) SetVerification(_ context.Context, itemID uuid.UUID, status ItemStatus, verifierID, verifierName string) error {
	it, ok := m.items[itemID]
	if !ok {
		return fmt.Errorf("not found")
	}
	it.Status = status
	it.VerifiedBy = &verifierID
	it.VerifiedByName = &verifierName
	now := time.Now()
	it.VerifiedAt = &now
	return nil
}

func (m *mockItemRepo) DeleteByRequest(_ context.Context, requestID uuid.UUID) error {
	for id, it := range m.items {
		if it.TestRequestID == requestID {
			delete(m.items, id)
		}
	}
	return nil
}

type mockCatalog struct {
	entries map[uuid.UUID]*CatalogEntry
	members map[uuid.UUID][]uuid.UUID
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		entries: make(map[uuid.UUID]*CatalogEntry),
		members: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *mockCatalog) add(name string, price float64, dept uuid.UUID, isPanel bool) *CatalogEntry {
	e := &CatalogEntry{ID: uuid.New(), Name: name, Price: price, DepartmentID: dept, IsPanel: isPanel}
	m.entries[e.ID] = e
	return e
}

func (m *mockCatalog) Entries(_ context.Context, ids []uuid.UUID) ([]*CatalogEntry, error) {
	var result []*CatalogEntry
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockCatalog) PanelMembers(_ context.Context, panelID uuid.UUID) ([]*CatalogEntry, error) {
	var result []*CatalogEntry
	for _, id := range m.members[panelID] {
		if e, ok := m.entries[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

type mockPatients struct {
	subjects map[uuid.UUID]*Subject
}

func newMockPatients() *mockPatients {
	return &mockPatients{subjects: make(map[uuid.UUID]*Subject)}
}

func (m *mockPatients) add() uuid.UUID {
	id := uuid.New()
	gender := "female"
	age := 34
	m.subjects[id] = &Subject{ID: id, Name: "Test Subject", Gender: &gender, AgeYears: &age}
	return id
}

func (m *mockPatients) Subject(_ context.Context, id uuid.UUID) (*Subject, error) {
	s, ok := m.subjects[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return s, nil
}

type mockResolver struct {
	byAnalyte map[uuid.UUID]RangeInfo
}

func (m *mockResolver) ResolveFor(_ context.Context, analyteID uuid.UUID, _ *string, _ *int, _ string) (RangeInfo, error) {
	if m.byAnalyte == nil {
		return RangeInfo{}, nil
	}
	return m.byAnalyte[analyteID], nil
}

type mockAudit struct {
	entries []AuditEntry
}

func (m *mockAudit) Record(_ context.Context, entry AuditEntry) {
	m.entries = append(m.entries, entry)
}

func (m *mockAudit) last() *AuditEntry {
	if len(m.entries) == 0 {
		return nil
	}
	return &m.entries[len(m.entries)-1]
}

type mockInvoices struct {
	amounts map[uuid.UUID]float64
}

func newMockInvoices() *mockInvoices {
	return &mockInvoices{amounts: make(map[uuid.UUID]float64)}
}

func (m *mockInvoices) CreateInvoice(_ context.Context, requestID uuid.UUID, amount float64) error {
	m.amounts[requestID] = amount
	return nil
}

func (m *mockInvoices) UpdateInvoiceAmount(_ context.Context, requestID uuid.UUID, amount float64) error {
	m.amounts[requestID] = amount
	return nil
}

func (m *mockInvoices) DeleteInvoice(_ context.Context, requestID uuid.UUID) error {
	delete(m.amounts, requestID)
	return nil
}

// passthroughTx runs the function without a store transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// -- Fixture --

type fixture struct {
	svc      *Service
	requests *mockRequestRepo
	items    *mockItemRepo
	catalog  *mockCatalog
	patients *mockPatients
	audit    *mockAudit
	invoices *mockInvoices
}

func newFixture() *fixture {
	f := &fixture{
		requests: newMockRequestRepo(),
		items:    newMockItemRepo(),
		catalog:  newMockCatalog(),
		patients: newMockPatients(),
		audit:    &mockAudit{},
		invoices: newMockInvoices(),
	}
	f.svc = NewService(f.requests, f.items, f.catalog, f.patients,
		&mockResolver{}, f.audit, f.invoices, passthroughTx{})
	return f
}

// -- Identity helpers --

func elevatedCtx() context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		UserID: "admin-1", Name: "Site Admin",
		Caps: auth.Capabilities{Elevated: true, SeniorStaff: true, Managerial: true},
	})
}

func deptCtx(dept uuid.UUID, senior bool) context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		UserID: "tech-1", Name: "Bench Tech",
		DepartmentID: &dept,
		Caps:         auth.Capabilities{Department: &dept, SeniorStaff: senior, Managerial: senior},
	})
}

func noDeptCtx() context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		UserID: "float-1", Name: "Floater",
	})
}
