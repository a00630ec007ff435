package orders

import (
	"context"

	"github.com/google/uuid"
)

// The orders service consumes its neighbors through narrow interfaces so
// tests can stand in for them and so the package never imports another
// domain. Adapters over the concrete services live in the wiring layer.

// CatalogEntry is the slice of a catalog item the composer and the
// result gate need.
type CatalogEntry struct {
	ID           uuid.UUID
	Name         string
	Price        float64
	DepartmentID uuid.UUID
	IsPanel      bool
}

// CatalogSource supplies catalog entries and panel membership.
type CatalogSource interface {
	Entries(ctx context.Context, ids []uuid.UUID) ([]*CatalogEntry, error)
	PanelMembers(ctx context.Context, panelID uuid.UUID) ([]*CatalogEntry, error)
}

// Subject is the demographic context the resolver needs. Gender is
// normalized to lowercase male/female, nil when unknown.
type Subject struct {
	ID       uuid.UUID
	Name     string
	Gender   *string
	AgeYears *int
}

// PatientSource resolves a patient id into a Subject.
type PatientSource interface {
	Subject(ctx context.Context, id uuid.UUID) (*Subject, error)
}

// RangeInfo is a resolved reference interval for one candidate value.
type RangeInfo struct {
	Text string `json:"reference_text"`
	Flag string `json:"flag"`
}

// RangeResolver resolves the applicable range for an analyte and subject.
// Called at every read so range edits apply immediately.
type RangeResolver interface {
	ResolveFor(ctx context.Context, analyteID uuid.UUID, gender *string, ageYears *int, candidate string) (RangeInfo, error)
}

// AuditEntry records one lifecycle or verification action, successful
// or failed.
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	Outcome    string
	Detail     map[string]interface{}
}

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuditSink receives audit entries. Implementations must not fail the
// business operation; persistence errors are theirs to log.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}

// InvoiceSink keeps billing in step with order composition. All three
// calls run inside the composer's transaction.
type InvoiceSink interface {
	CreateInvoice(ctx context.Context, requestID uuid.UUID, amount float64) error
	UpdateInvoiceAmount(ctx context.Context, requestID uuid.UUID, amount float64) error
	DeleteInvoice(ctx context.Context, requestID uuid.UUID) error
}
