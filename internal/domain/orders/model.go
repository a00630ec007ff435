package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the request header status.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusSampleCollected Status = "SampleCollected"
	StatusSampleReceived  Status = "SampleReceived"
	StatusProcessing      Status = "Processing"
	StatusCompleted       Status = "Completed"
	StatusVerified        Status = "Verified"
	StatusReleased        Status = "Released"
	StatusPrinted         Status = "Printed"
	StatusCancelled       Status = "Cancelled"

	// Legacy statuses still present in stored data. No transition
	// reaches them; they only round-trip on read.
	StatusUnderReview Status = "UnderReview"
	StatusReopened    Status = "Reopened"
)

// ItemStatus is the line-item status.
type ItemStatus string

const (
	ItemPending   ItemStatus = "Pending"
	ItemCompleted ItemStatus = "Completed"
	ItemVerified  ItemStatus = "Verified"
	ItemCancelled ItemStatus = "Cancelled"
)

// Priority of a request.
type Priority string

const (
	PriorityRoutine Priority = "Routine"
	PriorityUrgent  Priority = "URGENT"
)

// urgentAliases are accepted case-insensitively as URGENT.
var urgentAliases = map[string]struct{}{
	"urgent": {}, "stat": {}, "emerg": {}, "emergency": {},
}

// NormalizePriority maps free-text priority input onto the two stored
// values. Anything not recognized as urgent is Routine.
func NormalizePriority(input string) Priority {
	if _, ok := urgentAliases[strings.ToLower(strings.TrimSpace(input))]; ok {
		return PriorityUrgent
	}
	return PriorityRoutine
}

// TestRequest maps to the test_request table. Version guards concurrent
// header status writes.
type TestRequest struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	Status        Status    `db:"status" json:"status"`
	PaymentStatus string    `db:"payment_status" json:"payment_status"`
	PaymentAmount float64   `db:"payment_amount" json:"payment_amount"`
	Priority      Priority  `db:"priority" json:"priority"`
	CreatedBy     string    `db:"created_by" json:"created_by"`
	Version       int       `db:"version" json:"version"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// TestRequestItem maps to the test_request_item table. A panel child
// carries its panel's item id in ParentID and always shares the parent's
// TestRequestID.
type TestRequestItem struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	TestRequestID  uuid.UUID  `db:"test_request_id" json:"test_request_id"`
	TestCatalogID  uuid.UUID  `db:"test_catalog_id" json:"test_catalog_id"`
	ParentID       *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
	ResultValue    *string    `db:"result_value" json:"result_value,omitempty"`
	Status         ItemStatus `db:"status" json:"status"`
	VerifiedBy     *string    `db:"verified_by" json:"verified_by,omitempty"`
	VerifiedByName *string    `db:"verified_by_name" json:"verified_by_name,omitempty"`
	VerifiedAt     *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
