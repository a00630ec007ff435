package billing

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses, shared with the request header.
const (
	StatusUnpaid = "Unpaid"
	StatusPaid   = "Paid"
	StatusWaived = "Waived"
)

// Invoice maps to the invoice table. One invoice per test request,
// created inside the order composer's transaction.
type Invoice struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TestRequestID uuid.UUID  `db:"test_request_id" json:"test_request_id"`
	Amount        float64    `db:"amount" json:"amount"`
	Status        string     `db:"status" json:"status"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
