package orders

import (
	"context"

	"github.com/google/uuid"
)

// RequestRepository is the request-header persistence contract.
type RequestRepository interface {
	Create(ctx context.Context, r *TestRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestRequest, error)
	// UpdateStatus writes the status guarded by the version column and
	// returns ConflictError when the version no longer matches.
	UpdateStatus(ctx context.Context, id uuid.UUID, version int, status Status) error
	UpdatePricing(ctx context.Context, id uuid.UUID, amount float64, priority Priority) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*TestRequest, int, error)
}

// ItemRepository is the line-item persistence contract.
type ItemRepository interface {
	Insert(ctx context.Context, item *TestRequestItem) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) ([]*TestRequestItem, error)
	SaveResult(ctx context.Context, itemID uuid.UUID, value string) error
	SetVerification(ctx context.Context, itemID uuid.UUID, status ItemStatus, verifierID, verifierName string) error
	DeleteByRequest(ctx context.Context, requestID uuid.UUID) error
}
