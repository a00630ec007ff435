package billing

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the invoice persistence contract.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*Invoice, error)
	UpdateAmount(ctx context.Context, requestID uuid.UUID, amount float64) error
	SetStatus(ctx context.Context, requestID uuid.UUID, status string) error
	DeleteByRequest(ctx context.Context, requestID uuid.UUID) error
}
