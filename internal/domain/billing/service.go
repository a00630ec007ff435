package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// HeaderSync mirrors invoice payment status onto the request header so
// the two never diverge. The orders wiring provides the implementation.
type HeaderSync interface {
	SetPaymentStatus(ctx context.Context, requestID uuid.UUID, status string) error
}

type Service struct {
	repo    Repository
	headers HeaderSync
}

func NewService(repo Repository, headers HeaderSync) *Service {
	return &Service{repo: repo, headers: headers}
}

// CreateForRequest opens an Unpaid invoice for a freshly composed order.
// Runs inside the composer's transaction.
func (s *Service) CreateForRequest(ctx context.Context, requestID uuid.UUID, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("invoice amount cannot be negative")
	}
	return s.repo.Create(ctx, &Invoice{
		TestRequestID: requestID,
		Amount:        amount,
		Status:        StatusUnpaid,
	})
}

// UpdateAmountForRequest re-prices the invoice after an order edit.
func (s *Service) UpdateAmountForRequest(ctx context.Context, requestID uuid.UUID, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("invoice amount cannot be negative")
	}
	return s.repo.UpdateAmount(ctx, requestID, amount)
}

// DeleteForRequest drops the invoice when its order is deleted.
func (s *Service) DeleteForRequest(ctx context.Context, requestID uuid.UUID) error {
	return s.repo.DeleteByRequest(ctx, requestID)
}

func (s *Service) GetByRequest(ctx context.Context, requestID uuid.UUID) (*Invoice, error) {
	return s.repo.GetByRequest(ctx, requestID)
}

// SetPaymentStatus records a payment state and mirrors it onto the
// request header.
func (s *Service) SetPaymentStatus(ctx context.Context, requestID uuid.UUID, status string) (*Invoice, error) {
	switch status {
	case StatusUnpaid, StatusPaid, StatusWaived:
	default:
		return nil, fmt.Errorf("unrecognized payment status %q", status)
	}
	if _, err := s.repo.GetByRequest(ctx, requestID); err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, requestID, status); err != nil {
		return nil, err
	}
	if err := s.headers.SetPaymentStatus(ctx, requestID, status); err != nil {
		return nil, err
	}
	return s.repo.GetByRequest(ctx, requestID)
}
