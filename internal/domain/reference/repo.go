package reference

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the normal-range persistence contract.
type Repository interface {
	Create(ctx context.Context, r *NormalRange) error
	GetByID(ctx context.Context, id int64) (*NormalRange, error)
	GetByAnalyte(ctx context.Context, analyteID uuid.UUID) ([]*NormalRange, error)
	Update(ctx context.Context, r *NormalRange) error
	Delete(ctx context.Context, id int64) error
}
