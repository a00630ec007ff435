package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error)
}

type PanelRepository interface {
	SetMembers(ctx context.Context, panelID uuid.UUID, memberIDs []uuid.UUID) error
	Members(ctx context.Context, panelID uuid.UUID) ([]uuid.UUID, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
}
