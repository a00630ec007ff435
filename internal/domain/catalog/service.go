package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	items       ItemRepository
	panels      PanelRepository
	departments DepartmentRepository
}

func NewService(items ItemRepository, panels PanelRepository, departments DepartmentRepository) *Service {
	return &Service{items: items, panels: panels, departments: departments}
}

func (s *Service) CreateItem(ctx context.Context, item *Item) error {
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	if item.DepartmentID == uuid.Nil {
		return fmt.Errorf("department_id is required")
	}
	if item.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if _, err := s.departments.GetByID(ctx, item.DepartmentID); err != nil {
		return fmt.Errorf("unknown department: %s", item.DepartmentID)
	}
	return s.items.Create(ctx, item)
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) GetItems(ctx context.Context, ids []uuid.UUID) ([]*Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.items.GetByIDs(ctx, ids)
}

func (s *Service) UpdateItem(ctx context.Context, item *Item) error {
	if item.Name == "" {
		return fmt.Errorf("name is required")
	}
	if item.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return s.items.Update(ctx, item)
}

func (s *Service) SearchItems(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error) {
	return s.items.Search(ctx, params, limit, offset)
}

// SetPanelMembers replaces a panel's membership. Panel nesting is not
// modeled: a member must be a plain test, and a panel may not contain itself.
func (s *Service) SetPanelMembers(ctx context.Context, panelID uuid.UUID, memberIDs []uuid.UUID) error {
	panel, err := s.items.GetByID(ctx, panelID)
	if err != nil {
		return fmt.Errorf("unknown panel: %s", panelID)
	}
	if !panel.IsPanel {
		return fmt.Errorf("catalog item %s is not a panel", panelID)
	}

	members, err := s.items.GetByIDs(ctx, memberIDs)
	if err != nil {
		return err
	}
	known := make(map[uuid.UUID]*Item, len(members))
	for _, m := range members {
		known[m.ID] = m
	}
	for _, id := range memberIDs {
		if id == panelID {
			return fmt.Errorf("panel may not contain itself")
		}
		m, ok := known[id]
		if !ok {
			return fmt.Errorf("unknown member: %s", id)
		}
		if m.IsPanel {
			return fmt.Errorf("member %s is a panel: nested panels are not supported", id)
		}
	}
	return s.panels.SetMembers(ctx, panelID, memberIDs)
}

func (s *Service) PanelMembers(ctx context.Context, panelID uuid.UUID) ([]uuid.UUID, error) {
	return s.panels.Members(ctx, panelID)
}

func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.departments.Create(ctx, d)
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.departments.List(ctx)
}
