package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Department maps to the department table. Every catalog item belongs to one
// department, and result-entry scoping keys off it.
type Department struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Item maps to the catalog_item table: a billable/orderable test or panel.
type Item struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Price        float64   `db:"price" json:"price"`
	DepartmentID uuid.UUID `db:"department_id" json:"department_id"`
	SampleType   *string   `db:"sample_type" json:"sample_type,omitempty"`
	Unit         *string   `db:"unit" json:"unit,omitempty"`
	IsPanel      bool      `db:"is_panel" json:"is_panel"`
	Active       bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PanelMember maps to the panel_membership junction table. Panels expand one
// level only: a member is always a plain test, never another panel.
type PanelMember struct {
	PanelID  uuid.UUID `db:"panel_id" json:"panel_id"`
	MemberID uuid.UUID `db:"member_id" json:"member_id"`
}
