package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	MRN       string     `db:"mrn" json:"mrn"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Gender    string     `db:"gender" json:"gender"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Email     *string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// AgeOn returns the patient's age in whole years at the given date.
// A nil or future birth date yields 0.
func (p *Patient) AgeOn(at time.Time) int {
	if p.BirthDate == nil || p.BirthDate.After(at) {
		return 0
	}
	bd := *p.BirthDate
	years := at.Year() - bd.Year()
	if at.Month() < bd.Month() || (at.Month() == bd.Month() && at.Day() < bd.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
