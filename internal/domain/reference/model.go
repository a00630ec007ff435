package reference

import (
	"time"

	"github.com/google/uuid"
)

// Range types.
const (
	TypeNumeric     = "numeric"
	TypeQualitative = "qualitative"
)

// Gender scoping on a range row. Subject gender is matched against
// Male/Female; Any applies to every subject.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderAny    = "Any"
)

// NormalRange maps to the normal_range table. Rows are configuration:
// several may target one analyte with different gender/age scoping, and
// exactly one is selected per lookup. The serial id doubles as the
// deterministic tie-breaker between equally ranked rows.
type NormalRange struct {
	ID               int64     `db:"id" json:"id"`
	AnalyteID        uuid.UUID `db:"analyte_id" json:"analyte_id"`
	RangeType        string    `db:"range_type" json:"range_type"`
	Gender           string    `db:"gender" json:"gender"`
	AgeMin           *int      `db:"age_min" json:"age_min,omitempty"`
	AgeMax           *int      `db:"age_max" json:"age_max,omitempty"`
	MinValue         *float64  `db:"min_value" json:"min_value,omitempty"`
	MaxValue         *float64  `db:"max_value" json:"max_value,omitempty"`
	QualitativeValue *string   `db:"qualitative_value" json:"qualitative_value,omitempty"`
	SymbolOperator   *string   `db:"symbol_operator" json:"symbol_operator,omitempty"`
	Note             *string   `db:"note" json:"note,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Resolution is the outcome of a range lookup for one candidate value.
// Both fields are empty when no row applies.
type Resolution struct {
	Text string `json:"reference_text"`
	Flag string `json:"flag"`
}
