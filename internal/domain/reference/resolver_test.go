package reference

import (
	"testing"

	"github.com/google/uuid"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func numericRange(id int64, gender string, min, max *float64) *NormalRange {
	return &NormalRange{
		ID:        id,
		AnalyteID: uuid.Nil,
		RangeType: TypeNumeric,
		Gender:    gender,
		MinValue:  min,
		MaxValue:  max,
	}
}

func TestSelect_ExactGenderBeatsAny(t *testing.T) {
	rows := []*NormalRange{
		numericRange(1, GenderAny, fptr(3.5), fptr(5.0)),
		numericRange(2, GenderFemale, fptr(3.6), fptr(5.2)),
	}
	got := Select(rows, sptr("female"), nil)
	if got == nil || got.ID != 2 {
		t.Fatalf("expected female row (id 2), got %+v", got)
	}
}

func TestSelect_FallsBackToAny(t *testing.T) {
	rows := []*NormalRange{
		numericRange(1, GenderAny, fptr(3.5), fptr(5.0)),
		numericRange(2, GenderFemale, fptr(3.6), fptr(5.2)),
	}
	got := Select(rows, sptr("male"), nil)
	if got == nil || got.ID != 1 {
		t.Fatalf("expected Any row (id 1), got %+v", got)
	}
}

func TestSelect_NilGenderOnlyMatchesAny(t *testing.T) {
	rows := []*NormalRange{
		numericRange(2, GenderFemale, fptr(3.6), fptr(5.2)),
	}
	if got := Select(rows, nil, nil); got != nil {
		t.Errorf("expected no match for nil gender against Female row, got %+v", got)
	}
}

func TestSelect_AgeBounds(t *testing.T) {
	adult := numericRange(1, GenderAny, fptr(13.0), fptr(17.0))
	adult.AgeMin = iptr(18)
	child := numericRange(2, GenderAny, fptr(11.0), fptr(14.0))
	child.AgeMax = iptr(17)
	rows := []*NormalRange{adult, child}

	if got := Select(rows, nil, iptr(40)); got == nil || got.ID != 1 {
		t.Errorf("expected adult row for age 40, got %+v", got)
	}
	if got := Select(rows, nil, iptr(10)); got == nil || got.ID != 2 {
		t.Errorf("expected child row for age 10, got %+v", got)
	}
	// nil age satisfies every bound; tie broken by lowest id
	if got := Select(rows, nil, nil); got == nil || got.ID != 1 {
		t.Errorf("expected lowest-id row for nil age, got %+v", got)
	}
}

func TestSelect_TieBreakLowestID(t *testing.T) {
	rows := []*NormalRange{
		numericRange(7, GenderAny, fptr(1), fptr(2)),
		numericRange(3, GenderAny, fptr(1), fptr(2)),
	}
	if got := Select(rows, nil, nil); got == nil || got.ID != 3 {
		t.Errorf("expected id 3, got %+v", got)
	}
}

func TestSelect_NoMatch(t *testing.T) {
	if got := Select(nil, sptr("male"), iptr(30)); got != nil {
		t.Errorf("expected nil for empty row set, got %+v", got)
	}
}

func TestNumericFlag(t *testing.T) {
	row := numericRange(1, GenderAny, fptr(3.5), fptr(5.0))
	cases := []struct {
		value string
		want  string
	}{
		{"2.0", FlagLow},
		{"6.0", FlagHigh},
		{"4.0", ""},
		{"3.5", ""},
		{"5.0", ""},
		{" 4.2 ", ""},
		{"positive", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Flag(row, tc.value); got != tc.want {
			t.Errorf("flag(%q): expected %q, got %q", tc.value, tc.want, got)
		}
	}
}

func TestNumericFlag_OpenBounds(t *testing.T) {
	minOnly := numericRange(1, GenderAny, fptr(3.5), nil)
	if got := Flag(minOnly, "99"); got != "" {
		t.Errorf("no max bound: expected no flag, got %q", got)
	}
	if got := Flag(minOnly, "1"); got != FlagLow {
		t.Errorf("expected L, got %q", got)
	}
	maxOnly := numericRange(2, GenderAny, nil, fptr(5.0))
	if got := Flag(maxOnly, "0.1"); got != "" {
		t.Errorf("no min bound: expected no flag, got %q", got)
	}
	if got := Flag(maxOnly, "9"); got != FlagHigh {
		t.Errorf("expected H, got %q", got)
	}
}

func TestQualitativeFlag(t *testing.T) {
	row := &NormalRange{ID: 1, RangeType: TypeQualitative, Gender: GenderAny, QualitativeValue: sptr("Negative")}
	cases := []struct {
		value string
		want  string
	}{
		{"Negative", ""},
		{"  negative  ", ""},
		{"NEGATIVE", ""},
		{"Positive", FlagAbnormal},
		{"", FlagAbnormal},
	}
	for _, tc := range cases {
		if got := Flag(row, tc.value); got != tc.want {
			t.Errorf("flag(%q): expected %q, got %q", tc.value, tc.want, got)
		}
	}

	anyRow := &NormalRange{ID: 2, RangeType: TypeQualitative, Gender: GenderAny, QualitativeValue: sptr("Any")}
	if got := Flag(anyRow, "whatever"); got != "" {
		t.Errorf("reference 'any' never flags, got %q", got)
	}
}

func TestDisplayText(t *testing.T) {
	cases := []struct {
		name string
		row  *NormalRange
		want string
	}{
		{"both bounds", numericRange(1, GenderAny, fptr(3.5), fptr(5.0)), "3.5 – 5"},
		{"min only", numericRange(2, GenderAny, fptr(3.5), nil), "≥ 3.5"},
		{"max only", numericRange(3, GenderAny, nil, fptr(5.0)), "≤ 5"},
		{"qualitative", &NormalRange{RangeType: TypeQualitative, QualitativeValue: sptr("Negative")}, "Negative"},
		{"operator fallback", &NormalRange{RangeType: TypeQualitative, SymbolOperator: sptr("<"),
			MaxValue: fptr(5.0)}, "< 5"},
		{"nil row", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayText(tc.row); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDisplayText_Note(t *testing.T) {
	row := numericRange(1, GenderAny, fptr(3.5), fptr(5.0))
	row.Note = sptr("fasting")
	if got := DisplayText(row); got != "3.5 – 5 (fasting)" {
		t.Errorf("expected note appended, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	rows := []*NormalRange{
		numericRange(1, GenderAny, fptr(3.5), fptr(5.0)),
		numericRange(2, GenderFemale, fptr(3.6), fptr(5.2)),
	}
	res := Resolve(rows, sptr("female"), iptr(30), "3.55")
	if res.Flag != FlagLow {
		t.Errorf("3.55 is below the female minimum, expected L, got %q", res.Flag)
	}
	if res.Text != "3.6 – 5.2" {
		t.Errorf("unexpected text %q", res.Text)
	}

	empty := Resolve(nil, sptr("male"), iptr(30), "4")
	if empty.Text != "" || empty.Flag != "" {
		t.Errorf("expected zero resolution for no rows, got %+v", empty)
	}
}
