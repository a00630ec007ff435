package reference

import (
	"strconv"
	"strings"
)

// Flag values.
const (
	FlagLow      = "L"
	FlagHigh     = "H"
	FlagAbnormal = "A"
)

// Select picks the single applicable range row for a subject out of the
// candidate rows for one analyte. A row applies when its gender equals
// the subject's (or is Any) and the subject age falls inside the row's
// bounds; nil bounds are unbounded, a nil subject age satisfies both.
// Exact-gender rows rank above Any rows; remaining ties go to the
// lowest row id. Returns nil when nothing applies.
func Select(rows []*NormalRange, gender *string, ageYears *int) *NormalRange {
	var best *NormalRange
	for _, row := range rows {
		if !applies(row, gender, ageYears) {
			continue
		}
		if best == nil || outranks(row, best) {
			best = row
		}
	}
	return best
}

func applies(row *NormalRange, gender *string, ageYears *int) bool {
	if row.Gender != GenderAny {
		if gender == nil || !strings.EqualFold(row.Gender, *gender) {
			return false
		}
	}
	if ageYears != nil {
		if row.AgeMin != nil && *ageYears < *row.AgeMin {
			return false
		}
		if row.AgeMax != nil && *ageYears > *row.AgeMax {
			return false
		}
	}
	return true
}

func outranks(candidate, current *NormalRange) bool {
	candExact := candidate.Gender != GenderAny
	currExact := current.Gender != GenderAny
	if candExact != currExact {
		return candExact
	}
	return candidate.ID < current.ID
}

// DisplayText renders a row's reference interval for human display.
func DisplayText(row *NormalRange) string {
	if row == nil {
		return ""
	}
	numeric := row.RangeType == TypeNumeric
	var text string
	switch {
	case numeric && row.MinValue != nil && row.MaxValue != nil:
		text = formatNum(*row.MinValue) + " – " + formatNum(*row.MaxValue)
	case numeric && row.MinValue != nil:
		text = "≥ " + formatNum(*row.MinValue)
	case numeric && row.MaxValue != nil:
		text = "≤ " + formatNum(*row.MaxValue)
	case row.QualitativeValue != nil && *row.QualitativeValue != "":
		text = *row.QualitativeValue
	case row.SymbolOperator != nil && row.MaxValue != nil:
		text = *row.SymbolOperator + " " + formatNum(*row.MaxValue)
	}
	if row.Note != nil && *row.Note != "" {
		if text != "" {
			text += " (" + *row.Note + ")"
		} else {
			text = "(" + *row.Note + ")"
		}
	}
	return text
}

// Flag computes the deviation flag for a candidate value against a row.
// Numeric rows compare parsed values against the bounds; an unparsable
// candidate carries no flag. Qualitative rows compare case-insensitively
// after trimming, and a reference of "any" never flags.
func Flag(row *NormalRange, candidate string) string {
	if row == nil {
		return ""
	}
	switch row.RangeType {
	case TypeQualitative:
		return qualitativeFlag(row, candidate)
	default:
		return numericFlag(row, candidate)
	}
}

func numericFlag(row *NormalRange, candidate string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64)
	if err != nil {
		return ""
	}
	if row.MinValue != nil && v < *row.MinValue {
		return FlagLow
	}
	if row.MaxValue != nil && v > *row.MaxValue {
		return FlagHigh
	}
	return ""
}

func qualitativeFlag(row *NormalRange, candidate string) string {
	if row.QualitativeValue == nil {
		return ""
	}
	ref := strings.ToLower(strings.TrimSpace(*row.QualitativeValue))
	got := strings.ToLower(strings.TrimSpace(candidate))
	if ref != got && ref != "any" {
		return FlagAbnormal
	}
	return ""
}

// Resolve applies Select then renders the Resolution for a candidate
// value. No applicable row yields the zero Resolution.
func Resolve(rows []*NormalRange, gender *string, ageYears *int, candidate string) Resolution {
	row := Select(rows, gender, ageYears)
	if row == nil {
		return Resolution{}
	}
	return Resolution{Text: DisplayText(row), Flag: Flag(row, candidate)}
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
