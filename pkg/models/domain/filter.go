package domain

import "fmt"

type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterSingle
	FilterRange
)

// YearFilterSpec selects rows by the year of a date column.
// From and To hold years as written by the user (two-digit or four-digit);
// From <= To always holds for a range.
type YearFilterSpec struct {
	Kind FilterKind
	From int
	To   int
}

// AllYears is the filter that keeps every row.
func AllYears() YearFilterSpec {
	return YearFilterSpec{Kind: FilterAll}
}

// SingleYear keeps rows dated in one year.
func SingleYear(year int) YearFilterSpec {
	return YearFilterSpec{Kind: FilterSingle, From: year, To: year}
}

// YearRange keeps rows dated within [a, b] in either order. Equal endpoints
// collapse to SingleYear.
func YearRange(a, b int) YearFilterSpec {
	if a > b {
		a, b = b, a
	}
	if a == b {
		return SingleYear(a)
	}
	return YearFilterSpec{Kind: FilterRange, From: a, To: b}
}

// IsAll reports whether the spec keeps every row.
func (s YearFilterSpec) IsAll() bool {
	return s.Kind == FilterAll
}

func (s YearFilterSpec) String() string {
	switch s.Kind {
	case FilterSingle:
		return fmt.Sprintf("%02d", s.From)
	case FilterRange:
		return fmt.Sprintf("%02d-%02d", s.From, s.To)
	default:
		return "all"
	}
}
