// Package filter selects the rows of a table that fall in a year or a range
// of years, based on one date column.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/services/dates"
)

const (
	minCalendarYear = 1900
	maxCalendarYear = 2100
	// DefaultMaxSpan is the widest accepted range, in years.
	DefaultMaxSpan = 50
)

// Settings configures the year filter.
type Settings struct {
	DateColumn   string
	Layouts      []string
	CenturyPivot int
	MaxSpan      int
}

// Result is the outcome of applying a filter to a table.
type Result struct {
	Table *domain.Table
	// ExcludedOutOfRange counts dated rows outside the selected years.
	ExcludedOutOfRange int
	// ExcludedUndated counts rows whose date is blank or unparsable.
	ExcludedUndated int
}

// YearFilter builds row predicates for year filter specs.
type YearFilter struct {
	settings Settings
	parser   *dates.Parser
}

// New creates a year filter. Zero MaxSpan falls back to DefaultMaxSpan.
func New(settings Settings) *YearFilter {
	if settings.MaxSpan <= 0 {
		settings.MaxSpan = DefaultMaxSpan
	}
	return &YearFilter{settings: settings, parser: dates.NewParser(settings.Layouts)}
}

// Parse reads the filter grammar: "" / "<none>" / "none" / "all" select all
// rows, "YY" a single year and "YY-YY" a range given in either order.
func Parse(s string) (domain.YearFilterSpec, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "<none>", "none", "all":
		return domain.AllYears(), nil
	}

	if from, to, ok := strings.Cut(s, "-"); ok {
		a, err := parseYear(from)
		if err != nil {
			return domain.YearFilterSpec{}, domain.NewConfigurationError("parse year filter",
				fmt.Errorf("%w: %q: %v", domain.ErrInvalidYearFilter, s, err))
		}
		b, err := parseYear(to)
		if err != nil {
			return domain.YearFilterSpec{}, domain.NewConfigurationError("parse year filter",
				fmt.Errorf("%w: %q: %v", domain.ErrInvalidYearFilter, s, err))
		}
		return domain.YearRange(a, b), nil
	}

	y, err := parseYear(s)
	if err != nil {
		return domain.YearFilterSpec{}, domain.NewConfigurationError("parse year filter",
			fmt.Errorf("%w: %q: %v", domain.ErrInvalidYearFilter, s, err))
	}
	return domain.SingleYear(y), nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 2 && len(s) != 4 {
		return 0, fmt.Errorf("year %q must have 2 or 4 digits", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("year %q is not a number", s)
		}
	}
	return strconv.Atoi(s)
}

// Bounds resolves the calendar years selected by spec. It fails when a year
// resolves outside [1900, 2100] or the range is wider than MaxSpan.
func (f *YearFilter) Bounds(spec domain.YearFilterSpec) (int, int, error) {
	if spec.IsAll() {
		return 0, 0, nil
	}
	from, err := f.resolve(spec.From)
	if err != nil {
		return 0, 0, err
	}
	to, err := f.resolve(spec.To)
	if err != nil {
		return 0, 0, err
	}
	if from > to {
		from, to = to, from
	}
	if to-from > f.settings.MaxSpan {
		return 0, 0, domain.NewConfigurationError("resolve year filter",
			fmt.Errorf("%w: %d-%d spans %d years, max %d", domain.ErrSpanTooWide, from, to, to-from, f.settings.MaxSpan))
	}
	return from, to, nil
}

func (f *YearFilter) resolve(year int) (int, error) {
	y, err := dates.ResolveYear(year, f.settings.CenturyPivot)
	if err != nil {
		return 0, domain.NewConfigurationError("resolve year filter", fmt.Errorf("%w: %v", domain.ErrYearOutOfRange, err))
	}
	if y < minCalendarYear || y > maxCalendarYear {
		return 0, domain.NewConfigurationError("resolve year filter",
			fmt.Errorf("%w: %d not in [%d, %d]", domain.ErrYearOutOfRange, y, minCalendarYear, maxCalendarYear))
	}
	return y, nil
}

// Predicate returns the row-inclusion function for spec over table t.
// Rows with a blank or unparsable date never match a Single or Range spec.
func (f *YearFilter) Predicate(t *domain.Table, spec domain.YearFilterSpec) (func(domain.Record) bool, error) {
	if spec.IsAll() {
		return func(domain.Record) bool { return true }, nil
	}
	from, to, err := f.Bounds(spec)
	if err != nil {
		return nil, err
	}
	pos, ok := t.Lookup(f.settings.DateColumn)
	if !ok {
		return nil, domain.NewConfigurationError("build year filter",
			fmt.Errorf("%w: %q", domain.ErrMissingDateColumn, f.settings.DateColumn))
	}
	return func(r domain.Record) bool {
		d, ok := f.parser.Parse(r.Cell(pos))
		if !ok {
			return false
		}
		return d.Year() >= from && d.Year() <= to
	}, nil
}

// Apply filters t by spec and counts the excluded rows by reason.
func (f *YearFilter) Apply(t *domain.Table, spec domain.YearFilterSpec) (Result, error) {
	if spec.IsAll() {
		return Result{Table: t}, nil
	}
	keep, err := f.Predicate(t, spec)
	if err != nil {
		return Result{}, err
	}
	pos, _ := t.Lookup(f.settings.DateColumn)

	res := Result{}
	rows := make([]domain.Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		if keep(r) {
			rows = append(rows, r)
			continue
		}
		if _, dated := f.parser.Parse(r.Cell(pos)); dated {
			res.ExcludedOutOfRange++
		} else {
			res.ExcludedUndated++
		}
	}
	res.Table = t.WithRows(rows)
	return res, nil
}
