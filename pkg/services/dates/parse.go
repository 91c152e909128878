// Package dates parses the date cells found in patient spreadsheets and
// resolves two-digit years.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCenturyPivot maps two-digit years 00-68 to 2000-2068 and 69-99 to
// 1969-1999, the same split POSIX strptime uses for %y.
const DefaultCenturyPivot = 68

// DefaultLayouts are tried in order. Day-first layouts come before ISO because
// the source spreadsheets are written dd-mm-yyyy.
var DefaultLayouts = []string{
	"2-1-2006",
	"02-01-2006",
	"2006-01-02",
	"2/1/2006",
	"02/01/2006",
	"2.1.2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parser parses cells with a fixed list of layouts.
type Parser struct {
	layouts []string
}

// NewParser returns a parser for the given layouts, or DefaultLayouts when empty.
func NewParser(layouts []string) *Parser {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	l := make([]string, len(layouts))
	copy(l, layouts)
	return &Parser{layouts: l}
}

// Parse returns the date in UTC. Blank input returns ok=false.
func (p *Parser) Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Layouts returns a copy of the accepted layouts.
func (p *Parser) Layouts() []string {
	l := make([]string, len(p.layouts))
	copy(l, p.layouts)
	return l
}

// ResolveYear turns a user supplied year into a calendar year. Values below
// 100 are two-digit years resolved with pivot; other values are returned as is.
func ResolveYear(year, pivot int) (int, error) {
	if year < 0 {
		return 0, fmt.Errorf("negative year %d", year)
	}
	if year >= 100 {
		return year, nil
	}
	if year <= pivot {
		return 2000 + year, nil
	}
	return 1900 + year, nil
}

// FullYearsBetween returns the number of whole years from `from` to `to`,
// counting a year only once the anniversary has been reached.
func FullYearsBetween(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}

// DaysBetween returns the number of calendar days from `from` to `to`.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
