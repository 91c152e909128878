package analyzers

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
)

const (
	maxListedSerials = 10
	// sequences spanning more serials than this are not expanded into gaps
	maxSequenceSpan = 100_000
)

// IdentifierSettings configures the identifier checks.
type IdentifierSettings struct {
	Column string
	// Pattern is the accepted identifier format; empty accepts anything.
	Pattern string
	// PrefixLength is the length of the year prefix of an identifier.
	PrefixLength  int
	CheckSequence bool
	// YearColumn is the date column the prefix must agree with; empty disables the check.
	YearColumn string
}

type IdentifierAnalyzer struct {
	settings IdentifierSettings
	pattern  *regexp.Regexp
}

func NewIdentifierAnalyzer(settings IdentifierSettings) (*IdentifierAnalyzer, error) {
	re, err := compilePattern("configure identifier analyzer", settings.Pattern)
	if err != nil {
		return nil, err
	}
	return &IdentifierAnalyzer{settings: settings, pattern: re}, nil
}

func (a *IdentifierAnalyzer) Kind() domain.AnalyzerKind {
	return domain.AnalyzerIdentifier
}

func (a *IdentifierAnalyzer) Analyze(t *domain.Table, actx *Context) ([]domain.Finding, error) {
	col := a.settings.Column
	if _, ok := t.Lookup(col); !ok {
		// presence of the column is reported by the columns analyzer
		return nil, nil
	}
	if err := checkType(t, col, domain.ColumnIdentifier); err != nil {
		return nil, err
	}
	yearCol := a.settings.YearColumn
	if _, ok := t.Lookup(yearCol); !ok {
		yearCol = ""
	} else if err := checkType(t, yearCol, domain.ColumnDate); err != nil {
		return nil, err
	}

	var findings []domain.Finding
	rowsByID := make(map[string][]int)
	var order []string

	for _, r := range t.Rows {
		id, _ := t.Value(r, col)
		if id == "" {
			findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityError, r.Index, col, "missing identifier"))
			continue
		}
		if _, seen := rowsByID[id]; !seen {
			order = append(order, id)
		}
		rowsByID[id] = append(rowsByID[id], r.Index)

		if a.pattern != nil && !a.pattern.MatchString(id) {
			findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityWarning, r.Index, col,
				fmt.Sprintf("malformed identifier %q", id)))
			continue
		}
		if yearCol != "" {
			if f, ok := a.checkYear(t, r, id, yearCol, actx); ok {
				findings = append(findings, f)
			}
		}
	}

	findings = append(findings, a.duplicates(rowsByID, order)...)
	if a.settings.CheckSequence && a.settings.PrefixLength > 0 {
		findings = append(findings, a.sequenceGaps(order)...)
	}
	return findings, nil
}

// duplicates flags every occurrence of an identifier after the first one.
func (a *IdentifierAnalyzer) duplicates(rowsByID map[string][]int, order []string) []domain.Finding {
	var findings []domain.Finding
	for _, id := range order {
		rows := rowsByID[id]
		if len(rows) < 2 {
			continue
		}
		sort.Ints(rows)
		first := rows[0]
		for _, row := range rows[1:] {
			findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityError, row, a.settings.Column,
				fmt.Sprintf("duplicate identifier %q at row %d, first seen at row %d", id, row, first)))
		}
	}
	return findings
}

func (a *IdentifierAnalyzer) checkYear(t *domain.Table, r domain.Record, id, yearCol string, actx *Context) (domain.Finding, bool) {
	n := a.settings.PrefixLength
	if n <= 0 || len(id) <= n {
		return domain.Finding{}, false
	}
	raw, _ := t.Value(r, yearCol)
	admitted, ok := actx.Parser.Parse(raw)
	if !ok {
		return domain.Finding{}, false
	}
	want := fmt.Sprintf("%0*d", n, admitted.Year()%pow10(n))
	if id[:n] == want {
		return domain.Finding{}, false
	}
	return domain.RowFinding(a.Kind(), domain.SeverityWarning, r.Index, a.settings.Column,
		fmt.Sprintf("identifier %q has prefix %s but %s is in %d", id, id[:n], yearCol, admitted.Year())), true
}

// sequenceGaps groups well-formed identifiers by year prefix and reports the
// serial numbers missing between the lowest and highest serial of each group.
func (a *IdentifierAnalyzer) sequenceGaps(ids []string) []domain.Finding {
	n := a.settings.PrefixLength
	serials := make(map[string]map[int]bool)
	for _, id := range ids {
		if len(id) <= n || (a.pattern != nil && !a.pattern.MatchString(id)) {
			continue
		}
		serial, ok := parseSerial(id[n:])
		if !ok {
			continue
		}
		prefix := id[:n]
		if serials[prefix] == nil {
			serials[prefix] = make(map[int]bool)
		}
		serials[prefix][serial] = true
	}

	prefixes := make([]string, 0, len(serials))
	for p := range serials {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var findings []domain.Finding
	for _, prefix := range prefixes {
		set := serials[prefix]
		lo, hi := bounds(set)
		if hi-lo > maxSequenceSpan {
			continue
		}
		var missing []int
		for s := lo; s <= hi; s++ {
			if !set[s] {
				missing = append(missing, s)
			}
		}
		if len(missing) == 0 {
			continue
		}
		findings = append(findings, domain.TableFinding(a.Kind(), domain.SeverityInfo, a.settings.Column,
			fmt.Sprintf("prefix %s: %d missing serials between %d and %d (%.1f%%): %s",
				prefix, len(missing), lo, hi, 100*float64(len(missing))/float64(hi-lo+1), listInts(missing, maxListedSerials))))
	}
	return findings
}

// parseSerial accepts decimal digits only, so signs and separators never
// produce a serial.
func parseSerial(s string) (int, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func bounds(set map[int]bool) (int, int) {
	first := true
	var lo, hi int
	for s := range set {
		if first || s < lo {
			lo = s
		}
		if first || s > hi {
			hi = s
		}
		first = false
	}
	return lo, hi
}

func listInts(values []int, limit int) string {
	parts := make([]string, 0, limit+1)
	for i, v := range values {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... (+%d more)", len(values)-limit))
			break
		}
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ", ")
}

func pow10(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
