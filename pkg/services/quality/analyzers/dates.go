package analyzers

import (
	"fmt"
	"slices"
	"time"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/services/dates"
)

const isoDate = "2006-01-02"

// DateSettings maps the date roles to columns. An empty column disables the role.
type DateSettings struct {
	BirthColumn     string
	AdmissionColumn string
	DischargeColumn string
	MinAge          int
	// MaxAge of 0 disables the upper age bound.
	MaxAge int
	// LongStayDays of 0 disables the long stay check.
	LongStayDays int
	// Statistics adds table-level summaries of age at admission and length of stay.
	Statistics bool
}

// relation requires Earlier <= Later whenever both dates parse.
type relation struct {
	Earlier, Later string
}

type DateAnalyzer struct {
	settings DateSettings
}

func NewDateAnalyzer(settings DateSettings) *DateAnalyzer {
	return &DateAnalyzer{settings: settings}
}

func (a *DateAnalyzer) Kind() domain.AnalyzerKind {
	return domain.AnalyzerDates
}

func (a *DateAnalyzer) Analyze(t *domain.Table, actx *Context) ([]domain.Finding, error) {
	s := a.settings
	var columns []string
	for _, col := range []string{s.BirthColumn, s.AdmissionColumn, s.DischargeColumn} {
		if col == "" {
			continue
		}
		if _, ok := t.Lookup(col); !ok {
			continue
		}
		if err := checkType(t, col, domain.ColumnDate); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	if len(columns) == 0 {
		return nil, nil
	}

	relations := a.relations(columns)
	var findings []domain.Finding
	var ages, stays []int
	for _, r := range t.Rows {
		parsed := make(map[string]time.Time, len(columns))
		for _, col := range columns {
			raw, _ := t.Value(r, col)
			if raw == "" {
				continue
			}
			d, ok := actx.Parser.Parse(raw)
			if !ok {
				findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityError, r.Index, col,
					fmt.Sprintf("unparsable date %q in %s", raw, col)))
				continue
			}
			parsed[col] = d
			if !actx.ReferenceDate.IsZero() && d.After(actx.ReferenceDate) {
				findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityWarning, r.Index, col,
					fmt.Sprintf("date in the future: %s %s is after %s", col, d.Format(isoDate), actx.ReferenceDate.Format(isoDate))))
			}
		}

		for _, rel := range relations {
			earlier, okE := parsed[rel.Earlier]
			later, okL := parsed[rel.Later]
			if !okE || !okL || !later.Before(earlier) {
				continue
			}
			findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityError, r.Index, rel.Later,
				fmt.Sprintf("%s %s precedes %s %s", rel.Later, later.Format(isoDate), rel.Earlier, earlier.Format(isoDate))))
		}

		findings = append(findings, a.checkAge(r, parsed)...)
		findings = append(findings, a.checkStay(r, parsed)...)

		if age, ok := a.age(parsed); ok && age >= 0 {
			ages = append(ages, age)
		}
		if days, ok := a.stay(parsed); ok && days >= 0 {
			stays = append(stays, days)
		}
	}

	if s.Statistics {
		if st, ok := summarize(ages); ok {
			findings = append(findings, domain.TableFinding(a.Kind(), domain.SeverityInfo, s.BirthColumn,
				fmt.Sprintf("age at admission over %d rows: mean %.1f, median %.1f, min %d, max %d", st.count, st.mean, st.median, st.min, st.max)))
		}
		if st, ok := summarize(stays); ok {
			findings = append(findings, domain.TableFinding(a.Kind(), domain.SeverityInfo, s.DischargeColumn,
				fmt.Sprintf("length of stay over %d rows: mean %.1f days, median %.1f, min %d, max %d", st.count, st.mean, st.median, st.min, st.max)))
		}
	}
	return findings, nil
}

func (a *DateAnalyzer) age(parsed map[string]time.Time) (int, bool) {
	birth, okB := parsed[a.settings.BirthColumn]
	admitted, okA := parsed[a.settings.AdmissionColumn]
	if !okB || !okA {
		return 0, false
	}
	return dates.FullYearsBetween(birth, admitted), true
}

func (a *DateAnalyzer) stay(parsed map[string]time.Time) (int, bool) {
	admitted, okA := parsed[a.settings.AdmissionColumn]
	discharged, okD := parsed[a.settings.DischargeColumn]
	if !okA || !okD {
		return 0, false
	}
	return dates.DaysBetween(admitted, discharged), true
}

type stats struct {
	count        int
	mean, median float64
	min, max     int
}

func summarize(values []int) (stats, bool) {
	if len(values) == 0 {
		return stats{}, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sum := 0
	for _, v := range sorted {
		sum += v
	}
	n := len(sorted)
	median := float64(sorted[n/2])
	if n%2 == 0 {
		median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}
	return stats{
		count:  n,
		mean:   float64(sum) / float64(n),
		median: median,
		min:    sorted[0],
		max:    sorted[n-1],
	}, true
}

func (a *DateAnalyzer) relations(present []string) []relation {
	has := make(map[string]bool, len(present))
	for _, col := range present {
		has[col] = true
	}
	s := a.settings
	var out []relation
	for _, rel := range []relation{
		{Earlier: s.BirthColumn, Later: s.AdmissionColumn},
		{Earlier: s.AdmissionColumn, Later: s.DischargeColumn},
	} {
		if has[rel.Earlier] && has[rel.Later] && rel.Earlier != rel.Later {
			out = append(out, rel)
		}
	}
	return out
}

func (a *DateAnalyzer) checkAge(r domain.Record, parsed map[string]time.Time) []domain.Finding {
	s := a.settings
	age, ok := a.age(parsed)
	if !ok {
		return nil
	}
	birth, admitted := parsed[s.BirthColumn], parsed[s.AdmissionColumn]
	if age >= s.MinAge && (s.MaxAge <= 0 || age <= s.MaxAge) {
		return nil
	}
	return []domain.Finding{domain.RowFinding(a.Kind(), domain.SeverityWarning, r.Index, s.BirthColumn,
		fmt.Sprintf("implausible age %d at admission (born %s, admitted %s)", age, birth.Format(isoDate), admitted.Format(isoDate)))}
}

func (a *DateAnalyzer) checkStay(r domain.Record, parsed map[string]time.Time) []domain.Finding {
	s := a.settings
	if s.LongStayDays <= 0 {
		return nil
	}
	admitted, okA := parsed[s.AdmissionColumn]
	discharged, okD := parsed[s.DischargeColumn]
	if !okA || !okD || discharged.Before(admitted) {
		return nil
	}
	days := dates.DaysBetween(admitted, discharged)
	if days <= s.LongStayDays {
		return nil
	}
	return []domain.Finding{domain.RowFinding(a.Kind(), domain.SeverityInfo, r.Index, s.DischargeColumn,
		fmt.Sprintf("long stay of %d days (more than %d)", days, s.LongStayDays))}
}
