package analyzers

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
)

// CategorySettings restricts the values of one coded column.
type CategorySettings struct {
	Column string
	// Allowed lists the accepted values; empty accepts any value.
	Allowed []string
	Pattern string
	// Distribution adds a summary of the value counts.
	Distribution bool
}

type categoryRule struct {
	settings CategorySettings
	allowed  map[string]bool
	pattern  *regexp.Regexp
}

type CategoryAnalyzer struct {
	rules []categoryRule
}

func NewCategoryAnalyzer(settings []CategorySettings) (*CategoryAnalyzer, error) {
	a := &CategoryAnalyzer{}
	for _, s := range settings {
		re, err := compilePattern("configure category analyzer", s.Pattern)
		if err != nil {
			return nil, err
		}
		rule := categoryRule{settings: s, pattern: re}
		if len(s.Allowed) > 0 {
			rule.allowed = make(map[string]bool, len(s.Allowed))
			for _, v := range s.Allowed {
				rule.allowed[strings.TrimSpace(v)] = true
			}
		}
		a.rules = append(a.rules, rule)
	}
	return a, nil
}

func (a *CategoryAnalyzer) Kind() domain.AnalyzerKind {
	return domain.AnalyzerCategories
}

func (a *CategoryAnalyzer) Analyze(t *domain.Table, _ *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, rule := range a.rules {
		col := rule.settings.Column
		if _, ok := t.Lookup(col); !ok {
			continue
		}
		if err := checkType(t, col, domain.ColumnCategory); err != nil {
			return nil, err
		}

		counts := make(map[string]int)
		for _, r := range t.Rows {
			v, _ := t.Value(r, col)
			if v == "" {
				continue
			}
			counts[v]++
			if rule.allowed != nil && !rule.allowed[v] {
				findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityWarning, r.Index, col,
					fmt.Sprintf("unexpected value %q, allowed: %s", v, strings.Join(rule.settings.Allowed, ", "))))
				continue
			}
			if rule.pattern != nil && !rule.pattern.MatchString(v) {
				findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityWarning, r.Index, col,
					fmt.Sprintf("invalid value %q", v)))
			}
		}

		if rule.settings.Distribution && len(counts) > 0 {
			findings = append(findings, domain.TableFinding(a.Kind(), domain.SeverityInfo, col,
				"value distribution: "+distribution(counts)))
		}
	}
	return findings, nil
}

// distribution lists values by descending count, ties by value.
func distribution(counts map[string]int) string {
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%s=%d", v, counts[v]))
	}
	return strings.Join(parts, ", ")
}
