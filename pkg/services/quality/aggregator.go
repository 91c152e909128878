package quality

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"github.com/de-tools/patient-qc/pkg/models/domain"
)

// AnalyzerOutput is what one analyzer produced. Err is set when the analyzer
// could not run, which is different from finding defects.
type AnalyzerOutput struct {
	Kind     domain.AnalyzerKind
	Findings []domain.Finding
	Err      error
}

// RunContext holds the facts about a run that the report records besides findings.
type RunContext struct {
	ID                 string
	Source             string
	Columns            []string
	Filter             domain.YearFilterSpec
	FilterColumn       string
	RowCountTotal      int
	RowCountAnalyzed   int
	ExcludedOutOfRange int
	ExcludedUndated    int
	GeneratedAt        time.Time
}

// Aggregate merges analyzer outputs into a report. Any analyzer fault fails
// the whole aggregation with an AggregationError per faulty analyzer.
func Aggregate(outputs []AnalyzerOutput, rc RunContext) (*domain.AnalysisReport, error) {
	var errs []error
	total := 0
	for _, out := range outputs {
		if out.Err != nil {
			errs = append(errs, &domain.AggregationError{Analyzer: out.Kind, Err: out.Err})
		}
		total += len(out.Findings)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	findings := make([]domain.Finding, 0, total)
	kinds := make([]domain.AnalyzerKind, 0, len(outputs))
	for _, out := range outputs {
		findings = append(findings, out.Findings...)
		kinds = append(kinds, out.Kind)
	}
	SortFindings(findings)
	slices.SortStableFunc(kinds, func(a, b domain.AnalyzerKind) int {
		return cmp.Compare(a.Rank(), b.Rank())
	})

	return &domain.AnalysisReport{
		ID:                 rc.ID,
		Source:             rc.Source,
		Columns:            rc.Columns,
		Filter:             rc.Filter,
		FilterColumn:       rc.FilterColumn,
		RowCountTotal:      rc.RowCountTotal,
		RowCountAnalyzed:   rc.RowCountAnalyzed,
		ExcludedOutOfRange: rc.ExcludedOutOfRange,
		ExcludedUndated:    rc.ExcludedUndated,
		Analyzers:          kinds,
		Findings:           findings,
		GeneratedAt:        rc.GeneratedAt,
	}, nil
}

// SortFindings orders findings by analyzer, severity (most severe first),
// table-level before row-level, row, column and message.
func SortFindings(findings []domain.Finding) {
	slices.SortStableFunc(findings, compareFindings)
}

func compareFindings(a, b domain.Finding) int {
	if c := cmp.Compare(a.Analyzer.Rank(), b.Analyzer.Rank()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Analyzer, b.Analyzer); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
		return c
	}
	switch {
	case a.Row == nil && b.Row != nil:
		return -1
	case a.Row != nil && b.Row == nil:
		return 1
	case a.Row != nil && b.Row != nil:
		if c := cmp.Compare(*a.Row, *b.Row); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Column, b.Column); c != 0 {
		return c
	}
	return cmp.Compare(a.Message, b.Message)
}
