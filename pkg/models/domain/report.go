package domain

import "time"

// AnalysisReport is the result of one engine run. It is never mutated once built.
type AnalysisReport struct {
	ID                 string
	Source             string
	Columns            []string
	Filter             YearFilterSpec
	FilterColumn       string
	RowCountTotal      int
	RowCountAnalyzed   int
	ExcludedOutOfRange int
	ExcludedUndated    int
	Analyzers          []AnalyzerKind
	Findings           []Finding
	GeneratedAt        time.Time
}

// ReportSummary holds counts derived from the findings of a report.
type ReportSummary struct {
	BySeverity map[Severity]int
	ByAnalyzer map[AnalyzerKind]int
	Total      int
}

// Excluded is the number of rows dropped by the year filter.
func (r *AnalysisReport) Excluded() int {
	return r.RowCountTotal - r.RowCountAnalyzed
}

// Summary counts findings per severity and per analyzer.
func (r *AnalysisReport) Summary() ReportSummary {
	s := ReportSummary{
		BySeverity: make(map[Severity]int, len(Severities)),
		ByAnalyzer: make(map[AnalyzerKind]int, len(r.Analyzers)),
	}
	for _, sev := range Severities {
		s.BySeverity[sev] = 0
	}
	for _, f := range r.Findings {
		s.BySeverity[f.Severity]++
		s.ByAnalyzer[f.Analyzer]++
		s.Total++
	}
	return s
}

// FindingsFor returns the findings of one analyzer, in report order.
func (r *AnalysisReport) FindingsFor(kind AnalyzerKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Analyzer == kind {
			out = append(out, f)
		}
	}
	return out
}

// Sections returns the analyzers that ran, in report order, followed by any
// kinds that only appear in findings.
func (r *AnalysisReport) Sections() []AnalyzerKind {
	seen := make(map[AnalyzerKind]bool)
	var out []AnalyzerKind
	for _, kind := range AnalyzerKinds {
		if containsKind(r.Analyzers, kind) {
			out = append(out, kind)
			seen[kind] = true
		}
	}
	for _, f := range r.Findings {
		if !seen[f.Analyzer] {
			out = append(out, f.Analyzer)
			seen[f.Analyzer] = true
		}
	}
	return out
}

func containsKind(kinds []AnalyzerKind, k AnalyzerKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
