package adapters

import (
	"github.com/de-tools/patient-qc/pkg/models/api"
	"github.com/de-tools/patient-qc/pkg/models/domain"
)

func MapFindingDomainToApi(f domain.Finding) api.Finding {
	return api.Finding{
		Analyzer: string(f.Analyzer),
		Severity: f.Severity.String(),
		Row:      f.Row,
		Line:     f.Line(),
		Column:   f.Column,
		Message:  f.Message,
	}
}

func MapSummaryDomainToApi(s domain.ReportSummary) api.Summary {
	out := api.Summary{
		BySeverity: make(map[string]int, len(s.BySeverity)),
		ByAnalyzer: make(map[string]int, len(s.ByAnalyzer)),
		Total:      s.Total,
	}
	for sev, n := range s.BySeverity {
		out.BySeverity[sev.String()] = n
	}
	for kind, n := range s.ByAnalyzer {
		out.ByAnalyzer[string(kind)] = n
	}
	return out
}

func MapAnalyzerDomainToApi(k domain.AnalyzerKind) api.Analyzer {
	return api.Analyzer{Kind: string(k), Title: k.Title()}
}

func MapReportDomainToApi(r *domain.AnalysisReport) api.Report {
	findings := make([]api.Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		findings = append(findings, MapFindingDomainToApi(f))
	}
	analyzers := make([]string, 0, len(r.Analyzers))
	for _, k := range r.Analyzers {
		analyzers = append(analyzers, string(k))
	}
	return api.Report{
		ID:           r.ID,
		Source:       r.Source,
		Columns:      r.Columns,
		Filter:       r.Filter.String(),
		FilterColumn: r.FilterColumn,
		Rows: api.RowCounts{
			Total:              r.RowCountTotal,
			Analyzed:           r.RowCountAnalyzed,
			Excluded:           r.Excluded(),
			ExcludedOutOfRange: r.ExcludedOutOfRange,
			ExcludedUndated:    r.ExcludedUndated,
		},
		Analyzers:   analyzers,
		Summary:     MapSummaryDomainToApi(r.Summary()),
		Findings:    findings,
		GeneratedAt: r.GeneratedAt,
	}
}
