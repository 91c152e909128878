package quality

import (
	"errors"
	"testing"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_OrdersFindings(t *testing.T) {
	outputs := []AnalyzerOutput{
		{Kind: domain.AnalyzerColumns, Findings: []domain.Finding{
			domain.RowFinding(domain.AnalyzerColumns, domain.SeverityWarning, 4, "nome", "missing"),
			domain.TableFinding(domain.AnalyzerColumns, domain.SeverityError, "processo", "required column missing"),
			domain.TableFinding(domain.AnalyzerColumns, domain.SeverityInfo, "sexo", "within threshold"),
		}},
		{Kind: domain.AnalyzerIdentifier, Findings: []domain.Finding{
			domain.RowFinding(domain.AnalyzerIdentifier, domain.SeverityWarning, 1, "ID", "malformed"),
			domain.RowFinding(domain.AnalyzerIdentifier, domain.SeverityError, 7, "ID", "duplicate"),
			domain.RowFinding(domain.AnalyzerIdentifier, domain.SeverityError, 3, "ID", "missing"),
			domain.TableFinding(domain.AnalyzerIdentifier, domain.SeverityInfo, "ID", "gaps"),
		}},
	}

	report, err := Aggregate(outputs, RunContext{Source: "s.csv", RowCountTotal: 10, RowCountAnalyzed: 8})
	require.NoError(t, err)

	var got []string
	for _, f := range report.Findings {
		got = append(got, string(f.Analyzer)+"/"+f.Severity.String()+"/"+f.Message)
	}
	assert.Equal(t, []string{
		"identifier/error/missing",
		"identifier/error/duplicate",
		"identifier/warning/malformed",
		"identifier/info/gaps",
		"columns/error/required column missing",
		"columns/warning/missing",
		"columns/info/within threshold",
	}, got)
	assert.Equal(t, []domain.AnalyzerKind{domain.AnalyzerIdentifier, domain.AnalyzerColumns}, report.Analyzers)
	assert.Equal(t, 2, report.Excluded())

	summary := report.Summary()
	assert.Equal(t, 7, summary.Total)
	assert.Equal(t, 3, summary.BySeverity[domain.SeverityError])
	assert.Equal(t, 4, summary.ByAnalyzer[domain.AnalyzerIdentifier])
}

func TestAggregate_TableLevelBeforeRows(t *testing.T) {
	findings := []domain.Finding{
		domain.RowFinding(domain.AnalyzerColumns, domain.SeverityError, 0, "a", "row"),
		domain.TableFinding(domain.AnalyzerColumns, domain.SeverityError, "b", "table"),
	}
	SortFindings(findings)
	assert.True(t, findings[0].IsTableLevel())
}

func TestAggregate_AnalyzerFault(t *testing.T) {
	cause := errors.New("boom")
	_, err := Aggregate([]AnalyzerOutput{
		{Kind: domain.AnalyzerIdentifier},
		{Kind: domain.AnalyzerDates, Err: cause},
	}, RunContext{})

	require.Error(t, err)
	var aerr *domain.AggregationError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, domain.AnalyzerDates, aerr.Analyzer)
	assert.True(t, errors.Is(err, cause))
}
