package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *domain.AnalysisReport {
	return &domain.AnalysisReport{
		ID:                 "0b6c1c9e-6f3a-4a57-9a43-5f7d0f1f2a10",
		Source:             "patients.csv",
		Filter:             domain.YearRange(20, 25),
		FilterColumn:       "data_ent",
		RowCountTotal:      10,
		RowCountAnalyzed:   7,
		ExcludedOutOfRange: 2,
		ExcludedUndated:    1,
		Analyzers:          []domain.AnalyzerKind{domain.AnalyzerIdentifier, domain.AnalyzerDates, domain.AnalyzerColumns},
		Findings: []domain.Finding{
			domain.RowFinding(domain.AnalyzerIdentifier, domain.SeverityError, 2, "ID", `duplicate identifier "A1" at row 2, first seen at row 0`),
			domain.RowFinding(domain.AnalyzerIdentifier, domain.SeverityWarning, 5, "ID", `malformed identifier "x|y"`),
			domain.TableFinding(domain.AnalyzerIdentifier, domain.SeverityInfo, "ID", "prefix 24: 1 missing serials"),
			domain.RowFinding(domain.AnalyzerColumns, domain.SeverityWarning, 3, "nome", "missing value in required column nome"),
		},
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func render(t *testing.T, report *domain.AnalysisReport) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf).Handle(report))
	return buf.String()
}

func TestReporter_Markdown(t *testing.T) {
	out := render(t, sampleReport())

	assert.True(t, strings.HasPrefix(out, "# Patient Data Quality Report\n"))
	assert.Contains(t, out, "- **Source:** patients.csv")
	assert.Contains(t, out, "- **Filter:** 20-25 (column `data_ent`)")
	assert.Contains(t, out, "- **Generated:** 2026-03-01 09:30:00 UTC")
	assert.Contains(t, out, "10 total, 7 analyzed, 3 excluded (2 out of range, 1 undated)")
	assert.Contains(t, out, "| Error     | 1     |")
	assert.Contains(t, out, "| Warning   | 2     |")
	assert.Contains(t, out, "| **Total** | 4     |")
	assert.Contains(t, out, `malformed identifier "x\|y"`)
	assert.Contains(t, out, "## Dates\n\n_No findings._")

	ids := out[strings.Index(out, "## Identifiers"):strings.Index(out, "## Dates")]
	errAt := strings.Index(ids, "| Error ")
	warnAt := strings.Index(ids, "| Warning ")
	infoAt := strings.Index(ids, "| Info ")
	require.True(t, errAt > 0 && warnAt > 0 && infoAt > 0)
	assert.Less(t, errAt, warnAt)
	assert.Less(t, warnAt, infoAt)
	assert.Contains(t, ids, "2 (line 4)")
}

func TestReporter_MarkdownIsDeterministic(t *testing.T) {
	report := sampleReport()
	assert.Equal(t, render(t, report), render(t, report))
}

func TestAlignTable(t *testing.T) {
	lines := alignTable([][]string{{"a", "Name"}, {"1", "Joao"}, {"22", "名前"}})
	assert.Equal(t, []string{
		"| a   | Name |",
		"| --- | ---- |",
		"| 1   | Joao |",
		"| 22  | 名前 |",
	}, lines)
}

func TestWriteMarkdownFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	report := sampleReport()

	path, err := WriteMarkdownFile(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quality_report_20260301_093000.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, render(t, report), string(data))
}

func TestWriteMarkdownFile_KeepsExistingReport(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport()

	existing := filepath.Join(dir, FileName(report))
	require.NoError(t, os.WriteFile(existing, []byte("earlier run"), 0o644))

	_, err := WriteMarkdownFile(dir, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "earlier run", string(data))
}

func TestWriteMarkdownFile_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := WriteMarkdownFile(blocker, sampleReport())
	assert.Error(t, err)
}
