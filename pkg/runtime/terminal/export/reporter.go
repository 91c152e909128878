package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/mattn/go-runewidth"
)

// FileLayout is the timestamp layout embedded in report file names.
const FileLayout = "20060102_150405"

type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

type markdownSection struct {
	Title string
	Lines []string
}

type markdownView struct {
	*domain.AnalysisReport
	SummaryTable []string
	Blocks       []markdownSection
}

// Handle renders the report as a markdown document. The output depends only on the report.
func (c *Reporter) Handle(report *domain.AnalysisReport) error {
	funcMap := template.FuncMap{
		"join": func(kinds []domain.AnalyzerKind) string {
			names := make([]string, 0, len(kinds))
			for _, k := range kinds {
				names = append(names, string(k))
			}
			return strings.Join(names, ", ")
		},
	}

	tmpl := `# Patient Data Quality Report

## Metadata

- **Report ID:** {{.ID}}
- **Source:** {{.Source}}
- **Filter:** {{.Filter}}{{if not .Filter.IsAll}} (column ` + "`{{.FilterColumn}}`" + `){{end}}
- **Generated:** {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
- **Rows:** {{.RowCountTotal}} total, {{.RowCountAnalyzed}} analyzed, {{.Excluded}} excluded ({{.ExcludedOutOfRange}} out of range, {{.ExcludedUndated}} undated)
- **Analyzers:** {{join .Analyzers}}

## Summary

{{range .SummaryTable}}{{.}}
{{end}}{{range .Blocks}}
## {{.Title}}

{{range .Lines}}{{.}}
{{else}}_No findings._
{{end}}{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, newMarkdownView(report))
}

func newMarkdownView(report *domain.AnalysisReport) markdownView {
	summary := report.Summary()
	rows := [][]string{{"Severity", "Count"}}
	for _, sev := range domain.Severities {
		rows = append(rows, []string{capitalize(sev.String()), strconv.Itoa(summary.BySeverity[sev])})
	}
	rows = append(rows, []string{"**Total**", strconv.Itoa(summary.Total)})

	view := markdownView{AnalysisReport: report, SummaryTable: alignTable(rows)}
	for _, kind := range report.Sections() {
		section := markdownSection{Title: kind.Title()}
		findings := report.FindingsFor(kind)
		if len(findings) > 0 {
			table := [][]string{{"Severity", "Row", "Column", "Message"}}
			for _, f := range findings {
				table = append(table, []string{capitalize(f.Severity.String()), rowLabel(f), escape(f.Column), escape(f.Message)})
			}
			section.Lines = alignTable(table)
		}
		view.Blocks = append(view.Blocks, section)
	}
	return view
}

// alignTable formats rows as a markdown table, the first row being the
// header. Cells are padded to the display width of the widest cell.
func alignTable(rows [][]string) []string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString(" |")
		}
		return sb.String()
	}

	out := make([]string, 0, len(rows)+1)
	out = append(out, line(rows[0]))
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	out = append(out, line(sep))
	for _, row := range rows[1:] {
		out = append(out, line(row))
	}
	return out
}

func rowLabel(f domain.Finding) string {
	if f.IsTableLevel() {
		return "-"
	}
	return fmt.Sprintf("%d (line %d)", *f.Row, f.Line())
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FileName is the markdown file name for a report generated at the report's timestamp.
func FileName(report *domain.AnalysisReport) string {
	return fmt.Sprintf("quality_report_%s.md", report.GeneratedAt.UTC().Format(FileLayout))
}

// WriteMarkdownFile renders the report and writes it to dir in one write.
// It returns the path of the written file. An existing report with the same
// name is left untouched and the returned error wraps os.ErrExist.
func WriteMarkdownFile(dir string, report *domain.AnalysisReport) (path string, err error) {
	var buf bytes.Buffer
	if err := NewReporter(&buf).Handle(report); err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	path = filepath.Join(dir, FileName(report))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
