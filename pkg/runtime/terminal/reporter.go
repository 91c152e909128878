package terminal

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/template"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const (
	lineWidth   = 6
	columnWidth = 12
)

// Reporter prints quality reports to the console, one block per analyzer
type Reporter struct {
	writer io.Writer
	colors map[domain.Severity]*color.Color
}

// NewReporter creates a new console reporter. Colors are only emitted when useColor is set.
func NewReporter(writer io.Writer, useColor bool) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	colors := map[domain.Severity]*color.Color{
		domain.SeverityError:   color.New(color.FgRed, color.Bold),
		domain.SeverityWarning: color.New(color.FgYellow),
		domain.SeverityInfo:    color.New(color.FgCyan),
	}
	for _, c := range colors {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &Reporter{writer: writer, colors: colors}
}

type consoleSection struct {
	Title    string
	Findings []domain.Finding
}

type consoleView struct {
	*domain.AnalysisReport
	Blocks []consoleSection
	Totals domain.ReportSummary
}

func (c *Reporter) Handle(report *domain.AnalysisReport) error {
	funcMap := template.FuncMap{
		"marker": c.marker,
		"where": func(f domain.Finding) string {
			if f.IsTableLevel() {
				return runewidth.FillRight("table", lineWidth)
			}
			return runewidth.FillRight("line "+strconv.Itoa(f.Line()), lineWidth)
		},
		"pad": func(s string) string {
			return runewidth.FillRight(runewidth.Truncate(s, columnWidth, "…"), columnWidth)
		},
		"errors":   func(s domain.ReportSummary) int { return s.BySeverity[domain.SeverityError] },
		"warnings": func(s domain.ReportSummary) int { return s.BySeverity[domain.SeverityWarning] },
		"infos":    func(s domain.ReportSummary) int { return s.BySeverity[domain.SeverityInfo] },
	}

	tmpl := `
Quality report for {{.Source}}
Filter: {{.Filter}}{{if not .Filter.IsAll}} on {{.FilterColumn}}{{end}}  Generated: {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}  Report: {{.ID}}
{{range .Blocks}}
=== {{.Title}} ({{len .Findings}}) ===
{{range .Findings}}{{marker .Severity}} {{where .}} {{pad .Column}} {{.Message}}
{{else}}no findings
{{end}}{{end}}
total={{.RowCountTotal}} analyzed={{.RowCountAnalyzed}} excluded={{.Excluded}} (undated={{.ExcludedUndated}}) errors={{errors .Totals}} warnings={{warnings .Totals}} info={{infos .Totals}}
`
	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	view := consoleView{AnalysisReport: report, Totals: report.Summary()}
	for _, kind := range report.Sections() {
		view.Blocks = append(view.Blocks, consoleSection{Title: kind.Title(), Findings: report.FindingsFor(kind)})
	}
	return t.Execute(c.writer, view)
}

func (c *Reporter) marker(sev domain.Severity) string {
	var label string
	switch sev {
	case domain.SeverityError:
		label = "[ERROR]"
	case domain.SeverityWarning:
		label = "[WARN ]"
	default:
		label = "[INFO ]"
	}
	if col, ok := c.colors[sev]; ok {
		return col.Sprint(label)
	}
	return label
}
