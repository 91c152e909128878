package domain

import "fmt"

// Severity ranks a finding. Higher values are more severe.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Severities lists all severities from most to least severe.
var Severities = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// AnalyzerKind identifies the analyzer that produced a finding.
type AnalyzerKind string

const (
	AnalyzerIdentifier AnalyzerKind = "identifier"
	AnalyzerDates      AnalyzerKind = "dates"
	AnalyzerColumns    AnalyzerKind = "columns"
	AnalyzerCategories AnalyzerKind = "categories"
)

// AnalyzerKinds is the fixed order analyzers appear in reports.
var AnalyzerKinds = []AnalyzerKind{
	AnalyzerIdentifier,
	AnalyzerDates,
	AnalyzerColumns,
	AnalyzerCategories,
}

// Rank returns the position of the kind in AnalyzerKinds; unknown kinds sort last.
func (k AnalyzerKind) Rank() int {
	for i, kind := range AnalyzerKinds {
		if kind == k {
			return i
		}
	}
	return len(AnalyzerKinds)
}

// Title is the human readable section name of the analyzer.
func (k AnalyzerKind) Title() string {
	switch k {
	case AnalyzerIdentifier:
		return "Identifiers"
	case AnalyzerDates:
		return "Dates"
	case AnalyzerColumns:
		return "Required Columns"
	case AnalyzerCategories:
		return "Categorical Values"
	default:
		return string(k)
	}
}

// ParseAnalyzerKind validates a configured analyzer name.
func ParseAnalyzerKind(s string) (AnalyzerKind, error) {
	for _, kind := range AnalyzerKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown analyzer %q", s)
}

// Finding is a single data-quality issue. A nil Row marks a table-level finding.
type Finding struct {
	Analyzer AnalyzerKind
	Severity Severity
	Row      *int
	Column   string
	Message  string
}

// RowFinding builds a finding attached to a row of the source table.
func RowFinding(kind AnalyzerKind, sev Severity, row int, column, msg string) Finding {
	r := row
	return Finding{Analyzer: kind, Severity: sev, Row: &r, Column: column, Message: msg}
}

// TableFinding builds a finding that concerns the table as a whole.
func TableFinding(kind AnalyzerKind, sev Severity, column, msg string) Finding {
	return Finding{Analyzer: kind, Severity: sev, Column: column, Message: msg}
}

// IsTableLevel reports whether the finding carries no row reference.
func (f Finding) IsTableLevel() bool {
	return f.Row == nil
}

// Line returns the spreadsheet line of the finding's row: header plus 1-based rows.
func (f Finding) Line() int {
	if f.Row == nil {
		return 0
	}
	return *f.Row + 2
}
