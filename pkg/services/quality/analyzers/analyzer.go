// Package analyzers holds the data-quality checks run over a patient table.
// Each analyzer reads the table and returns its own findings; defects in the
// data are findings, while errors mean the analyzer cannot run at all.
package analyzers

import (
	"fmt"
	"regexp"
	"time"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/de-tools/patient-qc/pkg/services/dates"
)

// Analyzer scans a table for one category of defect.
type Analyzer interface {
	Kind() domain.AnalyzerKind
	Analyze(t *domain.Table, actx *Context) ([]domain.Finding, error)
}

// Context carries the values shared by every analyzer of one run.
type Context struct {
	// ReferenceDate is "today" for future-date checks, truncated to a UTC date.
	ReferenceDate time.Time
	Parser        *dates.Parser
}

// NewContext builds a run context. A nil parser uses the default layouts.
func NewContext(reference time.Time, parser *dates.Parser) *Context {
	if parser == nil {
		parser = dates.NewParser(nil)
	}
	ref := reference.UTC()
	return &Context{
		ReferenceDate: time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC),
		Parser:        parser,
	}
}

// checkType fails when a column the analyzer reads is declared with another
// type. Untyped text columns are accepted.
func checkType(t *domain.Table, name string, want domain.ColumnType) error {
	col, ok := t.Column(name)
	if !ok || col.Type == want || col.Type == domain.ColumnText {
		return nil
	}
	return fmt.Errorf("%w: column %q is %s, want %s", domain.ErrColumnType, name, col.Type, want)
}

func compilePattern(op, expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, domain.NewConfigurationError(op, fmt.Errorf("%w: %q: %v", domain.ErrInvalidPattern, expr, err))
	}
	return re, nil
}
