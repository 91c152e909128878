package analyzers

import (
	"fmt"

	"github.com/de-tools/patient-qc/pkg/models/domain"
)

// RequiredColumn is a column that must exist and be filled.
type RequiredColumn struct {
	Name string
	// MaxMissing is the fraction of empty cells tolerated before every empty
	// cell is reported individually.
	MaxMissing float64
}

type ColumnAnalyzer struct {
	required []RequiredColumn
}

func NewColumnAnalyzer(required []RequiredColumn) *ColumnAnalyzer {
	r := make([]RequiredColumn, len(required))
	copy(r, required)
	return &ColumnAnalyzer{required: r}
}

func (a *ColumnAnalyzer) Kind() domain.AnalyzerKind {
	return domain.AnalyzerColumns
}

func (a *ColumnAnalyzer) Analyze(t *domain.Table, _ *Context) ([]domain.Finding, error) {
	var findings []domain.Finding
	for _, req := range a.required {
		if _, ok := t.Lookup(req.Name); !ok {
			findings = append(findings, domain.TableFinding(a.Kind(), domain.SeverityError, req.Name,
				fmt.Sprintf("required column missing: %s", req.Name)))
			continue
		}

		var empty []int
		for _, r := range t.Rows {
			if v, _ := t.Value(r, req.Name); v == "" {
				empty = append(empty, r.Index)
			}
		}
		if len(empty) == 0 {
			continue
		}

		fraction := float64(len(empty)) / float64(len(t.Rows))
		if fraction <= req.MaxMissing {
			findings = append(findings, domain.TableFinding(a.Kind(), domain.SeverityInfo, req.Name,
				fmt.Sprintf("%d of %d values missing (%.1f%%), within the %.1f%% threshold",
					len(empty), len(t.Rows), 100*fraction, 100*req.MaxMissing)))
			continue
		}
		for _, row := range empty {
			findings = append(findings, domain.RowFinding(a.Kind(), domain.SeverityWarning, row, req.Name,
				fmt.Sprintf("missing value in required column %s", req.Name)))
		}
	}
	return findings, nil
}
