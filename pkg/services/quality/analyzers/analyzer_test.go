package analyzers

import (
	"time"

	"github.com/de-tools/patient-qc/pkg/models/domain"
)

var reference = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func testTable(header []string, schema domain.Schema, rows ...[]string) *domain.Table {
	records := make([]domain.Record, 0, len(rows))
	for i, cells := range rows {
		records = append(records, domain.NewRecord(i, i+2, cells))
	}
	return domain.NewTable("test.csv", header, schema, records)
}

func testContext() *Context {
	return NewContext(reference, nil)
}

func rowsOf(findings []domain.Finding) []int {
	var rows []int
	for _, f := range findings {
		if f.Row != nil {
			rows = append(rows, *f.Row)
		}
	}
	return rows
}

func withSeverity(findings []domain.Finding, sev domain.Severity) []domain.Finding {
	var out []domain.Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}
