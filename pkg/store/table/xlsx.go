package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// readXLSX returns the formatted cell values of a sheet. Cells of declared
// date columns holding an Excel serial date are rewritten as yyyy-mm-dd so
// they do not depend on the workbook's display format.
func readXLSX(r io.Reader, sheet string, schema domain.Schema) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	var dateCols []int
	for i, name := range rows[0] {
		if schema.TypeOf(strings.TrimSpace(name)) == domain.ColumnDate {
			dateCols = append(dateCols, i)
		}
	}
	if len(dateCols) == 0 {
		return rows, nil
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	for i := 1; i < len(rows) && i < len(raw); i++ {
		for _, col := range dateCols {
			if col >= len(rows[i]) || col >= len(raw[i]) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw[i][col]), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				continue
			}
			rows[i][col] = t.Format("2006-01-02")
		}
	}
	return rows, nil
}
