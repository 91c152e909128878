// Package table materializes CSV and XLSX files into domain tables.
package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/patient-qc/pkg/models/domain"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Options controls how a file becomes a table.
type Options struct {
	// Schema declares the column types; unlisted columns are text.
	Schema domain.Schema
	// Sheet selects the XLSX sheet; empty means the first sheet.
	Sheet string
}

// DetectFormat derives the format from the file extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", domain.NewConfigurationError("load table", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Ext(name)))
	}
}

// Load reads the file at path.
func Load(path string, opts Options) (*domain.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewConfigurationError("load table", err)
	}
	defer f.Close()

	return Read(f, filepath.Base(path), format, opts)
}

// Read parses r in the given format; source names the table in reports.
func Read(r io.Reader, source string, format Format, opts Options) (*domain.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r, opts.Sheet, opts.Schema)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, domain.NewConfigurationError("load table", err)
	}
	return build(source, rows, opts.Schema)
}

func build(source string, rows [][]string, schema domain.Schema) (*domain.Table, error) {
	if len(rows) == 0 || blank(rows[0]) {
		return nil, domain.NewConfigurationError("load table", fmt.Errorf("%w: %s", domain.ErrEmptyInput, source))
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		header[i] = name
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		cells := make([]string, len(header))
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		records = append(records, domain.NewRecord(i, i+2, cells))
	}
	return domain.NewTable(source, header, schema, records), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
