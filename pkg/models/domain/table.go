package domain

import "strings"

// ColumnType is the declared type of a column, fixed when the table is loaded.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnIdentifier
	ColumnDate
	ColumnCategory
)

func (t ColumnType) String() string {
	switch t {
	case ColumnIdentifier:
		return "identifier"
	case ColumnDate:
		return "date"
	case ColumnCategory:
		return "category"
	default:
		return "text"
	}
}

// Schema maps column names to declared types. Columns not listed are text.
type Schema map[string]ColumnType

// TypeOf returns the declared type of a column.
func (s Schema) TypeOf(name string) ColumnType {
	if t, ok := s[name]; ok {
		return t
	}
	return ColumnText
}

// Column describes one column of a table.
type Column struct {
	Name string
	Type ColumnType
}

// Record is one data row. Cells are positional and aligned with Table.Columns.
type Record struct {
	// Index is the 0-based data row index in the unfiltered table.
	Index int
	// Line is the 1-based line in the source file, header included.
	Line  int
	cells []string
}

// NewRecord creates a record from already cleaned cells.
func NewRecord(index, line int, cells []string) Record {
	c := make([]string, len(cells))
	copy(c, cells)
	return Record{Index: index, Line: line, cells: c}
}

// Cell returns the raw value at a column position, or "" if out of range.
func (r Record) Cell(pos int) string {
	if pos < 0 || pos >= len(r.cells) {
		return ""
	}
	return r.cells[pos]
}

// Table is an immutable in-memory dataset with typed columns.
type Table struct {
	Source  string
	Columns []Column
	Rows    []Record
	index   map[string]int
}

// NewTable builds a table. Column types come from the schema.
func NewTable(source string, header []string, schema Schema, rows []Record) *Table {
	t := &Table{
		Source:  source,
		Columns: make([]Column, 0, len(header)),
		Rows:    rows,
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		t.Columns = append(t.Columns, Column{Name: name, Type: schema.TypeOf(name)})
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}
	return t
}

// WithRows returns a table sharing the columns of t but holding only rows.
func (t *Table) WithRows(rows []Record) *Table {
	return &Table{
		Source:  t.Source,
		Columns: t.Columns,
		Rows:    rows,
		index:   t.index,
	}
}

// Lookup returns the position of a column.
func (t *Table) Lookup(name string) (int, bool) {
	pos, ok := t.index[name]
	return pos, ok
}

// Column returns the column definition by name.
func (t *Table) Column(name string) (Column, bool) {
	pos, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[pos], true
}

// Value returns the trimmed cell of a row for a named column.
// The boolean is false when the column does not exist.
func (t *Table) Value(r Record, name string) (string, bool) {
	pos, ok := t.index[name]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(r.Cell(pos)), true
}

// ColumnNames returns the header in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}
