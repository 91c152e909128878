package domain

import "fmt"

// ColumnProfile renames the logical columns for one data source.
// Empty fields leave the configured column unchanged.
type ColumnProfile struct {
	Name             string
	IdentifierColumn string
	BirthColumn      string
	AdmissionColumn  string
	DischargeColumn  string
	FilterColumn     string
	Required         []string
}

func (c ColumnProfile) String() string {
	return fmt.Sprintf("profile:%s", c.Name)
}
