package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data_ent", cfg.Filter.DateColumn)
	assert.Equal(t, 68, cfg.Filter.CenturyPivot)
	assert.Equal(t, 50, cfg.Filter.MaxSpan)
	assert.Equal(t, "ID", cfg.Identifier.Column)
	assert.Equal(t, 130, cfg.Dates.MaxAge)
	assert.True(t, cfg.Dates.Statistics)
	assert.Empty(t, cfg.Input.Sheet)
	assert.NotEmpty(t, cfg.Dates.Layouts)
	require.NotEmpty(t, cfg.Columns.Required)
	assert.Equal(t, "ID", cfg.Columns.Required[0].Name)
	require.NotEmpty(t, cfg.Categories)
	assert.Equal(t, []string{"M", "F"}, cfg.Categories[0].Allowed)

	kinds, err := cfg.AnalyzerKinds()
	require.NoError(t, err)
	assert.Equal(t, domain.AnalyzerKinds, kinds)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	// No indentation at top level to keep YAML valid
	path := writeFile(t, "qc.yaml", `log_level: debug
analyzers: [columns, identifier]
filter:
  century_pivot: 30
identifier:
  column: patient_id
columns:
  required:
    - name: patient_id
    - name: nome
      max_missing: 0.1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.Filter.CenturyPivot)
	assert.Equal(t, "patient_id", cfg.Identifier.Column)
	require.Len(t, cfg.Columns.Required, 2)
	assert.InDelta(t, 0.1, cfg.Columns.Required[1].MaxMissing, 1e-9)

	kinds, err := cfg.AnalyzerKinds()
	require.NoError(t, err)
	assert.Equal(t, []domain.AnalyzerKind{domain.AnalyzerIdentifier, domain.AnalyzerColumns}, kinds)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("QC_REPORTS_DIR", "/tmp/qc-reports")
	t.Setenv("QC_FILTER_MAX_SPAN", "10")
	t.Setenv("QC_INPUT_SHEET", "Dados")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/qc-reports", cfg.ReportsDir)
	assert.Equal(t, 10, cfg.Filter.MaxSpan)
	assert.Equal(t, "Dados", cfg.Input.Sheet)
}

func TestLoad_MaxAgeZeroDisablesUpperBound(t *testing.T) {
	cfg, err := Load(writeFile(t, "qc.yaml", "dates:\n  min_age: 1\n  max_age: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Dates.MinAge)
	assert.Zero(t, cfg.Dates.MaxAge)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "log_level: loud\n"},
		{"unknown analyzer", "analyzers: [spelling]\n"},
		{"threshold above one", "columns:\n  required:\n    - name: x\n      max_missing: 2\n"},
		{"pivot too large", "filter:\n  century_pivot: 120\n"},
		{"age bounds inverted", "dates:\n  min_age: 10\n  max_age: 5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "qc.yaml", tt.content))
			require.Error(t, err)
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestAnalyzerKinds_Empty(t *testing.T) {
	cfg := Default()
	cfg.Analyzers = nil
	_, err := cfg.AnalyzerKinds()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoAnalyzers))
}

func TestSchema(t *testing.T) {
	s := Default().Schema()
	assert.Equal(t, domain.ColumnIdentifier, s.TypeOf("ID"))
	assert.Equal(t, domain.ColumnDate, s.TypeOf("data_nasc"))
	assert.Equal(t, domain.ColumnDate, s.TypeOf("data_ent"))
	assert.Equal(t, domain.ColumnCategory, s.TypeOf("sexo"))
	assert.Equal(t, domain.ColumnText, s.TypeOf("nome"))
}

func TestProfileRegistry(t *testing.T) {
	path := writeFile(t, "profiles.ini", `[hospital-b]
identifier = patient_id
admission  = admitted_on
required   = patient_id, admitted_on ,name

[empty]
`)
	reg, err := NewProfileRegistry(path)
	require.NoError(t, err)

	ctx := context.Background()
	names, err := reg.GetProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hospital-b"}, names)

	p, err := reg.GetProfile(ctx, "hospital-b")
	require.NoError(t, err)
	assert.Equal(t, "patient_id", p.IdentifierColumn)
	assert.Equal(t, []string{"patient_id", "admitted_on", "name"}, p.Required)

	_, err = reg.GetProfile(ctx, "empty")
	assert.True(t, domain.IsConfigurationError(err))
	_, err = reg.GetProfile(ctx, "nope")
	assert.Error(t, err)
}

func TestApplyProfile(t *testing.T) {
	cfg := Default()
	cfg.ApplyProfile(domain.ColumnProfile{Name: "b", IdentifierColumn: "patient_id", AdmissionColumn: "admitted_on"})

	assert.Equal(t, "patient_id", cfg.Identifier.Column)
	assert.Equal(t, "admitted_on", cfg.Dates.AdmissionColumn)
	assert.Equal(t, "admitted_on", cfg.Filter.DateColumn)
	assert.Equal(t, "admitted_on", cfg.Identifier.YearColumn)
	assert.Equal(t, "patient_id", cfg.Columns.Required[0].Name)
	assert.Equal(t, "data_nasc", cfg.Dates.BirthColumn)

	assert.Equal(t, "admitted_on", cfg.Columns.Required[3].Name)

	cfg.ApplyProfile(domain.ColumnProfile{Name: "c", Required: []string{"a", "b"}, FilterColumn: "data_alta"})
	assert.Equal(t, []RequiredColumn{{Name: "a"}, {Name: "b"}}, cfg.Columns.Required)
	assert.Equal(t, "data_alta", cfg.Filter.DateColumn)
}

func TestApplyProfile_RenamesRequiredColumns(t *testing.T) {
	cfg := Default()
	cfg.ApplyProfile(domain.ColumnProfile{
		Name:             "b",
		IdentifierColumn: "patient_id",
		AdmissionColumn:  "admitted_on",
		BirthColumn:      "born_on",
	})

	names := make([]string, 0, len(cfg.Columns.Required))
	for _, rc := range cfg.Columns.Required {
		names = append(names, rc.Name)
	}
	assert.Equal(t, []string{"patient_id", "processo", "nome", "admitted_on", "born_on", "sexo"}, names)
	assert.InDelta(t, 0.05, cfg.Columns.Required[4].MaxMissing, 1e-9)
	assert.Equal(t, "born_on", cfg.Dates.BirthColumn)
}

func TestApplyProfile_FilterColumnKeepsAdmissionRename(t *testing.T) {
	cfg := Default()
	cfg.ApplyProfile(domain.ColumnProfile{Name: "d", AdmissionColumn: "admitted_on", FilterColumn: "data_alta"})

	assert.Equal(t, "data_alta", cfg.Filter.DateColumn)
	assert.Equal(t, "admitted_on", cfg.Identifier.YearColumn)
	assert.Equal(t, "admitted_on", cfg.Columns.Required[3].Name)
}
