package analyzers

import (
	"errors"
	"testing"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAnalyzer(t *testing.T) {
	a, err := NewCategoryAnalyzer([]CategorySettings{
		{Column: "sexo", Allowed: []string{"M", "F"}, Distribution: true},
		{Column: "processo", Pattern: `^[\d\s\-]+$`},
		{Column: "destino"},
	})
	require.NoError(t, err)

	tbl := testTable([]string{"sexo", "processo"},
		domain.Schema{"sexo": domain.ColumnCategory, "processo": domain.ColumnCategory},
		[]string{"M", "123-456"},
		[]string{"F", "12 34"},
		[]string{"x", "AB12"},
		[]string{"F", ""},
		[]string{"", "99"},
	)
	findings, err := a.Analyze(tbl, testContext())
	require.NoError(t, err)

	warn := withSeverity(findings, domain.SeverityWarning)
	require.Len(t, warn, 2)
	assert.Equal(t, []int{2, 2}, rowsOf(warn))
	assert.Equal(t, "sexo", warn[0].Column)
	assert.Contains(t, warn[0].Message, `unexpected value "x"`)
	assert.Equal(t, "processo", warn[1].Column)

	info := withSeverity(findings, domain.SeverityInfo)
	require.Len(t, info, 1)
	assert.Equal(t, "value distribution: F=2, M=1, x=1", info[0].Message)
}

func TestCategoryAnalyzer_Errors(t *testing.T) {
	_, err := NewCategoryAnalyzer([]CategorySettings{{Column: "sexo", Pattern: "[z-a]"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidPattern))

	a, err := NewCategoryAnalyzer([]CategorySettings{{Column: "sexo"}})
	require.NoError(t, err)
	tbl := testTable([]string{"sexo"}, domain.Schema{"sexo": domain.ColumnDate}, []string{"M"})
	_, err = a.Analyze(tbl, testContext())
	assert.True(t, errors.Is(err, domain.ErrColumnType))
}
