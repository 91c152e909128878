package analyzers

import (
	"testing"

	"github.com/de-tools/patient-qc/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nomeTable builds 100 rows with the first `missing` names blank.
func nomeTable(missing int) *domain.Table {
	rows := make([][]string, 100)
	for i := range rows {
		name := "Maria"
		if i < missing {
			name = ""
		}
		rows[i] = []string{name}
	}
	return testTable([]string{"nome"}, nil, rows...)
}

func TestColumnAnalyzer_Threshold(t *testing.T) {
	a := NewColumnAnalyzer([]RequiredColumn{{Name: "nome", MaxMissing: 0.05}})

	t.Run("within threshold", func(t *testing.T) {
		findings, err := a.Analyze(nomeTable(3), testContext())
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, domain.SeverityInfo, findings[0].Severity)
		assert.True(t, findings[0].IsTableLevel())
		assert.Contains(t, findings[0].Message, "3 of 100")
		assert.Empty(t, withSeverity(findings, domain.SeverityWarning))
	})

	t.Run("above threshold", func(t *testing.T) {
		findings, err := a.Analyze(nomeTable(10), testContext())
		require.NoError(t, err)
		assert.Len(t, withSeverity(findings, domain.SeverityWarning), 10)
		assert.Empty(t, withSeverity(findings, domain.SeverityInfo))
	})
}

func TestColumnAnalyzer_DefaultThresholdFlagsEveryRow(t *testing.T) {
	a := NewColumnAnalyzer([]RequiredColumn{{Name: "nome"}})
	findings, err := a.Analyze(nomeTable(1), testContext())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityWarning, findings[0].Severity)
	assert.Equal(t, 0, *findings[0].Row)
}

func TestColumnAnalyzer_MissingColumn(t *testing.T) {
	a := NewColumnAnalyzer([]RequiredColumn{{Name: "processo"}, {Name: "nome"}})
	findings, err := a.Analyze(nomeTable(0), testContext())
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.SeverityError, findings[0].Severity)
	assert.True(t, findings[0].IsTableLevel())
	assert.Equal(t, "processo", findings[0].Column)
}
