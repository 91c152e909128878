package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"day first dashes", "10-05-2024", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), true},
		{"day first single digits", "1-2-1950", time.Date(1950, 2, 1, 0, 0, 0, 0, time.UTC), true},
		{"iso", "2024-05-10", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), true},
		{"slashes", "10/05/2024", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), true},
		{"padded with spaces", "  2024-05-10 ", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), true},
		{"blank", "   ", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
		{"impossible day", "31-02-2024", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParser_CustomLayouts(t *testing.T) {
	p := NewParser([]string{"2006/01/02"})

	_, ok := p.Parse("10-05-2024")
	assert.False(t, ok)

	got, ok := p.Parse("2024/05/10")
	require.True(t, ok)
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, []string{"2006/01/02"}, p.Layouts())
}

func TestResolveYear(t *testing.T) {
	tests := []struct {
		year, pivot, want int
	}{
		{25, DefaultCenturyPivot, 2025},
		{0, DefaultCenturyPivot, 2000},
		{68, DefaultCenturyPivot, 2068},
		{69, DefaultCenturyPivot, 1969},
		{99, DefaultCenturyPivot, 1999},
		{99, 99, 2099},
		{2019, DefaultCenturyPivot, 2019},
	}
	for _, tt := range tests {
		got, err := ResolveYear(tt.year, tt.pivot)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "year %d pivot %d", tt.year, tt.pivot)
	}

	_, err := ResolveYear(-1, DefaultCenturyPivot)
	assert.Error(t, err)
}

func TestFullYearsBetween(t *testing.T) {
	birth := time.Date(1980, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 43, FullYearsBetween(birth, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 44, FullYearsBetween(birth, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, FullYearsBetween(birth, time.Date(1980, 6, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 9, DaysBetween(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)))
}
