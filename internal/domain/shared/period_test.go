package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func within(p Period, t time.Time) bool {
	return !t.Before(p.From) && !t.After(p.To)
}

func TestParseDateFilter(t *testing.T) {
	ref := time.Date(2025, 7, 21, 15, 4, 5, 0, time.UTC)

	t.Run("empty selects the current month", func(t *testing.T) {
		p, err := ParseDateFilter("", ref)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), p.From)
		assert.Equal(t, 31, p.To.Day())
		assert.True(t, within(p, ref))
	})

	t.Run("year-month selects that month", func(t *testing.T) {
		p, err := ParseDateFilter("2024-02", ref)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.From)
		assert.Equal(t, 29, p.To.Day())
		assert.False(t, within(p, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("full date selects the day", func(t *testing.T) {
		p, err := ParseDateFilter("2025-07-03", ref)
		require.NoError(t, err)
		assert.True(t, within(p, time.Date(2025, 7, 3, 23, 59, 59, 0, time.UTC)))
		assert.False(t, within(p, time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects other shapes", func(t *testing.T) {
		_, err := ParseDateFilter("July", ref)
		assert.ErrorIs(t, err, ErrInvalidPeriod)

		_, err = ParseDateFilter("2025-13", ref)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestParseRange(t *testing.T) {
	ref := time.Date(2025, 7, 21, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		value    string
		wantFrom time.Time
		wantTo   time.Time
	}{
		{"default is thirty days", "", ref.AddDate(0, 0, -30), ref},
		{"thirty days", "30d", ref.AddDate(0, 0, -30), ref},
		{"sixty days", "60d", ref.AddDate(0, 0, -60), ref},
		{"ninety days", "90d", ref.AddDate(0, 0, -90), ref},
		{"one year", "1y", ref.AddDate(-1, 0, 0), ref},
		{"calendar year", "2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC)},
		{"calendar month", "2025-06", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 23, 59, 59, 999999999, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRange(tt.value, ref)
			require.NoError(t, err)
			assert.True(t, tt.wantFrom.Equal(p.From), "from: got %s want %s", p.From, tt.wantFrom)
			assert.True(t, tt.wantTo.Equal(p.To), "to: got %s want %s", p.To, tt.wantTo)
		})
	}

	t.Run("unknown selector", func(t *testing.T) {
		_, err := ParseRange("7w", ref)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestNewPeriod(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := NewPeriod(from, from.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	p, err := NewPeriod(from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, within(p, from))
}
