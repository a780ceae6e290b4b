package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{"compact duration", "2h30m", now.Add(2*time.Hour + 30*time.Minute)},
		{"weeks and days", "1w2d", now.AddDate(0, 0, 9)},
		{"long unit names", "30 minutes", now.Add(30 * time.Minute)},
		{"joined with and", "4 months and 2 days", now.AddDate(0, 4, 2)},
		{"years only", "1y", now.AddDate(1, 0, 0)},
		{"seconds", "45 seconds", now.Add(45 * time.Second)},
		{"month first date", "12/25/2026", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"day first date", "25/12/2026", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"dashed date", "12-25-2026", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"month name", "Dec 25, 2026", time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseTime(now, tt.input)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(parsed), "expected %s, got %s", tt.expected, parsed)
		})
	}
}

func TestParseTimeErrors(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	_, err := ParseTime(now, "")
	assert.ErrorIs(t, err, ErrUnparseableTime)

	_, err = ParseTime(now, "next tuesday")
	assert.ErrorIs(t, err, ErrUnparseableTime)

	_, err = ParseTime(now, "01/02/2020")
	assert.ErrorIs(t, err, ErrPastTime)
}
