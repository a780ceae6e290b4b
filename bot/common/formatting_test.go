package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 day", Plural("1 day(s)", 1))
	assert.Equal(t, "3 days", Plural("3 day(s)", 3))
	assert.Equal(t, "0 winners are", Plural("0 winner(s) (is/are)", 0))
	assert.Equal(t, "1 winner is", Plural("1 winner(s) (is/are)", 1))
}

func TestHumanJoin(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		expected string
	}{
		{"empty", nil, ""},
		{"single", []string{"a"}, "a"},
		{"pair", []string{"a", "b"}, "a and b"},
		{"many", []string{"a", "b", "c"}, "a, b and c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanJoin(tt.items, "and"))
		})
	}
}

func TestHumanTimedelta(t *testing.T) {
	source := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		t        time.Time
		accuracy int
		expected string
	}{
		{"now", source.Add(400 * time.Millisecond), 3, "now"},
		{"future minutes", source.Add(30 * time.Minute), 3, "30 minutes"},
		{"past", source.Add(-90 * time.Second), 3, "1 minute and 30 seconds ago"},
		{"weeks and days", source.AddDate(0, 0, 9), 3, "1 week and 2 days"},
		{"calendar months", source.AddDate(0, 4, 2), 3, "4 months and 2 days"},
		{"accuracy truncates", source.AddDate(1, 2, 3).Add(4 * time.Hour), 2, "1 year and 2 months"},
		{"all units", source.AddDate(1, 0, 1).Add(time.Hour + time.Minute + time.Second), 0, "1 year, 1 day, 1 hour, 1 minute and 1 second"},
		{"borrows across month end", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), 3, "2 weeks, 3 days and 12 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanTimedelta(tt.t, source, tt.accuracy))
		})
	}
}

func TestFormatDiscordMessageLink(t *testing.T) {
	assert.Equal(t, "https://discord.com/channels/1/2/3", FormatDiscordMessageLink("1", "2", "3"))
	assert.Equal(t, "https://discord.com/channels/@me/2/3", FormatDiscordMessageLink("", "2", "3"))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1,000", FormatCount(1000))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "-12,345", FormatCount(-12345))
}
