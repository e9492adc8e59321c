package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	h, m, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	h, m, err = ParseTimeOfDay("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 59, m)

	for _, bad := range []string{"", "9:30", "24:00", "12:60", "12-30", "ab:cd", "12:3"} {
		_, _, err := ParseTimeOfDay(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestMinutesBetween(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"09:00", "11:00", 120},
		{"19:00", "20:00", 60},
		{"23:30", "00:30", 60},
		{"00:00", "00:00", 1440}, // same time means a full-day rollover
		{"12:00", "11:59", 1439},
		{"00:00", "23:59", 1439},
	}
	for _, tt := range tests {
		got, err := MinutesBetween(tt.start, tt.end)
		require.NoError(t, err, "%s-%s", tt.start, tt.end)
		assert.Equal(t, tt.want, got, "%s-%s", tt.start, tt.end)
	}
}

func TestMinutesBetweenTotalAndPositive(t *testing.T) {
	// Every valid pair must produce a positive duration.
	times := []string{"00:00", "06:15", "12:00", "18:45", "23:59"}
	for _, s := range times {
		for _, e := range times {
			got, err := MinutesBetween(s, e)
			require.NoError(t, err)
			assert.Greater(t, got, 0, "%s-%s", s, e)
			assert.LessOrEqual(t, got, 1440, "%s-%s", s, e)
		}
	}
}

func TestWeekStart(t *testing.T) {
	// 2024-01-15 is a Monday.
	monday := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		day := monday.AddDate(0, 0, d)
		assert.Equal(t, monday, WeekStart(day), "day %d of week", d)
	}

	// Idempotent.
	got := WeekStart(monday.AddDate(0, 0, 3))
	assert.Equal(t, got, WeekStart(got))
}

func TestWeekStartStripsClock(t *testing.T) {
	d := time.Date(2024, 1, 17, 22, 45, 12, 0, time.UTC)
	got := WeekStart(d)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestWeekKey(t *testing.T) {
	assert.Equal(t, "2024-01-15", WeekKey("2024-01-15"))
	assert.Equal(t, "2024-01-15", WeekKey("2024-01-21")) // Sunday same week
	assert.Equal(t, "2024-01-22", WeekKey("2024-01-22"))
	// Unparseable dates group under themselves.
	assert.Equal(t, "not-a-date", WeekKey("not-a-date"))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", FormatElapsed(0))
	assert.Equal(t, "00:00", FormatElapsed(-5000))
	assert.Equal(t, "00:59", FormatElapsed(59_999))
	assert.Equal(t, "01:00", FormatElapsed(60_000))
	assert.Equal(t, "25:05", FormatElapsed(25*60_000+5_000))
	// Minutes are unbounded.
	assert.Equal(t, "120:00", FormatElapsed(120*60_000))
}
