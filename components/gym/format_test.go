package gym

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormatDateAndTime(t *testing.T) {
	ts := time.Date(2026, time.January, 5, 14, 7, 0, 0, time.UTC)

	assert.Equal(t, "Jan 05, 2026", FormatDate(ts))
	assert.Equal(t, "02:07 PM", FormatTime(ts))
	assert.Equal(t, "Jan 05, 2026 02:07 PM", FormatDateTime(ts))
	assert.Equal(t, NotAvailable, FormatDate(time.Time{}))
	assert.Equal(t, NotAvailable, FormatTime(time.Time{}))
}

func TestFormatDurationBranches(t *testing.T) {
	start := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		end  time.Time
		want string
	}{
		{"seconds", start.Add(42 * time.Second), "42s"},
		{"minutes", start.Add(5*time.Minute + 59*time.Second), "5m"},
		{"hours keep zero minutes", start.Add(2*time.Hour + 30*time.Second), "2h 0m"},
		{"hours and minutes", start.Add(3*time.Hour + 15*time.Minute), "3h 15m"},
		{"negative clamps", start.Add(-time.Hour), "0s"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDurationAt(start, tc.end, time.Time{}))
		})
	}
}

func TestFormatDurationMissingEndUsesNow(t *testing.T) {
	start := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	now := start.Add(90 * time.Minute)

	assert.Equal(t, "1h 30m", FormatDurationAt(start, time.Time{}, now))
	assert.Equal(t, NotAvailable, FormatDurationAt(time.Time{}, now, now))
}

var durationShape = regexp.MustCompile(`^(\d+h \d+m|\d+m|\d+s)$`)

func TestFormatDurationSingleBranchProperty(t *testing.T) {
	start := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	rapid.Check(t, func(t *rapid.T) {
		seconds := rapid.Int64Range(0, 10*24*3600).Draw(t, "seconds")
		out := FormatDurationAt(start, start.Add(time.Duration(seconds)*time.Second), time.Time{})

		if !durationShape.MatchString(out) {
			t.Fatalf("unexpected shape %q for %d seconds", out, seconds)
		}
		if strings.Contains(out, "h") && strings.Contains(out, "s") {
			t.Fatalf("hours mixed with seconds: %q", out)
		}
		if seconds >= 3600 != strings.Contains(out, "h") {
			t.Fatalf("hour branch mismatch for %d seconds: %q", seconds, out)
		}
	})
}

func TestFormatDurationNeverNegativeProperty(t *testing.T) {
	start := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	rapid.Check(t, func(t *rapid.T) {
		back := rapid.Int64Range(1, 365*24*3600).Draw(t, "back")
		out := FormatDurationAt(start, start.Add(-time.Duration(back)*time.Second), time.Time{})
		if out != "0s" {
			t.Fatalf("expected 0s, got %q", out)
		}
	})
}

func TestFormatHoursMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatHoursMinutes(0))
	assert.Equal(t, "0m", FormatHoursMinutes(59))
	assert.Equal(t, "30m", FormatHoursMinutes(1800))
	assert.Equal(t, "1h 0m", FormatHoursMinutes(3600))
	assert.Equal(t, "2h 5m", FormatHoursMinutes(2*3600+5*60+59))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "Rs 0", FormatCurrency(0))
	assert.Equal(t, "Rs 1,500", FormatCurrency(1500))
	assert.Equal(t, "Rs 1,234,568", FormatCurrency(1234567.5))
	assert.Equal(t, "Rs 0", FormatCurrency(float64NaN()))
}

func float64NaN() float64 {
	zero := 0.0
	return zero / zero
}

func TestCalculateAgeAnniversary(t *testing.T) {
	today := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

	age, ok := CalculateAge(time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC), today)
	require.True(t, ok)
	assert.Equal(t, 1, age)

	age, ok = CalculateAge(time.Date(1990, time.June, 16, 0, 0, 0, 0, time.UTC), today)
	require.True(t, ok)
	assert.Equal(t, 35, age)

	_, ok = CalculateAge(time.Time{}, today)
	assert.False(t, ok)
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, "badge-success", StatusColor(StatusActive))
	assert.Equal(t, "badge-warning", StatusColor(StatusOnHold))
	assert.Equal(t, DefaultStatusColor, StatusColor("Frozen"))
	assert.Equal(t, DefaultStatusColor, StatusColor(""))
}

func TestDaysUntilBoundaries(t *testing.T) {
	today := time.Date(2026, time.March, 29, 23, 30, 0, 0, time.UTC)

	days, ok := DaysUntilAt(today.Add(-23*time.Hour), today)
	require.True(t, ok)
	assert.Equal(t, 0, days)

	days, _ = DaysUntilAt(time.Date(2026, time.April, 5, 0, 1, 0, 0, time.UTC), today)
	assert.Equal(t, 7, days)

	_, ok = DaysUntilAt(time.Time{}, today)
	assert.False(t, ok)

	assert.True(t, IsExpiringSoonAt(today, today, 7))
	assert.True(t, IsExpiringSoonAt(today.AddDate(0, 0, 7), today, 7))
	assert.False(t, IsExpiringSoonAt(today.AddDate(0, 0, 8), today, 7))
	assert.False(t, IsExpiringSoonAt(today.AddDate(0, 0, -1), today, 7))
}

func TestDaysUntilIgnoresTimeOfDayProperty(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, loc)
	rapid.Check(t, func(t *rapid.T) {
		offset := rapid.IntRange(-400, 400).Draw(t, "offset")
		todayMinutes := rapid.IntRange(0, 24*60-1).Draw(t, "todayMinutes")
		dateMinutes := rapid.IntRange(0, 22*60).Draw(t, "dateMinutes")

		today := base.Add(time.Duration(todayMinutes) * time.Minute)
		target := time.Date(2026, time.January, 1+offset, 0, 0, 0, 0, loc).Add(time.Duration(dateMinutes) * time.Minute)

		days, ok := DaysUntilAt(target, today)
		if !ok || days != offset {
			t.Fatalf("expected %d days, got %d (ok=%v)", offset, days, ok)
		}
	})
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "12 AM", HourLabel(0))
	assert.Equal(t, "9 AM", HourLabel(9))
	assert.Equal(t, "12 PM", HourLabel(12))
	assert.Equal(t, "11 PM", HourLabel(23))
}
