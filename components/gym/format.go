package gym

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// NotAvailable is rendered whenever a value is missing.
const NotAvailable = "N/A"

// CurrencyPrefix is prepended to every formatted amount.
const CurrencyPrefix = "Rs "

// DefaultExpiryWindowDays is the look-ahead used for "expiring soon" checks.
const DefaultExpiryWindowDays = 7

const (
	dateLayout     = "Jan 02, 2006"
	timeLayout     = "03:04 PM"
	dateTimeLayout = dateLayout + " " + timeLayout
)

// FormatDate renders t as "Jan 02, 2006". Zero times render as N/A.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(dateLayout)
}

// FormatDateTime renders t as "Jan 02, 2006 03:04 PM".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(dateTimeLayout)
}

// FormatTime renders the 12-hour clock time of t.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(timeLayout)
}

// FormatDuration renders the elapsed time between start and end. A zero end
// means "until now".
func FormatDuration(start, end time.Time) string {
	return FormatDurationAt(start, end, time.Now())
}

// FormatDurationAt is FormatDuration with an explicit clock reading.
func FormatDurationAt(start, end, now time.Time) string {
	if start.IsZero() {
		return NotAvailable
	}
	if end.IsZero() {
		end = now
	}
	seconds := int64(end.Sub(start) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", seconds%60)
	}
}

// FormatHoursMinutes renders a whole-second duration without second
// granularity: "{h}h {m}m" from one hour up, "{m}m" below.
func FormatHoursMinutes(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatCurrency renders amount rounded to whole units with thousands separators.
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return CurrencyPrefix + humanize.Comma(int64(math.Round(amount)))
}

// RelativeTime renders t relative to now ("3 days ago", "2 hours from now").
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return humanize.Time(t)
}

// CalculateAge returns the age in whole years on today. ok is false when dob
// is missing.
func CalculateAge(dob, today time.Time) (age int, ok bool) {
	if dob.IsZero() {
		return 0, false
	}
	age = today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age, true
}

// AgeLabel renders the age for display, or N/A.
func AgeLabel(dob time.Time) string {
	age, ok := CalculateAge(dob, time.Now())
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%d", age)
}

var statusColors = map[string]string{
	StatusActive:   "badge-success",
	StatusExpired:  "badge-danger",
	StatusOnHold:   "badge-warning",
	StatusInactive: "badge-gray",
	PaymentPaid:    "badge-success",
	PaymentPending: "badge-warning",
	PaymentPartial: "badge-warning",
	PaymentFailed:  "badge-danger",
}

// DefaultStatusColor is used for unknown statuses.
const DefaultStatusColor = "badge-gray"

// StatusColor maps a status to its display token.
func StatusColor(status string) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return DefaultStatusColor
}

// DaysUntil returns whole days from today to date, both taken at midnight.
func DaysUntil(date time.Time) (int, bool) {
	return DaysUntilAt(date, time.Now())
}

// DaysUntilAt is DaysUntil with an explicit "today". Both operands are reduced
// to their calendar date in today's location before subtracting, so neither
// time of day nor DST transitions skew the result.
func DaysUntilAt(date, today time.Time) (int, bool) {
	if date.IsZero() {
		return 0, false
	}
	loc := today.Location()
	return int(civilDay(date.In(loc)).Sub(civilDay(today)) / (24 * time.Hour)), true
}

// IsExpiringSoon reports whether date falls within [today, today+thresholdDays].
func IsExpiringSoon(date time.Time, thresholdDays int) bool {
	return IsExpiringSoonAt(date, time.Now(), thresholdDays)
}

// IsExpiringSoonAt is IsExpiringSoon with an explicit "today".
func IsExpiringSoonAt(date, today time.Time, thresholdDays int) bool {
	days, ok := DaysUntilAt(date, today)
	return ok && days >= 0 && days <= thresholdDays
}

// civilDay maps t to midnight UTC of its calendar date.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HourLabel renders an hour of day on the 12-hour clock ("12 AM", "9 AM", "1 PM").
func HourLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d %s", h, suffix)
}
