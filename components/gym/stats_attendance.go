package gym

import "time"

// AttendanceStats summarizes a day's attendance records.
type AttendanceStats struct {
	Total              int     `json:"total"`
	CheckedOut         int     `json:"checkedOut"`
	CurrentlyIn        int     `json:"currentlyIn"`
	AvgDurationSeconds int64   `json:"avgDurationSeconds"`
	AvgDuration        string  `json:"avgDuration"`
	PeakHour           int     `json:"peakHour"`
	PeakHourLabel      string  `json:"peakHourLabel"`
	HourlyCounts       [24]int `json:"hourlyCounts"`
}

// ComputeAttendanceStats derives the attendance summary. Hours of day are read
// in loc (time.Local when nil). PeakHour is -1 when no record has a check-in
// time; ties go to the hour seen first while iterating records.
func ComputeAttendanceStats(records []AttendanceRecord, loc *time.Location) AttendanceStats {
	if loc == nil {
		loc = time.Local
	}
	stats := AttendanceStats{
		Total:         len(records),
		PeakHour:      -1,
		PeakHourLabel: NotAvailable,
	}

	var totalSeconds int64
	var seen []int
	for _, record := range records {
		if record.CheckedOut() {
			stats.CheckedOut++
			if !record.CheckInTime.IsZero() {
				if secs := int64(record.CheckOutTime.Sub(record.CheckInTime) / time.Second); secs > 0 {
					totalSeconds += secs
				}
			}
		}
		if record.CheckInTime.IsZero() {
			continue
		}
		hour := record.CheckInTime.In(loc).Hour()
		if stats.HourlyCounts[hour] == 0 {
			seen = append(seen, hour)
		}
		stats.HourlyCounts[hour]++
	}
	stats.CurrentlyIn = stats.Total - stats.CheckedOut

	if stats.CheckedOut > 0 {
		stats.AvgDurationSeconds = totalSeconds / int64(stats.CheckedOut)
	}
	stats.AvgDuration = FormatHoursMinutes(stats.AvgDurationSeconds)

	best := 0
	for _, hour := range seen {
		if count := stats.HourlyCounts[hour]; count > best {
			best = count
			stats.PeakHour = hour
		}
	}
	if stats.PeakHour >= 0 {
		stats.PeakHourLabel = HourLabel(stats.PeakHour)
	}
	return stats
}
