package gym

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ettle/strcase"
)

// ErrNothingToExport is returned when a report has no rows.
var ErrNothingToExport = errors.New("gym: nothing to export")

// ExportFileName builds "{name}_{yyyy-mm-dd}.csv", snake-casing name.
func ExportFileName(name string, day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", strcase.ToSnake(name), day.Format(rangeLayout))
}

// ReportFileName names the CSV export of a report, e.g. "members_report_2026-03-10.csv".
func ReportFileName(kind ReportKind, day time.Time) string {
	return ExportFileName(string(kind)+" report", day)
}

// WriteCSV writes header and rows as CSV.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("gym: write csv header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("gym: write csv rows: %w", err)
	}
	return nil
}

// ExportReport writes the report as CSV.
func ExportReport(w io.Writer, report Report) error {
	header, rows := report.Rows()
	return WriteCSV(w, header, rows)
}

// MemberRows flattens a member list for export.
func MemberRows(members []Member) ([]string, [][]string) {
	return Report{Kind: ReportMembers, Members: members}.Rows()
}

// AttendanceRows flattens attendance records for export, including the
// session duration.
func AttendanceRows(records []AttendanceRecord, now time.Time) ([]string, [][]string) {
	header := []string{"Member ID", "Name", "Check-in", "Check-out", "Duration", "Type"}
	rows := make([][]string, 0, len(records))
	for _, a := range records {
		member, _ := a.Member.Doc()
		checkOut, end := NotAvailable, time.Time{}
		if a.CheckedOut() {
			checkOut, end = FormatTime(*a.CheckOutTime), *a.CheckOutTime
		}
		rows = append(rows, []string{
			orNA(member.MemberID),
			orNA(member.FullName),
			FormatTime(a.CheckInTime),
			checkOut,
			FormatDurationAt(a.CheckInTime, end, now),
			a.AttendanceType,
		})
	}
	return header, rows
}
