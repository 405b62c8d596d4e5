package gym

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportKind names a backend report.
type ReportKind string

const (
	ReportMembers    ReportKind = "members"
	ReportAttendance ReportKind = "attendance"
	ReportFinancial  ReportKind = "financial"
	ReportPlans      ReportKind = "plans"
	ReportTrainers   ReportKind = "trainers"
)

// ReportKinds lists every supported report.
var ReportKinds = []ReportKind{ReportMembers, ReportAttendance, ReportFinancial, ReportPlans, ReportTrainers}

// ParseReportKind validates a user-supplied report name.
func ParseReportKind(value string) (ReportKind, error) {
	kind := ReportKind(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range ReportKinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", fmt.Errorf("gym: unknown report %q", value)
}

// Ranged reports whether the backend filters this report by date.
func (k ReportKind) Ranged() bool {
	return k == ReportMembers || k == ReportAttendance || k == ReportFinancial
}

// RangePreset names a report date window.
type RangePreset string

const (
	RangeToday   RangePreset = "today"
	RangeWeek    RangePreset = "week"
	RangeMonth   RangePreset = "month"
	RangeQuarter RangePreset = "quarter"
	RangeYear    RangePreset = "year"
	RangeCustom  RangePreset = "custom"
)

const rangeLayout = "2006-01-02"

// DateRange is an inclusive window of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// StartParam renders the start date the way the backend expects it.
func (r DateRange) StartParam() string { return r.Start.Format(rangeLayout) }

// EndParam renders the end date the way the backend expects it.
func (r DateRange) EndParam() string { return r.End.Format(rangeLayout) }

// ParseDateRange parses "yyyy-mm-dd" bounds in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	s, err := time.ParseInLocation(rangeLayout, strings.TrimSpace(start), loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("gym: invalid start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(rangeLayout, strings.TrimSpace(end), loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("gym: invalid end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// ResolveDateRange turns a preset into concrete dates relative to today.
// Weeks start on Sunday. The custom preset returns custom unchanged and
// requires both bounds.
func ResolveDateRange(preset RangePreset, today time.Time, custom DateRange) (DateRange, error) {
	y, m, d := today.Date()
	loc := today.Location()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch preset {
	case RangeToday, "":
		return DateRange{Start: day, End: day}, nil
	case RangeWeek:
		return DateRange{Start: day.AddDate(0, 0, -int(day.Weekday())), End: day}, nil
	case RangeMonth:
		return DateRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: day}, nil
	case RangeQuarter:
		first := time.Month((int(m)-1)/3*3 + 1)
		return DateRange{Start: time.Date(y, first, 1, 0, 0, 0, 0, loc), End: day}, nil
	case RangeYear:
		return DateRange{Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc), End: day}, nil
	case RangeCustom:
		if custom.Start.IsZero() || custom.End.IsZero() {
			return DateRange{}, fmt.Errorf("gym: custom range requires start and end dates")
		}
		if custom.End.Before(custom.Start) {
			return DateRange{}, fmt.Errorf("gym: custom range ends before it starts")
		}
		return custom, nil
	default:
		return DateRange{}, fmt.Errorf("gym: unknown range preset %q", preset)
	}
}

// PlanReportRow is one row of the plans report.
type PlanReportRow struct {
	Plan struct {
		Name       string          `json:"name"`
		Price      float64         `json:"price"`
		Duration   json.RawMessage `json:"duration"`
		AccessType json.RawMessage `json:"accessType"`
	} `json:"plan"`
	ActiveMembers int     `json:"activeMembers"`
	TotalMembers  int     `json:"totalMembers"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// TrainerReportRow is one row of the trainers report.
type TrainerReportRow struct {
	Trainer struct {
		TrainerID      string   `json:"trainerId"`
		Name           string   `json:"name"`
		Specialization []string `json:"specialization"`
		Experience     *int     `json:"experience"`
		IsActive       bool     `json:"isActive"`
	} `json:"trainer"`
	TotalAssignedMembers int `json:"totalAssignedMembers"`
	ActiveMembers        int `json:"activeMembers"`
}

// Report is a decoded backend report. Only the slice matching Kind is set.
type Report struct {
	Kind       ReportKind         `json:"kind"`
	Range      DateRange          `json:"-"`
	Members    []Member           `json:"members,omitempty"`
	Attendance []AttendanceRecord `json:"attendance,omitempty"`
	Payments   []Payment          `json:"payments,omitempty"`
	Plans      []PlanReportRow    `json:"plans,omitempty"`
	Trainers   []TrainerReportRow `json:"trainers,omitempty"`
	Statistics map[string]any     `json:"statistics,omitempty"`
}

// DecodeReport parses a report payload. The attendance report is accepted
// both as a bare array and wrapped in {"attendance": [...]}.
func DecodeReport(kind ReportKind, rng DateRange, raw json.RawMessage) (Report, error) {
	report := Report{Kind: kind, Range: rng}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return report, nil
	}
	var err error
	switch kind {
	case ReportMembers, ReportFinancial:
		var body struct {
			Members    []Member       `json:"members"`
			Payments   []Payment      `json:"payments"`
			Statistics map[string]any `json:"statistics"`
		}
		err = json.Unmarshal(raw, &body)
		report.Members, report.Payments, report.Statistics = body.Members, body.Payments, body.Statistics
	case ReportAttendance:
		if raw[0] == '[' {
			err = json.Unmarshal(raw, &report.Attendance)
			break
		}
		var body struct {
			Attendance []AttendanceRecord `json:"attendance"`
			Statistics map[string]any     `json:"statistics"`
		}
		err = json.Unmarshal(raw, &body)
		report.Attendance, report.Statistics = body.Attendance, body.Statistics
	case ReportPlans:
		err = json.Unmarshal(raw, &report.Plans)
	case ReportTrainers:
		err = json.Unmarshal(raw, &report.Trainers)
	default:
		return Report{}, fmt.Errorf("gym: unknown report %q", kind)
	}
	if err != nil {
		return Report{}, fmt.Errorf("gym: decode %s report: %w", kind, err)
	}
	return report, nil
}

// Empty reports whether the report has no exportable rows.
func (r Report) Empty() bool {
	header, rows := r.Rows()
	return len(header) == 0 || len(rows) == 0
}

// Rows flattens the report into a header and display rows for export.
func (r Report) Rows() ([]string, [][]string) {
	switch r.Kind {
	case ReportMembers:
		header := []string{"ID", "Name", "Phone", "Email", "Status", "Join Date", "Plan"}
		rows := make([][]string, 0, len(r.Members))
		for _, m := range r.Members {
			plan := NotAvailable
			if doc, ok := m.CurrentPlan.Doc(); ok && doc.PlanName != "" {
				plan = doc.PlanName
			}
			rows = append(rows, []string{m.MemberID, m.FullName, m.Phone, orNA(m.Email), m.MembershipStatus, FormatDate(m.JoinDate), plan})
		}
		return header, rows
	case ReportAttendance:
		header := []string{"Member ID", "Name", "Date", "Check-in", "Check-out", "Type"}
		rows := make([][]string, 0, len(r.Attendance))
		for _, a := range r.Attendance {
			member, _ := a.Member.Doc()
			checkOut := NotAvailable
			if a.CheckedOut() {
				checkOut = FormatTime(*a.CheckOutTime)
			}
			rows = append(rows, []string{orNA(member.MemberID), orNA(member.FullName), FormatDate(a.Date), FormatTime(a.CheckInTime), checkOut, a.AttendanceType})
		}
		return header, rows
	case ReportFinancial:
		header := []string{"Receipt No", "Member ID", "Name", "Plan", "Amount", "Method", "Date", "Status"}
		rows := make([][]string, 0, len(r.Payments))
		for _, p := range r.Payments {
			member, _ := p.Member.Doc()
			plan, _ := p.Plan.Doc()
			rows = append(rows, []string{orNA(p.ReceiptNumber), orNA(member.MemberID), orNA(member.FullName), orNA(plan.PlanName), FormatCurrency(p.FinalAmount), p.PaymentMethod, FormatDate(p.PaymentDate), p.PaymentStatus})
		}
		return header, rows
	case ReportPlans:
		header := []string{"Plan Name", "Price", "Duration", "Access Type", "Active Members", "Total Members", "Total Revenue"}
		rows := make([][]string, 0, len(r.Plans))
		for _, item := range r.Plans {
			rows = append(rows, []string{orNA(item.Plan.Name), FormatCurrency(item.Plan.Price), rawLabel(item.Plan.Duration), rawLabel(item.Plan.AccessType), fmt.Sprint(item.ActiveMembers), fmt.Sprint(item.TotalMembers), FormatCurrency(item.TotalRevenue)})
		}
		return header, rows
	case ReportTrainers:
		header := []string{"Trainer ID", "Name", "Specialization", "Experience", "Is Active", "Total Assigned Members", "Active Members"}
		rows := make([][]string, 0, len(r.Trainers))
		for _, item := range r.Trainers {
			experience := NotAvailable
			if item.Trainer.Experience != nil {
				experience = fmt.Sprint(*item.Trainer.Experience)
			}
			active := "No"
			if item.Trainer.IsActive {
				active = "Yes"
			}
			specialization := strings.Join(item.Trainer.Specialization, ", ")
			rows = append(rows, []string{orNA(item.Trainer.TrainerID), orNA(item.Trainer.Name), orNA(specialization), experience, active, fmt.Sprint(item.TotalAssignedMembers), fmt.Sprint(item.ActiveMembers)})
		}
		return header, rows
	}
	return nil, nil
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}

// rawLabel renders loosely typed report fields: duration objects, tag lists,
// or plain strings.
func rawLabel(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NotAvailable
	}
	var duration PlanDuration
	if raw[0] == '{' && json.Unmarshal(raw, &duration) == nil && duration.Value > 0 {
		return fmt.Sprintf("%d %s", duration.Value, duration.Unit)
	}
	var tags []string
	if raw[0] == '[' && json.Unmarshal(raw, &tags) == nil {
		return orNA(strings.Join(tags, ", "))
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return orNA(text)
	}
	return string(raw)
}
