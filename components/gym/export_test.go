package gym

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFileName(t *testing.T) {
	day := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "attendance_report_2024-03-09.csv", ReportFileName(ReportAttendance, day))
}

func TestWriteCSVRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, []string{"a"}, nil), ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestWriteCSVQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"Name", "Note"}, [][]string{{"Shah, Priya", `said "hi"`}}))
	assert.Equal(t, "Name,Note\n\"Shah, Priya\",\"said \"\"hi\"\"\"\n", buf.String())
}

func TestDecodeReportAttendanceShapes(t *testing.T) {
	bare := json.RawMessage(`[{"_id":"a1","member":{"_id":"m1","memberId":"GYM0001","fullName":"Ann"},"checkInTime":"2024-05-01T08:00:00Z","attendanceType":"Manual"}]`)
	report, err := DecodeReport(ReportAttendance, DateRange{}, bare)
	require.NoError(t, err)
	require.Len(t, report.Attendance, 1)

	wrapped := json.RawMessage(`{"attendance":[{"_id":"a1","checkInTime":"2024-05-01T08:00:00Z"}],"statistics":{"total":1}}`)
	report, err = DecodeReport(ReportAttendance, DateRange{}, wrapped)
	require.NoError(t, err)
	require.Len(t, report.Attendance, 1)
	assert.EqualValues(t, 1, report.Statistics["total"])

	report, err = DecodeReport(ReportAttendance, DateRange{}, json.RawMessage(`null`))
	require.NoError(t, err)
	assert.True(t, report.Empty())
}

func TestDecodeReportRejectsMalformed(t *testing.T) {
	_, err := DecodeReport(ReportPlans, DateRange{}, json.RawMessage(`{"plans":1}`))
	assert.Error(t, err)
	_, err = DecodeReport("bogus", DateRange{}, json.RawMessage(`[]`))
	assert.Error(t, err)
}

func TestExportTrainerReport(t *testing.T) {
	raw := json.RawMessage(`[
		{"trainer":{"trainerId":"TR01","name":"Asha","specialization":["Yoga","Cardio"],"experience":4,"isActive":true},"totalAssignedMembers":3,"activeMembers":2},
		{"trainer":{"name":"","specialization":[],"experience":null,"isActive":false},"totalAssignedMembers":0,"activeMembers":0}
	]`)
	report, err := DecodeReport(ReportTrainers, DateRange{}, raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportReport(&buf, report))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Trainer ID,Name,Specialization,Experience,Is Active,Total Assigned Members,Active Members", lines[0])
	assert.Equal(t, `TR01,Asha,"Yoga, Cardio",4,Yes,3,2`, lines[1])
	assert.Equal(t, "N/A,N/A,N/A,N/A,No,0,0", lines[2])
}

func TestExportPlanReportDurationLabels(t *testing.T) {
	raw := json.RawMessage(`[{"plan":{"name":"Basic","price":1000,"duration":{"value":3,"unit":"months"},"accessType":["Gym","Spa"]},"activeMembers":2,"totalMembers":5,"totalRevenue":12500}]`)
	report, err := DecodeReport(ReportPlans, DateRange{}, raw)
	require.NoError(t, err)

	header, rows := report.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Plan Name", header[0])
	assert.Equal(t, []string{"Basic", "Rs 1,000", "3 months", "Gym, Spa", "2", "5", "Rs 12,500"}, rows[0])
}

func TestAttendanceRowsDuration(t *testing.T) {
	in := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	out := in.Add(90 * time.Minute)
	records := []AttendanceRecord{
		{Member: RefOf(MemberSummary{ID: "m1", MemberID: "GYM0001", FullName: "Ann"}), CheckInTime: in, CheckOutTime: &out, AttendanceType: AttendanceManual},
		{CheckInTime: in, AttendanceType: AttendanceManual},
	}

	header, rows := AttendanceRows(records, in.Add(30*time.Minute))
	require.Len(t, rows, 2)
	assert.Equal(t, "Duration", header[4])
	assert.Equal(t, "1h 30m", rows[0][4])
	assert.Equal(t, "GYM0001", rows[0][0])
	assert.Equal(t, NotAvailable, rows[1][0])
	assert.Equal(t, NotAvailable, rows[1][3])
	assert.Equal(t, "30m", rows[1][4])
}
