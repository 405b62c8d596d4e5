package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-gymdesk/components/gym"
)

var errNoBackend = errors.New("gymctl: api.base_url is not configured (set GYMDESK_API_URL or use --demo)")

type loginCmd struct {
	Username string `arg:"" help:"Staff username."`
	Password string `required:"" env:"GYMDESK_PASSWORD" help:"Staff password."`
}

func (cmd *loginCmd) Run(ctx context.Context, rt *runtime) error {
	if rt.auth == nil {
		return errNoBackend
	}
	result, err := rt.auth.Login(ctx, gym.Credentials{Username: cmd.Username, Password: cmd.Password})
	if err != nil {
		return fmt.Errorf("gymctl: login: %w", err)
	}
	if result.Token == "" {
		return errors.New("gymctl: login: backend returned no token")
	}
	rt.session.Set(result.Token, result.User)
	if err := rt.store.Save(rt.session.Snapshot()); err != nil {
		return err
	}
	name := result.User.FullName
	if name == "" {
		name = result.User.Username
	}
	rt.printf("Signed in as %s\n", name)
	if exp, ok := rt.session.ExpiresAt(); ok {
		rt.printf("Session expires %s\n", humanize.Time(exp))
	}
	return nil
}

type logoutCmd struct{}

func (cmd *logoutCmd) Run(rt *runtime) error {
	rt.session.Clear(gym.LogoutRequested)
	if err := rt.store.Delete(); err != nil {
		return err
	}
	rt.printf("Signed out\n")
	return nil
}

type statsCmd struct{}

func (cmd *statsCmd) Run(ctx context.Context, rt *runtime) error {
	attendance, err := rt.service.AttendanceStats(ctx)
	if err != nil {
		return err
	}
	plans, err := rt.service.PlanStats(ctx)
	if err != nil {
		return err
	}
	trainers, err := rt.service.TrainerStats(ctx)
	if err != nil {
		return err
	}
	w := newTable(rt.out)
	fmt.Fprintf(w, "ATTENDANCE\t\n")
	fmt.Fprintf(w, "  Checked in today\t%d\n", attendance.Total)
	fmt.Fprintf(w, "  Currently in gym\t%d\n", attendance.CurrentlyIn)
	fmt.Fprintf(w, "  Checked out\t%d\n", attendance.CheckedOut)
	fmt.Fprintf(w, "  Average session\t%s\n", attendance.AvgDuration)
	fmt.Fprintf(w, "  Peak hour\t%s\n", attendance.PeakHourLabel)
	fmt.Fprintf(w, "PLANS\t\n")
	fmt.Fprintf(w, "  Active plans\t%d\n", plans.ActivePlans)
	fmt.Fprintf(w, "  Subscribers\t%d\n", plans.TotalSubscribers)
	fmt.Fprintf(w, "  Monthly revenue\t%s\n", gym.FormatCurrency(plans.MonthlyRevenue))
	fmt.Fprintf(w, "  Top plan\t%s\n", plans.TopPerformingPlan)
	fmt.Fprintf(w, "  Least plan\t%s\n", plans.LeastPerformingPlan)
	fmt.Fprintf(w, "  Expiring soon\t%d\n", plans.ExpiringSubscriptions)
	fmt.Fprintf(w, "TRAINERS\t\n")
	fmt.Fprintf(w, "  Trainers\t%d (%d active)\n", trainers.TotalTrainers, trainers.ActiveTrainers)
	fmt.Fprintf(w, "  Clients\t%d\n", trainers.ActiveClients)
	fmt.Fprintf(w, "  Clients per trainer\t%.1f\n", trainers.AvgClientsPerTrainer)
	fmt.Fprintf(w, "  Unassigned members\t%d\n", trainers.UnassignedMembers)
	return w.Flush()
}

type membersCmd struct {
	List     membersListCmd     `cmd:"" default:"withargs" help:"List members."`
	Expiring membersExpiringCmd `cmd:"" help:"List members whose plan ends soon."`
}

type membersListCmd struct {
	Status string `default:"All" enum:"All,Active,Expired,On Hold,Inactive" help:"Membership status filter."`
	Search string `help:"Name, member id, phone, or email fragment."`
	Limit  int    `help:"Maximum rows to fetch."`
	CSV    string `name:"csv" type:"path" help:"Write the list to a CSV file instead of printing it."`
}

func (cmd *membersListCmd) Run(ctx context.Context, rt *runtime) error {
	members, err := rt.service.Members(ctx, gym.MemberQuery{Status: cmd.Status, Search: cmd.Search, Limit: cmd.Limit})
	if err != nil {
		return err
	}
	header, rows := gym.MemberRows(members)
	if cmd.CSV != "" {
		return writeCSVFile(rt, cmd.CSV, header, rows)
	}
	return printRows(rt.out, header, rows)
}

type membersExpiringCmd struct{}

func (cmd *membersExpiringCmd) Run(ctx context.Context, rt *runtime) error {
	members, err := rt.service.ExpiringMembers(ctx)
	if err != nil {
		return err
	}
	today := rt.service.Today()
	header := []string{"ID", "Name", "Phone", "Plan ends", "Days left"}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		if m.PlanEndDate == nil {
			continue
		}
		days, _ := gym.DaysUntilAt(*m.PlanEndDate, today)
		rows = append(rows, []string{m.MemberID, m.FullName, m.Phone, gym.FormatDate(*m.PlanEndDate), fmt.Sprint(days)})
	}
	return printRows(rt.out, header, rows)
}

type attendanceCmd struct {
	Today    attendanceTodayCmd    `cmd:"" default:"withargs" help:"List today's check-ins."`
	Search   attendanceSearchCmd   `cmd:"" help:"Find active members to check in."`
	Checkin  attendanceCheckinCmd  `cmd:"" help:"Check a member in."`
	Checkout attendanceCheckoutCmd `cmd:"" help:"Check a member out."`
}

type attendanceTodayCmd struct {
	CSV string `name:"csv" type:"path" help:"Write today's attendance to a CSV file."`
}

func (cmd *attendanceTodayCmd) Run(ctx context.Context, rt *runtime) error {
	records, err := rt.service.TodayAttendance(ctx)
	if err != nil {
		return err
	}
	header, rows := gym.AttendanceRows(records, rt.service.Today())
	if cmd.CSV != "" {
		return writeCSVFile(rt, cmd.CSV, header, rows)
	}
	header = append([]string{"Attendance ID"}, header...)
	for i := range rows {
		rows[i] = append([]string{records[i].ID}, rows[i]...)
	}
	return printRows(rt.out, header, rows)
}

type attendanceSearchCmd struct {
	Term string `arg:"" help:"At least two characters of a name, member id, or phone."`
}

func (cmd *attendanceSearchCmd) Run(ctx context.Context, rt *runtime) error {
	if len([]rune(strings.TrimSpace(cmd.Term))) < gym.MinSearchLength {
		rt.printf("Type at least %d characters to search\n", gym.MinSearchLength)
		return nil
	}
	members, err := rt.service.SearchCheckInCandidates(ctx, cmd.Term)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{m.ID, m.MemberID, m.FullName, m.Phone})
	}
	return printRows(rt.out, []string{"Record", "ID", "Name", "Phone"}, rows)
}

type attendanceCheckinCmd struct {
	MemberID string `arg:"" help:"Member record id (see 'attendance search')."`
}

func (cmd *attendanceCheckinCmd) Run(ctx context.Context, rt *runtime) error {
	record, err := rt.service.CheckIn(ctx, gym.CheckInRequest{MemberID: cmd.MemberID})
	if err != nil {
		return err
	}
	rt.printf("Checked in at %s (attendance %s)\n", gym.FormatTime(record.CheckInTime), record.ID)
	return nil
}

type attendanceCheckoutCmd struct {
	AttendanceID string `arg:"" help:"Attendance id (see 'attendance today')."`
}

func (cmd *attendanceCheckoutCmd) Run(ctx context.Context, rt *runtime) error {
	record, err := rt.service.CheckOut(ctx, cmd.AttendanceID)
	if err != nil {
		return err
	}
	end := record.CheckOutTime
	if end == nil {
		rt.printf("Checked out\n")
		return nil
	}
	rt.printf("Checked out after %s\n", gym.FormatDurationAt(record.CheckInTime, *end, rt.service.Today()))
	return nil
}

type paymentsCmd struct {
	List     paymentsListCmd     `cmd:"" default:"withargs" help:"List payments."`
	MarkPaid paymentsMarkPaidCmd `cmd:"" name:"mark-paid" help:"Mark a pending payment as paid."`
}

type paymentsListCmd struct {
	Pending bool `help:"Only show pending payments."`
}

func (cmd *paymentsListCmd) Run(ctx context.Context, rt *runtime) error {
	payments, err := rt.service.Payments(ctx)
	if err != nil {
		return err
	}
	header := []string{"Payment ID", "Receipt", "Member", "Amount", "Status", "Date"}
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		if cmd.Pending && p.PaymentStatus != gym.PaymentPending {
			continue
		}
		member, _ := p.Member.Doc()
		rows = append(rows, []string{p.ID, p.ReceiptNumber, member.FullName, gym.FormatCurrency(p.FinalAmount), p.PaymentStatus, gym.FormatDate(p.PaymentDate)})
	}
	return printRows(rt.out, header, rows)
}

type paymentsMarkPaidCmd struct {
	PaymentID string `arg:"" help:"Payment id."`
}

func (cmd *paymentsMarkPaidCmd) Run(ctx context.Context, rt *runtime) error {
	if err := rt.service.MarkPaymentPaid(ctx, cmd.PaymentID); err != nil {
		return err
	}
	rt.printf("Payment %s marked as paid\n", cmd.PaymentID)
	return nil
}

type reportCmd struct {
	Kind  string `arg:"" enum:"members,attendance,financial,plans,trainers" help:"Report to fetch."`
	Range string `default:"month" enum:"today,week,month,quarter,year,custom" help:"Date window."`
	Start string `help:"Custom range start (YYYY-MM-DD)."`
	End   string `help:"Custom range end (YYYY-MM-DD)."`
	Out   string `short:"o" type:"path" help:"CSV destination (defaults to <kind>_report_<date>.csv)."`
	Print bool   `help:"Print rows instead of writing a CSV file."`
}

func (cmd *reportCmd) Run(ctx context.Context, rt *runtime) error {
	kind, err := gym.ParseReportKind(cmd.Kind)
	if err != nil {
		return err
	}
	req := gym.ReportRequest{Kind: kind, Preset: gym.RangePreset(cmd.Range)}
	if req.Preset == gym.RangeCustom {
		if req.Custom, err = gym.ParseDateRange(cmd.Start, cmd.End, rt.service.Location()); err != nil {
			return err
		}
	}
	report, err := rt.service.Report(ctx, req)
	if err != nil {
		return err
	}
	header, rows := report.Rows()
	if cmd.Print {
		return printRows(rt.out, header, rows)
	}
	path := cmd.Out
	if path == "" {
		path = gym.ReportFileName(kind, rt.service.Today())
	}
	return writeCSVFile(rt, path, header, rows)
}

type enrollCmd struct {
	Name    string   `required:"" help:"Full name."`
	Phone   string   `required:"" help:"Phone number."`
	Email   string   `help:"Email address."`
	Gender  string   `default:"Male" enum:"Male,Female,Other" help:"Gender."`
	DOB     string   `name:"dob" help:"Date of birth (YYYY-MM-DD)."`
	Plan    string   `help:"Plan id."`
	Trainer string   `help:"Trainer id."`
	Months  int      `default:"1" help:"Months paid for."`
	Paid    string   `default:"0" help:"Amount paid now."`
	Amount  string   `help:"Override the monthly amount (defaults to plan + trainer price)."`
	Method  string   `default:"Cash" enum:"Cash,Card,UPI,Online" help:"Payment method."`
	Status  string   `default:"Pending" enum:"Paid,Pending,Partial" help:"Payment status."`
	Address []string `help:"street, city, state, zip (repeat in that order)."`
}

func (cmd *enrollCmd) Run(ctx context.Context, rt *runtime) error {
	plans, err := rt.service.Plans(ctx)
	if err != nil {
		return err
	}
	trainers, err := rt.service.Trainers(ctx)
	if err != nil {
		return err
	}
	paid, err := decimal.NewFromString(cmd.Paid)
	if err != nil {
		return fmt.Errorf("gymctl: --paid: %w", err)
	}

	form := rt.service.NewMemberForm()
	if err := form.Open(gym.NewMemberDraft()); err != nil {
		return err
	}
	err = form.Update(func(d *gym.MemberDraft) error {
		d.FullName, d.Phone, d.Email, d.Gender, d.DateOfBirth = cmd.Name, cmd.Phone, cmd.Email, cmd.Gender, cmd.DOB
		d.Address = addressFrom(cmd.Address)
		if err := d.SelectPlan(cmd.Plan, plans); err != nil {
			return err
		}
		if err := d.SelectTrainer(cmd.Trainer, trainers); err != nil {
			return err
		}
		if cmd.Amount != "" {
			amount, err := decimal.NewFromString(cmd.Amount)
			if err != nil {
				return fmt.Errorf("gymctl: --amount: %w", err)
			}
			d.SetAmount(amount)
		}
		if err := d.SetMonths(cmd.Months); err != nil {
			return err
		}
		d.SetFullPayment(paid)
		d.Payment.PaymentMethod, d.Payment.PaymentStatus = cmd.Method, cmd.Status
		return nil
	})
	if err != nil {
		return err
	}

	draft, _ := form.Draft()
	w := newTable(rt.out)
	fmt.Fprintf(w, "Plan price\t%s\n", gym.FormatCurrency(draft.PlanPrice().InexactFloat64()))
	fmt.Fprintf(w, "Trainer price\t%s\n", gym.FormatCurrency(draft.TrainerPrice().InexactFloat64()))
	fmt.Fprintf(w, "Monthly amount\t%s\n", gym.FormatCurrency(draft.Payment.Amount.InexactFloat64()))
	fmt.Fprintf(w, "Total (%d months)\t%s\n", draft.Payment.Months, gym.FormatCurrency(draft.Total().InexactFloat64()))
	fmt.Fprintf(w, "Paid now\t%s\n", gym.FormatCurrency(paid.InexactFloat64()))
	fmt.Fprintf(w, "Remaining\t%s\n", gym.FormatCurrency(draft.Remaining().InexactFloat64()))
	if err := w.Flush(); err != nil {
		return err
	}

	if err := form.Submit(ctx); err != nil {
		return err
	}
	rt.printf("Enrolled %s\n", cmd.Name)
	return nil
}

func addressFrom(parts []string) gym.Address {
	get := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return gym.Address{Street: get(0), City: get(1), State: get(2), ZipCode: get(3)}
}

type showConfigCmd struct{}

func (cmd *showConfigCmd) Run(rt *runtime) error {
	cfg := rt.cfg
	if cfg.API.Token != "" {
		cfg.API.Token = "********"
	}
	return cfg.Encode(rt.out)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printRows(out io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No records")
		return nil
	}
	w := newTable(out)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func writeCSVFile(rt *runtime, path string, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return gym.ErrNothingToExport
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("gymctl: mkdir %s: %w", dir, err)
		}
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("gymctl: create %s: %w", path, err)
	}
	defer file.Close()
	if err := gym.WriteCSV(file, header, rows); err != nil {
		return err
	}
	rt.printf("Wrote %d rows to %s\n", len(rows), path)
	return nil
}
