package api

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-gymdesk/components/gym"
)

// ErrNotFound is returned by MockClient for unknown ids.
var ErrNotFound = &Error{Status: 404, Message: "not found"}

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Members    []gym.Member
	Trainers   []gym.Trainer
	Plans      []gym.Plan
	Attendance []gym.AttendanceRecord
	Payments   []gym.Payment
	// Accounts maps username to password for Login.
	Accounts map[string]string
	Token    string
}

// MockClient implements gym.Backend and gym.AuthRepository in memory.
type MockClient struct {
	mu    sync.RWMutex
	data  MockData
	now   func() time.Time
	calls map[string]int
}

var _ gym.Backend = (*MockClient)(nil)
var _ gym.AuthRepository = (*MockClient)(nil)

// NewMockClient builds a mock backend from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	if data.Token == "" {
		data.Token = "demo-token"
	}
	return &MockClient{data: data, now: time.Now, calls: map[string]int{}}
}

// WithClock overrides the clock used for check-in/check-out timestamps.
func (c *MockClient) WithClock(now func() time.Time) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	if now != nil {
		c.now = now
	}
	return c
}

// Calls reports how many times the named method ran.
func (c *MockClient) Calls(method string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls[method]
}

func (c *MockClient) track(method string) {
	c.calls[method]++
}

// Login implements gym.AuthRepository.
func (c *MockClient) Login(_ context.Context, creds gym.Credentials) (gym.LoginResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("Login")
	password, ok := c.data.Accounts[creds.Username]
	if !ok || password != creds.Password {
		return gym.LoginResult{}, &Error{Status: 400, Message: "Invalid credentials"}
	}
	return gym.LoginResult{
		User:  gym.User{ID: "user-" + creds.Username, Username: creds.Username, Role: "admin"},
		Token: c.data.Token,
	}, nil
}

// ListMembers implements gym.MemberRepository.
func (c *MockClient) ListMembers(_ context.Context, query gym.MemberQuery) ([]gym.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("ListMembers")
	search := strings.ToLower(strings.TrimSpace(query.Search))
	out := make([]gym.Member, 0, len(c.data.Members))
	for _, member := range c.data.Members {
		if query.Status != "" && member.MembershipStatus != query.Status {
			continue
		}
		if search != "" && !memberMatches(member, search) {
			continue
		}
		out = append(out, member)
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

func memberMatches(member gym.Member, search string) bool {
	for _, field := range []string{member.FullName, member.MemberID, member.Phone, member.Email} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// GetMember implements gym.MemberRepository.
func (c *MockClient) GetMember(_ context.Context, id string) (gym.MemberDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("GetMember")
	idx := slices.IndexFunc(c.data.Members, func(m gym.Member) bool { return m.ID == id })
	if idx < 0 {
		return gym.MemberDetails{}, ErrNotFound
	}
	details := gym.MemberDetails{Member: c.data.Members[idx]}
	for _, record := range c.data.Attendance {
		if record.Member.IDOrEmpty() == id {
			details.AttendanceHistory = append(details.AttendanceHistory, record)
		}
	}
	for _, payment := range c.data.Payments {
		if payment.Member.IDOrEmpty() == id {
			details.PaymentHistory = append(details.PaymentHistory, payment)
		}
	}
	return details, nil
}

// CreateMember implements gym.MemberRepository. A payment snapshot on the
// payload becomes a payment record.
func (c *MockClient) CreateMember(_ context.Context, payload gym.MemberPayload) (gym.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("CreateMember")
	now := c.now()
	member := gym.Member{
		ID:               uuid.NewString(),
		MemberID:         fmt.Sprintf("GYM%04d", len(c.data.Members)+1),
		JoinDate:         now,
		MembershipStatus: gym.StatusActive,
	}
	c.applyMember(&member, payload)
	if plan, ok := c.findPlan(member.CurrentPlan.IDOrEmpty()); ok {
		start := now
		end := planEnd(start, plan.Duration)
		member.PlanStartDate, member.PlanEndDate = &start, &end
	}
	c.data.Members = append(c.data.Members, member)
	if payload.Payment != nil {
		status := payload.Payment.PaymentStatus
		if status == "" {
			status = gym.PaymentPending
		}
		c.data.Payments = append(c.data.Payments, gym.Payment{
			ID:            uuid.NewString(),
			Member:        gym.RefOf(summarize(member)),
			Plan:          member.CurrentPlan,
			FinalAmount:   payload.Payment.FullPayment,
			PaymentStatus: status,
			PaymentMethod: payload.Payment.PaymentMethod,
			PaymentDate:   now,
			ReceiptNumber: fmt.Sprintf("RCP%05d", len(c.data.Payments)+1),
		})
	}
	return member, nil
}

// UpdateMember implements gym.MemberRepository.
func (c *MockClient) UpdateMember(_ context.Context, id string, payload gym.MemberPayload) (gym.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("UpdateMember")
	idx := slices.IndexFunc(c.data.Members, func(m gym.Member) bool { return m.ID == id })
	if idx < 0 {
		return gym.Member{}, ErrNotFound
	}
	c.applyMember(&c.data.Members[idx], payload)
	return c.data.Members[idx], nil
}

func (c *MockClient) applyMember(member *gym.Member, payload gym.MemberPayload) {
	member.FullName = payload.FullName
	member.Gender = payload.Gender
	member.Phone = payload.Phone
	member.Email = deref(payload.Email)
	member.Address = payload.Address
	member.DateOfBirth = time.Time{}
	if dob := deref(payload.DateOfBirth); dob != "" {
		if parsed, err := time.Parse("2006-01-02", dob); err == nil {
			member.DateOfBirth = parsed
		}
	}
	member.AssignedTrainer = gym.RefTo[gym.Trainer](deref(payload.AssignedTrainer))
	if trainer, ok := c.findTrainer(member.AssignedTrainer.IDOrEmpty()); ok {
		member.AssignedTrainer = gym.RefOf(trainer)
	}
	member.CurrentPlan = gym.RefTo[gym.Plan](deref(payload.CurrentPlan))
	if plan, ok := c.findPlan(member.CurrentPlan.IDOrEmpty()); ok {
		member.CurrentPlan = gym.RefOf(plan)
	}
}

// DeleteMember implements gym.MemberRepository.
func (c *MockClient) DeleteMember(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("DeleteMember")
	before := len(c.data.Members)
	c.data.Members = slices.DeleteFunc(c.data.Members, func(m gym.Member) bool { return m.ID == id })
	if len(c.data.Members) == before {
		return ErrNotFound
	}
	return nil
}

// ListTrainers implements gym.TrainerRepository. Assigned members are derived
// from the member list.
func (c *MockClient) ListTrainers(context.Context) ([]gym.Trainer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("ListTrainers")
	out := make([]gym.Trainer, len(c.data.Trainers))
	for i, trainer := range c.data.Trainers {
		trainer.AssignedMembers = nil
		for _, member := range c.data.Members {
			if member.AssignedTrainer.IDOrEmpty() == trainer.ID {
				trainer.AssignedMembers = append(trainer.AssignedMembers, gym.RefOf(summarize(member)))
			}
		}
		out[i] = trainer
	}
	return out, nil
}

// CreateTrainer implements gym.TrainerRepository.
func (c *MockClient) CreateTrainer(_ context.Context, payload gym.TrainerPayload) (gym.Trainer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("CreateTrainer")
	trainer := gym.Trainer{
		ID:        uuid.NewString(),
		TrainerID: fmt.Sprintf("TRN%03d", len(c.data.Trainers)+1),
		IsActive:  true,
	}
	applyTrainer(&trainer, payload)
	c.data.Trainers = append(c.data.Trainers, trainer)
	return trainer, nil
}

// UpdateTrainer implements gym.TrainerRepository.
func (c *MockClient) UpdateTrainer(_ context.Context, id string, payload gym.TrainerPayload) (gym.Trainer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("UpdateTrainer")
	idx := slices.IndexFunc(c.data.Trainers, func(t gym.Trainer) bool { return t.ID == id })
	if idx < 0 {
		return gym.Trainer{}, ErrNotFound
	}
	applyTrainer(&c.data.Trainers[idx], payload)
	return c.data.Trainers[idx], nil
}

func applyTrainer(trainer *gym.Trainer, payload gym.TrainerPayload) {
	trainer.FullName = payload.FullName
	trainer.Gender = payload.Gender
	trainer.Phone = payload.Phone
	trainer.Email = deref(payload.Email)
	trainer.Specialization = slices.Clone(payload.Specialization)
	trainer.Experience = payload.Experience
	trainer.Price = payload.Price
	trainer.Salary = 0
	if payload.Salary != nil {
		trainer.Salary = *payload.Salary
	}
}

// DeleteTrainer implements gym.TrainerRepository.
func (c *MockClient) DeleteTrainer(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("DeleteTrainer")
	before := len(c.data.Trainers)
	c.data.Trainers = slices.DeleteFunc(c.data.Trainers, func(t gym.Trainer) bool { return t.ID == id })
	if len(c.data.Trainers) == before {
		return ErrNotFound
	}
	return nil
}

// ListPlans implements gym.PlanRepository.
func (c *MockClient) ListPlans(context.Context) ([]gym.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("ListPlans")
	return slices.Clone(c.data.Plans), nil
}

// CreatePlan implements gym.PlanRepository.
func (c *MockClient) CreatePlan(_ context.Context, payload gym.PlanPayload) (gym.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("CreatePlan")
	plan := gym.Plan{ID: uuid.NewString(), IsActive: true}
	applyPlan(&plan, payload)
	c.data.Plans = append(c.data.Plans, plan)
	return plan, nil
}

// UpdatePlan implements gym.PlanRepository.
func (c *MockClient) UpdatePlan(_ context.Context, id string, payload gym.PlanPayload) (gym.Plan, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("UpdatePlan")
	idx := slices.IndexFunc(c.data.Plans, func(p gym.Plan) bool { return p.ID == id })
	if idx < 0 {
		return gym.Plan{}, ErrNotFound
	}
	applyPlan(&c.data.Plans[idx], payload)
	return c.data.Plans[idx], nil
}

func applyPlan(plan *gym.Plan, payload gym.PlanPayload) {
	plan.PlanName = payload.PlanName
	plan.Duration = payload.Duration
	plan.Price = payload.Price
	plan.AccessType = slices.Clone(payload.AccessType)
	plan.Description = payload.Description
	plan.Features = slices.Clone(payload.Features)
}

// DeletePlan implements gym.PlanRepository.
func (c *MockClient) DeletePlan(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("DeletePlan")
	before := len(c.data.Plans)
	c.data.Plans = slices.DeleteFunc(c.data.Plans, func(p gym.Plan) bool { return p.ID == id })
	if len(c.data.Plans) == before {
		return ErrNotFound
	}
	return nil
}

// TodayAttendance implements gym.AttendanceRepository.
func (c *MockClient) TodayAttendance(context.Context) ([]gym.AttendanceRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("TodayAttendance")
	y, m, d := c.now().Date()
	out := make([]gym.AttendanceRecord, 0, len(c.data.Attendance))
	for _, record := range c.data.Attendance {
		ry, rm, rd := record.CheckInTime.In(c.now().Location()).Date()
		if ry == y && rm == m && rd == d {
			out = append(out, record)
		}
	}
	return out, nil
}

// CheckIn implements gym.AttendanceRepository. A member already in the gym
// cannot check in twice.
func (c *MockClient) CheckIn(_ context.Context, req gym.CheckInRequest) (gym.AttendanceRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("CheckIn")
	idx := slices.IndexFunc(c.data.Members, func(m gym.Member) bool { return m.ID == req.MemberID })
	if idx < 0 {
		return gym.AttendanceRecord{}, ErrNotFound
	}
	member := c.data.Members[idx]
	if !member.IsActive() {
		return gym.AttendanceRecord{}, &Error{Status: 400, Message: "Member is not active"}
	}
	for _, record := range c.data.Attendance {
		if record.Member.IDOrEmpty() == member.ID && !record.CheckedOut() {
			return gym.AttendanceRecord{}, &Error{Status: 400, Message: "Member already checked in"}
		}
	}
	now := c.now()
	record := gym.AttendanceRecord{
		ID:             uuid.NewString(),
		Member:         gym.RefOf(summarize(member)),
		Date:           now,
		CheckInTime:    now,
		AttendanceType: req.AttendanceType,
		Status:         "Present",
	}
	c.data.Attendance = append(c.data.Attendance, record)
	return record, nil
}

// CheckOut implements gym.AttendanceRepository.
func (c *MockClient) CheckOut(_ context.Context, attendanceID string) (gym.AttendanceRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("CheckOut")
	idx := slices.IndexFunc(c.data.Attendance, func(a gym.AttendanceRecord) bool { return a.ID == attendanceID })
	if idx < 0 {
		return gym.AttendanceRecord{}, ErrNotFound
	}
	if c.data.Attendance[idx].CheckedOut() {
		return gym.AttendanceRecord{}, &Error{Status: 400, Message: "Already checked out"}
	}
	now := c.now()
	c.data.Attendance[idx].CheckOutTime = &now
	return c.data.Attendance[idx], nil
}

// ListPayments implements gym.PaymentRepository.
func (c *MockClient) ListPayments(context.Context) ([]gym.Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("ListPayments")
	return slices.Clone(c.data.Payments), nil
}

// MarkPaymentPaid implements gym.PaymentRepository.
func (c *MockClient) MarkPaymentPaid(_ context.Context, paymentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("MarkPaymentPaid")
	idx := slices.IndexFunc(c.data.Payments, func(p gym.Payment) bool { return p.ID == paymentID })
	if idx < 0 {
		return ErrNotFound
	}
	c.data.Payments[idx].PaymentStatus = gym.PaymentPaid
	return nil
}

// DashboardSummary implements gym.DashboardRepository.
func (c *MockClient) DashboardSummary(context.Context) (gym.DashboardSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("DashboardSummary")
	now := c.now()
	var summary gym.DashboardSummary
	summary.Members.Total = len(c.data.Members)
	counts := map[string]int{}
	for _, member := range c.data.Members {
		if member.IsActive() {
			summary.Members.Active++
		}
		if member.PlanEndDate != nil && gym.IsExpiringSoonAt(*member.PlanEndDate, now, gym.DefaultExpiryWindowDays) {
			summary.Alerts.ExpiringMemberships++
		}
		if id, ok := member.CurrentPlan.ID(); ok {
			counts[id]++
		}
	}
	for _, record := range c.data.Attendance {
		if sameDay(record.CheckInTime, now) {
			summary.Attendance.Today++
		}
	}
	for _, payment := range c.data.Payments {
		switch {
		case payment.PaymentStatus == gym.PaymentPaid && payment.PaymentDate.Year() == now.Year() && payment.PaymentDate.Month() == now.Month():
			summary.Revenue.Monthly += payment.FinalAmount
		case payment.PaymentStatus == gym.PaymentPending:
			summary.PendingPayments = append(summary.PendingPayments, payment)
		}
	}
	recent := slices.Clone(c.data.Members)
	slices.SortStableFunc(recent, func(a, b gym.Member) int { return b.JoinDate.Compare(a.JoinDate) })
	summary.RecentMembers = recent[:min(5, len(recent))]
	for _, plan := range c.data.Plans {
		if counts[plan.ID] > 0 {
			summary.PlanDistribution = append(summary.PlanDistribution, gym.PlanDistribution{
				PlanID:   plan.ID,
				PlanName: plan.PlanName,
				Count:    counts[plan.ID],
			})
		}
	}
	return summary, nil
}

// FetchReport implements gym.ReportRepository using the seeded data.
func (c *MockClient) FetchReport(_ context.Context, kind gym.ReportKind, rng gym.DateRange) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track("FetchReport")
	inRange := func(t time.Time) bool {
		if rng.IsZero() {
			return true
		}
		return !t.Before(rng.Start) && !t.After(rng.End)
	}
	var body any
	switch kind {
	case gym.ReportMembers:
		members := []gym.Member{}
		for _, member := range c.data.Members {
			if inRange(member.JoinDate) {
				members = append(members, member)
			}
		}
		body = map[string]any{"members": members, "statistics": map[string]any{"total": len(members)}}
	case gym.ReportAttendance:
		records := []gym.AttendanceRecord{}
		for _, record := range c.data.Attendance {
			if inRange(record.CheckInTime) {
				records = append(records, record)
			}
		}
		body = map[string]any{"attendance": records, "statistics": map[string]any{"total": len(records)}}
	case gym.ReportFinancial:
		payments := []gym.Payment{}
		total := 0.0
		for _, payment := range c.data.Payments {
			if inRange(payment.PaymentDate) {
				payments = append(payments, payment)
				total += payment.FinalAmount
			}
		}
		body = map[string]any{"payments": payments, "statistics": map[string]any{"totalRevenue": total}}
	case gym.ReportPlans:
		body = c.planReport()
	case gym.ReportTrainers:
		body = c.trainerReport()
	default:
		return nil, &Error{Status: 404, Message: fmt.Sprintf("unknown report %q", kind)}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("api: encode mock report: %w", err)
	}
	return raw, nil
}

func (c *MockClient) planReport() []gym.PlanReportRow {
	rows := make([]gym.PlanReportRow, 0, len(c.data.Plans))
	for _, plan := range c.data.Plans {
		var row gym.PlanReportRow
		row.Plan.Name = plan.PlanName
		row.Plan.Price = plan.Price
		row.Plan.Duration, _ = json.Marshal(plan.Duration)
		row.Plan.AccessType, _ = json.Marshal(plan.AccessType)
		for _, member := range c.data.Members {
			if member.CurrentPlan.IDOrEmpty() != plan.ID {
				continue
			}
			row.TotalMembers++
			if member.IsActive() {
				row.ActiveMembers++
			}
		}
		for _, payment := range c.data.Payments {
			if payment.Plan.IDOrEmpty() == plan.ID && payment.PaymentStatus == gym.PaymentPaid {
				row.TotalRevenue += payment.FinalAmount
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (c *MockClient) trainerReport() []gym.TrainerReportRow {
	rows := make([]gym.TrainerReportRow, 0, len(c.data.Trainers))
	for _, trainer := range c.data.Trainers {
		var row gym.TrainerReportRow
		row.Trainer.TrainerID = trainer.TrainerID
		row.Trainer.Name = trainer.FullName
		row.Trainer.Specialization = slices.Clone(trainer.Specialization)
		experience := trainer.Experience
		row.Trainer.Experience = &experience
		row.Trainer.IsActive = trainer.IsActive
		for _, member := range c.data.Members {
			if member.AssignedTrainer.IDOrEmpty() != trainer.ID {
				continue
			}
			row.TotalAssignedMembers++
			if member.IsActive() {
				row.ActiveMembers++
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (c *MockClient) findPlan(id string) (gym.Plan, bool) {
	idx := slices.IndexFunc(c.data.Plans, func(p gym.Plan) bool { return p.ID == id })
	if id == "" || idx < 0 {
		return gym.Plan{}, false
	}
	return c.data.Plans[idx], true
}

func (c *MockClient) findTrainer(id string) (gym.Trainer, bool) {
	idx := slices.IndexFunc(c.data.Trainers, func(t gym.Trainer) bool { return t.ID == id })
	if id == "" || idx < 0 {
		return gym.Trainer{}, false
	}
	return c.data.Trainers[idx], true
}

func summarize(member gym.Member) gym.MemberSummary {
	return gym.MemberSummary{
		ID:               member.ID,
		MemberID:         member.MemberID,
		FullName:         member.FullName,
		Phone:            member.Phone,
		MembershipStatus: member.MembershipStatus,
	}
}

func planEnd(start time.Time, duration gym.PlanDuration) time.Time {
	if duration.Unit == gym.UnitDays {
		return start.AddDate(0, 0, duration.Value)
	}
	return start.AddDate(0, duration.Value, 0)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
