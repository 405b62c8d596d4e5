package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goliatone/go-gymdesk/components/gym"
)

// Login exchanges credentials for a token. It does not touch the session;
// callers install the result themselves.
func (c *Client) Login(ctx context.Context, creds gym.Credentials) (gym.LoginResult, error) {
	var result gym.LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &result); err != nil {
		return gym.LoginResult{}, err
	}
	return result, nil
}

// ListMembers implements gym.MemberRepository.
func (c *Client) ListMembers(ctx context.Context, query gym.MemberQuery) ([]gym.Member, error) {
	params := url.Values{}
	if query.Status != "" {
		params.Set("status", query.Status)
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	var members []gym.Member
	if err := c.do(ctx, http.MethodGet, "/members", params, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// GetMember implements gym.MemberRepository.
func (c *Client) GetMember(ctx context.Context, id string) (gym.MemberDetails, error) {
	var details gym.MemberDetails
	if err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(id), nil, nil, &details); err != nil {
		return gym.MemberDetails{}, err
	}
	return details, nil
}

// CreateMember implements gym.MemberRepository.
func (c *Client) CreateMember(ctx context.Context, payload gym.MemberPayload) (gym.Member, error) {
	var member gym.Member
	if err := c.do(ctx, http.MethodPost, "/members", nil, payload, &member); err != nil {
		return gym.Member{}, err
	}
	return member, nil
}

// UpdateMember implements gym.MemberRepository.
func (c *Client) UpdateMember(ctx context.Context, id string, payload gym.MemberPayload) (gym.Member, error) {
	var member gym.Member
	if err := c.do(ctx, http.MethodPut, "/members/"+url.PathEscape(id), nil, payload, &member); err != nil {
		return gym.Member{}, err
	}
	return member, nil
}

// DeleteMember implements gym.MemberRepository.
func (c *Client) DeleteMember(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/members/"+url.PathEscape(id), nil, nil, nil)
}

// ListTrainers implements gym.TrainerRepository.
func (c *Client) ListTrainers(ctx context.Context) ([]gym.Trainer, error) {
	var trainers []gym.Trainer
	if err := c.do(ctx, http.MethodGet, "/trainers", nil, nil, &trainers); err != nil {
		return nil, err
	}
	return trainers, nil
}

// CreateTrainer implements gym.TrainerRepository.
func (c *Client) CreateTrainer(ctx context.Context, payload gym.TrainerPayload) (gym.Trainer, error) {
	var trainer gym.Trainer
	if err := c.do(ctx, http.MethodPost, "/trainers", nil, payload, &trainer); err != nil {
		return gym.Trainer{}, err
	}
	return trainer, nil
}

// UpdateTrainer implements gym.TrainerRepository.
func (c *Client) UpdateTrainer(ctx context.Context, id string, payload gym.TrainerPayload) (gym.Trainer, error) {
	var trainer gym.Trainer
	if err := c.do(ctx, http.MethodPut, "/trainers/"+url.PathEscape(id), nil, payload, &trainer); err != nil {
		return gym.Trainer{}, err
	}
	return trainer, nil
}

// DeleteTrainer implements gym.TrainerRepository.
func (c *Client) DeleteTrainer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/trainers/"+url.PathEscape(id), nil, nil, nil)
}

// ListPlans implements gym.PlanRepository.
func (c *Client) ListPlans(ctx context.Context) ([]gym.Plan, error) {
	var plans []gym.Plan
	if err := c.do(ctx, http.MethodGet, "/plans", nil, nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// CreatePlan implements gym.PlanRepository.
func (c *Client) CreatePlan(ctx context.Context, payload gym.PlanPayload) (gym.Plan, error) {
	var plan gym.Plan
	if err := c.do(ctx, http.MethodPost, "/plans", nil, payload, &plan); err != nil {
		return gym.Plan{}, err
	}
	return plan, nil
}

// UpdatePlan implements gym.PlanRepository.
func (c *Client) UpdatePlan(ctx context.Context, id string, payload gym.PlanPayload) (gym.Plan, error) {
	var plan gym.Plan
	if err := c.do(ctx, http.MethodPut, "/plans/"+url.PathEscape(id), nil, payload, &plan); err != nil {
		return gym.Plan{}, err
	}
	return plan, nil
}

// DeletePlan implements gym.PlanRepository.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/plans/"+url.PathEscape(id), nil, nil, nil)
}

// TodayAttendance implements gym.AttendanceRepository.
func (c *Client) TodayAttendance(ctx context.Context) ([]gym.AttendanceRecord, error) {
	var records []gym.AttendanceRecord
	if err := c.do(ctx, http.MethodGet, "/attendance/today", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CheckIn implements gym.AttendanceRepository.
func (c *Client) CheckIn(ctx context.Context, req gym.CheckInRequest) (gym.AttendanceRecord, error) {
	var record gym.AttendanceRecord
	if err := c.do(ctx, http.MethodPost, "/attendance/checkin", nil, req, &record); err != nil {
		return gym.AttendanceRecord{}, err
	}
	return record, nil
}

type checkOutRequest struct {
	AttendanceID string `json:"attendanceId"`
}

// CheckOut implements gym.AttendanceRepository.
func (c *Client) CheckOut(ctx context.Context, attendanceID string) (gym.AttendanceRecord, error) {
	var record gym.AttendanceRecord
	if err := c.do(ctx, http.MethodPost, "/attendance/checkout", nil, checkOutRequest{AttendanceID: attendanceID}, &record); err != nil {
		return gym.AttendanceRecord{}, err
	}
	return record, nil
}

// ListPayments implements gym.PaymentRepository.
func (c *Client) ListPayments(ctx context.Context) ([]gym.Payment, error) {
	var payments []gym.Payment
	if err := c.do(ctx, http.MethodGet, "/members/payments/all", nil, nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

// MarkPaymentPaid implements gym.PaymentRepository.
func (c *Client) MarkPaymentPaid(ctx context.Context, paymentID string) error {
	return c.do(ctx, http.MethodPatch, "/members/payments/"+url.PathEscape(paymentID), nil,
		paymentStatusRequest{PaymentStatus: gym.PaymentPaid}, nil)
}

// DashboardSummary implements gym.DashboardRepository.
func (c *Client) DashboardSummary(ctx context.Context) (gym.DashboardSummary, error) {
	var summary gym.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, nil, &summary); err != nil {
		return gym.DashboardSummary{}, err
	}
	return summary, nil
}

// FetchReport implements gym.ReportRepository.
func (c *Client) FetchReport(ctx context.Context, kind gym.ReportKind, rng gym.DateRange) (json.RawMessage, error) {
	var params url.Values
	if kind.Ranged() && !rng.IsZero() {
		params = url.Values{}
		params.Set("startDate", rng.StartParam())
		params.Set("endDate", rng.EndParam())
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/reports/"+string(kind), params, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
