package gym

import (
	"context"
	"encoding/json"
)

// MemberRepository reads and mutates members on the backend.
type MemberRepository interface {
	ListMembers(ctx context.Context, query MemberQuery) ([]Member, error)
	GetMember(ctx context.Context, id string) (MemberDetails, error)
	CreateMember(ctx context.Context, payload MemberPayload) (Member, error)
	UpdateMember(ctx context.Context, id string, payload MemberPayload) (Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// TrainerRepository reads and mutates trainers.
type TrainerRepository interface {
	ListTrainers(ctx context.Context) ([]Trainer, error)
	CreateTrainer(ctx context.Context, payload TrainerPayload) (Trainer, error)
	UpdateTrainer(ctx context.Context, id string, payload TrainerPayload) (Trainer, error)
	DeleteTrainer(ctx context.Context, id string) error
}

// PlanRepository reads and mutates membership plans.
type PlanRepository interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	CreatePlan(ctx context.Context, payload PlanPayload) (Plan, error)
	UpdatePlan(ctx context.Context, id string, payload PlanPayload) (Plan, error)
	DeletePlan(ctx context.Context, id string) error
}

// AttendanceRepository reads today's attendance and records check-ins/outs.
type AttendanceRepository interface {
	TodayAttendance(ctx context.Context) ([]AttendanceRecord, error)
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceRecord, error)
	CheckOut(ctx context.Context, attendanceID string) (AttendanceRecord, error)
}

// PaymentRepository lists payments and settles pending ones.
type PaymentRepository interface {
	ListPayments(ctx context.Context) ([]Payment, error)
	MarkPaymentPaid(ctx context.Context, paymentID string) error
}

// DashboardRepository exposes the backend's precomputed dashboard summary.
type DashboardRepository interface {
	DashboardSummary(ctx context.Context) (DashboardSummary, error)
}

// ReportRepository fetches raw report payloads. Plan and trainer reports
// ignore the range.
type ReportRepository interface {
	FetchReport(ctx context.Context, kind ReportKind, rng DateRange) (json.RawMessage, error)
}

// AuthRepository exchanges credentials for a session token.
type AuthRepository interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
}

// Backend is the full REST surface the desk depends on.
type Backend interface {
	MemberRepository
	TrainerRepository
	PlanRepository
	AttendanceRepository
	PaymentRepository
	DashboardRepository
	ReportRepository
}
