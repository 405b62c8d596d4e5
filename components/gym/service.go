package gym

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache key prefixes. Mutations invalidate by prefix.
const (
	keyMembers    = "members"
	keyMember     = "member:"
	keyTrainers   = "trainers"
	keyPlans      = "plans"
	keyAttendance = "attendance"
	keyPayments   = "payments"
	keyDashboard  = "dashboard"
	keyReports    = "reports"
)

// statsMemberLimit is the page size used when every member is needed for
// plan and trainer rollups.
const statsMemberLimit = 10000

// MinSearchLength is the shortest term accepted by SearchCheckInCandidates.
const MinSearchLength = 2

// Options configures the Service. Backend is required; everything else has a
// default.
type Options struct {
	Backend          Backend
	Cache            *QueryCache
	Telemetry        Telemetry
	Now              func() time.Time
	Location         *time.Location
	ExpiryWindowDays int
	RequireTrainer   bool
}

// Service loads backend data through the query cache, derives statistics, and
// runs mutations that invalidate the affected queries.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = NewQueryCache(DefaultCacheTTL)
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.ExpiryWindowDays <= 0 {
		opts.ExpiryWindowDays = DefaultExpiryWindowDays
	}
	return &Service{opts: opts}
}

// Today returns the current instant in the configured location.
func (s *Service) Today() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// Location returns the configured location.
func (s *Service) Location() *time.Location {
	return s.opts.Location
}

func (s *Service) backend() (Backend, error) {
	if s.opts.Backend == nil {
		return nil, errMissingBackend
	}
	return s.opts.Backend, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// Refresh drops cached queries under the given prefixes, or everything when
// none are given.
func (s *Service) Refresh(ctx context.Context, prefixes ...string) {
	removed := s.opts.Cache.Invalidate(prefixes...)
	s.recordTelemetry(ctx, "gym.cache.refresh", map[string]any{
		"prefixes": prefixes,
		"removed":  removed,
	})
}

func (s *Service) invalidate(prefixes ...string) {
	if len(prefixes) == 0 {
		return
	}
	s.opts.Cache.Invalidate(prefixes...)
}

// Members lists members matching query.
func (s *Service) Members(ctx context.Context, query MemberQuery) ([]Member, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	if query.Status == "All" {
		query.Status = ""
	}
	return loadCached(ctx, s.opts.Cache, queryKey(keyMembers, query), func(ctx context.Context) ([]Member, error) {
		return backend.ListMembers(ctx, query)
	})
}

// Member loads a member profile with its attendance and payment history.
func (s *Service) Member(ctx context.Context, id string) (MemberDetails, error) {
	backend, err := s.backend()
	if err != nil {
		return MemberDetails{}, err
	}
	if strings.TrimSpace(id) == "" {
		return MemberDetails{}, ErrMissingID
	}
	return loadCached(ctx, s.opts.Cache, keyMember+id, func(ctx context.Context) (MemberDetails, error) {
		return backend.GetMember(ctx, id)
	})
}

// Trainers lists trainers.
func (s *Service) Trainers(ctx context.Context) ([]Trainer, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s.opts.Cache, keyTrainers, backend.ListTrainers)
}

// Plans lists plans.
func (s *Service) Plans(ctx context.Context) ([]Plan, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s.opts.Cache, keyPlans, backend.ListPlans)
}

// TodayAttendance lists today's attendance records.
func (s *Service) TodayAttendance(ctx context.Context) ([]AttendanceRecord, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s.opts.Cache, keyAttendance+":today", backend.TodayAttendance)
}

// Payments lists payments whose member still exists.
func (s *Service) Payments(ctx context.Context) ([]Payment, error) {
	backend, err := s.backend()
	if err != nil {
		return nil, err
	}
	return loadCached(ctx, s.opts.Cache, keyPayments, func(ctx context.Context) ([]Payment, error) {
		payments, err := backend.ListPayments(ctx)
		if err != nil {
			return nil, err
		}
		kept := payments[:0:0]
		for _, payment := range payments {
			if payment.Member.Valid() {
				kept = append(kept, payment)
			}
		}
		return kept, nil
	})
}

// Summary returns the backend's dashboard summary.
func (s *Service) Summary(ctx context.Context) (DashboardSummary, error) {
	backend, err := s.backend()
	if err != nil {
		return DashboardSummary{}, err
	}
	return loadCached(ctx, s.opts.Cache, keyDashboard, backend.DashboardSummary)
}

// AttendanceStats derives today's attendance summary.
func (s *Service) AttendanceStats(ctx context.Context) (AttendanceStats, error) {
	records, err := s.TodayAttendance(ctx)
	if err != nil {
		return AttendanceStats{}, err
	}
	return ComputeAttendanceStats(records, s.opts.Location), nil
}

// PlanStats derives plan performance over every member.
func (s *Service) PlanStats(ctx context.Context) (PlanStats, error) {
	plans, err := s.Plans(ctx)
	if err != nil {
		return PlanStats{}, err
	}
	members, err := s.Members(ctx, MemberQuery{Limit: statsMemberLimit})
	if err != nil {
		return PlanStats{}, err
	}
	return ComputePlanStatsWindow(plans, members, s.Today(), s.opts.ExpiryWindowDays), nil
}

// TrainerStats derives trainer workload over every member.
func (s *Service) TrainerStats(ctx context.Context) (TrainerStats, error) {
	trainers, err := s.Trainers(ctx)
	if err != nil {
		return TrainerStats{}, err
	}
	members, err := s.Members(ctx, MemberQuery{Limit: statsMemberLimit})
	if err != nil {
		return TrainerStats{}, err
	}
	return ComputeTrainerStats(trainers, members), nil
}

// ExpiringMembers lists members whose plan ends within the expiry window.
func (s *Service) ExpiringMembers(ctx context.Context) ([]Member, error) {
	members, err := s.Members(ctx, MemberQuery{Limit: statsMemberLimit})
	if err != nil {
		return nil, err
	}
	today := s.Today()
	var expiring []Member
	for _, member := range members {
		if member.PlanEndDate != nil && IsExpiringSoonAt(*member.PlanEndDate, today, s.opts.ExpiryWindowDays) {
			expiring = append(expiring, member)
		}
	}
	return expiring, nil
}

// SearchCheckInCandidates returns active members matching term. Terms shorter
// than MinSearchLength return nothing without calling the backend.
func (s *Service) SearchCheckInCandidates(ctx context.Context, term string) ([]Member, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < MinSearchLength {
		return nil, nil
	}
	members, err := s.Members(ctx, MemberQuery{Search: term})
	if err != nil {
		return nil, err
	}
	var active []Member
	for _, member := range members {
		if member.IsActive() {
			active = append(active, member)
		}
	}
	return active, nil
}

// CheckIn records a member entering the gym. An empty attendance type means a
// manual check-in.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (AttendanceRecord, error) {
	backend, err := s.backend()
	if err != nil {
		return AttendanceRecord{}, err
	}
	if strings.TrimSpace(req.MemberID) == "" {
		return AttendanceRecord{}, fmt.Errorf("gym: check-in: %w", ErrMissingID)
	}
	if req.AttendanceType == "" {
		req.AttendanceType = AttendanceManual
	}
	record, err := backend.CheckIn(ctx, req)
	if err != nil {
		return AttendanceRecord{}, err
	}
	s.invalidate(keyAttendance, keyDashboard, keyMember+req.MemberID)
	s.recordTelemetry(ctx, "gym.attendance.checkin", map[string]any{
		"member_id":       req.MemberID,
		"attendance_type": req.AttendanceType,
	})
	return record, nil
}

// CheckOut closes an open attendance record.
func (s *Service) CheckOut(ctx context.Context, attendanceID string) (AttendanceRecord, error) {
	backend, err := s.backend()
	if err != nil {
		return AttendanceRecord{}, err
	}
	if strings.TrimSpace(attendanceID) == "" {
		return AttendanceRecord{}, fmt.Errorf("gym: check-out: %w", ErrMissingID)
	}
	record, err := backend.CheckOut(ctx, attendanceID)
	if err != nil {
		return AttendanceRecord{}, err
	}
	s.invalidate(keyAttendance, keyDashboard, keyMember)
	s.recordTelemetry(ctx, "gym.attendance.checkout", map[string]any{
		"attendance_id": attendanceID,
	})
	return record, nil
}

// MarkPaymentPaid settles a pending payment.
func (s *Service) MarkPaymentPaid(ctx context.Context, paymentID string) error {
	backend, err := s.backend()
	if err != nil {
		return err
	}
	if strings.TrimSpace(paymentID) == "" {
		return fmt.Errorf("gym: mark paid: %w", ErrMissingID)
	}
	if err := backend.MarkPaymentPaid(ctx, paymentID); err != nil {
		return err
	}
	s.invalidate(keyPayments, keyDashboard, keyMember)
	s.recordTelemetry(ctx, "gym.payment.paid", map[string]any{"payment_id": paymentID})
	return nil
}

// EntityKind names a deletable backend collection.
type EntityKind string

const (
	EntityMember  EntityKind = "member"
	EntityTrainer EntityKind = "trainer"
	EntityPlan    EntityKind = "plan"
)

// Delete removes an entity.
func (s *Service) Delete(ctx context.Context, kind EntityKind, id string) error {
	backend, err := s.backend()
	if err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("gym: delete %s: %w", kind, ErrMissingID)
	}
	switch kind {
	case EntityMember:
		err = backend.DeleteMember(ctx, id)
		s.invalidateOnSuccess(err, keyMembers, keyMember+id, keyTrainers, keyDashboard, keyPayments)
	case EntityTrainer:
		err = backend.DeleteTrainer(ctx, id)
		s.invalidateOnSuccess(err, keyTrainers, keyMembers, keyMember)
	case EntityPlan:
		err = backend.DeletePlan(ctx, id)
		s.invalidateOnSuccess(err, keyPlans, keyMembers, keyDashboard)
	default:
		return fmt.Errorf("gym: unknown entity kind %q", kind)
	}
	if err != nil {
		return err
	}
	s.recordTelemetry(ctx, "gym.entity.delete", map[string]any{"kind": string(kind), "id": id})
	return nil
}

func (s *Service) invalidateOnSuccess(err error, prefixes ...string) {
	if err == nil {
		s.invalidate(prefixes...)
	}
}

// SaveMember validates draft under the configured form rules, then creates or
// updates the member.
func (s *Service) SaveMember(ctx context.Context, draft MemberDraft) (Member, error) {
	backend, err := s.backend()
	if err != nil {
		return Member{}, err
	}
	draft.RequireTrainer = draft.RequireTrainer || s.opts.RequireTrainer
	if err := draft.Validate(); err != nil {
		return Member{}, err
	}
	var member Member
	if draft.Editing() {
		member, err = backend.UpdateMember(ctx, draft.ID, draft.Payload())
	} else {
		member, err = backend.CreateMember(ctx, draft.Payload())
	}
	if err != nil {
		return Member{}, err
	}
	s.invalidate(keyMembers, keyMember+draft.ID, keyTrainers, keyDashboard, keyPayments)
	s.recordTelemetry(ctx, "gym.member.save", map[string]any{
		"member_id": member.ID,
		"editing":   draft.Editing(),
	})
	return member, nil
}

// SavePlan creates or updates a plan.
func (s *Service) SavePlan(ctx context.Context, draft PlanDraft) (Plan, error) {
	backend, err := s.backend()
	if err != nil {
		return Plan{}, err
	}
	var plan Plan
	if draft.Editing() {
		plan, err = backend.UpdatePlan(ctx, draft.ID, draft.Payload())
	} else {
		plan, err = backend.CreatePlan(ctx, draft.Payload())
	}
	if err != nil {
		return Plan{}, err
	}
	s.invalidate(keyPlans, keyMembers, keyDashboard)
	s.recordTelemetry(ctx, "gym.plan.save", map[string]any{"plan_id": plan.ID, "editing": draft.Editing()})
	return plan, nil
}

// SaveTrainer creates or updates a trainer.
func (s *Service) SaveTrainer(ctx context.Context, draft TrainerDraft) (Trainer, error) {
	backend, err := s.backend()
	if err != nil {
		return Trainer{}, err
	}
	var trainer Trainer
	if draft.Editing() {
		trainer, err = backend.UpdateTrainer(ctx, draft.ID, draft.Payload())
	} else {
		trainer, err = backend.CreateTrainer(ctx, draft.Payload())
	}
	if err != nil {
		return Trainer{}, err
	}
	s.invalidate(keyTrainers, keyMembers, keyMember)
	s.recordTelemetry(ctx, "gym.trainer.save", map[string]any{"trainer_id": trainer.ID, "editing": draft.Editing()})
	return trainer, nil
}

// NewMemberForm returns a member form that submits through SaveMember.
func (s *Service) NewMemberForm() *Form[MemberDraft] {
	return NewForm("member", func(ctx context.Context, draft MemberDraft) error {
		_, err := s.SaveMember(ctx, draft)
		return err
	}, s.opts.Telemetry)
}

// NewPlanForm returns a plan form that submits through SavePlan.
func (s *Service) NewPlanForm() *Form[PlanDraft] {
	return NewForm("plan", func(ctx context.Context, draft PlanDraft) error {
		_, err := s.SavePlan(ctx, draft)
		return err
	}, s.opts.Telemetry)
}

// NewTrainerForm returns a trainer form that submits through SaveTrainer.
func (s *Service) NewTrainerForm() *Form[TrainerDraft] {
	return NewForm("trainer", func(ctx context.Context, draft TrainerDraft) error {
		_, err := s.SaveTrainer(ctx, draft)
		return err
	}, s.opts.Telemetry)
}

// ReportRequest selects a report and its window.
type ReportRequest struct {
	Kind   ReportKind
	Preset RangePreset
	Custom DateRange
}

// Report fetches and decodes a report.
func (s *Service) Report(ctx context.Context, req ReportRequest) (Report, error) {
	backend, err := s.backend()
	if err != nil {
		return Report{}, err
	}
	if _, err := ParseReportKind(string(req.Kind)); err != nil {
		return Report{}, err
	}
	rng, err := ResolveDateRange(req.Preset, s.Today(), req.Custom)
	if err != nil {
		return Report{}, err
	}
	key := queryKey(keyReports+":"+string(req.Kind), map[string]string{
		"start": rng.StartParam(),
		"end":   rng.EndParam(),
	})
	report, err := loadCached(ctx, s.opts.Cache, key, func(ctx context.Context) (Report, error) {
		raw, err := backend.FetchReport(ctx, req.Kind, rng)
		if err != nil {
			return Report{}, err
		}
		return DecodeReport(req.Kind, rng, raw)
	})
	if err != nil {
		return Report{}, err
	}
	s.recordTelemetry(ctx, "gym.report.generate", map[string]any{
		"kind":  string(req.Kind),
		"start": rng.StartParam(),
		"end":   rng.EndParam(),
	})
	return report, nil
}
