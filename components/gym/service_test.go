package gym

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu         sync.Mutex
	calls      map[string]int
	members    []Member
	trainers   []Trainer
	plans      []Plan
	attendance []AttendanceRecord
	payments   []Payment
	report     json.RawMessage
	lastQuery  MemberQuery
	lastRange  DateRange
	created    []MemberPayload
	err        error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) track(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) ListMembers(_ context.Context, q MemberQuery) ([]Member, error) {
	f.lastQuery = q
	return f.members, f.track("ListMembers")
}

func (f *fakeBackend) GetMember(_ context.Context, id string) (MemberDetails, error) {
	return MemberDetails{Member: Member{ID: id}}, f.track("GetMember")
}

func (f *fakeBackend) CreateMember(_ context.Context, p MemberPayload) (Member, error) {
	f.created = append(f.created, p)
	return Member{ID: "new"}, f.track("CreateMember")
}

func (f *fakeBackend) UpdateMember(_ context.Context, id string, _ MemberPayload) (Member, error) {
	return Member{ID: id}, f.track("UpdateMember")
}

func (f *fakeBackend) DeleteMember(context.Context, string) error { return f.track("DeleteMember") }

func (f *fakeBackend) ListTrainers(context.Context) ([]Trainer, error) {
	return f.trainers, f.track("ListTrainers")
}

func (f *fakeBackend) CreateTrainer(context.Context, TrainerPayload) (Trainer, error) {
	return Trainer{ID: "t-new"}, f.track("CreateTrainer")
}

func (f *fakeBackend) UpdateTrainer(_ context.Context, id string, _ TrainerPayload) (Trainer, error) {
	return Trainer{ID: id}, f.track("UpdateTrainer")
}

func (f *fakeBackend) DeleteTrainer(context.Context, string) error { return f.track("DeleteTrainer") }

func (f *fakeBackend) ListPlans(context.Context) ([]Plan, error) {
	return f.plans, f.track("ListPlans")
}

func (f *fakeBackend) CreatePlan(context.Context, PlanPayload) (Plan, error) {
	return Plan{ID: "p-new"}, f.track("CreatePlan")
}

func (f *fakeBackend) UpdatePlan(_ context.Context, id string, _ PlanPayload) (Plan, error) {
	return Plan{ID: id}, f.track("UpdatePlan")
}

func (f *fakeBackend) DeletePlan(context.Context, string) error { return f.track("DeletePlan") }

func (f *fakeBackend) TodayAttendance(context.Context) ([]AttendanceRecord, error) {
	return f.attendance, f.track("TodayAttendance")
}

func (f *fakeBackend) CheckIn(_ context.Context, req CheckInRequest) (AttendanceRecord, error) {
	return AttendanceRecord{ID: "a-new", AttendanceType: req.AttendanceType}, f.track("CheckIn")
}

func (f *fakeBackend) CheckOut(_ context.Context, id string) (AttendanceRecord, error) {
	return AttendanceRecord{ID: id}, f.track("CheckOut")
}

func (f *fakeBackend) ListPayments(context.Context) ([]Payment, error) {
	return f.payments, f.track("ListPayments")
}

func (f *fakeBackend) MarkPaymentPaid(context.Context, string) error {
	return f.track("MarkPaymentPaid")
}

func (f *fakeBackend) DashboardSummary(context.Context) (DashboardSummary, error) {
	return DashboardSummary{}, f.track("DashboardSummary")
}

func (f *fakeBackend) FetchReport(_ context.Context, _ ReportKind, rng DateRange) (json.RawMessage, error) {
	f.lastRange = rng
	return f.report, f.track("FetchReport")
}

type recordingTelemetry struct {
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}

var serviceNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

func newTestService(backend Backend, telemetry Telemetry) *Service {
	return NewService(Options{
		Backend:   backend,
		Telemetry: telemetry,
		Now:       func() time.Time { return serviceNow },
		Location:  time.UTC,
	})
}

func TestServiceCachesReads(t *testing.T) {
	backend := newFakeBackend()
	backend.plans = []Plan{{ID: "p1", PlanName: "Basic", IsActive: true}}
	svc := newTestService(backend, nil)
	ctx := context.Background()

	_, err := svc.Plans(ctx)
	require.NoError(t, err)
	_, err = svc.Plans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.count("ListPlans"))

	svc.Refresh(ctx, "plans")
	_, err = svc.Plans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.count("ListPlans"))
}

func TestServiceFailedReadsAreNotCached(t *testing.T) {
	backend := newFakeBackend()
	backend.err = errors.New("boom")
	svc := newTestService(backend, nil)

	_, err := svc.Trainers(context.Background())
	require.Error(t, err)
	backend.err = nil
	_, err = svc.Trainers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, backend.count("ListTrainers"))
}

func TestServiceMembersTreatsAllAsNoFilter(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(backend, nil)

	_, err := svc.Members(context.Background(), MemberQuery{Status: "All", Search: "ann"})
	require.NoError(t, err)
	assert.Empty(t, backend.lastQuery.Status)
	assert.Equal(t, "ann", backend.lastQuery.Search)
}

func TestServiceSearchCheckInCandidates(t *testing.T) {
	backend := newFakeBackend()
	backend.members = []Member{
		{ID: "1", FullName: "Ann", MembershipStatus: StatusActive},
		{ID: "2", FullName: "Anna", MembershipStatus: StatusExpired},
	}
	svc := newTestService(backend, nil)

	found, err := svc.SearchCheckInCandidates(context.Background(), " a ")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Zero(t, backend.count("ListMembers"))

	found, err = svc.SearchCheckInCandidates(context.Background(), "an")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)
}

func TestServicePaymentsDropOrphans(t *testing.T) {
	backend := newFakeBackend()
	backend.payments = []Payment{
		{ID: "pay-1", Member: RefTo[MemberSummary]("m1")},
		{ID: "pay-2"},
	}
	svc := newTestService(backend, nil)

	payments, err := svc.Payments(context.Background())
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "pay-1", payments[0].ID)
}

func TestServiceCheckInDefaultsAndInvalidates(t *testing.T) {
	backend := newFakeBackend()
	telemetry := &recordingTelemetry{}
	svc := newTestService(backend, telemetry)
	ctx := context.Background()

	_, err := svc.TodayAttendance(ctx)
	require.NoError(t, err)

	record, err := svc.CheckIn(ctx, CheckInRequest{MemberID: "m1"})
	require.NoError(t, err)
	assert.Equal(t, AttendanceManual, record.AttendanceType)

	_, err = svc.TodayAttendance(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.count("TodayAttendance"))
	assert.Contains(t, telemetry.events, "gym.attendance.checkin")
}

func TestServiceMutationsRequireID(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(backend, nil)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, CheckInRequest{})
	assert.ErrorIs(t, err, ErrMissingID)
	_, err = svc.CheckOut(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingID)
	assert.ErrorIs(t, svc.MarkPaymentPaid(ctx, ""), ErrMissingID)
	assert.ErrorIs(t, svc.Delete(ctx, EntityPlan, ""), ErrMissingID)
	assert.Zero(t, backend.count("CheckIn")+backend.count("CheckOut")+backend.count("MarkPaymentPaid")+backend.count("DeletePlan"))
}

func TestServiceFailedMutationKeepsCache(t *testing.T) {
	backend := newFakeBackend()
	svc := newTestService(backend, nil)
	ctx := context.Background()

	_, err := svc.Plans(ctx)
	require.NoError(t, err)
	backend.err = errors.New("denied")
	require.Error(t, svc.Delete(ctx, EntityPlan, "p1"))
	backend.err = nil

	_, err = svc.Plans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.count("ListPlans"))
}

func TestServiceDeleteUnknownKind(t *testing.T) {
	svc := newTestService(newFakeBackend(), nil)
	err := svc.Delete(context.Background(), EntityKind("locker"), "l1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locker")
}

func TestServiceWithoutBackend(t *testing.T) {
	svc := NewService(Options{})
	_, err := svc.Members(context.Background(), MemberQuery{})
	assert.ErrorIs(t, err, errMissingBackend)
}

func TestServiceExpiringMembersUsesWindow(t *testing.T) {
	backend := newFakeBackend()
	soon := serviceNow.AddDate(0, 0, 3)
	later := serviceNow.AddDate(0, 0, 30)
	past := serviceNow.AddDate(0, 0, -1)
	backend.members = []Member{
		{ID: "soon", PlanEndDate: &soon},
		{ID: "later", PlanEndDate: &later},
		{ID: "past", PlanEndDate: &past},
		{ID: "none"},
	}
	svc := newTestService(backend, nil)

	expiring, err := svc.ExpiringMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "soon", expiring[0].ID)
}

func TestServiceReportResolvesRangeAndCaches(t *testing.T) {
	backend := newFakeBackend()
	backend.report = json.RawMessage(`[{"plan":{"name":"Basic","price":1000,"duration":{"value":1,"unit":"months"}},"activeMembers":3,"totalMembers":4}]`)
	svc := newTestService(backend, nil)
	ctx := context.Background()

	report, err := svc.Report(ctx, ReportRequest{Kind: ReportPlans, Preset: RangeMonth})
	require.NoError(t, err)
	assert.False(t, report.Empty())
	assert.Equal(t, "2024-05-01", backend.lastRange.StartParam())

	_, err = svc.Report(ctx, ReportRequest{Kind: ReportPlans, Preset: RangeMonth})
	require.NoError(t, err)
	assert.Equal(t, 1, backend.count("FetchReport"))

	_, err = svc.Report(ctx, ReportRequest{Kind: "bogus"})
	assert.Error(t, err)
}

func TestServiceMemberFormSubmitsOnce(t *testing.T) {
	backend := newFakeBackend()
	backend.plans = []Plan{{ID: "p1", Price: 1000}}
	svc := newTestService(backend, nil)
	ctx := context.Background()

	form := svc.NewMemberForm()
	require.NoError(t, form.Open(NewMemberDraft()))
	require.NoError(t, form.Update(func(d *MemberDraft) error {
		d.FullName, d.Phone = "Ann", "555"
		return d.SelectPlan("p1", backend.plans)
	}))
	require.NoError(t, form.Submit(ctx))
	assert.Equal(t, FormClosed, form.State())
	require.Len(t, backend.created, 1)
	assert.Equal(t, 1, backend.count("CreateMember"))
}

func TestServiceMemberFormHonoursRequireTrainer(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(Options{Backend: backend, RequireTrainer: true})

	form := svc.NewMemberForm()
	require.NoError(t, form.Open(NewMemberDraft()))
	require.NoError(t, form.Update(func(d *MemberDraft) error {
		d.FullName, d.Phone = "Ann", "555"
		return nil
	}))
	err := form.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "assignedTrainer")
	assert.Zero(t, backend.count("CreateMember"))
}

func TestServiceSaveMemberAppliesFormRules(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(Options{Backend: backend, RequireTrainer: true})
	draft := NewMemberDraft()
	draft.FullName, draft.Phone = "Ann", "555"

	_, err := svc.SaveMember(context.Background(), draft)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "assignedTrainer")
	assert.Zero(t, backend.count("CreateMember"))

	draft.AssignedTrainer = "t1"
	_, err = svc.SaveMember(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.count("CreateMember"))
}
