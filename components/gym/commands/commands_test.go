package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-gymdesk/components/gym"
)

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

type stubService struct {
	checkIns, checkOuts, markPaid, deletes, saves, refreshes int
	lastCheckIn                                              gym.CheckInRequest
	lastDelete                                               DeleteInput
	err                                                      error
}

func (s *stubService) CheckIn(_ context.Context, req gym.CheckInRequest) (gym.AttendanceRecord, error) {
	s.checkIns++
	s.lastCheckIn = req
	return gym.AttendanceRecord{ID: "a1"}, s.err
}

func (s *stubService) CheckOut(context.Context, string) (gym.AttendanceRecord, error) {
	s.checkOuts++
	return gym.AttendanceRecord{}, s.err
}

func (s *stubService) MarkPaymentPaid(context.Context, string) error {
	s.markPaid++
	return s.err
}

func (s *stubService) Delete(_ context.Context, kind gym.EntityKind, id string) error {
	s.deletes++
	s.lastDelete = DeleteInput{Kind: kind, ID: id}
	return s.err
}

func (s *stubService) SaveMember(context.Context, gym.MemberDraft) (gym.Member, error) {
	s.saves++
	return gym.Member{ID: "m1"}, s.err
}

func (s *stubService) SavePlan(context.Context, gym.PlanDraft) (gym.Plan, error) {
	s.saves++
	return gym.Plan{ID: "p1"}, s.err
}

func (s *stubService) SaveTrainer(context.Context, gym.TrainerDraft) (gym.Trainer, error) {
	s.saves++
	return gym.Trainer{ID: "t1"}, s.err
}

func (s *stubService) Refresh(context.Context, ...string) {
	s.refreshes++
}

func TestCheckInCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewCheckInCommand(service, telemetry)
	req := gym.CheckInRequest{MemberID: "m1", AttendanceType: gym.AttendanceManual}
	if err := cmd.Execute(context.Background(), req); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.checkIns != 1 || service.lastCheckIn != req {
		t.Fatalf("expected check-in call with %+v, got %+v", req, service.lastCheckIn)
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "gym.command.checkin" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}
}

func TestCheckOutCommandSkipsTelemetryOnFailure(t *testing.T) {
	service := &stubService{err: errors.New("boom")}
	telemetry := &stubTelemetry{}
	cmd := NewCheckOutCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), CheckOutInput{AttendanceID: "a1"}); err == nil {
		t.Fatalf("expected error")
	}
	if len(telemetry.events) != 0 {
		t.Fatalf("expected no telemetry, got %v", telemetry.events)
	}
}

func TestMarkPaidCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewMarkPaidCommand(service, nil)
	if err := cmd.Execute(context.Background(), MarkPaidInput{PaymentID: "p1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.markPaid != 1 {
		t.Fatalf("expected mark paid call")
	}
}

func TestDeleteCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewDeleteCommand(service, nil)
	input := DeleteInput{Kind: gym.EntityTrainer, ID: "t1"}
	if err := cmd.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.lastDelete != input {
		t.Fatalf("expected delete %+v, got %+v", input, service.lastDelete)
	}
}

func TestSaveMemberCommandRejectsInvalidDraft(t *testing.T) {
	service := &stubService{}
	cmd := NewSaveMemberCommand(service, nil)
	err := cmd.Execute(context.Background(), gym.NewMemberDraft())
	var verr *gym.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["fullName"]; !ok {
		t.Fatalf("expected fullName error, got %v", verr.Fields)
	}
	if service.saves != 0 {
		t.Fatalf("expected no save call")
	}
}

func TestSaveCommandsDelegate(t *testing.T) {
	service := &stubService{}
	member := gym.NewMemberDraft()
	member.FullName = "Ann"
	member.Phone = "555"
	if err := NewSaveMemberCommand(service, nil).Execute(context.Background(), member); err != nil {
		t.Fatalf("save member: %v", err)
	}

	plan := gym.NewPlanDraft()
	plan.PlanName = "Basic"
	if err := NewSavePlanCommand(service, nil).Execute(context.Background(), plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	trainer := gym.NewTrainerDraft()
	trainer.FullName = "Asha"
	trainer.Phone = "555"
	trainer.Specialization = []string{"Yoga"}
	if err := NewSaveTrainerCommand(service, nil).Execute(context.Background(), trainer); err != nil {
		t.Fatalf("save trainer: %v", err)
	}
	if service.saves != 3 {
		t.Fatalf("expected 3 saves, got %d", service.saves)
	}
}

func TestRefreshCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshCommand(service, nil)
	if err := cmd.Execute(context.Background(), RefreshInput{Prefixes: []string{"members"}}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.refreshes != 1 {
		t.Fatalf("expected refresh call")
	}
}

func TestCommandsRequireService(t *testing.T) {
	if err := NewCheckInCommand(nil, nil).Execute(context.Background(), gym.CheckInRequest{}); err == nil {
		t.Fatalf("expected error without service")
	}
	if err := NewRefreshCommand(nil, nil).Execute(context.Background(), RefreshInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
