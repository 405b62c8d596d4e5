package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-gymdesk/components/gym"
)

type saveService interface {
	SaveMember(ctx context.Context, draft gym.MemberDraft) (gym.Member, error)
	SavePlan(ctx context.Context, draft gym.PlanDraft) (gym.Plan, error)
	SaveTrainer(ctx context.Context, draft gym.TrainerDraft) (gym.Trainer, error)
}

// SaveMemberCommand validates a member draft and creates or updates the member.
type SaveMemberCommand struct {
	service   saveService
	telemetry Telemetry
}

// NewSaveMemberCommand creates the command.
func NewSaveMemberCommand(service saveService, telemetry Telemetry) *SaveMemberCommand {
	return &SaveMemberCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[gym.MemberDraft] = (*SaveMemberCommand)(nil)

// Execute validates the draft before delegating.
func (c *SaveMemberCommand) Execute(ctx context.Context, msg gym.MemberDraft) error {
	if c.service == nil {
		return errors.New("save member command requires service")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	member, err := c.service.SaveMember(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.save_member", map[string]any{
		"member_id": member.ID,
		"editing":   msg.Editing(),
	})
	return nil
}

// SavePlanCommand validates a plan draft and creates or updates the plan.
type SavePlanCommand struct {
	service   saveService
	telemetry Telemetry
}

// NewSavePlanCommand creates the command.
func NewSavePlanCommand(service saveService, telemetry Telemetry) *SavePlanCommand {
	return &SavePlanCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[gym.PlanDraft] = (*SavePlanCommand)(nil)

// Execute validates the draft before delegating.
func (c *SavePlanCommand) Execute(ctx context.Context, msg gym.PlanDraft) error {
	if c.service == nil {
		return errors.New("save plan command requires service")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	plan, err := c.service.SavePlan(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.save_plan", map[string]any{
		"plan_id": plan.ID,
		"editing": msg.Editing(),
	})
	return nil
}

// SaveTrainerCommand validates a trainer draft and creates or updates the trainer.
type SaveTrainerCommand struct {
	service   saveService
	telemetry Telemetry
}

// NewSaveTrainerCommand creates the command.
func NewSaveTrainerCommand(service saveService, telemetry Telemetry) *SaveTrainerCommand {
	return &SaveTrainerCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[gym.TrainerDraft] = (*SaveTrainerCommand)(nil)

// Execute validates the draft before delegating.
func (c *SaveTrainerCommand) Execute(ctx context.Context, msg gym.TrainerDraft) error {
	if c.service == nil {
		return errors.New("save trainer command requires service")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	trainer, err := c.service.SaveTrainer(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.save_trainer", map[string]any{
		"trainer_id": trainer.ID,
		"editing":    msg.Editing(),
	})
	return nil
}
