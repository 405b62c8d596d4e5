package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-gymdesk/components/gym"
)

// DeleteInput identifies the record to remove.
type DeleteInput struct {
	Kind gym.EntityKind
	ID   string
}

type deleteService interface {
	Delete(ctx context.Context, kind gym.EntityKind, id string) error
}

// DeleteCommand removes members, trainers, or plans.
type DeleteCommand struct {
	service   deleteService
	telemetry Telemetry
}

// NewDeleteCommand creates the command.
func NewDeleteCommand(service deleteService, telemetry Telemetry) *DeleteCommand {
	return &DeleteCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteInput] = (*DeleteCommand)(nil)

// Execute delegates to the gym service.
func (c *DeleteCommand) Execute(ctx context.Context, msg DeleteInput) error {
	if c.service == nil {
		return errors.New("delete command requires service")
	}
	if err := c.service.Delete(ctx, msg.Kind, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.delete", map[string]any{
		"kind": string(msg.Kind),
		"id":   msg.ID,
	})
	return nil
}
