package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// MarkPaidInput settles a pending payment.
type MarkPaidInput struct {
	PaymentID string
}

type paymentService interface {
	MarkPaymentPaid(ctx context.Context, paymentID string) error
}

// MarkPaidCommand marks payments as paid.
type MarkPaidCommand struct {
	service   paymentService
	telemetry Telemetry
}

// NewMarkPaidCommand creates the command.
func NewMarkPaidCommand(service paymentService, telemetry Telemetry) *MarkPaidCommand {
	return &MarkPaidCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MarkPaidInput] = (*MarkPaidCommand)(nil)

// Execute delegates to the gym service.
func (c *MarkPaidCommand) Execute(ctx context.Context, msg MarkPaidInput) error {
	if c.service == nil {
		return errors.New("mark-paid command requires service")
	}
	if err := c.service.MarkPaymentPaid(ctx, msg.PaymentID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.mark_paid", map[string]any{"payment_id": msg.PaymentID})
	return nil
}
