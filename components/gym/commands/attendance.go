package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-gymdesk/components/gym"
)

type attendanceService interface {
	CheckIn(ctx context.Context, req gym.CheckInRequest) (gym.AttendanceRecord, error)
	CheckOut(ctx context.Context, attendanceID string) (gym.AttendanceRecord, error)
}

// CheckInCommand records a member entering the gym so transports can invoke
// check-ins without linking directly against the service.
type CheckInCommand struct {
	service   attendanceService
	telemetry Telemetry
}

// NewCheckInCommand creates a command instance.
func NewCheckInCommand(service attendanceService, telemetry Telemetry) *CheckInCommand {
	return &CheckInCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[gym.CheckInRequest] = (*CheckInCommand)(nil)

// Execute delegates to the gym service.
func (c *CheckInCommand) Execute(ctx context.Context, msg gym.CheckInRequest) error {
	if c.service == nil {
		return errors.New("check-in command requires service")
	}
	record, err := c.service.CheckIn(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.checkin", map[string]any{
		"member_id":     msg.MemberID,
		"attendance_id": record.ID,
	})
	return nil
}

// CheckOutInput closes an open attendance record.
type CheckOutInput struct {
	AttendanceID string
}

// CheckOutCommand closes attendance records.
type CheckOutCommand struct {
	service   attendanceService
	telemetry Telemetry
}

// NewCheckOutCommand creates the command.
func NewCheckOutCommand(service attendanceService, telemetry Telemetry) *CheckOutCommand {
	return &CheckOutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CheckOutInput] = (*CheckOutCommand)(nil)

// Execute delegates to the gym service.
func (c *CheckOutCommand) Execute(ctx context.Context, msg CheckOutInput) error {
	if c.service == nil {
		return errors.New("check-out command requires service")
	}
	if _, err := c.service.CheckOut(ctx, msg.AttendanceID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "gym.command.checkout", map[string]any{
		"attendance_id": msg.AttendanceID,
	})
	return nil
}
