package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshInput drops cached queries. An empty Prefixes list drops everything.
type RefreshInput struct {
	Prefixes []string
}

type refresher interface {
	Refresh(ctx context.Context, prefixes ...string)
}

// RefreshCommand forces the next read of the named queries to hit the backend.
type RefreshCommand struct {
	service   refresher
	telemetry Telemetry
}

// NewRefreshCommand creates the command.
func NewRefreshCommand(service refresher, telemetry Telemetry) *RefreshCommand {
	return &RefreshCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshInput] = (*RefreshCommand)(nil)

// Execute invalidates the service cache.
func (c *RefreshCommand) Execute(ctx context.Context, msg RefreshInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	c.service.Refresh(ctx, msg.Prefixes...)
	c.telemetry.Record(ctx, "gym.command.refresh", map[string]any{"prefixes": msg.Prefixes})
	return nil
}
