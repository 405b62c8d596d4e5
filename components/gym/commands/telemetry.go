package commands

import "github.com/goliatone/go-gymdesk/components/gym"

// Telemetry is the sink commands report to after a successful mutation.
type Telemetry = gym.Telemetry

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return gym.NopTelemetry
	}
	return t
}
