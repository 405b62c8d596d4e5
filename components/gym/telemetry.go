package gym

import "context"

// Telemetry receives desk events such as form submissions, check-ins, and
// cache refreshes. Payload values are plain scalars or string slices.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function to Telemetry.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls f.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

// NopTelemetry drops every event.
var NopTelemetry Telemetry = TelemetryFunc(func(context.Context, string, map[string]any) {})

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return NopTelemetry
	}
	return t
}
