package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Instruments bundles the counters and gauges spec §6 names:
// remote_invocation_counter, local_invocation_counter, instruction_duration,
// remote_call_duration. A nil *Instruments (no meter provider configured) is
// valid — every method is a no-op in that case.
type Instruments struct {
	remoteInvocations metric.Int64Counter
	localInvocations  metric.Int64Counter
	instructionMillis metric.Float64Gauge
	remoteCallMillis  metric.Float64Gauge
}

// NewInstruments builds Instruments from a meter, or returns nil if meter is
// nil (metrics disabled).
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	if meter == nil {
		return nil, nil
	}

	remoteInvocations, err := meter.Int64Counter("remote_invocation_counter")
	if err != nil {
		return nil, err
	}
	localInvocations, err := meter.Int64Counter("local_invocation_counter")
	if err != nil {
		return nil, err
	}
	instructionMillis, err := meter.Float64Gauge("instruction_duration")
	if err != nil {
		return nil, err
	}
	remoteCallMillis, err := meter.Float64Gauge("remote_call_duration")
	if err != nil {
		return nil, err
	}

	return &Instruments{
		remoteInvocations: remoteInvocations,
		localInvocations:  localInvocations,
		instructionMillis: instructionMillis,
		remoteCallMillis:  remoteCallMillis,
	}, nil
}

// RecordRemoteInvocation increments remote_invocation_counter and records
// the remote_call_duration gauge, tagged by service and method.
func (m *Instruments) RecordRemoteInvocation(ctx context.Context, service, method string, elapsedMS float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		serviceAttr(service), methodAttr(method),
	)
	m.remoteInvocations.Add(ctx, 1, attrs)
	m.remoteCallMillis.Record(ctx, elapsedMS, attrs)
}

// RecordLocalInvocation increments local_invocation_counter.
func (m *Instruments) RecordLocalInvocation(ctx context.Context) {
	if m == nil {
		return
	}
	m.localInvocations.Add(ctx, 1)
}

// RecordInstruction records one instruction's wall time into
// instruction_duration, tagged by instruction name.
func (m *Instruments) RecordInstruction(ctx context.Context, opName string, elapsedMS float64) {
	if m == nil {
		return
	}
	m.instructionMillis.Record(ctx, elapsedMS, metric.WithAttributes(instructionAttr(opName)))
}
