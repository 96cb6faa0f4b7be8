package vm

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"mustermann/telemetry"
)

// defaultRemoteCallLimit is the CheckInterrupt polling cadence (spec §5):
// "every remote_call_limit executions, default 10,000".
const defaultRemoteCallLimit = 10000

// Option configures a VM at construction time. Grounded on the functional
// options the original Rust VM exposes as with_* builder methods (spec
// §4.4's public contract), adapted to Go's usual variadic-option idiom.
type Option func(*VM)

// WithMaxExecutionCounter installs a cooperative watchdog: run() fails with
// MaxExecutionCounterReached when it fetches instruction n+1, without
// executing that instruction.
func WithMaxExecutionCounter(n uint64) Option {
	return func(v *VM) {
		v.maxExecutionCounter = &n
	}
}

// WithRemoteCallTx supplies the outbound channel RemoteCall sends on.
func WithRemoteCallTx(tx chan<- ServiceCall) Option {
	return func(v *VM) { v.remoteOut = tx }
}

// WithRemoteCallRx supplies the inbound channel CheckInterrupt polls.
func WithRemoteCallRx(rx <-chan string) Option {
	return func(v *VM) { v.remoteIn = rx }
}

// WithCustomRemoteCallLimit overrides the default CheckInterrupt polling
// cadence.
func WithCustomRemoteCallLimit(n uint64) Option {
	return func(v *VM) { v.remoteCallLimit = n }
}

// WithTracer enables span creation on StartContext and RemoteCall.
func WithTracer(tracer trace.Tracer) Option {
	return func(v *VM) { v.tracer = tracer }
}

// WithMeterProvider enables the remote_invocation_counter,
// local_invocation_counter, instruction_duration and remote_call_duration
// instruments (spec §6).
func WithMeterProvider(meter metric.Meter) Option {
	return func(v *VM) { v.meter = meter }
}

func (v *VM) applyOptions(opts []Option) error {
	v.remoteCallLimit = defaultRemoteCallLimit
	for _, opt := range opts {
		opt(v)
	}
	if v.meter != nil {
		instruments, err := telemetry.NewInstruments(v.meter)
		if err != nil {
			return err
		}
		v.instruments = instruments
	}
	return nil
}
