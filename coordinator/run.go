package coordinator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mustermann/telemetry"
	"mustermann/vm"
)

// Run drains the shared inbound channel until ctx is cancelled, routing
// each ServiceCall to its target's inbound method channel (spec §4.5). A
// misrouted or undeliverable call is logged and dropped — the coordinator's
// one deliberate local recovery (spec §7, "Propagation policy").
//
// The original Rust runtime polls non-blockingly every N loop iterations
// to avoid busy-spinning a shared executor thread; a goroutine's blocking
// channel receive already yields to the scheduler for free, so Run blocks
// on select instead of looping with a counter.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case call := <-c.inbound:
			c.route(ctx, call)
		}
	}
}

func (c *Coordinator) route(ctx context.Context, call vm.ServiceCall) {
	t, ok := c.targets[call.TargetService]
	if !ok {
		c.logger.Error().
			Str("target_service", call.TargetService).
			Str("target_method", call.TargetMethod).
			Msg("dropping call to unknown service")
		return
	}

	carrier := make(telemetry.CarrierMap)
	propagator := telemetry.Propagator()
	parentCtx := call.TraceContext
	if parentCtx == nil {
		parentCtx = ctx
	}
	propagator.Inject(parentCtx, carrier)
	spanCtx := propagator.Extract(ctx, carrier)

	var span trace.Span
	if c.tracer != nil {
		name := fmt.Sprintf("%s/%s", t.name, call.TargetMethod)
		_, span = c.tracer.Start(spanCtx, name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
	}

	select {
	case t.inbox <- call.TargetMethod:
		c.instruments.RecordLocalInvocation(ctx)
	default:
		if span != nil {
			span.SetStatus(codes.Error, "target inbound channel full")
		}
		c.logger.Warn().
			Str("target_service", call.TargetService).
			Str("target_method", call.TargetMethod).
			Msg("target inbound channel full, dropping call")
	}
}
