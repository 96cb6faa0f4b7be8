// Package coordinator routes ServiceCall messages between per-service VM
// workers (spec §4.5). A single Coordinator owns a registry of service name
// to inbound method-name channel, built once at setup, and runs a loop that
// blocks on a shared inbound channel fed by every worker's remote_out.
//
// Grounded on the teacher's server/scheduler.go Scheduler.run(): a
// select-driven loop over a context.Done, a work channel, and a ticker,
// generalized from MOO's task scheduling to message routing between
// workers instead of tasks within one VM.
package coordinator

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"mustermann/telemetry"
	"mustermann/vm"
)

// target is what the registry holds per service: its inbound channel plus
// whatever the routing loop needs to name spans.
type target struct {
	name  string
	inbox chan<- string
}

// Coordinator routes ServiceCall messages to the registered target's
// inbound channel. Not safe for concurrent use — Register must complete
// before Run starts (spec §4.4's "written only at setup, read during
// routing").
type Coordinator struct {
	targets map[string]target
	inbound chan vm.ServiceCall

	tracer trace.Tracer
	logger zerolog.Logger

	instruments *telemetry.Instruments
}

// Option configures a Coordinator at construction time.
type Option func(*Coordinator)

// WithTracer enables server-kind spans on message forwarding.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = tracer }
}

// WithInstruments attaches metrics recording to routed calls.
func WithInstruments(instruments *telemetry.Instruments) Option {
	return func(c *Coordinator) { c.instruments = instruments }
}

// New builds an empty Coordinator. inboundSize bounds the shared inbound
// channel all workers' remote_out eventually feeds (spec §4.4, "bounded
// FIFO of ServiceCall to the coordinator").
func New(inboundSize int, opts ...Option) *Coordinator {
	c := &Coordinator{
		targets: make(map[string]target),
		inbound: make(chan vm.ServiceCall, inboundSize),
		logger:  telemetry.NewLogger("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Inbound returns the shared channel every worker's RemoteCall sends on.
func (c *Coordinator) Inbound() chan<- vm.ServiceCall { return c.inbound }

// Register adds a service to the routing table. Must be called before Run.
func (c *Coordinator) Register(serviceName string, inbox chan<- string) {
	c.targets[serviceName] = target{name: serviceName, inbox: inbox}
}
