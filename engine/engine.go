// Package engine wires the compiler, bytecode encoder, VM workers and
// coordinator into one running system (SPEC_FULL.md §3.6): compile every
// service in a program, start one VM worker per service, start the
// coordinator that routes traffic between them, and run everything
// concurrently until the first error or until the context is cancelled.
//
// Grounded on the teacher's server/scheduler.go lifecycle (a context plus
// cancel, one tracked goroutine per long-running piece), generalized here
// with golang.org/x/sync/errgroup — a dependency DataDog-datadog-agent's
// go.mod already carries, for exactly this fan-out/fan-in/first-error
// shape, and a direct upgrade of the teacher's own WaitGroup-based
// Scheduler.Stop.
package engine

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mustermann/bytecode"
	"mustermann/codegen"
	"mustermann/coordinator"
	"mustermann/dsl"
	"mustermann/telemetry"
	"mustermann/vm"
)

const (
	defaultPrintQueueSize      = 64
	defaultRemoteCallQueueSize = 64
)

// Options configures a Run. Zero values fall back to spec §6's defaults.
type Options struct {
	MaxInstructions     uint64 // 0 disables the watchdog
	RemoteCallLimit     uint64 // 0 keeps the VM's own default (10,000)
	PrintQueueSize      int
	RemoteCallQueueSize int

	Tracer trace.Tracer
	Meter  metric.Meter

	// Stdout/Stderr receive one call per print_out message, service name
	// and rendered text. Nil defaults to the process's own stdout/stderr.
	Stdout func(service, text string)
	Stderr func(service, text string)
}

// Build compiles every service in prog into a bytecode image — the same
// dsl.Parse -> codegen.NewGenerator -> bytecode.Encode pipeline spec §3
// describes end to end, run once per service.
func Build(prog *dsl.Program) (map[string]*bytecode.Image, error) {
	images := make(map[string]*bytecode.Image, len(prog.Services))
	for _, svc := range prog.Services {
		code, err := codegen.NewGenerator(svc).Generate()
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", svc.Name, err)
		}
		img, err := bytecode.Encode(code)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", svc.Name, err)
		}
		images[svc.Name] = img
	}
	return images, nil
}

type worker struct {
	name     string
	machine  *vm.VM
	printOut chan vm.PrintMessage
}

// Run starts one VM worker per image plus the coordinator routing
// ServiceCall traffic between them, and blocks until ctx is cancelled or
// any worker/the coordinator returns an error.
func Run(ctx context.Context, images map[string]*bytecode.Image, opts Options) error {
	printQueueSize := opts.PrintQueueSize
	if printQueueSize <= 0 {
		printQueueSize = defaultPrintQueueSize
	}
	remoteCallQueueSize := opts.RemoteCallQueueSize
	if remoteCallQueueSize <= 0 {
		remoteCallQueueSize = defaultRemoteCallQueueSize
	}

	var coordOpts []coordinator.Option
	if opts.Tracer != nil {
		coordOpts = append(coordOpts, coordinator.WithTracer(opts.Tracer))
	}
	if opts.Meter != nil {
		instruments, err := telemetry.NewInstruments(opts.Meter)
		if err != nil {
			return fmt.Errorf("building coordinator instruments: %w", err)
		}
		coordOpts = append(coordOpts, coordinator.WithInstruments(instruments))
	}
	coord := coordinator.New(remoteCallQueueSize, coordOpts...)

	workers := make([]worker, 0, len(images))
	for name, img := range images {
		printOut := make(chan vm.PrintMessage, printQueueSize)
		remoteIn := make(chan string, remoteCallQueueSize)

		vmOpts := []vm.Option{
			vm.WithRemoteCallTx(coord.Inbound()),
			vm.WithRemoteCallRx(remoteIn),
		}
		if opts.MaxInstructions > 0 {
			vmOpts = append(vmOpts, vm.WithMaxExecutionCounter(opts.MaxInstructions))
		}
		if opts.RemoteCallLimit > 0 {
			vmOpts = append(vmOpts, vm.WithCustomRemoteCallLimit(opts.RemoteCallLimit))
		}
		if opts.Tracer != nil {
			vmOpts = append(vmOpts, vm.WithTracer(opts.Tracer))
		}
		if opts.Meter != nil {
			vmOpts = append(vmOpts, vm.WithMeterProvider(opts.Meter))
		}

		machine, err := vm.New(img, name, printOut, vmOpts...)
		if err != nil {
			return fmt.Errorf("constructing worker %s: %w", name, err)
		}

		coord.Register(name, remoteIn)
		workers = append(workers, worker{name: name, machine: machine, printOut: printOut})
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return coord.Run(gctx) })

	for _, w := range workers {
		w := w
		g.Go(func() error { return w.machine.Run(gctx) })
		g.Go(func() error {
			drainPrints(gctx, w.name, w.printOut, opts)
			return nil
		})
	}

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

func drainPrints(ctx context.Context, service string, printOut <-chan vm.PrintMessage, opts Options) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-printOut:
			if !ok {
				return
			}
			deliver(service, msg, opts)
		}
	}
}

func deliver(service string, msg vm.PrintMessage, opts Options) {
	if msg.Kind == vm.Stderr {
		if opts.Stderr != nil {
			opts.Stderr(service, msg.Text)
			return
		}
		fmt.Fprintln(os.Stderr, msg.Text)
		return
	}
	if opts.Stdout != nil {
		opts.Stdout(service, msg.Text)
		return
	}
	fmt.Fprintln(os.Stdout, msg.Text)
}
