// Package vm executes one service's encoded bytecode image (spec §4.4): a
// cooperative, single-goroutine-per-worker interpreter with an ordered
// call stack of per-frame operand stacks, optional remote-call channels,
// and optional OpenTelemetry tracing/metrics.
//
// Grounded on the teacher's vm/vm.go (VM struct shape, a StackFrame per
// call, a single executeLoop stepping one instruction at a time) adapted
// from MOO's object/verb execution model to the service/method model spec
// §3 describes, and on original_source/vm.rs for the instruction semantics
// this package extends with frames, Call/Ret, CheckInterrupt and tracing.
package vm

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"mustermann/bytecode"
	"mustermann/codegen"
	"mustermann/telemetry"
	"mustermann/vmerrors"
)

// VM interprets one service's bytecode image. Not safe for concurrent use —
// each worker owns exactly one VM and drives it from a single goroutine.
type VM struct {
	image       *bytecode.Image
	serviceName string
	printOut    chan<- PrintMessage

	remoteOut chan<- ServiceCall
	remoteIn  <-chan string

	frames      [][]codegen.StackValue // call stack: one operand stack per frame
	returnAddrs []int                  // ip to resume at, parallel to frames minus the root
	vars        map[string]codegen.StackValue
	ip          int

	executedCount       uint64
	maxExecutionCounter *uint64

	remoteCallCounter uint64
	remoteCallLimit   uint64

	tracer      trace.Tracer
	meter       metric.Meter
	instruments *telemetry.Instruments
	traceCtx    context.Context
	hasContext  bool

	sortedLabelOffsets []int

	logger zerolog.Logger
}

// New constructs a VM over an already-encoded image. printOut must be
// non-nil; remote-call channels and telemetry handles are wired in via
// Option (spec §4.4's "Optional builders").
func New(image *bytecode.Image, serviceName string, printOut chan<- PrintMessage, opts ...Option) (*VM, error) {
	v := &VM{
		image:       image,
		serviceName: serviceName,
		printOut:    printOut,
		frames:      [][]codegen.StackValue{{}},
		vars:        make(map[string]codegen.StackValue),
		logger:      telemetry.NewLogger(serviceName),
	}
	if err := v.applyOptions(opts); err != nil {
		return nil, err
	}

	offsets := make([]int, 0, len(image.OffsetToLabel))
	for off := range image.OffsetToLabel {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)
	v.sortedLabelOffsets = offsets

	return v, nil
}

// FrameDepth reports the current call-stack depth, for tests checking
// invariant #4 (Call/Ret restores depth).
func (v *VM) FrameDepth() int { return len(v.frames) }

// IP reports the current instruction pointer.
func (v *VM) IP() int { return v.ip }

func (v *VM) pushValue(val codegen.StackValue) error {
	if len(v.frames) == 0 {
		return &vmerrors.MissingStackFrameError{}
	}
	top := len(v.frames) - 1
	v.frames[top] = append(v.frames[top], val)
	return nil
}

func (v *VM) popValue(opName string) (codegen.StackValue, error) {
	if len(v.frames) == 0 {
		return codegen.StackValue{}, &vmerrors.MissingStackFrameError{}
	}
	top := len(v.frames) - 1
	frame := v.frames[top]
	if len(frame) == 0 {
		return codegen.StackValue{}, &vmerrors.StackUnderflowError{Op: opName}
	}
	val := frame[len(frame)-1]
	v.frames[top] = frame[:len(frame)-1]
	return val, nil
}

func (v *VM) peekValue(opName string) (codegen.StackValue, error) {
	if len(v.frames) == 0 {
		return codegen.StackValue{}, &vmerrors.MissingStackFrameError{}
	}
	frame := v.frames[len(v.frames)-1]
	if len(frame) == 0 {
		return codegen.StackValue{}, &vmerrors.StackUnderflowError{Op: opName}
	}
	return frame[len(frame)-1], nil
}

func (v *VM) popFrame() error {
	if len(v.frames) == 0 {
		return &vmerrors.MissingStackFrameError{}
	}
	v.frames = v.frames[:len(v.frames)-1]
	return nil
}

// enclosingLabel returns the label of the most recent Label instruction at
// or before ip — used by RemoteCall to name its span (spec §4.4,
// MissingFunctionName).
func (v *VM) enclosingLabel(ip int) (string, bool) {
	i := sort.Search(len(v.sortedLabelOffsets), func(i int) bool {
		return v.sortedLabelOffsets[i] > ip
	})
	if i == 0 {
		return "", false
	}
	off := v.sortedLabelOffsets[i-1]
	return v.image.OffsetToLabel[off], true
}

func (v *VM) labelOffset(label string) (int, error) {
	off, ok := v.image.LabelToOffset[label]
	if !ok {
		return 0, &vmerrors.MissingLabelError{Label: label}
	}
	return off, nil
}
