package vm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mustermann/bytecode"
	"mustermann/codegen"
	"mustermann/vmerrors"
)

// Run drives the worker to completion: cooperative, single-goroutine,
// returning nil on normal completion (bytes exhausted) or one of the error
// kinds in vmerrors (spec §4.4's public contract, "single driver method:
// run()").
func (v *VM) Run(ctx context.Context) error {
	for {
		if v.ip >= len(v.image.Bytes) {
			return nil
		}

		fetched, err := bytecode.Fetch(v.image.Bytes, v.ip)
		if err != nil {
			return err
		}

		v.executedCount++
		if v.maxExecutionCounter != nil && v.executedCount > *v.maxExecutionCounter {
			return &vmerrors.MaxExecutionCounterReachedError{Limit: *v.maxExecutionCounter}
		}

		start := time.Now()
		err = v.execute(ctx, fetched)
		v.instruments.RecordInstruction(ctx, fetched.Op.String(), elapsedMS(start))
		if err != nil {
			return err
		}
	}
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// execute runs one instruction. Handlers are responsible for advancing
// v.ip past their own operands (spec §4.4 step 2); fetched.NextIP is the
// default resting place for handlers with no control-flow effect.
func (v *VM) execute(ctx context.Context, f bytecode.Fetched) error {
	switch f.Op {
	case bytecode.OpcodePushString:
		if err := v.pushValue(codegen.NewStringValue(f.Str)); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodePushInt:
		if err := v.pushValue(codegen.NewIntValue(f.Int)); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodePop:
		if err := v.popFrame(); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodeDec:
		top, err := v.peekValue("Dec")
		if err != nil {
			return err
		}
		if top.Kind != codegen.ValueInt {
			return &vmerrors.InvalidStackValueError{Op: "Dec", Expected: "Int"}
		}
		if _, err := v.popValue("Dec"); err != nil {
			return err
		}
		if err := v.pushValue(codegen.NewIntValue(top.Int - 1)); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodeJmpIfZero:
		top, err := v.popValue("JmpIfZero")
		if err != nil {
			return err
		}
		if top.Kind != codegen.ValueInt {
			return &vmerrors.InvalidStackValueError{Op: "JmpIfZero", Expected: "Int"}
		}
		if top.Int == 0 {
			off, err := v.labelOffset(f.Str)
			if err != nil {
				return err
			}
			v.ip = off
		} else {
			v.ip = f.NextIP
		}

	case bytecode.OpcodeLabel:
		v.ip = f.NextIP

	case bytecode.OpcodeStdout:
		return v.executePrint(f, Stdout)

	case bytecode.OpcodeStderr:
		return v.executePrint(f, Stderr)

	case bytecode.OpcodeSleep:
		time.Sleep(time.Duration(f.Int) * time.Millisecond)
		v.ip = f.NextIP

	case bytecode.OpcodeStoreVar:
		v.vars[f.Str] = codegen.NewStringValue(f.Str2)
		v.ip = f.NextIP

	case bytecode.OpcodeLoadVar:
		val, ok := v.vars[f.Str]
		if !ok {
			return &vmerrors.MissingVarError{Key: f.Str}
		}
		if err := v.pushValue(val); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodeDup:
		top, err := v.peekValue("Dup")
		if err != nil {
			return err
		}
		if err := v.pushValue(top); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodeJump:
		off, err := v.labelOffset(f.Str)
		if err != nil {
			return err
		}
		v.ip = off

	case bytecode.OpcodePrintf:
		return v.executePrintf(f)

	case bytecode.OpcodeRemoteCall:
		return v.executeRemoteCall(ctx, f)

	case bytecode.OpcodeStartContext:
		v.executeStartContext(ctx)
		v.ip = f.NextIP

	case bytecode.OpcodeEndContext:
		if err := v.executeEndContext(); err != nil {
			return err
		}
		v.ip = f.NextIP

	case bytecode.OpcodeCheckInterrupt:
		if err := v.executeCheckInterrupt(f); err != nil {
			return err
		}

	case bytecode.OpcodeCall:
		off, err := v.labelOffset(f.Str)
		if err != nil {
			return err
		}
		v.returnAddrs = append(v.returnAddrs, f.NextIP)
		v.frames = append(v.frames, []codegen.StackValue{})
		v.ip = off

	case bytecode.OpcodeRet:
		if len(v.returnAddrs) == 0 {
			return &vmerrors.MissingStackFrameError{}
		}
		if err := v.popFrame(); err != nil {
			return err
		}
		v.ip = v.returnAddrs[len(v.returnAddrs)-1]
		v.returnAddrs = v.returnAddrs[:len(v.returnAddrs)-1]

	default:
		return &vmerrors.InvalidInstructionError{Opcode: byte(f.Op)}
	}
	return nil
}

func (v *VM) executePrint(f bytecode.Fetched, kind PrintKind) error {
	top, err := v.popValue(kind.String())
	if err != nil {
		return err
	}

	var text string
	switch top.Kind {
	case codegen.ValueString:
		text = top.Str
	case codegen.ValueInt:
		if kind == Stderr {
			return &vmerrors.InvalidStackValueError{Op: "Stderr", Expected: "String"}
		}
		text = strconv.FormatUint(top.Int, 10)
	}

	// printOut is bounded; a full channel suspends the worker (spec §5)
	// rather than failing outright.
	v.printOut <- PrintMessage{Kind: kind, Text: text}
	v.ip = f.NextIP
	return nil
}

// executePrintf substitutes a Printf template's single placeholder (spec
// §4.4, §8 property 5): exactly one of %s/%d, matching the popped value's
// kind.
func (v *VM) executePrintf(f bytecode.Fetched) error {
	value, err := v.popValue("Printf")
	if err != nil {
		return err
	}
	templateVal, err := v.popValue("Printf")
	if err != nil {
		return err
	}
	if templateVal.Kind != codegen.ValueString {
		return &vmerrors.InvalidStackValueError{Op: "Printf", Expected: "String"}
	}
	template := templateVal.Str

	placeholder := "%s"
	if value.Kind == codegen.ValueInt {
		placeholder = "%d"
	}

	count := strings.Count(template, "%s") + strings.Count(template, "%d")
	if count != 1 || !strings.Contains(template, placeholder) {
		return &vmerrors.InvalidTemplateError{Template: template}
	}

	var replacement string
	if value.Kind == codegen.ValueInt {
		replacement = strconv.FormatUint(value.Int, 10)
	} else {
		replacement = value.Str
	}

	result := strings.Replace(template, placeholder, replacement, 1)
	if err := v.pushValue(codegen.NewStringValue(result)); err != nil {
		return err
	}
	v.ip = f.NextIP
	return nil
}

func (v *VM) executeRemoteCall(ctx context.Context, f bytecode.Fetched) error {
	if v.remoteOut == nil {
		return &vmerrors.RemoteCallError{}
	}

	method, err := v.popValue("RemoteCall")
	if err != nil {
		return err
	}
	service, err := v.popValue("RemoteCall")
	if err != nil {
		return err
	}
	if method.Kind != codegen.ValueString || service.Kind != codegen.ValueString {
		return &vmerrors.InvalidStackValueError{Op: "RemoteCall", Expected: "String"}
	}

	callerLabel, ok := v.enclosingLabel(v.ip)
	if !ok {
		return &vmerrors.MissingFunctionNameError{}
	}

	callCtx := v.traceContextOrBackground(ctx)
	start := time.Now()
	spanCtx := callCtx
	if v.tracer != nil {
		var span trace.Span
		spanCtx, span = v.tracer.Start(callCtx, fmt.Sprintf("%s/%s", v.serviceName, callerLabel),
			trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()
	}

	msg := ServiceCall{
		TargetService: service.Str,
		TargetMethod:  method.Str,
		TraceContext:  spanCtx,
	}

	select {
	case v.remoteOut <- msg:
	case <-ctx.Done():
		return &vmerrors.RemoteCallError{Cause: ctx.Err()}
	}

	v.remoteCallCounter++
	v.instruments.RecordRemoteInvocation(ctx, service.Str, method.Str, elapsedMS(start))

	v.ip = f.NextIP
	return nil
}

func (v *VM) traceContextOrBackground(ctx context.Context) context.Context {
	if v.hasContext && v.traceCtx != nil {
		return v.traceCtx
	}
	return ctx
}

func (v *VM) executeStartContext(ctx context.Context) {
	if v.tracer == nil {
		v.hasContext = true
		v.traceCtx = ctx
		return
	}
	name := fmt.Sprintf("%s/start_context", v.serviceName)
	spanCtx, _ := v.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	v.traceCtx = spanCtx
	v.hasContext = true
}

func (v *VM) executeEndContext() error {
	if !v.hasContext {
		return &vmerrors.MissingContextError{}
	}
	v.hasContext = false
	v.traceCtx = nil
	return nil
}

// executeCheckInterrupt polls the inbound remote-call channel at a bounded
// cadence (spec §5): each execution bumps remoteCallCounter (as does each
// RemoteCall), and once the counter reaches remoteCallLimit it is reset and
// a non-blocking receive is attempted. A delivered method name is invoked
// like a Call, so Ret naturally resumes here.
func (v *VM) executeCheckInterrupt(f bytecode.Fetched) error {
	v.ip = f.NextIP
	v.remoteCallCounter++
	if v.remoteCallCounter < v.remoteCallLimit {
		return nil
	}
	v.remoteCallCounter = 0

	if v.remoteIn == nil {
		return nil
	}

	select {
	case method, ok := <-v.remoteIn:
		if !ok {
			return nil
		}
		off, err := v.labelOffset("start_" + method)
		if err != nil {
			return err
		}
		v.returnAddrs = append(v.returnAddrs, v.ip)
		v.frames = append(v.frames, []codegen.StackValue{})
		v.ip = off
	default:
	}
	return nil
}
