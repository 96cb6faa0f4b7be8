// Package vmerrors collects the error taxonomy shared by codegen, bytecode,
// vm and legacyconfig (spec §7). Each kind is a small typed error so callers
// can use errors.As to match on kind and recover structured detail (the
// offending label, variable name, opcode, ...). The types define no Is
// method, so errors.Is matches only the identical error value.
//
// Grounded on the teacher's per-package closed error enum (vm.VMError in
// the original Rust source, types.ErrorCode in MongooseMoo-barn). Kinds that
// carry an underlying cause expose it through Unwrap; callers elsewhere add
// context with fmt.Errorf and %w.
package vmerrors

import "fmt"

// InvalidStatementError is raised when codegen encounters a statement the
// grammar allows but the lowering rules forbid — e.g. a local call outside
// a loop body, or a loop body that isn't a bare local call.
type InvalidStatementError struct {
	Context string // e.g. "method foo", "loop"
	Reason  string
}

func (e *InvalidStatementError) Error() string {
	return fmt.Sprintf("invalid statement in %s: %s", e.Context, e.Reason)
}

// UnsupportedConstError is raised by the legacy config loader when a
// Frequency constant other than "Infinite" is encountered.
type UnsupportedConstError struct {
	Const string
}

func (e *UnsupportedConstError) Error() string {
	return fmt.Sprintf("unsupported const: %q", e.Const)
}

// StackUnderflowError is raised when an instruction pops an empty current
// frame.
type StackUnderflowError struct {
	Op string
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow executing %s", e.Op)
}

// InvalidStackValueError is raised when a popped value's type does not
// match what the instruction requires.
type InvalidStackValueError struct {
	Op       string
	Expected string
}

func (e *InvalidStackValueError) Error() string {
	return fmt.Sprintf("invalid stack value for %s: expected %s", e.Op, e.Expected)
}

// MissingVarError is raised by LoadVar on an absent key.
type MissingVarError struct {
	Key string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("missing variable: %s", e.Key)
}

// MissingLabelError is raised when a Jump/JmpIfZero/Call target is absent
// from label_to_offset.
type MissingLabelError struct {
	Label string
}

func (e *MissingLabelError) Error() string {
	return fmt.Sprintf("missing label: %s", e.Label)
}

// InvalidTemplateError is raised when a Printf template lacks, or
// mismatches the type of, its single placeholder.
type InvalidTemplateError struct {
	Template string
}

func (e *InvalidTemplateError) Error() string {
	return fmt.Sprintf("invalid template: %q", e.Template)
}

// RemoteCallError is raised when RemoteCall has no outbound channel
// configured, or the send itself failed.
type RemoteCallError struct {
	Cause error
}

func (e *RemoteCallError) Error() string {
	if e.Cause == nil {
		return "remote call error: no outbound channel configured"
	}
	return fmt.Sprintf("remote call error: %v", e.Cause)
}

func (e *RemoteCallError) Unwrap() error { return e.Cause }

// PrintError is raised when a print-channel send fails (e.g. the receiver
// was dropped).
type PrintError struct {
	Cause error
}

func (e *PrintError) Error() string {
	return fmt.Sprintf("print error: %v", e.Cause)
}

func (e *PrintError) Unwrap() error { return e.Cause }

// MissingContextError is raised by EndContext when no trace context is
// active.
type MissingContextError struct{}

func (e *MissingContextError) Error() string { return "missing trace context" }

// MissingSpanError is raised when a tracing instruction requires a span
// that isn't present.
type MissingSpanError struct{}

func (e *MissingSpanError) Error() string { return "missing span" }

// MissingFunctionNameError is raised when RemoteCall cannot determine the
// enclosing label (offset_to_label has no entry at or before ip).
type MissingFunctionNameError struct{}

func (e *MissingFunctionNameError) Error() string { return "missing function name" }

// MaxExecutionCounterReachedError is raised when the configured watchdog
// limit is exceeded.
type MaxExecutionCounterReachedError struct {
	Limit uint64
}

func (e *MaxExecutionCounterReachedError) Error() string {
	return fmt.Sprintf("max execution counter reached: %d", e.Limit)
}

// IPOutOfBoundsError is raised when a decoded operand extends beyond the
// bytecode buffer.
type IPOutOfBoundsError struct {
	IP int
}

func (e *IPOutOfBoundsError) Error() string {
	return fmt.Sprintf("instruction pointer out of bounds: %d", e.IP)
}

// InvalidInstructionError is raised when the decoder fetches an unknown
// opcode byte.
type InvalidInstructionError struct {
	Opcode byte
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction opcode: 0x%02x", e.Opcode)
}

// MissingStackFrameError is raised when the frame stack is empty at a point
// that requires a current frame.
type MissingStackFrameError struct{}

func (e *MissingStackFrameError) Error() string { return "missing stack frame" }
