// Package codegen lowers a parsed dsl.Program into a linear, per-service
// instruction stream (spec §4.2).
//
// Grounded on vm/compiler.go in the teacher (AST walk emitting one flat
// instruction list per compiled unit, with Label pseudo-instructions marking
// jump targets) generalized from MOO's tree-walking compile targets to the
// fixed per-service envelope spec §4.2 describes. Unlike the teacher, which
// backpatches jump offsets into concrete bytes during a single pass, this
// package stops at the symbolic instruction stream — label resolution is a
// distinct later stage (package bytecode), per spec §3's own split between
// the symbolic instruction stream and the encoded image.
package codegen

import "fmt"

// ValueKind discriminates the StackValue union.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueInt
)

// StackValue is the VM's tagged union of String(text) or Int(u64) (spec §3).
type StackValue struct {
	Kind ValueKind
	Str  string
	Int  uint64
}

// NewStringValue builds a String-kind StackValue.
func NewStringValue(s string) StackValue { return StackValue{Kind: ValueString, Str: s} }

// NewIntValue builds an Int-kind StackValue.
func NewIntValue(n uint64) StackValue { return StackValue{Kind: ValueInt, Int: n} }

func (v StackValue) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	default:
		return ""
	}
}

// Opcode names each symbolic instruction variant. The values are not the
// one-byte wire opcodes: package bytecode maps each Opcode to its wire
// opcode in opcodeFor, where OpPush splits into Push(String) and Push(Int).
type Opcode byte

const (
	OpPush Opcode = iota + 1
	OpPop
	OpDec
	OpJmpIfZero
	OpLabel
	OpStdout
	OpStderr
	OpSleep
	OpStoreVar
	OpLoadVar
	OpDup
	OpJump
	OpPrintf
	OpRemoteCall
	OpStartContext
	OpEndContext
	OpCheckInterrupt
	OpCall
	OpRet
)

func (op Opcode) String() string {
	switch op {
	case OpPush:
		return "Push"
	case OpPop:
		return "Pop"
	case OpDec:
		return "Dec"
	case OpJmpIfZero:
		return "JmpIfZero"
	case OpLabel:
		return "Label"
	case OpStdout:
		return "Stdout"
	case OpStderr:
		return "Stderr"
	case OpSleep:
		return "Sleep"
	case OpStoreVar:
		return "StoreVar"
	case OpLoadVar:
		return "LoadVar"
	case OpDup:
		return "Dup"
	case OpJump:
		return "Jump"
	case OpPrintf:
		return "Printf"
	case OpRemoteCall:
		return "RemoteCall"
	case OpStartContext:
		return "StartContext"
	case OpEndContext:
		return "EndContext"
	case OpCheckInterrupt:
		return "CheckInterrupt"
	case OpCall:
		return "Call"
	case OpRet:
		return "Ret"
	default:
		return "Unknown"
	}
}

// Instruction is one entry in the symbolic instruction stream. Not every
// field is meaningful for every Op — callers switch on Op, mirroring the
// discriminated-variant style spec §9 calls for ("Tagged sums replace
// dynamic dispatch").
type Instruction struct {
	Op Opcode

	Value StackValue // Push
	Label string     // JmpIfZero, Label, Jump, Call
	Ms    uint64     // Sleep
	Key   string     // StoreVar, LoadVar
	Var   string     // StoreVar (value half)
}

func Push(v StackValue) Instruction      { return Instruction{Op: OpPush, Value: v} }
func Pop() Instruction                   { return Instruction{Op: OpPop} }
func Dec() Instruction                   { return Instruction{Op: OpDec} }
func JmpIfZero(label string) Instruction { return Instruction{Op: OpJmpIfZero, Label: label} }
func Label(label string) Instruction     { return Instruction{Op: OpLabel, Label: label} }
func Stdout() Instruction                { return Instruction{Op: OpStdout} }
func Stderr() Instruction                { return Instruction{Op: OpStderr} }
func Sleep(ms uint64) Instruction        { return Instruction{Op: OpSleep, Ms: ms} }

func StoreVar(key, value string) Instruction {
	return Instruction{Op: OpStoreVar, Key: key, Var: value}
}

func LoadVar(key string) Instruction { return Instruction{Op: OpLoadVar, Key: key} }
func Dup() Instruction               { return Instruction{Op: OpDup} }
func Jump(label string) Instruction  { return Instruction{Op: OpJump, Label: label} }
func Printf() Instruction            { return Instruction{Op: OpPrintf} }
func RemoteCall() Instruction        { return Instruction{Op: OpRemoteCall} }
func StartContext() Instruction      { return Instruction{Op: OpStartContext} }
func EndContext() Instruction        { return Instruction{Op: OpEndContext} }
func CheckInterrupt() Instruction    { return Instruction{Op: OpCheckInterrupt} }
func Call(label string) Instruction  { return Instruction{Op: OpCall, Label: label} }
func Ret() Instruction               { return Instruction{Op: OpRet} }

// String renders an instruction the way the original Rust source's
// Display impl did — the mnemonic with its operand(s) in parens.
func (i Instruction) String() string {
	switch i.Op {
	case OpPush:
		return fmt.Sprintf("Push(%s)", i.Value)
	case OpJmpIfZero:
		return fmt.Sprintf("JmpIfZero(%s)", i.Label)
	case OpLabel:
		return fmt.Sprintf("Label(%s)", i.Label)
	case OpSleep:
		return fmt.Sprintf("Sleep(%d)", i.Ms)
	case OpStoreVar:
		return fmt.Sprintf("StoreVar(%s = %s)", i.Key, i.Var)
	case OpLoadVar:
		return fmt.Sprintf("LoadVar(%s)", i.Key)
	case OpJump:
		return fmt.Sprintf("Jump(%s)", i.Label)
	case OpCall:
		return fmt.Sprintf("Call(%s)", i.Label)
	default:
		return i.Op.String()
	}
}
