// Package bytecode encodes a codegen.Instruction stream into a flat byte
// buffer plus label offset maps (spec §4.3), and provides a decoder used
// internally to check the encode/decode/encode round-trip property.
//
// Grounded on the teacher's vm/compiler.go backpatching pass (which folds
// codegen and encoding into one step) split apart here per spec's two-stage
// design: label bookkeeping stays in codegen's symbolic stream, offset
// resolution happens only in this package's encoder.
package bytecode

import "mustermann/codegen"

// Opcode is the one-byte wire opcode. Push(String) and Push(Int) share a
// single symbolic codegen.OpPush but diverge here because the wire format
// devotes distinct opcodes to each (spec §4.3).
type Opcode byte

const (
	OpcodePushString   Opcode = 0x01
	OpcodePushInt      Opcode = 0x02
	OpcodePop          Opcode = 0x03
	OpcodeDec          Opcode = 0x04
	OpcodeJmpIfZero    Opcode = 0x05
	OpcodeLabel        Opcode = 0x06
	OpcodeStdout       Opcode = 0x07
	OpcodeStderr       Opcode = 0x08
	OpcodeSleep        Opcode = 0x09
	OpcodeStoreVar     Opcode = 0x0A
	OpcodeLoadVar      Opcode = 0x0B
	OpcodeDup          Opcode = 0x0C
	OpcodeJump         Opcode = 0x0D
	OpcodePrintf       Opcode = 0x0E
	OpcodeRemoteCall   Opcode = 0x0F
	OpcodeStartContext Opcode = 0x10
	OpcodeEndContext   Opcode = 0x11
	OpcodeCheckInterr  Opcode = 0x12
	OpcodeCall         Opcode = 0x13
	OpcodeRet          Opcode = 0x14
)

func (b Opcode) String() string {
	switch b {
	case OpcodePushString:
		return "Push(String)"
	case OpcodePushInt:
		return "Push(Int)"
	case OpcodePop:
		return "Pop"
	case OpcodeDec:
		return "Dec"
	case OpcodeJmpIfZero:
		return "JmpIfZero"
	case OpcodeLabel:
		return "Label"
	case OpcodeStdout:
		return "Stdout"
	case OpcodeStderr:
		return "Stderr"
	case OpcodeSleep:
		return "Sleep"
	case OpcodeStoreVar:
		return "StoreVar"
	case OpcodeLoadVar:
		return "LoadVar"
	case OpcodeDup:
		return "Dup"
	case OpcodeJump:
		return "Jump"
	case OpcodePrintf:
		return "Printf"
	case OpcodeRemoteCall:
		return "RemoteCall"
	case OpcodeStartContext:
		return "StartContext"
	case OpcodeEndContext:
		return "EndContext"
	case OpcodeCheckInterr:
		return "CheckInterrupt"
	case OpcodeCall:
		return "Call"
	case OpcodeRet:
		return "Ret"
	default:
		return "Unknown"
	}
}

// opcodeFor resolves the instruction's wire opcode, distinguishing the two
// Push variants by the value's kind.
func opcodeFor(ins codegen.Instruction) Opcode {
	switch ins.Op {
	case codegen.OpPush:
		if ins.Value.Kind == codegen.ValueInt {
			return OpcodePushInt
		}
		return OpcodePushString
	case codegen.OpPop:
		return OpcodePop
	case codegen.OpDec:
		return OpcodeDec
	case codegen.OpJmpIfZero:
		return OpcodeJmpIfZero
	case codegen.OpLabel:
		return OpcodeLabel
	case codegen.OpStdout:
		return OpcodeStdout
	case codegen.OpStderr:
		return OpcodeStderr
	case codegen.OpSleep:
		return OpcodeSleep
	case codegen.OpStoreVar:
		return OpcodeStoreVar
	case codegen.OpLoadVar:
		return OpcodeLoadVar
	case codegen.OpDup:
		return OpcodeDup
	case codegen.OpJump:
		return OpcodeJump
	case codegen.OpPrintf:
		return OpcodePrintf
	case codegen.OpRemoteCall:
		return OpcodeRemoteCall
	case codegen.OpStartContext:
		return OpcodeStartContext
	case codegen.OpEndContext:
		return OpcodeEndContext
	case codegen.OpCheckInterrupt:
		return OpcodeCheckInterr
	case codegen.OpCall:
		return OpcodeCall
	case codegen.OpRet:
		return OpcodeRet
	default:
		return 0
	}
}
