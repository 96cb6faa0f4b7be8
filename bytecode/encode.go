package bytecode

import (
	"encoding/binary"

	"mustermann/codegen"
	"mustermann/vmerrors"
)

// Encode serializes a symbolic instruction stream into an Image. Length
// fields are little-endian uint64s (spec §4.3: "host's native pointer-sized
// unsigned integer", which on every target this ships for is 64 bits).
func Encode(code []codegen.Instruction) (*Image, error) {
	img := &Image{
		LabelToOffset: make(map[string]int),
		OffsetToLabel: make(map[int]string),
	}

	for _, ins := range code {
		if ins.Op == codegen.OpLabel {
			appendLabel(img, ins.Label)
			off := len(img.Bytes)
			img.LabelToOffset[ins.Label] = off
			img.OffsetToLabel[off] = ins.Label
			continue
		}
		if err := appendInstruction(img, ins); err != nil {
			return nil, err
		}
	}

	return img, nil
}

func appendLabel(img *Image, label string) {
	img.Bytes = append(img.Bytes, byte(OpcodeLabel))
	img.Bytes = appendLenPrefixed(img.Bytes, []byte(label))
}

func appendInstruction(img *Image, ins codegen.Instruction) error {
	op := opcodeFor(ins)
	img.Bytes = append(img.Bytes, byte(op))

	switch ins.Op {
	case codegen.OpPush:
		if ins.Value.Kind == codegen.ValueInt {
			img.Bytes = appendLenPrefixed(img.Bytes, encodeUint64(ins.Value.Int))
		} else {
			img.Bytes = appendLenPrefixed(img.Bytes, []byte(ins.Value.Str))
		}
	case codegen.OpJmpIfZero, codegen.OpJump, codegen.OpCall:
		img.Bytes = appendLenPrefixed(img.Bytes, []byte(ins.Label))
	case codegen.OpSleep:
		img.Bytes = appendLenPrefixed(img.Bytes, encodeUint64(ins.Ms))
	case codegen.OpStoreVar:
		img.Bytes = appendLenPrefixed(img.Bytes, []byte(ins.Key))
		img.Bytes = appendLenPrefixed(img.Bytes, []byte(ins.Var))
	case codegen.OpLoadVar:
		img.Bytes = appendLenPrefixed(img.Bytes, []byte(ins.Key))
	case codegen.OpPop, codegen.OpDec, codegen.OpStdout, codegen.OpStderr,
		codegen.OpDup, codegen.OpPrintf, codegen.OpRemoteCall,
		codegen.OpStartContext, codegen.OpEndContext, codegen.OpCheckInterrupt,
		codegen.OpRet:
		// no operands
	default:
		return &vmerrors.InvalidInstructionError{Opcode: byte(op)}
	}
	return nil
}

func appendLenPrefixed(buf, data []byte) []byte {
	buf = append(buf, encodeUint64(uint64(len(data)))...)
	buf = append(buf, data...)
	return buf
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
