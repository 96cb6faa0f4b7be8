package bytecode

import (
	"encoding/binary"

	"mustermann/codegen"
)

// decode reconstructs a symbolic instruction stream from an encoded byte
// buffer. It exists purely to check the encode/decode/encode round-trip
// property (spec §8 property 2) — the VM itself never decodes back to
// codegen.Instruction; it interprets bytes directly.
func decode(buf []byte) ([]codegen.Instruction, error) {
	var out []codegen.Instruction
	ip := 0

	for ip < len(buf) {
		op := Opcode(buf[ip])
		ip++

		switch op {
		case OpcodeLabel:
			label, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.Label(label))
			ip = next

		case OpcodePushString:
			s, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.Push(codegen.NewStringValue(s)))
			ip = next

		case OpcodePushInt:
			n, next, err := readLenPrefixedUint64(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.Push(codegen.NewIntValue(n)))
			ip = next

		case OpcodeJmpIfZero:
			label, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.JmpIfZero(label))
			ip = next

		case OpcodeJump:
			label, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.Jump(label))
			ip = next

		case OpcodeCall:
			label, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.Call(label))
			ip = next

		case OpcodeSleep:
			ms, next, err := readLenPrefixedUint64(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.Sleep(ms))
			ip = next

		case OpcodeStoreVar:
			key, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			val, next2, err := readLenPrefixedString(buf, next)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.StoreVar(key, val))
			ip = next2

		case OpcodeLoadVar:
			key, next, err := readLenPrefixedString(buf, ip)
			if err != nil {
				return nil, err
			}
			out = append(out, codegen.LoadVar(key))
			ip = next

		case OpcodePop:
			out = append(out, codegen.Pop())
		case OpcodeDec:
			out = append(out, codegen.Dec())
		case OpcodeStdout:
			out = append(out, codegen.Stdout())
		case OpcodeStderr:
			out = append(out, codegen.Stderr())
		case OpcodeDup:
			out = append(out, codegen.Dup())
		case OpcodePrintf:
			out = append(out, codegen.Printf())
		case OpcodeRemoteCall:
			out = append(out, codegen.RemoteCall())
		case OpcodeStartContext:
			out = append(out, codegen.StartContext())
		case OpcodeEndContext:
			out = append(out, codegen.EndContext())
		case OpcodeCheckInterr:
			out = append(out, codegen.CheckInterrupt())
		case OpcodeRet:
			out = append(out, codegen.Ret())

		default:
			return nil, invalidInstruction(byte(op))
		}
	}

	return out, nil
}

func readLenPrefixedString(buf []byte, ip int) (string, int, error) {
	data, next, err := readLenPrefixedBytes(buf, ip)
	if err != nil {
		return "", 0, err
	}
	return string(data), next, nil
}

func readLenPrefixedUint64(buf []byte, ip int) (uint64, int, error) {
	data, next, err := readLenPrefixedBytes(buf, ip)
	if err != nil {
		return 0, 0, err
	}
	if len(data) != 8 {
		return 0, 0, ipOutOfBounds(ip)
	}
	return binary.LittleEndian.Uint64(data), next, nil
}

func readLenPrefixedBytes(buf []byte, ip int) ([]byte, int, error) {
	if ip+8 > len(buf) {
		return nil, 0, ipOutOfBounds(ip)
	}
	n := binary.LittleEndian.Uint64(buf[ip : ip+8])
	ip += 8
	end := ip + int(n)
	if end > len(buf) {
		return nil, 0, ipOutOfBounds(ip)
	}
	return buf[ip:end], end, nil
}
