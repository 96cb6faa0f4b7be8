package bytecode

// Fetched is one decoded instruction at a particular ip, in the shape the
// VM's execution loop switches on. Not every field is meaningful for every
// Op, mirroring codegen.Instruction.
type Fetched struct {
	Op     Opcode
	Str    string // Push(String), Jump/JmpIfZero/Call label, StoreVar/LoadVar key
	Str2   string // StoreVar value
	Int    uint64 // Push(Int), Sleep ms
	NextIP int    // ip to resume at after this instruction's operands
}

// Fetch decodes the instruction at ip, without needing label resolution —
// callers needing a jump target's offset consult Image.LabelToOffset
// themselves. The VM calls this directly against the raw byte buffer
// (spec §4.4: "opcode handlers are responsible for advancing ip past their
// own operands").
func Fetch(buf []byte, ip int) (Fetched, error) {
	op, bodyIP, err := decodeOpcodeAt(buf, ip)
	if err != nil {
		return Fetched{}, err
	}

	switch op {
	case OpcodeLabel:
		label, next, err := readLenPrefixedString(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Str: label, NextIP: next}, nil

	case OpcodePushString:
		s, next, err := readLenPrefixedString(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Str: s, NextIP: next}, nil

	case OpcodePushInt:
		n, next, err := readLenPrefixedUint64(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Int: n, NextIP: next}, nil

	case OpcodeJmpIfZero, OpcodeJump, OpcodeCall:
		label, next, err := readLenPrefixedString(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Str: label, NextIP: next}, nil

	case OpcodeSleep:
		ms, next, err := readLenPrefixedUint64(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Int: ms, NextIP: next}, nil

	case OpcodeStoreVar:
		key, next, err := readLenPrefixedString(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		val, next2, err := readLenPrefixedString(buf, next)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Str: key, Str2: val, NextIP: next2}, nil

	case OpcodeLoadVar:
		key, next, err := readLenPrefixedString(buf, bodyIP)
		if err != nil {
			return Fetched{}, err
		}
		return Fetched{Op: op, Str: key, NextIP: next}, nil

	case OpcodePop, OpcodeDec, OpcodeStdout, OpcodeStderr, OpcodeDup,
		OpcodePrintf, OpcodeRemoteCall, OpcodeStartContext, OpcodeEndContext,
		OpcodeCheckInterr, OpcodeRet:
		return Fetched{Op: op, NextIP: bodyIP}, nil

	default:
		return Fetched{}, invalidInstruction(byte(op))
	}
}

func decodeOpcodeAt(buf []byte, ip int) (Opcode, int, error) {
	if ip >= len(buf) {
		return 0, 0, ipOutOfBounds(ip)
	}
	return Opcode(buf[ip]), ip + 1, nil
}
