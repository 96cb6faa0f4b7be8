package bytecode

import "mustermann/vmerrors"

func ipOutOfBounds(ip int) error       { return &vmerrors.IPOutOfBoundsError{IP: ip} }
func invalidInstruction(op byte) error { return &vmerrors.InvalidInstructionError{Opcode: op} }
