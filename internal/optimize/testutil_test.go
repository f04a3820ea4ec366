package optimize

import "ouroboros/internal/bytecode"

// instr appends an opcode with a 4-byte little-endian operand.
func instr(op bytecode.OpCode, operand int32) []byte {
	buf := make([]byte, 5)
	buf[0] = byte(op)
	bytecode.WriteOperand(buf, 1, operand)
	return buf
}

// zero appends a zero-operand opcode (no operand bytes).
func zero(op bytecode.OpCode) []byte {
	return []byte{byte(op)}
}

func join(chunks ...[]byte) []byte {
	var out []byte
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// jumpRel builds a jump instruction whose operand is the relative
// displacement from just past its own operand (siteEnd) to target.
func jumpRel(op bytecode.OpCode, site, target int) []byte {
	siteEnd := site + 5
	return instr(op, int32(target-siteEnd))
}
