package optimize

import (
	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// InstructionCombining implements spec.md §4.4.4: fuse a local
// increment/decrement idiom into PostIncrement/PostDecrement, and fuse
// Dup;Dup into Dup2.
type InstructionCombining struct{}

func (InstructionCombining) Name() string { return "instruction-combining" }

func (InstructionCombining) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("instruction-combining", b, sink)
	}

	var newCode []byte
	i := 0
	for i < len(instrs) {
		if i+3 < len(instrs) &&
			instrs[i].op == bytecode.LoadLocal &&
			instrs[i+1].op == bytecode.LoadConstant &&
			(instrs[i+2].op == bytecode.Add || instrs[i+2].op == bytecode.Sub) &&
			instrs[i+3].op == bytecode.StoreLocal &&
			instrs[i].operand == instrs[i+3].operand &&
			isPlusOrMinusOneConstant(b, instrs[i+1].operand) {

			isIncrement := (instrs[i+2].op == bytecode.Add) == isPositiveOneConstant(b, instrs[i+1].operand)
			op := bytecode.PostDecrement
			if isIncrement {
				op = bytecode.PostIncrement
			}
			newCode = append(newCode, byte(op))
			var buf [4]byte
			putOperand(buf[:], instrs[i].operand)
			newCode = append(newCode, buf[:]...)
			i += 4
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.Dup && instrs[i+1].op == bytecode.Dup {
			newCode = append(newCode, byte(bytecode.Dup2))
			i += 2
			continue
		}
		newCode = append(newCode, b.Code[instrs[i].offset:instrs[i].offset+instrs[i].length]...)
		i++
	}

	out := b.Clone()
	out.Code = newCode
	return out
}

func isPlusOrMinusOneConstant(b *bytecode.Bytecode, idx int32) bool {
	if int(idx) >= len(b.Constants) {
		return false
	}
	c := b.Constants[idx]
	return (c.Tag == bytecode.ConstInt || c.Tag == bytecode.ConstLong) && (c.Int == 1 || c.Int == -1)
}

func isPositiveOneConstant(b *bytecode.Bytecode, idx int32) bool {
	if int(idx) >= len(b.Constants) {
		return false
	}
	c := b.Constants[idx]
	return (c.Tag == bytecode.ConstInt || c.Tag == bytecode.ConstLong) && c.Int == 1
}

func putOperand(buf []byte, v int32) {
	bytecode.WriteOperand(buf, 0, v)
}
