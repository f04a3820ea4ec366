package optimize

import (
	"ouroboros/internal/bytecode"
	"ouroboros/internal/diag"
)

// Peephole implements spec.md §4.4.3's ordered pattern set, applied
// left-to-right over a single forward pass.
type Peephole struct{}

func (Peephole) Name() string { return "peephole" }

func (Peephole) Run(b *bytecode.Bytecode, sink *diag.Sink) *bytecode.Bytecode {
	instrs, ok := decodeAll(b.Code)
	if !ok {
		return malformed("peephole", b, sink)
	}

	var newCode []byte
	i := 0
	for i < len(instrs) {
		if i+1 < len(instrs) &&
			instrs[i].op == bytecode.LoadLocal && instrs[i+1].op == bytecode.StoreLocal &&
			instrs[i].operand == instrs[i+1].operand {
			i += 2
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.Dup && instrs[i+1].op == bytecode.Pop {
			i += 2
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.LoadConstant && instrs[i+1].op == bytecode.Add &&
			isZeroConstant(b, instrs[i].operand) {
			i += 2
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.LoadConstant && instrs[i+1].op == bytecode.Mul &&
			isOneConstant(b, instrs[i].operand) {
			i += 2
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.Neg && instrs[i+1].op == bytecode.Neg {
			i += 2
			continue
		}
		if i+1 < len(instrs) && instrs[i].op == bytecode.Not && instrs[i+1].op == bytecode.Not {
			i += 2
			continue
		}
		if instrs[i].op == bytecode.Jump {
			nextOffset := instrs[i].offset + instrs[i].length
			if absoluteTarget(instrs[i]) == nextOffset {
				i++
				continue
			}
		}
		newCode = append(newCode, b.Code[instrs[i].offset:instrs[i].offset+instrs[i].length]...)
		i++
	}

	out := b.Clone()
	out.Code = newCode
	return out
}

func isZeroConstant(b *bytecode.Bytecode, idx int32) bool {
	if int(idx) >= len(b.Constants) {
		return false
	}
	c := b.Constants[idx]
	switch c.Tag {
	case bytecode.ConstInt, bytecode.ConstLong:
		return c.Int == 0
	case bytecode.ConstDouble, bytecode.ConstFloat:
		return c.Double == 0
	}
	return false
}

func isOneConstant(b *bytecode.Bytecode, idx int32) bool {
	if int(idx) >= len(b.Constants) {
		return false
	}
	c := b.Constants[idx]
	switch c.Tag {
	case bytecode.ConstInt, bytecode.ConstLong:
		return c.Int == 1
	case bytecode.ConstDouble, bytecode.ConstFloat:
		return c.Double == 1
	}
	return false
}
